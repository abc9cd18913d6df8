package knowledge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Samarth061/wolf-trace-backend/internal/graphstore"
)

func addReport(t *testing.T, store *graphstore.Store, caseID string, data map[string]any) *graphstore.Node {
	t.Helper()
	node, err := store.AddNode(graphstore.KindReport, caseID, data, "")
	require.NoError(t, err)
	return node
}

func TestClustering_LinksCloseReportsAboveThreshold(t *testing.T) {
	store := graphstore.NewStore()
	src := NewClustering(store)

	now := time.Now()
	a := addReport(t, store, "case-1", map[string]any{
		"text":      "armed suspect seen near the library entrance",
		"timestamp": now,
		"location":  map[string]any{"lat": 40.0, "lng": -75.0},
	})
	b := addReport(t, store, "case-1", map[string]any{
		"text":      "armed suspect spotted by the library entrance",
		"timestamp": now.Add(2 * time.Minute),
		"location":  map[string]any{"lat": 40.0001, "lng": -75.0001},
	})
	require.NoError(t, store.AddReport("case-1", "r-1", nil, a.ID))
	require.NoError(t, store.AddReport("case-1", "r-2", nil, b.ID))

	rec := graphstore.MutationRecord{Kind: graphstore.MutationAddNode, Node: b, At: time.Now()}
	require.NoError(t, src.Handler(context.Background(), rec))

	edges := store.OutgoingEdges(b.ID)
	require.Len(t, edges, 1)
	assert.Equal(t, graphstore.EdgeSimilarTo, edges[0].Kind)
	assert.Equal(t, a.ID, edges[0].TargetNodeID)
}

func TestClustering_DoesNotLinkUnrelatedReports(t *testing.T) {
	store := graphstore.NewStore()
	src := NewClustering(store)

	now := time.Now()
	a := addReport(t, store, "case-1", map[string]any{
		"text":      "bicycle stolen from the quad",
		"timestamp": now.Add(-6 * time.Hour),
		"location":  map[string]any{"lat": 40.0, "lng": -75.0},
	})
	b := addReport(t, store, "case-1", map[string]any{
		"text":      "suspicious package left at the stadium",
		"timestamp": now,
		"location":  map[string]any{"lat": 41.0, "lng": -76.0},
	})
	require.NoError(t, store.AddReport("case-1", "r-1", nil, a.ID))
	require.NoError(t, store.AddReport("case-1", "r-2", nil, b.ID))

	rec := graphstore.MutationRecord{Kind: graphstore.MutationAddNode, Node: b, At: time.Now()}
	require.NoError(t, src.Handler(context.Background(), rec))

	assert.Empty(t, store.OutgoingEdges(b.ID))
}

func TestClustering_IgnoresNonReportNodeKinds(t *testing.T) {
	store := graphstore.NewStore()
	src := NewClustering(store)

	node, err := store.AddNode(graphstore.KindFactCheck, "case-1", nil, "")
	require.NoError(t, err)

	rec := graphstore.MutationRecord{Kind: graphstore.MutationAddNode, Node: node, At: time.Now()}
	assert.NoError(t, src.Handler(context.Background(), rec))
}

func TestJaccard_EmptySetsScoreZero(t *testing.T) {
	assert.Equal(t, 0.0, jaccard(nil, map[string]struct{}{"a": {}}))
	assert.Equal(t, 0.0, jaccard(map[string]struct{}{"a": {}}, nil))
}

func TestTokenize_DropsShortWords(t *testing.T) {
	tokens := tokenize("a at cat dog library")
	_, hasShort := tokens["cat"]
	_, hasLong := tokens["library"]
	assert.False(t, hasShort, "3-letter words must be dropped")
	assert.True(t, hasLong)
}
