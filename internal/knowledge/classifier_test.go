package knowledge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Samarth061/wolf-trace-backend/internal/graphstore"
)

func TestClassifier_MutationOfOutranksEverythingElse(t *testing.T) {
	store := graphstore.NewStore()
	src := NewClassifier(store)

	report := addReport(t, store, "case-1", map[string]any{"timestamp": time.Now()})
	other, err := store.AddNode(graphstore.KindReport, "case-1", nil, "")
	require.NoError(t, err)

	edge, err := store.AddEdge(graphstore.EdgeMutationOf, report.ID, other.ID, nil)
	require.NoError(t, err)

	rec := graphstore.MutationRecord{Kind: graphstore.MutationAddEdge, Edge: edge, At: time.Now()}
	require.NoError(t, src.Handler(context.Background(), rec))

	assert.Equal(t, "mutator", store.GetNode(report.ID).Data["semantic_role"])
}

func TestClassifier_RepostOfYieldsAmplifier(t *testing.T) {
	store := graphstore.NewStore()
	src := NewClassifier(store)

	report := addReport(t, store, "case-1", map[string]any{"timestamp": time.Now()})
	other, err := store.AddNode(graphstore.KindReport, "case-1", nil, "")
	require.NoError(t, err)

	edge, err := store.AddEdge(graphstore.EdgeRepostOf, report.ID, other.ID, nil)
	require.NoError(t, err)

	rec := graphstore.MutationRecord{Kind: graphstore.MutationAddEdge, Edge: edge, At: time.Now()}
	require.NoError(t, src.Handler(context.Background(), rec))

	assert.Equal(t, "amplifier", store.GetNode(report.ID).Data["semantic_role"])
}

func TestClassifier_EarliestReportInCaseIsOriginator(t *testing.T) {
	store := graphstore.NewStore()
	src := NewClassifier(store)

	now := time.Now()
	earliest := addReport(t, store, "case-1", map[string]any{"timestamp": now})
	require.NoError(t, store.AddReport("case-1", "r-1", nil, earliest.ID))

	later := addReport(t, store, "case-1", map[string]any{"timestamp": now.Add(time.Hour)})
	require.NoError(t, store.AddReport("case-1", "r-2", nil, later.ID))

	// A similar_to edge from earliest to later is enough to invoke the
	// classifier against "earliest" as the edge's source.
	edge, err := store.AddEdge(graphstore.EdgeSimilarTo, earliest.ID, later.ID, nil)
	require.NoError(t, err)

	rec := graphstore.MutationRecord{Kind: graphstore.MutationAddEdge, Edge: edge, At: time.Now()}
	require.NoError(t, src.Handler(context.Background(), rec))

	assert.Equal(t, "originator", store.GetNode(earliest.ID).Data["semantic_role"])
}

func TestClassifier_FactCheckLinkedReportIsNeitherOriginatorNorUnwittingSharer(t *testing.T) {
	store := graphstore.NewStore()
	src := NewClassifier(store)

	now := time.Now()
	earlier := addReport(t, store, "case-1", map[string]any{"timestamp": now})
	require.NoError(t, store.AddReport("case-1", "r-1", nil, earlier.ID))

	report := addReport(t, store, "case-1", map[string]any{"timestamp": now.Add(time.Hour)})
	require.NoError(t, store.AddReport("case-1", "r-2", nil, report.ID))

	factCheck, err := store.AddNode(graphstore.KindFactCheck, "case-1", nil, "")
	require.NoError(t, err)
	_, err = store.AddEdge(graphstore.EdgeDebunkedBy, report.ID, factCheck.ID, nil)
	require.NoError(t, err)

	edge, err := store.AddEdge(graphstore.EdgeSimilarTo, report.ID, earlier.ID, nil)
	require.NoError(t, err)

	rec := graphstore.MutationRecord{Kind: graphstore.MutationAddEdge, Edge: edge, At: time.Now()}
	require.NoError(t, src.Handler(context.Background(), rec))

	_, hasRole := store.GetNode(report.ID).Data["semantic_role"]
	assert.False(t, hasRole)
}
