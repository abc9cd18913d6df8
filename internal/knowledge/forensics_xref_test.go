package knowledge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Samarth061/wolf-trace-backend/internal/external/media"
	"github.com/Samarth061/wolf-trace-backend/internal/graphstore"
)

type videoSearchAnalyzer struct {
	matches map[string][]media.VideoMatch
}

func (a videoSearchAnalyzer) Phash(ctx context.Context, url string) (uint64, bool) { return 0, false }

func (a videoSearchAnalyzer) VideoSearch(ctx context.Context, query string) []media.VideoMatch {
	return a.matches[query]
}

func TestForensicsXref_RecordsExternalSourcePerMatch(t *testing.T) {
	store := graphstore.NewStore()
	analyzer := videoSearchAnalyzer{matches: map[string][]media.VideoMatch{
		"a viral claim": {{Source: "newsroom", Score: 0.9}},
	}}
	src := NewForensicsXref(store, analyzer)

	report := addReport(t, store, "case-1", map[string]any{"claims": []string{"a viral claim"}})
	rec := graphstore.MutationRecord{Kind: graphstore.MutationUpdateNode, Node: report, At: time.Now()}
	require.NoError(t, src.Handler(context.Background(), rec))

	edges := store.OutgoingEdges(report.ID)
	require.Len(t, edges, 1)
	assert.Equal(t, graphstore.EdgeSimilarTo, edges[0].Kind)
}

func TestForensicsXref_ConditionRequiresClaims(t *testing.T) {
	store := graphstore.NewStore()
	src := NewForensicsXref(store, videoSearchAnalyzer{})

	report := addReport(t, store, "case-1", map[string]any{"text": "no claims extracted yet"})
	rec := graphstore.MutationRecord{Kind: graphstore.MutationUpdateNode, Node: report, At: time.Now()}
	assert.False(t, src.Condition(rec))
}
