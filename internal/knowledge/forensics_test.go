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

type hashAnalyzer struct {
	url  string
	hash uint64
}

func analyzerWithHash(url string, hash uint64) hashAnalyzer {
	return hashAnalyzer{url: url, hash: hash}
}

func (a hashAnalyzer) Phash(ctx context.Context, url string) (uint64, bool) {
	if url != a.url {
		return 0, false
	}
	return a.hash, true
}

func (a hashAnalyzer) VideoSearch(ctx context.Context, query string) []media.VideoMatch { return nil }

func TestForensics_CloseHashesProduceRepostOf(t *testing.T) {
	store := graphstore.NewStore()
	_, err := store.AddNode(graphstore.KindMediaVariant, "case-1", map[string]any{
		"media_url": "http://a",
		"phash":     uint64(0b1010),
	}, "")
	require.NoError(t, err)

	analyzer := analyzerWithHash("http://b", 0b1011) // Hamming distance 1
	src := NewForensics(store, analyzer)

	report := addReport(t, store, "case-1", map[string]any{"media_url": "http://b"})
	rec := graphstore.MutationRecord{Kind: graphstore.MutationAddNode, Node: report, At: time.Now()}
	require.NoError(t, src.Handler(context.Background(), rec))

	edges := store.OutgoingEdges(report.ID)
	require.NotEmpty(t, edges)
	assert.Equal(t, graphstore.EdgeRepostOf, edges[0].Kind)
}

func TestForensics_FarHashesProduceNoEdge(t *testing.T) {
	store := graphstore.NewStore()
	_, err := store.AddNode(graphstore.KindMediaVariant, "case-1", map[string]any{
		"media_url": "http://a",
		"phash":     uint64(0x0000000000000000),
	}, "")
	require.NoError(t, err)

	analyzer := analyzerWithHash("http://b", 0xFFFFFFFFFFFFFFFF) // Hamming distance 64
	src := NewForensics(store, analyzer)

	report := addReport(t, store, "case-1", map[string]any{"media_url": "http://b"})
	rec := graphstore.MutationRecord{Kind: graphstore.MutationAddNode, Node: report, At: time.Now()}
	require.NoError(t, src.Handler(context.Background(), rec))

	edges := store.OutgoingEdges(report.ID)
	assert.Empty(t, edges)
}

func TestForensics_ConditionRequiresMediaURL(t *testing.T) {
	store := graphstore.NewStore()
	src := NewForensics(store, analyzerWithHash("", 0))

	report := addReport(t, store, "case-1", map[string]any{"text": "no media here"})
	rec := graphstore.MutationRecord{Kind: graphstore.MutationAddNode, Node: report, At: time.Now()}
	assert.False(t, src.Condition(rec))
}

func TestHammingDistance(t *testing.T) {
	assert.Equal(t, 0, hammingDistance(0b1111, 0b1111))
	assert.Equal(t, 4, hammingDistance(0b0000, 0b1111))
}
