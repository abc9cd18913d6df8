package knowledge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Samarth061/wolf-trace-backend/internal/external/factcheck"
	"github.com/Samarth061/wolf-trace-backend/internal/graphstore"
)

type fakeCompleter struct {
	response string
	err      error
}

func (f fakeCompleter) Complete(ctx context.Context, prompt, purpose string) (string, error) {
	return f.response, f.err
}

type fakeLookup struct {
	ratings map[string][]factcheck.Rating
}

func (f fakeLookup) Lookup(ctx context.Context, claimText string) []factcheck.Rating {
	return f.ratings[claimText]
}

func TestNetwork_WritesClaimsAndUrgencyFromCompleter(t *testing.T) {
	store := graphstore.NewStore()
	completer := fakeCompleter{response: `{"claims": ["a shooting was reported"], "urgency": "high"}`}
	lookup := fakeLookup{}
	src := NewNetwork(store, completer, lookup)

	report := addReport(t, store, "case-1", map[string]any{"text": "there was a shooting"})
	rec := graphstore.MutationRecord{Kind: graphstore.MutationAddNode, Node: report, At: time.Now()}
	require.NoError(t, src.Handler(context.Background(), rec))

	updated := store.GetNode(report.ID)
	assert.Equal(t, "high", updated.Data["urgency"])
	assert.Equal(t, []string{"a shooting was reported"}, updated.Data["claims"])
}

func TestNetwork_FallsBackToUnknownUrgencyOnCompleterFailure(t *testing.T) {
	store := graphstore.NewStore()
	completer := fakeCompleter{err: assert.AnError}
	lookup := fakeLookup{}
	src := NewNetwork(store, completer, lookup)

	report := addReport(t, store, "case-1", map[string]any{"text": "something happened"})
	rec := graphstore.MutationRecord{Kind: graphstore.MutationAddNode, Node: report, At: time.Now()}
	require.NoError(t, src.Handler(context.Background(), rec))

	updated := store.GetNode(report.ID)
	assert.Equal(t, "unknown", updated.Data["urgency"])
}

func TestNetwork_FalseRatingProducesDebunkedByEdge(t *testing.T) {
	store := graphstore.NewStore()
	claim := "a claim that turns out to be false"
	completer := fakeCompleter{response: `{"claims": ["` + claim + `"], "urgency": "low"}`}
	lookup := fakeLookup{ratings: map[string][]factcheck.Rating{
		claim: {{Claimant: "someone", Rating: "false", URL: "http://x", Reviewer: "factchecker"}},
	}}
	src := NewNetwork(store, completer, lookup)

	report := addReport(t, store, "case-1", map[string]any{"text": claim})
	rec := graphstore.MutationRecord{Kind: graphstore.MutationAddNode, Node: report, At: time.Now()}
	require.NoError(t, src.Handler(context.Background(), rec))

	edges := store.OutgoingEdges(report.ID)
	var hasDebunk bool
	for _, e := range edges {
		if e.Kind == graphstore.EdgeDebunkedBy {
			hasDebunk = true
		}
	}
	assert.True(t, hasDebunk)
}

func TestNetwork_TrueRatingProducesNoDebunkEdge(t *testing.T) {
	store := graphstore.NewStore()
	claim := "a claim that checks out"
	completer := fakeCompleter{response: `{"claims": ["` + claim + `"], "urgency": "low"}`}
	lookup := fakeLookup{ratings: map[string][]factcheck.Rating{
		claim: {{Claimant: "someone", Rating: "true", URL: "http://x", Reviewer: "factchecker"}},
	}}
	src := NewNetwork(store, completer, lookup)

	report := addReport(t, store, "case-1", map[string]any{"text": claim})
	rec := graphstore.MutationRecord{Kind: graphstore.MutationAddNode, Node: report, At: time.Now()}
	require.NoError(t, src.Handler(context.Background(), rec))

	edges := store.OutgoingEdges(report.ID)
	for _, e := range edges {
		assert.NotEqual(t, graphstore.EdgeDebunkedBy, e.Kind)
	}
}
