package knowledge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Samarth061/wolf-trace-backend/internal/graphstore"
)

func TestCaseSynthesizer_WritesNarrativeAndConfidence(t *testing.T) {
	store := graphstore.NewStore()
	completer := fakeCompleter{response: "A narrative summary."}
	src := NewCaseSynthesizer(store, completer)

	report := addReport(t, store, "case-1", map[string]any{
		"claims": []string{"claim one", "claim two"},
	})
	rec := graphstore.MutationRecord{Kind: graphstore.MutationUpdateNode, Node: report, At: time.Now()}
	require.NoError(t, src.Handler(context.Background(), rec))

	updated := store.GetNode(report.ID)
	assert.Equal(t, "A narrative summary.", updated.Data["narrative"])
	assert.Equal(t, 0.75, updated.Data["confidence"])
}

func TestCaseSynthesizer_LeavesReportUntouchedOnCompleterFailure(t *testing.T) {
	store := graphstore.NewStore()
	completer := fakeCompleter{err: assert.AnError}
	src := NewCaseSynthesizer(store, completer)

	report := addReport(t, store, "case-1", map[string]any{"claims": []string{"claim one"}})
	rec := graphstore.MutationRecord{Kind: graphstore.MutationUpdateNode, Node: report, At: time.Now()}
	require.NoError(t, src.Handler(context.Background(), rec))

	updated := store.GetNode(report.ID)
	_, hasNarrative := updated.Data["narrative"]
	assert.False(t, hasNarrative)
}

func TestCaseSynthesizer_ConditionRequiresClaims(t *testing.T) {
	store := graphstore.NewStore()
	src := NewCaseSynthesizer(store, fakeCompleter{})

	report := addReport(t, store, "case-1", map[string]any{"text": "no claims yet"})
	rec := graphstore.MutationRecord{Kind: graphstore.MutationUpdateNode, Node: report, At: time.Now()}
	assert.False(t, src.Condition(rec))
}
