package knowledge

import (
	"context"
	"strings"

	"github.com/Samarth061/wolf-trace-backend/internal/blackboard"
	"github.com/Samarth061/wolf-trace-backend/internal/external/llm"
	"github.com/Samarth061/wolf-trace-backend/internal/graphstore"
	"github.com/Samarth061/wolf-trace-backend/internal/logging"
)

// NewCaseSynthesizer builds the case_synthesizer Knowledge Source
// (§4.4): lowest priority, background narrative generation over a
// report once it has claims. Uses the same AI completion collaborator
// as network but for a different purpose tag, and tolerates failure
// by leaving the report's narrative unset rather than failing the
// handler.
func NewCaseSynthesizer(store *graphstore.Store, completer llm.Completer) *blackboard.Source {
	logger := logging.With("component", "knowledge.case_synthesizer")

	return blackboard.NewSource(
		"case_synthesizer",
		blackboard.BACKGROUND,
		[]string{"update:report"},
		func(ctx context.Context, rec graphstore.MutationRecord) error {
			report := rec.Node
			if report == nil {
				return nil
			}
			reportClaims, ok := claims(report)
			if !ok {
				return nil
			}

			narrative, confidence, err := synthesize(ctx, completer, reportClaims)
			if err != nil {
				if logger != nil {
					logger.Debug("case synthesis fallback", "error", err)
				}
				return nil
			}

			_, err = store.UpdateNode(report.ID, map[string]any{
				"narrative":  narrative,
				"confidence": confidence,
			})
			return err
		},
	).WithCondition(func(rec graphstore.MutationRecord) bool {
		_, ok := claims(rec.Node)
		return ok
	})
}

func synthesize(ctx context.Context, completer llm.Completer, reportClaims []string) (string, float64, error) {
	prompt := "Write a one-paragraph narrative summarizing these claims: " + strings.Join(reportClaims, "; ")
	narrative, err := completer.Complete(ctx, prompt, "synthesize_case")
	if err != nil {
		return "", 0, err
	}
	confidence := 0.5
	if len(reportClaims) > 1 {
		confidence = 0.75
	}
	return narrative, confidence, nil
}
