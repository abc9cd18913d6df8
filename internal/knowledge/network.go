package knowledge

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/Samarth061/wolf-trace-backend/internal/blackboard"
	"github.com/Samarth061/wolf-trace-backend/internal/external/factcheck"
	"github.com/Samarth061/wolf-trace-backend/internal/external/llm"
	"github.com/Samarth061/wolf-trace-backend/internal/graphstore"
	"github.com/Samarth061/wolf-trace-backend/internal/logging"
)

type claimExtraction struct {
	Claims  []string `json:"claims"`
	Urgency string   `json:"urgency"`
}

// NewNetwork builds the network Knowledge Source (§4.4): it asks the
// AI completion collaborator to extract claims and an urgency label
// from the report text, writes them back onto the report, then checks
// each claim against the fact-check collaborator, recording any
// debunking fact_check node it finds and an external_source node for
// every source surfaced. Grounded on the donor's external-service
// handler pattern (internal/agent/risk_investigator.go): read a
// snapshot, call out, write results, tolerate failure.
func NewNetwork(store *graphstore.Store, completer llm.Completer, lookup factcheck.Lookup) *blackboard.Source {
	logger := logging.With("component", "knowledge.network")

	return blackboard.NewSource(
		"network",
		blackboard.MEDIUM,
		[]string{"node:report"},
		func(ctx context.Context, rec graphstore.MutationRecord) error {
			report := rec.Node
			if report == nil {
				return nil
			}

			extraction := extractClaims(ctx, completer, logger, report)
			if _, err := store.UpdateNode(report.ID, map[string]any{
				"claims":  extraction.Claims,
				"urgency": extraction.Urgency,
			}); err != nil {
				return err
			}

			for _, claim := range extraction.Claims {
				ratings := lookup.Lookup(ctx, claim)
				for _, r := range ratings {
					if err := recordRating(store, report, r); err != nil {
						return err
					}
				}
			}
			return nil
		},
	)
}

// extractClaims calls the AI completer and falls back to an empty
// claims list on any failure (§6 "on failure, the caller substitutes
// a documented fallback").
func extractClaims(ctx context.Context, completer llm.Completer, logger *logging.Logger, report *graphstore.Node) claimExtraction {
	text := reportText(report)
	if text == "" {
		return claimExtraction{Urgency: "unknown"}
	}

	prompt := "Extract factual claims and an urgency level (low, medium, high) from this report as JSON " +
		`{"claims": [...], "urgency": "..."}: ` + text

	raw, err := completer.Complete(ctx, prompt, "extract_claims")
	if err != nil {
		if logger != nil {
			logger.Debug("claim extraction fallback", "error", err)
		}
		return claimExtraction{Urgency: "unknown"}
	}

	var extraction claimExtraction
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &extraction); err != nil {
		if logger != nil {
			logger.Debug("claim extraction response unparseable", "error", err)
		}
		return claimExtraction{Urgency: "unknown"}
	}
	return extraction
}

func recordRating(store *graphstore.Store, report *graphstore.Node, r factcheck.Rating) error {
	sourceNode, err := store.AddNode(graphstore.KindExternalSource, report.CaseID, map[string]any{
		"url":      r.URL,
		"reviewer": r.Reviewer,
		"rating":   r.Rating,
	}, "")
	if err != nil {
		return err
	}

	if _, err := store.AddEdge(graphstore.EdgeSimilarTo, report.ID, sourceNode.ID, map[string]any{"reason": "fact_check_source"}); err != nil {
		return err
	}

	if strings.EqualFold(r.Rating, "false") || strings.EqualFold(r.Rating, "misleading") {
		factNode, err := store.AddNode(graphstore.KindFactCheck, report.CaseID, map[string]any{
			"claimant": r.Claimant,
			"rating":   r.Rating,
			"url":      r.URL,
			"reviewer": r.Reviewer,
		}, "")
		if err != nil {
			return err
		}
		if _, err := store.AddEdge(graphstore.EdgeDebunkedBy, report.ID, factNode.ID, nil); err != nil {
			return err
		}
	}
	return nil
}
