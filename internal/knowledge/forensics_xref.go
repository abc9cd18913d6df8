package knowledge

import (
	"context"

	"github.com/Samarth061/wolf-trace-backend/internal/blackboard"
	"github.com/Samarth061/wolf-trace-backend/internal/external/media"
	"github.com/Samarth061/wolf-trace-backend/internal/graphstore"
)

// NewForensicsXref builds the forensics_xref Knowledge Source (§4.4):
// once a report has claims (written by the network source), it cross-
// references each claim against the video search collaborator,
// recording every match as an external_source node linked by
// similar_to. Grounded on the same external-service-handler shape as
// forensics.go, applied to the video_search half of the media
// contract instead of phash.
func NewForensicsXref(store *graphstore.Store, analyzer media.Analyzer) *blackboard.Source {
	return blackboard.NewSource(
		"forensics_xref",
		blackboard.MEDIUM,
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
			for _, claim := range reportClaims {
				for _, match := range analyzer.VideoSearch(ctx, claim) {
					sourceNode, err := store.AddNode(graphstore.KindExternalSource, report.CaseID, map[string]any{
						"source": match.Source,
						"score":  match.Score,
					}, "")
					if err != nil {
						return err
					}
					if _, err := store.AddEdge(graphstore.EdgeSimilarTo, report.ID, sourceNode.ID, map[string]any{"reason": "video_xref"}); err != nil {
						return err
					}
				}
			}
			return nil
		},
	).WithCondition(func(rec graphstore.MutationRecord) bool {
		_, ok := claims(rec.Node)
		return ok
	})
}
