package knowledge

import (
	"context"

	"github.com/Samarth061/wolf-trace-backend/internal/blackboard"
	"github.com/Samarth061/wolf-trace-backend/internal/graphstore"
)

// NewReclusterDebunk builds the recluster_debunk Knowledge Source
// (§4.4): when a debunked_by edge lands on a report, it increments
// that report's debunk_count. Straightforward read-modify-write over
// the store, no external collaborator involved.
func NewReclusterDebunk(store *graphstore.Store) *blackboard.Source {
	return blackboard.NewSource(
		"recluster_debunk",
		blackboard.HIGH,
		[]string{"edge:debunked_by"},
		func(ctx context.Context, rec graphstore.MutationRecord) error {
			if rec.Edge == nil {
				return nil
			}
			report := store.GetNode(rec.Edge.SourceNodeID)
			if report == nil || report.Kind != graphstore.KindReport {
				return nil
			}

			current := 0
			if n, ok := report.Data["debunk_count"].(int); ok {
				current = n
			}

			_, err := store.UpdateNode(report.ID, map[string]any{"debunk_count": current + 1})
			return err
		},
	)
}
