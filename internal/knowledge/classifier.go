package knowledge

import (
	"context"

	"github.com/Samarth061/wolf-trace-backend/internal/blackboard"
	"github.com/Samarth061/wolf-trace-backend/internal/graphstore"
)

// NewClassifier builds the classifier Knowledge Source (§4.4): a
// purely deterministic role assignment over the graph, no external
// collaborator involved. Re-derives the triggering report from the
// source node of whichever edge kind fired it.
func NewClassifier(store *graphstore.Store) *blackboard.Source {
	return blackboard.NewSource(
		"classifier",
		blackboard.LOW,
		[]string{
			"edge:similar_to", "edge:repost_of", "edge:mutation_of", "edge:debunked_by",
		},
		func(ctx context.Context, rec graphstore.MutationRecord) error {
			report := classifierSubject(store, rec)
			if report == nil {
				return nil
			}
			return classifyRole(store, report)
		},
	)
}

// classifierSubject resolves the report whose role should be
// (re)assessed: the edge's source report, if it is one. Only
// MutationAddEdge records carry that information directly, which is
// why the classifier only subscribes to edge:* event types.
func classifierSubject(store *graphstore.Store, rec graphstore.MutationRecord) *graphstore.Node {
	if rec.Kind != graphstore.MutationAddEdge || rec.Edge == nil {
		return nil
	}
	node := store.GetNode(rec.Edge.SourceNodeID)
	if node == nil || node.Kind != graphstore.KindReport {
		return nil
	}
	return node
}

// classifyRole applies the deterministic rules of §4.4 "Classifier
// role assignment" in priority order.
func classifyRole(store *graphstore.Store, report *graphstore.Node) error {
	outgoing := store.OutgoingEdges(report.ID)

	if hasEdgeKind(outgoing, graphstore.EdgeMutationOf) {
		return setRole(store, report, "mutator")
	}
	if hasEdgeKind(outgoing, graphstore.EdgeRepostOf) {
		return setRole(store, report, "amplifier")
	}
	if isEarliestInCase(store, report) {
		return setRole(store, report, "originator")
	}
	if !hasEdgeToKind(store, outgoing, graphstore.KindExternalSource, graphstore.KindFactCheck) {
		return setRole(store, report, "unwitting_sharer")
	}
	return nil
}

func hasEdgeKind(edges []*graphstore.Edge, kind graphstore.EdgeKind) bool {
	for _, e := range edges {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func hasEdgeToKind(store *graphstore.Store, edges []*graphstore.Edge, kinds ...graphstore.NodeKind) bool {
	wanted := make(map[graphstore.NodeKind]struct{}, len(kinds))
	for _, k := range kinds {
		wanted[k] = struct{}{}
	}
	for _, e := range edges {
		target := store.GetNode(e.TargetNodeID)
		if target == nil {
			continue
		}
		if _, ok := wanted[target.Kind]; ok {
			return true
		}
	}
	return false
}

func isEarliestInCase(store *graphstore.Store, report *graphstore.Node) bool {
	ts, ok := reportTimestamp(report)
	if !ok {
		return false
	}
	for _, peer := range store.ReportsInCase(report.CaseID) {
		if peer.ID == report.ID {
			continue
		}
		peerTS, ok := reportTimestamp(peer)
		if !ok {
			continue
		}
		if peerTS.Before(ts) {
			return false
		}
	}
	return true
}

func setRole(store *graphstore.Store, report *graphstore.Node, role string) error {
	_, err := store.UpdateNode(report.ID, map[string]any{"semantic_role": role})
	return err
}
