package graphstore

import (
	"github.com/google/uuid"
)

// idPrefix returns the single-letter kind prefix the spec requires for
// generated node ids (§3: "prefix by kind, e.g. R-…, E-…, F-…, M-…").
func idPrefix(kind NodeKind) string {
	switch kind {
	case KindReport:
		return "R"
	case KindExternalSource:
		return "E"
	case KindFactCheck:
		return "F"
	case KindMediaVariant:
		return "M"
	default:
		return "N"
	}
}

// newNodeID generates a globally-unique, kind-prefixed node id.
// Mirrors the donor's composite-id convention (builder.go,
// buildCompositeNodeID) adapted to this domain's single-field prefix
// rather than a <repo>:<type>:<id> triple.
func newNodeID(kind NodeKind) string {
	return idPrefix(kind) + "-" + uuid.NewString()
}

// newEdgeID generates a globally-unique edge id.
func newEdgeID() string {
	return "E-" + uuid.NewString()
}
