// Package graphstore owns the authoritative in-process knowledge
// graph: nodes, edges, per-case indexes and case metadata. Every
// mutation synchronously produces a MutationRecord (§4.2).
package graphstore

import "time"

// NodeKind enumerates the node kinds the core understands (§3).
type NodeKind string

const (
	KindReport        NodeKind = "report"
	KindExternalSource NodeKind = "external_source"
	KindFactCheck     NodeKind = "fact_check"
	KindMediaVariant  NodeKind = "media_variant"
)

// EdgeKind enumerates the edge kinds the core understands (§3).
type EdgeKind string

const (
	EdgeSimilarTo   EdgeKind = "similar_to"
	EdgeRepostOf    EdgeKind = "repost_of"
	EdgeMutationOf  EdgeKind = "mutation_of"
	EdgeDebunkedBy  EdgeKind = "debunked_by"
	EdgeAmplifiedBy EdgeKind = "amplified_by"
)

// Node is a single vertex in the graph. Data is a free-form bag; the
// core reads a handful of well-known keys out of it (timestamp,
// location, claims, media_url, debunk_count, semantic_role) but never
// requires them — missing keys are the caller's problem, not a
// validation error, per the "schemaless data" design note.
type Node struct {
	ID        string
	Kind      NodeKind
	CaseID    string
	Data      map[string]any
	CreatedAt time.Time
}

// Clone returns a deep-enough copy of the node: a new Data map, so a
// caller cannot mutate graph-internal state by modifying what they
// were handed back (§9 "no sharing of references to internal objects").
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := *n
	cp.Data = cloneData(n.Data)
	return &cp
}

// Edge is a single directed relationship between two nodes that share
// a case_id (enforced at insertion, invariant 1 in §3).
type Edge struct {
	ID           string
	Kind         EdgeKind
	SourceNodeID string
	TargetNodeID string
	CaseID       string
	Data         map[string]any
	CreatedAt    time.Time
}

// Clone returns a copy with its own Data map.
func (e *Edge) Clone() *Edge {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Data = cloneData(e.Data)
	return &cp
}

// CaseMetadata holds the optional label/status/summary/freeform fields
// attached to a case (§3 "A case is implicit").
type CaseMetadata struct {
	CaseID  string
	Label   string
	Status  string
	Summary string
	Fields  map[string]any
}

// CaseSnapshot is the full set of nodes and edges sharing a case_id,
// returned by case_snapshot (§4.2) and used as the caseboard stream's
// initial "snapshot" payload (§4.5).
type CaseSnapshot struct {
	CaseID string  `json:"case_id"`
	Nodes  []*Node `json:"nodes"`
	Edges  []*Edge `json:"edges"`
}

// CaseSummary is one entry of all_cases() (§4.2).
type CaseSummary struct {
	CaseID      string        `json:"case_id"`
	NodeCount   int           `json:"node_count"`
	EdgeCount   int           `json:"edge_count"`
	ReportCount int           `json:"report_count"`
	Metadata    *CaseMetadata `json:"metadata,omitempty"`
}

// MutationKind tags the variant of a MutationRecord (§3).
type MutationKind string

const (
	MutationAddNode    MutationKind = "add_node"
	MutationAddEdge    MutationKind = "add_edge"
	MutationUpdateNode MutationKind = "update_node"
)

// MutationRecord is the tagged value produced atomically with every
// graph change (§3). Exactly one is produced per accepted mutation,
// and it is delivered to caseboard subscribers and then to the
// Controller, in that order (invariant 3).
type MutationRecord struct {
	Kind MutationKind
	At   time.Time

	// AddNode / UpdateNode carry the full node after the change.
	Node *Node

	// AddEdge carries the new edge.
	Edge *Edge

	// UpdateNode additionally carries the merged patch that produced
	// the new node, for observers that only care about the delta.
	MergedData map[string]any
}

// EventType derives the trigger event type the Controller dispatches
// on, without mutating the record (§4.2 "Event type derivation").
func (m MutationRecord) EventType() string {
	switch m.Kind {
	case MutationAddNode:
		return "node:" + string(m.Node.Kind)
	case MutationAddEdge:
		return "edge:" + string(m.Edge.Kind)
	case MutationUpdateNode:
		return "update:" + string(m.Node.Kind)
	default:
		return ""
	}
}

// CaseIDOf returns the case a mutation record belongs to, used by the
// Controller to extract case scope from a payload (§4.3 step 1).
func (m MutationRecord) CaseIDOf() string {
	switch m.Kind {
	case MutationAddNode, MutationUpdateNode:
		if m.Node != nil {
			return m.Node.CaseID
		}
	case MutationAddEdge:
		if m.Edge != nil {
			return m.Edge.CaseID
		}
	}
	return ""
}

func cloneData(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
