package graphstore

import (
	"fmt"
	"sync"
	"time"

	blackboarderrors "github.com/Samarth061/wolf-trace-backend/internal/errors"
	"github.com/Samarth061/wolf-trace-backend/internal/logging"
)

// MutationListener receives every mutation record the Store produces,
// in the order mutations occurred (§4.2 "Mutation delivery"). The
// Store holds no import dependency on its listeners' packages; the
// Subscriber Fan-Out and the Blackboard Controller each implement
// this interface and are registered at wiring time, in the order the
// spec requires (fan-out first, controller second).
type MutationListener interface {
	OnMutation(MutationRecord)
}

// Store is the authoritative in-process graph: node map, edge map,
// per-case report index, per-case adjacency index and per-case
// metadata, guarded by a single mutex so every mutation path is
// serialized and mutation-record ordering is preserved (§5
// "Shared-resource policy"). Grounded on the donor's
// internal/atomizer/state_tracker.go mutex-guarded map shape,
// generalized from a single map to the full graph aggregate.
type Store struct {
	mu sync.RWMutex

	nodes map[string]*Node
	edges map[string]*Edge

	reportIndex    map[string][]string          // case_id -> report_id in insertion order
	reportPayload  map[string]map[string]any    // report_id -> raw submitted data
	reportNodeID   map[string]string            // report_id -> node_id
	adjacency      map[string]map[string]map[string]struct{} // case_id -> node_id -> edge_id set
	caseMetadata   map[string]*CaseMetadata

	listeners []MutationListener

	logger *logging.Logger
}

// NewStore creates an empty graph store.
func NewStore() *Store {
	return &Store{
		nodes:         make(map[string]*Node),
		edges:         make(map[string]*Edge),
		reportIndex:   make(map[string][]string),
		reportPayload: make(map[string]map[string]any),
		reportNodeID:  make(map[string]string),
		adjacency:     make(map[string]map[string]map[string]struct{}),
		caseMetadata:  make(map[string]*CaseMetadata),
		logger:        logging.With("component", "graphstore"),
	}
}

// AddListener registers a mutation listener. Not safe to call
// concurrently with mutations; intended for startup wiring only.
func (s *Store) AddListener(l MutationListener) {
	s.listeners = append(s.listeners, l)
}

// AddNode creates a node, generating an id if one was not supplied.
// Rejects a duplicate id (invariant 2). Produces and delivers an
// AddNode mutation record.
func (s *Store) AddNode(kind NodeKind, caseID string, data map[string]any, optionalID string) (*Node, error) {
	s.mu.Lock()

	id := optionalID
	if id == "" {
		id = newNodeID(kind)
	}
	if _, exists := s.nodes[id]; exists {
		s.mu.Unlock()
		return nil, blackboarderrors.ValidationErrorf("node id %q already exists", id)
	}

	node := &Node{
		ID:        id,
		Kind:      kind,
		CaseID:    caseID,
		Data:      cloneData(data),
		CreatedAt: time.Now(),
	}
	s.nodes[id] = node

	rec := MutationRecord{Kind: MutationAddNode, At: node.CreatedAt, Node: node.Clone()}
	s.deliver(rec)
	s.mu.Unlock()

	return node.Clone(), nil
}

// AddEdge creates an edge between two existing nodes in the same
// case (invariant 1). Produces and delivers an AddEdge mutation
// record.
func (s *Store) AddEdge(kind EdgeKind, sourceID, targetID string, data map[string]any) (*Edge, error) {
	s.mu.Lock()

	source, ok := s.nodes[sourceID]
	if !ok {
		s.mu.Unlock()
		return nil, blackboarderrors.ValidationErrorf("source node %q does not exist", sourceID)
	}
	target, ok := s.nodes[targetID]
	if !ok {
		s.mu.Unlock()
		return nil, blackboarderrors.ValidationErrorf("target node %q does not exist", targetID)
	}
	if source.CaseID != target.CaseID {
		s.mu.Unlock()
		return nil, blackboarderrors.ValidationErrorf("cross-case edge rejected: %q is case %q, %q is case %q",
			sourceID, source.CaseID, targetID, target.CaseID)
	}

	edge := &Edge{
		ID:           newEdgeID(),
		Kind:         kind,
		SourceNodeID: sourceID,
		TargetNodeID: targetID,
		CaseID:       source.CaseID,
		Data:         cloneData(data),
		CreatedAt:    time.Now(),
	}
	s.edges[edge.ID] = edge
	s.indexAdjacency(edge)

	rec := MutationRecord{Kind: MutationAddEdge, At: edge.CreatedAt, Edge: edge.Clone()}
	s.deliver(rec)
	s.mu.Unlock()

	return edge.Clone(), nil
}

// UpdateNode merges patch into the node's data (keys in patch
// overwrite, other keys are preserved — invariant 4). Always produces
// a mutation record, even for an empty patch (§8 round-trip
// property: this is intentional, it lets external logic re-trigger).
func (s *Store) UpdateNode(nodeID string, patch map[string]any) (*Node, error) {
	s.mu.Lock()

	node, ok := s.nodes[nodeID]
	if !ok {
		s.mu.Unlock()
		return nil, blackboarderrors.ValidationErrorf("node %q does not exist", nodeID)
	}

	if node.Data == nil {
		node.Data = make(map[string]any)
	}
	for k, v := range patch {
		node.Data[k] = v
	}

	rec := MutationRecord{
		Kind:       MutationUpdateNode,
		At:         time.Now(),
		Node:       node.Clone(),
		MergedData: cloneData(patch),
	}
	s.deliver(rec)
	s.mu.Unlock()

	return node.Clone(), nil
}

// GetNode returns a copy of the node, or nil if it does not exist.
func (s *Store) GetNode(id string) *Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes[id].Clone()
}

// GetEdge returns a copy of the edge, or nil if it does not exist.
func (s *Store) GetEdge(id string) *Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edges[id].Clone()
}

// CaseSnapshot returns all nodes and edges sharing case_id.
func (s *Store) CaseSnapshot(caseID string) CaseSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.caseSnapshotLocked(caseID)
}

func (s *Store) caseSnapshotLocked(caseID string) CaseSnapshot {
	snap := CaseSnapshot{CaseID: caseID}
	for _, n := range s.nodes {
		if n.CaseID == caseID {
			snap.Nodes = append(snap.Nodes, n.Clone())
		}
	}
	for _, e := range s.edges {
		if e.CaseID == caseID {
			snap.Edges = append(snap.Edges, e.Clone())
		}
	}
	return snap
}

// AllCases returns a summary of every case currently known to the
// store (by scanning nodes/edges — there is no separate case
// registry, a case is purely "nodes/edges sharing a case_id", §3).
func (s *Store) AllCases() []CaseSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]*CaseSummary)
	order := []string{}
	ensure := func(caseID string) *CaseSummary {
		cs, ok := counts[caseID]
		if !ok {
			cs = &CaseSummary{CaseID: caseID}
			counts[caseID] = cs
			order = append(order, caseID)
		}
		return cs
	}
	for _, n := range s.nodes {
		ensure(n.CaseID).NodeCount++
	}
	for _, e := range s.edges {
		ensure(e.CaseID).EdgeCount++
	}
	for caseID, reports := range s.reportIndex {
		ensure(caseID).ReportCount = len(reports)
	}
	summaries := make([]CaseSummary, 0, len(order))
	for _, caseID := range order {
		cs := *counts[caseID]
		if meta, ok := s.caseMetadata[caseID]; ok {
			m := *meta
			cs.Metadata = &m
		}
		summaries = append(summaries, cs)
	}
	return summaries
}

// AddReport appends to the per-case report index (append-only,
// invariant 5) and stores the raw report payload. It does not itself
// create a node — callers use AddNode first, then AddReport to
// register the report under its case.
func (s *Store) AddReport(caseID, reportID string, reportData map[string]any, reportNodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[reportNodeID]; !ok {
		return blackboarderrors.ValidationErrorf("report node %q does not exist", reportNodeID)
	}

	s.reportIndex[caseID] = append(s.reportIndex[caseID], reportID)
	s.reportPayload[reportID] = cloneData(reportData)
	s.reportNodeID[reportID] = reportNodeID
	return nil
}

// ReportIDs returns the case's report ids in insertion order.
func (s *Store) ReportIDs(caseID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.reportIndex[caseID]))
	copy(out, s.reportIndex[caseID])
	return out
}

// SetCaseMetadata replaces the metadata fields tracked for a case,
// merging into the freeform Fields bag the way UpdateNode merges data.
func (s *Store) SetCaseMetadata(caseID string, fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, ok := s.caseMetadata[caseID]
	if !ok {
		meta = &CaseMetadata{CaseID: caseID, Fields: make(map[string]any)}
		s.caseMetadata[caseID] = meta
	}
	for k, v := range fields {
		switch k {
		case "label":
			if str, ok := v.(string); ok {
				meta.Label = str
			}
		case "status":
			if str, ok := v.(string); ok {
				meta.Status = str
			}
		case "summary":
			if str, ok := v.(string); ok {
				meta.Summary = str
			}
		default:
			if meta.Fields == nil {
				meta.Fields = make(map[string]any)
			}
			meta.Fields[k] = v
		}
	}
}

// GetCaseMetadata returns a case's metadata, or false if none has
// been set.
func (s *Store) GetCaseMetadata(caseID string) (CaseMetadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta, ok := s.caseMetadata[caseID]
	if !ok {
		return CaseMetadata{}, false
	}
	return *meta, true
}

// ReportsInCase returns every report node in a case, in insertion
// order, read from the report index (used by the clustering source to
// iterate candidate peers without scanning all nodes, §3).
func (s *Store) ReportsInCase(caseID string) []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.reportIndex[caseID]
	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := s.reportNodeID[id]; ok {
			if node, exists := s.nodes[n]; exists {
				out = append(out, node.Clone())
			}
		}
	}
	return out
}

// MediaVariantsInCase returns every media_variant node in a case.
func (s *Store) MediaVariantsInCase(caseID string) []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Node
	for _, n := range s.nodes {
		if n.CaseID == caseID && n.Kind == KindMediaVariant {
			out = append(out, n.Clone())
		}
	}
	return out
}

// OutgoingEdges returns every edge whose source is nodeID, restricted
// to the node's case via the adjacency index.
func (s *Store) OutgoingEdges(nodeID string) []*Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.nodes[nodeID]
	if !ok {
		return nil
	}
	var out []*Edge
	for edgeID := range s.adjacency[node.CaseID][nodeID] {
		if e, ok := s.edges[edgeID]; ok && e.SourceNodeID == nodeID {
			out = append(out, e.Clone())
		}
	}
	return out
}

func (s *Store) indexAdjacency(e *Edge) {
	caseIdx, ok := s.adjacency[e.CaseID]
	if !ok {
		caseIdx = make(map[string]map[string]struct{})
		s.adjacency[e.CaseID] = caseIdx
	}
	for _, nodeID := range []string{e.SourceNodeID, e.TargetNodeID} {
		set, ok := caseIdx[nodeID]
		if !ok {
			set = make(map[string]struct{})
			caseIdx[nodeID] = set
		}
		set[e.ID] = struct{}{}
	}
}

// deliver fans a mutation record out to listeners in registration
// order. Called while s.mu is still held by the mutating method, so
// concurrent callers of AddNode/AddEdge/UpdateNode deliver in the
// exact order their mutations were applied — a second mutator blocks
// on Lock until the first mutator's delivery round has completed, so
// listeners never observe mutation N+1 before mutation N. Listener
// implementations must not call back into Store (none of the
// registered listeners do); doing so would deadlock against this lock.
// A listener must still not stall the producer for long: OnMutation
// implementations bound their own work (fan-out uses a per-subscriber
// send timeout, the Controller only enqueues).
func (s *Store) deliver(rec MutationRecord) {
	for _, l := range s.listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					if s.logger != nil {
						s.logger.Error("mutation listener panicked", "error", fmt.Sprintf("%v", r))
					}
				}
			}()
			l.OnMutation(rec)
		}()
	}
}
