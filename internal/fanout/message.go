// Package fanout delivers graph mutations and alerts to outbound
// subscribers: the caseboard stream (one snapshot on connect, then one
// message per mutation) and the alert stream (one message per
// published alert), §4.5. Both streams are best-effort: a slow or
// failing subscriber is dropped rather than allowed to back-pressure
// the producer.
package fanout

import (
	"time"

	"github.com/Samarth061/wolf-trace-backend/internal/graphstore"
)

// MessageKind tags the variant of a caseboard or alert message.
type MessageKind string

const (
	KindSnapshot    MessageKind = "snapshot"
	KindGraphUpdate MessageKind = "graph_update"
	KindNewAlert    MessageKind = "new_alert"
)

// Message is the wire-agnostic payload delivered to a subscriber. Wire
// framing (JSON over a websocket, SSE, gRPC stream...) is left to the
// transport boundary; this struct is what gets marshalled.
type Message struct {
	Kind      MessageKind `json:"kind"`
	Action    string      `json:"action,omitempty"`
	Payload   any         `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func snapshotMessage(snapshots []graphstore.CaseSnapshot) Message {
	return Message{Kind: KindSnapshot, Payload: snapshots, Timestamp: time.Now()}
}

func graphUpdateMessage(rec graphstore.MutationRecord) Message {
	return Message{
		Kind:      KindGraphUpdate,
		Action:    string(rec.Kind),
		Payload:   mutationPayload(rec),
		Timestamp: rec.At,
	}
}

// mutationPayload extracts the "full post-mutation representation"
// the spec requires (§4.2): the new node for AddNode/UpdateNode, the
// new edge for AddEdge.
func mutationPayload(rec graphstore.MutationRecord) any {
	switch rec.Kind {
	case graphstore.MutationAddNode, graphstore.MutationUpdateNode:
		return rec.Node
	case graphstore.MutationAddEdge:
		return rec.Edge
	default:
		return nil
	}
}
