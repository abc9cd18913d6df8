package blackboard

import (
	"context"
	"time"

	"github.com/Samarth061/wolf-trace-backend/internal/graphstore"
)

// Priority is the scheduling priority of a Knowledge Source (§4.3).
// Lower values run first.
type Priority int

const (
	CRITICAL Priority = iota
	HIGH
	MEDIUM
	LOW
	BACKGROUND
)

func (p Priority) String() string {
	switch p {
	case CRITICAL:
		return "CRITICAL"
	case HIGH:
		return "HIGH"
	case MEDIUM:
		return "MEDIUM"
	case LOW:
		return "LOW"
	case BACKGROUND:
		return "BACKGROUND"
	default:
		return "UNKNOWN"
	}
}

// Handler performs a Knowledge Source's work for one triggering
// mutation, producing further graph mutations through the store it
// was wired against when the source was built. It must tolerate
// external failure internally (§7 external-service-failure) rather
// than surface it as a reason to poison the case.
type Handler func(ctx context.Context, rec graphstore.MutationRecord) error

// Condition is an extra gate evaluated against the triggering
// mutation, e.g. "report payload has media_url" (§4.3).
type Condition func(rec graphstore.MutationRecord) bool

// Source is a registered Knowledge Source (§4.3 "Registration").
type Source struct {
	Name              string
	Priority          Priority
	TriggerEventTypes map[string]struct{}
	Handler           Handler
	Condition         Condition
	Cooldown          time.Duration
}

// NewSource builds a Source from a slice of trigger event types for
// convenience over hand-building the set literal.
func NewSource(name string, priority Priority, triggerEventTypes []string, handler Handler) *Source {
	set := make(map[string]struct{}, len(triggerEventTypes))
	for _, t := range triggerEventTypes {
		set[t] = struct{}{}
	}
	return &Source{
		Name:              name,
		Priority:          priority,
		TriggerEventTypes: set,
		Handler:           handler,
		Cooldown:          2 * time.Second,
	}
}

// WithCondition sets an optional extra gate and returns the source for
// chaining at registration time.
func (s *Source) WithCondition(c Condition) *Source {
	s.Condition = c
	return s
}

// WithCooldown overrides the default cooldown.
func (s *Source) WithCooldown(d time.Duration) *Source {
	s.Cooldown = d
	return s
}

func (s *Source) reactsTo(eventType string) bool {
	_, ok := s.TriggerEventTypes[eventType]
	return ok
}
