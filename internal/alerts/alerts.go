// Package alerts defines the alert value the alert stream carries.
// Alert publication itself is explicitly out of scope (§6): nothing
// in this module decides when an alert fires, only what one looks
// like and how it reaches the fan-out.
package alerts

import "time"

// Severity mirrors the knowledge source priority scale loosely; it is
// set by whatever upstream logic publishes the alert, not by this
// package.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is the minimal payload carried by a "new_alert" fan-out
// message (§4.5).
type Alert struct {
	ID        string         `json:"id"`
	CaseID    string         `json:"case_id"`
	Severity  Severity       `json:"severity"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Publisher is implemented by the fan-out's alert stream. Publication
// logic (deciding when an alert should fire) lives outside this
// package; Publish only needs to exist so a caller has something to
// call.
type Publisher interface {
	Publish(Alert)
}

// NoopPublisher discards every alert, for a caller that has no alert
// stream wired.
type NoopPublisher struct{}

func (NoopPublisher) Publish(Alert) {}
