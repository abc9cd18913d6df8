package fanout

import (
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/Samarth061/wolf-trace-backend/internal/alerts"
)

// AlertStream is the alert stream (§4.5): one new_alert message per
// published alert. It implements alerts.Publisher so anything holding
// an alerts.Publisher can publish into it without depending on
// internal/fanout directly.
type AlertStream struct {
	reg *registry
}

// NewAlertStream creates an alert stream with per-subscriber buffer
// size bufSize and the given send timeout.
func NewAlertStream(bufSize int, sendTimeout time.Duration) *AlertStream {
	return &AlertStream{reg: newRegistry(bufSize, sendTimeout)}
}

// Subscribe registers a new alert subscriber. Unlike the caseboard
// stream there is no initial snapshot — alert history is not part of
// this engine's scope (§6 "alert publication itself is out of scope").
func (a *AlertStream) Subscribe() *Subscriber {
	return a.reg.add()
}

// Unsubscribe removes a subscriber explicitly.
func (a *AlertStream) Unsubscribe(id string) {
	a.reg.remove(id)
}

// Publish implements alerts.Publisher.
func (a *AlertStream) Publish(alert alerts.Alert) {
	subs := a.reg.list()
	if len(subs) == 0 {
		return
	}
	msg := Message{Kind: KindNewAlert, Payload: alert, Timestamp: time.Now()}

	p := pool.New().WithMaxGoroutines(maxFanoutWorkers(len(subs)))
	for _, sub := range subs {
		s := sub
		p.Go(func() {
			a.reg.send(s, msg)
		})
	}
	p.Wait()
}

var _ alerts.Publisher = (*AlertStream)(nil)
