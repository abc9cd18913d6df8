// Package eventbus is a process-wide topic-to-handler registry for
// domain events that are not graph mutations (§4.1), e.g.
// "ReportReceived" after intake accepts a report, or "edge:created"
// after a manual link is drawn through an operator tool. Graph
// mutations flow through internal/graphstore directly to the
// Controller and never touch this bus.
package eventbus

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/Samarth061/wolf-trace-backend/internal/logging"
)

// Handler consumes an emitted payload. A handler that panics is
// caught and logged; it never takes down the bus or blocks other
// handlers (§4.1 "Handler exceptions are logged and otherwise
// ignored").
type Handler func(payload any)

// Bus is a topic-keyed registry of handlers. The zero value is not
// usable; construct with New.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]registration
	stopped  bool
	logger   *logging.Logger
}

type registration struct {
	key     uintptr
	handler Handler
}

// New creates an event bus. It dispatches from the start; Start is
// only needed to re-enable dispatch after Stop.
func New() *Bus {
	return &Bus{
		handlers: make(map[string][]registration),
		logger:   logging.With("component", "eventbus"),
	}
}

// Subscribe registers handler under topic. Registering the same
// (topic, handler) pair twice is a no-op on the second call (§4.1
// "idempotent registration"); sameness is the handler's underlying
// function pointer, via reflect, since Go function values are not
// comparable with ==.
func (b *Bus) Subscribe(topic string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := reflect.ValueOf(handler).Pointer()
	for _, r := range b.handlers[topic] {
		if r.key == key {
			return
		}
	}
	b.handlers[topic] = append(b.handlers[topic], registration{key: key, handler: handler})
}

// Start (re-)enables dispatch after Stop. Calling it on a bus that is
// already dispatching is harmless.
func (b *Bus) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped = false
}

// Stop makes every subsequent Emit a no-op (§4.1). In-flight handler
// goroutines already dispatched are not cancelled; Stop only gates new
// dispatches.
func (b *Bus) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped = true
}

// Emit dispatches payload to every handler subscribed to topic. It is
// fire-and-forget: each handler runs in its own goroutine and Emit
// returns immediately without waiting for any of them (§4.1 "the
// emitter returns as soon as the event is enqueued").
func (b *Bus) Emit(topic string, payload any) {
	b.mu.RLock()
	if b.stopped {
		b.mu.RUnlock()
		return
	}
	handlers := make([]registration, len(b.handlers[topic]))
	copy(handlers, b.handlers[topic])
	b.mu.RUnlock()

	for _, r := range handlers {
		h := r.handler
		go func() {
			defer func() {
				if rec := recover(); rec != nil && b.logger != nil {
					b.logger.Error("event handler panicked", "topic", topic, "error", fmt.Sprintf("%v", rec))
				}
			}()
			h(payload)
		}()
	}
}
