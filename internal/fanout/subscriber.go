package fanout

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Subscriber is an outbound sink owned by the Fan-Out. Each has its
// own bounded buffer (§9 "independent sinks with their own bounded
// outbound buffer"); delivery waits at most the registry's send
// timeout on a full or stuck subscriber, which is then dropped. The
// message channel itself is never
// closed — only done is, on removal — so a send racing a removal
// degrades to a dropped message rather than a send-on-closed-channel
// panic.
type Subscriber struct {
	ID   string
	ch   chan Message
	done chan struct{}
}

func newSubscriber(bufSize int) *Subscriber {
	return &Subscriber{
		ID:   uuid.NewString(),
		ch:   make(chan Message, bufSize),
		done: make(chan struct{}),
	}
}

// Messages returns the channel a caller (e.g. an HTTP/websocket
// handler) reads from to drain this subscriber's messages.
func (s *Subscriber) Messages() <-chan Message {
	return s.ch
}

// Done is closed once the subscriber has been removed from the
// registry; a reader should stop draining Messages() once it fires.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

// registry is the shared bookkeeping both streams use: a mutex-guarded
// set of subscribers, added on Subscribe and removed on first send
// failure or explicit Unsubscribe (§4.5 "added on connect and removed
// on disconnect or first send error").
type registry struct {
	mu          sync.Mutex
	subscribers map[string]*Subscriber
	bufSize     int
	sendTimeout time.Duration
}

func newRegistry(bufSize int, sendTimeout time.Duration) *registry {
	return &registry{
		subscribers: make(map[string]*Subscriber),
		bufSize:     bufSize,
		sendTimeout: sendTimeout,
	}
}

func (r *registry) add() *Subscriber {
	sub := newSubscriber(r.bufSize)
	r.mu.Lock()
	r.subscribers[sub.ID] = sub
	r.mu.Unlock()
	return sub
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	sub, ok := r.subscribers[id]
	if ok {
		delete(r.subscribers, id)
	}
	r.mu.Unlock()
	if ok {
		close(sub.done)
	}
}

func (r *registry) list() []*Subscriber {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Subscriber, 0, len(r.subscribers))
	for _, s := range r.subscribers {
		out = append(out, s)
	}
	return out
}

// send attempts a bounded-time delivery; on timeout, or if the
// subscriber was already removed, it is dropped.
func (r *registry) send(sub *Subscriber, msg Message) {
	timer := time.NewTimer(r.sendTimeout)
	defer timer.Stop()

	select {
	case sub.ch <- msg:
	case <-sub.done:
	case <-timer.C:
		r.remove(sub.ID)
	}
}
