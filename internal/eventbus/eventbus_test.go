package eventbus

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmit_DeliversToAllSubscribers(t *testing.T) {
	bus := New()
	bus.Start()

	var mu sync.Mutex
	var got []any
	done := make(chan struct{}, 2)

	handler := func(payload any) {
		mu.Lock()
		got = append(got, payload)
		mu.Unlock()
		done <- struct{}{}
	}
	bus.Subscribe("topic", handler)
	bus.Subscribe("topic", func(payload any) { done <- struct{}{} })

	bus.Emit("topic", "hello")

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for handler dispatch")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0])
}

func TestSubscribe_SameHandlerTwiceIsIdempotent(t *testing.T) {
	bus := New()
	bus.Start()

	var calls int
	var mu sync.Mutex
	handler := func(payload any) {
		mu.Lock()
		calls++
		mu.Unlock()
	}

	bus.Subscribe("topic", handler)
	bus.Subscribe("topic", handler)

	done := make(chan struct{})
	bus.Subscribe("topic", func(payload any) { close(done) })
	bus.Emit("topic", nil)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls, "registering the same handler twice must not duplicate dispatch")
}

func TestEmit_AfterStopIsNoop(t *testing.T) {
	bus := New()
	bus.Start()

	var called bool
	bus.Subscribe("topic", func(payload any) { called = true })
	bus.Stop()
	bus.Emit("topic", nil)

	time.Sleep(50 * time.Millisecond)
	assert.False(t, called)
}

func TestEmit_HandlerPanicDoesNotAffectOthers(t *testing.T) {
	bus := New()
	bus.Start()

	done := make(chan struct{})
	bus.Subscribe("topic", func(payload any) { panic("boom") })
	bus.Subscribe("topic", func(payload any) { close(done) })

	bus.Emit("topic", nil)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("panicking handler should not block sibling handlers")
	}
}
