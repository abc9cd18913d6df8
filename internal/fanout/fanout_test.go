package fanout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Samarth061/wolf-trace-backend/internal/alerts"
	"github.com/Samarth061/wolf-trace-backend/internal/graphstore"
)

func TestCaseboard_SubscribeDeliversInitialSnapshot(t *testing.T) {
	store := graphstore.NewStore()
	_, err := store.AddNode(graphstore.KindReport, "case-1", nil, "")
	require.NoError(t, err)

	cb := NewCaseboard(store, 8, time.Second)
	sub := cb.Subscribe()
	defer cb.Unsubscribe(sub.ID)

	select {
	case msg := <-sub.Messages():
		assert.Equal(t, KindSnapshot, msg.Kind)
	case <-time.After(time.Second):
		t.Fatal("expected initial snapshot message")
	}
}

func TestCaseboard_SubscribingTwiceYieldsIndependentSnapshots(t *testing.T) {
	store := graphstore.NewStore()
	cb := NewCaseboard(store, 8, time.Second)

	subA := cb.Subscribe()
	subB := cb.Subscribe()
	defer cb.Unsubscribe(subA.ID)
	defer cb.Unsubscribe(subB.ID)

	for _, sub := range []*Subscriber{subA, subB} {
		select {
		case msg := <-sub.Messages():
			assert.Equal(t, KindSnapshot, msg.Kind)
		case <-time.After(time.Second):
			t.Fatal("expected initial snapshot message")
		}
	}
}

func TestCaseboard_OnMutationBroadcastsGraphUpdate(t *testing.T) {
	store := graphstore.NewStore()
	cb := NewCaseboard(store, 8, time.Second)
	store.AddListener(cb)

	sub := cb.Subscribe()
	defer cb.Unsubscribe(sub.ID)

	// Drain the initial snapshot first.
	<-sub.Messages()

	_, err := store.AddNode(graphstore.KindReport, "case-1", nil, "")
	require.NoError(t, err)

	select {
	case msg := <-sub.Messages():
		assert.Equal(t, KindGraphUpdate, msg.Kind)
		assert.Equal(t, "add_node", msg.Action)
	case <-time.After(time.Second):
		t.Fatal("expected graph_update message")
	}
}

func TestCaseboard_SlowSubscriberDroppedWithoutBlockingOthers(t *testing.T) {
	store := graphstore.NewStore()
	cb := NewCaseboard(store, 1, 20*time.Millisecond)
	store.AddListener(cb)

	slow := cb.Subscribe()
	fast := cb.Subscribe()
	defer cb.Unsubscribe(fast.ID)

	// Drain both initial snapshots.
	<-slow.Messages()
	<-fast.Messages()

	_, err := store.AddNode(graphstore.KindReport, "case-1", nil, "")
	require.NoError(t, err)

	// Drain fast but leave slow's one-slot buffer holding this first
	// mutation's message unread, so the next mutation's send to slow
	// has nowhere to land and genuinely times out.
	select {
	case <-fast.Messages():
	case <-time.After(time.Second):
		t.Fatal("fast subscriber should still receive the update")
	}

	_, err = store.AddNode(graphstore.KindReport, "case-1", nil, "")
	require.NoError(t, err)

	select {
	case <-fast.Messages():
	case <-time.After(time.Second):
		t.Fatal("fast subscriber should still receive the second update")
	}

	select {
	case <-slow.Done():
	case <-time.After(time.Second):
		t.Fatal("slow subscriber should have been dropped after send timeout")
	}
}

func TestAlertStream_PublishDeliversToSubscribers(t *testing.T) {
	stream := NewAlertStream(8, time.Second)
	sub := stream.Subscribe()
	defer stream.Unsubscribe(sub.ID)

	var pub alerts.Publisher = stream
	pub.Publish(alerts.Alert{ID: "A-1", CaseID: "case-1", Severity: alerts.SeverityCritical, Message: "test"})

	select {
	case msg := <-sub.Messages():
		assert.Equal(t, KindNewAlert, msg.Kind)
		alert, ok := msg.Payload.(alerts.Alert)
		require.True(t, ok)
		assert.Equal(t, "A-1", alert.ID)
	case <-time.After(time.Second):
		t.Fatal("expected new_alert message")
	}
}

func TestAlertStream_UnsubscribeClosesDone(t *testing.T) {
	stream := NewAlertStream(8, time.Second)
	sub := stream.Subscribe()
	stream.Unsubscribe(sub.ID)

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("expected done to be closed after unsubscribe")
	}
}
