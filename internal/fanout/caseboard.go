package fanout

import (
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/Samarth061/wolf-trace-backend/internal/graphstore"
	"github.com/Samarth061/wolf-trace-backend/internal/logging"
)

// Caseboard is the caseboard stream (§4.5): on Subscribe it hands the
// new subscriber one snapshot message of every case, then every
// subsequent mutation is broadcast as a graph_update message, in the
// order mutations occur. It implements graphstore.MutationListener so
// the Store can deliver to it directly.
type Caseboard struct {
	reg    *registry
	store  *graphstore.Store
	logger *logging.Logger
}

// NewCaseboard creates a caseboard stream backed by store, with
// per-subscriber buffer size bufSize and a send timeout of
// sendTimeout before a slow subscriber is dropped (§6
// fanout_send_timeout_seconds).
func NewCaseboard(store *graphstore.Store, bufSize int, sendTimeout time.Duration) *Caseboard {
	return &Caseboard{
		reg:    newRegistry(bufSize, sendTimeout),
		store:  store,
		logger: logging.With("component", "fanout.caseboard"),
	}
}

// Subscribe registers a new subscriber and immediately delivers the
// initial snapshot (§4.5, §8 "subscribing twice... yields identical
// initial snapshots"). The snapshot is computed from the current case
// set at subscribe time, so two concurrent subscribers may legitimately
// see different snapshots if a mutation lands between them.
func (c *Caseboard) Subscribe() *Subscriber {
	sub := c.reg.add()

	summaries := c.store.AllCases()
	snapshots := make([]graphstore.CaseSnapshot, 0, len(summaries))
	for _, s := range summaries {
		snapshots = append(snapshots, c.store.CaseSnapshot(s.CaseID))
	}

	c.reg.send(sub, snapshotMessage(snapshots))
	return sub
}

// Unsubscribe removes a subscriber explicitly (e.g. on client
// disconnect).
func (c *Caseboard) Unsubscribe(id string) {
	c.reg.remove(id)
}

// OnMutation implements graphstore.MutationListener. It fans the
// mutation out to every current subscriber concurrently, bounded by a
// worker pool, and waits for the round to finish before returning —
// slow subscribers are dropped within sendTimeout rather than allowed
// to stall this call indefinitely (§4.2 "must not stall the remaining
// subscribers"). Grounded on the bounded-concurrency dispatch pattern
// from the retrieval pack's event dispatcher (conc/pool.WithMaxGoroutines).
func (c *Caseboard) OnMutation(rec graphstore.MutationRecord) {
	subs := c.reg.list()
	if len(subs) == 0 {
		return
	}
	msg := graphUpdateMessage(rec)

	p := pool.New().WithMaxGoroutines(maxFanoutWorkers(len(subs)))
	for _, sub := range subs {
		s := sub
		p.Go(func() {
			c.reg.send(s, msg)
		})
	}
	p.Wait()
}

func maxFanoutWorkers(subscriberCount int) int {
	const maxWorkers = 32
	if subscriberCount < maxWorkers {
		return subscriberCount
	}
	return maxWorkers
}
