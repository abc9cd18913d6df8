// Package blackboard implements the Blackboard Controller (§4.3): it
// schedules registered Knowledge Sources in response to graph
// mutation records, enforcing per-(source,case) dedup, per-source
// cooldowns, and a per-case anti-loop cap, via a strict-FIFO priority
// queue.
package blackboard

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Samarth061/wolf-trace-backend/internal/graphstore"
	"github.com/Samarth061/wolf-trace-backend/internal/logging"
)

// Config carries the tunables §6 documents for the Controller.
type Config struct {
	MaxTriggersPerCase    int
	HandlerTimeout        time.Duration
	WorkerConcurrency     int
	CaseIdleResetInterval time.Duration // 0 disables the idle reset sweep (open question, §9)
}

// DefaultConfig mirrors the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxTriggersPerCase: 10,
		HandlerTimeout:     30 * time.Second,
		WorkerConcurrency:  1,
	}
}

// Controller is the scheduler. Construct with NewController, register
// sources with Register, then Start/Stop its lifecycle.
type Controller struct {
	cfg    Config
	logger *logging.Logger

	mu           sync.Mutex
	sources      []*Source
	q            taskHeap
	seq          uint64
	active       map[string]struct{}
	lastRun      map[string]time.Time
	triggerCount map[string]int
	lastActivity map[string]time.Time

	wake chan struct{}

	runCtx    context.Context
	runCancel context.CancelFunc
	group     *errgroup.Group
	started   bool
}

// NewController creates an unstarted Controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxTriggersPerCase <= 0 {
		cfg.MaxTriggersPerCase = 10
	}
	if cfg.HandlerTimeout <= 0 {
		cfg.HandlerTimeout = 30 * time.Second
	}
	if cfg.WorkerConcurrency <= 0 {
		cfg.WorkerConcurrency = 1
	}
	return &Controller{
		cfg:          cfg,
		logger:       logging.With("component", "blackboard"),
		active:       make(map[string]struct{}),
		lastRun:      make(map[string]time.Time),
		triggerCount: make(map[string]int),
		lastActivity: make(map[string]time.Time),
		wake:         make(chan struct{}, 1),
	}
}

// Register adds a Knowledge Source. Registration is not safe to call
// concurrently with Start/Stop or with mutations flowing in; do it at
// startup before wiring the Controller to the Graph Store.
func (c *Controller) Register(s *Source) {
	c.sources = append(c.sources, s)
}

// Start launches the worker(s). WorkerConcurrency goroutines drain the
// priority queue; the dedup invariant (§4.3) makes running more than
// one safe, since a (source, case) pair is only ever enqueued once
// while active.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	c.runCtx, c.runCancel = context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(c.runCtx)
	c.group = g

	for i := 0; i < c.cfg.WorkerConcurrency; i++ {
		g.Go(func() error {
			c.workerLoop(gctx)
			return nil
		})
	}

	if c.cfg.CaseIdleResetInterval > 0 {
		g.Go(func() error {
			c.idleResetLoop(gctx)
			return nil
		})
	}
}

// Stop signals workers to stop dequeueing new work and waits for
// in-flight handlers to finish (§4.3 "Lifecycle").
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	c.mu.Unlock()

	c.runCancel()
	_ = c.group.Wait()
}

// OnMutation implements graphstore.MutationListener; the Graph Store
// calls it synchronously for every accepted mutation, after
// delivering to fan-out subscribers (§4.2 "Mutation delivery").
func (c *Controller) OnMutation(rec graphstore.MutationRecord) {
	eventType := rec.EventType()
	caseID := rec.CaseIDOf()
	c.notify(eventType, caseID, rec)
}

// notify is the scheduling decision described in §4.3. It is
// synchronous with the mutation that produced it and only ever
// enqueues; it never invokes a handler inline.
func (c *Controller) notify(eventType, caseID string, rec graphstore.MutationRecord) {
	if caseID == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastActivity[caseID] = time.Now()

	if c.triggerCount[caseID] >= c.cfg.MaxTriggersPerCase {
		if c.logger != nil {
			c.logger.Warn("anti-loop cap reached, dropping trigger", "case_id", caseID, "event_type", eventType)
		}
		return
	}

	now := time.Now()
	for _, s := range c.sources {
		if !s.reactsTo(eventType) {
			continue
		}
		if s.Condition != nil && !s.Condition(rec) {
			continue
		}
		key := activeKey(s.Name, caseID)
		if _, busy := c.active[key]; busy {
			continue
		}
		if last, ok := c.lastRun[key]; ok && now.Sub(last) < s.Cooldown {
			continue
		}

		c.seq++
		heap.Push(&c.q, &task{
			priority: s.Priority,
			seq:      c.seq,
			source:   s,
			caseID:   caseID,
			rec:      rec,
		})
		c.active[key] = struct{}{}
		c.triggerCount[caseID]++

		if c.triggerCount[caseID] >= c.cfg.MaxTriggersPerCase {
			break
		}
	}

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// workerLoop pops tasks in (priority, seq) order and runs them until
// ctx is cancelled.
func (c *Controller) workerLoop(ctx context.Context) {
	for {
		c.mu.Lock()
		if c.q.Len() == 0 {
			c.mu.Unlock()
			select {
			case <-ctx.Done():
				return
			case <-c.wake:
				continue
			}
		}
		t := heap.Pop(&c.q).(*task)
		c.mu.Unlock()

		c.run(ctx, t)

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// run invokes a single task's handler under a timeout and guarantees
// bookkeeping (last_run_time, active) regardless of outcome (§9
// "Handler cancellation").
func (c *Controller) run(parent context.Context, t *task) {
	ctx, cancel := context.WithTimeout(parent, c.cfg.HandlerTimeout)
	defer cancel()

	func() {
		defer func() {
			if r := recover(); r != nil && c.logger != nil {
				c.logger.Error("handler panicked", "source", t.source.Name, "case_id", t.caseID, "error", fmt.Sprintf("%v", r))
			}
		}()
		if err := t.source.Handler(ctx, t.rec); err != nil && c.logger != nil {
			c.logger.Warn("handler returned error", "source", t.source.Name, "case_id", t.caseID, "error", err)
		}
	}()

	key := activeKey(t.source.Name, t.caseID)
	c.mu.Lock()
	delete(c.active, key)
	c.lastRun[key] = time.Now()
	c.mu.Unlock()
}

// idleResetLoop implements the documented open-question resolution
// (§9): trigger_count is not reset by default, but an operator can opt
// into resetting a case's count once it has been quiet for
// CaseIdleResetInterval.
func (c *Controller) idleResetLoop(ctx context.Context) {
	sweep := c.cfg.CaseIdleResetInterval / 4
	if sweep < time.Second {
		sweep = time.Second
	}
	ticker := time.NewTicker(sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.resetIdleCases()
		}
	}
}

func (c *Controller) resetIdleCases() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for caseID, last := range c.lastActivity {
		if now.Sub(last) >= c.cfg.CaseIdleResetInterval {
			delete(c.triggerCount, caseID)
			delete(c.lastActivity, caseID)
		}
	}
}

func activeKey(sourceName, caseID string) string {
	return sourceName + "|" + caseID
}

// TriggerCount reports the current trigger count for a case, exposed
// for diagnostics and tests.
func (c *Controller) TriggerCount(caseID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.triggerCount[caseID]
}

// ActiveCount reports how many (source, case) pairs are currently
// queued or running, exposed for diagnostics and tests.
func (c *Controller) ActiveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.active)
}
