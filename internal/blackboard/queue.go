package blackboard

import (
	"container/heap"

	"github.com/Samarth061/wolf-trace-backend/internal/graphstore"
)

// task is one scheduled invocation of a source against a case.
// Ordering is (priority, seq): lower priority value runs first, ties
// broken strictly FIFO by seq (§9 "Do not rely on language-provided
// priority queues that break ties arbitrarily").
type task struct {
	priority Priority
	seq      uint64
	source   *Source
	caseID   string
	rec      graphstore.MutationRecord
}

// taskHeap is a binary min-heap over (priority, seq), implementing
// container/heap.Interface directly rather than reaching for a
// generic priority-queue library — this concern is small enough and
// specific enough (strict tie-break by insertion order) that the
// standard library's heap primitive, wrapped in five methods, is the
// idiomatic Go way to build it.
type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) {
	*h = append(*h, x.(*task))
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

var _ heap.Interface = (*taskHeap)(nil)
