package graphstore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingListener struct {
	mu      sync.Mutex
	records []MutationRecord
}

func (l *recordingListener) OnMutation(rec MutationRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
}

func (l *recordingListener) snapshot() []MutationRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]MutationRecord, len(l.records))
	copy(out, l.records)
	return out
}

func TestAddNode_ProducesExactlyOneMutationRecord(t *testing.T) {
	store := NewStore()
	listener := &recordingListener{}
	store.AddListener(listener)

	node, err := store.AddNode(KindReport, "case-1", map[string]any{"text": "hello"}, "")
	require.NoError(t, err)
	require.NotEmpty(t, node.ID)

	records := listener.snapshot()
	require.Len(t, records, 1)
	assert.Equal(t, MutationAddNode, records[0].Kind)
	assert.Equal(t, "node:report", records[0].EventType())
	assert.Equal(t, "case-1", records[0].CaseIDOf())
}

func TestAddNode_DuplicateIDRejected(t *testing.T) {
	store := NewStore()
	_, err := store.AddNode(KindReport, "case-1", nil, "R-fixed")
	require.NoError(t, err)

	_, err = store.AddNode(KindReport, "case-1", nil, "R-fixed")
	assert.Error(t, err)
}

func TestAddEdge_RejectsCrossCaseEndpoints(t *testing.T) {
	store := NewStore()
	a, err := store.AddNode(KindReport, "case-1", nil, "")
	require.NoError(t, err)
	b, err := store.AddNode(KindReport, "case-2", nil, "")
	require.NoError(t, err)

	_, err = store.AddEdge(EdgeSimilarTo, a.ID, b.ID, nil)
	assert.Error(t, err)
}

func TestAddEdge_RejectsMissingEndpoint(t *testing.T) {
	store := NewStore()
	a, err := store.AddNode(KindReport, "case-1", nil, "")
	require.NoError(t, err)

	_, err = store.AddEdge(EdgeSimilarTo, a.ID, "does-not-exist", nil)
	assert.Error(t, err)
}

func TestUpdateNode_MergesAndProducesRecordEvenForEmptyPatch(t *testing.T) {
	store := NewStore()
	listener := &recordingListener{}
	store.AddListener(listener)

	node, err := store.AddNode(KindReport, "case-1", map[string]any{"a": 1}, "")
	require.NoError(t, err)

	updated, err := store.UpdateNode(node.ID, map[string]any{"b": 2})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Data["a"])
	assert.Equal(t, 2, updated.Data["b"])

	_, err = store.UpdateNode(node.ID, map[string]any{})
	require.NoError(t, err)

	records := listener.snapshot()
	// AddNode + two UpdateNode calls, including the empty-patch one.
	require.Len(t, records, 3)
	assert.Equal(t, MutationUpdateNode, records[2].Kind)
}

func TestMutationDelivery_ListenersInRegistrationOrder(t *testing.T) {
	store := NewStore()
	var order []string
	var mu sync.Mutex

	first := listenerFunc(func(rec MutationRecord) {
		mu.Lock()
		order = append(order, "first")
		mu.Unlock()
	})
	second := listenerFunc(func(rec MutationRecord) {
		mu.Lock()
		order = append(order, "second")
		mu.Unlock()
	})
	store.AddListener(first)
	store.AddListener(second)

	_, err := store.AddNode(KindReport, "case-1", nil, "")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"first", "second"}, order)
}

func TestAddReport_RequiresExistingNode(t *testing.T) {
	store := NewStore()
	err := store.AddReport("case-1", "report-1", nil, "does-not-exist")
	assert.Error(t, err)
}

func TestAddReport_IndexesUnderCase(t *testing.T) {
	store := NewStore()
	node, err := store.AddNode(KindReport, "case-1", nil, "")
	require.NoError(t, err)

	require.NoError(t, store.AddReport("case-1", "report-1", map[string]any{"text": "x"}, node.ID))

	ids := store.ReportIDs("case-1")
	assert.Equal(t, []string{"report-1"}, ids)

	reports := store.ReportsInCase("case-1")
	require.Len(t, reports, 1)
	assert.Equal(t, node.ID, reports[0].ID)
}

func TestCaseSnapshot_ReturnsNodesAndEdgesForCase(t *testing.T) {
	store := NewStore()
	a, err := store.AddNode(KindReport, "case-1", nil, "")
	require.NoError(t, err)
	b, err := store.AddNode(KindReport, "case-1", nil, "")
	require.NoError(t, err)
	_, err = store.AddEdge(EdgeSimilarTo, a.ID, b.ID, nil)
	require.NoError(t, err)

	snap := store.CaseSnapshot("case-1")
	assert.Len(t, snap.Nodes, 2)
	assert.Len(t, snap.Edges, 1)
}

func TestNodeClone_DoesNotShareDataMap(t *testing.T) {
	store := NewStore()
	node, err := store.AddNode(KindReport, "case-1", map[string]any{"a": 1}, "")
	require.NoError(t, err)

	node.Data["a"] = 999

	fresh := store.GetNode(node.ID)
	assert.Equal(t, 1, fresh.Data["a"])
}

type listenerFunc func(MutationRecord)

func (f listenerFunc) OnMutation(rec MutationRecord) { f(rec) }
