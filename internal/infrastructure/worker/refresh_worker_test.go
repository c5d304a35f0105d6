package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hardhat-systems/siteledger/internal/application/port"
	"github.com/hardhat-systems/siteledger/internal/application/service"
	"github.com/hardhat-systems/siteledger/internal/domain/entity"
	"github.com/hardhat-systems/siteledger/internal/domain/ledger"
)

type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}

// MockWorkItemStore for testing
type MockWorkItemStore struct {
	mu            sync.RWMutex
	items         map[int64]*entity.WorkItem
	statusUpdates chan string
}

func NewMockWorkItemStore() *MockWorkItemStore {
	return &MockWorkItemStore{
		items:         make(map[int64]*entity.WorkItem),
		statusUpdates: make(chan string, 8),
	}
}

func (m *MockWorkItemStore) Create(ctx context.Context, item *entity.WorkItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
	return nil
}

func (m *MockWorkItemStore) GetByID(ctx context.Context, id int64) (*entity.WorkItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[id], nil
}

func (m *MockWorkItemStore) ApplyProgressDelta(ctx context.Context, id int64, hours float64, costCents int64, dir ledger.Direction) error {
	return nil
}

func (m *MockWorkItemStore) UpdateStatus(ctx context.Context, id int64, status string) error {
	m.mu.Lock()
	if item, ok := m.items[id]; ok {
		item.Status = status
	}
	m.mu.Unlock()
	m.statusUpdates <- status
	return nil
}

// MockSummaryStore for testing
type MockSummaryStore struct {
	upserts chan *entity.CostSummary
}

func NewMockSummaryStore() *MockSummaryStore {
	return &MockSummaryStore{upserts: make(chan *entity.CostSummary, 8)}
}

func (m *MockSummaryStore) Upsert(ctx context.Context, summary *entity.CostSummary) error {
	m.upserts <- summary
	return nil
}

func (m *MockSummaryStore) Get(ctx context.Context, scopeType string, scopeID int64) (*entity.CostSummary, error) {
	return nil, nil
}

func (m *MockSummaryStore) ListByProject(ctx context.Context, projectID int64) ([]*entity.CostSummary, error) {
	return nil, nil
}

// MockEntryStore for testing
type MockEntryStore struct{}

func (m *MockEntryStore) Create(ctx context.Context, e *entity.LabourEntry) error { return nil }
func (m *MockEntryStore) GetByID(ctx context.Context, id int64) (*entity.LabourEntry, error) {
	return nil, nil
}
func (m *MockEntryStore) ListByProject(ctx context.Context, projectID int64, limit, offset int) ([]*entity.LabourEntry, error) {
	return nil, nil
}
func (m *MockEntryStore) ListByBatch(ctx context.Context, batchID int64) ([]*entity.LabourEntry, error) {
	return nil, nil
}
func (m *MockEntryStore) UpdateStatus(ctx context.Context, id int64, status string) error { return nil }
func (m *MockEntryStore) TotalsForScope(ctx context.Context, scope ledger.ScopeRef) (*port.EntryTotals, error) {
	return &port.EntryTotals{TotalCost: 4000, EntryCount: 1}, nil
}

func newTestWorker(queueSize int, workItems port.WorkItemRepository, summaries port.SummaryRepository) *RefreshWorker {
	propagator := service.NewStatusPropagator(workItems, noopLogger{})
	summaryService := service.NewSummaryService(&MockEntryStore{}, summaries, noopLogger{})
	return NewRefreshWorker(RefreshWorkerConfig{QueueSize: queueSize}, propagator, summaryService, zap.NewNop())
}

func TestRefreshWorker_RecomputesWorkItemStatus(t *testing.T) {
	workItems := NewMockWorkItemStore()
	workItems.items[5] = &entity.WorkItem{
		ID:             5,
		EstimatedHours: 40,
		ActualHours:    8,
		Status:         entity.WorkItemStatusNotStarted,
	}

	w := newTestWorker(8, workItems, NewMockSummaryStore())
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	w.DispatchWorkItemRefresh(5)

	select {
	case status := <-workItems.statusUpdates:
		assert.Equal(t, entity.WorkItemStatusInProgress, status)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for status recompute")
	}
}

func TestRefreshWorker_RefreshesProjectAndPhaseSummaries(t *testing.T) {
	summaries := NewMockSummaryStore()

	w := newTestWorker(8, NewMockWorkItemStore(), summaries)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	phaseID := int64(3)
	w.DispatchSummaryRefresh(1, &phaseID)

	scopes := map[string]int64{}
	for i := 0; i < 2; i++ {
		select {
		case s := <-summaries.upserts:
			scopes[s.ScopeType] = s.ScopeID
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for summary refreshes")
		}
	}

	assert.Equal(t, int64(1), scopes["project"])
	assert.Equal(t, int64(3), scopes["phase"])
}

func TestRefreshWorker_DropsWhenQueueFull(t *testing.T) {
	// Not started, so nothing drains the queue.
	w := newTestWorker(1, NewMockWorkItemStore(), NewMockSummaryStore())

	w.DispatchWorkItemRefresh(1)
	w.DispatchWorkItemRefresh(2)
	w.DispatchWorkItemRefresh(3)

	assert.Len(t, w.tasks, 1, "overflow dispatches must be dropped, not block")
}

func TestRefreshWorker_StartTwice(t *testing.T) {
	w := newTestWorker(8, NewMockWorkItemStore(), NewMockSummaryStore())

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	assert.Error(t, w.Start(context.Background()))
}

func TestManager_Lifecycle(t *testing.T) {
	manager := NewManager(zap.NewNop())
	w := newTestWorker(8, NewMockWorkItemStore(), NewMockSummaryStore())
	manager.Register(w)

	require.NoError(t, manager.StartAll(context.Background()))
	assert.True(t, manager.IsRunning())

	require.NoError(t, manager.StopAll())
	assert.False(t, manager.IsRunning())
}
