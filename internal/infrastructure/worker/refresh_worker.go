package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/hardhat-systems/siteledger/internal/application/port"
	"github.com/hardhat-systems/siteledger/internal/application/service"
	"github.com/hardhat-systems/siteledger/internal/domain/ledger"
)

const (
	taskWorkItemRefresh = "work_item_refresh"
	taskSummaryRefresh  = "summary_refresh"
)

type refreshTask struct {
	kind       string
	workItemID int64
	projectID  int64
	phaseID    *int64
}

// RefreshWorkerConfig holds configuration for the refresh worker
type RefreshWorkerConfig struct {
	QueueSize int
}

// RefreshWorker consumes post-commit refresh tasks: derived work-item status
// and cost summary snapshots. It implements port.RefreshDispatcher; dispatch
// never blocks the committing request, and a full queue drops the task with a
// warning rather than stall. Dropped or failed refreshes self-heal on the
// next commit touching the same scope.
type RefreshWorker struct {
	config RefreshWorkerConfig

	propagator *service.StatusPropagator
	summaries  *service.SummaryService
	logger     *zap.Logger

	tasks chan refreshTask

	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	isRunning bool
	done      chan struct{}
}

// NewRefreshWorker creates a new refresh worker
func NewRefreshWorker(
	config RefreshWorkerConfig,
	propagator *service.StatusPropagator,
	summaries *service.SummaryService,
	logger *zap.Logger,
) *RefreshWorker {
	if config.QueueSize < 1 {
		config.QueueSize = 256
	}
	return &RefreshWorker{
		config:     config,
		propagator: propagator,
		summaries:  summaries,
		logger:     logger,
		tasks:      make(chan refreshTask, config.QueueSize),
	}
}

// Start begins the consume loop
func (w *RefreshWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return fmt.Errorf("refresh worker already running")
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.isRunning = true
	w.done = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("RefreshWorker started", zap.Int("queue_size", w.config.QueueSize))

	go w.consumeLoop()

	return nil
}

// Stop gracefully terminates the worker
func (w *RefreshWorker) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}

	w.isRunning = false
	done := w.done
	w.mu.Unlock()

	if w.cancel != nil {
		w.cancel()
	}
	if done != nil {
		<-done
	}

	w.logger.Info("RefreshWorker stopped", zap.Int("pending_tasks", len(w.tasks)))
	return nil
}

// Name returns the worker name for identification
func (w *RefreshWorker) Name() string {
	return "RefreshWorker"
}

// DispatchWorkItemRefresh enqueues a derived-status recompute for a work item
func (w *RefreshWorker) DispatchWorkItemRefresh(workItemID int64) {
	w.enqueue(refreshTask{kind: taskWorkItemRefresh, workItemID: workItemID})
}

// DispatchSummaryRefresh enqueues snapshot refreshes for a project and,
// when set, one of its phases
func (w *RefreshWorker) DispatchSummaryRefresh(projectID int64, phaseID *int64) {
	w.enqueue(refreshTask{kind: taskSummaryRefresh, projectID: projectID, phaseID: phaseID})
}

func (w *RefreshWorker) enqueue(task refreshTask) {
	select {
	case w.tasks <- task:
	default:
		w.logger.Warn("Refresh queue full, dropping task",
			zap.String("kind", task.kind),
			zap.Int64("work_item_id", task.workItemID),
			zap.Int64("project_id", task.projectID))
	}
}

func (w *RefreshWorker) consumeLoop() {
	defer close(w.done)

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Debug("Consume loop context cancelled")
			return

		case task := <-w.tasks:
			w.process(task)
		}
	}
}

func (w *RefreshWorker) process(task refreshTask) {
	ctx := w.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	switch task.kind {
	case taskWorkItemRefresh:
		if err := w.propagator.RecomputeWorkItemStatus(ctx, task.workItemID); err != nil {
			w.logger.Warn("Failed to recompute work item status",
				zap.Int64("work_item_id", task.workItemID),
				zap.Error(err))
		}

	case taskSummaryRefresh:
		if err := w.summaries.RefreshScope(ctx, ledger.ProjectScope(task.projectID)); err != nil {
			w.logger.Warn("Failed to refresh project summary",
				zap.Int64("project_id", task.projectID),
				zap.Error(err))
		}
		if task.phaseID != nil {
			if err := w.summaries.RefreshScope(ctx, ledger.PhaseScope(*task.phaseID)); err != nil {
				w.logger.Warn("Failed to refresh phase summary",
					zap.Int64("phase_id", *task.phaseID),
					zap.Error(err))
			}
		}

	default:
		w.logger.Warn("Unknown refresh task kind", zap.String("kind", task.kind))
	}
}

// Verify interface compliance
var _ port.RefreshDispatcher = (*RefreshWorker)(nil)
var _ Worker = (*RefreshWorker)(nil)
