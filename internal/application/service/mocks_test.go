package service

import (
	"context"

	"github.com/hardhat-systems/siteledger/internal/application/port"
	"github.com/hardhat-systems/siteledger/internal/domain/entity"
	"github.com/hardhat-systems/siteledger/internal/domain/ledger"
)

// Mock repositories

type mockProjectRepo struct {
	getByIDFunc            func(ctx context.Context, id int64) (*entity.Project, error)
	applySpendingDeltaFunc func(ctx context.Context, id int64, amount int64, dir ledger.Direction) error
	setActualSpendingFunc  func(ctx context.Context, id int64, total int64) error
}

func (m *mockProjectRepo) Create(ctx context.Context, project *entity.Project) error {
	project.ID = 1
	return nil
}

func (m *mockProjectRepo) GetByID(ctx context.Context, id int64) (*entity.Project, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.Project{ID: id, Name: "Test Project"}, nil
}

func (m *mockProjectRepo) List(ctx context.Context, limit, offset int) ([]*entity.Project, error) {
	return []*entity.Project{}, nil
}

func (m *mockProjectRepo) ApplySpendingDelta(ctx context.Context, id int64, amount int64, dir ledger.Direction) error {
	if m.applySpendingDeltaFunc != nil {
		return m.applySpendingDeltaFunc(ctx, id, amount, dir)
	}
	return nil
}

func (m *mockProjectRepo) SetActualSpending(ctx context.Context, id int64, total int64) error {
	if m.setActualSpendingFunc != nil {
		return m.setActualSpendingFunc(ctx, id, total)
	}
	return nil
}

type mockPhaseRepo struct {
	getByIDFunc            func(ctx context.Context, id int64) (*entity.Phase, error)
	applySpendingDeltaFunc func(ctx context.Context, id int64, amount int64, dir ledger.Direction) error
	setActualSpendingFunc  func(ctx context.Context, id int64, total int64) error
}

func (m *mockPhaseRepo) Create(ctx context.Context, phase *entity.Phase) error {
	phase.ID = 1
	return nil
}

func (m *mockPhaseRepo) GetByID(ctx context.Context, id int64) (*entity.Phase, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.Phase{ID: id, ProjectID: 1, Name: "Foundation"}, nil
}

func (m *mockPhaseRepo) ListByProject(ctx context.Context, projectID int64) ([]*entity.Phase, error) {
	return []*entity.Phase{}, nil
}

func (m *mockPhaseRepo) ApplySpendingDelta(ctx context.Context, id int64, amount int64, dir ledger.Direction) error {
	if m.applySpendingDeltaFunc != nil {
		return m.applySpendingDeltaFunc(ctx, id, amount, dir)
	}
	return nil
}

func (m *mockPhaseRepo) SetActualSpending(ctx context.Context, id int64, total int64) error {
	if m.setActualSpendingFunc != nil {
		return m.setActualSpendingFunc(ctx, id, total)
	}
	return nil
}

type mockCategoryRepo struct {
	getByIDFunc            func(ctx context.Context, id int64) (*entity.IndirectCategory, error)
	getByCodeFunc          func(ctx context.Context, projectID int64, code string) (*entity.IndirectCategory, error)
	applySpendingDeltaFunc func(ctx context.Context, id int64, amount int64, dir ledger.Direction) error
	setActualSpendingFunc  func(ctx context.Context, id int64, total int64) error
}

func (m *mockCategoryRepo) Create(ctx context.Context, category *entity.IndirectCategory) error {
	category.ID = 1
	return nil
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id int64) (*entity.IndirectCategory, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.IndirectCategory{ID: id, ProjectID: 1, Code: "site_overhead"}, nil
}

func (m *mockCategoryRepo) GetByCode(ctx context.Context, projectID int64, code string) (*entity.IndirectCategory, error) {
	if m.getByCodeFunc != nil {
		return m.getByCodeFunc(ctx, projectID, code)
	}
	return &entity.IndirectCategory{ID: 10, ProjectID: projectID, Code: code}, nil
}

func (m *mockCategoryRepo) ApplySpendingDelta(ctx context.Context, id int64, amount int64, dir ledger.Direction) error {
	if m.applySpendingDeltaFunc != nil {
		return m.applySpendingDeltaFunc(ctx, id, amount, dir)
	}
	return nil
}

func (m *mockCategoryRepo) SetActualSpending(ctx context.Context, id int64, total int64) error {
	if m.setActualSpendingFunc != nil {
		return m.setActualSpendingFunc(ctx, id, total)
	}
	return nil
}

type mockWorkerRepo struct {
	resolveOrCreateFunc func(ctx context.Context, name, employer, trade string) (*entity.Worker, error)
}

func (m *mockWorkerRepo) GetByID(ctx context.Context, id int64) (*entity.Worker, error) {
	return &entity.Worker{ID: id, Name: "Jo Mason"}, nil
}

func (m *mockWorkerRepo) ResolveOrCreate(ctx context.Context, name, employer, trade string) (*entity.Worker, error) {
	if m.resolveOrCreateFunc != nil {
		return m.resolveOrCreateFunc(ctx, name, employer, trade)
	}
	return &entity.Worker{ID: 7, Name: name, Employer: employer, Trade: trade}, nil
}

type mockWorkItemRepo struct {
	getByIDFunc            func(ctx context.Context, id int64) (*entity.WorkItem, error)
	applyProgressDeltaFunc func(ctx context.Context, id int64, hours float64, costCents int64, dir ledger.Direction) error
	updateStatusFunc       func(ctx context.Context, id int64, status string) error
}

func (m *mockWorkItemRepo) Create(ctx context.Context, item *entity.WorkItem) error {
	item.ID = 1
	return nil
}

func (m *mockWorkItemRepo) GetByID(ctx context.Context, id int64) (*entity.WorkItem, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.WorkItem{ID: id, ProjectID: 1, Status: entity.WorkItemStatusNotStarted}, nil
}

func (m *mockWorkItemRepo) ApplyProgressDelta(ctx context.Context, id int64, hours float64, costCents int64, dir ledger.Direction) error {
	if m.applyProgressDeltaFunc != nil {
		return m.applyProgressDeltaFunc(ctx, id, hours, costCents, dir)
	}
	return nil
}

func (m *mockWorkItemRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

type mockEquipmentRepo struct {
	applyHoursDeltaFunc func(ctx context.Context, id int64, hours float64, dir ledger.Direction) error
}

func (m *mockEquipmentRepo) Create(ctx context.Context, eq *entity.Equipment) error {
	eq.ID = 1
	return nil
}

func (m *mockEquipmentRepo) GetByID(ctx context.Context, id int64) (*entity.Equipment, error) {
	return &entity.Equipment{ID: id, ProjectID: 1, Name: "Excavator"}, nil
}

func (m *mockEquipmentRepo) ApplyHoursDelta(ctx context.Context, id int64, hours float64, dir ledger.Direction) error {
	if m.applyHoursDeltaFunc != nil {
		return m.applyHoursDeltaFunc(ctx, id, hours, dir)
	}
	return nil
}

type mockEntryRepo struct {
	nextID int64

	createFunc         func(ctx context.Context, e *entity.LabourEntry) error
	getByIDFunc        func(ctx context.Context, id int64) (*entity.LabourEntry, error)
	updateStatusFunc   func(ctx context.Context, id int64, status string) error
	totalsForScopeFunc func(ctx context.Context, scope ledger.ScopeRef) (*port.EntryTotals, error)
}

func (m *mockEntryRepo) Create(ctx context.Context, e *entity.LabourEntry) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, e)
	}
	m.nextID++
	e.ID = m.nextID
	return nil
}

func (m *mockEntryRepo) GetByID(ctx context.Context, id int64) (*entity.LabourEntry, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.LabourEntry{ID: id, ProjectID: 1, Status: entity.EntryStatusPendingApproval}, nil
}

func (m *mockEntryRepo) ListByProject(ctx context.Context, projectID int64, limit, offset int) ([]*entity.LabourEntry, error) {
	return []*entity.LabourEntry{}, nil
}

func (m *mockEntryRepo) ListByBatch(ctx context.Context, batchID int64) ([]*entity.LabourEntry, error) {
	return []*entity.LabourEntry{}, nil
}

func (m *mockEntryRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockEntryRepo) TotalsForScope(ctx context.Context, scope ledger.ScopeRef) (*port.EntryTotals, error) {
	if m.totalsForScopeFunc != nil {
		return m.totalsForScopeFunc(ctx, scope)
	}
	return &port.EntryTotals{}, nil
}

type mockBatchRepo struct {
	createFunc     func(ctx context.Context, batch *entity.LabourBatch) error
	setEntriesFunc func(ctx context.Context, id int64, entryIDs []int64, totalCost int64) error
}

func (m *mockBatchRepo) Create(ctx context.Context, batch *entity.LabourBatch) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, batch)
	}
	batch.ID = 100
	return nil
}

func (m *mockBatchRepo) GetByID(ctx context.Context, id int64) (*entity.LabourBatch, error) {
	return &entity.LabourBatch{ID: id}, nil
}

func (m *mockBatchRepo) SetEntries(ctx context.Context, id int64, entryIDs []int64, totalCost int64) error {
	if m.setEntriesFunc != nil {
		return m.setEntriesFunc(ctx, id, entryIDs, totalCost)
	}
	return nil
}

type mockSubmissionRepo struct {
	getByIDFunc      func(ctx context.Context, id int64) (*entity.SupervisorSubmission, error)
	getLinesFunc     func(ctx context.Context, submissionID int64) ([]*entity.SubmissionLine, error)
	setApprovedFunc  func(ctx context.Context, id int64, batchID int64) error
	setRejectedFunc  func(ctx context.Context, id int64, reason string) error
	updateStatusFunc func(ctx context.Context, id int64, status string) error
	createLineFunc   func(ctx context.Context, line *entity.SubmissionLine) error
}

func (m *mockSubmissionRepo) Create(ctx context.Context, s *entity.SupervisorSubmission) error {
	s.ID = 1
	return nil
}

func (m *mockSubmissionRepo) GetByID(ctx context.Context, id int64) (*entity.SupervisorSubmission, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.SupervisorSubmission{ID: id, ProjectID: 1, Status: entity.SubmissionStatusPendingReview}, nil
}

func (m *mockSubmissionRepo) ListByProject(ctx context.Context, projectID int64, limit, offset int) ([]*entity.SupervisorSubmission, error) {
	return []*entity.SupervisorSubmission{}, nil
}

func (m *mockSubmissionRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockSubmissionRepo) SetApproved(ctx context.Context, id int64, batchID int64) error {
	if m.setApprovedFunc != nil {
		return m.setApprovedFunc(ctx, id, batchID)
	}
	return nil
}

func (m *mockSubmissionRepo) SetRejected(ctx context.Context, id int64, reason string) error {
	if m.setRejectedFunc != nil {
		return m.setRejectedFunc(ctx, id, reason)
	}
	return nil
}

func (m *mockSubmissionRepo) CreateLine(ctx context.Context, line *entity.SubmissionLine) error {
	if m.createLineFunc != nil {
		return m.createLineFunc(ctx, line)
	}
	line.ID = 1
	return nil
}

func (m *mockSubmissionRepo) GetLines(ctx context.Context, submissionID int64) ([]*entity.SubmissionLine, error) {
	if m.getLinesFunc != nil {
		return m.getLinesFunc(ctx, submissionID)
	}
	return []*entity.SubmissionLine{}, nil
}

type mockSummaryRepo struct {
	upsertFunc func(ctx context.Context, summary *entity.CostSummary) error
	getFunc    func(ctx context.Context, scopeType string, scopeID int64) (*entity.CostSummary, error)
}

func (m *mockSummaryRepo) Upsert(ctx context.Context, summary *entity.CostSummary) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, summary)
	}
	return nil
}

func (m *mockSummaryRepo) Get(ctx context.Context, scopeType string, scopeID int64) (*entity.CostSummary, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, scopeType, scopeID)
	}
	return nil, nil
}

func (m *mockSummaryRepo) ListByProject(ctx context.Context, projectID int64) ([]*entity.CostSummary, error) {
	return []*entity.CostSummary{}, nil
}

type mockAuditSink struct {
	recordFunc func(ctx context.Context, event *entity.AuditEvent) error
	events     []*entity.AuditEvent
}

func (m *mockAuditSink) RecordAuditEvent(ctx context.Context, event *entity.AuditEvent) error {
	if m.recordFunc != nil {
		return m.recordFunc(ctx, event)
	}
	m.events = append(m.events, event)
	return nil
}

type mockDispatcher struct {
	workItemRefreshes []int64
	summaryRefreshes  []int64
}

func (m *mockDispatcher) DispatchWorkItemRefresh(workItemID int64) {
	m.workItemRefreshes = append(m.workItemRefreshes, workItemID)
}

func (m *mockDispatcher) DispatchSummaryRefresh(projectID int64, phaseID *int64) {
	m.summaryRefreshes = append(m.summaryRefreshes, projectID)
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

// int64Ptr is a test helper for optional int64 fields
func int64Ptr(v int64) *int64 {
	return &v
}
