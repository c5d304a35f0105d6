package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hardhat-systems/siteledger/internal/config"
	"github.com/hardhat-systems/siteledger/internal/domain/entity"
	"github.com/hardhat-systems/siteledger/internal/domain/ledger"
)

type submissionFixture struct {
	submissions *mockSubmissionRepo
	batches     *mockBatchRepo
	entries     *mockEntryRepo
	projects    *mockProjectRepo
	phases      *mockPhaseRepo
	workers     *mockWorkerRepo
	workItems   *mockWorkItemRepo
	equipment   *mockEquipmentRepo
	audit       *mockAuditSink
	dispatcher  *mockDispatcher
	cfg         config.LedgerConfig
}

func newSubmissionFixture() *submissionFixture {
	return &submissionFixture{
		submissions: &mockSubmissionRepo{},
		batches:     &mockBatchRepo{},
		entries:     &mockEntryRepo{},
		projects:    &mockProjectRepo{},
		phases:      &mockPhaseRepo{},
		workers:     &mockWorkerRepo{},
		workItems:   &mockWorkItemRepo{},
		equipment:   &mockEquipmentRepo{},
		audit:       &mockAuditSink{},
		dispatcher:  &mockDispatcher{},
		cfg: config.LedgerConfig{
			AutoApprove:             true,
			DefaultOverheadCategory: "site_overhead",
			MinRejectionReasonLen:   10,
		},
	}
}

func (f *submissionFixture) service() SubmissionService {
	logger := &mockLogger{}
	categories := &mockCategoryRepo{}
	validator := NewBudgetValidator(f.projects, f.phases, categories, logger)
	coordinator := NewCoordinator(&mockTxManager{}, logger)
	reconciler := NewReconcileService(f.entries, f.projects, f.phases, categories, logger)

	return NewSubmissionService(
		f.submissions, f.batches, f.entries, f.projects, f.phases,
		f.workers, f.workItems, f.equipment, validator, coordinator,
		reconciler, f.audit, f.dispatcher, f.cfg, logger,
	)
}

func pendingSubmission(id int64) *entity.SupervisorSubmission {
	return &entity.SupervisorSubmission{
		ID:         id,
		ProjectID:  1,
		PhaseID:    int64Ptr(2),
		Supervisor: "Sam Super",
		ReportDate: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		Status:     entity.SubmissionStatusPendingReview,
	}
}

func TestSubmissionService_Create(t *testing.T) {
	f := newSubmissionFixture()

	var lines []*entity.SubmissionLine
	f.submissions.createLineFunc = func(ctx context.Context, line *entity.SubmissionLine) error {
		line.ID = int64(len(lines) + 1)
		lines = append(lines, line)
		return nil
	}

	input := CreateSubmissionInput{
		ProjectID:  1,
		PhaseID:    int64Ptr(2),
		Supervisor: "Sam Super",
		ReportDate: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		Lines: []SubmissionLineInput{
			{WorkerName: "Jo Mason", Hours: 8, HourlyRate: 500},
			{WorkerName: "Pat Carpenter", Hours: 6, HourlyRate: 600},
		},
		Actor: "supervisor-1",
	}

	submission, err := f.service().Create(context.Background(), input)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if submission.Status != entity.SubmissionStatusDraft {
		t.Errorf("Create() Status = %q, want draft", submission.Status)
	}
	if len(lines) != 2 {
		t.Errorf("Create() persisted %d lines, want 2", len(lines))
	}
}

func TestSubmissionService_Create_LineValidation(t *testing.T) {
	f := newSubmissionFixture()

	input := CreateSubmissionInput{
		ProjectID:  1,
		Supervisor: "Sam Super",
		ReportDate: time.Now(),
		Lines: []SubmissionLineInput{
			{WorkerName: "Jo Mason", Hours: -2, HourlyRate: 500},
		},
	}

	_, err := f.service().Create(context.Background(), input)

	var validationErr *ledger.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Create() error = %v, want ValidationError for negative hours", err)
	}
}

func TestSubmissionService_SubmitForReview(t *testing.T) {
	f := newSubmissionFixture()

	f.submissions.getByIDFunc = func(ctx context.Context, id int64) (*entity.SupervisorSubmission, error) {
		s := pendingSubmission(id)
		s.Status = entity.SubmissionStatusDraft
		return s, nil
	}

	submission, err := f.service().SubmitForReview(context.Background(), 5, "supervisor-1")
	if err != nil {
		t.Fatalf("SubmitForReview() error = %v", err)
	}
	if submission.Status != entity.SubmissionStatusPendingReview {
		t.Errorf("SubmitForReview() Status = %q, want pending_review", submission.Status)
	}
}

func TestSubmissionService_Approve(t *testing.T) {
	f := newSubmissionFixture()

	f.submissions.getByIDFunc = func(ctx context.Context, id int64) (*entity.SupervisorSubmission, error) {
		return pendingSubmission(id), nil
	}
	// Three lines; two share a work item so their deltas must be grouped.
	f.submissions.getLinesFunc = func(ctx context.Context, submissionID int64) ([]*entity.SubmissionLine, error) {
		return []*entity.SubmissionLine{
			{ID: 1, SubmissionID: submissionID, WorkerName: "Jo Mason", Hours: 8, HourlyRate: 500, WorkItemID: int64Ptr(30)},
			{ID: 2, SubmissionID: submissionID, WorkerName: "Pat Carpenter", Hours: 6, HourlyRate: 600, WorkItemID: int64Ptr(30)},
			{ID: 3, SubmissionID: submissionID, WorkerName: "Lee Operator", Hours: 4, HourlyRate: 700, EquipmentID: int64Ptr(40)},
		}, nil
	}

	var createdEntries []*entity.LabourEntry
	f.entries.createFunc = func(ctx context.Context, e *entity.LabourEntry) error {
		e.ID = int64(len(createdEntries) + 1)
		createdEntries = append(createdEntries, e)
		return nil
	}

	var projectDelta, phaseDelta int64
	f.projects.applySpendingDeltaFunc = func(ctx context.Context, id int64, amount int64, dir ledger.Direction) error {
		projectDelta += dir.Apply(amount)
		return nil
	}
	f.phases.applySpendingDeltaFunc = func(ctx context.Context, id int64, amount int64, dir ledger.Direction) error {
		phaseDelta += dir.Apply(amount)
		return nil
	}

	workItemDeltas := map[int64]float64{}
	workItemCosts := map[int64]int64{}
	f.workItems.applyProgressDeltaFunc = func(ctx context.Context, id int64, hours float64, costCents int64, dir ledger.Direction) error {
		workItemDeltas[id] += dir.ApplyHours(hours)
		workItemCosts[id] += dir.Apply(costCents)
		return nil
	}

	equipmentDeltas := map[int64]float64{}
	f.equipment.applyHoursDeltaFunc = func(ctx context.Context, id int64, hours float64, dir ledger.Direction) error {
		equipmentDeltas[id] += dir.ApplyHours(hours)
		return nil
	}

	approvedWithBatch := int64(0)
	f.submissions.setApprovedFunc = func(ctx context.Context, id int64, batchID int64) error {
		approvedWithBatch = batchID
		return nil
	}

	result, err := f.service().Approve(context.Background(), 5, "all good", "manager-1")
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	// 8*500 + 6*600 + 4*700 = 4000 + 3600 + 2800
	if result.TotalCost != 10400 {
		t.Errorf("Approve() TotalCost = %d, want 10400", result.TotalCost)
	}
	if result.Batch.Reference == "" {
		t.Error("Approve() batch reference is empty")
	}
	if result.Batch.EntryCount != 3 {
		t.Errorf("Approve() batch EntryCount = %d, want 3", result.Batch.EntryCount)
	}
	if result.Submission.Status != entity.SubmissionStatusApproved {
		t.Errorf("Approve() submission status = %q, want approved", result.Submission.Status)
	}
	if approvedWithBatch != result.Batch.ID {
		t.Errorf("Approve() back-reference batch id = %d, want %d", approvedWithBatch, result.Batch.ID)
	}

	if len(createdEntries) != 3 {
		t.Fatalf("Approve() created %d entries, want 3", len(createdEntries))
	}
	for _, e := range createdEntries {
		if e.Status != entity.EntryStatusApproved {
			t.Errorf("batch entry status = %q, want approved", e.Status)
		}
		if e.BatchID == nil || *e.BatchID != result.Batch.ID {
			t.Errorf("batch entry BatchID = %v, want %d", e.BatchID, result.Batch.ID)
		}
	}

	if projectDelta != 10400 {
		t.Errorf("project spending delta = %d, want 10400", projectDelta)
	}
	if phaseDelta != 10400 {
		t.Errorf("phase spending delta = %d, want 10400", phaseDelta)
	}
	if workItemDeltas[30] != 14 {
		t.Errorf("work item 30 hours delta = %v, want grouped 14", workItemDeltas[30])
	}
	if workItemCosts[30] != 7600 {
		t.Errorf("work item 30 cost delta = %d, want grouped 7600", workItemCosts[30])
	}
	if equipmentDeltas[40] != 4 {
		t.Errorf("equipment 40 hours delta = %v, want 4", equipmentDeltas[40])
	}

	if len(f.dispatcher.workItemRefreshes) != 1 {
		t.Errorf("work item refreshes = %d, want 1", len(f.dispatcher.workItemRefreshes))
	}
}

func TestSubmissionService_Approve_EmptyBatch(t *testing.T) {
	f := newSubmissionFixture()

	f.submissions.getByIDFunc = func(ctx context.Context, id int64) (*entity.SupervisorSubmission, error) {
		return pendingSubmission(id), nil
	}

	_, err := f.service().Approve(context.Background(), 5, "", "manager-1")

	var emptyErr *ledger.EmptyBatchError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("Approve() error = %v, want EmptyBatchError", err)
	}
}

func TestSubmissionService_Approve_NotPendingReview(t *testing.T) {
	f := newSubmissionFixture()

	f.submissions.getByIDFunc = func(ctx context.Context, id int64) (*entity.SupervisorSubmission, error) {
		s := pendingSubmission(id)
		s.Status = entity.SubmissionStatusApproved
		return s, nil
	}

	_, err := f.service().Approve(context.Background(), 5, "", "manager-1")

	var notPendingErr *ledger.NotPendingReviewError
	if !errors.As(err, &notPendingErr) {
		t.Fatalf("Approve() error = %v, want NotPendingReviewError", err)
	}
}

func TestSubmissionService_Approve_BudgetExceeded(t *testing.T) {
	f := newSubmissionFixture()

	f.submissions.getByIDFunc = func(ctx context.Context, id int64) (*entity.SupervisorSubmission, error) {
		return pendingSubmission(id), nil
	}
	f.submissions.getLinesFunc = func(ctx context.Context, submissionID int64) ([]*entity.SubmissionLine, error) {
		return []*entity.SubmissionLine{
			{ID: 1, SubmissionID: submissionID, WorkerName: "Jo Mason", Hours: 4, HourlyRate: 500},
		}, nil
	}
	f.projects.getByIDFunc = func(ctx context.Context, id int64) (*entity.Project, error) {
		return &entity.Project{ID: id, BudgetTotal: int64Ptr(10000), ActualSpending: 9000}, nil
	}

	batchCreated := false
	f.batches.createFunc = func(ctx context.Context, batch *entity.LabourBatch) error {
		batchCreated = true
		return nil
	}

	_, err := f.service().Approve(context.Background(), 5, "", "manager-1")

	var budgetErr *ledger.BudgetExceededError
	if !errors.As(err, &budgetErr) {
		t.Fatalf("Approve() error = %v, want BudgetExceededError", err)
	}
	if budgetErr.Shortfall != 1000 {
		t.Errorf("BudgetExceededError Shortfall = %d, want 1000", budgetErr.Shortfall)
	}
	if batchCreated {
		t.Error("Approve() created a batch despite the failed budget check")
	}
}

func TestSubmissionService_Approve_RequiredWorkItemLinks(t *testing.T) {
	f := newSubmissionFixture()
	f.cfg.RequireWorkItemLinks = true

	f.submissions.getByIDFunc = func(ctx context.Context, id int64) (*entity.SupervisorSubmission, error) {
		return pendingSubmission(id), nil
	}
	f.submissions.getLinesFunc = func(ctx context.Context, submissionID int64) ([]*entity.SubmissionLine, error) {
		return []*entity.SubmissionLine{
			{ID: 1, SubmissionID: submissionID, WorkerName: "Jo Mason", Hours: 8, HourlyRate: 500},
		}, nil
	}

	_, err := f.service().Approve(context.Background(), 5, "", "manager-1")

	var missingErr *ledger.MissingWorkItemError
	if !errors.As(err, &missingErr) {
		t.Fatalf("Approve() error = %v, want MissingWorkItemError", err)
	}
}

func TestSubmissionService_Reject(t *testing.T) {
	f := newSubmissionFixture()

	f.submissions.getByIDFunc = func(ctx context.Context, id int64) (*entity.SupervisorSubmission, error) {
		return pendingSubmission(id), nil
	}

	var storedReason string
	f.submissions.setRejectedFunc = func(ctx context.Context, id int64, reason string) error {
		storedReason = reason
		return nil
	}

	submission, err := f.service().Reject(context.Background(), 5, "hours exceed the roster for the day", "manager-1")
	if err != nil {
		t.Fatalf("Reject() error = %v", err)
	}

	if submission.Status != entity.SubmissionStatusRejected {
		t.Errorf("Reject() Status = %q, want rejected", submission.Status)
	}
	if storedReason == "" {
		t.Error("Reject() did not persist the reason")
	}
}

func TestSubmissionService_Reject_ReasonTooShort(t *testing.T) {
	f := newSubmissionFixture()

	_, err := f.service().Reject(context.Background(), 5, "bad", "manager-1")

	var reasonErr *ledger.ReasonTooShortError
	if !errors.As(err, &reasonErr) {
		t.Fatalf("Reject() error = %v, want ReasonTooShortError", err)
	}
	if reasonErr.MinLen != 10 {
		t.Errorf("ReasonTooShortError MinLen = %d, want 10", reasonErr.MinLen)
	}
}

func TestSubmissionService_Reject_NotPendingReview(t *testing.T) {
	f := newSubmissionFixture()

	f.submissions.getByIDFunc = func(ctx context.Context, id int64) (*entity.SupervisorSubmission, error) {
		s := pendingSubmission(id)
		s.Status = entity.SubmissionStatusRejected
		return s, nil
	}

	_, err := f.service().Reject(context.Background(), 5, "hours exceed the roster for the day", "manager-1")

	var notPendingErr *ledger.NotPendingReviewError
	if !errors.As(err, &notPendingErr) {
		t.Fatalf("Reject() error = %v, want NotPendingReviewError", err)
	}
}
