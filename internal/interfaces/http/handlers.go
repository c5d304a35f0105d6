package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hardhat-systems/siteledger/internal/application/service"
	"github.com/hardhat-systems/siteledger/internal/domain/ledger"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	ledgerService     service.LedgerService
	submissionService service.SubmissionService
	summaryService    *service.SummaryService
	logger            Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	ledgerService service.LedgerService,
	submissionService service.SubmissionService,
	summaryService *service.SummaryService,
	logger Logger,
) *Handlers {
	return &Handlers{
		ledgerService:     ledgerService,
		submissionService: submissionService,
		summaryService:    summaryService,
		logger:            logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Detail  interface{} `json:"detail,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// BudgetExceededDetail carries the scope and amounts of a failed budget check
// so callers can offer reducing the request or seeking a budget increase.
type BudgetExceededDetail struct {
	ScopeType string `json:"scope_type"`
	ScopeID   int64  `json:"scope_id"`
	Available int64  `json:"available"`
	Required  int64  `json:"required"`
	Shortfall int64  `json:"shortfall"`
}

// RejectRequest carries the reviewer's rejection reason
type RejectRequest struct {
	Reason string `json:"reason"`
}

// ApproveRequest carries optional reviewer notes
type ApproveRequest struct {
	Notes string `json:"notes"`
}

// ListRequest represents common query parameters for list endpoints
type ListRequest struct {
	ProjectID int64 `form:"project_id"`
	Limit     int   `form:"limit"`
	Offset    int   `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// CreateLabourEntry handles POST /api/v1/labour-entries
func (h *Handlers) CreateLabourEntry(c *gin.Context) {
	var input service.CreateLabourEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	input.Actor = actor(c)

	result, err := h.ledgerService.CreateLabourEntry(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, "Failed to create labour entry", err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: result})
}

// GetLabourEntry handles GET /api/v1/labour-entries/:id
func (h *Handlers) GetLabourEntry(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	entry, err := h.ledgerService.GetLabourEntry(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, "Failed to get labour entry", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: entry})
}

// ListLabourEntries handles GET /api/v1/labour-entries
func (h *Handlers) ListLabourEntries(c *gin.Context) {
	req, ok := h.listParams(c)
	if !ok {
		return
	}

	entries, err := h.ledgerService.ListLabourEntries(c.Request.Context(), req.ProjectID, req.Limit, req.Offset)
	if err != nil {
		h.writeError(c, "Failed to list labour entries", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: entries})
}

// ApproveLabourEntry handles POST /api/v1/labour-entries/:id/approve
func (h *Handlers) ApproveLabourEntry(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	result, err := h.ledgerService.ApproveLabourEntry(c.Request.Context(), id, actor(c))
	if err != nil {
		h.writeError(c, "Failed to approve labour entry", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// CancelLabourEntry handles POST /api/v1/labour-entries/:id/cancel
func (h *Handlers) CancelLabourEntry(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	entry, err := h.ledgerService.CancelLabourEntry(c.Request.Context(), id, actor(c))
	if err != nil {
		h.writeError(c, "Failed to cancel labour entry", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: entry})
}

// CreateSubmission handles POST /api/v1/submissions
func (h *Handlers) CreateSubmission(c *gin.Context) {
	var input service.CreateSubmissionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}
	input.Actor = actor(c)

	submission, err := h.submissionService.Create(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, "Failed to create submission", err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: submission})
}

// GetSubmission handles GET /api/v1/submissions/:id
func (h *Handlers) GetSubmission(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	submission, err := h.submissionService.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, "Failed to get submission", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: submission})
}

// ListSubmissions handles GET /api/v1/submissions
func (h *Handlers) ListSubmissions(c *gin.Context) {
	req, ok := h.listParams(c)
	if !ok {
		return
	}

	submissions, err := h.submissionService.List(c.Request.Context(), req.ProjectID, req.Limit, req.Offset)
	if err != nil {
		h.writeError(c, "Failed to list submissions", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: submissions})
}

// SubmitSubmission handles POST /api/v1/submissions/:id/submit
func (h *Handlers) SubmitSubmission(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	submission, err := h.submissionService.SubmitForReview(c.Request.Context(), id, actor(c))
	if err != nil {
		h.writeError(c, "Failed to submit for review", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: submission})
}

// ApproveSubmission handles POST /api/v1/submissions/:id/approve
func (h *Handlers) ApproveSubmission(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req ApproveRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.submissionService.Approve(c.Request.Context(), id, req.Notes, actor(c))
	if err != nil {
		h.writeError(c, "Failed to approve submission", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// RejectSubmission handles POST /api/v1/submissions/:id/reject
func (h *Handlers) RejectSubmission(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	submission, err := h.submissionService.Reject(c.Request.Context(), id, req.Reason, actor(c))
	if err != nil {
		h.writeError(c, "Failed to reject submission", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: submission})
}

// GetBatch handles GET /api/v1/batches/:id
func (h *Handlers) GetBatch(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	detail, err := h.submissionService.GetBatch(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, "Failed to get labour batch", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: detail})
}

// GetSummary handles GET /api/v1/summaries
func (h *Handlers) GetSummary(c *gin.Context) {
	scopeType := c.Query("scope_type")
	scopeID, err := strconv.ParseInt(c.Query("scope_id"), 10, 64)
	if scopeType == "" || err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "scope_type and scope_id are required"})
		return
	}

	summary, err := h.summaryService.Get(c.Request.Context(), scopeType, scopeID)
	if err != nil {
		h.writeError(c, "Failed to get cost summary", err)
		return
	}
	if summary == nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "no summary for scope"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: summary})
}

// writeError maps domain errors to HTTP statuses
func (h *Handlers) writeError(c *gin.Context, msg string, err error) {
	var validationErr *ledger.ValidationError
	var notFoundErr *ledger.NotFoundError
	var budgetErr *ledger.BudgetExceededError
	var approvedErr *ledger.AlreadyApprovedError
	var notPendingErr *ledger.NotPendingReviewError
	var emptyBatchErr *ledger.EmptyBatchError
	var missingItemErr *ledger.MissingWorkItemError
	var reasonErr *ledger.ReasonTooShortError

	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &emptyBatchErr),
		errors.As(err, &missingItemErr),
		errors.As(err, &reasonErr):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})

	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})

	case errors.As(err, &budgetErr):
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Error:   err.Error(),
			Detail: BudgetExceededDetail{
				ScopeType: string(budgetErr.Scope.Kind),
				ScopeID:   budgetErr.Scope.ID,
				Available: budgetErr.Available,
				Required:  budgetErr.Required,
				Shortfall: budgetErr.Shortfall,
			},
		})

	case errors.As(err, &approvedErr), errors.As(err, &notPendingErr):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})

	default:
		h.logger.Error(msg, "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}

func (h *Handlers) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *Handlers) listParams(c *gin.Context) (ListRequest, bool) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil || req.ProjectID <= 0 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "project_id is required"})
		return req, false
	}

	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	return req, true
}

// actor resolves the acting user from the request, for audit attribution
func actor(c *gin.Context) string {
	if v := c.GetHeader("X-Actor"); v != "" {
		return v
	}
	return "system"
}
