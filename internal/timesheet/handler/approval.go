package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tempoworks/tempo-backend/internal/timesheet/service"
	"github.com/tempoworks/tempo-backend/pkg/httputil"
	"github.com/tempoworks/tempo-backend/pkg/logger"
)

// ApprovalHandler handles approval workflow endpoints
type ApprovalHandler struct {
	service *service.TimesheetService
	logger  *logger.Logger
}

// NewApprovalHandler creates a new approval handler
func NewApprovalHandler(svc *service.TimesheetService, log *logger.Logger) *ApprovalHandler {
	return &ApprovalHandler{
		service: svc,
		logger:  log,
	}
}

// DecisionRequest carries optional reviewer comments
type DecisionRequest struct {
	Comments *string `json:"comments,omitempty"`
}

// ListPending handles GET /approvals/pending
func (h *ApprovalHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	page, perPage := parsePagination(r)

	approvals, total, err := h.service.ListPendingApprovals(r.Context(), page, perPage)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, approvals, &httputil.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages(total, perPage),
	})
}

// Get handles GET /timesheets/{id}/approval
func (h *ApprovalHandler) Get(w http.ResponseWriter, r *http.Request) {
	timesheetID := chi.URLParam(r, "id")

	approval, err := h.service.GetApproval(r.Context(), timesheetID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, approval)
}

// Approve handles POST /timesheets/{id}/approve
func (h *ApprovalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	timesheetID := chi.URLParam(r, "id")

	var req DecisionRequest
	httputil.DecodeJSON(r, &req) // body optional

	ts, err := h.service.Approve(r.Context(), timesheetID, httputil.GetUserID(r.Context()), req.Comments)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, ts)
}

// Reject handles POST /timesheets/{id}/reject
func (h *ApprovalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	timesheetID := chi.URLParam(r, "id")

	var req DecisionRequest
	httputil.DecodeJSON(r, &req) // body optional

	ts, err := h.service.Reject(r.Context(), timesheetID, httputil.GetUserID(r.Context()), req.Comments)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, ts)
}

// ResetToSubmitted handles POST /timesheets/{id}/reset-to-submitted
func (h *ApprovalHandler) ResetToSubmitted(w http.ResponseWriter, r *http.Request) {
	timesheetID := chi.URLParam(r, "id")

	ts, err := h.service.ResetToSubmitted(r.Context(), timesheetID, httputil.GetUserID(r.Context()))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, ts)
}

// BatchApprove handles POST /timesheets/batch-approve
func (h *ApprovalHandler) BatchApprove(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	results := h.service.BatchApprove(r.Context(), req.IDs, httputil.GetUserID(r.Context()))
	httputil.JSON(w, http.StatusOK, results)
}
