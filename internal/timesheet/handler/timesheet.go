package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tempoworks/tempo-backend/internal/timesheet/repository"
	"github.com/tempoworks/tempo-backend/internal/timesheet/service"
	"github.com/tempoworks/tempo-backend/pkg/errors"
	"github.com/tempoworks/tempo-backend/pkg/httputil"
	"github.com/tempoworks/tempo-backend/pkg/logger"
)

// TimesheetHandler handles timesheet endpoints
type TimesheetHandler struct {
	service *service.TimesheetService
	logger  *logger.Logger
}

// NewTimesheetHandler creates a new timesheet handler
func NewTimesheetHandler(svc *service.TimesheetService, log *logger.Logger) *TimesheetHandler {
	return &TimesheetHandler{
		service: svc,
		logger:  log,
	}
}

// isReviewer reports whether the role may see and decide other
// employees' timesheets.
func isReviewer(role string) bool {
	return role == "LEVEL2" || role == "LEVEL3"
}

// List handles GET /timesheets
func (h *TimesheetHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := parsePagination(r)

	filter := &repository.ListFilter{
		EmployeeID: r.URL.Query().Get("employee_id"),
		ProjectID:  r.URL.Query().Get("project_id"),
		Status:     r.URL.Query().Get("status"),
	}

	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			httputil.Error(w, errors.BadRequest("from must match format 2006-01-02"))
			return
		}
		filter.From = &t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			httputil.Error(w, errors.BadRequest("to must match format 2006-01-02"))
			return
		}
		filter.To = &t
	}

	// Non-reviewers only see their own records
	if !isReviewer(httputil.GetUserRole(r.Context())) {
		filter.EmployeeID = httputil.GetUserID(r.Context())
	}

	sheets, total, err := h.service.List(r.Context(), filter, page, perPage)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, sheets, &httputil.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages(total, perPage),
	})
}

// Get handles GET /timesheets/{id}
func (h *TimesheetHandler) Get(w http.ResponseWriter, r *http.Request) {
	ts, err := h.loadOwned(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, ts)
}

// Create handles POST /timesheets
func (h *TimesheetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTimesheetRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	// Non-reviewers record time only for themselves
	if !isReviewer(httputil.GetUserRole(r.Context())) {
		req.EmployeeID = httputil.GetUserID(r.Context())
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	ts, err := h.service.Create(r.Context(), &req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, ts)
}

// Update handles PUT /timesheets/{id}
func (h *TimesheetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ts, err := h.loadOwned(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req service.UpdateTimesheetRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	updated, err := h.service.Update(r.Context(), ts.ID, &req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /timesheets/{id}
func (h *TimesheetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ts, err := h.loadOwned(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), ts.ID); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Submit handles POST /timesheets/{id}/submit
func (h *TimesheetHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ts, err := h.loadOwned(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	submitted, err := h.service.Submit(r.Context(), ts.ID, httputil.GetUserID(r.Context()))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, submitted)
}

// BatchRequest is the payload for batch workflow operations
type BatchRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=100,dive,uuid"`
}

// BatchSubmit handles POST /timesheets/batch-submit
func (h *TimesheetHandler) BatchSubmit(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	results := h.service.BatchSubmit(r.Context(), req.IDs, httputil.GetUserID(r.Context()))
	httputil.JSON(w, http.StatusOK, results)
}

// loadOwned fetches the timesheet and enforces record ownership for
// non-reviewer roles.
func (h *TimesheetHandler) loadOwned(r *http.Request) (*repository.Timesheet, error) {
	id := chi.URLParam(r, "id")

	ts, err := h.service.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}

	if !isReviewer(httputil.GetUserRole(r.Context())) && ts.EmployeeID != httputil.GetUserID(r.Context()) {
		return nil, errors.Forbidden("not your timesheet")
	}

	return ts, nil
}

func parsePagination(r *http.Request) (int, int) {
	page := 1
	perPage := 20

	if p := r.URL.Query().Get("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if pp := r.URL.Query().Get("per_page"); pp != "" {
		if v, err := strconv.Atoi(pp); err == nil && v > 0 && v <= 100 {
			perPage = v
		}
	}

	return page, perPage
}

func totalPages(total int64, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	pages := int(total) / perPage
	if int(total)%perPage != 0 {
		pages++
	}
	return pages
}
