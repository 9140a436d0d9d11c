package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tempoworks/tempo-backend/internal/roster/service"
	"github.com/tempoworks/tempo-backend/pkg/httputil"
	"github.com/tempoworks/tempo-backend/pkg/logger"
)

// StageHandler handles stage endpoints
type StageHandler struct {
	service *service.RosterService
	logger  *logger.Logger
}

// NewStageHandler creates a new stage handler
func NewStageHandler(svc *service.RosterService, log *logger.Logger) *StageHandler {
	return &StageHandler{
		service: svc,
		logger:  log,
	}
}

// List handles GET /stages
func (h *StageHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := parsePagination(r)
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	stages, total, err := h.service.ListStages(r.Context(), page, perPage, includeInactive)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, stages, &httputil.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages(total, perPage),
	})
}

// Get handles GET /stages/{id}
func (h *StageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	st, err := h.service.GetStage(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, st)
}

// Create handles POST /stages
func (h *StageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateStageRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	st, err := h.service.CreateStage(r.Context(), &req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, st)
}

// Update handles PUT /stages/{id}
func (h *StageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req service.UpdateStageRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	st, err := h.service.UpdateStage(r.Context(), id, &req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, st)
}

// Delete handles DELETE /stages/{id} (soft delete)
func (h *StageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeactivateStage(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
