package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/tempoworks/tempo-backend/internal/report/repository"
	"github.com/tempoworks/tempo-backend/pkg/errors"
	"github.com/tempoworks/tempo-backend/pkg/httputil"
	"github.com/tempoworks/tempo-backend/pkg/logger"
)

// ReportHandler handles reporting endpoints
type ReportHandler struct {
	repo   *repository.ReportRepository
	logger *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(repo *repository.ReportRepository, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		repo:   repo,
		logger: log,
	}
}

// Hours handles GET /reports/hours?group_by=project|employee&from=...&to=...
func (h *ReportHandler) Hours(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, err := time.Parse("2006-01-02", q.Get("from"))
	if err != nil {
		httputil.Error(w, errors.BadRequest("from is required and must match format 2006-01-02"))
		return
	}
	to, err := time.Parse("2006-01-02", q.Get("to"))
	if err != nil {
		httputil.Error(w, errors.BadRequest("to is required and must match format 2006-01-02"))
		return
	}
	if to.Before(from) {
		httputil.Error(w, errors.BadRequest("to must not be before from"))
		return
	}

	filter := &repository.Filter{
		From:   from,
		To:     to,
		Status: strings.ToUpper(q.Get("status")),
	}

	switch q.Get("group_by") {
	case "", "project":
		rows, err := h.repo.HoursByProject(r.Context(), filter)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, rows)

	case "employee":
		rows, err := h.repo.HoursByEmployee(r.Context(), filter)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, rows)

	default:
		httputil.Error(w, errors.BadRequest("group_by must be project or employee"))
	}
}
