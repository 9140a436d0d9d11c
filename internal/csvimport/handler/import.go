package handler

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tempoworks/tempo-backend/internal/csvimport/importer"
	"github.com/tempoworks/tempo-backend/internal/csvimport/service"
	"github.com/tempoworks/tempo-backend/pkg/errors"
	"github.com/tempoworks/tempo-backend/pkg/httputil"
	"github.com/tempoworks/tempo-backend/pkg/logger"
)

const maxUploadBytes = 10 << 20 // 10 MiB

// ImportHandler handles CSV import endpoints
type ImportHandler struct {
	service *service.ImportService
	logger  *logger.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(svc *service.ImportService, log *logger.Logger) *ImportHandler {
	return &ImportHandler{
		service: svc,
		logger:  log,
	}
}

// entityDataType maps a URL entity segment to its data type
func entityDataType(entity string) (importer.DataType, error) {
	switch strings.ToLower(entity) {
	case "employees":
		return importer.DataTypeEmployee, nil
	case "projects":
		return importer.DataTypeProject, nil
	case "stages":
		return importer.DataTypeStage, nil
	case "timesheets":
		return importer.DataTypeTimesheet, nil
	}
	return "", errors.BadRequest("unknown entity: " + entity)
}

// parseUpload extracts the CSV file and data type from a multipart form
func (h *ImportHandler) parseUpload(r *http.Request) (importer.DataType, string, multipart.File, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", "", nil, errors.BadRequest("invalid multipart form")
	}

	dataType := importer.DataType(strings.ToUpper(r.FormValue("dataType")))
	if !dataType.Valid() {
		return "", "", nil, errors.BadRequest("dataType must be one of EMPLOYEE, PROJECT, STAGE, TIMESHEET")
	}

	// "csvFile" is the documented field name; "file" kept for older clients
	file, header, err := r.FormFile("csvFile")
	if err != nil {
		file, header, err = r.FormFile("file")
	}
	if err != nil {
		return "", "", nil, errors.BadRequest("csvFile is required")
	}

	return dataType, header.Filename, file, nil
}

// Validate handles POST /csv/import/validate — a dry run that reports
// row errors, duplicates and a preview without writing anything.
func (h *ImportHandler) Validate(w http.ResponseWriter, r *http.Request) {
	dataType, fileName, file, err := h.parseUpload(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	defer file.Close()

	result, err := h.service.Validate(r.Context(), dataType, fileName, file)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// Execute handles POST /csv/import/execute. The optional
// duplicateDecisions form value is a JSON object mapping natural-key
// strings from the validate response to "skip" or "replace".
func (h *ImportHandler) Execute(w http.ResponseWriter, r *http.Request) {
	dataType, fileName, file, err := h.parseUpload(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	defer file.Close()

	decisions := map[string]string{}
	if raw := r.FormValue("duplicateDecisions"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &decisions); err != nil {
			httputil.Error(w, errors.BadRequest("duplicateDecisions must be a JSON object of key to decision"))
			return
		}
	}

	operatorID := httputil.GetUserID(r.Context())

	result, err := h.service.Execute(r.Context(), dataType, fileName, file, decisions, operatorID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// ListLogs handles GET /csv/import/logs
func (h *ImportHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	page, perPage := parsePagination(r)
	dataType := strings.ToUpper(r.URL.Query().Get("data_type"))

	logs, total, err := h.service.ListLogs(r.Context(), page, perPage, dataType)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, logs, &httputil.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages(total, perPage),
	})
}

// GetLog handles GET /csv/import/logs/{id}
func (h *ImportHandler) GetLog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	log, logErrors, err := h.service.GetLog(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"log":    log,
		"errors": logErrors,
	})
}

// Template handles GET /csv/template/{entity}
func (h *ImportHandler) Template(w http.ResponseWriter, r *http.Request) {
	dataType, err := entityDataType(chi.URLParam(r, "entity"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+strings.ToLower(string(dataType))+`_template.csv"`)

	if err := h.service.WriteTemplate(dataType, w); err != nil {
		h.logger.Error().Err(err).Msg("failed to write template")
	}
}

// Export handles GET /csv/export/{entity}
func (h *ImportHandler) Export(w http.ResponseWriter, r *http.Request) {
	dataType, err := entityDataType(chi.URLParam(r, "entity"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+strings.ToLower(string(dataType))+`_export.csv"`)

	if err := h.service.Export(r.Context(), dataType, w); err != nil {
		h.logger.Error().Err(err).Msg("failed to write export")
	}
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
