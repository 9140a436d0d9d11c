package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rosterrepo "github.com/tempoworks/tempo-backend/internal/roster/repository"
	tsrepo "github.com/tempoworks/tempo-backend/internal/timesheet/repository"

	"github.com/tempoworks/tempo-backend/internal/csvimport/handler"
	"github.com/tempoworks/tempo-backend/internal/csvimport/repository"
	"github.com/tempoworks/tempo-backend/internal/csvimport/service"
	"github.com/tempoworks/tempo-backend/pkg/config"
	"github.com/tempoworks/tempo-backend/pkg/database"
	"github.com/tempoworks/tempo-backend/pkg/errors"
	"github.com/tempoworks/tempo-backend/pkg/logger"
	"github.com/tempoworks/tempo-backend/pkg/testutil"
)

type stubEmployees struct{}

func (stubEmployees) ListEmployeeIDs(context.Context) ([]string, error) { return nil, nil }

func (stubEmployees) ExistsByEmployeeID(context.Context, string) (bool, error) { return false, nil }

func (stubEmployees) GetByEmployeeID(context.Context, string) (*rosterrepo.Employee, error) {
	return nil, errors.NotFound("employee")
}

func (stubEmployees) ListAll(context.Context) ([]*rosterrepo.Employee, error) { return nil, nil }

func (stubEmployees) Create(context.Context, *rosterrepo.Employee) error { return nil }

func (stubEmployees) Update(context.Context, *rosterrepo.Employee) error { return nil }

type stubProjects struct{}

func (stubProjects) ListCodes(context.Context) ([]string, error) { return nil, nil }

func (stubProjects) ExistsByCode(context.Context, string) (bool, error) { return false, nil }

func (stubProjects) GetByCode(context.Context, string) (*rosterrepo.Project, error) {
	return nil, errors.NotFound("project")
}

func (stubProjects) ListAll(context.Context) ([]*rosterrepo.Project, error) { return nil, nil }

func (stubProjects) Create(context.Context, *rosterrepo.Project) error { return nil }

func (stubProjects) Update(context.Context, *rosterrepo.Project) error { return nil }

type stubStages struct{}

func (stubStages) ListTaskIDs(context.Context) ([]string, error) { return nil, nil }

func (stubStages) ExistsByTaskID(context.Context, string) (bool, error) { return false, nil }

func (stubStages) GetByTaskID(context.Context, string) (*rosterrepo.Stage, error) {
	return nil, errors.NotFound("stage")
}

func (stubStages) ListAll(context.Context) ([]*rosterrepo.Stage, error) { return nil, nil }

func (stubStages) Create(context.Context, *rosterrepo.Stage) error { return nil }

func (stubStages) Update(context.Context, *rosterrepo.Stage) error { return nil }

func newImportHandler(t *testing.T) *handler.ImportHandler {
	t.Helper()

	mock := testutil.NewMockDB(t)
	t.Cleanup(func() { mock.Close() })

	log := logger.New("csvimport-test", "test")
	db := database.NewFromSqlx(mock.DB, log)

	svc := service.NewImportService(
		db, &config.ImportConfig{MaxRows: 10000, PreviewRows: 10},
		stubEmployees{}, stubProjects{}, stubStages{},
		tsrepo.NewTimesheetRepository(db),
		tsrepo.NewApprovalRepository(db),
		repository.NewImportLogRepository(db),
		nil, log,
	)

	return handler.NewImportHandler(svc, log)
}

// multipartUpload builds a form with the CSV under the given field name
func multipartUpload(t *testing.T, fileField, csvBody string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("dataType", "EMPLOYEE"))

	fw, err := mw.CreateFormFile(fileField, "employees.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csvBody))
	require.NoError(t, err)

	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

const validEmployeeCSV = "employeeId,name,email,password\nEMP001,Jane,jane@example.com,secret123\n"

func postValidate(t *testing.T, h *handler.ImportHandler, fileField, csvBody string) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartUpload(t, fileField, csvBody)
	req := httptest.NewRequest(http.MethodPost, "/csv/import/validate", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	h.Validate(rec, req)
	return rec
}

func TestValidate_AcceptsCsvFileField(t *testing.T) {
	h := newImportHandler(t)

	rec := postValidate(t, h, "csvFile", validEmployeeCSV)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			TotalRows int  `json:"totalRows"`
			IsValid   bool `json:"isValid"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.TotalRows)
	assert.True(t, resp.Data.IsValid)
}

func TestValidate_AcceptsLegacyFileField(t *testing.T) {
	h := newImportHandler(t)

	rec := postValidate(t, h, "file", validEmployeeCSV)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestValidate_MissingFileField(t *testing.T) {
	h := newImportHandler(t)

	rec := postValidate(t, h, "attachment", validEmployeeCSV)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "csvFile")
}
