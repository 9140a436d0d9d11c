package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rosterrepo "github.com/tempoworks/tempo-backend/internal/roster/repository"
	tsrepo "github.com/tempoworks/tempo-backend/internal/timesheet/repository"

	"github.com/tempoworks/tempo-backend/internal/csvimport/importer"
	"github.com/tempoworks/tempo-backend/internal/csvimport/repository"
	"github.com/tempoworks/tempo-backend/internal/csvimport/service"
	"github.com/tempoworks/tempo-backend/pkg/config"
	"github.com/tempoworks/tempo-backend/pkg/database"
	"github.com/tempoworks/tempo-backend/pkg/errors"
	"github.com/tempoworks/tempo-backend/pkg/logger"
	"github.com/tempoworks/tempo-backend/pkg/testutil"
)

type fakeEmployees struct {
	byID    map[string]*rosterrepo.Employee // keyed by business employee id
	created []*rosterrepo.Employee
	updated []*rosterrepo.Employee
}

func (f *fakeEmployees) ListEmployeeIDs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(f.byID))
	for id := range f.byID {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeEmployees) ExistsByEmployeeID(_ context.Context, id string) (bool, error) {
	_, ok := f.byID[id]
	return ok, nil
}

func (f *fakeEmployees) GetByEmployeeID(_ context.Context, id string) (*rosterrepo.Employee, error) {
	emp, ok := f.byID[id]
	if !ok {
		return nil, errors.NotFound("employee")
	}
	return emp, nil
}

func (f *fakeEmployees) ListAll(_ context.Context) ([]*rosterrepo.Employee, error) {
	all := make([]*rosterrepo.Employee, 0, len(f.byID))
	for _, emp := range f.byID {
		all = append(all, emp)
	}
	return all, nil
}

func (f *fakeEmployees) Create(_ context.Context, emp *rosterrepo.Employee) error {
	f.created = append(f.created, emp)
	f.byID[emp.EmployeeID] = emp
	return nil
}

func (f *fakeEmployees) Update(_ context.Context, emp *rosterrepo.Employee) error {
	f.updated = append(f.updated, emp)
	return nil
}

type fakeProjects struct {
	byCode  map[string]*rosterrepo.Project
	created []*rosterrepo.Project
	updated []*rosterrepo.Project
}

func (f *fakeProjects) ListCodes(_ context.Context) ([]string, error) {
	codes := make([]string, 0, len(f.byCode))
	for c := range f.byCode {
		codes = append(codes, c)
	}
	return codes, nil
}

func (f *fakeProjects) ExistsByCode(_ context.Context, code string) (bool, error) {
	_, ok := f.byCode[code]
	return ok, nil
}

func (f *fakeProjects) GetByCode(_ context.Context, code string) (*rosterrepo.Project, error) {
	p, ok := f.byCode[code]
	if !ok {
		return nil, errors.NotFound("project")
	}
	return p, nil
}

func (f *fakeProjects) ListAll(_ context.Context) ([]*rosterrepo.Project, error) {
	all := make([]*rosterrepo.Project, 0, len(f.byCode))
	for _, p := range f.byCode {
		all = append(all, p)
	}
	return all, nil
}

func (f *fakeProjects) Create(_ context.Context, p *rosterrepo.Project) error {
	f.created = append(f.created, p)
	f.byCode[p.ProjectCode] = p
	return nil
}

func (f *fakeProjects) Update(_ context.Context, p *rosterrepo.Project) error {
	f.updated = append(f.updated, p)
	return nil
}

type fakeStages struct {
	byTaskID map[string]*rosterrepo.Stage
	created  []*rosterrepo.Stage
	updated  []*rosterrepo.Stage
}

func (f *fakeStages) ListTaskIDs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(f.byTaskID))
	for id := range f.byTaskID {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeStages) ExistsByTaskID(_ context.Context, taskID string) (bool, error) {
	_, ok := f.byTaskID[taskID]
	return ok, nil
}

func (f *fakeStages) GetByTaskID(_ context.Context, taskID string) (*rosterrepo.Stage, error) {
	s, ok := f.byTaskID[taskID]
	if !ok {
		return nil, errors.NotFound("stage")
	}
	return s, nil
}

func (f *fakeStages) ListAll(_ context.Context) ([]*rosterrepo.Stage, error) {
	all := make([]*rosterrepo.Stage, 0, len(f.byTaskID))
	for _, s := range f.byTaskID {
		all = append(all, s)
	}
	return all, nil
}

func (f *fakeStages) Create(_ context.Context, s *rosterrepo.Stage) error {
	f.created = append(f.created, s)
	f.byTaskID[s.TaskID] = s
	return nil
}

func (f *fakeStages) Update(_ context.Context, s *rosterrepo.Stage) error {
	f.updated = append(f.updated, s)
	return nil
}

type fakePublisher struct {
	published []*repository.ImportLog
}

func (f *fakePublisher) PublishCompleted(_ context.Context, log *repository.ImportLog) {
	f.published = append(f.published, log)
}

type fixture struct {
	mock      *testutil.MockDB
	employees *fakeEmployees
	projects  *fakeProjects
	stages    *fakeStages
	publisher *fakePublisher
	svc       *service.ImportService
}

func newFixture(t *testing.T, cfg *config.ImportConfig) *fixture {
	t.Helper()

	mock := testutil.NewMockDB(t)
	t.Cleanup(func() { mock.Close() })

	log := logger.New("csvimport-test", "test")
	db := database.NewFromSqlx(mock.DB, log)

	f := &fixture{
		mock:      mock,
		employees: &fakeEmployees{byID: map[string]*rosterrepo.Employee{}},
		projects:  &fakeProjects{byCode: map[string]*rosterrepo.Project{}},
		stages:    &fakeStages{byTaskID: map[string]*rosterrepo.Stage{}},
		publisher: &fakePublisher{},
	}

	f.svc = service.NewImportService(
		db, cfg,
		f.employees, f.projects, f.stages,
		tsrepo.NewTimesheetRepository(db),
		tsrepo.NewApprovalRepository(db),
		repository.NewImportLogRepository(db),
		f.publisher,
		log,
	)

	return f
}

func defaultConfig() *config.ImportConfig {
	return &config.ImportConfig{MaxRows: 10000, PreviewRows: 10}
}

// expectImportLog sets up the transaction that persists the run summary,
// with one error insert per expected error row.
func (f *fixture) expectImportLog(errorInserts int) {
	f.mock.ExpectBegin()
	f.mock.Mock.ExpectQuery("INSERT INTO csv_import_logs").
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))
	for i := 0; i < errorInserts; i++ {
		f.mock.Mock.ExpectExec("INSERT INTO csv_import_errors").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	f.mock.ExpectCommit()
}

func TestValidate_EmployeeFile(t *testing.T) {
	f := newFixture(t, defaultConfig())
	ctx := context.Background()

	file := strings.Join([]string{
		"employeeId,name,email,password,role",
		"EMP001,Jane Doe,jane@example.com,secret123,LEVEL1",
		"EMP002,John Roe,not-an-email,secret123,LEVEL1",
		"EMP001,Jane Again,jane2@example.com,secret123,LEVEL1",
	}, "\n")

	result, err := f.svc.Validate(ctx, importer.DataTypeEmployee, "employees.csv", strings.NewReader(file))
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 2, result.ValidRows)
	assert.Equal(t, 1, result.ErrorRows)
	assert.False(t, result.IsValid)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].RowNumber, "row numbers are file line numbers, header is line 1")
	require.Len(t, result.Errors[0].Errors, 1)
	assert.Equal(t, "email", result.Errors[0].Errors[0].Field)

	require.Len(t, result.Duplicates, 1)
	dup := result.Duplicates[0]
	assert.Equal(t, 4, dup.RowNumber)
	assert.Equal(t, "EMPLOYEE|EMP001", dup.Key)
	assert.Equal(t, importer.DuplicateInFile, dup.Kind)
	assert.Equal(t, "employeeId", dup.Field)
	assert.Equal(t, "EMP001", dup.Value)

	// an in-file duplicate shows the earlier row it would replace
	existing, ok := dup.ExistingData.(*importer.EmployeeCandidate)
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", existing.Name)
	newData, ok := dup.NewData.(*importer.EmployeeCandidate)
	require.True(t, ok)
	assert.Equal(t, "Jane Again", newData.Name)

	assert.Len(t, result.Preview, 2, "only valid rows are previewed")
}

func TestValidate_ExistingDuplicate(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.employees.byID["EMP001"] = &rosterrepo.Employee{ID: "emp-1", EmployeeID: "EMP001", Name: "Jane Stored"}

	file := "employeeId,name,email,password\nEMP001,Jane,jane@example.com,secret123\n"

	result, err := f.svc.Validate(context.Background(), importer.DataTypeEmployee, "employees.csv", strings.NewReader(file))
	require.NoError(t, err)

	assert.Equal(t, 1, result.ValidRows, "duplicates are still valid rows")
	assert.True(t, result.IsValid, "duplicates are decisions, not errors")
	require.Len(t, result.Duplicates, 1)

	dup := result.Duplicates[0]
	assert.Equal(t, importer.DuplicateExisting, dup.Kind)
	assert.Equal(t, "employeeId", dup.Field)
	assert.Equal(t, "EMP001", dup.Value)

	// the stored record is what a replace decision would overwrite
	existing, ok := dup.ExistingData.(*rosterrepo.Employee)
	require.True(t, ok)
	assert.Equal(t, "Jane Stored", existing.Name)
}

func TestValidate_TimesheetDuplicateCarriesStoredRecord(t *testing.T) {
	f := newFixture(t, defaultConfig())
	rosterFixtures(f)

	file := strings.Join([]string{
		"employeeId,projectCode,taskId,date,startTime,endTime,hours,description,status",
		"EMP001,PRJ001,TD.01.01,2026-01-15,09:00,12:30,3.5,Design review,SUBMITTED",
	}, "\n")

	f.mock.Mock.ExpectQuery("SELECT e.employee_id AS employee_code").
		WillReturnRows(testutil.MockRows("employee_code", "project_code", "work_date", "start_time").
			AddRow("EMP001", "PRJ001", "2026-01-15", "09:00"))

	now := time.Now()
	f.mock.Mock.ExpectQuery("WHERE e.employee_id = ").
		WithArgs("EMP001", "PRJ001", "2026-01-15", "09:00").
		WillReturnRows(testutil.MockRows(
			"id", "employee_id", "project_id", "stage_id", "work_date",
			"start_time", "end_time", "hours", "description", "status",
			"created_at", "updated_at", "employee_code", "employee_name",
			"project_code", "project_name", "task_id",
		).AddRow("ts-1", "emp-1", "prj-1", nil, now,
			"09:00", "11:00", 2.0, nil, tsrepo.StatusSubmitted,
			now, now, "EMP001", "Jane Doe",
			"PRJ001", "Relaunch", nil))

	result, err := f.svc.Validate(context.Background(), importer.DataTypeTimesheet, "timesheets.csv", strings.NewReader(file))
	require.NoError(t, err)

	require.Len(t, result.Duplicates, 1)
	dup := result.Duplicates[0]
	assert.Equal(t, importer.DuplicateExisting, dup.Kind)
	assert.Equal(t, "slot", dup.Field)
	assert.Equal(t, "EMP001|PRJ001|2026-01-15|09:00", dup.Value)

	existing, ok := dup.ExistingData.(*tsrepo.TimesheetDetail)
	require.True(t, ok)
	assert.Equal(t, "ts-1", existing.ID)
	assert.Equal(t, 2.0, existing.Hours, "the caller sees the hours a replace would discard")

	f.mock.ExpectationsWereMet(t)
}

func TestValidate_PreviewCapped(t *testing.T) {
	cfg := defaultConfig()
	cfg.PreviewRows = 1
	f := newFixture(t, cfg)

	file := strings.Join([]string{
		"employeeId,name,email,password",
		"EMP001,Jane,jane@example.com,secret123",
		"EMP002,John,john@example.com,secret123",
	}, "\n")

	result, err := f.svc.Validate(context.Background(), importer.DataTypeEmployee, "employees.csv", strings.NewReader(file))
	require.NoError(t, err)

	assert.Equal(t, 2, result.ValidRows)
	assert.Len(t, result.Preview, 1)
}

func TestValidate_EmptyFile(t *testing.T) {
	f := newFixture(t, defaultConfig())

	_, err := f.svc.Validate(context.Background(), importer.DataTypeEmployee, "empty.csv", strings.NewReader(""))
	assert.ErrorContains(t, err, "empty")
}

func TestValidate_TooManyRows(t *testing.T) {
	cfg := defaultConfig()
	cfg.MaxRows = 1
	f := newFixture(t, cfg)

	file := strings.Join([]string{
		"employeeId,name,email,password",
		"EMP001,Jane,jane@example.com,secret123",
		"EMP002,John,john@example.com,secret123",
	}, "\n")

	_, err := f.svc.Validate(context.Background(), importer.DataTypeEmployee, "big.csv", strings.NewReader(file))
	assert.ErrorContains(t, err, "maximum")
}

func TestValidate_BrokenRow(t *testing.T) {
	f := newFixture(t, defaultConfig())

	file := "employeeId,name,email,password\nEMP001,Jane\n"

	result, err := f.svc.Validate(context.Background(), importer.DataTypeEmployee, "broken.csv", strings.NewReader(file))
	require.NoError(t, err)

	assert.Equal(t, 1, result.ErrorRows)
	require.Len(t, result.Errors, 1)
	require.Len(t, result.Errors[0].Errors, 1)
	assert.Equal(t, "row", result.Errors[0].Errors[0].Field)
}

func TestValidate_UnsupportedDataType(t *testing.T) {
	f := newFixture(t, defaultConfig())

	_, err := f.svc.Validate(context.Background(), importer.DataType("INVOICE"), "x.csv", strings.NewReader("a\nb\n"))
	assert.ErrorContains(t, err, "unsupported")
}

func TestExecute_EmployeePartial(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.employees.byID["EMP001"] = &rosterrepo.Employee{ID: "emp-1", EmployeeID: "EMP001"}

	file := strings.Join([]string{
		"employeeId,name,email,password,role",
		"EMP002,John Roe,john@example.com,secret123,LEVEL1",
		"EMP003,Bad Mail,not-an-email,secret123,LEVEL1",
		"EMP001,Jane Doe,jane@example.com,secret123,LEVEL1",
	}, "\n")

	// email error on line 3 plus the undecided duplicate on line 4
	f.expectImportLog(2)

	result, err := f.svc.Execute(context.Background(), importer.DataTypeEmployee, "employees.csv",
		strings.NewReader(file), nil, "operator-1")
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 1, result.SuccessRows)
	assert.Equal(t, 2, result.ErrorRows)
	assert.Equal(t, repository.ImportPartial, result.Status)

	require.Len(t, f.employees.created, 1)
	assert.Equal(t, "EMP002", f.employees.created[0].EmployeeID)
	assert.NotEqual(t, "secret123", f.employees.created[0].PasswordHash, "passwords are stored hashed")
	assert.Empty(t, f.employees.updated)

	require.Len(t, result.Errors, 2)
	assert.Equal(t, 3, result.Errors[0].RowNumber)
	assert.Equal(t, 4, result.Errors[1].RowNumber)
	assert.Equal(t, "duplicate row skipped", result.Errors[1].Message)
	require.NotNil(t, result.Errors[1].RawValue)
	assert.Equal(t, "EMPLOYEE|EMP001", *result.Errors[1].RawValue)

	require.Len(t, f.publisher.published, 1)
	assert.Equal(t, repository.ImportPartial, f.publisher.published[0].Status)

	f.mock.ExpectationsWereMet(t)
}

func TestExecute_ReplaceEmployee(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.employees.byID["EMP001"] = &rosterrepo.Employee{ID: "emp-1", EmployeeID: "EMP001", Role: "LEVEL2"}

	file := "employeeId,name,email,password\nEMP001,Jane Doe,jane@example.com,secret123\n"
	decisions := map[string]string{"EMPLOYEE|EMP001": service.DecisionReplace}

	f.expectImportLog(0)

	result, err := f.svc.Execute(context.Background(), importer.DataTypeEmployee, "employees.csv",
		strings.NewReader(file), decisions, "operator-1")
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessRows)
	assert.Equal(t, 0, result.ErrorRows)
	assert.Equal(t, repository.ImportSuccess, result.Status)

	assert.Empty(t, f.employees.created)
	require.Len(t, f.employees.updated, 1)
	assert.Equal(t, "Jane Doe", f.employees.updated[0].Name)
	assert.Equal(t, "LEVEL2", f.employees.updated[0].Role, "blank role keeps the stored one")

	f.mock.ExpectationsWereMet(t)
}

func TestExecute_RerunAllDuplicatesFails(t *testing.T) {
	f := newFixture(t, defaultConfig())
	f.employees.byID["EMP001"] = &rosterrepo.Employee{ID: "emp-1", EmployeeID: "EMP001"}

	file := "employeeId,name,email,password\nEMP001,Jane,jane@example.com,secret123\n"

	f.expectImportLog(1)

	result, err := f.svc.Execute(context.Background(), importer.DataTypeEmployee, "employees.csv",
		strings.NewReader(file), nil, "operator-1")
	require.NoError(t, err)

	assert.Equal(t, 0, result.SuccessRows)
	assert.Equal(t, 1, result.ErrorRows)
	assert.Equal(t, repository.ImportFailed, result.Status)
	assert.Empty(t, f.employees.created)

	f.mock.ExpectationsWereMet(t)
}

func rosterFixtures(f *fixture) {
	f.employees.byID["EMP001"] = &rosterrepo.Employee{ID: "emp-1", EmployeeID: "EMP001"}
	f.projects.byCode["PRJ001"] = &rosterrepo.Project{ID: "prj-1", ProjectCode: "PRJ001"}
	f.stages.byTaskID["TD.01.01"] = &rosterrepo.Stage{ID: "stg-1", TaskID: "TD.01.01"}
}

func timesheetCreatedRows() *sqlmock.Rows {
	now := time.Now()
	return testutil.MockRows("created_at", "updated_at").AddRow(now, now)
}

func TestExecute_TimesheetSubmittedPairsApproval(t *testing.T) {
	f := newFixture(t, defaultConfig())
	rosterFixtures(f)

	file := strings.Join([]string{
		"employeeId,projectCode,taskId,date,startTime,endTime,hours,description,status",
		"EMP001,PRJ001,TD.01.01,2026-01-15,09:00,12:30,3.5,Design review,SUBMITTED",
	}, "\n")

	// no stored timesheets yet
	f.mock.Mock.ExpectQuery("SELECT e.employee_id AS employee_code").
		WillReturnRows(testutil.MockRows("employee_code", "project_code", "work_date", "start_time"))

	f.mock.ExpectBegin()
	f.mock.Mock.ExpectQuery("INSERT INTO timesheets").WillReturnRows(timesheetCreatedRows())
	f.mock.Mock.ExpectQuery("INSERT INTO approvals").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), tsrepo.ApprovalPending, "emp-1",
			nil, sqlmock.AnyArg(), nil, nil).
		WillReturnRows(timesheetCreatedRows())
	f.mock.ExpectCommit()

	f.expectImportLog(0)

	result, err := f.svc.Execute(context.Background(), importer.DataTypeTimesheet, "timesheets.csv",
		strings.NewReader(file), nil, "operator-1")
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessRows)
	assert.Equal(t, repository.ImportSuccess, result.Status)

	f.mock.ExpectationsWereMet(t)
}

func TestExecute_TimesheetDraftHasNoApproval(t *testing.T) {
	f := newFixture(t, defaultConfig())
	rosterFixtures(f)

	file := strings.Join([]string{
		"employeeId,projectCode,taskId,date,startTime,endTime,hours,description,status",
		"EMP001,PRJ001,,2026-01-15,,,8,,DRAFT",
	}, "\n")

	f.mock.Mock.ExpectQuery("SELECT e.employee_id AS employee_code").
		WillReturnRows(testutil.MockRows("employee_code", "project_code", "work_date", "start_time"))

	f.mock.ExpectBegin()
	f.mock.Mock.ExpectQuery("INSERT INTO timesheets").WillReturnRows(timesheetCreatedRows())
	f.mock.ExpectCommit()

	f.expectImportLog(0)

	result, err := f.svc.Execute(context.Background(), importer.DataTypeTimesheet, "timesheets.csv",
		strings.NewReader(file), nil, "operator-1")
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessRows)
	f.mock.ExpectationsWereMet(t)
}

func TestExecute_TimesheetReplaceDeletesFullSlot(t *testing.T) {
	cfg := defaultConfig()
	cfg.DefaultApprover = "MGR001"
	f := newFixture(t, cfg)
	rosterFixtures(f)
	f.employees.byID["MGR001"] = &rosterrepo.Employee{ID: "mgr-1", EmployeeID: "MGR001"}

	file := strings.Join([]string{
		"employeeId,projectCode,taskId,date,startTime,endTime,hours,description,status",
		"EMP001,PRJ001,TD.01.01,2026-01-15,09:00,12:00,3,,APPROVED",
	}, "\n")

	start := "09:00"
	decisions := map[string]string{
		importer.TimesheetSlotKey("EMP001", "PRJ001", "2026-01-15", &start): service.DecisionReplace,
	}

	f.mock.Mock.ExpectQuery("SELECT e.employee_id AS employee_code").
		WillReturnRows(testutil.MockRows("employee_code", "project_code", "work_date", "start_time").
			AddRow("EMP001", "PRJ001", "2026-01-15", "09:00"))

	f.mock.ExpectBegin()
	// the delete matches the exact slot, including the start time
	f.mock.Mock.ExpectExec("DELETE FROM timesheets").
		WithArgs("emp-1", "prj-1", sqlmock.AnyArg(), "09:00").
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.Mock.ExpectQuery("INSERT INTO timesheets").WillReturnRows(timesheetCreatedRows())
	f.mock.Mock.ExpectQuery("INSERT INTO approvals").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), tsrepo.ApprovalApproved, "emp-1",
			"mgr-1", sqlmock.AnyArg(), sqlmock.AnyArg(), nil).
		WillReturnRows(timesheetCreatedRows())
	f.mock.ExpectCommit()

	f.expectImportLog(0)

	result, err := f.svc.Execute(context.Background(), importer.DataTypeTimesheet, "timesheets.csv",
		strings.NewReader(file), decisions, "operator-1")
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessRows)
	assert.Equal(t, repository.ImportSuccess, result.Status)

	f.mock.ExpectationsWereMet(t)
}

func TestExecute_TimesheetApprovedFallsBackToOperator(t *testing.T) {
	f := newFixture(t, defaultConfig()) // no default approver configured
	rosterFixtures(f)

	file := strings.Join([]string{
		"employeeId,projectCode,taskId,date,startTime,endTime,hours,description,status",
		"EMP001,PRJ001,,2026-01-15,,,8,,APPROVED",
	}, "\n")

	f.mock.Mock.ExpectQuery("SELECT e.employee_id AS employee_code").
		WillReturnRows(testutil.MockRows("employee_code", "project_code", "work_date", "start_time"))

	f.mock.ExpectBegin()
	f.mock.Mock.ExpectQuery("INSERT INTO timesheets").WillReturnRows(timesheetCreatedRows())
	f.mock.Mock.ExpectQuery("INSERT INTO approvals").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), tsrepo.ApprovalApproved, "emp-1",
			"operator-1", sqlmock.AnyArg(), sqlmock.AnyArg(), nil).
		WillReturnRows(timesheetCreatedRows())
	f.mock.ExpectCommit()

	f.expectImportLog(0)

	_, err := f.svc.Execute(context.Background(), importer.DataTypeTimesheet, "timesheets.csv",
		strings.NewReader(file), nil, "operator-1")
	require.NoError(t, err)

	f.mock.ExpectationsWereMet(t)
}
