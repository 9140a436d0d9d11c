package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/tempoworks/tempo-backend/internal/csvimport/importer"
	"github.com/tempoworks/tempo-backend/pkg/errors"
)

// Canonical header rows per data type, in the spelling spreadsheet
// users see. The importer folds headers before matching, so these
// round-trip through validate and execute unchanged, and camelCase
// files from older exports keep working.
var templateHeaders = map[importer.DataType][]string{
	importer.DataTypeEmployee:  {"Employee ID", "Name", "Email", "Password", "Role", "Position"},
	importer.DataTypeProject:   {"Project Code", "Name", "Description", "Status", "Start Date", "End Date"},
	importer.DataTypeStage:     {"Stage ID", "Name", "Description", "Category"},
	importer.DataTypeTimesheet: {"Employee ID", "Project Code", "Stage ID", "Date", "Start Time", "End Time", "Hours", "Description", "Status"},
}

var templateSamples = map[importer.DataType][]string{
	importer.DataTypeEmployee:  {"EMP001", "Jane Doe", "jane.doe@example.com", "changeme123", "LEVEL1", "Engineer"},
	importer.DataTypeProject:   {"PRJ001", "Website Relaunch", "Customer portal rebuild", "ACTIVE", "2026-01-01", "2026-06-30"},
	importer.DataTypeStage:     {"TD.01.01", "Requirements", "Initial analysis", "Analysis"},
	importer.DataTypeTimesheet: {"EMP001", "PRJ001", "TD.01.01", "2026-01-15", "09:00", "12:30", "3.5", "Design review", "SUBMITTED"},
}

// WriteTemplate writes the canonical header plus one sample row
func (s *ImportService) WriteTemplate(dataType importer.DataType, w io.Writer) error {
	header, ok := templateHeaders[dataType]
	if !ok {
		return errors.BadRequest("unsupported data type")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.Write(templateSamples[dataType]); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// Export streams the current records of a data type as CSV, using the
// same canonical headers the importer accepts.
func (s *ImportService) Export(ctx context.Context, dataType importer.DataType, w io.Writer) error {
	header, ok := templateHeaders[dataType]
	if !ok {
		return errors.BadRequest("unsupported data type")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}

	switch dataType {
	case importer.DataTypeEmployee:
		employees, err := s.employees.ListAll(ctx)
		if err != nil {
			return err
		}
		for _, e := range employees {
			// Password hashes never leave the system
			record := []string{e.EmployeeID, e.Name, e.Email, "", e.Role, deref(e.Position)}
			if err := cw.Write(record); err != nil {
				return err
			}
		}

	case importer.DataTypeProject:
		projects, err := s.projects.ListAll(ctx)
		if err != nil {
			return err
		}
		for _, p := range projects {
			start, end := "", ""
			if p.StartDate != nil {
				start = p.StartDate.Format("2006-01-02")
			}
			if p.EndDate != nil {
				end = p.EndDate.Format("2006-01-02")
			}
			record := []string{p.ProjectCode, p.Name, deref(p.Description), p.Status, start, end}
			if err := cw.Write(record); err != nil {
				return err
			}
		}

	case importer.DataTypeStage:
		stages, err := s.stages.ListAll(ctx)
		if err != nil {
			return err
		}
		for _, st := range stages {
			record := []string{st.TaskID, st.Name, deref(st.Description), deref(st.Category)}
			if err := cw.Write(record); err != nil {
				return err
			}
		}

	case importer.DataTypeTimesheet:
		sheets, err := s.timesheetRepo.ListAllDetails(ctx)
		if err != nil {
			return err
		}
		for _, t := range sheets {
			record := []string{
				t.EmployeeCode,
				t.ProjectCode,
				deref(t.TaskID),
				t.WorkDate.Format("2006-01-02"),
				deref(t.StartTime),
				deref(t.EndTime),
				fmt.Sprintf("%g", t.Hours),
				deref(t.Description),
				t.Status,
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
