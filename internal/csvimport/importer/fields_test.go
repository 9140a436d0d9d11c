package importer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tempoworks/tempo-backend/internal/csvimport/importer"
)

// Excel writes UTF-8 exports with a byte-order mark
const bom = "\uFEFF"

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "employeeId", "employeeId"},
		{"leading BOM", bom + "employeeId", "employeeId"},
		{"whitespace", "  employeeId ", "employeeId"},
		{"BOM and whitespace", bom + " employeeId", "employeeId"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, importer.NormalizeHeader(tt.input))
		})
	}
}

func TestFieldValue_ExactMatch(t *testing.T) {
	row := map[string]string{"employeeId": "EMP001"}

	v, ok := importer.FieldValue(row, "employeeId")
	assert.True(t, ok)
	assert.Equal(t, "EMP001", v)
}

func TestFieldValue_BOMPrefixedKey(t *testing.T) {
	// First column of an Excel-exported file keeps its BOM
	row := map[string]string{bom + "employeeId": "EMP001", "name": "Jane"}

	v, ok := importer.FieldValue(row, "employeeId")
	assert.True(t, ok)
	assert.Equal(t, "EMP001", v)
}

func TestFieldValue_NormalizedScan(t *testing.T) {
	row := map[string]string{" employeeId ": "EMP001"}

	v, ok := importer.FieldValue(row, "employeeId")
	assert.True(t, ok)
	assert.Equal(t, "EMP001", v)
}

func TestFieldValue_SpreadsheetHeaders(t *testing.T) {
	// Exported files and the published templates use spaced headers
	row := map[string]string{
		"Employee ID":  "EMP001",
		"Project Code": "PRJ001",
		"Stage ID":     "TD.01.01",
		"Date":         "2026-01-15",
		"Start Time":   "09:00",
		"Hours":        "7.5",
	}

	for field, want := range map[string]string{
		"employeeId":  "EMP001",
		"projectCode": "PRJ001",
		"taskId":      "TD.01.01",
		"date":        "2026-01-15",
		"startTime":   "09:00",
		"hours":       "7.5",
	} {
		v, ok := importer.FieldValue(row, field)
		assert.True(t, ok, field)
		assert.Equal(t, want, v, field)
	}
}

func TestFieldValue_SnakeCaseHeaders(t *testing.T) {
	row := map[string]string{"employee_id": "EMP001", "work_date": "2026-01-15"}

	v, ok := importer.FieldValue(row, "employeeId")
	assert.True(t, ok)
	assert.Equal(t, "EMP001", v)

	v, ok = importer.FieldValue(row, "date")
	assert.True(t, ok)
	assert.Equal(t, "2026-01-15", v)
}

func TestFieldValue_Missing(t *testing.T) {
	row := map[string]string{"name": "Jane"}

	_, ok := importer.FieldValue(row, "employeeId")
	assert.False(t, ok)
}

func TestFieldValue_ExactWinsOverScan(t *testing.T) {
	row := map[string]string{
		"employeeId":  "exact",
		" employeeId": "scanned",
	}

	v, ok := importer.FieldValue(row, "employeeId")
	assert.True(t, ok)
	assert.Equal(t, "exact", v)
}
