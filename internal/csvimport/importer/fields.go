package importer

import (
	"strings"
	"unicode"
)

// DataType identifies what kind of records a CSV file carries
type DataType string

// Supported import data types
const (
	DataTypeEmployee  DataType = "EMPLOYEE"
	DataTypeProject   DataType = "PROJECT"
	DataTypeStage     DataType = "STAGE"
	DataTypeTimesheet DataType = "TIMESHEET"
)

// Valid reports whether the data type is one of the supported kinds
func (d DataType) Valid() bool {
	switch d {
	case DataTypeEmployee, DataTypeProject, DataTypeStage, DataTypeTimesheet:
		return true
	}
	return false
}

const bom = "\uFEFF"

// NormalizeHeader strips a single leading byte-order mark and surrounding
// whitespace from a CSV header cell. Excel on Windows writes UTF-8 files
// with a BOM, which otherwise glues itself to the first column name.
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, bom)
	return strings.TrimSpace(h)
}

// headerAliases maps folded header spellings onto the folded logical
// field they feed. Spreadsheet exports label the stage column
// "Stage ID" and the work date column "Date" or "Work Date".
var headerAliases = map[string]string{
	"stageid":  "taskid",
	"workdate": "date",
}

// foldHeader lowercases a normalized header and drops spaces,
// underscores and hyphens, so "Employee ID", "employee_id" and
// "employeeId" all name the same logical field.
func foldHeader(h string) string {
	var b strings.Builder
	for _, r := range NormalizeHeader(h) {
		switch r {
		case ' ', '\t', '_', '-':
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// FieldValue resolves the value of a logical field in a raw CSV row.
// Resolution order: exact key, BOM-prefixed key, then a scan comparing
// folded keys, so both the camelCase template headers and the spaced
// spreadsheet headers ("Employee ID", "Start Time") resolve. Every
// consumer of row data goes through this one function so the mapper,
// validator and executor can never disagree about which column a value
// came from.
func FieldValue(row map[string]string, field string) (string, bool) {
	if v, ok := row[field]; ok {
		return v, true
	}
	if v, ok := row[bom+field]; ok {
		return v, true
	}
	want := foldHeader(field)
	for k, v := range row {
		got := foldHeader(k)
		if alias, ok := headerAliases[got]; ok {
			got = alias
		}
		if got == want {
			return v, true
		}
	}
	return "", false
}
