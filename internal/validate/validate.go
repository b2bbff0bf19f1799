// Package validate re-opens a rendered workbook and checks that it is
// structurally complete before it is published.
package validate

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ValidationError names the sheet or column that failed. It is fatal: a
// workbook that fails validation must not be published.
type ValidationError struct {
	Sheet  string
	Column string // empty when the whole sheet failed
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("validation failed: sheet %q: %s", e.Sheet, e.Reason)
	}
	return fmt.Sprintf("validation failed: sheet %q column %q: %s", e.Sheet, e.Column, e.Reason)
}

// Sheet is what one sheet must satisfy.
type Sheet struct {
	Name string
	// Required columns must have at least one non-empty data cell.
	Required []string
	// Rows, when non-negative, is the exact number of data rows expected.
	Rows int
}

// Expectations lists the sheets a workbook must contain.
type Expectations struct {
	Sheets []Sheet
}

// Expect returns a sheet expectation with no row count check.
func Expect(name string, required ...string) Sheet {
	return Sheet{Name: name, Required: required, Rows: -1}
}

// Names returns the expected sheet names in order.
func (e Expectations) Names() []string {
	out := make([]string, len(e.Sheets))
	for i, s := range e.Sheets {
		out[i] = s.Name
	}
	return out
}

// Workbook checks the workbook at path. It returns a *ValidationError for
// the first failed expectation, or an I/O error if the file cannot be read.
func Workbook(path string, exp Expectations) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return File(f, exp)
}

// File checks an open workbook.
func File(f *excelize.File, exp Expectations) error {
	present := make(map[string]bool)
	for _, name := range f.GetSheetList() {
		present[name] = true
	}

	for _, s := range exp.Sheets {
		if !present[s.Name] {
			return &ValidationError{Sheet: s.Name, Reason: "sheet missing"}
		}
		rows, err := f.GetRows(s.Name)
		if err != nil {
			return fmt.Errorf("read sheet %s: %w", s.Name, err)
		}
		if err := checkSheet(s, rows); err != nil {
			return err
		}
	}
	return nil
}

func checkSheet(s Sheet, rows [][]string) error {
	if len(rows) == 0 {
		return &ValidationError{Sheet: s.Name, Reason: "no header row"}
	}
	header, data := rows[0], rows[1:]
	n := 0
	for _, r := range data {
		if !blank(r) {
			n++
		}
	}
	if n == 0 {
		return &ValidationError{Sheet: s.Name, Reason: "no data rows"}
	}
	if s.Rows >= 0 && n != s.Rows {
		return &ValidationError{Sheet: s.Name, Reason: fmt.Sprintf("expected %d data rows, found %d", s.Rows, n)}
	}

	for _, col := range s.Required {
		i := indexOf(header, col)
		if i < 0 {
			return &ValidationError{Sheet: s.Name, Column: col, Reason: "column missing"}
		}
		if !anyValue(data, i) {
			return &ValidationError{Sheet: s.Name, Column: col, Reason: "column entirely empty"}
		}
	}
	return nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func anyValue(rows [][]string, col int) bool {
	for _, r := range rows {
		if col < len(r) && strings.TrimSpace(r[col]) != "" {
			return true
		}
	}
	return false
}

func blank(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
