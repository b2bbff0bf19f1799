package table

import (
	"fmt"
	"strconv"
	"strings"
)

// Column describes one expected column of a source table.
type Column struct {
	Name     string
	Aliases  []string
	Required bool
}

// Record is a data row bound to a schema. Fields are addressed by the
// column's canonical Name regardless of the header spelling in the file.
type Record struct {
	table  *Table
	line   int
	values map[string]string
	seen   map[string]bool
}

// Bind resolves cols against the table header and returns one Record per
// data row. A required column absent from the header is a MalformedInputError.
func (t *Table) Bind(cols []Column) ([]Record, error) {
	pos := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		key := headerKey(h)
		if _, dup := pos[key]; !dup {
			pos[key] = i
		}
	}

	index := make(map[string]int, len(cols))
	for _, c := range cols {
		i, ok := lookupColumn(pos, c)
		if !ok {
			if c.Required {
				return nil, &MalformedInputError{
					File:    t.File,
					Sheet:   t.Sheet,
					Line:    t.HeaderLine,
					Column:  c.Name,
					Message: "missing required column",
				}
			}
			continue
		}
		index[c.Name] = i
	}

	records := make([]Record, len(t.Rows))
	for r, row := range t.Rows {
		rec := Record{
			table:  t,
			line:   row.Line,
			values: make(map[string]string, len(index)),
			seen:   make(map[string]bool, len(index)),
		}
		for name, i := range index {
			rec.values[name] = row.Cells[i]
			rec.seen[name] = true
		}
		records[r] = rec
	}
	return records, nil
}

func lookupColumn(pos map[string]int, c Column) (int, bool) {
	if i, ok := pos[headerKey(c.Name)]; ok {
		return i, true
	}
	for _, a := range c.Aliases {
		if i, ok := pos[headerKey(a)]; ok {
			return i, true
		}
	}
	return 0, false
}

// headerKey folds case and runs of whitespace so "Gene  Symbol " matches
// "gene symbol".
func headerKey(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

// Line returns the 1-based source line of the record.
func (r Record) Line() int { return r.line }

// Get returns the trimmed cell for the named column, or "" when the column
// is absent from the file.
func (r Record) Get(name string) string {
	return r.values[name]
}

// Has reports whether the named column exists in the file.
func (r Record) Has(name string) bool {
	return r.seen[name]
}

// Int parses the named column as an integer. Thousands separators are
// accepted.
func (r Record) Int(name string) (int64, error) {
	s := strings.ReplaceAll(r.Get(name), ",", "")
	if s == "" {
		return 0, r.Errorf(name, "empty value")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, r.Errorf(name, "invalid integer %q", r.Get(name))
	}
	return n, nil
}

// Errorf builds a MalformedInputError located at this record and column.
func (r Record) Errorf(column, format string, args ...any) *MalformedInputError {
	return &MalformedInputError{
		File:    r.table.File,
		Sheet:   r.table.Sheet,
		Line:    r.line,
		Column:  column,
		Message: fmt.Sprintf(format, args...),
	}
}
