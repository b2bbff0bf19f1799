// Package output provides the flat tab-delimited export of an annotated
// case, one line per reported record, for diffing between runs.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/wgs-report/internal/annotate"
	"github.com/inodb/wgs-report/internal/workbook"
)

// TabWriter writes records in tab-delimited format using a sheet's column
// layout.
type TabWriter[R any] struct {
	w       *bufio.Writer
	columns []workbook.Column[R]
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter[R any](w io.Writer, columns []workbook.Column[R]) *TabWriter[R] {
	return &TabWriter[R]{
		w:       bufio.NewWriter(w),
		columns: columns,
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter[R]) WriteHeader() error {
	names := make([]string, len(tw.columns))
	for i, c := range tw.columns {
		names[i] = clean(c.Header)
	}
	names[0] = "#" + names[0]
	_, err := tw.w.WriteString(strings.Join(names, "\t") + "\n")
	return err
}

// Write writes a single record. Empty values are written as "-".
func (tw *TabWriter[R]) Write(r R) error {
	values := make([]string, len(tw.columns))
	for i, c := range tw.columns {
		values[i] = format(c.Cell(r))
	}
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter[R]) Flush() error {
	return tw.w.Flush()
}

func format(v any) string {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
	default:
		s = fmt.Sprint(x)
	}
	s = clean(s)
	if s == "" {
		return "-"
	}
	return s
}

// clean keeps each value on one line and within one field.
func clean(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == '\t' || r == '\n' || r == '\r'
	}), " ")
}

// WriteVariants writes the SNV rows of res.
func WriteVariants(w io.Writer, res *annotate.Result) error {
	tw := NewTabWriter(w, workbook.SNVColumns)
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for i := range res.Variants {
		if err := tw.Write(&res.Variants[i]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteStructural writes the SV rows of res.
func WriteStructural(w io.Writer, res *annotate.Result) error {
	tw := NewTabWriter(w, workbook.SVColumns)
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for i := range res.Structural {
		if err := tw.Write(&res.Structural[i]); err != nil {
			return err
		}
	}
	return tw.Flush()
}
