package table

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MalformedInputError reports a source file that violates its expected
// schema. It is fatal: the run aborts.
type MalformedInputError struct {
	File    string
	Sheet   string // empty for delimited text and non-tabular sources
	Line    int    // 1-based row or line number, 0 if not applicable
	Column  string // column header, empty if not applicable
	Message string
}

func (e *MalformedInputError) Error() string {
	var b strings.Builder
	b.WriteString("malformed input ")
	b.WriteString(filepath.Base(e.File))
	if e.Sheet != "" {
		fmt.Fprintf(&b, " sheet %q", e.Sheet)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// Malformed builds a MalformedInputError for a whole file.
func Malformed(file, format string, args ...any) *MalformedInputError {
	return &MalformedInputError{File: file, Message: fmt.Sprintf(format, args...)}
}
