// Package reported parses the case's reported small variants and
// structural variants. Rows whose keys cannot be parsed are kept and
// flagged rather than dropped.
package reported

import (
	"fmt"
	"strings"
)

// Status tells whether a row's join keys could be parsed.
type Status int

const (
	StatusResolved Status = iota
	StatusUnresolvable
)

func (s Status) String() string {
	if s == StatusUnresolvable {
		return "Unresolvable"
	}
	return "Resolved"
}

// UnresolvedReferenceError describes a key that could not be parsed on one
// reported row. It is not fatal: the row is still annotated on whatever
// keys did parse and still emitted.
type UnresolvedReferenceError struct {
	Row    int
	Field  string
	Value  string
	Reason string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("row %d: %s %q: %s", e.Row, e.Field, e.Value, e.Reason)
}

// problems accumulates the unresolved keys of one row.
type problems []*UnresolvedReferenceError

func (p *problems) add(row int, field, value, reason string) {
	*p = append(*p, &UnresolvedReferenceError{Row: row, Field: field, Value: value, Reason: reason})
}

func (p problems) status() Status {
	if len(p) > 0 {
		return StatusUnresolvable
	}
	return StatusResolved
}

// StatusText renders a row's status for the report: "Resolved", or
// "Unresolvable: " followed by each failing field and reason.
func StatusText(s Status, errs []*UnresolvedReferenceError) string {
	if s != StatusUnresolvable {
		return s.String()
	}
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Field + " " + e.Reason
	}
	return s.String() + ": " + strings.Join(parts, "; ")
}

// SplitGenes splits a gene cell on ";" or ",", dropping blanks and
// duplicates while keeping the first-seen order.
func SplitGenes(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' })
	seen := make(map[string]bool, len(fields))
	var out []string
	for _, f := range fields {
		g := strings.TrimSpace(f)
		key := strings.ToUpper(g)
		if g == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, g)
	}
	return out
}

// cutSemicolon splits on the first ";" and trims both halves.
func cutSemicolon(s string) (string, string) {
	before, after, _ := strings.Cut(s, ";")
	return strings.TrimSpace(before), strings.TrimSpace(after)
}
