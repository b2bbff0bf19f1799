// Package workbook renders an annotated case into the review spreadsheet.
// Rows are written first; styles, widths, panes, filters and validations
// are applied in a single finalisation pass before the file is returned.
package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/inodb/wgs-report/internal/annotate"
	"github.com/inodb/wgs-report/internal/narrative"
)

// Sheet names, in workbook order.
const (
	SheetSNV       = "SNV"
	SheetSV        = "SV"
	SheetGermline  = "Germline"
	SheetSummary   = "Summary"
	SheetReference = "Reference"
	SheetNarrative = "Narrative"
)

// SheetOrder lists the sheets every rendered workbook contains.
var SheetOrder = []string{SheetSNV, SheetSV, SheetGermline, SheetSummary, SheetReference, SheetNarrative}

// CellStyle is the formatting intent for one cell. Styles are
// materialised only during finalisation.
type CellStyle struct {
	Fill   string // RGB hex without "#"
	Bold   bool
	Border bool
	Wrap   bool
}

// merge overlays o on s: a set fill replaces, flags accumulate.
func (s CellStyle) merge(o CellStyle) CellStyle {
	if o.Fill != "" {
		s.Fill = o.Fill
	}
	s.Bold = s.Bold || o.Bold
	s.Border = s.Border || o.Border
	s.Wrap = s.Wrap || o.Wrap
	return s
}

// Renderer builds the workbook.
type Renderer struct {
	logger *zap.Logger
}

// NewRenderer creates a renderer.
func NewRenderer() *Renderer {
	return &Renderer{logger: zap.NewNop()}
}

// SetLogger sets the logger.
func (r *Renderer) SetLogger(l *zap.Logger) {
	r.logger = l
}

// Render lays out res and nb (which may be nil) and returns the finished
// workbook. On error no file is returned.
func (r *Renderer) Render(res *annotate.Result, nb *narrative.Block) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := r.build(f, res, nb); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func (r *Renderer) build(f *excelize.File, res *annotate.Result, nb *narrative.Block) error {
	if err := f.SetSheetName("Sheet1", SheetSNV); err != nil {
		return err
	}
	for _, name := range SheetOrder[1:] {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("add sheet %s: %w", name, err)
		}
	}

	snv := newSheetWriter(f, SheetSNV)
	if err := writeRecords(snv, SNVColumns, variantRows(res)); err != nil {
		return fmt.Errorf("write %s: %w", SheetSNV, err)
	}
	sv := newSheetWriter(f, SheetSV)
	if err := writeRecords(sv, SVColumns, svRows(res)); err != nil {
		return fmt.Errorf("write %s: %w", SheetSV, err)
	}
	germ := newSheetWriter(f, SheetGermline)
	if err := writeRecords(germ, GermlineColumns, germlineRows(res)); err != nil {
		return fmt.Errorf("write %s: %w", SheetGermline, err)
	}
	sum := newSheetWriter(f, SheetSummary)
	if err := writeSummary(sum, res); err != nil {
		return fmt.Errorf("write %s: %w", SheetSummary, err)
	}
	ref := newSheetWriter(f, SheetReference)
	if err := writeReference(ref, res); err != nil {
		return fmt.Errorf("write %s: %w", SheetReference, err)
	}
	nar := newSheetWriter(f, SheetNarrative)
	if err := writeNarrative(nar, nb); err != nil {
		return fmt.Errorf("write %s: %w", SheetNarrative, err)
	}

	for _, w := range []*sheetWriter{snv, sv, germ, sum, ref, nar} {
		if err := w.finalise(); err != nil {
			return fmt.Errorf("finalise %s: %w", w.name, err)
		}
		r.logger.Debug("sheet rendered", zap.String("sheet", w.name), zap.Int("rows", w.dataRows()))
	}

	f.SetActiveSheet(0)
	return f.SetDocProps(&excelize.DocProperties{
		Creator:     "wgs-report",
		Title:       "WGS report",
		Created:     "2000-01-01T00:00:00Z",
		Modified:    "2000-01-01T00:00:00Z",
		Language:    "en-GB",
		Description: "Annotated solid-cancer WGS variants",
	})
}

func variantRows(res *annotate.Result) []*annotate.AnnotatedVariant {
	if res == nil {
		return nil
	}
	out := make([]*annotate.AnnotatedVariant, len(res.Variants))
	for i := range res.Variants {
		out[i] = &res.Variants[i]
	}
	return out
}

// germlineRows are the variants whose reported origin is germline, in
// input order.
func germlineRows(res *annotate.Result) []*annotate.AnnotatedVariant {
	var out []*annotate.AnnotatedVariant
	for _, v := range variantRows(res) {
		if IsGermline(&v.Variant) {
			out = append(out, v)
		}
	}
	return out
}

func svRows(res *annotate.Result) []*annotate.AnnotatedSV {
	if res == nil {
		return nil
	}
	out := make([]*annotate.AnnotatedSV, len(res.Structural))
	for i := range res.Structural {
		out[i] = &res.Structural[i]
	}
	return out
}

// subjectOf exposes the fields the rules look at.
func subjectOf(r any) Subject {
	switch v := r.(type) {
	case *annotate.AnnotatedVariant:
		return Subject{Bundle: &v.Bundle, Status: v.Variant.Status}
	case *annotate.AnnotatedSV:
		return Subject{Bundle: &v.Bundle, Status: v.Variant.Status}
	}
	return Subject{Bundle: &annotate.Bundle{}}
}

// writeRecords writes the header and one row per record, in order, and
// queues the column band and rule styles.
func writeRecords[R any](w *sheetWriter, cols []Column[R], rows []R) error {
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c.Header
		w.widths = append(w.widths, c.Width)
	}
	if err := w.writeHeader(header); err != nil {
		return err
	}

	rules := make([]*Rule, len(cols))
	for i, c := range cols {
		if c.Rule == "" {
			continue
		}
		rule, ok := RuleByName(c.Rule)
		if !ok {
			return fmt.Errorf("column %q: unknown rule %q", c.Header, c.Rule)
		}
		rules[i] = &rule
	}

	for _, rec := range rows {
		vals := make([]any, len(cols))
		for i, c := range cols {
			vals[i] = c.Cell(rec)
		}
		row, err := w.writeRow(vals)
		if err != nil {
			return err
		}
		subject := subjectOf(rec)
		for i, c := range cols {
			if c.Band != "" {
				w.style(i+1, row, CellStyle{Fill: c.Band})
			}
			if rules[i] != nil && rules[i].Match(subject) {
				w.style(i+1, row, rules[i].Style)
			}
		}
	}

	for i, c := range cols {
		switch {
		case len(c.DropDown) > 0:
			w.dropDowns = append(w.dropDowns, dropDown{col: i + 1, title: c.Header, choices: c.DropDown})
		case c.DataBar:
			w.dataBars = append(w.dataBars, i+1)
		}
		if c.Band != "" {
			w.style(i+1, 1, CellStyle{Fill: c.Band})
		}
	}
	w.freezeCol = 4
	w.autoFilter = true
	return nil
}
