package workbook

import (
	"github.com/inodb/wgs-report/internal/annotate"
	"github.com/inodb/wgs-report/internal/narrative"
	"github.com/inodb/wgs-report/internal/reference"
)

// ReferenceHeader is the header of the Reference sheet.
var ReferenceHeader = []string{"Gene", "Source", "Name", "Alteration", "Entities", "Mode", "Comments", "Reference"}

var referenceWidths = []float64{12, 12, 24, 20, 20, 16, 30, 30}

type appendixKey struct {
	source string
	group  reference.GeneGroup
	panel  reference.PanelGene
}

// writeReference lists every gene-group and panel row matched by any
// record, in first-matched order.
func writeReference(w *sheetWriter, res *annotate.Result) error {
	header := make([]any, len(ReferenceHeader))
	for i, h := range ReferenceHeader {
		header[i] = h
	}
	if err := w.writeHeader(header); err != nil {
		return err
	}
	w.widths = referenceWidths
	w.freezeCol = 1
	w.autoFilter = true
	if res == nil {
		return nil
	}

	seen := make(map[appendixKey]bool)
	write := func(b *annotate.Bundle) error {
		for _, m := range b.GeneGroups {
			k := appendixKey{source: "Gene group", group: m.Group}
			if seen[k] {
				continue
			}
			seen[k] = true
			g := m.Group
			row, err := w.writeRow([]any{g.Gene, k.source, g.Group, g.Alteration, g.Entities, "", g.Comments, g.Reference})
			if err != nil {
				return err
			}
			if g.IsDriver() {
				for col := 1; col <= len(ReferenceHeader); col++ {
					w.style(col, row, CellStyle{Fill: bandGroups})
				}
			}
		}
		for _, m := range b.Panels {
			k := appendixKey{source: "Panel", panel: m.Panel}
			if seen[k] {
				continue
			}
			seen[k] = true
			p := m.Panel
			row, err := w.writeRow([]any{p.Gene, k.source, p.Panel, "", "", p.Mode, "", ""})
			if err != nil {
				return err
			}
			w.style(1, row, CellStyle{Bold: true})
		}
		return nil
	}

	for i := range res.Variants {
		if err := write(&res.Variants[i].Bundle); err != nil {
			return err
		}
	}
	for i := range res.Structural {
		if err := write(&res.Structural[i].Bundle); err != nil {
			return err
		}
	}
	return nil
}

// NarrativeHeader is the header of the Narrative sheet.
var NarrativeHeader = []string{"Section", "Content"}

// writeNarrative writes each HTML table under its section name, then the
// TMB value and figure sources. A nil block leaves only the header.
func writeNarrative(w *sheetWriter, nb *narrative.Block) error {
	if err := w.writeHeader([]any{NarrativeHeader[0], NarrativeHeader[1]}); err != nil {
		return err
	}
	w.widths = []float64{22, 30, 30, 30, 30, 30}
	if nb == nil {
		return nil
	}

	for _, t := range nb.Tables {
		row, err := w.writeRow(prefixed(t.Name, t.Headers))
		if err != nil {
			return err
		}
		for col := 1; col <= len(t.Headers)+1; col++ {
			w.style(col, row, CellStyle{Bold: true})
		}
		for _, cells := range t.Rows {
			if _, err := w.writeRow(prefixed(t.Name, cells)); err != nil {
				return err
			}
		}
		w.skipRow()
	}

	if nb.TMB != "" {
		row, err := w.writeRow([]any{narrative.TMBLabel, number(nb.TMB)})
		if err != nil {
			return err
		}
		w.style(1, row, CellStyle{Bold: true})
	}
	for _, src := range nb.Images {
		if _, err := w.writeRow([]any{"Figure", src}); err != nil {
			return err
		}
	}
	return nil
}

func prefixed(section string, cells []string) []any {
	out := make([]any, 0, len(cells)+1)
	out = append(out, section)
	for _, c := range cells {
		out = append(out, c)
	}
	return out
}
