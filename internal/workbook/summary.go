package workbook

import (
	"github.com/inodb/wgs-report/internal/annotate"
	"github.com/inodb/wgs-report/internal/reported"
)

// SummaryHeader is the header of the Summary sheet. Each section repeats
// its own column titles in a bold row under the section name.
var SummaryHeader = []string{"Section", "Content"}

// Summary sections, in sheet order.
const (
	SectionSomaticSNV  = "Somatic SNV"
	SectionSomaticCNV  = "Somatic CNV"
	SectionSomaticSV   = "Somatic SV"
	SectionGermlineSNV = "Germline SNV"
)

// SummarySNVColumns lay out the SNV sections of the Summary sheet.
var SummarySNVColumns = []Column[*annotate.AnnotatedVariant]{
	{Header: "Gene", Width: 20, Value: func(a *annotate.AnnotatedVariant) any { return genes(a.Variant.Genes, a.Variant.RawGenes) }},
	{Header: "GRCh38 coordinates", Width: 28, Value: func(a *annotate.AnnotatedVariant) any { return a.Variant.Coordinate() }},
	{Header: "Variant", Width: 28, Value: func(a *annotate.AnnotatedVariant) any { return a.Variant.RawChange }},
	{Header: "Consequence", Width: 22, Value: func(a *annotate.AnnotatedVariant) any { return a.Variant.Consequence }},
	{Header: "Zygosity", Width: 14, Value: func(a *annotate.AnnotatedVariant) any {
		return joinDistinct([]string{a.Variant.Genotype, a.Variant.LOH})
	}},
	{Header: "Variant class", Width: 22, Band: bandCuration},
	{Header: "Actionability", Width: 22, Band: bandCuration},
	{Header: "Comments", Width: 24, Band: bandCuration},
}

// SummarySVColumns lay out the CNV and SV sections of the Summary sheet.
var SummarySVColumns = []Column[*annotate.AnnotatedSV]{
	{Header: "Gene/Locus", Value: func(a *annotate.AnnotatedSV) any { return genes(a.Variant.Genes, a.Variant.RawGenes) }},
	{Header: "GRCh38 coordinates", Value: func(a *annotate.AnnotatedSV) any { return a.Variant.RawCoordinate }},
	{Header: "Cytological bands", Value: func(a *annotate.AnnotatedSV) any {
		if c := bands(&a.Bundle); c != "" {
			return c
		}
		return a.Variant.ChromosomalBands
	}},
	{Header: "Variant type", Value: func(a *annotate.AnnotatedSV) any {
		if a.Variant.Type == "" {
			return ""
		}
		return a.Variant.Type + " (" + a.Variant.Class.String() + ")"
	}},
	{Header: "Consequence", Value: func(a *annotate.AnnotatedSV) any { return a.Variant.ImpactedRegion }},
	{Header: "Variant class", Band: bandCuration},
	{Header: "Actionability", Band: bandCuration},
	{Header: "Comments", Band: bandCuration},
}

// writeSummary lists the somatic SNVs, copy-number changes, other SVs and
// germline SNVs, each section in input order.
func writeSummary(w *sheetWriter, res *annotate.Result) error {
	if err := w.writeHeader([]any{SummaryHeader[0], SummaryHeader[1]}); err != nil {
		return err
	}
	w.widths = []float64{16}
	for _, c := range SummarySNVColumns {
		w.widths = append(w.widths, c.Width)
	}

	var somatic, germline []*annotate.AnnotatedVariant
	for _, v := range variantRows(res) {
		if IsGermline(&v.Variant) {
			germline = append(germline, v)
		} else {
			somatic = append(somatic, v)
		}
	}
	var cnv, sv []*annotate.AnnotatedSV
	for _, s := range svRows(res) {
		if s.Variant.Class == reported.ClassFusion {
			sv = append(sv, s)
		} else {
			cnv = append(cnv, s)
		}
	}

	if err := writeSection(w, SectionSomaticSNV, SummarySNVColumns, somatic); err != nil {
		return err
	}
	if err := writeSection(w, SectionSomaticCNV, SummarySVColumns, cnv); err != nil {
		return err
	}
	if err := writeSection(w, SectionSomaticSV, SummarySVColumns, sv); err != nil {
		return err
	}
	return writeSection(w, SectionGermlineSNV, SummarySNVColumns, germline)
}

// writeSection writes a bold title row carrying the column headers, then
// one row per record with the section name in the first cell.
func writeSection[R any](w *sheetWriter, title string, cols []Column[R], rows []R) error {
	header := make([]any, 0, len(cols)+1)
	header = append(header, title)
	for _, c := range cols {
		header = append(header, c.Header)
	}
	row, err := w.writeRow(header)
	if err != nil {
		return err
	}
	for col := 1; col <= len(header); col++ {
		w.style(col, row, CellStyle{Bold: true, Border: true})
	}

	for _, rec := range rows {
		vals := make([]any, 0, len(cols)+1)
		vals = append(vals, title)
		for _, c := range cols {
			vals = append(vals, c.Cell(rec))
		}
		row, err := w.writeRow(vals)
		if err != nil {
			return err
		}
		for i, c := range cols {
			if c.Band != "" {
				w.style(i+2, row, CellStyle{Fill: c.Band})
			}
		}
	}
	w.skipRow()
	return nil
}
