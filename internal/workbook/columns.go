package workbook

import (
	"strings"

	"github.com/inodb/wgs-report/internal/annotate"
	"github.com/inodb/wgs-report/internal/reported"
)

// Band fills shared by related columns.
const (
	bandCuration = "FFDBBB"
	bandGroups   = "C4D9EF"
	bandHotspot  = "B8E7E0"
	bandClinVar  = "DABCFF"
)

// Drop-down lists for curator-filled columns.
var (
	SNVClasses = []string{"Pathogenic", "Likely pathogenic", "Uncertain", "Likely passenger", "Likely artefact"}
	SVClasses  = []string{"Oncogenic", "Likely oncogenic", "Uncertain", "Likely passenger", "Likely artefact"}
	Actions    = []string{
		"1. Predicts therapeutic response",
		"2. Prognostic",
		"3. Defines diagnosis group",
		"4. Eligibility for trial",
		"5. Other",
	}
)

// Column is one fixed column of a record sheet.
type Column[R any] struct {
	Header   string
	Width    float64
	Band     string   // fill for the whole column, "" for none
	Rule     string   // highlight rule name, "" for none
	DropDown []string // curator choices; the column is left empty
	DataBar  bool     // 0-1 data bar
	Value    func(R) any
}

// Cell returns the column value for r. Curator columns are empty.
func (c Column[R]) Cell(r R) any {
	if c.Value == nil {
		return ""
	}
	return c.Value(r)
}

// SNVColumns is the layout of the SNV sheet.
var SNVColumns = []Column[*annotate.AnnotatedVariant]{
	{Header: "Origin", Width: 10, Value: func(a *annotate.AnnotatedVariant) any { return a.Variant.Origin }},
	{Header: "Domain", Width: 10, Value: func(a *annotate.AnnotatedVariant) any { return a.Variant.Domain }},
	{Header: "Gene", Width: 12, Rule: RulePanelListed, Value: func(a *annotate.AnnotatedVariant) any { return genes(a.Variant.Genes, a.Variant.RawGenes) }},
	{Header: "GRCh38 coordinates", Width: 28, Value: func(a *annotate.AnnotatedVariant) any { return a.Variant.Coordinate() }},
	{Header: "Ref/Alt", Width: 12, Value: func(a *annotate.AnnotatedVariant) any { return alleles(&a.Variant) }},
	{Header: "Variant", Width: 28, Value: func(a *annotate.AnnotatedVariant) any { return a.Variant.RawChange }},
	{Header: "Predicted consequences", Width: 18, Value: func(a *annotate.AnnotatedVariant) any { return a.Variant.Consequence }},
	{Header: "VAF", Width: 14, DataBar: true, Value: func(a *annotate.AnnotatedVariant) any { return number(a.Variant.VAF) }},
	{Header: "LOH", Width: 8, Value: func(a *annotate.AnnotatedVariant) any { return a.Variant.LOH }},
	{Header: "Error flag", Width: 10, Value: func(a *annotate.AnnotatedVariant) any { return a.Variant.ErrorFlag }},
	{Header: "Alt allele/total read depth", Width: 14, Value: func(a *annotate.AnnotatedVariant) any { return a.Variant.ReadDepth }},
	{Header: "Genotype", Width: 10, Value: func(a *annotate.AnnotatedVariant) any { return a.Variant.Genotype }},
	{Header: "Gene mode of action", Width: 20, Value: func(a *annotate.AnnotatedVariant) any { return a.Variant.GeneModeOfAction }},
	{Header: "Variant class", Width: 20, Band: bandCuration, DropDown: SNVClasses},
	{Header: "Actionability", Width: 20, Band: bandCuration, DropDown: Actions},
	{Header: "Comments", Width: 20, Band: bandCuration},
	{Header: "Hotspot", Width: 18, Band: bandHotspot, Rule: RuleHotspot, Value: func(a *annotate.AnnotatedVariant) any { return hotspotLabels(&a.Bundle) }},
	{Header: "HS_Sample", Width: 12, Band: bandHotspot, Value: func(a *annotate.AnnotatedVariant) any { return hotspotSamples(&a.Bundle) }},
	{Header: "HS_Tumour", Width: 16, Band: bandHotspot, Value: func(a *annotate.AnnotatedVariant) any { return hotspotTumours(&a.Bundle) }},
	{Header: "Cytoband", Width: 12, Value: func(a *annotate.AnnotatedVariant) any { return bands(&a.Bundle) }},
	{Header: "Gene groups", Width: 22, Band: bandGroups, Rule: RuleGeneGroupDriver, Value: func(a *annotate.AnnotatedVariant) any { return geneGroups(&a.Bundle) }},
	{Header: "Driver alterations", Width: 22, Band: bandGroups, Rule: RuleGeneGroupDriver, Value: func(a *annotate.AnnotatedVariant) any { return driverAlterations(&a.Bundle) }},
	{Header: "Panels", Width: 22, Band: bandGroups, Value: func(a *annotate.AnnotatedVariant) any { return panels(&a.Bundle) }},
	{Header: "ClinVar ID", Width: 12, Band: bandClinVar, Rule: RuleClinVarPathogenic, Value: func(a *annotate.AnnotatedVariant) any { return clinVarIDs(&a.Bundle) }},
	{Header: "ClinVar significance", Width: 26, Band: bandClinVar, Rule: RuleClinVarPathogenic, Value: func(a *annotate.AnnotatedVariant) any { return clinVarSignificance(&a.Bundle) }},
	{Header: "ClinVar review status", Width: 26, Band: bandClinVar, Value: func(a *annotate.AnnotatedVariant) any { return clinVarReview(&a.Bundle) }},
	{Header: "Reported ClinVar ID", Width: 12, Value: func(a *annotate.AnnotatedVariant) any { return a.Variant.ClinVarID }},
	{Header: "gnomAD", Width: 12, Value: func(a *annotate.AnnotatedVariant) any { return number(a.Variant.GnomAD) }},
	{Header: "MTBP c.", Width: 20, Value: func(a *annotate.AnnotatedVariant) any { return a.Variant.MTBPc() }},
	{Header: "MTBP p.", Width: 20, Value: func(a *annotate.AnnotatedVariant) any { return a.Variant.MTBPp() }},
	{Header: "Status", Width: 24, Rule: RuleUnresolvable, Value: func(a *annotate.AnnotatedVariant) any {
		return reported.StatusText(a.Variant.Status, a.Variant.Problems)
	}},
}

// SVColumns is the layout of the SV sheet.
var SVColumns = []Column[*annotate.AnnotatedSV]{
	{Header: "Event domain", Width: 12, Value: func(a *annotate.AnnotatedSV) any { return a.Variant.EventDomain }},
	{Header: "Gene", Width: 18, Rule: RulePanelListed, Value: func(a *annotate.AnnotatedSV) any { return genes(a.Variant.Genes, a.Variant.RawGenes) }},
	{Header: "Impacted transcript region", Width: 22, Value: func(a *annotate.AnnotatedSV) any { return a.Variant.ImpactedRegion }},
	{Header: "GRCh38 coordinates", Width: 28, Value: func(a *annotate.AnnotatedSV) any { return a.Variant.RawCoordinate }},
	{Header: "Chromosomal bands", Width: 20, Value: func(a *annotate.AnnotatedSV) any { return a.Variant.ChromosomalBands }},
	{Header: "Cytoband", Width: 20, Value: func(a *annotate.AnnotatedSV) any { return bands(&a.Bundle) }},
	{Header: "Type", Width: 14, Value: func(a *annotate.AnnotatedSV) any { return a.Variant.Type }},
	{Header: "Copy number", Width: 10, Value: func(a *annotate.AnnotatedSV) any { return number(a.Variant.CopyNumber) }},
	{Header: "Fusion partners", Width: 18, Value: func(a *annotate.AnnotatedSV) any { return a.Variant.FusionPartners }},
	{Header: "Class", Width: 10, Value: func(a *annotate.AnnotatedSV) any { return a.Variant.Class.String() }},
	{Header: "Size", Width: 14, Value: func(a *annotate.AnnotatedSV) any { return a.Variant.Size }},
	{Header: "Population germline allele frequency", Width: 16, Value: func(a *annotate.AnnotatedSV) any { return a.Variant.PopulationAF }},
	{Header: "Paired reads", Width: 12, Value: func(a *annotate.AnnotatedSV) any { return a.Variant.PairedReads }},
	{Header: "Split reads", Width: 12, Value: func(a *annotate.AnnotatedSV) any { return a.Variant.SplitReads }},
	{Header: "Gene mode of action", Width: 18, Value: func(a *annotate.AnnotatedSV) any { return a.Variant.GeneModeOfAction }},
	{Header: "Variant class", Width: 20, Band: bandCuration, DropDown: SVClasses},
	{Header: "Actionability", Width: 20, Band: bandCuration, DropDown: Actions},
	{Header: "Comments", Width: 20, Band: bandCuration},
	{Header: "Hotspot", Width: 18, Band: bandHotspot, Rule: RuleHotspot, Value: func(a *annotate.AnnotatedSV) any { return hotspotLabels(&a.Bundle) }},
	{Header: "Gene groups", Width: 22, Band: bandGroups, Rule: RuleGeneGroupDriver, Value: func(a *annotate.AnnotatedSV) any { return geneGroups(&a.Bundle) }},
	{Header: "Driver alterations", Width: 22, Band: bandGroups, Rule: RuleGeneGroupDriver, Value: func(a *annotate.AnnotatedSV) any { return driverAlterations(&a.Bundle) }},
	{Header: "Panels", Width: 22, Band: bandGroups, Value: func(a *annotate.AnnotatedSV) any { return panels(&a.Bundle) }},
	{Header: "Status", Width: 24, Rule: RuleUnresolvable, Value: func(a *annotate.AnnotatedSV) any {
		return reported.StatusText(a.Variant.Status, a.Variant.Problems)
	}},
}

func genes(parsed []string, raw string) string {
	if len(parsed) == 0 {
		return raw
	}
	return joinDistinct(parsed)
}

func alleles(v *reported.Variant) string {
	if v.Ref == "" && v.Alt == "" {
		return ""
	}
	return v.Ref + ">" + v.Alt
}

// GermlineColumns is the layout of the Germline sheet: the germline SNVs
// with the population and ClinVar evidence a clinical scientist reviews.
var GermlineColumns = []Column[*annotate.AnnotatedVariant]{
	{Header: "Gene", Width: 12, Rule: RulePanelListed, Value: func(a *annotate.AnnotatedVariant) any { return genes(a.Variant.Genes, a.Variant.RawGenes) }},
	{Header: "GRCh38 coordinates", Width: 28, Value: func(a *annotate.AnnotatedVariant) any { return a.Variant.Coordinate() }},
	{Header: "Ref/Alt", Width: 12, Value: func(a *annotate.AnnotatedVariant) any { return alleles(&a.Variant) }},
	{Header: "Variant", Width: 28, Value: func(a *annotate.AnnotatedVariant) any { return a.Variant.RawChange }},
	{Header: "Predicted consequences", Width: 18, Value: func(a *annotate.AnnotatedVariant) any { return a.Variant.Consequence }},
	{Header: "Genotype", Width: 10, Value: func(a *annotate.AnnotatedVariant) any { return a.Variant.Genotype }},
	{Header: "Variant class", Width: 20, Band: bandCuration, DropDown: SNVClasses},
	{Header: "Actionability", Width: 20, Band: bandCuration, DropDown: Actions},
	{Header: "Role in cancer", Width: 20, Band: bandGroups, Value: func(a *annotate.AnnotatedVariant) any { return roles(&a.Bundle) }},
	{Header: "Panels", Width: 22, Band: bandGroups, Value: func(a *annotate.AnnotatedVariant) any { return panels(&a.Bundle) }},
	{Header: "ClinVar ID", Width: 12, Band: bandClinVar, Rule: RuleClinVarPathogenic, Value: func(a *annotate.AnnotatedVariant) any { return clinVarIDs(&a.Bundle) }},
	{Header: "ClinVar significance", Width: 26, Band: bandClinVar, Rule: RuleClinVarPathogenic, Value: func(a *annotate.AnnotatedVariant) any { return clinVarSignificance(&a.Bundle) }},
	{Header: "ClinVar review status", Width: 26, Band: bandClinVar, Value: func(a *annotate.AnnotatedVariant) any { return clinVarReview(&a.Bundle) }},
	{Header: "gnomAD", Width: 12, Value: func(a *annotate.AnnotatedVariant) any { return number(a.Variant.GnomAD) }},
	{Header: "Tumour VAF", Width: 14, DataBar: true, Value: func(a *annotate.AnnotatedVariant) any { return number(a.Variant.VAF) }},
	{Header: "Comments", Width: 20, Band: bandCuration},
	{Header: "Status", Width: 24, Rule: RuleUnresolvable, Value: func(a *annotate.AnnotatedVariant) any {
		return reported.StatusText(a.Variant.Status, a.Variant.Problems)
	}},
}

// IsGermline reports whether the reported origin is germline.
func IsGermline(v *reported.Variant) bool {
	return strings.EqualFold(strings.TrimSpace(v.Origin), "germline")
}
