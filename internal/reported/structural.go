package reported

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/inodb/wgs-report/internal/genome"
	"github.com/inodb/wgs-report/internal/table"
)

// SVClass groups structural variants the way the report lists them.
type SVClass int

const (
	ClassFusion SVClass = iota
	ClassGain
	ClassLoss
)

func (c SVClass) String() string {
	switch c {
	case ClassGain:
		return "Gain"
	case ClassLoss:
		return "Loss"
	}
	return "Fusion"
}

// ClassifyType maps an SV type to its class: gains, losses (including LOH)
// and everything else as fusions.
func ClassifyType(svType string) SVClass {
	t := strings.ToLower(svType)
	switch {
	case strings.Contains(t, "gain"):
		return ClassGain
	case strings.Contains(t, "loss"), strings.Contains(t, "loh"):
		return ClassLoss
	}
	return ClassFusion
}

// StructuralVariant is one reported structural variant.
type StructuralVariant struct {
	Row              int
	EventDomain      string
	ImpactedRegion   string
	Genes            []string
	RawGenes         string
	RawCoordinate    string
	BreakpointA      genome.Locus
	BreakpointB      genome.Locus // zero for single-locus events
	ChromosomalBands string
	RawType          string
	Type             string // e.g. "GAIN", "Translocation"
	CopyNumber       string
	FusionPartners   string
	Class            SVClass
	Size             string // thousands-separated
	PairedReads      string
	SplitReads       string
	PopulationAF     string
	GeneModeOfAction string

	Status   Status
	Problems []*UnresolvedReferenceError
}

// Breakpoints returns the parsed breakpoints tagged "A" and "B".
func (sv *StructuralVariant) Breakpoints() []Breakpoint {
	var out []Breakpoint
	if !sv.BreakpointA.IsZero() {
		out = append(out, Breakpoint{Tag: "A", Locus: sv.BreakpointA})
	}
	if !sv.BreakpointB.IsZero() {
		out = append(out, Breakpoint{Tag: "B", Locus: sv.BreakpointB})
	}
	return out
}

// Breakpoint is one end of a structural variant.
type Breakpoint struct {
	Tag   string
	Locus genome.Locus
}

var svColumns = []table.Column{
	{Name: "Event domain", Aliases: []string{"domain"}},
	{Name: "Impacted transcript region"},
	{Name: "Gene", Aliases: []string{"genes", "gene symbol"}, Required: true},
	{Name: "GRCh38 coordinates", Aliases: []string{"coordinates"}, Required: true},
	{Name: "Chromosomal bands"},
	{Name: "Type", Aliases: []string{"sv type"}, Required: true},
	{Name: "Size"},
	{Name: "Confidence/support", Aliases: []string{"confidence", "support"}},
	{Name: "Population germline allele frequency", Aliases: []string{
		"Population germline allele frequency (GESG | GECG for somatic SVs or AF | AUC for germline CNVs)",
		"Population germline allele frequency (AF | AUC for germline CNVs)",
	}},
	{Name: "Gene mode of action"},
}

// LoadStructuralVariants reads the reported-SV table. Output order equals
// input row order.
func LoadStructuralVariants(path string) ([]StructuralVariant, error) {
	t, err := table.Read(path)
	if err != nil {
		return nil, err
	}
	recs, err := t.Bind(svColumns)
	if err != nil {
		return nil, err
	}

	out := make([]StructuralVariant, len(recs))
	for i, r := range recs {
		out[i] = parseStructural(r)
	}
	return out, nil
}

func parseStructural(r table.Record) StructuralVariant {
	sv := StructuralVariant{
		Row:              r.Line(),
		EventDomain:      r.Get("Event domain"),
		ImpactedRegion:   r.Get("Impacted transcript region"),
		RawGenes:         r.Get("Gene"),
		RawCoordinate:    r.Get("GRCh38 coordinates"),
		ChromosomalBands: r.Get("Chromosomal bands"),
		RawType:          r.Get("Type"),
		Size:             formatSize(r.Get("Size")),
		PopulationAF:     r.Get("Population germline allele frequency"),
		GeneModeOfAction: r.Get("Gene mode of action"),
	}
	var errs problems

	sv.Genes = SplitGenes(sv.RawGenes)
	if len(sv.Genes) == 0 {
		errs.add(sv.Row, "Gene", sv.RawGenes, "no gene symbol")
	}

	a, b, err := ParseBreakpoints(sv.RawCoordinate)
	if err != nil {
		errs.add(sv.Row, "GRCh38 coordinates", sv.RawCoordinate, err.Error())
	}
	sv.BreakpointA, sv.BreakpointB = a, b

	sv.Type, sv.CopyNumber, sv.FusionPartners = splitType(sv.RawType)
	if sv.Type == "" {
		errs.add(sv.Row, "Type", sv.RawType, "empty type")
	}
	sv.Class = ClassifyType(sv.Type)
	sv.PairedReads, sv.SplitReads = SplitConfidence(r.Get("Confidence/support"))

	sv.Status, sv.Problems = errs.status(), errs
	return sv
}

// ParseBreakpoints parses an SV coordinate cell. A range
// "chr1:1000-2000" yields breakpoints at both ends; two loci separated by
// ";" (e.g. a translocation) yield one breakpoint each; a single locus
// yields breakpoint A only.
func ParseBreakpoints(s string) (genome.Locus, genome.Locus, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return genome.Locus{}, genome.Locus{}, fmt.Errorf("empty coordinate")
	}

	if first, second, ok := strings.Cut(s, ";"); ok {
		a, err := genome.ParseLocus(first)
		if err != nil {
			return genome.Locus{}, genome.Locus{}, err
		}
		b, err := genome.ParseLocus(second)
		if err != nil {
			return a, genome.Locus{}, err
		}
		return a, b, nil
	}

	r, err := genome.ParseRegion(s)
	if err != nil {
		return genome.Locus{}, genome.Locus{}, err
	}
	a := genome.Locus{Chrom: r.Chrom, Pos: r.Start}
	if r.End == r.Start {
		return a, genome.Locus{}, nil
	}
	return a, genome.Locus{Chrom: r.Chrom, Pos: r.End}, nil
}

var copyNumber = regexp.MustCompile(`^([^()]*)\(([^()]*)\)\s*$`)

// splitType splits "GAIN(3)" into type and copy number, and
// "Translocation;BCR::ABL1" into type and fusion partners.
func splitType(s string) (svType, cn, partners string) {
	head, tail, _ := strings.Cut(strings.TrimSpace(s), ";")
	head = strings.TrimSpace(head)
	if m := copyNumber.FindStringSubmatch(head); m != nil {
		head, cn = strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	if tail != "" {
		var parts []string
		for _, p := range strings.Split(tail, ";") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		partners = strings.Join(parts, "; ")
	}
	return head, cn, partners
}

var (
	pairedReads = regexp.MustCompile(`(?i)PR-\s*([^;]*)`)
	splitReads  = regexp.MustCompile(`(?i)SR-\s*([^;]*)`)
)

// SplitConfidence extracts paired and split read support from
// "PR-12/30;SR-5/28" in either order. Missing halves are "".
func SplitConfidence(s string) (paired, split string) {
	if m := pairedReads.FindStringSubmatch(s); m != nil {
		paired = strings.TrimSpace(m[1])
	}
	if m := splitReads.FindStringSubmatch(s); m != nil {
		split = strings.TrimSpace(m[1])
	}
	return paired, split
}

// formatSize renders a size with thousands separators. Values that are not
// numbers are returned unchanged.
func formatSize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || f < 0 {
		return s
	}
	n := strconv.FormatInt(int64(f+0.5), 10)
	var b strings.Builder
	for i, c := range n {
		if i > 0 && (len(n)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}
