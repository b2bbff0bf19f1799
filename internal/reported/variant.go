package reported

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/inodb/wgs-report/internal/genome"
	"github.com/inodb/wgs-report/internal/table"
)

// Variant is one reported small variant.
type Variant struct {
	Row              int // source line
	Origin           string
	Domain           string
	Genes            []string
	RawGenes         string
	RawCoordinate    string
	Locus            genome.Locus
	Ref              string
	Alt              string
	RawChange        string // "CDS change and protein change" as written
	CDSChange        string // c. notation
	ProteinChange    string // p. notation
	Consequence      string
	ErrorFlag        string
	VAF              string
	LOH              string
	ReadDepth        string
	Genotype         string
	GeneModeOfAction string
	ClinVarID        string
	GnomAD           string

	Status   Status
	Problems []*UnresolvedReferenceError
}

// Coordinate renders the parsed coordinate as "chr7:140753336", or the raw
// cell when it could not be parsed.
func (v *Variant) Coordinate() string {
	if v.Locus.IsZero() {
		return v.RawCoordinate
	}
	return v.Locus.String()
}

// MTBPc returns the "Gene:c." key used by molecular tumour board tools.
func (v *Variant) MTBPc() string {
	return geneKey(v.Genes, v.CDSChange)
}

// MTBPp returns the "Gene:p." key used by molecular tumour board tools.
func (v *Variant) MTBPp() string {
	return geneKey(v.Genes, v.ProteinChange)
}

func geneKey(genes []string, change string) string {
	if len(genes) == 0 || change == "" {
		return ""
	}
	return genes[0] + ":" + change
}

var variantColumns = []table.Column{
	{Name: "Origin"},
	{Name: "Domain"},
	{Name: "Gene", Aliases: []string{"genes", "gene symbol"}, Required: true},
	{Name: "GRCh38 coordinates;ref/alt allele", Aliases: []string{"GRCh38 coordinates", "coordinates"}, Required: true},
	{Name: "CDS change and protein change", Aliases: []string{"variant", "hgvs"}},
	{Name: "Predicted consequences", Aliases: []string{"consequence", "predicted consequence"}},
	{Name: "VAF"},
	{Name: "Alt allele/total read depth", Aliases: []string{"read depth"}},
	{Name: "Genotype"},
	{Name: "Gene mode of action"},
	{Name: "ClinVar ID", Aliases: []string{"clinvar"}},
	{Name: "Population germline allele frequency (GE | gnomAD)", Aliases: []string{"gnomad"}},
}

// LoadVariants reads the reported-variant table (CSV, TSV, or the first
// sheet of a workbook). Output order equals input row order.
func LoadVariants(path string) ([]Variant, error) {
	t, err := table.Read(path)
	if err != nil {
		return nil, err
	}
	recs, err := t.Bind(variantColumns)
	if err != nil {
		return nil, err
	}

	out := make([]Variant, len(recs))
	for i, r := range recs {
		out[i] = parseVariant(r)
	}
	return out, nil
}

func parseVariant(r table.Record) Variant {
	v := Variant{
		Row:              r.Line(),
		Origin:           r.Get("Origin"),
		Domain:           r.Get("Domain"),
		RawGenes:         r.Get("Gene"),
		RawCoordinate:    r.Get("GRCh38 coordinates;ref/alt allele"),
		RawChange:        r.Get("CDS change and protein change"),
		ReadDepth:        r.Get("Alt allele/total read depth"),
		Genotype:         r.Get("Genotype"),
		GeneModeOfAction: r.Get("Gene mode of action"),
		ClinVarID:        cleanClinVarID(r.Get("ClinVar ID")),
		GnomAD:           gnomAD(r.Get("Population germline allele frequency (GE | gnomAD)")),
	}
	var errs problems

	v.Genes = SplitGenes(v.RawGenes)
	if len(v.Genes) == 0 {
		errs.add(v.Row, "Gene", v.RawGenes, "no gene symbol")
	}

	if loc, ref, alt, err := ParseVariantCoordinate(v.RawCoordinate); err != nil {
		errs.add(v.Row, "GRCh38 coordinates", v.RawCoordinate, err.Error())
	} else {
		v.Locus, v.Ref, v.Alt = loc, ref, alt
	}

	v.CDSChange, v.ProteinChange = splitChange(v.RawChange)
	v.Consequence, v.ErrorFlag = cutSemicolon(r.Get("Predicted consequences"))
	v.VAF, v.LOH = cutSemicolon(r.Get("VAF"))

	v.Status, v.Problems = errs.status(), errs
	return v
}

var allelePair = regexp.MustCompile(`^([A-Za-z*-]+)\s*[>/]\s*([A-Za-z*,-]+)$`)

// ParseVariantCoordinate parses "chr7:140753336;A>T". "A/T" is accepted
// for the allele pair.
func ParseVariantCoordinate(s string) (genome.Locus, string, string, error) {
	locPart, allelePart, ok := strings.Cut(strings.TrimSpace(s), ";")
	if !ok {
		return genome.Locus{}, "", "", fmt.Errorf("expected <chrom>:<pos>;<ref>><alt>")
	}
	loc, err := genome.ParseLocus(locPart)
	if err != nil {
		return genome.Locus{}, "", "", err
	}
	m := allelePair.FindStringSubmatch(strings.TrimSpace(allelePart))
	if m == nil {
		return genome.Locus{}, "", "", fmt.Errorf("invalid allele pair %q", allelePart)
	}
	return loc, strings.ToUpper(m[1]), strings.ToUpper(m[2]), nil
}

// splitChange splits "c.1799T>A;p.(Val600Glu)" into its c. and p. parts.
func splitChange(s string) (string, string) {
	if i := strings.Index(s, ";p"); i >= 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
	}
	return strings.TrimSpace(s), ""
}

// cleanClinVarID removes the ".0" left behind when a spreadsheet stored the
// ID as a number.
func cleanClinVarID(s string) string {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".0")
	if strings.EqualFold(s, "nan") {
		return ""
	}
	return s
}

// gnomAD returns the second half of a "GE | gnomAD" cell.
func gnomAD(s string) string {
	_, after, ok := strings.Cut(s, "|")
	if !ok {
		return ""
	}
	return strings.TrimSpace(after)
}
