// Package clinvar looks up clinical-significance records by exact position
// and allele, through either a tabix-indexed VCF or a DuckDB table built
// from the same VCF.
package clinvar

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/inodb/wgs-report/internal/genome"
	"github.com/inodb/wgs-report/internal/vcf"
)

// Record is one ClinVar allele.
type Record struct {
	Chrom        string
	Pos          int64
	ID           string
	Ref          string
	Alt          string
	Significance string
	ReviewStatus string
	GeneInfo     string
}

// Index answers allele-aware point lookups. Implementations hold open
// resources until Close.
type Index interface {
	// Lookup returns the records at chrom:pos whose ref and alt both equal
	// the query alleles. An empty result means the allele is absent.
	Lookup(chrom string, pos int64, ref, alt string) ([]Record, error)
	Close() error
}

// Open picks the backend from the index file: a ".tbi" path selects the
// tabix reader over vcfPath, a ".duckdb" or ".db" path the DuckDB table.
// An empty indexPath means vcfPath + ".tbi".
func Open(vcfPath, indexPath string) (Index, error) {
	if indexPath == "" {
		indexPath = vcfPath + ".tbi"
	}
	switch strings.ToLower(filepath.Ext(indexPath)) {
	case ".tbi":
		return OpenTabix(vcfPath, indexPath)
	case ".duckdb", ".db":
		return OpenDuckDB(indexPath)
	}
	return nil, fmt.Errorf("clinvar index %s: unknown index type", indexPath)
}

// Significance returns CLNSIGCONF when present, else CLNSIG, else "".
func Significance(v *vcf.Variant) string {
	if s := v.InfoValue("CLNSIGCONF"); s != "" {
		return s
	}
	return v.InfoValue("CLNSIG")
}

// recordsFor expands a VCF line into one Record per alternate allele that
// matches the query alleles.
func recordsFor(v *vcf.Variant, ref, alt string) []Record {
	if !strings.EqualFold(v.Ref, ref) {
		return nil
	}
	var out []Record
	for _, a := range v.Alts() {
		if strings.EqualFold(a, alt) {
			out = append(out, newRecord(v, a))
		}
	}
	return out
}

func newRecord(v *vcf.Variant, alt string) Record {
	return Record{
		Chrom:        genome.NormalizeChrom(v.Chrom),
		Pos:          v.Pos,
		ID:           v.ID,
		Ref:          strings.ToUpper(v.Ref),
		Alt:          strings.ToUpper(alt),
		Significance: Significance(v),
		ReviewStatus: v.InfoValue("CLNREVSTAT"),
		GeneInfo:     v.InfoValue("GENEINFO"),
	}
}

var submitterCount = regexp.MustCompile(`\(\d+\)`)

// IsPathogenic reports whether every term of a significance value is
// pathogenic or likely pathogenic. Conflicting or mixed values are not.
func IsPathogenic(significance string) bool {
	terms := strings.FieldsFunc(significance, func(r rune) bool {
		return r == '/' || r == '|' || r == ','
	})
	if len(terms) == 0 {
		return false
	}
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(submitterCount.ReplaceAllString(t, "")))
		t = strings.ReplaceAll(t, " ", "_")
		if t != "pathogenic" && t != "likely_pathogenic" {
			return false
		}
	}
	return true
}

// DisplaySignificance renders a raw INFO value for reading: underscores
// become spaces.
func DisplaySignificance(significance string) string {
	return strings.ReplaceAll(significance, "_", " ")
}
