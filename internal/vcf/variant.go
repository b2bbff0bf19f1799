// Package vcf provides VCF file parsing functionality.
package vcf

import (
	"strings"

	"github.com/inodb/wgs-report/internal/genome"
)

// Variant represents a single record from a VCF file.
type Variant struct {
	Chrom  string            // Chromosome name as written (e.g., "12", "chr12")
	Pos    int64             // 1-based genomic position
	ID     string            // Variant identifier (e.g., ClinVar allele ID)
	Ref    string            // Reference allele
	Alt    string            // Alternate allele(s), comma-separated unless split
	Qual   float64           // Quality score
	Filter string            // Filter status (PASS or filter name)
	Info   map[string]string // INFO key-value pairs; flags map to ""
}

// IsSNV returns true if the variant is a single nucleotide variant.
func (v *Variant) IsSNV() bool {
	return len(v.Ref) == 1 && len(v.Alt) == 1
}

// IsIndel returns true if the variant is an insertion or deletion.
func (v *Variant) IsIndel() bool {
	return len(v.Ref) != len(v.Alt)
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (v *Variant) NormalizeChrom() string {
	return genome.NormalizeChrom(v.Chrom)
}

// Alts returns the alternate alleles.
func (v *Variant) Alts() []string {
	if v.Alt == "" || v.Alt == "." {
		return nil
	}
	return strings.Split(v.Alt, ",")
}

// InfoValue returns an INFO value, or "" if the key is absent.
func (v *Variant) InfoValue(key string) string {
	return v.Info[key]
}

// HasAllele reports whether ref matches and alt is one of the alternate
// alleles. Comparison is case-insensitive.
func (v *Variant) HasAllele(ref, alt string) bool {
	if !strings.EqualFold(v.Ref, ref) {
		return false
	}
	for _, a := range v.Alts() {
		if strings.EqualFold(a, alt) {
			return true
		}
	}
	return false
}
