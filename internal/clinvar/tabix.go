package clinvar

import (
	"fmt"

	"github.com/inodb/wgs-report/internal/tabix"
	"github.com/inodb/wgs-report/internal/vcf"
)

// TabixIndex reads a bgzipped ClinVar VCF through its .tbi index.
type TabixIndex struct {
	r *tabix.Reader
}

// OpenTabix opens a bgzipped VCF and its tabix index.
func OpenTabix(vcfPath, tbiPath string) (*TabixIndex, error) {
	r, err := tabix.Open(vcfPath, tbiPath)
	if err != nil {
		return nil, fmt.Errorf("open clinvar: %w", err)
	}
	return &TabixIndex{r: r}, nil
}

// Lookup implements Index.
func (x *TabixIndex) Lookup(chrom string, pos int64, ref, alt string) ([]Record, error) {
	lines, err := x.r.Query(chrom, pos)
	if err != nil {
		return nil, fmt.Errorf("clinvar lookup %s:%d: %w", chrom, pos, err)
	}
	var out []Record
	for _, line := range lines {
		v, err := vcf.ParseLine(line, 0)
		if err != nil {
			return nil, fmt.Errorf("clinvar lookup %s:%d: %w", chrom, pos, err)
		}
		out = append(out, recordsFor(v, ref, alt)...)
	}
	return out, nil
}

// Close releases the VCF handle.
func (x *TabixIndex) Close() error {
	return x.r.Close()
}
