// Package genome holds the coordinate types shared by the reference corpora
// and the reported case files.
package genome

import (
	"fmt"
	"strconv"
	"strings"
)

// Locus is a 1-based position on a chromosome.
type Locus struct {
	Chrom string // normalised chromosome name (no "chr" prefix)
	Pos   int64
}

// Region is a 1-based, end-inclusive span on a chromosome.
type Region struct {
	Chrom string
	Start int64
	End   int64
}

// IsZero reports whether the locus is unset.
func (l Locus) IsZero() bool {
	return l.Chrom == "" && l.Pos == 0
}

func (l Locus) String() string {
	if l.IsZero() {
		return ""
	}
	return "chr" + l.Chrom + ":" + strconv.FormatInt(l.Pos, 10)
}

// Contains returns true if pos lies within the region boundaries.
func (r Region) Contains(pos int64) bool {
	return pos >= r.Start && pos <= r.End
}

// NormalizeChrom returns the chromosome name without the "chr" prefix,
// with sex and mitochondrial chromosomes upper-cased and "MT" folded to "M".
func NormalizeChrom(chrom string) string {
	c := strings.TrimSpace(chrom)
	if len(c) > 3 && strings.EqualFold(c[:3], "chr") {
		c = c[3:]
	}
	c = strings.ToUpper(c)
	if c == "MT" {
		return "M"
	}
	return c
}

// ParseLocus parses "chr7:140753336" (the "chr" prefix is optional).
func ParseLocus(s string) (Locus, error) {
	chrom, pos, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || chrom == "" {
		return Locus{}, fmt.Errorf("locus %q: expected <chrom>:<pos>", s)
	}
	p, err := parsePosition(pos)
	if err != nil {
		return Locus{}, fmt.Errorf("locus %q: %w", s, err)
	}
	return Locus{Chrom: NormalizeChrom(chrom), Pos: p}, nil
}

// ParseRegion parses "chr1:1000-2000" or a single position "chr1:1000",
// which yields a one-base region.
func ParseRegion(s string) (Region, error) {
	chrom, span, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || chrom == "" {
		return Region{}, fmt.Errorf("region %q: expected <chrom>:<start>[-<end>]", s)
	}
	startStr, endStr, hasEnd := strings.Cut(span, "-")
	start, err := parsePosition(startStr)
	if err != nil {
		return Region{}, fmt.Errorf("region %q: %w", s, err)
	}
	end := start
	if hasEnd {
		end, err = parsePosition(endStr)
		if err != nil {
			return Region{}, fmt.Errorf("region %q: %w", s, err)
		}
	}
	if end < start {
		return Region{}, fmt.Errorf("region %q: end before start", s)
	}
	return Region{Chrom: NormalizeChrom(chrom), Start: start, End: end}, nil
}

func parsePosition(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	p, err := strconv.ParseInt(s, 10, 64)
	if err != nil || p < 1 {
		return 0, fmt.Errorf("invalid position %q", s)
	}
	return p, nil
}
