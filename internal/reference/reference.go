// Package reference loads the reference corpora a case is joined against
// and indexes them for lookup by gene symbol or genomic position.
package reference

import (
	"strconv"

	"github.com/inodb/wgs-report/internal/genome"
)

// Hotspot is a recurrently mutated position or interval.
type Hotspot struct {
	Chrom       string
	Start       int64 // 1-based, inclusive
	End         int64 // 1-based, inclusive
	Gene        string
	Label       string // e.g. protein change "V600E"
	Samples     string // number of samples carrying the hotspot
	TumourTypes string
}

// Region returns the hotspot's span.
func (h Hotspot) Region() genome.Region {
	return genome.Region{Chrom: h.Chrom, Start: h.Start, End: h.End}
}

// DisplayLabel returns the label, falling back to gene plus coordinates
// when the source row has no label.
func (h Hotspot) DisplayLabel() string {
	if h.Label != "" {
		if h.Gene != "" {
			return h.Gene + " " + h.Label
		}
		return h.Label
	}
	loc := "chr" + h.Chrom + ":" + strconv.FormatInt(h.Start, 10)
	if h.End != h.Start {
		loc += "-" + strconv.FormatInt(h.End, 10)
	}
	if h.Gene != "" {
		return h.Gene + " " + loc
	}
	return loc
}

// GeneGroup is one gene's entry in a gene-impact group.
type GeneGroup struct {
	Group      string // sheet the row came from
	Gene       string
	Alteration string // "*" when the source leaves it empty
	Entities   string // "*" when the source leaves it empty
	Comments   string
	Reference  string
}

// IsDriver reports whether the group row names a specific driver
// alteration rather than the "*" placeholder.
func (g GeneGroup) IsDriver() bool {
	return g.Alteration != "" && g.Alteration != "*"
}

// PanelGene is one gene's membership of a disease panel.
type PanelGene struct {
	Panel string
	Gene  string
	Mode  string // mode of inheritance or action
}

// Band is a cytogenetic band, stored 1-based inclusive.
type Band struct {
	Chrom string
	Start int64
	End   int64
	Name  string // e.g. "p36.33"
	Stain string
}

// Region returns the band's span.
func (b Band) Region() genome.Region {
	return genome.Region{Chrom: b.Chrom, Start: b.Start, End: b.End}
}

// Display returns the conventional band notation, e.g. "1p36.33".
func (b Band) Display() string {
	return b.Chrom + b.Name
}

// Set is every corpus loaded for one run.
type Set struct {
	Hotspots   []Hotspot
	GeneGroups []GeneGroup
	Panels     []PanelGene
	Bands      []Band
}
