// Package annotate joins reported variants against the reference corpora
// and the ClinVar index.
package annotate

import (
	"github.com/inodb/wgs-report/internal/clinvar"
	"github.com/inodb/wgs-report/internal/reference"
)

// ClinVarState distinguishes "looked up and not found" from "never looked
// up". Neither means benign.
type ClinVarState int

const (
	ClinVarNotQueried ClinVarState = iota
	ClinVarAbsent
	ClinVarFound
)

func (s ClinVarState) String() string {
	switch s {
	case ClinVarAbsent:
		return "absent"
	case ClinVarFound:
		return "found"
	}
	return "not queried"
}

// HotspotMatch is a hotspot containing the record's position. Breakpoint
// is "A" or "B" for structural variants and empty for small variants.
type HotspotMatch struct {
	Breakpoint string
	Hotspot    reference.Hotspot
}

// BandMatch is a cytogenetic band containing the record's position.
type BandMatch struct {
	Breakpoint string
	Band       reference.Band
}

// GeneGroupMatch is a gene-group row found for one of the record's genes.
type GeneGroupMatch struct {
	Symbol string
	Group  reference.GeneGroup
}

// PanelMatch is a panel membership found for one of the record's genes.
type PanelMatch struct {
	Symbol string
	Panel  reference.PanelGene
}

// Bundle holds every match found for one reported record. Slices keep
// match order: genes in record order, then corpus load order.
type Bundle struct {
	Hotspots     []HotspotMatch
	Bands        []BandMatch
	GeneGroups   []GeneGroupMatch
	Panels       []PanelMatch
	ClinVar      []clinvar.Record
	ClinVarState ClinVarState
}

// IsEmpty reports whether no corpus matched.
func (b *Bundle) IsEmpty() bool {
	return len(b.Hotspots) == 0 && len(b.Bands) == 0 && len(b.GeneGroups) == 0 &&
		len(b.Panels) == 0 && len(b.ClinVar) == 0
}

// PanelListed reports whether symbol is a member of any matched panel.
func (b *Bundle) PanelListed(symbol string) bool {
	key := reference.NormalizeSymbol(symbol)
	for _, p := range b.Panels {
		if reference.NormalizeSymbol(p.Symbol) == key {
			return true
		}
	}
	return false
}

// appendUnique appends the items of add not already in dst.
func appendUnique[T comparable](dst []T, add ...T) []T {
outer:
	for _, a := range add {
		for _, d := range dst {
			if d == a {
				continue outer
			}
		}
		dst = append(dst, a)
	}
	return dst
}
