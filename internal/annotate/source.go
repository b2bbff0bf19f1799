package annotate

import (
	"github.com/inodb/wgs-report/internal/clinvar"
	"github.com/inodb/wgs-report/internal/genome"
	"github.com/inodb/wgs-report/internal/reference"
)

// IntervalLookup finds the records whose span contains a position.
type IntervalLookup[T any] interface {
	Find(chrom string, pos int64) []T
}

// SymbolLookup finds the records keyed by a gene symbol.
type SymbolLookup[T any] interface {
	Lookup(symbol string) []T
}

// ClinVarLookup is the allele-aware ClinVar point query.
type ClinVarLookup interface {
	Lookup(chrom string, pos int64, ref, alt string) ([]clinvar.Record, error)
}

// References bundles the lookups the annotator joins against. A nil
// lookup is skipped; a nil ClinVar leaves every record "not queried".
type References struct {
	Hotspots   IntervalLookup[reference.Hotspot]
	Bands      IntervalLookup[reference.Band]
	GeneGroups SymbolLookup[reference.GeneGroup]
	Panels     SymbolLookup[reference.PanelGene]
	ClinVar    ClinVarLookup
}

// NewReferences indexes a loaded reference set.
func NewReferences(set *reference.Set, cv ClinVarLookup) References {
	return References{
		Hotspots:   reference.NewIntervalIndex(set.Hotspots, func(h reference.Hotspot) genome.Region { return h.Region() }),
		Bands:      reference.NewIntervalIndex(set.Bands, func(b reference.Band) genome.Region { return b.Region() }),
		GeneGroups: reference.NewSymbolIndex(set.GeneGroups, func(g reference.GeneGroup) string { return g.Gene }),
		Panels:     reference.NewSymbolIndex(set.Panels, func(p reference.PanelGene) string { return p.Gene }),
		ClinVar:    cv,
	}
}
