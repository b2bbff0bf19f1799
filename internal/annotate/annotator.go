package annotate

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/wgs-report/internal/reference"
	"github.com/inodb/wgs-report/internal/reported"
)

// Annotator resolves reported records against the reference corpora.
// Reference data is only read.
type Annotator struct {
	refs   References
	logger *zap.Logger
}

// NewAnnotator creates a new annotator over refs.
func NewAnnotator(refs References) *Annotator {
	return &Annotator{
		refs:   refs,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for debug and summary messages.
func (a *Annotator) SetLogger(l *zap.Logger) {
	a.logger = l
}

// AnnotatedVariant pairs a reported variant with its matches.
type AnnotatedVariant struct {
	Variant reported.Variant
	Bundle  Bundle
}

// AnnotatedSV pairs a reported structural variant with its matches.
type AnnotatedSV struct {
	Variant reported.StructuralVariant
	Bundle  Bundle
}

// Result is the annotated case, in input order.
type Result struct {
	Variants   []AnnotatedVariant
	Structural []AnnotatedSV
	Stats      []CorpusStats
}

// CorpusStats counts how a corpus matched across the case.
type CorpusStats struct {
	Corpus  string `json:"corpus"`
	Matched int    `json:"matched"` // records with at least one match
	Matches int    `json:"matches"`
}

// AnnotateVariant joins one small variant. Symbol corpora are queried for
// each gene; interval corpora and ClinVar only when the coordinate parsed.
// A ClinVar I/O error is returned and should abort the run.
func (a *Annotator) AnnotateVariant(v *reported.Variant) (Bundle, error) {
	var b Bundle
	a.addSymbols(&b, v.Genes)

	if v.Locus.IsZero() {
		return b, nil
	}
	a.addPositions(&b, "", v.Locus.Chrom, v.Locus.Pos)

	if a.refs.ClinVar == nil || v.Ref == "" || v.Alt == "" {
		return b, nil
	}
	recs, err := a.refs.ClinVar.Lookup(v.Locus.Chrom, v.Locus.Pos, v.Ref, v.Alt)
	if err != nil {
		return b, fmt.Errorf("clinvar lookup %s;%s>%s: %w", v.Locus, v.Ref, v.Alt, err)
	}
	b.ClinVar = recs
	b.ClinVarState = ClinVarAbsent
	if len(recs) > 0 {
		b.ClinVarState = ClinVarFound
	}
	return b, nil
}

// AnnotateStructural joins one structural variant. Every gene is queried
// and both breakpoints are placed; ClinVar is not consulted.
func (a *Annotator) AnnotateStructural(sv *reported.StructuralVariant) Bundle {
	var b Bundle
	a.addSymbols(&b, sv.Genes)
	for _, bp := range sv.Breakpoints() {
		a.addPositions(&b, bp.Tag, bp.Locus.Chrom, bp.Locus.Pos)
	}
	return b
}

func (a *Annotator) addSymbols(b *Bundle, genes []string) {
	for _, g := range genes {
		if reference.NormalizeSymbol(g) == "" {
			continue
		}
		if a.refs.GeneGroups != nil {
			for _, r := range a.refs.GeneGroups.Lookup(g) {
				b.GeneGroups = appendUnique(b.GeneGroups, GeneGroupMatch{Symbol: g, Group: r})
			}
		}
		if a.refs.Panels != nil {
			for _, r := range a.refs.Panels.Lookup(g) {
				b.Panels = appendUnique(b.Panels, PanelMatch{Symbol: g, Panel: r})
			}
		}
	}
}

func (a *Annotator) addPositions(b *Bundle, tag, chrom string, pos int64) {
	if a.refs.Hotspots != nil {
		for _, h := range a.refs.Hotspots.Find(chrom, pos) {
			b.Hotspots = appendUnique(b.Hotspots, HotspotMatch{Breakpoint: tag, Hotspot: h})
		}
	}
	if a.refs.Bands != nil {
		for _, r := range a.refs.Bands.Find(chrom, pos) {
			b.Bands = appendUnique(b.Bands, BandMatch{Breakpoint: tag, Band: r})
		}
	}
}

// AnnotateAll annotates a whole case. Each record appears once, in input
// order, whether or not its keys resolved.
func (a *Annotator) AnnotateAll(variants []reported.Variant, svs []reported.StructuralVariant) (*Result, error) {
	res := &Result{
		Variants:   make([]AnnotatedVariant, len(variants)),
		Structural: make([]AnnotatedSV, len(svs)),
	}

	for i := range variants {
		v := &variants[i]
		if v.Status == reported.StatusUnresolvable {
			a.logger.Debug("unresolvable variant",
				zap.Int("row", v.Row),
				zap.String("status", reported.StatusText(v.Status, v.Problems)))
		}
		b, err := a.AnnotateVariant(v)
		if err != nil {
			return nil, err
		}
		res.Variants[i] = AnnotatedVariant{Variant: *v, Bundle: b}
	}

	for i := range svs {
		sv := &svs[i]
		if sv.Status == reported.StatusUnresolvable {
			a.logger.Debug("unresolvable structural variant",
				zap.Int("row", sv.Row),
				zap.String("status", reported.StatusText(sv.Status, sv.Problems)))
		}
		res.Structural[i] = AnnotatedSV{Variant: *sv, Bundle: a.AnnotateStructural(sv)}
	}

	res.Stats = res.stats()
	for _, s := range res.Stats {
		a.logger.Info("corpus matched",
			zap.String("corpus", s.Corpus),
			zap.Int("records", s.Matched),
			zap.Int("matches", s.Matches))
	}
	return res, nil
}

func (r *Result) bundles() []*Bundle {
	out := make([]*Bundle, 0, len(r.Variants)+len(r.Structural))
	for i := range r.Variants {
		out = append(out, &r.Variants[i].Bundle)
	}
	for i := range r.Structural {
		out = append(out, &r.Structural[i].Bundle)
	}
	return out
}

func (r *Result) stats() []CorpusStats {
	counters := []struct {
		name string
		n    func(*Bundle) int
	}{
		{"hotspots", func(b *Bundle) int { return len(b.Hotspots) }},
		{"gene groups", func(b *Bundle) int { return len(b.GeneGroups) }},
		{"panels", func(b *Bundle) int { return len(b.Panels) }},
		{"cytobands", func(b *Bundle) int { return len(b.Bands) }},
		{"clinvar", func(b *Bundle) int { return len(b.ClinVar) }},
	}

	bundles := r.bundles()
	out := make([]CorpusStats, len(counters))
	for i, c := range counters {
		out[i].Corpus = c.name
		for _, b := range bundles {
			if n := c.n(b); n > 0 {
				out[i].Matched++
				out[i].Matches += n
			}
		}
	}
	return out
}
