package annotate

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/inodb/wgs-report/internal/clinvar"
	"github.com/inodb/wgs-report/internal/genome"
	"github.com/inodb/wgs-report/internal/reference"
	"github.com/inodb/wgs-report/internal/reported"
	"github.com/inodb/wgs-report/internal/tabix"
)

func testSet() *reference.Set {
	return &reference.Set{
		Hotspots: []reference.Hotspot{
			{Chrom: "7", Start: 140753336, End: 140753336, Gene: "BRAF", Label: "V600E"},
			{Chrom: "7", Start: 140753300, End: 140753400, Gene: "BRAF", Label: "exon 15"},
			{Chrom: "12", Start: 25245350, End: 25245351, Gene: "KRAS", Label: "G12"},
		},
		Bands: []reference.Band{
			{Chrom: "7", Start: 139800001, End: 142800000, Name: "q34"},
			{Chrom: "12", Start: 25000001, End: 27000000, Name: "p12.1"},
			{Chrom: "22", Start: 23100001, End: 25500000, Name: "q11.23"},
			{Chrom: "9", Start: 130700001, End: 133100000, Name: "q34.12"},
		},
		GeneGroups: []reference.GeneGroup{
			{Group: "MAPK", Gene: "BRAF", Alteration: "V600E", Entities: "*"},
			{Group: "Fusions", Gene: "ABL1", Alteration: "*", Entities: "*"},
		},
		Panels: []reference.PanelGene{
			{Panel: "Melanoma", Gene: "BRAF"},
			{Panel: "CML", Gene: "ABL1"},
		},
	}
}

func clinvarIndex(t *testing.T) clinvar.Index {
	t.Helper()
	dst := filepath.Join(t.TempDir(), "clinvar.vcf.gz")
	require.NoError(t, tabix.Build(filepath.Join("..", "..", "testdata", "clinvar_small.vcf"), dst))
	idx, err := clinvar.Open(dst, "")
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestAnnotateVariant_HotspotInside(t *testing.T) {
	a := NewAnnotator(NewReferences(testSet(), nil))
	v := &reported.Variant{Genes: []string{"BRAF"}, Locus: genome.Locus{Chrom: "7", Pos: 140753336}, Ref: "A", Alt: "T"}

	b, err := a.AnnotateVariant(v)
	require.NoError(t, err)

	require.Len(t, b.Hotspots, 2)
	assert.Equal(t, "V600E", b.Hotspots[0].Hotspot.Label)
	assert.Equal(t, "exon 15", b.Hotspots[1].Hotspot.Label)
	require.Len(t, b.Bands, 1)
	assert.Equal(t, "q34", b.Bands[0].Band.Name)
	require.Len(t, b.GeneGroups, 1)
	assert.Equal(t, "BRAF", b.GeneGroups[0].Symbol)
	assert.Equal(t, ClinVarNotQueried, b.ClinVarState)
}

func TestAnnotateVariant_HotspotOutside(t *testing.T) {
	a := NewAnnotator(NewReferences(testSet(), nil))
	v := &reported.Variant{Genes: []string{"BRAF"}, Locus: genome.Locus{Chrom: "7", Pos: 140753401}, Ref: "A", Alt: "T"}

	b, err := a.AnnotateVariant(v)
	require.NoError(t, err)
	assert.Empty(t, b.Hotspots)
}

func TestAnnotateVariant_PanelListedGene(t *testing.T) {
	a := NewAnnotator(NewReferences(testSet(), nil))
	v := &reported.Variant{Genes: []string{"BRAF", "TP53"}}

	b, err := a.AnnotateVariant(v)
	require.NoError(t, err)
	require.Len(t, b.Panels, 1)
	assert.Equal(t, "Melanoma", b.Panels[0].Panel.Panel)
	assert.True(t, b.PanelListed("braf"))
	assert.False(t, b.PanelListed("TP53"))
}

func TestAnnotateVariant_ClinVar(t *testing.T) {
	a := NewAnnotator(NewReferences(testSet(), clinvarIndex(t)))

	tests := []struct {
		name   string
		locus  genome.Locus
		ref    string
		alt    string
		state  ClinVarState
		wantID string
	}{
		{"pathogenic allele", genome.Locus{Chrom: "7", Pos: 140753336}, "A", "T", ClinVarFound, "13961"},
		{"other allele same position", genome.Locus{Chrom: "7", Pos: 140753336}, "A", "G", ClinVarFound, "376069"},
		{"allele not in clinvar", genome.Locus{Chrom: "7", Pos: 140753336}, "A", "C", ClinVarAbsent, ""},
		{"position not in clinvar", genome.Locus{Chrom: "7", Pos: 140753338}, "G", "A", ClinVarAbsent, ""},
		{"multi-allelic record", genome.Locus{Chrom: "12", Pos: 25245350}, "C", "T", ClinVarFound, "12583"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &reported.Variant{Genes: []string{"X"}, Locus: tt.locus, Ref: tt.ref, Alt: tt.alt}
			b, err := a.AnnotateVariant(v)
			require.NoError(t, err)
			assert.Equal(t, tt.state, b.ClinVarState)
			if tt.wantID == "" {
				assert.Empty(t, b.ClinVar)
				return
			}
			require.Len(t, b.ClinVar, 1)
			assert.Equal(t, tt.wantID, b.ClinVar[0].ID)
		})
	}
}

func TestAnnotateVariant_UnresolvableNotQueried(t *testing.T) {
	a := NewAnnotator(NewReferences(testSet(), clinvarIndex(t)))
	v := &reported.Variant{Genes: []string{"BRAF"}, Status: reported.StatusUnresolvable}

	b, err := a.AnnotateVariant(v)
	require.NoError(t, err)
	assert.Equal(t, ClinVarNotQueried, b.ClinVarState)
	assert.Empty(t, b.Hotspots)
	assert.Len(t, b.GeneGroups, 1)
}

type failingClinVar struct{}

func (failingClinVar) Lookup(string, int64, string, string) ([]clinvar.Record, error) {
	return nil, errors.New("read error")
}

func TestAnnotateAll_ClinVarErrorIsFatal(t *testing.T) {
	a := NewAnnotator(NewReferences(testSet(), failingClinVar{}))
	_, err := a.AnnotateAll([]reported.Variant{
		{Genes: []string{"BRAF"}, Locus: genome.Locus{Chrom: "7", Pos: 1}, Ref: "A", Alt: "T"},
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read error")
}

func TestAnnotateStructural_Breakpoints(t *testing.T) {
	a := NewAnnotator(NewReferences(testSet(), nil))
	sv := &reported.StructuralVariant{
		Genes:       []string{"BCR", "ABL1"},
		BreakpointA: genome.Locus{Chrom: "22", Pos: 23290000},
		BreakpointB: genome.Locus{Chrom: "9", Pos: 130714000},
	}

	b := a.AnnotateStructural(sv)
	require.Len(t, b.Bands, 2)
	assert.Equal(t, "A", b.Bands[0].Breakpoint)
	assert.Equal(t, "q11.23", b.Bands[0].Band.Name)
	assert.Equal(t, "B", b.Bands[1].Breakpoint)
	assert.Equal(t, "q34.12", b.Bands[1].Band.Name)
	require.Len(t, b.Panels, 1)
	assert.Equal(t, "ABL1", b.Panels[0].Symbol)
	assert.Equal(t, ClinVarNotQueried, b.ClinVarState)
}

func TestAnnotateStructural_SameHotspotBothEnds(t *testing.T) {
	a := NewAnnotator(NewReferences(testSet(), nil))
	sv := &reported.StructuralVariant{
		Genes:       []string{"BRAF"},
		BreakpointA: genome.Locus{Chrom: "7", Pos: 140753310},
		BreakpointB: genome.Locus{Chrom: "7", Pos: 140753390},
	}

	b := a.AnnotateStructural(sv)
	require.Len(t, b.Hotspots, 2)
	assert.Equal(t, "A", b.Hotspots[0].Breakpoint)
	assert.Equal(t, "B", b.Hotspots[1].Breakpoint)
	assert.Len(t, b.Bands, 2)
}

func TestAnnotateAll_OrderAndStats(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	a := NewAnnotator(NewReferences(testSet(), nil))
	a.SetLogger(zap.New(core))

	variants := []reported.Variant{
		{Row: 2, Genes: []string{"BRAF"}, Locus: genome.Locus{Chrom: "7", Pos: 140753336}, Ref: "A", Alt: "T"},
		{Row: 3, RawCoordinate: "bogus", Status: reported.StatusUnresolvable,
			Problems: []*reported.UnresolvedReferenceError{{Row: 3, Field: "Gene", Reason: "no gene symbol"}}},
		{Row: 4, Genes: []string{"TP53"}, Locus: genome.Locus{Chrom: "17", Pos: 7674220}, Ref: "C", Alt: "T"},
	}
	res, err := a.AnnotateAll(variants, nil)
	require.NoError(t, err)

	require.Len(t, res.Variants, 3)
	for i, av := range res.Variants {
		assert.Equal(t, variants[i].Row, av.Variant.Row)
	}
	assert.True(t, res.Variants[1].Bundle.IsEmpty())
	assert.True(t, res.Variants[2].Bundle.IsEmpty())

	require.Len(t, res.Stats, 5)
	assert.Equal(t, CorpusStats{Corpus: "hotspots", Matched: 1, Matches: 2}, res.Stats[0])
	assert.Equal(t, CorpusStats{Corpus: "clinvar"}, res.Stats[4])

	assert.Equal(t, 1, logs.FilterMessage("unresolvable variant").Len())
	assert.Equal(t, 5, logs.FilterMessage("corpus matched").Len())
}

func TestAnnotate_DoesNotMutateReferences(t *testing.T) {
	set := testSet()
	before := len(set.Hotspots)
	a := NewAnnotator(NewReferences(set, nil))
	v := &reported.Variant{Genes: []string{"BRAF"}, Locus: genome.Locus{Chrom: "7", Pos: 140753336}, Ref: "A", Alt: "T"}

	b1, err := a.AnnotateVariant(v)
	require.NoError(t, err)
	b1.Hotspots[0].Hotspot.Label = "changed"

	b2, err := a.AnnotateVariant(v)
	require.NoError(t, err)
	assert.Equal(t, "V600E", b2.Hotspots[0].Hotspot.Label)
	assert.Len(t, set.Hotspots, before)
}
