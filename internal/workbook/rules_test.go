package workbook

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inodb/wgs-report/internal/annotate"
	"github.com/inodb/wgs-report/internal/clinvar"
	"github.com/inodb/wgs-report/internal/reference"
	"github.com/inodb/wgs-report/internal/reported"
)

func match(name string, s Subject) bool {
	r, ok := RuleByName(name)
	if !ok {
		panic("unknown rule " + name)
	}
	return r.Match(s)
}

func TestRules_Closed(t *testing.T) {
	var names []string
	for _, r := range Rules {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{
		RulePanelListed, RuleClinVarPathogenic, RuleHotspot, RuleGeneGroupDriver, RuleUnresolvable,
	}, names)

	_, ok := RuleByName("nope")
	assert.False(t, ok)
}

func TestRule_PanelListed(t *testing.T) {
	assert.False(t, match(RulePanelListed, Subject{Bundle: &annotate.Bundle{}}))
	assert.True(t, match(RulePanelListed, Subject{Bundle: &annotate.Bundle{
		Panels: []annotate.PanelMatch{{Symbol: "BRAF", Panel: reference.PanelGene{Panel: "Melanoma", Gene: "BRAF"}}},
	}}))
}

func TestRule_ClinVarPathogenic(t *testing.T) {
	found := func(sigs ...string) Subject {
		b := &annotate.Bundle{ClinVarState: annotate.ClinVarFound}
		for _, s := range sigs {
			b.ClinVar = append(b.ClinVar, clinvar.Record{Significance: s})
		}
		return Subject{Bundle: b}
	}

	tests := []struct {
		name    string
		subject Subject
		want    bool
	}{
		{"pathogenic", found("Pathogenic"), true},
		{"pathogenic/likely", found("Pathogenic/Likely_pathogenic"), true},
		{"conflicting", found("Conflicting_interpretations_of_pathogenicity"), false},
		{"mixed with uncertain", found("Pathogenic(12)|Uncertain_significance(1)"), false},
		{"benign", found("Benign"), false},
		{"one of two pathogenic", found("Pathogenic", "Benign"), false},
		{"absent", Subject{Bundle: &annotate.Bundle{ClinVarState: annotate.ClinVarAbsent}}, false},
		{"not queried", Subject{Bundle: &annotate.Bundle{}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, match(RuleClinVarPathogenic, tt.subject))
		})
	}
}

func TestRule_HotspotAndDriver(t *testing.T) {
	b := &annotate.Bundle{
		Hotspots:   []annotate.HotspotMatch{{Hotspot: reference.Hotspot{Gene: "BRAF", Label: "V600E"}}},
		GeneGroups: []annotate.GeneGroupMatch{{Symbol: "BRAF", Group: reference.GeneGroup{Gene: "BRAF", Alteration: "*"}}},
	}
	assert.True(t, match(RuleHotspot, Subject{Bundle: b}))
	assert.False(t, match(RuleGeneGroupDriver, Subject{Bundle: b}))

	b.GeneGroups = append(b.GeneGroups, annotate.GeneGroupMatch{Symbol: "BRAF", Group: reference.GeneGroup{Gene: "BRAF", Alteration: "V600E"}})
	assert.True(t, match(RuleGeneGroupDriver, Subject{Bundle: b}))
}

func TestRule_Unresolvable(t *testing.T) {
	b := &annotate.Bundle{}
	assert.True(t, match(RuleUnresolvable, Subject{Bundle: b, Status: reported.StatusUnresolvable}))
	assert.False(t, match(RuleUnresolvable, Subject{Bundle: b, Status: reported.StatusResolved}))
}

func TestJoinDistinct(t *testing.T) {
	assert.Equal(t, "a; b", joinDistinct([]string{"a", "", "b", "a"}))
	assert.Equal(t, "", joinDistinct(nil))
}

func TestHotspotLabels_EveryMatch(t *testing.T) {
	b := &annotate.Bundle{Hotspots: []annotate.HotspotMatch{
		{Hotspot: reference.Hotspot{Gene: "BRAF", Label: "V600E"}},
		{Hotspot: reference.Hotspot{Gene: "BRAF", Label: "V600K"}},
	}}
	assert.Equal(t, "BRAF V600E; BRAF V600K", hotspotLabels(b))

	sv := &annotate.Bundle{Bands: []annotate.BandMatch{
		{Breakpoint: "A", Band: reference.Band{Chrom: "22", Name: "q11.23"}},
		{Breakpoint: "B", Band: reference.Band{Chrom: "9", Name: "q34.12"}},
	}}
	assert.Equal(t, "A: 22q11.23; B: 9q34.12", bands(sv))
}
