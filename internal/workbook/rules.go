package workbook

import (
	"github.com/inodb/wgs-report/internal/annotate"
	"github.com/inodb/wgs-report/internal/clinvar"
	"github.com/inodb/wgs-report/internal/reported"
)

// Subject is what a formatting rule looks at: one record's matches and
// its resolution status.
type Subject struct {
	Bundle *annotate.Bundle
	Status reported.Status
}

// Rule is a named highlight. A cell bound to the rule gets Style when
// Match holds for the cell's row.
type Rule struct {
	Name  string
	Style CellStyle
	Match func(Subject) bool
}

// Rule names.
const (
	RulePanelListed       = "panel-listed"
	RuleClinVarPathogenic = "clinvar-pathogenic"
	RuleHotspot           = "hotspot"
	RuleGeneGroupDriver   = "gene-group-driver"
	RuleUnresolvable      = "unresolvable"
)

// Rules is the complete set of highlight rules, in application order.
var Rules = []Rule{
	{
		Name:  RulePanelListed,
		Style: CellStyle{Bold: true},
		Match: func(s Subject) bool { return len(s.Bundle.Panels) > 0 },
	},
	{
		Name:  RuleClinVarPathogenic,
		Style: CellStyle{Fill: "FF0000"},
		Match: ClinVarPathogenic,
	},
	{
		Name:  RuleHotspot,
		Style: CellStyle{Fill: "00FFFF"},
		Match: func(s Subject) bool { return len(s.Bundle.Hotspots) > 0 },
	},
	{
		Name:  RuleGeneGroupDriver,
		Style: CellStyle{Fill: "5B9BD5"},
		Match: GeneGroupDriver,
	},
	{
		Name:  RuleUnresolvable,
		Style: CellStyle{Fill: "FFA500"},
		Match: func(s Subject) bool { return s.Status == reported.StatusUnresolvable },
	},
}

// RuleByName returns the named rule.
func RuleByName(name string) (Rule, bool) {
	for _, r := range Rules {
		if r.Name == name {
			return r, true
		}
	}
	return Rule{}, false
}

// ClinVarPathogenic holds when at least one ClinVar match was found and
// every matched significance is pathogenic or likely pathogenic.
func ClinVarPathogenic(s Subject) bool {
	b := s.Bundle
	if b.ClinVarState != annotate.ClinVarFound || len(b.ClinVar) == 0 {
		return false
	}
	for _, r := range b.ClinVar {
		if !clinvar.IsPathogenic(r.Significance) {
			return false
		}
	}
	return true
}

// GeneGroupDriver holds when a matched gene-group row names a specific
// driver alteration.
func GeneGroupDriver(s Subject) bool {
	for _, g := range s.Bundle.GeneGroups {
		if g.Group.IsDriver() {
			return true
		}
	}
	return false
}
