package workbook

import (
	"strconv"
	"strings"

	"github.com/inodb/wgs-report/internal/annotate"
	"github.com/inodb/wgs-report/internal/clinvar"
)

// Separator joins multiple matches in one cell.
const Separator = "; "

// joinDistinct joins the non-empty values in first-seen order.
func joinDistinct(values []string) string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return strings.Join(out, Separator)
}

func tagged(tag, s string) string {
	if tag == "" || s == "" {
		return s
	}
	return tag + ": " + s
}

func hotspotLabels(b *annotate.Bundle) string {
	vals := make([]string, len(b.Hotspots))
	for i, m := range b.Hotspots {
		vals[i] = tagged(m.Breakpoint, m.Hotspot.DisplayLabel())
	}
	return joinDistinct(vals)
}

func hotspotSamples(b *annotate.Bundle) string {
	vals := make([]string, len(b.Hotspots))
	for i, m := range b.Hotspots {
		vals[i] = m.Hotspot.Samples
	}
	return joinDistinct(vals)
}

func hotspotTumours(b *annotate.Bundle) string {
	vals := make([]string, len(b.Hotspots))
	for i, m := range b.Hotspots {
		vals[i] = m.Hotspot.TumourTypes
	}
	return joinDistinct(vals)
}

func bands(b *annotate.Bundle) string {
	vals := make([]string, len(b.Bands))
	for i, m := range b.Bands {
		vals[i] = tagged(m.Breakpoint, m.Band.Display())
	}
	return joinDistinct(vals)
}

func geneGroups(b *annotate.Bundle) string {
	vals := make([]string, len(b.GeneGroups))
	for i, m := range b.GeneGroups {
		vals[i] = tagged(m.Symbol, m.Group.Group)
	}
	return joinDistinct(vals)
}

func driverAlterations(b *annotate.Bundle) string {
	var vals []string
	for _, m := range b.GeneGroups {
		if m.Group.IsDriver() {
			vals = append(vals, m.Group.Gene+" "+m.Group.Alteration)
		}
	}
	return joinDistinct(vals)
}

func panels(b *annotate.Bundle) string {
	vals := make([]string, len(b.Panels))
	for i, m := range b.Panels {
		vals[i] = tagged(m.Symbol, m.Panel.Panel)
	}
	return joinDistinct(vals)
}

func clinVarIDs(b *annotate.Bundle) string {
	vals := make([]string, len(b.ClinVar))
	for i, r := range b.ClinVar {
		vals[i] = r.ID
	}
	return joinDistinct(vals)
}

func clinVarSignificance(b *annotate.Bundle) string {
	vals := make([]string, len(b.ClinVar))
	for i, r := range b.ClinVar {
		vals[i] = clinvar.DisplaySignificance(r.Significance)
	}
	return joinDistinct(vals)
}

func clinVarReview(b *annotate.Bundle) string {
	vals := make([]string, len(b.ClinVar))
	for i, r := range b.ClinVar {
		vals[i] = strings.ReplaceAll(r.ReviewStatus, "_", " ")
	}
	return joinDistinct(vals)
}

// number writes numeric-looking text as a number so filters and data bars
// work on it.
func number(s string) any {
	if s == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// roles lists the "Role in cancer" notes of the matched gene groups.
func roles(b *annotate.Bundle) string {
	vals := make([]string, len(b.GeneGroups))
	for i, m := range b.GeneGroups {
		vals[i] = m.Group.Comments
	}
	return joinDistinct(vals)
}
