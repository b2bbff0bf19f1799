package reference

import (
	"path/filepath"
	"strings"

	"github.com/inodb/wgs-report/internal/genome"
	"github.com/inodb/wgs-report/internal/table"
)

var hotspotColumns = []table.Column{
	{Name: "Chromosome", Aliases: []string{"chrom", "chr", "#chrom", "chromosome name"}, Required: true},
	{Name: "Start", Aliases: []string{"pos", "position", "start position", "start_position"}, Required: true},
	{Name: "End", Aliases: []string{"stop", "end position", "end_position"}},
	{Name: "Gene", Aliases: []string{"gene symbol", "hugo symbol", "hugo_symbol", "symbol"}},
	{Name: "Label", Aliases: []string{"hotspot", "hs p.", "hs_protein_id", "protein change", "hgvsp", "description"}},
	{Name: "Samples", Aliases: []string{"hs samples", "hs_samples", "sample count", "count"}},
	{Name: "Tumour types", Aliases: []string{"tumor types", "tumour type", "tumor type", "cancer types",
		"hs_tumor type composition", "tumor type composition"}},
}

// LoadHotspots reads the hotspot table. End defaults to Start for
// single-position hotspots.
func LoadHotspots(path string) ([]Hotspot, error) {
	t, err := table.Read(path)
	if err != nil {
		return nil, err
	}
	recs, err := t.Bind(hotspotColumns)
	if err != nil {
		return nil, err
	}

	out := make([]Hotspot, 0, len(recs))
	for _, r := range recs {
		chrom := genome.NormalizeChrom(r.Get("Chromosome"))
		if chrom == "" {
			return nil, r.Errorf("Chromosome", "empty chromosome")
		}
		start, err := r.Int("Start")
		if err != nil {
			return nil, err
		}
		end := start
		if r.Get("End") != "" {
			if end, err = r.Int("End"); err != nil {
				return nil, err
			}
		}
		if start < 1 || end < start {
			return nil, r.Errorf("End", "invalid interval %d-%d", start, end)
		}
		gene, label := splitProteinID(r.Get("Gene"), r.Get("Label"))
		out = append(out, Hotspot{
			Chrom:       chrom,
			Start:       start,
			End:         end,
			Gene:        gene,
			Label:       label,
			Samples:     r.Get("Samples"),
			TumourTypes: r.Get("Tumour types"),
		})
	}
	return out, nil
}

// splitProteinID separates a "BRAF:p.V600" protein id into gene and
// label. The gene column, when present, must agree with the prefix.
func splitProteinID(gene, label string) (string, string) {
	g, rest, ok := strings.Cut(label, ":")
	if !ok || g == "" || (gene != "" && !strings.EqualFold(g, gene)) {
		return gene, label
	}
	if gene == "" {
		gene = g
	}
	return gene, rest
}

var geneGroupColumns = []table.Column{
	{Name: "Gene", Aliases: []string{"gene symbol", "symbol", "hugo symbol"}, Required: true},
	{Name: "Alteration", Aliases: []string{"driver", "driver_sv", "driver sv", "driver alteration"}},
	{Name: "Entities", Aliases: []string{"entity", "tumour entities", "tumor entities"}},
	{Name: "Comments", Aliases: []string{"role in cancer", "comment", "notes"}},
	{Name: "Reference", Aliases: []string{"references", "pmid", "source"}},
}

// LoadGeneGroups reads a gene-impact workbook where each sheet is one
// group. Delimited files are a single group named after the file.
func LoadGeneGroups(path string) ([]GeneGroup, error) {
	tables, err := table.ReadWorkbook(path)
	if err != nil {
		return nil, err
	}

	var out []GeneGroup
	for _, t := range tables {
		recs, err := t.Bind(geneGroupColumns)
		if err != nil {
			return nil, err
		}
		group := groupName(t)
		for _, r := range recs {
			if r.Get("Gene") == "" {
				continue
			}
			out = append(out, GeneGroup{
				Group:      group,
				Gene:       r.Get("Gene"),
				Alteration: orStar(r.Get("Alteration")),
				Entities:   orStar(r.Get("Entities")),
				Comments:   r.Get("Comments"),
				Reference:  r.Get("Reference"),
			})
		}
	}
	return out, nil
}

var panelColumns = []table.Column{
	{Name: "Gene", Aliases: []string{"gene symbol", "symbol", "hgnc symbol"}, Required: true},
	{Name: "Mode", Aliases: []string{"formatted mode", "mode of inheritance", "mode of action"}},
}

// LoadPanels reads a panel workbook where each sheet is one panel.
func LoadPanels(path string) ([]PanelGene, error) {
	tables, err := table.ReadWorkbook(path)
	if err != nil {
		return nil, err
	}

	var out []PanelGene
	for _, t := range tables {
		recs, err := t.Bind(panelColumns)
		if err != nil {
			return nil, err
		}
		panel := groupName(t)
		for _, r := range recs {
			if r.Get("Gene") == "" {
				continue
			}
			out = append(out, PanelGene{Panel: panel, Gene: r.Get("Gene"), Mode: r.Get("Mode")})
		}
	}
	return out, nil
}

var bandColumns = []table.Column{
	{Name: "Chromosome", Aliases: []string{"chrom", "#chrom", "chr"}, Required: true},
	{Name: "Start", Aliases: []string{"chromstart", "chrom start"}, Required: true},
	{Name: "End", Aliases: []string{"chromend", "chrom end"}, Required: true},
	{Name: "Name", Aliases: []string{"band"}, Required: true},
	{Name: "Stain", Aliases: []string{"giestain", "gie stain"}},
}

// LoadBands reads a UCSC-style cytoband table (0-based half-open starts)
// and stores the bands 1-based inclusive.
func LoadBands(path string) ([]Band, error) {
	t, err := table.Read(path)
	if err != nil {
		return nil, err
	}
	recs, err := t.Bind(bandColumns)
	if err != nil {
		return nil, err
	}

	out := make([]Band, 0, len(recs))
	for _, r := range recs {
		start, err := r.Int("Start")
		if err != nil {
			return nil, err
		}
		end, err := r.Int("End")
		if err != nil {
			return nil, err
		}
		if start < 0 || end <= start {
			return nil, r.Errorf("End", "invalid band %d-%d", start, end)
		}
		out = append(out, Band{
			Chrom: genome.NormalizeChrom(r.Get("Chromosome")),
			Start: start + 1,
			End:   end,
			Name:  r.Get("Name"),
			Stain: r.Get("Stain"),
		})
	}
	return out, nil
}

// Paths names the reference corpus files for one run.
type Paths struct {
	Hotspots   string
	GeneGroups string
	Panels     string
	Bands      string
}

// Load reads every corpus named in p.
func Load(p Paths) (*Set, error) {
	var (
		s   Set
		err error
	)
	if s.Hotspots, err = LoadHotspots(p.Hotspots); err != nil {
		return nil, err
	}
	if s.GeneGroups, err = LoadGeneGroups(p.GeneGroups); err != nil {
		return nil, err
	}
	if s.Panels, err = LoadPanels(p.Panels); err != nil {
		return nil, err
	}
	if s.Bands, err = LoadBands(p.Bands); err != nil {
		return nil, err
	}
	return &s, nil
}

func groupName(t *table.Table) string {
	if t.Sheet != "" {
		return t.Sheet
	}
	base := filepath.Base(t.File)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func orStar(s string) string {
	if s == "" {
		return "*"
	}
	return s
}
