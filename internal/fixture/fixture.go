// Package fixture writes a small but complete case to disk: every
// reference corpus, a tabix-indexed ClinVar extract, a narrative and the
// reported variant tables. It backs the end-to-end tests of the pipeline,
// the HTTP service and the command line.
package fixture

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/inodb/wgs-report/internal/tabix"
)

// Case holds the paths written by Write.
type Case struct {
	Dir        string
	Hotspots   string
	GeneGroups string
	Panels     string
	Bands      string
	ClinVar    string // bgzipped VCF; the .tbi sits beside it
	ClinVarVCF string // plain VCF the index was built from
	Narrative  string
	Variants   string
	Structural string
}

// Number of data rows in the reported tables.
const (
	VariantRows    = 4
	StructuralRows = 2
)

const hotspots = `Chromosome,Start,End,Gene,Label,Samples,Tumour types
7,140753336,140753336,BRAF,V600E,1200,melanoma
chr12,25245350,25245350,KRAS,G12D,800,colorectal
`

const bands = "#chrom\tchromStart\tchromEnd\tname\tgieStain\n" +
	"chr7\t139800000\t142800000\tq34\tgpos100\n" +
	"chr9\t130700000\t133100000\tq34.12\tgneg\n" +
	"chr12\t25000000\t27000000\tp12.1\tgpos100\n" +
	"chr17\t7500000\t10800000\tp13.1\tgneg\n" +
	"chr17\t39500000\t40200000\tq12\tgpos50\n" +
	"chr22\t23100000\t25500000\tq11.23\tgneg\n"

const clinvarVCF = `##fileformat=VCFv4.1
##source=ClinVar
##INFO=<ID=CLNSIG,Number=.,Type=String,Description="Aggregate germline classification for this single variant">
##INFO=<ID=CLNSIGCONF,Number=.,Type=String,Description="Conflicting germline classification for this single variant">
##INFO=<ID=CLNREVSTAT,Number=.,Type=String,Description="ClinVar review status">
##INFO=<ID=GENEINFO,Number=1,Type=String,Description="Gene(s) for the variant">
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO
7	140753336	13961	A	T	.	.	CLNREVSTAT=reviewed_by_expert_panel;CLNSIG=Pathogenic;GENEINFO=BRAF:673
7	140753336	376069	A	G	.	.	CLNREVSTAT=criteria_provided,_single_submitter;CLNSIG=Uncertain_significance;GENEINFO=BRAF:673
12	25245350	12583	C	A,T	.	.	CLNREVSTAT=criteria_provided,_multiple_submitters,_no_conflicts;CLNSIG=Pathogenic/Likely_pathogenic;GENEINFO=KRAS:3845
17	7674220	12347	C	T	.	.	CLNREVSTAT=criteria_provided,_conflicting_classifications;CLNSIG=Conflicting_classifications_of_pathogenicity;CLNSIGCONF=Pathogenic(12)|Uncertain_significance(1);GENEINFO=TP53:7157
`

const narrativeHTML = `<html><body>
<h2>Patient</h2>
<table>
<tr><th>Patient ID</th><th>Sex</th><th>Date of birth</th><th>Clinical indication</th></tr>
<tr><td>P0001</td><td>Female</td><td>1970-01-01</td><td>Melanoma</td></tr>
</table>
<p><b>Total number of somatic non-synonymous small variants per megabase</b>: 4.21</p>
<img src="figures/circos.png">
</body></html>
`

// The second SNV queries an allele ClinVar does not hold at that position;
// the fourth has neither a gene nor a parseable coordinate.
const variants = `Origin,Domain,Gene,GRCh38 coordinates;ref/alt allele,CDS change and protein change,Predicted consequences,VAF,Alt allele/total read depth,Genotype,Gene mode of action,ClinVar ID,Population germline allele frequency (GE | gnomAD)
Somatic,1,BRAF,chr7:140753336;A>T,c.1799T>A;p.(Val600Glu),missense_variant,0.42,42/100,het,GOF,13961.0,0 | 0
Somatic,1,TP53;MDM2,chr17:7674220;C>G,c.743G>C;p.(Arg248Pro),missense_variant;Error,0.55;LOH,55/100,hom,LOF,,
Somatic,2,KRAS,chr12:25245350;C>T,c.35G>A;p.(Gly12Asp),missense_variant,0.31,31/100,het,GOF,12583,
Germline,3,,not-a-coordinate,,,,,,,,
`

const structural = `Event domain,Gene,Impacted transcript region,GRCh38 coordinates,Chromosomal bands,Type,Size,Confidence/support,Population germline allele frequency,Gene mode of action
1,BCR;ABL1,intron 13,chr22:23290000;chr9:130714000,22q11.23;9q34.12,Translocation;BCR::ABL1,,PR-12/30;SR-5/28,,GOF
2,ERBB2,whole gene,chr17:39700000-39730000,17q12,GAIN(8),30000,PR-8/40,0.001,GOF
`

// Write creates the case files under dir.
func Write(dir string) (*Case, error) {
	c := &Case{
		Dir:        dir,
		Hotspots:   filepath.Join(dir, "hotspots.csv"),
		GeneGroups: filepath.Join(dir, "gene_groups.xlsx"),
		Panels:     filepath.Join(dir, "panels.xlsx"),
		Bands:      filepath.Join(dir, "cytobands.tsv"),
		ClinVarVCF: filepath.Join(dir, "clinvar.vcf"),
		ClinVar:    filepath.Join(dir, "clinvar.vcf.gz"),
		Narrative:  filepath.Join(dir, "supplementary.html"),
		Variants:   filepath.Join(dir, "CASE0001-variants.csv"),
		Structural: filepath.Join(dir, "CASE0001-structural.csv"),
	}

	for path, content := range map[string]string{
		c.Hotspots:   hotspots,
		c.Bands:      bands,
		c.ClinVarVCF: clinvarVCF,
		c.Narrative:  narrativeHTML,
		c.Variants:   variants,
		c.Structural: structural,
	} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, err
		}
	}

	if err := writeWorkbook(c.GeneGroups, []sheet{
		{"MAPK", [][]any{
			{"Gene", "Driver", "Entities", "Role in cancer", "Reference"},
			{"BRAF", "V600E", "Melanoma", "Oncogene", "PMID:12068308"},
			{"KRAS", "", "", "Oncogene", ""},
		}},
		{"Fusions", [][]any{
			{"Gene", "Driver", "Entities"},
			{"ABL1", "BCR::ABL1", "CML"},
		}},
	}); err != nil {
		return nil, err
	}
	if err := writeWorkbook(c.Panels, []sheet{
		{"Melanoma", [][]any{{"Gene Symbol", "Formatted mode"}, {"BRAF", "MONOALLELIC"}}},
		{"Li-Fraumeni", [][]any{{"Gene Symbol", "Formatted mode"}, {"TP53", "MONOALLELIC"}}},
	}); err != nil {
		return nil, err
	}

	if err := tabix.Build(c.ClinVarVCF, c.ClinVar); err != nil {
		return nil, fmt.Errorf("index clinvar: %w", err)
	}
	return c, nil
}

type sheet struct {
	name string
	rows [][]any
}

func writeWorkbook(path string, sheets []sheet) error {
	f := excelize.NewFile()
	defer f.Close()
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return err
		}
		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}
