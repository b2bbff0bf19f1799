package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/wgs-report/internal/pipeline"
)

// Config keys of the reference corpora; usually set once in the config
// file and shared by every case.
const (
	keyHotspots     = "references.hotspots"
	keyGeneGroups   = "references.gene_groups"
	keyPanels       = "references.panels"
	keyBands        = "references.cytobands"
	keyClinVar      = "clinvar.vcf"
	keyClinVarIndex = "clinvar.index"
	keyOutDir       = "out_dir"
	keyTSV          = "tsv"
	keySheets       = "validate.sheets"
)

func newGenerateCmd(a *app) *cobra.Command {
	var narrative, output string

	cmd := &cobra.Command{
		Use:   "generate <variants> <structural-variants>",
		Short: "Build the annotated workbook for one case",
		Long: `Annotate the reported small variants and structural variants of one case
and write the review workbook. The workbook is validated before it is
published; nothing is written at the final path if validation fails.`,
		Example: `  wgs-report generate CASE0001-variants.csv CASE0001-structural.csv \
    --narrative supplementary.html --out-dir reports/

  # reference corpora from flags instead of ~/.wgs-report.yaml
  wgs-report generate --hotspots hotspots.csv --gene-groups groups.xlsx \
    --panels panels.xlsx --cytobands cytobands.tsv \
    --clinvar clinvar.vcf.gz v.csv sv.csv`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.bindFlags(cmd, map[string]string{
				keyHotspots:     "hotspots",
				keyGeneGroups:   "gene-groups",
				keyPanels:       "panels",
				keyBands:        "cytobands",
				keyClinVar:      "clinvar",
				keyClinVarIndex: "clinvar-index",
				keyOutDir:       "out-dir",
				keyTSV:          "tsv",
				keySheets:       "sheets",
			}); err != nil {
				return err
			}

			in := pipeline.Inputs{
				Hotspots:     a.v.GetString(keyHotspots),
				GeneGroups:   a.v.GetString(keyGeneGroups),
				Panels:       a.v.GetString(keyPanels),
				Bands:        a.v.GetString(keyBands),
				ClinVar:      a.v.GetString(keyClinVar),
				ClinVarIndex: a.v.GetString(keyClinVarIndex),
				Narrative:    narrative,
				Variants:     args[0],
				Structural:   args[1],
			}
			for flag, val := range map[string]string{
				"hotspots":    in.Hotspots,
				"gene-groups": in.GeneGroups,
				"panels":      in.Panels,
				"cytobands":   in.Bands,
			} {
				if val == "" {
					return usagef("--%s is required (flag or config)", flag)
				}
			}

			opts := pipeline.Options{
				OutDir: a.v.GetString(keyOutDir),
				Output: output,
				TSV:    a.v.GetBool(keyTSV),
				Sheets: a.v.GetStringSlice(keySheets),
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			rep, err := pipeline.Run(ctx, in, opts, a.logger)
			if err != nil {
				return err
			}
			for _, s := range rep.Stats {
				a.logger.Debug("corpus", zap.String("name", s.Corpus),
					zap.Int("matched", s.Matched), zap.Int("matches", s.Matches))
			}
			fmt.Fprintln(a.out, rep.Path)
			for _, p := range rep.TSV {
				fmt.Fprintln(a.out, p)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.String("hotspots", "", "hotspot table (CSV/TSV/XLSX)")
	f.String("gene-groups", "", "gene group workbook, one sheet per group")
	f.String("panels", "", "gene panel workbook, one sheet per panel")
	f.String("cytobands", "", "cytoband table (TSV/XLSX)")
	f.String("clinvar", "", "ClinVar VCF (bgzipped for a tabix index)")
	f.String("clinvar-index", "", "ClinVar index: .tbi or .duckdb (default <clinvar>.tbi)")
	f.StringVar(&narrative, "narrative", "", "narrative HTML of the case")
	f.StringP("out-dir", "d", ".", "output directory")
	f.StringVarP(&output, "output", "o", "", "output file name (default derived from <variants>)")
	f.Bool("tsv", false, "also write tab-delimited exports of the SNV and SV rows")
	f.StringSlice("sheets", nil, "sheets that must be present and non-empty (default SNV,SV[,Narrative])")
	return cmd
}
