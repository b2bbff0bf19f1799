package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/wgs-report/internal/clinvar"
	"github.com/inodb/wgs-report/internal/tabix"
)

func newClinVarIndexCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "clinvar-index <clinvar.vcf[.gz]>",
		Short: "Index a ClinVar VCF for allele lookups",
		Long: `Build a lookup index over a position-sorted ClinVar VCF.

  tabix   writes a bgzipped copy of the VCF and its .tbi index
  duckdb  loads every record into a DuckDB database`,
		Example: `  wgs-report clinvar-index clinvar.vcf
  wgs-report clinvar-index --format duckdb -o clinvar.duckdb clinvar.vcf.gz`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.bindFlags(cmd, map[string]string{"clinvar.format": "format"}); err != nil {
				return err
			}
			src := args[0]
			format := a.v.GetString("clinvar.format")
			dst := output
			if dst == "" {
				dst = defaultIndexPath(src, format)
			}

			switch format {
			case "tabix":
				if dst == src {
					return usagef("%s is already compressed; give the bgzipped copy a name with -o", src)
				}
				if err := tabix.Build(src, dst); err != nil {
					return err
				}
				a.logger.Info("clinvar indexed", zap.String("vcf", dst), zap.String("index", dst+".tbi"))
				fmt.Fprintln(a.out, dst)
				fmt.Fprintln(a.out, dst+".tbi")
			case "duckdb":
				info, err := clinvar.BuildDuckDB(src, dst)
				if err != nil {
					return err
				}
				a.logger.Info("clinvar indexed", zap.String("db", dst), zap.Int64("records", info.Records))
				fmt.Fprintln(a.out, dst)
			default:
				return usagef("unknown index format %q (want tabix or duckdb)", format)
			}
			return nil
		},
	}

	cmd.Flags().String("format", "tabix", "index format: tabix or duckdb")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path")
	return cmd
}

// defaultIndexPath names the index after the VCF: clinvar.vcf becomes
// clinvar.vcf.gz (tabix) or clinvar.duckdb (duckdb).
func defaultIndexPath(src, format string) string {
	if format == "duckdb" {
		stem := strings.TrimSuffix(strings.TrimSuffix(src, ".gz"), ".vcf")
		return stem + ".duckdb"
	}
	if strings.HasSuffix(src, ".gz") {
		return src
	}
	return src + ".gz"
}
