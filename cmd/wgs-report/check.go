package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inodb/wgs-report/internal/pipeline"
	"github.com/inodb/wgs-report/internal/validate"
	"github.com/inodb/wgs-report/internal/workbook"
)

func newCheckCmd(a *app) *cobra.Command {
	var snvRows, svRows int

	cmd := &cobra.Command{
		Use:   "check <workbook>",
		Short: "Validate a rendered workbook",
		Example: `  wgs-report check CASE0001.xlsx
  wgs-report check --sheets SNV,SV,Narrative --snv-rows 12 CASE0001.xlsx`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.bindFlags(cmd, map[string]string{keySheets: "sheets"}); err != nil {
				return err
			}
			sheets := a.v.GetStringSlice(keySheets)
			if len(sheets) == 0 {
				sheets = pipeline.DefaultSheets
			}
			for _, s := range sheets {
				if !knownSheet(s) {
					return usagef("unknown sheet %q (want one of %s)", s, strings.Join(workbook.SheetOrder, ", "))
				}
			}

			exp := pipeline.Expectations(sheets, snvRows, svRows)
			if err := validate.Workbook(args[0], exp); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "ok %s (%s)\n", args[0], strings.Join(exp.Names(), ", "))
			return nil
		},
	}

	cmd.Flags().StringSlice("sheets", nil, "sheets that must be present and non-empty (default SNV,SV)")
	cmd.Flags().IntVar(&snvRows, "snv-rows", -1, "expected SNV data rows (-1 to skip)")
	cmd.Flags().IntVar(&svRows, "sv-rows", -1, "expected SV data rows (-1 to skip)")
	return cmd
}

func knownSheet(name string) bool {
	for _, s := range workbook.SheetOrder {
		if s == name {
			return true
		}
	}
	return false
}
