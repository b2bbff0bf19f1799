// Package pipeline runs one case end to end: parse, index, annotate,
// render, validate, publish.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/wgs-report/internal/annotate"
	"github.com/inodb/wgs-report/internal/clinvar"
	"github.com/inodb/wgs-report/internal/narrative"
	"github.com/inodb/wgs-report/internal/output"
	"github.com/inodb/wgs-report/internal/reference"
	"github.com/inodb/wgs-report/internal/reported"
	"github.com/inodb/wgs-report/internal/validate"
	"github.com/inodb/wgs-report/internal/workbook"
)

// Inputs are the local files for one case.
type Inputs struct {
	Hotspots   string `json:"hotspots" binding:"required"`
	GeneGroups string `json:"gene_groups" binding:"required"`
	Panels     string `json:"panels" binding:"required"`
	Bands      string `json:"cytobands" binding:"required"`

	// ClinVar is the VCF; ClinVarIndex its .tbi or DuckDB file. An empty
	// ClinVar leaves every variant "not queried".
	ClinVar      string `json:"clinvar"`
	ClinVarIndex string `json:"clinvar_index"`

	Narrative  string `json:"narrative"`
	Variants   string `json:"variants" binding:"required"`
	Structural string `json:"structural_variants" binding:"required"`
}

// Options control where and how the report is written.
type Options struct {
	OutDir string `json:"out_dir"`
	// Output overrides the derived file name.
	Output string `json:"output"`
	// TSV also writes flat exports of the SNV and SV rows.
	TSV bool `json:"tsv"`
	// Sheets overrides the sheets that must be present and non-empty.
	Sheets []string `json:"sheets"`
}

// Report describes a published run.
type Report struct {
	Path       string                 `json:"path"`
	TSV        []string               `json:"tsv,omitempty"`
	Variants   int                    `json:"variants"`
	Structural int                    `json:"structural_variants"`
	Stats      []annotate.CorpusStats `json:"stats"`
}

// DefaultOutputName derives the report name from the reported-variants
// file: everything after the last "-" is replaced by ".xlsx".
func DefaultOutputName(variantsPath string) string {
	base := filepath.Base(variantsPath)
	if i := strings.LastIndex(base, "-"); i > 0 {
		return base[:i] + ".xlsx"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".xlsx"
}

// Required columns per sheet.
var requiredColumns = map[string][]string{
	workbook.SheetSNV:       {"Gene", "GRCh38 coordinates", "Status"},
	workbook.SheetSV:        {"GRCh38 coordinates", "Type", "Status"},
	workbook.SheetGermline:  {"GRCh38 coordinates", "Status"},
	workbook.SheetSummary:   {"Section"},
	workbook.SheetReference: {"Gene", "Source"},
	workbook.SheetNarrative: {"Section"},
}

// DefaultSheets are the sheets validated when Options.Sheets is empty.
// The narrative sheet is added when a narrative is supplied.
var DefaultSheets = []string{workbook.SheetSNV, workbook.SheetSV}

// Expectations builds the validation for a case with the given row counts.
// The SNV and SV sheets must hold exactly one row per reported record.
func Expectations(sheets []string, variants, structural int) validate.Expectations {
	var exp validate.Expectations
	for _, name := range sheets {
		s := validate.Expect(name, requiredColumns[name]...)
		switch name {
		case workbook.SheetSNV:
			s.Rows = variants
		case workbook.SheetSV:
			s.Rows = structural
		}
		exp.Sheets = append(exp.Sheets, s)
	}
	return exp
}

// Run executes the pipeline. Nothing is written at the final path unless
// the rendered workbook passes validation. ctx is checked between stages.
func Run(ctx context.Context, in Inputs, opts Options, logger *zap.Logger) (*Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	refs, err := reference.Load(reference.Paths{
		Hotspots:   in.Hotspots,
		GeneGroups: in.GeneGroups,
		Panels:     in.Panels,
		Bands:      in.Bands,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("reference corpora loaded",
		zap.Int("hotspots", len(refs.Hotspots)),
		zap.Int("gene_groups", len(refs.GeneGroups)),
		zap.Int("panels", len(refs.Panels)),
		zap.Int("cytobands", len(refs.Bands)))

	variants, err := reported.LoadVariants(in.Variants)
	if err != nil {
		return nil, err
	}
	svs, err := reported.LoadStructuralVariants(in.Structural)
	if err != nil {
		return nil, err
	}
	logger.Info("reported records loaded",
		zap.Int("variants", len(variants)),
		zap.Int("structural_variants", len(svs)))

	var nb *narrative.Block
	if in.Narrative != "" {
		if nb, err = narrative.Load(in.Narrative); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cv annotate.ClinVarLookup
	if in.ClinVar != "" {
		idx, err := clinvar.Open(in.ClinVar, in.ClinVarIndex)
		if err != nil {
			return nil, err
		}
		defer idx.Close()
		cv = idx
	} else {
		logger.Warn("no clinvar source, variants are not queried")
	}

	ann := annotate.NewAnnotator(annotate.NewReferences(refs, cv))
	ann.SetLogger(logger)
	res, err := ann.AnnotateAll(variants, svs)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := opts.Output
	if name == "" {
		name = DefaultOutputName(in.Variants)
	}
	dest := filepath.Join(opts.OutDir, name)

	sheets := opts.Sheets
	if len(sheets) == 0 {
		sheets = DefaultSheets
		if nb != nil {
			sheets = append(sheets[:len(sheets):len(sheets)], workbook.SheetNarrative)
		}
	}
	exp := Expectations(sheets, len(variants), len(svs))

	outputs := []artifact{{dest, func(tmp *os.File) error { return renderWorkbook(res, nb, tmp, exp, logger) }}}
	var tsvs []string
	if opts.TSV {
		stem := strings.TrimSuffix(dest, filepath.Ext(dest))
		tsvs = []string{stem + ".snv.tsv", stem + ".sv.tsv"}
		outputs = append(outputs,
			artifact{tsvs[0], func(f *os.File) error { return output.WriteVariants(f, res) }},
			artifact{tsvs[1], func(f *os.File) error { return output.WriteStructural(f, res) }})
	}
	if err := publish(outputs); err != nil {
		return nil, err
	}
	report := &Report{Path: dest, Variants: len(variants), Structural: len(svs), Stats: res.Stats, TSV: tsvs}

	logger.Info("report published", zap.String("path", dest))
	return report, nil
}

// artifact is one file of a report and the function that fills it.
type artifact struct {
	dest  string
	write func(*os.File) error
}

// publish writes every output to a temporary file beside its destination
// and renames them into place only once all of them succeeded. The
// workbook, first in outputs, is renamed last.
func publish(outputs []artifact) (err error) {
	tmps := make([]string, 0, len(outputs))
	defer func() {
		if err != nil {
			for _, t := range tmps {
				os.Remove(t)
			}
		}
	}()
	for _, o := range outputs {
		tmp, err := stage(o.dest, o.write)
		if err != nil {
			return err
		}
		tmps = append(tmps, tmp)
	}

	var renamed []string
	for i := len(outputs) - 1; i >= 0; i-- {
		if err := os.Rename(tmps[i], outputs[i].dest); err != nil {
			for _, r := range renamed {
				os.Remove(r)
			}
			return fmt.Errorf("publish %s: %w", outputs[i].dest, err)
		}
		renamed = append(renamed, outputs[i].dest)
	}
	return nil
}

// renderWorkbook renders the case into tmp and validates the result.
func renderWorkbook(res *annotate.Result, nb *narrative.Block, tmp *os.File, exp validate.Expectations, logger *zap.Logger) error {
	r := workbook.NewRenderer()
	r.SetLogger(logger)
	f, err := r.Render(res, nb)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteTo(tmp); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := validate.Workbook(tmp.Name(), exp); err != nil {
		var ve *validate.ValidationError
		if errors.As(err, &ve) {
			logger.Error("workbook failed validation", zap.String("sheet", ve.Sheet),
				zap.String("column", ve.Column), zap.String("reason", ve.Reason))
		}
		return err
	}
	return nil
}

// stage runs write against a temporary file in dest's directory and returns
// its path. On failure the temporary file is removed.
func stage(dest string, write func(*os.File) error) (_ string, err error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return "", err
	}
	if err = tmp.Close(); err != nil {
		return "", err
	}
	return tmp.Name(), nil
}
