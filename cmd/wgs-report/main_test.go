package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/inodb/wgs-report/internal/fixture"
	"github.com/inodb/wgs-report/internal/workbook"
)

func runCmd(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

// isolate points HOME at an empty directory so no user config is read.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

func referenceFlags(c *fixture.Case) []string {
	return []string{
		"--hotspots", c.Hotspots,
		"--gene-groups", c.GeneGroups,
		"--panels", c.Panels,
		"--cytobands", c.Bands,
		"--clinvar", c.ClinVar,
	}
}

func TestRun_Usage(t *testing.T) {
	isolate(t)

	code, _, _ := runCmd(t)
	assert.Equal(t, ExitUsage, code)

	code, _, stderr := runCmd(t, "frobnicate")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, stderr, "unknown command")

	code, _, _ = runCmd(t, "generate", "only-one.csv")
	assert.Equal(t, ExitUsage, code)

	code, _, _ = runCmd(t, "check", "--no-such-flag", "x.xlsx")
	assert.Equal(t, ExitUsage, code)
}

func TestVersion(t *testing.T) {
	isolate(t)
	code, stdout, _ := runCmd(t, "version")
	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "wgs-report version dev (none) built unknown\n", stdout)
}

func TestGenerate(t *testing.T) {
	isolate(t)
	c, err := fixture.Write(t.TempDir())
	require.NoError(t, err)
	out := t.TempDir()

	args := append([]string{"generate", "--out-dir", out, "--narrative", c.Narrative, "--tsv"},
		referenceFlags(c)...)
	args = append(args, c.Variants, c.Structural)
	code, stdout, stderr := runCmd(t, args...)
	require.Equal(t, ExitSuccess, code, stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, filepath.Join(out, "CASE0001.xlsx"), lines[0])
	assert.Equal(t, filepath.Join(out, "CASE0001.snv.tsv"), lines[1])

	f, err := excelize.OpenFile(lines[0])
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, workbook.SheetOrder, f.GetSheetList())

	// Production logging is JSON and carries a run id.
	assert.Contains(t, stderr, `"run_id"`)
	assert.Contains(t, stderr, `"report published"`)
}

func TestGenerate_MissingReference(t *testing.T) {
	isolate(t)
	c, err := fixture.Write(t.TempDir())
	require.NoError(t, err)

	code, _, stderr := runCmd(t, "generate", "--hotspots", c.Hotspots, c.Variants, c.Structural)
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, stderr, "is required")
}

func TestGenerate_ReferencesFromConfig(t *testing.T) {
	isolate(t)
	c, err := fixture.Write(t.TempDir())
	require.NoError(t, err)
	out := t.TempDir()

	cfg := filepath.Join(t.TempDir(), "wgs.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(
		"references:\n"+
			"  hotspots: "+c.Hotspots+"\n"+
			"  gene_groups: "+c.GeneGroups+"\n"+
			"  panels: "+c.Panels+"\n"+
			"  cytobands: "+c.Bands+"\n"+
			"out_dir: "+out+"\n"), 0o644))

	// Environment overrides the file.
	t.Setenv("WGS_REPORT_CLINVAR_VCF", c.ClinVar)

	code, stdout, stderr := runCmd(t, "--config", cfg, "generate", "-o", "case.xlsx", c.Variants, c.Structural)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, filepath.Join(out, "case.xlsx")+"\n", stdout)
}

func TestGenerate_MalformedInput(t *testing.T) {
	isolate(t)
	c, err := fixture.Write(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(c.Variants, []byte("Gene\nBRAF\n"), 0o644))

	args := append([]string{"generate", "--out-dir", t.TempDir()}, referenceFlags(c)...)
	args = append(args, c.Variants, c.Structural)
	code, _, stderr := runCmd(t, args...)
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "malformed input")
}

func TestCheck(t *testing.T) {
	isolate(t)
	c, err := fixture.Write(t.TempDir())
	require.NoError(t, err)
	out := t.TempDir()

	args := append([]string{"generate", "--out-dir", out}, referenceFlags(c)...)
	args = append(args, c.Variants, c.Structural)
	code, stdout, stderr := runCmd(t, args...)
	require.Equal(t, ExitSuccess, code, stderr)
	path := strings.TrimSpace(stdout)

	code, stdout, _ = runCmd(t, "check", "--snv-rows", "4", path)
	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "ok "+path+" (SNV, SV)\n", stdout)

	code, stdout, stderr = runCmd(t, "check", "--sheets", "Germline,Summary", path)
	assert.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "ok "+path+" (Germline, Summary)\n", stdout)

	code, _, stderr = runCmd(t, "check", "--sv-rows", "7", path)
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, `validation failed: sheet "SV"`)

	code, _, _ = runCmd(t, "check", "--sheets", "Bogus", path)
	assert.Equal(t, ExitUsage, code)
}

func TestClinVarIndex(t *testing.T) {
	isolate(t)
	c, err := fixture.Write(t.TempDir())
	require.NoError(t, err)
	dir := t.TempDir()

	t.Run("tabix", func(t *testing.T) {
		dst := filepath.Join(dir, "cv.vcf.gz")
		code, stdout, stderr := runCmd(t, "clinvar-index", "-o", dst, c.ClinVarVCF)
		require.Equal(t, ExitSuccess, code, stderr)
		assert.Equal(t, dst+"\n"+dst+".tbi\n", stdout)
		assert.FileExists(t, dst+".tbi")
	})

	t.Run("duckdb", func(t *testing.T) {
		dst := filepath.Join(dir, "cv.duckdb")
		code, stdout, stderr := runCmd(t, "clinvar-index", "--format", "duckdb", "-o", dst, c.ClinVarVCF)
		require.Equal(t, ExitSuccess, code, stderr)
		assert.Equal(t, dst+"\n", stdout)
		assert.FileExists(t, dst)
	})

	t.Run("compressed input needs an output name", func(t *testing.T) {
		code, _, _ := runCmd(t, "clinvar-index", c.ClinVar)
		assert.Equal(t, ExitUsage, code)
	})

	t.Run("unknown format", func(t *testing.T) {
		code, _, _ := runCmd(t, "clinvar-index", "--format", "bam", c.ClinVarVCF)
		assert.Equal(t, ExitUsage, code)
	})
}

func TestDefaultIndexPath(t *testing.T) {
	assert.Equal(t, "clinvar.vcf.gz", defaultIndexPath("clinvar.vcf", "tabix"))
	assert.Equal(t, "clinvar.duckdb", defaultIndexPath("clinvar.vcf.gz", "duckdb"))
	assert.Equal(t, "clinvar.vcf.gz", defaultIndexPath("clinvar.vcf.gz", "tabix"))
}

func TestConfig(t *testing.T) {
	isolate(t)
	cfg := filepath.Join(t.TempDir(), "wgs.yaml")

	code, stdout, stderr := runCmd(t, "--config", cfg, "config", "set", "out_dir", "/reports")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "Set out_dir = /reports")
	assert.FileExists(t, cfg)

	code, stdout, _ = runCmd(t, "--config", cfg, "config", "get", "out_dir")
	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "/reports\n", stdout)

	code, stdout, _ = runCmd(t, "--config", cfg, "config")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "out_dir: /reports")

	code, _, _ = runCmd(t, "--config", cfg, "config", "get", "missing.key")
	assert.Equal(t, ExitError, code)
}
