package narrative

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	b, err := Load(filepath.Join("..", "..", "testdata", "narrative.html"))
	require.NoError(t, err)

	var names []string
	for _, tbl := range b.Tables {
		names = append(names, tbl.Name)
	}
	// The germline table matches "Germline info" only, since "Sample info"
	// needs more headers than it has.
	assert.Equal(t, []string{"Patient info", "Tumour info", "Germline info", "Sequencing info", "Table 5"}, names)

	patient := b.Tables[0]
	assert.Equal(t, []string{"Clinical Indication", "Sex"}, patient.Headers)
	assert.Equal(t, [][]string{{"Colorectal adenocarcinoma", "F"}}, patient.Rows)

	seq := b.Tables[3]
	assert.Equal(t, "0.92", seq.Rows[0][8])

	sig := b.Tables[4]
	assert.Equal(t, []string{"Signature", "Weight"}, sig.Headers)

	assert.Equal(t, "4.21", b.TMB)
	assert.Equal(t, []string{"figures/circos.png", "figures/signatures.png"}, b.Images)
}

func TestParse_Empty(t *testing.T) {
	b, err := Parse(strings.NewReader("<html><body><p>nothing here</p></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, b.Tables)
	assert.Empty(t, b.Images)
	assert.Equal(t, "", b.TMB)
}

func TestParse_TMBInStrong(t *testing.T) {
	b, err := Parse(strings.NewReader(
		"<div><strong>Total number of somatic\n non-synonymous small variants per megabase (TMB)</strong> 12.5 </div>"))
	require.NoError(t, err)
	assert.Equal(t, "12.5", b.TMB)
}

func TestParse_TMBFollowedByMoreText(t *testing.T) {
	b, err := Parse(strings.NewReader(
		"<p><b>" + TMBLabel + "</b>: 4.2<br>See figure 3 for signatures</p>"))
	require.NoError(t, err)
	assert.Equal(t, "4.2", b.TMB)
}

func TestParse_TMBInsideTable(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"same cell", "<table><tr><td><b>" + TMBLabel + "</b>: 7.1</td></tr></table>"},
		{"next cell", "<table><tr><td><strong>" + TMBLabel + "</strong></td><td>7.1</td><td>high</td></tr></table>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Parse(strings.NewReader(tt.html))
			require.NoError(t, err)
			assert.Equal(t, "7.1", b.TMB)
			assert.Len(t, b.Tables, 1)
		})
	}
}

func TestParse_ImageInsideTable(t *testing.T) {
	b, err := Parse(strings.NewReader(
		`<table><tr><th>Figure</th></tr><tr><td><img src="figures/cnv.png"></td></tr></table>` +
			`<img src="figures/circos.png">`))
	require.NoError(t, err)
	require.Len(t, b.Tables, 1)
	assert.Equal(t, []string{"Figure"}, b.Tables[0].Headers)
	assert.Equal(t, []string{"figures/cnv.png", "figures/circos.png"}, b.Images)
}

func TestParse_TMBLabelWithoutValue(t *testing.T) {
	b, err := Parse(strings.NewReader("<table><tr><td><b>" + TMBLabel + "</b>:</td></tr></table><p>4.0</p>"))
	require.NoError(t, err)
	assert.Equal(t, "", b.TMB)
}

func TestSection_Matches(t *testing.T) {
	s := Section{
		Name:            "x",
		ExpectedHeaders: []string{"A", "B"},
		Alternatives:    map[string][]string{"B": {"Bee"}},
	}
	assert.True(t, s.matches([]string{"a", "B", "C"}))
	assert.True(t, s.matches([]string{"A", "Bee"}))
	assert.False(t, s.matches([]string{"A"}))
}

func TestSections_EachUsedOnce(t *testing.T) {
	tables := []Table{
		{Headers: []string{"Clinical Indication"}},
		{Headers: []string{"Clinical Indication"}},
	}
	nameTables(tables)
	assert.Equal(t, "Patient info", tables[0].Name)
	assert.Equal(t, "Table 2", tables[1].Name)
}
