package validate

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeBook(t *testing.T, sheets map[string][][]any, order []string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

var defaults = Expectations{Sheets: []Sheet{
	Expect("SNV", "Gene", "Status"),
	Expect("SV", "Type", "Status"),
}}

func TestWorkbook_OK(t *testing.T) {
	path := writeBook(t, map[string][][]any{
		"SNV": {{"Gene", "Status"}, {"BRAF", "Resolved"}},
		"SV":  {{"Type", "Status"}, {"GAIN", "Resolved"}},
	}, []string{"SNV", "SV"})

	assert.NoError(t, Workbook(path, defaults))
}

func TestWorkbook_MissingSVSheet(t *testing.T) {
	path := writeBook(t, map[string][][]any{
		"SNV": {{"Gene", "Status"}, {"BRAF", "Resolved"}, {"KRAS", "Resolved"}},
	}, []string{"SNV"})

	err := Workbook(path, defaults)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "SV", ve.Sheet)
	assert.Equal(t, "", ve.Column)
	assert.Equal(t, `validation failed: sheet "SV": sheet missing`, err.Error())
}

func TestWorkbook_NoDataRows(t *testing.T) {
	path := writeBook(t, map[string][][]any{
		"SNV": {{"Gene", "Status"}, {"BRAF", "Resolved"}},
		"SV":  {{"Type", "Status"}},
	}, []string{"SNV", "SV"})

	err := Workbook(path, defaults)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "SV", ve.Sheet)
	assert.Equal(t, "no data rows", ve.Reason)
}

func TestWorkbook_EmptyRequiredColumn(t *testing.T) {
	path := writeBook(t, map[string][][]any{
		"SNV": {{"Gene", "Status"}, {"", "Resolved"}, {"", "Resolved"}},
		"SV":  {{"Type", "Status"}, {"GAIN", "Resolved"}},
	}, []string{"SNV", "SV"})

	err := Workbook(path, defaults)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "SNV", ve.Sheet)
	assert.Equal(t, "Gene", ve.Column)
	assert.Equal(t, "column entirely empty", ve.Reason)
}

func TestWorkbook_MissingColumn(t *testing.T) {
	path := writeBook(t, map[string][][]any{
		"SNV": {{"Gene", "Status"}, {"BRAF", "Resolved"}},
		"SV":  {{"Status"}, {"Resolved"}},
	}, []string{"SNV", "SV"})

	err := Workbook(path, defaults)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Type", ve.Column)
	assert.Equal(t, "column missing", ve.Reason)
}

func TestWorkbook_RowCount(t *testing.T) {
	path := writeBook(t, map[string][][]any{
		"SNV": {{"Gene"}, {"BRAF"}, {"KRAS"}},
	}, []string{"SNV"})

	exp := Expectations{Sheets: []Sheet{{Name: "SNV", Required: []string{"Gene"}, Rows: 2}}}
	assert.NoError(t, Workbook(path, exp))

	exp.Sheets[0].Rows = 3
	err := Workbook(path, exp)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "expected 3 data rows, found 2", ve.Reason)
}

func TestWorkbook_NotAWorkbook(t *testing.T) {
	err := Workbook(filepath.Join(t.TempDir(), "missing.xlsx"), defaults)
	require.Error(t, err)
	var ve *ValidationError
	assert.False(t, errors.As(err, &ve))
}

func TestExpectations_Names(t *testing.T) {
	assert.Equal(t, []string{"SNV", "SV"}, defaults.Names())
}
