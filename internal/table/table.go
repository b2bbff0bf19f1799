// Package table reads delimited text and spreadsheet sources into rows that
// are addressed by column name rather than position.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Format identifies how a source file is read.
type Format int

const (
	FormatCSV Format = iota
	FormatTSV
	FormatXLSX
)

// DetectFormat picks the reader from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".tsv", ".txt", ".tab":
		return FormatTSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return 0, Malformed(path, "unsupported table format %q", filepath.Ext(path))
}

// Table is a header plus the non-blank data rows of one source table.
type Table struct {
	File       string
	Sheet      string
	Header     []string
	HeaderLine int
	Rows       []Row
}

// Row is one data row. Cells has exactly len(Header) entries.
type Row struct {
	Line  int
	Cells []string
}

type rawRow struct {
	line  int
	cells []string
}

// Read reads a delimited file, or the first sheet of a workbook.
func Read(path string) (*Table, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatCSV:
		return readDelimited(path, ',')
	case FormatTSV:
		return readDelimited(path, '\t')
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, Malformed(path, "open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, Malformed(path, "workbook has no sheets")
	}
	return readSheet(f, path, sheets[0])
}

// ReadWorkbook reads every non-empty sheet of a workbook in workbook order.
// Delimited files yield a single table with an empty sheet name.
func ReadWorkbook(path string) ([]*Table, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	if format != FormatXLSX {
		t, err := Read(path)
		if err != nil {
			return nil, err
		}
		return []*Table{t}, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, Malformed(path, "open workbook: %v", err)
	}
	defer f.Close()

	var tables []*Table
	for _, sheet := range f.GetSheetList() {
		t, err := readSheet(f, path, sheet)
		if err != nil {
			var mi *MalformedInputError
			if errors.As(err, &mi) && mi.Message == msgNoHeader {
				continue
			}
			return nil, err
		}
		tables = append(tables, t)
	}
	if len(tables) == 0 {
		return nil, Malformed(path, "workbook has no non-empty sheets")
	}
	return tables, nil
}

func readDelimited(path string, comma rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	// BOMOverride switches to UTF-16 when a UTF-16 BOM is present and
	// strips a UTF-8 BOM.
	r := csv.NewReader(transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var raw []rawRow
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &MalformedInputError{File: path, Line: pe.Line, Message: pe.Err.Error()}
			}
			return nil, Malformed(path, "read: %v", err)
		}
		line, _ := r.FieldPos(0)
		raw = append(raw, rawRow{line: line, cells: rec})
	}
	return build(path, "", raw, true)
}

func readSheet(f *excelize.File, path, sheet string) (*Table, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &MalformedInputError{File: path, Sheet: sheet, Message: fmt.Sprintf("read sheet: %v", err)}
	}
	raw := make([]rawRow, len(rows))
	for i, cells := range rows {
		raw[i] = rawRow{line: i + 1, cells: cells}
	}
	// Spreadsheet rows drop trailing empty cells, so short rows are padded.
	return build(path, sheet, raw, false)
}

const msgNoHeader = "no header row found"

func build(file, sheet string, raw []rawRow, strictWidth bool) (*Table, error) {
	t := &Table{File: file, Sheet: sheet}

	for _, r := range raw {
		cells := cleanCells(r.cells)
		if isBlank(cells) {
			continue
		}
		if t.Header == nil {
			t.Header = cells
			t.HeaderLine = r.line
			continue
		}

		width := len(t.Header)
		if len(cells) > width {
			if !isBlank(cells[width:]) {
				return nil, &MalformedInputError{File: file, Sheet: sheet, Line: r.line,
					Message: fmt.Sprintf("row has %d fields, header has %d", len(cells), width)}
			}
			cells = cells[:width]
		}
		if len(cells) < width {
			if strictWidth {
				return nil, &MalformedInputError{File: file, Sheet: sheet, Line: r.line,
					Message: fmt.Sprintf("row has %d fields, header has %d", len(cells), width)}
			}
			cells = append(cells, make([]string, width-len(cells))...)
		}
		t.Rows = append(t.Rows, Row{Line: r.line, Cells: cells})
	}

	if t.Header == nil {
		return nil, &MalformedInputError{File: file, Sheet: sheet, Message: msgNoHeader}
	}
	return t, nil
}

func cleanCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))
	}
	return out
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
