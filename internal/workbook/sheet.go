package workbook

import (
	"github.com/xuri/excelize/v2"
)

type dropDown struct {
	col     int
	title   string
	choices []string
}

type cellRef struct{ col, row int }

// sheetWriter appends rows to one sheet and records the layout intents
// that finalise applies.
type sheetWriter struct {
	f    *excelize.File
	name string
	row  int

	styled     []cellRef
	styles     map[cellRef]CellStyle
	widths     []float64
	freezeCol  int
	autoFilter bool
	dropDowns  []dropDown
	dataBars   []int
	maxCol     int
}

func newSheetWriter(f *excelize.File, name string) *sheetWriter {
	return &sheetWriter{f: f, name: name, styles: make(map[cellRef]CellStyle)}
}

var headerStyle = CellStyle{Bold: true, Border: true, Wrap: true}

func (w *sheetWriter) writeHeader(vals []any) error {
	row, err := w.writeRow(vals)
	if err != nil {
		return err
	}
	for i := range vals {
		w.style(i+1, row, headerStyle)
	}
	return nil
}

func (w *sheetWriter) writeRow(vals []any) (int, error) {
	w.row++
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return 0, err
	}
	if len(vals) > w.maxCol {
		w.maxCol = len(vals)
	}
	return w.row, w.f.SetSheetRow(w.name, cell, &vals)
}

// skipRow leaves a blank spacer row.
func (w *sheetWriter) skipRow() {
	w.row++
}

func (w *sheetWriter) style(col, row int, s CellStyle) {
	ref := cellRef{col, row}
	cur, ok := w.styles[ref]
	if !ok {
		w.styled = append(w.styled, ref)
	}
	w.styles[ref] = cur.merge(s)
}

func (w *sheetWriter) dataRows() int {
	if w.row == 0 {
		return 0
	}
	return w.row - 1
}

// finalise applies every queued layout intent.
func (w *sheetWriter) finalise() error {
	ids := make(map[CellStyle]int)
	for _, ref := range w.styled {
		s := w.styles[ref]
		id, ok := ids[s]
		if !ok {
			var err error
			if id, err = w.f.NewStyle(s.toExcel()); err != nil {
				return err
			}
			ids[s] = id
		}
		cell, err := excelize.CoordinatesToCellName(ref.col, ref.row)
		if err != nil {
			return err
		}
		if err := w.f.SetCellStyle(w.name, cell, cell, id); err != nil {
			return err
		}
	}

	for i, width := range w.widths {
		if width <= 0 {
			continue
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := w.f.SetColWidth(w.name, col, col, width); err != nil {
			return err
		}
	}

	if w.freezeCol > 0 {
		topLeft, err := excelize.CoordinatesToCellName(w.freezeCol+1, 2)
		if err != nil {
			return err
		}
		if err := w.f.SetPanes(w.name, &excelize.Panes{
			Freeze:      true,
			XSplit:      w.freezeCol,
			YSplit:      1,
			TopLeftCell: topLeft,
			ActivePane:  "bottomRight",
		}); err != nil {
			return err
		}
	}

	if w.autoFilter && w.maxCol > 0 {
		end, err := excelize.CoordinatesToCellName(w.maxCol, max(w.row, 1))
		if err != nil {
			return err
		}
		if err := w.f.AutoFilter(w.name, "A1:"+end, nil); err != nil {
			return err
		}
	}

	if w.row < 2 {
		return nil
	}
	for _, d := range w.dropDowns {
		ref, err := columnRange(d.col, 2, w.row)
		if err != nil {
			return err
		}
		dv := excelize.NewDataValidation(true)
		dv.Sqref = ref
		if err := dv.SetDropList(d.choices); err != nil {
			return err
		}
		dv.SetInput(d.title, "Choose from the list")
		if err := w.f.AddDataValidation(w.name, dv); err != nil {
			return err
		}
	}
	for _, col := range w.dataBars {
		ref, err := columnRange(col, 2, w.row)
		if err != nil {
			return err
		}
		if err := w.f.SetConditionalFormat(w.name, ref, []excelize.ConditionalFormatOptions{{
			Type:     "data_bar",
			Criteria: "=",
			MinType:  "num",
			MinValue: "0",
			MaxType:  "num",
			MaxValue: "1",
			BarColor: "#638EC6",
		}}); err != nil {
			return err
		}
	}
	return nil
}

func columnRange(col, from, to int) (string, error) {
	start, err := excelize.CoordinatesToCellName(col, from)
	if err != nil {
		return "", err
	}
	end, err := excelize.CoordinatesToCellName(col, to)
	if err != nil {
		return "", err
	}
	return start + ":" + end, nil
}

var thin = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

func (s CellStyle) toExcel() *excelize.Style {
	st := &excelize.Style{}
	if s.Bold {
		st.Font = &excelize.Font{Bold: true}
	}
	if s.Fill != "" {
		st.Fill = excelize.Fill{Type: "pattern", Color: []string{"#" + s.Fill}, Pattern: 1}
	}
	if s.Border {
		st.Border = thin
	}
	if s.Wrap {
		st.Alignment = &excelize.Alignment{WrapText: true, Vertical: "top"}
	}
	return st
}
