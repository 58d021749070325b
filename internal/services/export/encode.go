package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	headerFill  = "366092"
	headerColor = "FFFFFF"
	borderColor = "000000"
)

type styleSet struct {
	header int
	data   int
}

func thinBorder() []excelize.Border {
	sides := []string{"left", "right", "top", "bottom"}
	border := make([]excelize.Border, 0, len(sides))
	for _, side := range sides {
		border = append(border, excelize.Border{Type: side, Color: borderColor, Style: 1})
	}
	return border
}

func registerStyles(f *excelize.File) (styleSet, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: headerColor, Size: 12},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder(),
	})
	if err != nil {
		return styleSet{}, fmt.Errorf("header style: %w", err)
	}

	data, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		Border:    thinBorder(),
	})
	if err != nil {
		return styleSet{}, fmt.Errorf("data style: %w", err)
	}

	return styleSet{header: header, data: data}, nil
}

// encode renders grid into an xlsx workbook with a single sheet.
func encode(grid Grid) (out []byte, err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			out, err = nil, fmt.Errorf("close workbook: %w", cerr)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), grid.Sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	styles, err := registerStyles(f)
	if err != nil {
		return nil, err
	}

	if len(grid.Header) > 0 {
		if err := writeCells(f, grid); err != nil {
			return nil, err
		}
		if err := applyLayout(f, grid, styles); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeCells(f *excelize.File, grid Grid) error {
	header := make([]any, len(grid.Header))
	for i, name := range grid.Header {
		header[i] = name
	}
	if err := f.SetSheetRow(grid.Sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}

	for i := range grid.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(grid.Sheet, cell, &grid.Rows[i]); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return nil
}

func applyLayout(f *excelize.File, grid Grid, styles styleSet) error {
	lastCol := len(grid.Header)
	headerEnd, err := excelize.CoordinatesToCellName(lastCol, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(grid.Sheet, "A1", headerEnd, styles.header); err != nil {
		return fmt.Errorf("style header row: %w", err)
	}

	if len(grid.Rows) > 0 {
		dataEnd, err := excelize.CoordinatesToCellName(lastCol, len(grid.Rows)+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(grid.Sheet, "A2", dataEnd, styles.data); err != nil {
			return fmt.Errorf("style data rows: %w", err)
		}
	}

	for i, width := range grid.Widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(grid.Sheet, name, name, width); err != nil {
			return fmt.Errorf("set width of column %s: %w", name, err)
		}
	}

	return f.SetPanes(grid.Sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
		Selection: []excelize.Selection{
			{SQRef: "A2", ActiveCell: "A2", Pane: "bottomLeft"},
		},
	})
}
