// Package xls reads legacy BIFF .xls workbooks into export records. The
// first row of the sheet names the fields; every following row becomes one
// record.
package xls

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yamitzky/xlrd-go/xlrd"

	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/domain/model"
)

var ErrNoHeader = errors.New("sheet has no header row")

type Options struct {
	SheetIndex               int
	IgnoreWorkbookCorruption bool
}

// grid is the part of *xlrd.Sheet the reader needs.
type grid interface {
	Rows() int
	Cols() int
	CellType(rowx, colx int) int
	CellValue(rowx, colx int) any
}

type sheetGrid struct {
	sheet *xlrd.Sheet
}

func (g sheetGrid) Rows() int { return g.sheet.NRows }
func (g sheetGrid) Cols() int { return g.sheet.NCols }
func (g sheetGrid) CellType(rowx, colx int) int { return g.sheet.CellType(rowx, colx) }
func (g sheetGrid) CellValue(rowx, colx int) any { return g.sheet.CellValue(rowx, colx) }

// ReadFile loads one sheet of the workbook at path.
func ReadFile(path string, opts Options) ([]model.Record, error) {
	return read(path, nil, opts)
}

// ReadBytes is ReadFile for a workbook already in memory.
func ReadBytes(content []byte, opts Options) ([]model.Record, error) {
	return read("", content, opts)
}

func read(path string, content []byte, opts Options) ([]model.Record, error) {
	book, err := xlrd.OpenWorkbook(path, &xlrd.OpenWorkbookOptions{
		FileContents:             content,
		OnDemand:                 true,
		IgnoreWorkbookCorruption: opts.IgnoreWorkbookCorruption,
	})
	if err != nil {
		return nil, fmt.Errorf("open xls workbook: %w", err)
	}
	defer book.ReleaseResources()

	sheet, err := book.SheetByIndex(opts.SheetIndex)
	if err != nil {
		return nil, fmt.Errorf("open sheet %d: %w", opts.SheetIndex, err)
	}

	return records(sheetGrid{sheet: sheet}, book.Datemode)
}

func records(g grid, datemode int) ([]model.Record, error) {
	if g.Rows() == 0 || g.Cols() == 0 {
		return nil, ErrNoHeader
	}

	header := headerNames(g)
	out := make([]model.Record, 0, g.Rows()-1)
	for rowx := 1; rowx < g.Rows(); rowx++ {
		rec := model.NewRecord()
		for colx, name := range header {
			value, ok := cellValue(g.CellType(rowx, colx), g.CellValue(rowx, colx), datemode)
			if !ok {
				continue
			}
			rec.Set(name, value)
		}
		if rec.Len() == 0 {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// headerNames reads row 0. Blank headers get the column letter and repeated
// names get a numeric suffix so no column is lost.
func headerNames(g grid) []string {
	names := make([]string, g.Cols())
	seen := make(map[string]int, g.Cols())
	for colx := range names {
		name := ""
		if value, ok := cellValue(g.CellType(0, colx), g.CellValue(0, colx), 0); ok {
			name = strings.TrimSpace(fmt.Sprint(value))
		}
		if name == "" {
			name = "Column " + xlrd.Colname(colx)
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = name + " (" + strconv.Itoa(n) + ")"
		}
		names[colx] = name
	}
	return names
}

// cellValue maps an xlrd cell onto a record value. ok is false for empty
// cells, which leaves the field absent from the record.
func cellValue(ctype int, value any, datemode int) (any, bool) {
	switch ctype {
	case xlrd.XL_CELL_EMPTY, xlrd.XL_CELL_BLANK:
		return nil, false
	case xlrd.XL_CELL_TEXT:
		s := fmt.Sprint(value)
		return s, s != ""
	case xlrd.XL_CELL_NUMBER:
		f, ok := toFloat(value)
		if !ok {
			return fmt.Sprint(value), true
		}
		return number(f), true
	case xlrd.XL_CELL_DATE:
		f, ok := toFloat(value)
		if !ok {
			return fmt.Sprint(value), true
		}
		return dateText(f, datemode), true
	case xlrd.XL_CELL_BOOLEAN:
		switch v := value.(type) {
		case bool:
			return v, true
		case int:
			return v != 0, true
		}
		return fmt.Sprint(value), true
	case xlrd.XL_CELL_ERROR:
		if code, ok := value.(byte); ok {
			if text, ok := xlrd.ErrorTextFromCode[code]; ok {
				return text, true
			}
		}
		if code, ok := value.(int); ok {
			if text, ok := xlrd.ErrorTextFromCode[byte(code)]; ok {
				return text, true
			}
		}
		return "#ERROR", true
	default:
		if value == nil {
			return nil, false
		}
		return fmt.Sprint(value), true
	}
}

func number(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f)
	}
	return f
}

func dateText(f float64, datemode int) string {
	t, err := xlrd.XldateAsDatetime(f, datemode)
	if err != nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	switch {
	case f < 1:
		return t.Format("15:04:05")
	case f != math.Floor(f):
		return t.Format("2006-01-02 15:04:05")
	default:
		return t.Format("2006-01-02")
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
