package export

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/domain/model"
)

const (
	columnPadding  = 2
	maxColumnWidth = 50
)

// Grid is a table laid out for the spreadsheet encoder. Rows hold typed
// cell values aligned to Header.
type Grid struct {
	Sheet  string
	Header []string
	Rows   [][]any
	Widths []float64
	// Truncated lists columns holding text longer than a cell can store.
	Truncated []TruncatedColumn
}

// TruncatedColumn counts the cells of one column that the encoder cuts to
// excelize.TotalCellChars characters. FirstRow is the 1-based sheet row.
type TruncatedColumn struct {
	Column   string
	Cells    int
	FirstRow int
}

func buildGrid(sheet string, table model.Table) Grid {
	grid := Grid{
		Sheet:  sheet,
		Header: append([]string(nil), table.Columns...),
		Rows:   make([][]any, 0, len(table.Records)),
		Widths: make([]float64, len(table.Columns)),
	}

	textLen := make([]int, len(table.Columns))
	truncated := make([]TruncatedColumn, len(table.Columns))
	for i, col := range table.Columns {
		textLen[i] = utf8.RuneCountInString(col)
		truncated[i].Column = col
		if textLen[i] > excelize.TotalCellChars {
			truncated[i].Cells, truncated[i].FirstRow = 1, 1
		}
	}

	for r, rec := range table.Records {
		row := make([]any, len(table.Columns))
		for i, col := range table.Columns {
			cell := projectCell(rec, col)
			row[i] = cell
			n := utf8.RuneCountInString(displayText(cell))
			if n > textLen[i] {
				textLen[i] = n
			}
			if _, isText := cell.(string); isText && n > excelize.TotalCellChars {
				if truncated[i].Cells == 0 {
					truncated[i].FirstRow = r + 2
				}
				truncated[i].Cells++
			}
		}
		grid.Rows = append(grid.Rows, row)
	}

	for _, tc := range truncated {
		if tc.Cells > 0 {
			grid.Truncated = append(grid.Truncated, tc)
		}
	}

	for i, n := range textLen {
		grid.Widths[i] = float64(min(n+columnPadding, maxColumnWidth))
	}

	return grid
}

// projectCell returns the value placed at (rec, col). Missing fields and
// nulls become empty text; values the encoder cannot type are rendered as
// text instead of failing the export.
func projectCell(rec model.Record, col string) any {
	v, ok := rec.Get(col)
	if !ok || v == nil {
		return ""
	}

	switch val := v.(type) {
	case string, bool, int64:
		return val
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case float32:
		return projectFloat(float64(val))
	case float64:
		return projectFloat(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return projectFloat(f)
		}
		return val.String()
	case map[string]any, []any:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	default:
		return fmt.Sprint(val)
	}
}

func projectFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return f
}

// displayText is the text a cell shows; it drives column sizing.
func displayText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// TextRow returns row i rendered as cell display text.
func (g Grid) TextRow(i int) []string {
	out := make([]string, len(g.Header))
	for j, v := range g.Rows[i] {
		out[j] = displayText(v)
	}
	return out
}
