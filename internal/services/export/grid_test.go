package export

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/domain/model"
)

func TestProjectCell(t *testing.T) {
	rec := model.RecordOf(
		"text", "hello",
		"null", nil,
		"int", int64(18),
		"plain_int", 7,
		"float", 95.67,
		"bool", true,
		"nested", map[string]any{"b": 1, "a": "x"},
		"list", []any{int64(1), "two"},
		"nan", math.NaN(),
	)

	cases := map[string]any{
		"text":      "hello",
		"null":      "",
		"missing":   "",
		"int":       int64(18),
		"plain_int": int64(7),
		"float":     95.67,
		"bool":      true,
		"nested":    `{"a":"x","b":1}`,
		"list":      `[1,"two"]`,
		"nan":       "NaN",
	}
	for col, want := range cases {
		assert.Equal(t, want, projectCell(rec, col), col)
	}
}

func TestDisplayText(t *testing.T) {
	assert.Equal(t, "", displayText(""))
	assert.Equal(t, "106972", displayText(int64(106972)))
	assert.Equal(t, "0.07", displayText(0.07))
	assert.Equal(t, "TRUE", displayText(true))
	assert.Equal(t, "FALSE", displayText(false))
}

func TestBuildGridWidths(t *testing.T) {
	table := model.Table{
		Columns: model.ColumnSpec{"DDP (RUB)", "Qty", "Описание"},
		Records: []model.Record{
			model.RecordOf("DDP (RUB)", int64(106972), "Qty", int64(1234567)),
			model.RecordOf("Описание", "пылесос вертикальный"),
		},
	}

	grid := buildGrid("Data Export", table)

	assert.Equal(t, []string{"DDP (RUB)", "Qty", "Описание"}, grid.Header)
	assert.Equal(t, []float64{11, 9, 22}, grid.Widths)
	assert.Equal(t, [][]any{
		{int64(106972), int64(1234567), ""},
		{"", "", "пылесос вертикальный"},
	}, grid.Rows)
}

func TestBuildGridDoesNotAliasColumns(t *testing.T) {
	cols := model.ColumnSpec{"a"}
	grid := buildGrid("s", model.Table{Columns: cols})
	grid.Header[0] = "changed"

	assert.Equal(t, "a", cols[0])
}

func TestGridTextRow(t *testing.T) {
	grid := Grid{
		Header: []string{"a", "b", "c", "d"},
		Rows:   [][]any{{int64(7), true, 1.5, ""}},
	}
	assert.Equal(t, []string{"7", "TRUE", "1.5", ""}, grid.TextRow(0))
}

func TestBuildGridReportsOversizedText(t *testing.T) {
	long := strings.Repeat("я", 40000)
	table := model.Table{
		Columns: model.ColumnSpec{"Model", "Notes"},
		Records: []model.Record{
			model.RecordOf("Model", "short", "Notes", "fine"),
			model.RecordOf("Model", "x", "Notes", long),
			model.RecordOf("Notes", long),
		},
	}

	grid := buildGrid("Data Export", table)

	assert.Equal(t, []TruncatedColumn{{Column: "Notes", Cells: 2, FirstRow: 3}}, grid.Truncated)
	assert.Equal(t, float64(maxColumnWidth), grid.Widths[1])
}

func TestBuildGridNoTruncationAtLimit(t *testing.T) {
	table := model.Table{
		Columns: model.ColumnSpec{"Notes"},
		Records: []model.Record{model.RecordOf("Notes", strings.Repeat("a", 32767))},
	}

	assert.Empty(t, buildGrid("Data Export", table).Truncated)
}
