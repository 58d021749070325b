package main

import (
	"fmt"

	"github.com/bjaus/fmter"
	"github.com/spf13/cobra"

	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/domain/model"
)

var previewFormats = []fmter.Format{fmter.Table, fmter.CSV, fmter.TSV, fmter.Markdown, fmter.JSON, fmter.JSONL}

var previewFlags struct {
	input  inputFlags
	format string
	limit  int
}

var previewCmd = &cobra.Command{
	Use:   "preview [input.json|-]",
	Short: "Print resolved columns and cell text",
	Long: `Preview shows the table an export would produce: resolved column order,
blank cells for missing or null fields and the text each cell displays.

Examples:
  sheetctl preview records.json
  sheetctl preview records.json --format markdown --limit 20`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringVarP(&previewFlags.format, "format", "f", string(fmter.Table), "output format: table, csv, tsv, markdown, json, jsonl")
	previewCmd.Flags().IntVarP(&previewFlags.limit, "limit", "n", 0, "show at most n rows (0 = all)")
	previewCmd.Flags().StringVar(&previewFlags.input.xlsPath, "xls", "", "read records from a legacy .xls workbook")
	previewCmd.Flags().IntVar(&previewFlags.input.sheetIndex, "sheet-index", 0, "sheet to read with --xls")
}

func runPreview(cmd *cobra.Command, args []string) error {
	format, err := parsePreviewFormat(previewFlags.format)
	if err != nil {
		return err
	}

	records, err := loadRecords(args, cmd.InOrStdin(), previewFlags.input)
	if err != nil {
		return err
	}

	service, err := newExportService()
	if err != nil {
		return err
	}
	grid, err := service.Grid(records)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}

	n := len(grid.Rows)
	if previewFlags.limit > 0 && previewFlags.limit < n {
		n = previewFlags.limit
	}

	rows := make([]previewRow, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, previewRow{
			title:  fmt.Sprintf("%s (%d of %d rows)", grid.Sheet, n, len(grid.Rows)),
			header: grid.Header,
			cells:  grid.TextRow(i),
			values: grid.Rows[i],
		})
	}

	return fmter.Write(cmd.OutOrStdout(), format, rows...)
}

func parsePreviewFormat(s string) (fmter.Format, error) {
	f, err := fmter.ParseFormat(s)
	if err != nil {
		return "", err
	}
	for _, allowed := range previewFormats {
		if f == allowed {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", fmter.ErrUnsupportedFormat, s)
}

// previewRow is one projected record.
type previewRow struct {
	title  string
	header []string
	cells  []string
	values []any
}

func (r previewRow) Row() []string { return r.cells }

func (r previewRow) Header() []string { return r.header }

func (r previewRow) Title() string { return r.title }

func (r previewRow) NumberHeader() string { return "#" }

// MarshalJSON keeps the resolved column order and the typed cell values.
func (r previewRow) MarshalJSON() ([]byte, error) {
	rec := model.NewRecord()
	for i, name := range r.header {
		rec.Set(name, r.values[i])
	}
	return rec.MarshalJSON()
}
