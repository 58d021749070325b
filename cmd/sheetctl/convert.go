package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	exportsvc "github.com/MolotilkaHolotilka/json-to-excel-converter/internal/services/export"
)

var convertFlags struct {
	input  inputFlags
	output string
}

var convertCmd = &cobra.Command{
	Use:   "convert [input.json|-]",
	Short: "Write records to an xlsx file",
	Long: `Convert JSON records into a styled xlsx workbook.

The input is either an API request body ({"data": [...]}) or a bare array of
records. With --xls the records come from the first sheet of a legacy .xls
workbook, using its first row as field names.

Examples:
  sheetctl convert records.json -o report.xlsx
  cat records.json | sheetctl convert - -o report.xlsx
  sheetctl convert --xls legacy.xls`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertFlags.output, "output", "o", "", "output path (default export_<timestamp>.xlsx)")
	convertCmd.Flags().StringVar(&convertFlags.input.xlsPath, "xls", "", "read records from a legacy .xls workbook")
	convertCmd.Flags().IntVar(&convertFlags.input.sheetIndex, "sheet-index", 0, "sheet to read with --xls")
}

func runConvert(cmd *cobra.Command, args []string) error {
	records, err := loadRecords(args, cmd.InOrStdin(), convertFlags.input)
	if err != nil {
		return err
	}

	service, err := newExportService()
	if err != nil {
		return err
	}

	doc, err := service.Export(cmd.Context(), records)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	output := convertFlags.output
	if output == "" {
		output = exportsvc.FileName(time.Now())
	}
	if err := os.WriteFile(output, doc.Bytes, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d rows, %d columns, %d bytes)\n",
		output, doc.Rows, len(doc.Columns), doc.Size())
	return nil
}
