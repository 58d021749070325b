package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/domain/model"
	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/importer/xls"
	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/transport/http/dto"
)

var errNoInput = errors.New("an input file, - for stdin, or --xls is required")

type inputFlags struct {
	xlsPath    string
	sheetIndex int
}

// loadRecords reads records from the positional argument or from --xls.
func loadRecords(args []string, in io.Reader, flags inputFlags) ([]model.Record, error) {
	switch {
	case flags.xlsPath != "" && len(args) > 0:
		return nil, fmt.Errorf("use either an input file or --xls, not both")
	case flags.xlsPath != "":
		return xls.ReadFile(flags.xlsPath, xls.Options{SheetIndex: flags.sheetIndex})
	case len(args) == 0:
		return nil, errNoInput
	}

	if args[0] == "-" {
		return decodeRecords(in)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return decodeRecords(f)
}

// decodeRecords accepts an API request body ({"data": [...]}) or a bare
// array of records.
func decodeRecords(r io.Reader) ([]model.Record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("input is empty")
	}

	if raw[0] == '[' {
		var records []model.Record
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
		return records, nil
	}

	var req dto.ExportRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("decode request body: %w", err)
	}
	if req.Data == nil {
		return nil, fmt.Errorf("input object has no data field")
	}
	return *req.Data, nil
}
