package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasjlepore/stepcadence"
	"github.com/xuri/excelize/v2"
)

// ReadFile loads a raw table from an .xlsx workbook or a .csv export. sheet
// selects the worksheet; empty means the first one.
func ReadFile(path, sheet string) (*stepcadence.RawTable, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
		defer f.Close()
		return readWorkbook(f, sheet)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadCSV(f)
	default:
		return nil, fmt.Errorf("unsupported input extension %q (expected .xlsx|.csv)", ext)
	}
}

// ReadBytes is ReadFile for in-memory inputs; name only selects the format.
func ReadBytes(name string, data []byte, sheet string) (*stepcadence.RawTable, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
		defer f.Close()
		return readWorkbook(f, sheet)
	case ".csv":
		return ReadCSV(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported input extension %q (expected .xlsx|.csv)", ext)
	}
}

func readWorkbook(f *excelize.File, sheet string) (*stepcadence.RawTable, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, stepcadence.SchemaErrorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return ParseGrid(rows)
}

// ReadCSV loads a raw table from a two-header-row CSV.
func ReadCSV(r io.Reader) (*stepcadence.RawTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return ParseGrid(rows)
}
