package splitter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Workbook wraps an opened spreadsheet for per-sheet CSV export.
type Workbook struct {
	f *excelize.File
}

func OpenWorkbook(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	return &Workbook{f: f}, nil
}

func (w *Workbook) Close() error {
	return w.f.Close()
}

// SheetNames returns the workbook's sheet names in document order.
func (w *Workbook) SheetNames() []string {
	return w.f.GetSheetList()
}

// SheetCSV renders one sheet as delimited text: header row first, no index
// column. Returns the encoded bytes and the number of data rows.
func (w *Workbook) SheetCSV(name string) ([]byte, int, error) {
	rows, err := w.f.GetRows(name)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows from sheet %q: %w", name, err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, 0, fmt.Errorf("failed to encode sheet %q: %w", name, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, 0, fmt.Errorf("failed to encode sheet %q: %w", name, err)
	}

	dataRows := len(rows)
	if dataRows > 0 {
		dataRows-- // exclude the header row from the count
	}
	return buf.Bytes(), dataRows, nil
}
