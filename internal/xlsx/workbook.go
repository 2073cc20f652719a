package xlsx

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Workbook wraps a parsed spreadsheet and exposes cell and row access by
// sheet name. It carries no knowledge of any bank layout.
type Workbook struct {
	file *excelize.File
}

// Open parses a workbook from raw bytes. A corrupt or non-spreadsheet byte
// stream is a fatal parse error for the caller.
func Open(data []byte) (*Workbook, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return &Workbook{file: file}, nil
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

// SheetNames returns the workbook's sheet names in order.
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// HasSheet reports whether a sheet with the given name exists.
func (w *Workbook) HasSheet(name string) bool {
	for _, sheet := range w.file.GetSheetList() {
		if sheet == name {
			return true
		}
	}
	return false
}

// Rows returns all rows of a sheet as raw string cells. Empty cells come back
// as "" and trailing empty cells may be absent per row.
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// Cell returns a single cell value by 1-based row and column.
func (w *Workbook) Cell(sheet string, row, col int) (string, error) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", fmt.Errorf("cell (%d,%d): %w", row, col, err)
	}
	value, err := w.file.GetCellValue(sheet, name)
	if err != nil {
		return "", fmt.Errorf("read cell %s!%s: %w", sheet, name, err)
	}
	return value, nil
}
