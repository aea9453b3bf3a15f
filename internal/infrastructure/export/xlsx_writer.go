package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// DefaultSheetName names the single worksheet of XLSX exports
const DefaultSheetName = "Datos"

// XLSXWriter writes records as a single-sheet workbook. Every cell is stored
// as text so RUTs and phone numbers keep their formatting.
type XLSXWriter struct {
	sheet      string
	columnWide float64
}

// XLSXOption configures an XLSXWriter
type XLSXOption func(*XLSXWriter)

// WithSheetName sets the worksheet name
func WithSheetName(name string) XLSXOption {
	return func(w *XLSXWriter) {
		if name != "" {
			w.sheet = name
		}
	}
}

// NewXLSXWriter creates an XLSX writer
func NewXLSXWriter(opts ...XLSXOption) *XLSXWriter {
	w := &XLSXWriter{sheet: DefaultSheetName, columnWide: 24}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders a bold header row followed by every record in column order
func (w *XLSXWriter) Write(out io.Writer, columns []Column, records []Record) (err error) {
	if len(columns) == 0 {
		return fmt.Errorf("xlsx export: no columns")
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", w.sheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4F46E5"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(w.sheet, cell, col.Header); err != nil {
			return err
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(w.sheet, "A1", lastHeader, headerStyle); err != nil {
		return err
	}

	for r, rec := range records {
		for i, col := range columns {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(w.sheet, cell, rec[col.Key]); err != nil {
				return err
			}
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	if err := f.SetColWidth(w.sheet, "A", lastCol, w.columnWide); err != nil {
		return err
	}
	if err := f.SetPanes(w.sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	_, err = f.WriteTo(out)
	return err
}

// Bytes renders the workbook into memory
func (w *XLSXWriter) Bytes(columns []Column, records []Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := w.Write(&buf, columns, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
