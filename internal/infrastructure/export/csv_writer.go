// Package export renders tabular data as spreadsheet-friendly CSV and XLSX files.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Column maps a record key to the header shown in the file
type Column struct {
	Key    string
	Header string
}

// Record is one exported row keyed by Column.Key. Missing keys export as "".
type Record map[string]string

// Writer writes records as CSV. By default it prefixes a UTF-8 BOM and uses
// ';' so spreadsheets configured for es-CL open the file without an import wizard.
type Writer struct {
	delimiter rune
	bom       bool
}

// WriterOption configures a Writer
type WriterOption func(*Writer)

// WithDelimiter sets the field delimiter
func WithDelimiter(d rune) WriterOption {
	return func(w *Writer) {
		w.delimiter = d
	}
}

// WithoutBOM disables the UTF-8 byte order mark
func WithoutBOM() WriterOption {
	return func(w *Writer) {
		w.bom = false
	}
}

// NewWriter creates a CSV writer
func NewWriter(opts ...WriterOption) *Writer {
	w := &Writer{delimiter: ';', bom: true}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the header row followed by every record in column order
func (w *Writer) Write(out io.Writer, columns []Column, records []Record) error {
	if len(columns) == 0 {
		return fmt.Errorf("csv export: no columns")
	}
	if w.bom {
		if _, err := out.Write([]byte("\xEF\xBB\xBF")); err != nil {
			return fmt.Errorf("csv export: %w", err)
		}
	}

	cw := csv.NewWriter(out)
	cw.Comma = w.delimiter

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Header
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("csv export: %w", err)
	}

	line := make([]string, len(columns))
	for _, r := range records {
		for i, c := range columns {
			line[i] = r[c.Key]
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("csv export: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv export: %w", err)
	}
	return nil
}

// Bytes renders the file into memory
func (w *Writer) Bytes(columns []Column, records []Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := w.Write(&buf, columns, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Filename builds "<title>_<DD-MM-YYYY>.<ext>": the title lower-cased with each
// whitespace run replaced by "_", and the date as written in es-CL.
func Filename(title string, at time.Time, ext string) string {
	lower := cases.Lower(language.LatinAmericanSpanish).String(title)
	return whitespaceRun.ReplaceAllString(lower, "_") + "_" + at.Format("02-01-2006") + "." + ext
}
