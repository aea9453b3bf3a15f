package csvimport

import (
	"cmp"
	"context"
	"io"
	"slices"
)

// ImportProcessor validates an uploaded file against a rule set
type ImportProcessor struct {
	maxFileSize int64
	maxRows     int
	maxErrors   int
	previewRows int
	aliases     map[string]string
}

// ProcessorOption configures an ImportProcessor
type ProcessorOption func(*ImportProcessor)

// WithMaxFileSize sets the maximum accepted file size in bytes
func WithMaxFileSize(size int64) ProcessorOption {
	return func(p *ImportProcessor) {
		p.maxFileSize = size
	}
}

// WithMaxRows sets the maximum number of data rows
func WithMaxRows(rows int) ProcessorOption {
	return func(p *ImportProcessor) {
		p.maxRows = rows
	}
}

// WithMaxErrors sets how many row errors are reported
func WithMaxErrors(n int) ProcessorOption {
	return func(p *ImportProcessor) {
		p.maxErrors = n
	}
}

// WithPreviewRows sets how many valid rows are echoed back
func WithPreviewRows(rows int) ProcessorOption {
	return func(p *ImportProcessor) {
		p.previewRows = rows
	}
}

// WithAliases sets the header aliases passed to the parser
func WithAliases(aliases map[string]string) ProcessorOption {
	return func(p *ImportProcessor) {
		p.aliases = aliases
	}
}

// NewImportProcessor creates a processor with defaults of 5MB, 5000 rows and 100 errors
func NewImportProcessor(opts ...ProcessorOption) *ImportProcessor {
	p := &ImportProcessor{
		maxFileSize: 5 << 20,
		maxRows:     5000,
		maxErrors:   100,
		previewRows: 5,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Validate parses the file and checks every row. It returns the rows that
// passed; callers commit them only when the result is valid.
// File-level problems (encoding, header, size) are returned as errors.
func (p *ImportProcessor) Validate(ctx context.Context, r io.Reader, rules []FieldRule) (*ValidationResult, []*Row, error) {
	data, err := io.ReadAll(io.LimitReader(r, p.maxFileSize+1))
	if err != nil {
		return nil, nil, err
	}
	if int64(len(data)) > p.maxFileSize {
		return nil, nil, ErrFileTooLarge
	}

	parser, err := ParseFromBytes(data, WithHeaderAliases(p.aliases))
	if err != nil {
		return nil, nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, nil, err
	}

	validator := NewFieldValidator(rules, p.maxErrors)
	if missing := parser.MissingHeaders(validator.RequiredColumns()); len(missing) > 0 {
		return nil, nil, &MissingColumnsError{Columns: missing}
	}

	parseErrors := NewErrorCollection(p.maxErrors)
	result := &ValidationResult{}
	var valid []*Row

	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		row, err := parser.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors.Add(NewRowError(parser.CurrentRow(), "", ErrCodeImportCSVParsing, err.Error()))
			result.TotalRows++
			result.ErrorRows++
			continue
		}
		if row.IsEmpty() {
			continue
		}

		result.TotalRows++
		if result.TotalRows > p.maxRows {
			parseErrors.Add(NewRowError(row.LineNumber, "", ErrCodeImportTooManyRows,
				"El archivo supera el máximo de filas permitido"))
			result.TotalRows--
			break
		}

		if !validator.ValidateRow(row) {
			result.ErrorRows++
			continue
		}

		result.ValidRows++
		valid = append(valid, row)
		if len(result.Preview) < p.previewRows {
			result.Preview = append(result.Preview, row.Data)
		}
	}

	if result.TotalRows == 0 {
		return nil, nil, ErrNoDataRows
	}

	parseErrors.Merge(validator.Errors())
	slices.SortStableFunc(parseErrors.errors, func(a, b RowError) int {
		return cmp.Compare(a.Row, b.Row)
	})
	result.SetErrors(parseErrors)

	return result, valid, nil
}
