package csvimport

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Import error codes
const (
	ErrCodeImportCSVParsing      = "ERR_IMPORT_CSV_PARSING"
	ErrCodeImportValidation      = "ERR_IMPORT_VALIDATION"
	ErrCodeImportRequiredField   = "ERR_IMPORT_REQUIRED_FIELD"
	ErrCodeImportInvalidFormat   = "ERR_IMPORT_INVALID_FORMAT"
	ErrCodeImportInvalidLength   = "ERR_IMPORT_INVALID_LENGTH"
	ErrCodeImportInvalidRut      = "ERR_IMPORT_INVALID_RUT"
	ErrCodeImportInvalidPhone    = "ERR_IMPORT_INVALID_PHONE"
	ErrCodeImportDuplicateInFile = "ERR_IMPORT_DUPLICATE_IN_FILE"
	ErrCodeImportAlreadyExists   = "ERR_IMPORT_ALREADY_EXISTS"
	ErrCodeImportTooManyRows     = "ERR_IMPORT_TOO_MANY_ROWS"
)

// Common import errors
var (
	ErrEmptyFile       = errors.New("CSV file is empty")
	ErrInvalidEncoding = errors.New("invalid file encoding, expected UTF-8")
	ErrMissingHeader   = errors.New("CSV file missing header row")
	ErrNoDataRows      = errors.New("CSV file contains no data rows")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
)

// MissingColumnsError reports required columns absent from the header row
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Columns, ", ")
}

// RowError represents an error in a specific row
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// NewRowError creates a new RowError
func NewRowError(row int, column, code, message string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message}
}

// NewRowErrorWithValue creates a new RowError carrying the offending value
func NewRowErrorWithValue(row int, column, code, message, value string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message, Value: value}
}

// ErrorCollection keeps the first maxErrors errors and counts the rest
type ErrorCollection struct {
	errors     []RowError
	maxErrors  int
	totalCount int
}

// NewErrorCollection creates a new ErrorCollection with a maximum error limit
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{
		errors:    make([]RowError, 0),
		maxErrors: maxErrors,
	}
}

// Add adds an error to the collection
func (ec *ErrorCollection) Add(err RowError) {
	ec.totalCount++
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// AddRequiredError adds a required field error
func (ec *ErrorCollection) AddRequiredError(row int, column string) {
	ec.Add(NewRowError(row, column, ErrCodeImportRequiredField,
		fmt.Sprintf("El campo '%s' es obligatorio", column)))
}

// AddLengthError adds a length validation error
func (ec *ErrorCollection) AddLengthError(row int, column string, maxLen int) {
	ec.Add(NewRowError(row, column, ErrCodeImportInvalidLength,
		fmt.Sprintf("El campo '%s' no puede superar %d caracteres", column, maxLen)))
}

// AddDuplicateError adds an in-file duplicate error
func (ec *ErrorCollection) AddDuplicateError(row int, column, value string, firstRow int) {
	ec.Add(NewRowErrorWithValue(row, column, ErrCodeImportDuplicateInFile,
		fmt.Sprintf("Valor repetido, ya aparece en la fila %d", firstRow), value))
}

// Errors returns the collected errors
func (ec *ErrorCollection) Errors() []RowError {
	return ec.errors
}

// TotalCount returns the total number of errors including those not kept
func (ec *ErrorCollection) TotalCount() int {
	return ec.totalCount
}

// HasErrors returns true if there are any errors
func (ec *ErrorCollection) HasErrors() bool {
	return ec.totalCount > 0
}

// IsTruncated returns true if some errors were dropped due to the limit
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.totalCount > ec.maxErrors
}

// Merge appends every error kept by other
func (ec *ErrorCollection) Merge(other *ErrorCollection) {
	for _, e := range other.errors {
		ec.Add(e)
	}
	ec.totalCount += other.totalCount - len(other.errors)
}

// ValidationResult is the outcome of checking a file before committing it
type ValidationResult struct {
	TotalRows   int                 `json:"total_rows"`
	ValidRows   int                 `json:"valid_rows"`
	ErrorRows   int                 `json:"error_rows"`
	Errors      []RowError          `json:"errors"`
	Preview     []map[string]string `json:"preview,omitempty"`
	IsTruncated bool                `json:"is_truncated,omitempty"`
	TotalErrors int                 `json:"total_errors,omitempty"`
}

// SetErrors copies the errors of an ErrorCollection
func (vr *ValidationResult) SetErrors(ec *ErrorCollection) {
	vr.Errors = ec.Errors()
	vr.IsTruncated = ec.IsTruncated()
	vr.TotalErrors = ec.TotalCount()
}

// RejectRow turns a row that passed field validation into an error row.
// Errors stay ordered by row.
func (vr *ValidationResult) RejectRow(e RowError) {
	if vr.ValidRows > 0 {
		vr.ValidRows--
	}
	vr.ErrorRows++
	vr.TotalErrors++
	i, _ := slices.BinarySearchFunc(vr.Errors, e.Row+1, func(x RowError, row int) int {
		return cmp.Compare(x.Row, row)
	})
	vr.Errors = slices.Insert(vr.Errors, i, e)
}

// IsValid returns true if no row failed
func (vr *ValidationResult) IsValid() bool {
	return vr.ErrorRows == 0 && vr.TotalErrors == 0
}
