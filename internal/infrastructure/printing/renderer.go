package printing

import (
	"context"
	"strings"
	"time"
)

// PaperSize is a sheet size in millimeters
type PaperSize struct {
	WidthMM  float64
	HeightMM float64
}

// Paper sizes supported by listings
var (
	PaperA4     = PaperSize{WidthMM: 210, HeightMM: 297}
	PaperLetter = PaperSize{WidthMM: 215.9, HeightMM: 279.4}
)

// PaperSizeByName resolves "A4" or "LETTER", ignoring case
func PaperSizeByName(name string) (PaperSize, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "A4":
		return PaperA4, true
	case "LETTER":
		return PaperLetter, true
	}
	return PaperSize{}, false
}

// IsValid reports whether both dimensions are positive
func (p PaperSize) IsValid() bool {
	return p.WidthMM > 0 && p.HeightMM > 0
}

// Margins in millimeters
type Margins struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// DefaultMargins returns the margins used for listings
func DefaultMargins() Margins {
	return Margins{Top: 14, Right: 14, Bottom: 16, Left: 14}
}

// RenderRequest contains the parameters for rendering HTML to PDF
type RenderRequest struct {
	// HTML content to render
	HTML string
	// PaperSize defines the output paper dimensions
	PaperSize PaperSize
	Landscape bool
	Margins   Margins
	// Title for the PDF document metadata
	Title string
	// Header HTML content (optional)
	HeaderHTML string
	// Footer HTML content (optional)
	FooterHTML string
	// Timeout overrides the default rendering timeout
	Timeout time.Duration
}

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer defines the interface for rendering HTML to PDF
type PDFRenderer interface {
	// Render converts HTML content to a PDF document
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	// Close releases any resources held by the renderer
	Close() error
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
