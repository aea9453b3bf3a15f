package printing

import (
	"context"
	"embed"
	"html/template"
	"time"

	"go.uber.org/zap"
)

//go:embed templates/listing.html
var templateFS embed.FS

const listingTemplate = "templates/listing.html"

// listingFooter is printed by Chrome on every page; the pageNumber class is
// filled in per page
const listingFooter = `<div style="width:100%;font-size:8px;color:#646464;text-align:right;padding:0 14mm;">Página <span class="pageNumber"></span></div>`

// DefaultCompanyName heads listings when no company name is configured
const DefaultCompanyName = "Mi Empresa SpA"

// Listing is a tabular report: a company header, a title, the generation date
// and one row of cells per record
type Listing struct {
	CompanyName string
	Title       string
	GeneratedAt time.Time
	Columns     []string
	Rows        [][]string
}

// ListingPrinter renders listings to PDF
type ListingPrinter struct {
	renderer PDFRenderer
	engine   *TemplateEngine
	tmpl     *template.Template
	paper    PaperSize
	margins  Margins
	company  string
	timeout  time.Duration
	logger   *zap.Logger
}

// ListingOption configures a ListingPrinter
type ListingOption func(*ListingPrinter)

// WithTemplateEngine replaces the default engine
func WithTemplateEngine(e *TemplateEngine) ListingOption {
	return func(p *ListingPrinter) {
		if e != nil {
			p.engine = e
		}
	}
}

// WithPaper sets the sheet size
func WithPaper(size PaperSize) ListingOption {
	return func(p *ListingPrinter) {
		if size.IsValid() {
			p.paper = size
		}
	}
}

// WithCompanyName sets the name used when a listing carries none
func WithCompanyName(name string) ListingOption {
	return func(p *ListingPrinter) {
		if name != "" {
			p.company = name
		}
	}
}

// WithRenderTimeout bounds each PDF rendering
func WithRenderTimeout(d time.Duration) ListingOption {
	return func(p *ListingPrinter) {
		p.timeout = d
	}
}

// WithPrinterLogger sets the logger
func WithPrinterLogger(l *zap.Logger) ListingOption {
	return func(p *ListingPrinter) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewListingPrinter parses the embedded listing template
func NewListingPrinter(renderer PDFRenderer, opts ...ListingOption) (*ListingPrinter, error) {
	p := &ListingPrinter{
		renderer: renderer,
		engine:   NewTemplateEngine(),
		paper:    PaperA4,
		margins:  DefaultMargins(),
		company:  DefaultCompanyName,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	content, err := templateFS.ReadFile(listingTemplate)
	if err != nil {
		return nil, err
	}
	p.tmpl, err = p.engine.Parse(listingTemplate, string(content))
	if err != nil {
		return nil, err
	}
	return p, nil
}

// RenderHTML renders the listing document without printing it
func (p *ListingPrinter) RenderHTML(ctx context.Context, l *Listing) (string, error) {
	if l == nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "listing is nil", nil)
	}
	data := *l
	if data.CompanyName == "" {
		data.CompanyName = p.company
	}
	return p.engine.Execute(ctx, p.tmpl, data)
}

// Print renders the listing and prints it to PDF
func (p *ListingPrinter) Print(ctx context.Context, l *Listing) ([]byte, error) {
	doc, err := p.RenderHTML(ctx, l)
	if err != nil {
		return nil, err
	}

	result, err := p.renderer.Render(ctx, &RenderRequest{
		HTML:       doc,
		PaperSize:  p.paper,
		Margins:    p.margins,
		Title:      l.Title,
		FooterHTML: listingFooter,
		Timeout:    p.timeout,
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("listing printed",
		zap.String("title", l.Title),
		zap.Int("rows", len(l.Rows)),
		zap.Int("pages", result.PageCount),
		zap.Duration("duration", result.RenderDuration),
	)
	return result.PDFData, nil
}
