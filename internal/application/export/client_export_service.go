// Package exportapp produces client listings as downloadable files.
package exportapp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	partnerapp "github.com/pymeboard/backend/internal/application/partner"
	"github.com/pymeboard/backend/internal/domain/shared"
	"github.com/pymeboard/backend/internal/infrastructure/export"
	"github.com/pymeboard/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// Media types of generated exports
const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

// Format is an export file format
type Format string

// Supported export formats
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat reads a format name case-insensitively; "" means CSV
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX, FormatPDF:
		return f, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// DefaultClientTitle names client exports
const DefaultClientTitle = "Listado de Clientes"

var (
	// ErrStorageDisabled is returned by Archive when no object storage is configured
	ErrStorageDisabled = shared.NewDomainError("STORAGE_DISABLED", "El almacenamiento de exportaciones no está configurado")
	// ErrPrintingDisabled is returned for PDF exports when no printer is configured
	ErrPrintingDisabled = shared.NewDomainError("PRINTING_DISABLED", "La exportación a PDF no está habilitada")
	// ErrUnsupportedFormat rejects formats other than csv, xlsx and pdf
	ErrUnsupportedFormat = shared.NewDomainError("UNSUPPORTED_EXPORT_FORMAT", "Formato de exportación no soportado, use csv, xlsx o pdf")
)

// ClientColumns is the column mapping of client exports
var ClientColumns = []export.Column{
	{Key: "business_name", Header: "Razón Social"},
	{Key: "rut", Header: "RUT"},
	{Key: "email", Header: "Email"},
	{Key: "phone", Header: "Teléfono"},
	{Key: "address", Header: "Dirección"},
	{Key: "created_at", Header: "Fecha de Registro"},
}

// ClientLister lists every active client matching a search term
type ClientLister interface {
	ListAll(ctx context.Context, orgID uuid.UUID, search string) ([]partnerapp.ClientResponse, error)
}

// ArchiveStorage keeps generated files and returns download links
type ArchiveStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	DownloadURL(ctx context.Context, key string) (string, time.Time, error)
}

// ListingPrinter prints tabular listings as PDF
type ListingPrinter interface {
	Print(ctx context.Context, l *printing.Listing) ([]byte, error)
}

// ExportFile is a rendered export
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
}

// ArchiveResult describes an export stored for later download
type ArchiveResult struct {
	Filename  string    `json:"filename"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	Rows      int       `json:"rows"`
}

// ClientExportService renders client listings as CSV, XLSX or PDF
type ClientExportService struct {
	clients  ClientLister
	archive  ArchiveStorage
	printer  ListingPrinter
	csv      *export.Writer
	xlsx     *export.XLSXWriter
	company  string
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// Option configures a ClientExportService
type Option func(*ClientExportService)

// WithArchive enables Archive with the given storage
func WithArchive(a ArchiveStorage) Option {
	return func(s *ClientExportService) {
		s.archive = a
	}
}

// WithPrinter enables PDF exports
func WithPrinter(p ListingPrinter) Option {
	return func(s *ClientExportService) {
		s.printer = p
	}
}

// WithCompanyName sets the company shown in PDF headers
func WithCompanyName(name string) Option {
	return func(s *ClientExportService) {
		s.company = name
	}
}

// WithLocation sets the zone used for dates in file names and rows
func WithLocation(loc *time.Location) Option {
	return func(s *ClientExportService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *ClientExportService) {
		s.now = now
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *ClientExportService) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewClientExportService creates a new ClientExportService
func NewClientExportService(clients ClientLister, opts ...Option) *ClientExportService {
	s := &ClientExportService{
		clients:  clients,
		csv:      export.NewWriter(),
		xlsx:     export.NewXLSXWriter(),
		location: time.UTC,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export renders the organization's active clients matching search in the
// given format
func (s *ClientExportService) Export(ctx context.Context, orgID uuid.UUID, search string, format Format) (*ExportFile, error) {
	format, err := ParseFormat(string(format))
	if err != nil {
		return nil, err
	}
	if format == FormatPDF && s.printer == nil {
		return nil, ErrPrintingDisabled
	}

	clients, err := s.clients.ListAll(ctx, orgID, search)
	if err != nil {
		return nil, err
	}

	records := make([]export.Record, len(clients))
	for i, c := range clients {
		records[i] = s.clientRecord(c)
	}

	now := s.now().In(s.location)
	file := &ExportFile{
		Filename: export.Filename(DefaultClientTitle, now, string(format)),
		Rows:     len(records),
	}

	switch format {
	case FormatCSV:
		file.ContentType = ContentTypeCSV
		file.Data, err = s.csv.Bytes(ClientColumns, records)
	case FormatXLSX:
		file.ContentType = ContentTypeXLSX
		file.Data, err = s.xlsx.Bytes(ClientColumns, records)
	case FormatPDF:
		file.ContentType = ContentTypePDF
		file.Data, err = s.printer.Print(ctx, s.listing(records, now))
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}

// Archive renders the export, stores it under exports/<organization>/ and
// returns a presigned link
func (s *ClientExportService) Archive(ctx context.Context, orgID uuid.UUID, search string, format Format) (*ArchiveResult, error) {
	if s.archive == nil {
		return nil, ErrStorageDisabled
	}

	file, err := s.Export(ctx, orgID, search, format)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("exports/%s/%s", orgID, file.Filename)
	if err := s.archive.Put(ctx, key, file.Data, file.ContentType); err != nil {
		return nil, err
	}
	url, expiresAt, err := s.archive.DownloadURL(ctx, key)
	if err != nil {
		return nil, err
	}

	s.logger.Info("client export archived",
		zap.String("organization_id", orgID.String()),
		zap.String("key", key),
		zap.Int("rows", file.Rows),
	)

	return &ArchiveResult{
		Filename:  file.Filename,
		Key:       key,
		URL:       url,
		ExpiresAt: expiresAt,
		Rows:      file.Rows,
	}, nil
}

func (s *ClientExportService) listing(records []export.Record, at time.Time) *printing.Listing {
	l := &printing.Listing{
		CompanyName: s.company,
		Title:       DefaultClientTitle,
		GeneratedAt: at,
		Columns:     make([]string, len(ClientColumns)),
		Rows:        make([][]string, len(records)),
	}
	for i, col := range ClientColumns {
		l.Columns[i] = col.Header
	}
	for r, rec := range records {
		row := make([]string, len(ClientColumns))
		for i, col := range ClientColumns {
			row[i] = rec[col.Key]
		}
		l.Rows[r] = row
	}
	return l
}

func (s *ClientExportService) clientRecord(c partnerapp.ClientResponse) export.Record {
	phone := c.PhoneDisplay
	if phone == "" {
		phone = c.Phone
	}
	return export.Record{
		"business_name": c.BusinessName,
		"rut":           c.Rut,
		"email":         c.Email,
		"phone":         phone,
		"address":       c.Address,
		"created_at":    c.CreatedAt.In(s.location).Format("02-01-2006"),
	}
}
