// Package importapp turns validated spreadsheet rows into clients.
package importapp

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	partnerapp "github.com/pymeboard/backend/internal/application/partner"
	csvimport "github.com/pymeboard/backend/internal/infrastructure/import"
	"github.com/pymeboard/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Canonical client import columns
const (
	ColumnBusinessName = "business_name"
	ColumnRut          = "rut"
	ColumnEmail        = "email"
	ColumnPhone        = "phone"
	ColumnAddress      = "address"
)

// ClientHeaderAliases maps the Spanish spreadsheet headers to canonical columns
var ClientHeaderAliases = map[string]string{
	"razon_social":       ColumnBusinessName,
	"telefono":           ColumnPhone,
	"celular":            ColumnPhone,
	"direccion":          ColumnAddress,
	"correo":             ColumnEmail,
	"correo_electronico": ColumnEmail,
}

// ClientImportRules returns the validation rules for client import
func ClientImportRules() []csvimport.FieldRule {
	return []csvimport.FieldRule{
		csvimport.Field(ColumnBusinessName).Required().MaxLength(200).Build(),
		csvimport.Field(ColumnRut).Required().Rut().Build(),
		csvimport.Field(ColumnEmail).Email().MaxLength(200).Build(),
		csvimport.Field(ColumnPhone).Mobile().Build(),
		csvimport.Field(ColumnAddress).MaxLength(500).Build(),
	}
}

// ClientRegistry checks stored RUTs and persists a set of clients atomically
type ClientRegistry interface {
	RutLookup(ctx context.Context, orgID uuid.UUID, rut string) (bool, error)
	CreateBatch(ctx context.Context, orgID, userID uuid.UUID, reqs []partnerapp.CreateClientRequest) ([]partnerapp.ClientResponse, error)
}

// ClientImportResult reports validation and, when committed, the created clients
type ClientImportResult struct {
	*csvimport.ValidationResult
	Committed    bool                        `json:"committed"`
	ImportedRows int                         `json:"imported_rows"`
	Clients      []partnerapp.ClientResponse `json:"clients,omitempty"`
}

// ClientImportService imports clients from CSV files. A file is committed
// only when every row is valid; otherwise nothing is written.
type ClientImportService struct {
	clients   ClientRegistry
	processor *csvimport.ImportProcessor
	logger    *zap.Logger
	metrics   *telemetry.IdentityMetrics
}

// SetMetrics records import outcomes on m
func (s *ClientImportService) SetMetrics(m *telemetry.IdentityMetrics) {
	s.metrics = m
}

// NewClientImportService creates a new ClientImportService
func NewClientImportService(clients ClientRegistry, logger *zap.Logger, opts ...csvimport.ProcessorOption) *ClientImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = append([]csvimport.ProcessorOption{csvimport.WithAliases(ClientHeaderAliases)}, opts...)
	return &ClientImportService{
		clients:   clients,
		processor: csvimport.NewImportProcessor(opts...),
		logger:    logger,
	}
}

// Import validates the file and, unless dryRun is set, creates every client in one batch
func (s *ClientImportService) Import(ctx context.Context, orgID, userID uuid.UUID, r io.Reader, dryRun bool) (*ClientImportResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "client_import", "import",
		telemetry.SpanAttrOrganizationID, orgID,
		telemetry.SpanAttrDryRun, dryRun,
	)
	defer span.End()
	started := time.Now()

	validation, rows, err := s.processor.Validate(ctx, r, ClientImportRules())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	rows, err = s.rejectRegisteredRuts(ctx, orgID, validation, rows)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrRows, validation.TotalRows,
		"error_rows", validation.ErrorRows,
	)

	result := &ClientImportResult{ValidationResult: validation}
	if !validation.IsValid() {
		s.metrics.RecordImport(ctx, validation.ValidRows, validation.ErrorRows, time.Since(started))
		s.logger.Info("client import rejected",
			zap.String("organization_id", orgID.String()),
			zap.Int("total_rows", validation.TotalRows),
			zap.Int("error_rows", validation.ErrorRows),
		)
		return result, nil
	}
	if dryRun {
		return result, nil
	}

	reqs := make([]partnerapp.CreateClientRequest, len(rows))
	for i, row := range rows {
		reqs[i] = partnerapp.CreateClientRequest{
			BusinessName: row.Get(ColumnBusinessName),
			Rut:          row.Get(ColumnRut),
			Email:        row.Get(ColumnEmail),
			Phone:        row.Get(ColumnPhone),
			Address:      row.Get(ColumnAddress),
		}
	}

	created, err := s.clients.CreateBatch(ctx, orgID, userID, reqs)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result.Committed = true
	result.ImportedRows = len(created)
	result.Clients = created

	s.metrics.RecordImport(ctx, len(created), 0, time.Since(started))
	s.metrics.RecordClientsCreated(ctx, "import", len(created))
	s.logger.Info("clients imported",
		zap.String("organization_id", orgID.String()),
		zap.Int("imported_rows", len(created)),
	)
	return result, nil
}

// rejectRegisteredRuts turns rows whose RUT is already stored for the
// organization into row errors and returns the rows that remain valid
func (s *ClientImportService) rejectRegisteredRuts(ctx context.Context, orgID uuid.UUID, validation *csvimport.ValidationResult, rows []*csvimport.Row) ([]*csvimport.Row, error) {
	kept := rows[:0]
	for _, row := range rows {
		rut := row.Get(ColumnRut)
		exists, err := s.clients.RutLookup(ctx, orgID, rut)
		if err != nil {
			return nil, err
		}
		if exists {
			validation.RejectRow(csvimport.NewRowErrorWithValue(row.LineNumber, ColumnRut,
				csvimport.ErrCodeImportAlreadyExists, "Un cliente con este RUT ya existe.", rut))
			continue
		}
		kept = append(kept, row)
	}
	return kept, nil
}
