package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of the application meters
const MeterName = "pymeboard-backend"

// Result attribute values
const (
	ResultValid   = "valid"
	ResultInvalid = "invalid"
)

// IdentityMetrics counts RUT and phone checks and client intake.
// A nil *IdentityMetrics records nothing.
type IdentityMetrics struct {
	rutChecks      *Counter
	phoneChecks    *Counter
	clientsCreated *Counter
	importRows     *Counter
	importDuration *Histogram
}

// NewIdentityMetrics registers the instruments on meter
func NewIdentityMetrics(meter metric.Meter) (*IdentityMetrics, error) {
	rutChecks, err := NewCounter(meter, "identity.rut.checks", "RUT validations by result", "{check}")
	if err != nil {
		return nil, err
	}
	phoneChecks, err := NewCounter(meter, "identity.phone.checks", "Phone normalizations by result", "{check}")
	if err != nil {
		return nil, err
	}
	clientsCreated, err := NewCounter(meter, "clients.created", "Clients created by source", "{client}")
	if err != nil {
		return nil, err
	}
	importRows, err := NewCounter(meter, "clients.import.rows", "Imported rows by result", "{row}")
	if err != nil {
		return nil, err
	}
	importDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "clients.import.duration",
		Description: "Time spent validating and committing an import",
		Unit:        "s",
		Boundaries:  ImportDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &IdentityMetrics{
		rutChecks:      rutChecks,
		phoneChecks:    phoneChecks,
		clientsCreated: clientsCreated,
		importRows:     importRows,
		importDuration: importDuration,
	}, nil
}

func result(valid bool) string {
	if valid {
		return ResultValid
	}
	return ResultInvalid
}

// RecordRutCheck counts one RUT validation
func (m *IdentityMetrics) RecordRutCheck(ctx context.Context, valid bool) {
	if m == nil {
		return
	}
	m.rutChecks.Inc(ctx, AttrResult.String(result(valid)))
}

// RecordPhoneCheck counts one phone normalization
func (m *IdentityMetrics) RecordPhoneCheck(ctx context.Context, valid bool) {
	if m == nil {
		return
	}
	m.phoneChecks.Inc(ctx, AttrResult.String(result(valid)))
}

// RecordClientsCreated counts n new clients coming from source ("api" or "import")
func (m *IdentityMetrics) RecordClientsCreated(ctx context.Context, source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.clientsCreated.Add(ctx, int64(n), AttrSource.String(source))
}

// RecordImport records the outcome of one import run
func (m *IdentityMetrics) RecordImport(ctx context.Context, validRows, errorRows int, d time.Duration) {
	if m == nil {
		return
	}
	m.importRows.Add(ctx, int64(validRows), AttrResult.String(ResultValid))
	m.importRows.Add(ctx, int64(errorRows), AttrResult.String(ResultInvalid))
	m.importDuration.RecordDuration(ctx, d)
}
