package partner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pymeboard/backend/internal/domain/partner"
	"github.com/pymeboard/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ClientStats is the cached form of the dashboard counters
type ClientStats struct {
	Total        int64     `json:"total"`
	NewThisMonth int64     `json:"new_this_month"`
	MonthStart   time.Time `json:"month_start"`
}

// StatsCache stores client counters per organization and period ("2006-01").
// Implementations must treat a miss as (nil, false, nil).
type StatsCache interface {
	Get(ctx context.Context, orgID uuid.UUID, period string) (*ClientStats, bool, error)
	Set(ctx context.Context, orgID uuid.UUID, period string, stats ClientStats) error
	Invalidate(ctx context.Context, orgID uuid.UUID) error
}

// StatsInvalidationHandler drops cached counters whenever the set of active
// clients of an organization changes.
type StatsInvalidationHandler struct {
	cache  StatsCache
	logger *zap.Logger
}

// NewStatsInvalidationHandler creates a new StatsInvalidationHandler
func NewStatsInvalidationHandler(cache StatsCache, logger *zap.Logger) *StatsInvalidationHandler {
	return &StatsInvalidationHandler{cache: cache, logger: logger}
}

// EventTypes implements shared.EventHandler
func (h *StatsInvalidationHandler) EventTypes() []string {
	return []string{
		partner.EventTypeClientCreated,
		partner.EventTypeClientUpdated,
		partner.EventTypeClientDeactivated,
	}
}

// Handle implements shared.EventHandler
func (h *StatsInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if err := h.cache.Invalidate(ctx, event.OrganizationID()); err != nil {
		return err
	}
	h.logger.Debug("client stats invalidated",
		zap.String("organization_id", event.OrganizationID().String()),
		zap.String("event_type", event.EventType()),
	)
	return nil
}

var _ shared.EventHandler = (*StatsInvalidationHandler)(nil)
