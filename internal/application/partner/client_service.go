package partner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pymeboard/backend/internal/domain/partner"
	"github.com/pymeboard/backend/internal/domain/shared"
	"github.com/pymeboard/backend/internal/domain/shared/valueobject"
	"github.com/pymeboard/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const statsPeriodLayout = "2006-01"

// ClientService handles client-related business operations
type ClientService struct {
	clientRepo partner.ClientRepository
	publisher  shared.EventPublisher
	statsCache StatsCache
	metrics    *telemetry.IdentityMetrics
	logger     *zap.Logger
	location   *time.Location
	now        func() time.Time
}

// ClientServiceOption configures a ClientService
type ClientServiceOption func(*ClientService)

// WithEventPublisher publishes the aggregate's domain events after every save
func WithEventPublisher(p shared.EventPublisher) ClientServiceOption {
	return func(s *ClientService) { s.publisher = p }
}

// WithStatsCache caches dashboard counters
func WithStatsCache(c StatsCache) ClientServiceOption {
	return func(s *ClientService) { s.statsCache = c }
}

// WithMetrics counts clients created through the API
func WithMetrics(m *telemetry.IdentityMetrics) ClientServiceOption {
	return func(s *ClientService) { s.metrics = m }
}

// WithLocation sets the time zone used to compute "this month"
func WithLocation(loc *time.Location) ClientServiceOption {
	return func(s *ClientService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithClock overrides the current time source
func WithClock(now func() time.Time) ClientServiceOption {
	return func(s *ClientService) { s.now = now }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) ClientServiceOption {
	return func(s *ClientService) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo partner.ClientRepository, opts ...ClientServiceOption) *ClientService {
	s := &ClientService{
		clientRepo: clientRepo,
		logger:     zap.NewNop(),
		location:   time.UTC,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new client for the organization
func (s *ClientService) Create(ctx context.Context, orgID, userID uuid.UUID, req CreateClientRequest) (*ClientResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "client", "create",
		telemetry.SpanAttrOrganizationID, orgID)
	defer span.End()

	client, err := buildClient(orgID, userID, req)
	if err != nil {
		return nil, err
	}

	exists, err := s.clientRepo.ExistsByRut(ctx, orgID, client.Rut)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, partner.ErrDuplicateRut
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrClientID, client.ID)
	s.metrics.RecordClientsCreated(ctx, "api", 1)
	s.publishEvents(ctx, client)

	response := ToClientResponse(client)
	return &response, nil
}

// CreateBatch registers several clients in one transaction.
// Duplicates, whether against stored clients or within the batch, fail the whole batch.
func (s *ClientService) CreateBatch(ctx context.Context, orgID, userID uuid.UUID, reqs []CreateClientRequest) ([]ClientResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "client", "create_batch",
		telemetry.SpanAttrOrganizationID, orgID,
		telemetry.SpanAttrRows, len(reqs),
	)
	defer span.End()

	clients := make([]*partner.Client, 0, len(reqs))
	seen := make(map[string]int, len(reqs))

	for i, req := range reqs {
		client, err := buildClient(orgID, userID, req)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if first, dup := seen[client.Rut.Clean()]; dup {
			return nil, shared.NewDomainError(partner.ErrDuplicateRut.Code,
				fmt.Sprintf("El RUT %s está repetido en las filas %d y %d", client.Rut, first, i+1))
		}
		seen[client.Rut.Clean()] = i + 1

		exists, err := s.clientRepo.ExistsByRut(ctx, orgID, client.Rut)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError(partner.ErrDuplicateRut.Code,
				fmt.Sprintf("Un cliente con el RUT %s ya existe.", client.Rut))
		}
		clients = append(clients, client)
	}

	if err := s.clientRepo.SaveBatch(ctx, clients); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	responses := make([]ClientResponse, len(clients))
	for i, c := range clients {
		s.publishEvents(ctx, c)
		responses[i] = ToClientResponse(c)
	}
	return responses, nil
}

// GetByID retrieves a client by ID
func (s *ClientService) GetByID(ctx context.Context, orgID, clientID uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByIDForOrganization(ctx, orgID, clientID)
	if err != nil {
		return nil, err
	}

	response := ToClientResponse(client)
	return &response, nil
}

// List retrieves a page of active clients
func (s *ClientService) List(ctx context.Context, orgID uuid.UUID, filter ClientListFilter) ([]ClientResponse, int64, error) {
	domainFilter := toDomainFilter(filter)

	clients, err := s.clientRepo.FindActive(ctx, orgID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.clientRepo.CountActive(ctx, orgID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToClientResponses(clients), total, nil
}

// ListAll retrieves every active client matching search, for export
func (s *ClientService) ListAll(ctx context.Context, orgID uuid.UUID, search string) ([]ClientResponse, error) {
	domainFilter := shared.DefaultFilter()
	domainFilter.PageSize = 0
	domainFilter.Search = search

	clients, err := s.clientRepo.FindActive(ctx, orgID, domainFilter)
	if err != nil {
		return nil, err
	}
	return ToClientResponses(clients), nil
}

// Update applies a partial update to a client
func (s *ClientService) Update(ctx context.Context, orgID, clientID uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "client", "update",
		telemetry.SpanAttrOrganizationID, orgID,
		telemetry.SpanAttrClientID, clientID,
	)
	defer span.End()

	client, err := s.clientRepo.FindByIDForOrganization(ctx, orgID, clientID)
	if err != nil {
		return nil, err
	}

	if req.BusinessName != nil || req.Rut != nil {
		name := client.BusinessName
		if req.BusinessName != nil {
			name = *req.BusinessName
		}
		rut := client.Rut.String()
		if req.Rut != nil {
			rut = *req.Rut
		}
		if err := client.Update(name, rut); err != nil {
			return nil, err
		}

		exists, err := s.clientRepo.ExistsByRutExcludingID(ctx, orgID, client.Rut, client.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, partner.ErrDuplicateRut
		}
	}

	if req.Email != nil || req.Phone != nil {
		email := client.Email
		if req.Email != nil {
			email = *req.Email
		}
		phone := client.Phone.String()
		if req.Phone != nil {
			phone = *req.Phone
		}
		if err := client.SetContact(email, phone); err != nil {
			return nil, err
		}
	}

	if req.Address != nil {
		if err := client.SetAddress(*req.Address); err != nil {
			return nil, err
		}
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publishEvents(ctx, client)

	response := ToClientResponse(client)
	return &response, nil
}

// Deactivate soft-deletes a client
func (s *ClientService) Deactivate(ctx context.Context, orgID, clientID uuid.UUID) error {
	client, err := s.clientRepo.FindByIDForOrganization(ctx, orgID, clientID)
	if err != nil {
		return err
	}

	if err := client.Deactivate(); err != nil {
		return err
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return err
	}
	s.publishEvents(ctx, client)

	return nil
}

// Count returns the number of active clients
func (s *ClientService) Count(ctx context.Context, orgID uuid.UUID) (int64, error) {
	return s.clientRepo.CountActive(ctx, orgID, shared.DefaultFilter())
}

// CountNewThisMonth returns the number of active clients created since the
// first day of the current month
func (s *ClientService) CountNewThisMonth(ctx context.Context, orgID uuid.UUID) (int64, error) {
	return s.clientRepo.CountActiveSince(ctx, orgID, s.monthStart())
}

// Stats returns the dashboard counters, served from cache when possible
func (s *ClientService) Stats(ctx context.Context, orgID uuid.UUID) (*ClientStatsResponse, error) {
	monthStart := s.monthStart()
	period := monthStart.Format(statsPeriodLayout)

	if s.statsCache != nil {
		cached, ok, err := s.statsCache.Get(ctx, orgID, period)
		if err != nil {
			s.logger.Warn("client stats cache read failed", zap.Error(err))
		} else if ok {
			return &ClientStatsResponse{
				Total:        cached.Total,
				NewThisMonth: cached.NewThisMonth,
				MonthStart:   cached.MonthStart,
				Cached:       true,
			}, nil
		}
	}

	total, err := s.Count(ctx, orgID)
	if err != nil {
		return nil, err
	}
	newThisMonth, err := s.clientRepo.CountActiveSince(ctx, orgID, monthStart)
	if err != nil {
		return nil, err
	}

	stats := ClientStats{Total: total, NewThisMonth: newThisMonth, MonthStart: monthStart}
	if s.statsCache != nil {
		if err := s.statsCache.Set(ctx, orgID, period, stats); err != nil {
			s.logger.Warn("client stats cache write failed", zap.Error(err))
		}
	}

	return &ClientStatsResponse{
		Total:        stats.Total,
		NewThisMonth: stats.NewThisMonth,
		MonthStart:   stats.MonthStart,
	}, nil
}

// monthStart is midnight of the first day of the current month in the service location
func (s *ClientService) monthStart() time.Time {
	now := s.now().In(s.location)
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.location)
}

func (s *ClientService) publishEvents(ctx context.Context, client *partner.Client) {
	events := client.GetDomainEvents()
	client.ClearDomainEvents()
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish client events",
			zap.String("client_id", client.ID.String()),
			zap.Error(err),
		)
	}
}

func buildClient(orgID, userID uuid.UUID, req CreateClientRequest) (*partner.Client, error) {
	client, err := partner.NewClient(orgID, req.BusinessName, req.Rut)
	if err != nil {
		return nil, err
	}
	if userID != uuid.Nil {
		client.SetCreatedBy(userID)
	}
	if req.Email != "" || req.Phone != "" {
		if err := client.SetContact(req.Email, req.Phone); err != nil {
			return nil, err
		}
	}
	if req.Address != "" {
		if err := client.SetAddress(req.Address); err != nil {
			return nil, err
		}
	}
	// A fresh client stays at version 1 regardless of the setters above.
	client.Version = 1
	return client, nil
}

func toDomainFilter(filter ClientListFilter) shared.Filter {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	f.Search = filter.Search
	return f
}

// RutLookup reports whether rut is already registered for the organization.
// Used by forms to warn before submitting.
func (s *ClientService) RutLookup(ctx context.Context, orgID uuid.UUID, rut string) (bool, error) {
	r, err := valueobject.NewRut(rut)
	if err != nil {
		return false, partner.ErrInvalidRut
	}
	return s.clientRepo.ExistsByRut(ctx, orgID, r)
}
