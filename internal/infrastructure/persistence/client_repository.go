package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pymeboard/backend/internal/domain/partner"
	"github.com/pymeboard/backend/internal/domain/shared"
	"github.com/pymeboard/backend/internal/domain/shared/valueobject"
	"github.com/pymeboard/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// pgUniqueViolation is the SQLSTATE Postgres reports for unique_violation
const pgUniqueViolation = "23505"

// GormClientRepository implements ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByIDForOrganization finds a client by ID within an organization
func (r *GormClientRepository) FindByIDForOrganization(ctx context.Context, orgID, id uuid.UUID) (*partner.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, partner.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return model.ToDomain(), nil
}

// FindActive finds active clients of an organization matching the filter
func (r *GormClientRepository) FindActive(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]partner.Client, error) {
	var clientModels []models.ClientModel
	query := r.applyFilter(r.activeClients(ctx, orgID), filter)
	if err := query.Find(&clientModels).Error; err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	clients := make([]partner.Client, len(clientModels))
	for i := range clientModels {
		clients[i] = *clientModels[i].ToDomain()
	}
	return clients, nil
}

// CountActive counts active clients matching the filter's search and filters
func (r *GormClientRepository) CountActive(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.activeClients(ctx, orgID), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count clients: %w", err)
	}
	return count, nil
}

// CountActiveSince counts active clients created at or after since
func (r *GormClientRepository) CountActiveSince(ctx context.Context, orgID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	if err := r.activeClients(ctx, orgID).
		Where("created_at >= ?", since.UTC()).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count new clients: %w", err)
	}
	return count, nil
}

// ExistsByRut checks whether any client of the organization, active or not, has the RUT
func (r *GormClientRepository) ExistsByRut(ctx context.Context, orgID uuid.UUID, rut valueobject.Rut) (bool, error) {
	return r.existsByRut(ctx, orgID, rut, uuid.Nil)
}

// ExistsByRutExcludingID checks RUT existence ignoring one client
func (r *GormClientRepository) ExistsByRutExcludingID(ctx context.Context, orgID uuid.UUID, rut valueobject.Rut, excludeID uuid.UUID) (bool, error) {
	return r.existsByRut(ctx, orgID, rut, excludeID)
}

func (r *GormClientRepository) existsByRut(ctx context.Context, orgID uuid.UUID, rut valueobject.Rut, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ClientModel{}).
		Where("organization_id = ? AND rut = ?", orgID, rut.String())
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check client rut: %w", err)
	}
	return count > 0, nil
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, client *partner.Client) error {
	model := models.ClientModelFromDomain(client)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return translateClientError(err)
	}
	return nil
}

// SaveBatch creates or updates clients in a single transaction
func (r *GormClientRepository) SaveBatch(ctx context.Context, clients []*partner.Client) error {
	if len(clients) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, client := range clients {
			if err := tx.Save(models.ClientModelFromDomain(client)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return translateClientError(err)
	}
	return nil
}

func (r *GormClientRepository) activeClients(ctx context.Context, orgID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.ClientModel{}).
		Where("organization_id = ? AND is_active = ?", orgID, true)
}

// applyFilter applies search, filters, ordering and pagination
func (r *GormClientRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	orderBy := ValidateSortField(filter.OrderBy, ClientSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir)).Order("id ASC")

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// likeEscaper makes LIKE wildcards in user input match literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// applyFilterWithoutPagination applies search and filters only.
// Search matches the business name and email case-insensitively, and the
// RUT ignoring its dots and dash, so "12345678" finds "12.345.678-5".
func (r *GormClientRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		conditions := r.db.Where(`LOWER(business_name) LIKE ? ESCAPE '\'`, pattern).
			Or(`LOWER(email) LIKE ? ESCAPE '\'`, pattern)
		if cleaned := valueobject.CleanRut(search); cleaned != "" {
			conditions = conditions.Or("REPLACE(REPLACE(rut, '.', ''), '-', '') LIKE ?", "%"+cleaned+"%")
		}
		query = query.Where(conditions)
	}

	for key, value := range filter.Filters {
		switch key {
		case "has_phone":
			if value == true {
				query = query.Where("phone IS NOT NULL AND phone <> ''")
			} else {
				query = query.Where("phone IS NULL OR phone = ''")
			}
		case "created_from":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t.UTC())
			}
		}
	}
	return query
}

// translateClientError maps unique violations on the RUT index to ErrDuplicateRut
func translateClientError(err error) error {
	if isUniqueViolation(err) {
		return partner.ErrDuplicateRut
	}
	return fmt.Errorf("save client: %w", err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Ensure GormClientRepository implements ClientRepository
var _ partner.ClientRepository = (*GormClientRepository)(nil)
