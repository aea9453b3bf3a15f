package partner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pymeboard/backend/internal/domain/shared"
	"github.com/pymeboard/backend/internal/domain/shared/valueobject"
)

// ClientRepository defines the interface for client persistence.
// Every query is scoped to an organization.
type ClientRepository interface {
	// FindByIDForOrganization finds a client by ID within an organization, active or not
	FindByIDForOrganization(ctx context.Context, orgID, id uuid.UUID) (*Client, error)

	// FindActive finds active clients matching the filter, newest first by default
	FindActive(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]Client, error)

	// CountActive counts active clients matching the filter's search and filters
	CountActive(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error)

	// CountActiveSince counts active clients created at or after since
	CountActiveSince(ctx context.Context, orgID uuid.UUID, since time.Time) (int64, error)

	// ExistsByRut checks whether any client of the organization has the RUT
	ExistsByRut(ctx context.Context, orgID uuid.UUID, rut valueobject.Rut) (bool, error)

	// ExistsByRutExcludingID is ExistsByRut ignoring one client, for updates
	ExistsByRutExcludingID(ctx context.Context, orgID uuid.UUID, rut valueobject.Rut, excludeID uuid.UUID) (bool, error)

	// Save creates or updates a client.
	// A unique violation on the RUT is returned as ErrDuplicateRut.
	Save(ctx context.Context, client *Client) error

	// SaveBatch creates or updates clients in a single transaction
	SaveBatch(ctx context.Context, clients []*Client) error
}
