package partner

import (
	"github.com/google/uuid"
	"github.com/pymeboard/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeClient = "Client"

// Event type constants
const (
	EventTypeClientCreated     = "ClientCreated"
	EventTypeClientUpdated     = "ClientUpdated"
	EventTypeClientDeactivated = "ClientDeactivated"
)

// ClientCreatedEvent is published when a new client is registered
type ClientCreatedEvent struct {
	shared.BaseDomainEvent
	ClientID     uuid.UUID `json:"client_id"`
	BusinessName string    `json:"business_name"`
	Rut          string    `json:"rut"`
}

// NewClientCreatedEvent creates a new ClientCreatedEvent
func NewClientCreatedEvent(client *Client) *ClientCreatedEvent {
	return &ClientCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientCreated, AggregateTypeClient, client.ID, client.OrganizationID),
		ClientID:        client.ID,
		BusinessName:    client.BusinessName,
		Rut:             client.Rut.String(),
	}
}

// ClientUpdatedEvent is published when a client's data changes
type ClientUpdatedEvent struct {
	shared.BaseDomainEvent
	ClientID     uuid.UUID `json:"client_id"`
	BusinessName string    `json:"business_name"`
	Rut          string    `json:"rut"`
	IsActive     bool      `json:"is_active"`
}

// NewClientUpdatedEvent creates a new ClientUpdatedEvent
func NewClientUpdatedEvent(client *Client) *ClientUpdatedEvent {
	return &ClientUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientUpdated, AggregateTypeClient, client.ID, client.OrganizationID),
		ClientID:        client.ID,
		BusinessName:    client.BusinessName,
		Rut:             client.Rut.String(),
		IsActive:        client.IsActive,
	}
}

// ClientDeactivatedEvent is published when a client is soft-deleted
type ClientDeactivatedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	Rut      string    `json:"rut"`
}

// NewClientDeactivatedEvent creates a new ClientDeactivatedEvent
func NewClientDeactivatedEvent(client *Client) *ClientDeactivatedEvent {
	return &ClientDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientDeactivated, AggregateTypeClient, client.ID, client.OrganizationID),
		ClientID:        client.ID,
		Rut:             client.Rut.String(),
	}
}
