package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/pymeboard/backend/internal/domain/partner"
)

// CreateClientRequest represents a request to register a new client
type CreateClientRequest struct {
	BusinessName string `json:"business_name" binding:"required,min=1,max=200"`
	Rut          string `json:"rut" binding:"required,rut"`
	Email        string `json:"email" binding:"omitempty,email,max=200"`
	Phone        string `json:"phone" binding:"omitempty,cl_mobile"`
	Address      string `json:"address" binding:"max=500"`
}

// UpdateClientRequest represents a partial update; nil fields are left unchanged
type UpdateClientRequest struct {
	BusinessName *string `json:"business_name" binding:"omitempty,min=1,max=200"`
	Rut          *string `json:"rut" binding:"omitempty,rut"`
	Email        *string `json:"email" binding:"omitempty,max=200"`
	Phone        *string `json:"phone" binding:"omitempty"`
	Address      *string `json:"address" binding:"omitempty,max=500"`
}

// ClientListFilter represents filter options for the client list
type ClientListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=created_at business_name rut"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	BusinessName   string    `json:"business_name"`
	Rut            string    `json:"rut"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	PhoneDisplay   string    `json:"phone_display,omitempty"`
	Address        string    `json:"address"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ClientStatsResponse holds the dashboard counters for clients
type ClientStatsResponse struct {
	Total        int64     `json:"total"`
	NewThisMonth int64     `json:"new_this_month"`
	MonthStart   time.Time `json:"month_start"`
	Cached       bool      `json:"cached"`
}

// ToClientResponse converts a domain Client to ClientResponse
func ToClientResponse(c *partner.Client) ClientResponse {
	return ClientResponse{
		ID:             c.ID,
		OrganizationID: c.OrganizationID,
		BusinessName:   c.BusinessName,
		Rut:            c.Rut.String(),
		Email:          c.Email,
		Phone:          c.Phone.String(),
		PhoneDisplay:   c.Phone.International(),
		Address:        c.Address,
		IsActive:       c.IsActive,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// ToClientResponses converts a slice of domain Clients to ClientResponses
func ToClientResponses(clients []partner.Client) []ClientResponse {
	responses := make([]ClientResponse, len(clients))
	for i := range clients {
		responses[i] = ToClientResponse(&clients[i])
	}
	return responses
}
