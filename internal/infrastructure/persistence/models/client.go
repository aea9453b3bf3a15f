package models

import (
	"github.com/google/uuid"
	"github.com/pymeboard/backend/internal/domain/partner"
	"github.com/pymeboard/backend/internal/domain/shared"
	"github.com/pymeboard/backend/internal/domain/shared/valueobject"
)

// ClientModel is the persistence model for the Client domain entity.
// The RUT is stored formatted ("12.345.678-5") and the phone in E.164.
// A RUT is unique per organization, inactive clients included.
type ClientModel struct {
	AggregateModel
	OrganizationID uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_clients_org_rut,priority:1"`
	CreatedBy      *uuid.UUID              `gorm:"type:uuid"`
	BusinessName   string                  `gorm:"type:varchar(200);not null"`
	Rut            valueobject.Rut         `gorm:"type:varchar(20);not null;uniqueIndex:idx_clients_org_rut,priority:2"`
	Email          string                  `gorm:"type:varchar(200)"`
	Phone          valueobject.MobilePhone `gorm:"type:varchar(20)"`
	Address        string                  `gorm:"type:text"`
	IsActive       bool                    `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client entity.
func (m *ClientModel) ToDomain() *partner.Client {
	return &partner.Client{
		OrganizationAggregateRoot: shared.OrganizationAggregateRoot{
			BaseAggregateRoot: m.ToDomainAggregateRoot(),
			OrganizationID:    m.OrganizationID,
			CreatedBy:         m.CreatedBy,
		},
		BusinessName: m.BusinessName,
		Rut:          m.Rut,
		Email:        m.Email,
		Phone:        m.Phone,
		Address:      m.Address,
		IsActive:     m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Client entity.
func (m *ClientModel) FromDomain(c *partner.Client) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.OrganizationID = c.OrganizationID
	m.CreatedBy = c.CreatedBy
	m.BusinessName = c.BusinessName
	m.Rut = c.Rut
	m.Email = c.Email
	m.Phone = c.Phone
	m.Address = c.Address
	m.IsActive = c.IsActive
}

// ClientModelFromDomain creates a new persistence model from a domain Client.
func ClientModelFromDomain(c *partner.Client) *ClientModel {
	m := &ClientModel{}
	m.FromDomain(c)
	return m
}
