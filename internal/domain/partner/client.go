package partner

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pymeboard/backend/internal/domain/shared"
	"github.com/pymeboard/backend/internal/domain/shared/valueobject"
)

const (
	maxBusinessNameLength = 200
	maxEmailLength        = 200
	maxAddressLength      = 500
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Client errors
var (
	ErrInvalidRut            = shared.NewDomainError("INVALID_RUT", "El RUT ingresado no es válido")
	ErrInvalidPhone          = shared.NewDomainError("INVALID_PHONE", "El teléfono debe tener el formato +569XXXXXXXX")
	ErrDuplicateRut          = shared.NewDomainError("DUPLICATE_RUT", "Un cliente con este RUT ya existe.")
	ErrClientNotFound        = shared.NewDomainError("NOT_FOUND", "Client not found")
	ErrClientAlreadyInactive = shared.NewDomainError("INVALID_STATE", "Client is already inactive")
	ErrClientAlreadyActive   = shared.NewDomainError("INVALID_STATE", "Client is already active")
)

// Client is a business customer of an organization.
// It is the aggregate root for client-related operations. Clients are never
// hard-deleted; Deactivate hides them from listings and counters.
type Client struct {
	shared.OrganizationAggregateRoot
	BusinessName string
	Rut          valueobject.Rut
	Email        string
	Phone        valueobject.MobilePhone
	Address      string
	IsActive     bool
}

// NewClient creates a new active client. rut may be formatted or not.
func NewClient(orgID uuid.UUID, businessName, rut string) (*Client, error) {
	name := strings.TrimSpace(businessName)
	if err := validateBusinessName(name); err != nil {
		return nil, err
	}
	parsed, err := parseRut(rut)
	if err != nil {
		return nil, err
	}

	client := &Client{
		OrganizationAggregateRoot: shared.NewOrganizationAggregateRoot(orgID),
		BusinessName:              name,
		Rut:                       parsed,
		IsActive:                  true,
	}

	client.AddDomainEvent(NewClientCreatedEvent(client))

	return client, nil
}

// Update replaces the client's identifying information
func (c *Client) Update(businessName, rut string) error {
	name := strings.TrimSpace(businessName)
	if err := validateBusinessName(name); err != nil {
		return err
	}
	parsed, err := parseRut(rut)
	if err != nil {
		return err
	}

	c.BusinessName = name
	c.Rut = parsed
	c.touch()

	c.AddDomainEvent(NewClientUpdatedEvent(c))

	return nil
}

// SetContact sets the client's email and phone. Empty values clear the field.
// The phone is normalized before validation, so "9 8765 4321" is stored as "+56987654321".
func (c *Client) SetContact(email, phone string) error {
	email = strings.TrimSpace(email)
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}

	var mobile valueobject.MobilePhone
	if strings.TrimSpace(phone) != "" {
		p, err := valueobject.NewMobilePhone(phone)
		if err != nil {
			return ErrInvalidPhone
		}
		mobile = p
	}

	c.Email = strings.ToLower(email)
	c.Phone = mobile
	c.touch()

	return nil
}

// SetAddress sets the client's free-form address
func (c *Client) SetAddress(address string) error {
	address = strings.TrimSpace(address)
	if utf8.RuneCountInString(address) > maxAddressLength {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 500 characters")
	}

	c.Address = address
	c.touch()

	return nil
}

// Deactivate soft-deletes the client
func (c *Client) Deactivate() error {
	if !c.IsActive {
		return ErrClientAlreadyInactive
	}

	c.IsActive = false
	c.touch()

	c.AddDomainEvent(NewClientDeactivatedEvent(c))

	return nil
}

// Activate restores a soft-deleted client
func (c *Client) Activate() error {
	if c.IsActive {
		return ErrClientAlreadyActive
	}

	c.IsActive = true
	c.touch()

	c.AddDomainEvent(NewClientUpdatedEvent(c))

	return nil
}

// HasPhone returns true if a mobile number is on file
func (c *Client) HasPhone() bool {
	return !c.Phone.IsZero()
}

// CreatedSince reports whether the client was created at or after t
func (c *Client) CreatedSince(t time.Time) bool {
	return !c.CreatedAt.Before(t)
}

func (c *Client) touch() {
	c.Touch()
	c.IncrementVersion()
}

func parseRut(raw string) (valueobject.Rut, error) {
	if strings.TrimSpace(raw) == "" {
		return valueobject.Rut{}, shared.NewDomainError("INVALID_RUT", "RUT cannot be empty")
	}
	r, err := valueobject.NewRut(raw)
	if err != nil {
		return valueobject.Rut{}, ErrInvalidRut
	}
	return r, nil
}

func validateBusinessName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_BUSINESS_NAME", "Business name cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxBusinessNameLength {
		return shared.NewDomainError("INVALID_BUSINESS_NAME", "Business name cannot exceed 200 characters")
	}
	return nil
}

// IsValidEmail reports whether email is acceptable as a client contact address
func IsValidEmail(email string) bool {
	return validateEmail(email) == nil
}

func validateEmail(email string) error {
	if len(email) > maxEmailLength {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
