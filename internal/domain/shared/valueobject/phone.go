package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const (
	// ChileRegion is the ISO 3166 region used for phone metadata lookups
	ChileRegion = "CL"

	mobilePrefix       = "+569"
	mobilePrefixNoPlus = "569"
	countryCode        = "+56"
	mobileTrunkDigit   = "9"
	canonicalLength    = 12
)

// chileanMobileRegex is the only accepted canonical form: +569 followed by 8 digits
var chileanMobileRegex = regexp.MustCompile(`^\+569\d{8}$`)

// ErrInvalidMobilePhone is returned when a value does not normalize to a Chilean mobile number
var ErrInvalidMobilePhone = errors.New("invalid Chilean mobile phone")

// NormalizePhone turns user input into the canonical "+569XXXXXXXX" form on a best
// effort basis. Every character other than digits and '+' is dropped; a '+' is kept
// wherever it appears. The first matching rule applies:
//
//	+569 prefix, 12 characters  -> unchanged
//	569 prefix, 11 characters   -> "+" prepended
//	9 characters starting with 9 -> "+56" prepended
//	8 characters                 -> "+569" prepended
//
// Anything else is returned cleaned. The result is not guaranteed to be valid; use
// IsValidChileanMobile to check it.
func NormalizePhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; isDigit(c) || c == '+' {
			b.WriteByte(c)
		}
	}
	cleaned := b.String()

	switch {
	case strings.HasPrefix(cleaned, mobilePrefix) && len(cleaned) == canonicalLength:
		return cleaned
	case strings.HasPrefix(cleaned, mobilePrefixNoPlus) && len(cleaned) == canonicalLength-1:
		return "+" + cleaned
	case len(cleaned) == 9 && strings.HasPrefix(cleaned, mobileTrunkDigit):
		return countryCode + cleaned
	case len(cleaned) == 8:
		return mobilePrefix + cleaned
	default:
		return cleaned
	}
}

// IsValidChileanMobile reports whether phone is exactly "+569" followed by 8 digits.
// No normalization is applied.
func IsValidChileanMobile(phone string) bool {
	return chileanMobileRegex.MatchString(phone)
}

// MobilePhone is a Chilean mobile number in canonical form.
// The zero value means "no phone".
type MobilePhone struct {
	value string
}

// NewMobilePhone normalizes raw and rejects results that are not canonical
func NewMobilePhone(raw string) (MobilePhone, error) {
	normalized := NormalizePhone(raw)
	if !IsValidChileanMobile(normalized) {
		return MobilePhone{}, fmt.Errorf("%w: %q", ErrInvalidMobilePhone, raw)
	}
	return MobilePhone{value: normalized}, nil
}

// String returns the canonical E.164 form
func (p MobilePhone) String() string {
	return p.value
}

// IsZero returns true if no phone is set
func (p MobilePhone) IsZero() bool {
	return p.value == ""
}

// Equals compares two phones by canonical value
func (p MobilePhone) Equals(other MobilePhone) bool {
	return p.value == other.value
}

// International returns the number grouped for display, e.g. "+56 9 8765 4321".
// It falls back to the canonical form if the metadata lookup fails.
func (p MobilePhone) International() string {
	return p.format(phonenumbers.INTERNATIONAL)
}

// National returns the number as dialled within Chile
func (p MobilePhone) National() string {
	return p.format(phonenumbers.NATIONAL)
}

func (p MobilePhone) format(f phonenumbers.PhoneNumberFormat) string {
	if p.IsZero() {
		return ""
	}
	num, err := phonenumbers.Parse(p.value, ChileRegion)
	if err != nil {
		return p.value
	}
	return phonenumbers.Format(num, f)
}

// MarshalJSON implements json.Marshaler
func (p MobilePhone) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.value)
}

// UnmarshalJSON implements json.Unmarshaler. Input is normalized before validation.
func (p *MobilePhone) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*p = MobilePhone{}
		return nil
	}
	parsed, err := NewMobilePhone(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Value implements driver.Valuer
func (p MobilePhone) Value() (driver.Value, error) {
	if p.IsZero() {
		return nil, nil
	}
	return p.value, nil
}

// Scan implements sql.Scanner
func (p *MobilePhone) Scan(value any) error {
	var s string
	switch v := value.(type) {
	case nil:
		*p = MobilePhone{}
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into MobilePhone", value)
	}
	if s == "" {
		*p = MobilePhone{}
		return nil
	}
	parsed, err := NewMobilePhone(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
