package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// legacyRut is the whitelisted identifier "1-9". It is accepted by ValidateRut and
// rendered as "1-9" by FormatRut without running the checksum.
const legacyRut = "19"

// ErrInvalidRut is returned when a value is not a structurally and arithmetically valid RUT
var ErrInvalidRut = errors.New("invalid RUT")

// CleanRut strips everything but digits and 'k'/'K' from raw and upper-cases the 'K'.
func CleanRut(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == 'k' || c == 'K':
			b.WriteByte('K')
		}
	}
	return b.String()
}

// FormatRut renders raw in display form, e.g. "123456789" becomes "12.345.678-9".
// Inputs that clean to a single character or less are returned cleaned, so partially
// typed values can be formatted as the user types.
func FormatRut(raw string) string {
	cleaned := CleanRut(raw)
	if cleaned == legacyRut {
		return "1-9"
	}
	if len(cleaned) <= 1 {
		return cleaned
	}

	body, check := cleaned[:len(cleaned)-1], cleaned[len(cleaned)-1:]
	return groupDigits(body, '.') + "-" + check
}

// ValidateRut reports whether raw is a valid RUT under the Módulo 11 scheme.
// raw is cleaned first, so formatted and unformatted inputs are both accepted.
func ValidateRut(raw string) bool {
	cleaned := CleanRut(raw)
	if cleaned == legacyRut {
		return true
	}
	if len(cleaned) < 2 {
		return false
	}

	body, check := cleaned[:len(cleaned)-1], cleaned[len(cleaned)-1:]
	expected, ok := RutCheckDigit(body)
	if !ok {
		return false
	}
	return expected == check
}

// RutCheckDigit computes the check character for an all-digit RUT body.
// The body is weighted right to left with the cycle 2,3,4,5,6,7 and the
// character is derived from 11 - sum%11 (11 is "0", 10 is "K").
func RutCheckDigit(body string) (string, bool) {
	if !isDigits(body) {
		return "", false
	}

	sum, weight := 0, 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * weight
		if weight == 7 {
			weight = 2
		} else {
			weight++
		}
	}

	switch expected := 11 - sum%11; expected {
	case 11:
		return "0", true
	case 10:
		return "K", true
	default:
		return string(rune('0' + expected)), true
	}
}

// groupDigits inserts sep before every position that starts a run of digits whose
// length up to the end of the run is a multiple of three. Position zero never gets
// a separator.
func groupDigits(s string, sep byte) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/3)
	for i := 0; i < len(s); i++ {
		if i > 0 && digitRunLen(s, i)%3 == 0 && isDigit(s[i]) {
			b.WriteByte(sep)
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// digitRunLen counts consecutive digits starting at i
func digitRunLen(s string, i int) int {
	n := 0
	for ; i < len(s) && isDigit(s[i]); i++ {
		n++
	}
	return n
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// Rut is a validated Chilean RUT.
// The zero value represents "no RUT" and formats as an empty string.
type Rut struct {
	body  string
	check string
}

// NewRut cleans and validates raw
func NewRut(raw string) (Rut, error) {
	if !ValidateRut(raw) {
		return Rut{}, fmt.Errorf("%w: %q", ErrInvalidRut, raw)
	}
	cleaned := CleanRut(raw)
	return Rut{
		body:  cleaned[:len(cleaned)-1],
		check: cleaned[len(cleaned)-1:],
	}, nil
}

// MustNewRut is NewRut for constants in tests and fixtures
func MustNewRut(raw string) Rut {
	r, err := NewRut(raw)
	if err != nil {
		panic(err)
	}
	return r
}

// Body returns the digits before the check character
func (r Rut) Body() string {
	return r.body
}

// CheckDigit returns the check character ("0"-"9" or "K")
func (r Rut) CheckDigit() string {
	return r.check
}

// Clean returns the RUT without separators
func (r Rut) Clean() string {
	return r.body + r.check
}

// IsZero returns true if no RUT is set
func (r Rut) IsZero() bool {
	return r.body == "" && r.check == ""
}

// Equals compares two RUTs by their canonical digits
func (r Rut) Equals(other Rut) bool {
	return r.Clean() == other.Clean()
}

// String returns the display form
func (r Rut) String() string {
	if r.IsZero() {
		return ""
	}
	return FormatRut(r.Clean())
}

// MarshalJSON implements json.Marshaler
func (r Rut) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON implements json.Unmarshaler. Empty strings decode to the zero value.
func (r *Rut) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*r = Rut{}
		return nil
	}
	parsed, err := NewRut(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value implements driver.Valuer. RUTs are stored formatted.
func (r Rut) Value() (driver.Value, error) {
	if r.IsZero() {
		return nil, nil
	}
	return r.String(), nil
}

// Scan implements sql.Scanner
func (r *Rut) Scan(value any) error {
	var s string
	switch v := value.(type) {
	case nil:
		*r = Rut{}
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Rut", value)
	}
	if s == "" {
		*r = Rut{}
		return nil
	}
	parsed, err := NewRut(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
