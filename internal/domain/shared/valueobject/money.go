package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency represents a unit of account
type Currency string

const (
	CLP Currency = "CLP" // Chilean peso (default)
	UF  Currency = "UF"  // Unidad de Fomento, inflation-indexed unit quoted in CLP
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = CLP

// DefaultUFValue is the CLP value of one UF used when no live quote is configured
var DefaultUFValue = decimal.NewFromInt(38500)

// ErrInvalidUFValue is returned when a conversion is attempted with a non-positive UF value
var ErrInvalidUFValue = errors.New("UF value must be positive")

var half = decimal.NewFromFloat(0.5)

// Money is a value object representing monetary amounts.
// It is immutable - all operations return new Money instances.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	switch currency {
	case CLP, UF:
	case "":
		return Money{}, errors.New("currency cannot be empty")
	default:
		return Money{}, fmt.Errorf("unsupported currency: %s", currency)
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyFromString creates Money from a string representation
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d, currency)
}

// NewCLP creates Money in pesos
func NewCLP(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: CLP}
}

// NewUF creates Money in UF
func NewUF(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: UF}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Add returns a new Money with the sum of both amounts.
// Returns error if currencies don't match.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns a new Money with the difference.
// Returns error if currencies don't match.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Equals returns true if both Money values are equal (same amount and currency)
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// ToCLP converts the amount to pesos at ufValue pesos per UF
func (m Money) ToCLP(ufValue decimal.Decimal) (Money, error) {
	if m.currency == CLP {
		return m, nil
	}
	clp, err := ConvertUFToCLP(m.amount, ufValue)
	if err != nil {
		return Money{}, err
	}
	return NewCLP(clp), nil
}

// ToUF converts the amount to UF at ufValue pesos per UF
func (m Money) ToUF(ufValue decimal.Decimal) (Money, error) {
	if m.currency == UF {
		return m, nil
	}
	uf, err := ConvertCLPToUF(m.amount, ufValue)
	if err != nil {
		return Money{}, err
	}
	return NewUF(uf), nil
}

// String renders the amount the way it is shown to Chilean users
func (m Money) String() string {
	if m.currency == UF {
		return FormatUF(m.amount)
	}
	return FormatCLP(m.amount)
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount    string   `json:"amount"`
		Currency  Currency `json:"currency"`
		Formatted string   `json:"formatted"`
	}{
		Amount:    m.amount.String(),
		Currency:  m.currency,
		Formatted: m.String(),
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Currency == "" {
		v.Currency = DefaultCurrency
	}
	parsed, err := NewMoneyFromString(v.Amount, v.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer. Only the amount is stored.
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// Scan implements sql.Scanner. The currency defaults to CLP if not already set.
func (m *Money) Scan(value any) error {
	var strVal string
	switch v := value.(type) {
	case nil:
		m.amount = decimal.Zero
		if m.currency == "" {
			m.currency = DefaultCurrency
		}
		return nil
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	case float64:
		strVal = decimal.NewFromFloat(v).String()
	case int64:
		strVal = decimal.NewFromInt(v).String()
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}

	amount, err := decimal.NewFromString(strVal)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	m.amount = amount
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}

// FormatCLP renders pesos with no decimals and '.' as thousands separator,
// e.g. 1234567 -> "$1.234.567" and -1500 -> "-$1.500".
func FormatCLP(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	return sign + "$" + groupDigits(rounded.String(), '.')
}

// FormatUF renders an amount of UF with two decimals, e.g. "UF 1.234,57"
func FormatUF(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	sign := ""
	if amount.Round(2).IsNegative() {
		sign = "-"
	}
	return "UF " + sign + groupDigits(intPart, '.') + "," + frac
}

// ConvertUFToCLP converts UF to whole pesos, rounding halves up
func ConvertUFToCLP(ufAmount, ufValue decimal.Decimal) (decimal.Decimal, error) {
	if !ufValue.IsPositive() {
		return decimal.Zero, ErrInvalidUFValue
	}
	return ufAmount.Mul(ufValue).Add(half).Floor(), nil
}

// ConvertCLPToUF converts pesos to UF without rounding
func ConvertCLPToUF(clpAmount, ufValue decimal.Decimal) (decimal.Decimal, error) {
	if !ufValue.IsPositive() {
		return decimal.Zero, ErrInvalidUFValue
	}
	return clpAmount.Div(ufValue), nil
}
