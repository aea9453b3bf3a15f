package csvimport

import (
	"unicode/utf8"

	"github.com/pymeboard/backend/internal/domain/partner"
	"github.com/pymeboard/backend/internal/domain/shared/valueobject"
)

// FieldType represents the expected format of a field
type FieldType string

const (
	TypeString FieldType = "string"
	TypeEmail  FieldType = "email"
	TypeRut    FieldType = "rut"
	TypeMobile FieldType = "mobile"
)

// FieldRule defines validation rules for a column
type FieldRule struct {
	Column    string
	Type      FieldType
	Required  bool
	MaxLength int
	Unique    bool
	// UniqueKey maps a value to its identity for the in-file duplicate check.
	UniqueKey func(value string) string
}

// FieldRuleBuilder helps build field rules fluently
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field creates a new field rule builder
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{
		rule: FieldRule{Column: column, Type: TypeString},
	}
}

// Required marks the field as required
func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

// Email expects a contact email address
func (b *FieldRuleBuilder) Email() *FieldRuleBuilder {
	b.rule.Type = TypeEmail
	return b
}

// Rut expects a Chilean RUT, formatted or not. Implies uniqueness by clean form.
func (b *FieldRuleBuilder) Rut() *FieldRuleBuilder {
	b.rule.Type = TypeRut
	b.rule.Unique = true
	b.rule.UniqueKey = valueobject.CleanRut
	return b
}

// Mobile expects a Chilean mobile number in any common notation
func (b *FieldRuleBuilder) Mobile() *FieldRuleBuilder {
	b.rule.Type = TypeMobile
	return b
}

// MaxLength sets the maximum length in characters
func (b *FieldRuleBuilder) MaxLength(n int) *FieldRuleBuilder {
	b.rule.MaxLength = n
	return b
}

// Unique rejects repeated values within the file
func (b *FieldRuleBuilder) Unique() *FieldRuleBuilder {
	b.rule.Unique = true
	return b
}

// Build returns the built field rule
func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// FieldValidator validates rows against rules, in rule order
type FieldValidator struct {
	rules       []FieldRule
	uniqueCheck map[string]map[string]int // column -> key -> first row number
	errors      *ErrorCollection
}

// NewFieldValidator creates a new field validator
func NewFieldValidator(rules []FieldRule, maxErrors int) *FieldValidator {
	return &FieldValidator{
		rules:       rules,
		uniqueCheck: make(map[string]map[string]int),
		errors:      NewErrorCollection(maxErrors),
	}
}

// RequiredColumns returns the columns that must be present in the header
func (v *FieldValidator) RequiredColumns() []string {
	var cols []string
	for _, r := range v.rules {
		if r.Required {
			cols = append(cols, r.Column)
		}
	}
	return cols
}

// ValidateRow validates all fields in a row and reports whether it passed
func (v *FieldValidator) ValidateRow(row *Row) bool {
	ok := true

	for _, rule := range v.rules {
		value := row.Get(rule.Column)

		if value == "" {
			if rule.Required {
				v.errors.AddRequiredError(row.LineNumber, rule.Column)
				ok = false
			}
			continue
		}

		if rule.MaxLength > 0 && utf8.RuneCountInString(value) > rule.MaxLength {
			v.errors.AddLengthError(row.LineNumber, rule.Column, rule.MaxLength)
			ok = false
			continue
		}

		if !v.validateType(row.LineNumber, rule, value) {
			ok = false
			continue
		}

		if rule.Unique {
			key := value
			if rule.UniqueKey != nil {
				key = rule.UniqueKey(value)
			}
			seen := v.uniqueCheck[rule.Column]
			if seen == nil {
				seen = make(map[string]int)
				v.uniqueCheck[rule.Column] = seen
			}
			if first, dup := seen[key]; dup {
				v.errors.AddDuplicateError(row.LineNumber, rule.Column, value, first)
				ok = false
			} else {
				seen[key] = row.LineNumber
			}
		}
	}

	return ok
}

func (v *FieldValidator) validateType(line int, rule FieldRule, value string) bool {
	switch rule.Type {
	case TypeEmail:
		if !partner.IsValidEmail(value) {
			v.errors.Add(NewRowErrorWithValue(line, rule.Column, ErrCodeImportInvalidFormat,
				"Correo electrónico inválido", value))
			return false
		}
	case TypeRut:
		if !valueobject.ValidateRut(value) {
			v.errors.Add(NewRowErrorWithValue(line, rule.Column, ErrCodeImportInvalidRut,
				"RUT inválido", value))
			return false
		}
	case TypeMobile:
		if !valueobject.IsValidChileanMobile(valueobject.NormalizePhone(value)) {
			v.errors.Add(NewRowErrorWithValue(line, rule.Column, ErrCodeImportInvalidPhone,
				"El teléfono debe ser un móvil chileno (+569XXXXXXXX)", value))
			return false
		}
	}
	return true
}

// Errors returns the error collection
func (v *FieldValidator) Errors() *ErrorCollection {
	return v.errors
}
