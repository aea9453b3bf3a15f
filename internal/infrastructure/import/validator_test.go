package csvimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func clientRules() []FieldRule {
	return []FieldRule{
		Field("business_name").Required().MaxLength(20).Build(),
		Field("rut").Required().Rut().Build(),
		Field("email").Email().Build(),
		Field("phone").Mobile().Build(),
	}
}

func row(line int, data map[string]string) *Row {
	return &Row{LineNumber: line, Data: data}
}

func TestFieldRuleBuilder(t *testing.T) {
	rule := Field("rut").Required().Rut().Build()
	assert.Equal(t, "rut", rule.Column)
	assert.True(t, rule.Required)
	assert.Equal(t, TypeRut, rule.Type)
	assert.True(t, rule.Unique)
	assert.Equal(t, "123456785", rule.UniqueKey("12.345.678-5"))

	rule = Field("code").Unique().MaxLength(10).Build()
	assert.Equal(t, TypeString, rule.Type)
	assert.True(t, rule.Unique)
	assert.Nil(t, rule.UniqueKey)
	assert.Equal(t, 10, rule.MaxLength)
}

func TestFieldValidator_ValidateRow(t *testing.T) {
	tests := []struct {
		name     string
		data     map[string]string
		wantOK   bool
		wantCode string
		column   string
	}{
		{
			name:   "valid with contact",
			data:   map[string]string{"business_name": "Comercial Andes", "rut": "12.345.678-5", "email": "hola@andes.cl", "phone": "9 8765 4321"},
			wantOK: true,
		},
		{
			name:   "valid without optional fields",
			data:   map[string]string{"business_name": "Comercial Andes", "rut": "123456785"},
			wantOK: true,
		},
		{
			name:     "missing business name",
			data:     map[string]string{"rut": "123456785"},
			wantCode: ErrCodeImportRequiredField,
			column:   "business_name",
		},
		{
			name:     "business name too long",
			data:     map[string]string{"business_name": "Comercializadora del Pacífico", "rut": "123456785"},
			wantCode: ErrCodeImportInvalidLength,
			column:   "business_name",
		},
		{
			name:     "bad check digit",
			data:     map[string]string{"business_name": "Andes", "rut": "12.345.678-9"},
			wantCode: ErrCodeImportInvalidRut,
			column:   "rut",
		},
		{
			name:     "bad email",
			data:     map[string]string{"business_name": "Andes", "rut": "123456785", "email": "hola@andes"},
			wantCode: ErrCodeImportInvalidFormat,
			column:   "email",
		},
		{
			name:     "landline phone",
			data:     map[string]string{"business_name": "Andes", "rut": "123456785", "phone": "+56 2 2345 6789"},
			wantCode: ErrCodeImportInvalidPhone,
			column:   "phone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewFieldValidator(clientRules(), 10)
			ok := v.ValidateRow(row(2, tt.data))
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.False(t, v.Errors().HasErrors())
				return
			}
			errs := v.Errors().Errors()
			if assert.Len(t, errs, 1) {
				assert.Equal(t, tt.wantCode, errs[0].Code)
				assert.Equal(t, tt.column, errs[0].Column)
				assert.Equal(t, 2, errs[0].Row)
			}
		})
	}
}

func TestFieldValidator_DuplicateRutInFile(t *testing.T) {
	v := NewFieldValidator(clientRules(), 10)

	assert.True(t, v.ValidateRow(row(2, map[string]string{"business_name": "Uno", "rut": "12.345.678-5"})))
	assert.False(t, v.ValidateRow(row(3, map[string]string{"business_name": "Dos", "rut": "123456785"})))

	errs := v.Errors().Errors()
	if assert.Len(t, errs, 1) {
		assert.Equal(t, ErrCodeImportDuplicateInFile, errs[0].Code)
		assert.Equal(t, 3, errs[0].Row)
		assert.Contains(t, errs[0].Message, "fila 2")
	}
}

func TestFieldValidator_RequiredColumns(t *testing.T) {
	v := NewFieldValidator(clientRules(), 10)
	assert.Equal(t, []string{"business_name", "rut"}, v.RequiredColumns())
}
