package valueobject

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanRut(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"formatted", "12.345.678-5", "123456785"},
		{"lower k", "10.000.013-k", "10000013K"},
		{"upper k", "10000013K", "10000013K"},
		{"whitespace and noise", "  7 654 321 / k ", "7654321K"},
		{"letters other than k are dropped", "abc12x3", "123"},
		{"empty", "", ""},
		{"only noise", "-.-", ""},
		{"unicode noise", "１２３-4", "4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanRut(tt.raw))
		})
	}
}

func TestCleanRut_OnlyDigitsAndK(t *testing.T) {
	allowed := regexp.MustCompile(`^[0-9K]*$`)
	inputs := []string{
		"12.345.678-5", "kKkK", "++56 9", "¡Hola, mundo!", "\x00\xff9k", "rut: 1-9", "ñandú 12",
	}
	rng := rand.New(rand.NewSource(42))
	for range 200 {
		buf := make([]byte, rng.Intn(20))
		for i := range buf {
			buf[i] = byte(rng.Intn(256))
		}
		inputs = append(inputs, string(buf))
	}

	for _, in := range inputs {
		assert.Regexp(t, allowed, CleanRut(in), "input %q", in)
	}
}

func TestFormatRut(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"full body", "123456789", "12.345.678-9"},
		{"already formatted", "12.345.678-5", "12.345.678-5"},
		{"seven digit body", "7654321k", "7.654.321-K"},
		{"four digit body", "12345", "1.234-5"},
		{"three digit body", "1234", "123-4"},
		{"one digit body", "12", "1-2"},
		{"legacy value", "19", "1-9"},
		{"legacy value formatted", "1-9", "1-9"},
		{"single char passes through", "1", "1"},
		{"single k passes through upper-cased", "k", "K"},
		{"empty", "", ""},
		{"noise only", "abc", ""},
		{"k check digit", "10.000.013-k", "10.000.013-K"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRut(tt.raw))
		})
	}
}

func TestFormatRut_Idempotent(t *testing.T) {
	inputs := []string{
		"", "1", "19", "12", "123456789", "12.345.678-5", "1k", "10000013k", "999999999999", "abc-1.2",
	}
	for _, in := range inputs {
		first := FormatRut(in)
		assert.Equal(t, first, FormatRut(CleanRut(first)), "input %q", in)
		assert.Equal(t, CleanRut(in), CleanRut(first), "input %q", in)
	}
}

func TestValidateRut(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"known valid formatted", "12.345.678-5", true},
		{"repeated ones", "11.111.111-1", true},
		{"repeated twos", "22.222.222-2", true},
		{"k check digit lower", "10.000.013-k", true},
		{"k check digit upper", "10000013K", true},
		{"zero check digit", "10.000.004-0", true},
		{"unformatted", "123456785", true},
		{"wrong check digit", "12.345.678-9", false},
		{"k where digit expected", "12.345.678-K", false},
		{"legacy value", "19", true},
		{"legacy value formatted", "1-9", true},
		{"empty", "", false},
		{"single char", "5", false},
		{"k inside body", "1K345678-5", false},
		{"body is only k", "KK", false},
		{"noise", "hello", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateRut(tt.raw))
		})
	}
}

func TestValidateRut_CheckCharacterIsUnique(t *testing.T) {
	symbols := []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "K"}
	bodies := []string{"12345678", "11111111", "10000013", "10000004", "76543210", "5126663"}

	for _, body := range bodies {
		expected, ok := RutCheckDigit(body)
		require.True(t, ok)

		valid := 0
		for _, s := range symbols {
			if ValidateRut(body + s) {
				valid++
				assert.Equal(t, expected, s, "body %s", body)
			}
		}
		assert.Equal(t, 1, valid, "body %s", body)
	}
}

func TestValidateRut_RandomEightDigitBodies(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for range 500 {
		body := fmt.Sprintf("%08d", 10000000+rng.Intn(89999999))
		check, ok := RutCheckDigit(body)
		require.True(t, ok)
		assert.True(t, ValidateRut(body+check), body+check)
		assert.True(t, ValidateRut(FormatRut(body+check)), FormatRut(body+check))
	}
}

func TestValidateRut_WorkedExamples(t *testing.T) {
	// Weighted sums computed by hand, weights 2..7 cycling from the rightmost digit.
	tests := []struct {
		rut   string
		valid bool
	}{
		{"100.000.004-K", true}, // 4*2 + 1*4 = 12, 11 - 12%11 = 10
		{"100.000.009-0", true}, // 9*2 + 1*4 = 22, 11 - 22%11 = 11
		{"100.000.003-1", true}, // 3*2 + 1*4 = 10, 11 - 10 = 1
		{"1.000.005-K", true},   // 5*2 + 1*2 = 12
		{"1.000.013-0", true},   // 3*2 + 1*3 + 1*2 = 11
		{"1.000.005-k", true},
		{"100.000.004-0", false},
		{"100.000.009-K", false},
		{"1.000.005-0", false},
		{"1.000.013-K", false},
	}

	for _, tt := range tests {
		t.Run(tt.rut, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateRut(tt.rut))
		})
	}
}

func TestRutCheckDigit(t *testing.T) {
	tests := []struct {
		body string
		want string
		ok   bool
	}{
		{"12345678", "5", true},
		{"11111111", "1", true},
		{"10000013", "K", true},
		{"10000004", "0", true},
		{"1", "9", true},
		{"100000004", "K", true},
		{"100000009", "0", true},
		{"1000005", "K", true},
		{"1000013", "0", true},
		{"", "", false},
		{"12a4", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			got, ok := RutCheckDigit(tt.body)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRut(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		r, err := NewRut("123456785")
		require.NoError(t, err)
		assert.Equal(t, "12345678", r.Body())
		assert.Equal(t, "5", r.CheckDigit())
		assert.Equal(t, "123456785", r.Clean())
		assert.Equal(t, "12.345.678-5", r.String())
		assert.False(t, r.IsZero())
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := NewRut("12.345.678-9")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidRut)
	})

	t.Run("legacy value", func(t *testing.T) {
		r, err := NewRut("1-9")
		require.NoError(t, err)
		assert.Equal(t, "1-9", r.String())
	})

	t.Run("equality ignores formatting", func(t *testing.T) {
		assert.True(t, MustNewRut("12.345.678-5").Equals(MustNewRut("123456785")))
		assert.False(t, MustNewRut("12.345.678-5").Equals(MustNewRut("11.111.111-1")))
	})

	t.Run("zero value", func(t *testing.T) {
		var r Rut
		assert.True(t, r.IsZero())
		assert.Equal(t, "", r.String())
	})
}

func TestRut_JSON(t *testing.T) {
	type payload struct {
		Rut Rut `json:"rut"`
	}

	data, err := json.Marshal(payload{Rut: MustNewRut("10000013k")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rut":"10.000.013-K"}`, string(data))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"rut":"123456785"}`), &p))
	assert.Equal(t, "12.345.678-5", p.Rut.String())

	require.NoError(t, json.Unmarshal([]byte(`{"rut":""}`), &p))
	assert.True(t, p.Rut.IsZero())

	err = json.Unmarshal([]byte(`{"rut":"12.345.678-0"}`), &p)
	assert.ErrorIs(t, err, ErrInvalidRut)
}

func TestRut_ValueScan(t *testing.T) {
	v, err := MustNewRut("123456785").Value()
	require.NoError(t, err)
	assert.Equal(t, "12.345.678-5", v)

	v, err = Rut{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	var r Rut
	require.NoError(t, r.Scan("12.345.678-5"))
	assert.Equal(t, "123456785", r.Clean())

	require.NoError(t, r.Scan([]byte("11111111-1")))
	assert.Equal(t, "11.111.111-1", r.String())

	require.NoError(t, r.Scan(nil))
	assert.True(t, r.IsZero())

	assert.Error(t, r.Scan(42))
	assert.ErrorIs(t, r.Scan("12.345.678-0"), ErrInvalidRut)
}
