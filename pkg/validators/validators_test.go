package validators

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailValidator(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"alice@example.com", nil},
		{"", ErrEmailEmpty},
		{"not-an-email", ErrEmailInvalid},
		{"Alice <alice@example.com>", ErrEmailInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EmailValidator(tt.in))
		})
	}
}

func TestPasswordValidator(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"strong", "Str0ng!pass", nil},
		{"empty", "", ErrPasswordEmpty},
		{"short", "Ab1!", ErrPasswordTooShort},
		{"no symbol", "Str0ngpass", ErrPasswordWeak},
		{"no upper", "str0ng!pass", ErrPasswordWeak},
		{"no digit", "Strong!pass", ErrPasswordWeak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PasswordValidator(tt.in))
		})
	}
}

func TestPasswordMatch(t *testing.T) {
	assert.NoError(t, PasswordMatch("secret", "secret"))
	assert.Equal(t, ErrPasswordMismatch, PasswordMatch("secret", "Secret"))
	assert.Equal(t, ErrPasswordEmpty, PasswordMatch("", ""))
	assert.Equal(t, ErrPasswordEmpty, PasswordMatch("secret", ""))
}

type sample struct {
	Title  string `json:"title" validate:"required,max=5"`
	Status string `json:"status" validate:"oneof=Unassigned On-going Done"`
	Hidden string `json:"-" validate:"required"`
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := Struct(sample{Title: "toolong", Status: "Later"})
	require.Error(t, err)

	var se StructError
	require.True(t, errors.As(err, &se))
	assert.ElementsMatch(t, StructError{
		{Field: "title", Rule: "max=5"},
		{Field: "status", Rule: "oneof=Unassigned On-going Done"},
		{Field: "Hidden", Rule: "required"},
	}, se)
}

func TestStructValid(t *testing.T) {
	assert.NoError(t, Struct(sample{Title: "ok", Status: "Done", Hidden: "x"}))
}
