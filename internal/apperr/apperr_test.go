package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromClassifiesUnknownErrorsAsInternal(t *testing.T) {
	cause := errors.New("connection refused")

	e := From(cause)
	require.NotNil(t, e)
	assert.Equal(t, KindInternal, e.Kind)
	assert.Equal(t, "Internal server error", e.Message)
	assert.ErrorIs(t, e, cause)
}

func TestFromKeepsWrappedKind(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NotFound("Task not found"))

	e := From(err)
	assert.Equal(t, KindNotFound, e.Kind)
	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(err, KindConflict))
}

func TestFromNil(t *testing.T) {
	assert.Nil(t, From(nil))
}

func TestValidationCarriesFields(t *testing.T) {
	e := Validation("Invalid input", FieldViolation{Field: "title", Rule: "required"})

	assert.Equal(t, KindValidation, e.Kind)
	assert.Len(t, e.Fields, 1)
	assert.Contains(t, e.Error(), "validation")
}
