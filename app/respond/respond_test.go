package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"lumo/task-api/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorBody struct {
	Error     string                  `json:"error"`
	Fields    []apperr.FieldViolation `json:"fields"`
	RequestID string                  `json:"requestID"`
}

func render(t *testing.T, err error) (int, errorBody) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set("requestID", "req-1")

	Error(c, err)

	var b errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	return w.Code, b
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{apperr.Validation("bad"), http.StatusBadRequest},
		{apperr.Conflict("dup"), http.StatusConflict},
		{apperr.NotFound("gone"), http.StatusNotFound},
		{apperr.Authentication("who"), http.StatusUnauthorized},
		{apperr.Internal(errors.New("x")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		code, b := render(t, tt.err)
		assert.Equal(t, tt.code, code, tt.err.Error())
		assert.Equal(t, "req-1", b.RequestID)
	}
}

func TestErrorHidesCause(t *testing.T) {
	code, b := render(t, errors.New("pq: password authentication failed for user lumo"))

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", b.Error)
}

func TestErrorFields(t *testing.T) {
	_, b := render(t, apperr.Validation("Invalid input", apperr.FieldViolation{Field: "title", Rule: "required"}))

	assert.Equal(t, "Invalid input", b.Error)
	assert.Equal(t, []apperr.FieldViolation{{Field: "title", Rule: "required"}}, b.Fields)
}
