package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"clickservice/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func render(t *testing.T, err error) (int, envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	FromError(c, err)

	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestFromError_StatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.Invalid("name", "is required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{domain.NotFound("slot", 4), http.StatusNotFound, "NOT_FOUND"},
		{domain.Conflict("slot %d already reserved", 4), http.StatusConflict, "CONFLICT"},
		{domain.InvalidTransition("complete", domain.StatePending), http.StatusConflict, "INVALID_STATE"},
		{domain.Forbidden("operators only"), http.StatusForbidden, "FORBIDDEN"},
		{fmt.Errorf("assign: %w", domain.ErrConflict), http.StatusConflict, "CONFLICT"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		status, body := render(t, tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.False(t, body.Success)
		assert.Equal(t, tc.code, body.Error.Code)
	}
}

func TestFromError_ValidationDetails(t *testing.T) {
	verr := domain.NewValidationError()
	verr.Add("name", "is required")
	verr.Add("hourly_rate", "must be greater than 0")

	_, body := render(t, verr)

	var fields []domain.FieldError
	require.NoError(t, json.Unmarshal(body.Error.Details, &fields))
	assert.Len(t, fields, 2)
	assert.Equal(t, "hourly_rate", fields[1].Field)
}
