package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := PersistenceError("approve", cause).ForOrder(42)

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "order 42")
	assert.Contains(t, err.Error(), "stage: approve")
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, "INVALID_STATE", CodeOf(ValidationError("INVALID_STATE", "order is not pending")))
	assert.Equal(t, "NOT_FOUND", CodeOf(NewError(ErrNotFound, "", "")))
	assert.Equal(t, "INTERNAL_ERROR", CodeOf(errors.New("plain")))
}

func TestRespondErrorMapsKinds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", ValidationError("INVALID_PROVISIONING", "simNumber is required"), http.StatusBadRequest, "INVALID_PROVISIONING"},
		{"not found", NotFoundError("ORDER_NOT_FOUND", "order not found"), http.StatusNotFound, "ORDER_NOT_FOUND"},
		{"forbidden", ForbiddenError("admin role required"), http.StatusForbidden, "FORBIDDEN"},
		{"credit", NewError(ErrInsufficientCredit, "INSUFFICIENT_CREDIT", "not enough credit"), http.StatusPaymentRequired, "INSUFFICIENT_CREDIT"},
		{"partial", NewError(ErrPartialProvisioning, "PARTIAL_PROVISIONING", "rolled back").AtStage("provision"), http.StatusInternalServerError, "PARTIAL_PROVISIONING"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/v1/orders", nil)

			RespondError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var resp Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, expiresAt, err := m.GenerateJWT(7, "reseller1", "reseller")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "reseller1", claims.Username)
	assert.Equal(t, "reseller", claims.Role)
}

func TestJWTRejectsForeignSecret(t *testing.T) {
	token, _, err := NewJWTManager("one", time.Hour).GenerateJWT(1, "admin", "admin")
	require.NoError(t, err)

	_, err = NewJWTManager("two", time.Hour).ValidateJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateTemporaryPassword(t *testing.T) {
	a, err := GenerateTemporaryPassword()
	require.NoError(t, err)
	b, err := GenerateTemporaryPassword()
	require.NoError(t, err)

	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
}
