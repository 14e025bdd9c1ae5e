package jwt

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentalneeds/leadflow-backend/pkg/config"
	"github.com/rentalneeds/leadflow-backend/pkg/errors"
)

func testConfig() *config.JWTConfig {
	return &config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Hour, Issuer: "leadflow"}
}

func appCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
	return appErr.Code
}

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager(testConfig())

	token, err := m.GenerateAccessToken("admin")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, time.Minute)

	claims, err := m.ValidateAccessToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestManager_Expired(t *testing.T) {
	m := NewManager(testConfig())
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.GenerateAccessToken("admin")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateAccessToken(token.AccessToken)
	assert.Equal(t, "TOKEN_EXPIRED", appCode(t, err))
}

func TestManager_Invalid(t *testing.T) {
	m := NewManager(testConfig())
	token, err := m.GenerateAccessToken("admin")
	require.NoError(t, err)

	other := testConfig()
	other.Secret = "another-secret"
	_, err = NewManager(other).ValidateAccessToken(token.AccessToken)
	assert.Equal(t, "TOKEN_INVALID", appCode(t, err))

	foreign := testConfig()
	foreign.Issuer = "someone-else"
	_, err = NewManager(foreign).ValidateAccessToken(token.AccessToken)
	assert.Equal(t, "TOKEN_INVALID", appCode(t, err))

	_, err = m.ValidateAccessToken("not.a.token")
	assert.Equal(t, "TOKEN_INVALID", appCode(t, err))
}
