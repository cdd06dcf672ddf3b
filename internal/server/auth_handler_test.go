package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelCrowe11/CroweLM/internal/config"
	"github.com/MichaelCrowe11/CroweLM/internal/types"
)

const testAPIPassword = "correct horse battery staple"

// setupTestAuthHandler creates an AuthHandler over a hash of the test
// password.
func setupTestAuthHandler(t *testing.T) (*AuthHandler, *JWTService) {
	passwordConfig := &config.PasswordConfig{
		BcryptCost: 10, // Lower cost for faster tests
		Pepper:     "",
	}
	jwtConfig := &config.JWTConfig{
		Secret:          "test-secret-key-for-jwt-signing-minimum-32-bytes",
		ExpirationHours: 24,
	}

	hash, err := passwordConfig.HashPassword(testAPIPassword)
	require.NoError(t, err)

	jwtSvc := NewJWTService(jwtConfig)
	return NewAuthHandler(hash, passwordConfig, jwtSvc), jwtSvc
}

func TestAuthHandler_IssueToken_InvalidJSON(t *testing.T) {
	handler, _ := setupTestAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.IssueToken(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body")
}

func TestAuthHandler_IssueToken_MissingPassword(t *testing.T) {
	handler, _ := setupTestAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.IssueToken(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation error")
}

func TestAuthHandler_IssueToken_WrongPassword(t *testing.T) {
	handler, _ := setupTestAuthHandler(t)

	body, _ := json.Marshal(types.TokenRequest{Password: "not the password"})
	req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.IssueToken(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid password")
}

func TestAuthHandler_IssueToken_Success(t *testing.T) {
	handler, jwtSvc := setupTestAuthHandler(t)

	body, _ := json.Marshal(types.TokenRequest{Password: testAPIPassword})
	req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.IssueToken(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp types.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.ExpiresAt.After(time.Now()), "expiry should be in the future")

	// The issued token must pass validation
	assert.NoError(t, jwtSvc.ValidateToken(resp.Token))
}
