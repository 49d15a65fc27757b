package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meatupclub/meatup/internal/config"
	"github.com/meatupclub/meatup/internal/identity"
)

const testSecret = "bootstrap-secret"

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		HTTPPort:            8080,
		DBDriver:            config.DriverSQLite,
		DatabaseURL:         "file:" + filepath.Join(t.TempDir(), "meatup.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		SessionTTL:          time.Hour,
		CookieSecure:        true,
		LogLevel:            "error",
		PublicURL:           "https://meatup.example.com",
		BootstrapAdminEmail: "owner@example.com",
		Identity:            config.IdentityConfig{HMACSecret: testSecret},
	}
}

func idToken(t *testing.T, email string) string {
	t.Helper()
	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, identity.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "owner",
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Email: email,
		Name:  "Owner",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestNewServerServesBootstrapAdmin(t *testing.T) {
	srv, err := newServer(t.Context(), testConfig(t), slog.New(slog.DiscardHandler), time.Now)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	body, err := json.Marshal(map[string]string{"id_token": idToken(t, "owner@example.com")})
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Len(t, session.Token, 64)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var me struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		IsAdmin bool   `json:"is_admin"`
		Status  string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "owner@example.com", me.Email)
	assert.Equal(t, "Owner", me.Name)
	assert.True(t, me.IsAdmin)
	assert.Equal(t, "active", me.Status)
}

func TestNewServerRejectsUnknownMembers(t *testing.T) {
	srv, err := newServer(t.Context(), testConfig(t), slog.New(slog.DiscardHandler), time.Now)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	body, err := json.Marshal(map[string]string{"id_token": idToken(t, "stranger@example.com")})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNewServerIsRestartable(t *testing.T) {
	cfg := testConfig(t)
	for range 2 {
		srv, err := newServer(t.Context(), cfg, slog.New(slog.DiscardHandler), time.Now)
		require.NoError(t, err)
		require.NoError(t, srv.Close())
	}
}

func TestNewServerInvalidConfiguration(t *testing.T) {
	cfg := testConfig(t)
	cfg.DBDriver = "mysql"
	_, err := newServer(t.Context(), cfg, slog.New(slog.DiscardHandler), time.Now)
	require.Error(t, err)

	cfg = testConfig(t)
	cfg.Identity = config.IdentityConfig{}
	_, err = newServer(t.Context(), cfg, slog.New(slog.DiscardHandler), time.Now)
	assert.ErrorIs(t, err, identity.ErrNoKeys)

	cfg = testConfig(t)
	cfg.BootstrapAdminEmail = "not-an-email"
	_, err = newServer(t.Context(), cfg, slog.New(slog.DiscardHandler), time.Now)
	assert.Error(t, err)
}

func TestRandomHex(t *testing.T) {
	t.Parallel()

	first := randomHex(32)
	assert.Len(t, first, 64)
	assert.NotEqual(t, first, randomHex(32))
	assert.Len(t, randomHex(0), 32)
}
