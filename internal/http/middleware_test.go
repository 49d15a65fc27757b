package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meatupclub/meatup/internal/application"
	"github.com/meatupclub/meatup/internal/logging"
)

type fakeSessionValidator struct {
	principal application.Principal
	err       error
	tokens    []string
}

func (f *fakeSessionValidator) ValidateSession(_ context.Context, token string) (application.Principal, error) {
	f.tokens = append(f.tokens, token)
	return f.principal, f.err
}

func TestRequireSession(t *testing.T) {
	t.Parallel()

	t.Run("rejects requests without valid session tokens", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name           string
			cookie         *http.Cookie
			header         string
			err            error
			expectedStatus int
		}{
			{name: "missing credentials", expectedStatus: http.StatusUnauthorized},
			{name: "non bearer header", header: "Basic abc", expectedStatus: http.StatusUnauthorized},
			{name: "revoked session", cookie: &http.Cookie{Name: sessionCookieName, Value: "revoked"}, err: application.ErrSessionRevoked, expectedStatus: http.StatusUnauthorized},
			{name: "expired session", header: "Bearer expired", err: application.ErrSessionExpired, expectedStatus: http.StatusUnauthorized},
			{name: "storage failure", header: "Bearer broken", err: errors.New("disk on fire"), expectedStatus: http.StatusInternalServerError},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				req := httptest.NewRequest(http.MethodGet, "/protected", nil)
				if tc.cookie != nil {
					req.AddCookie(tc.cookie)
				}
				if tc.header != "" {
					req.Header.Set("Authorization", tc.header)
				}
				recorder := httptest.NewRecorder()

				handler := RequireSession(&fakeSessionValidator{err: tc.err}, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
					t.Fatal("next handler should not be called when authentication fails")
				}))
				handler.ServeHTTP(recorder, req)

				assert.Equal(t, tc.expectedStatus, recorder.Code)
				var body errorResponse
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
				assert.NotEmpty(t, body.Error)
			})
		}
	})

	t.Run("attaches authenticated principal to request context", func(t *testing.T) {
		t.Parallel()

		principal := application.Principal{UserID: 42, IsAdmin: true, Status: application.MemberActive}
		validator := &fakeSessionValidator{principal: principal}

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "bearer  valid-token ")
		recorder := httptest.NewRecorder()

		var captured application.Principal
		handler := RequireSession(validator, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			require.True(t, ok)
			captured = p
			w.WriteHeader(http.StatusOK)
		}))
		handler.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, principal, captured)
		assert.Equal(t, []string{"valid-token"}, validator.tokens)
	})

	t.Run("falls back to the session cookie", func(t *testing.T) {
		t.Parallel()

		validator := &fakeSessionValidator{principal: application.Principal{UserID: 1}}
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "cookie-token"})

		RequireSession(validator, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, []string{"cookie-token"}, validator.tokens)
	})
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var requestLogger *slog.Logger
	handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestLogger = logging.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	require.NotNil(t, requestLogger)
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
	assert.Contains(t, buf.String(), `"request_id":"`+recorder.Header().Get("X-Request-ID")+`"`)
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"path":"/events"`)
}

func TestRequestLoggerKeepsIncomingRequestID(t *testing.T) {
	t.Parallel()

	handler := RequestLogger(slog.New(slog.DiscardHandler))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	assert.Equal(t, "abc-123", recorder.Header().Get("X-Request-ID"))
}
