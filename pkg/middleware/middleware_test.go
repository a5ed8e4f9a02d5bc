package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/receivables-dashboard-api/internal/domain"
	"github.com/vfg2006/receivables-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/receivables-dashboard-api/pkg/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type stubValidator struct {
	claims *domain.Claims
	err    error
}

func (s stubValidator) ValidateToken(string) (*domain.Claims, error) {
	return s.claims, s.err
}

func ok() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body apiErrors.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func TestAuthMiddleware(t *testing.T) {
	log.SetupTestLogger()
	viewer := &domain.Claims{UserID: 3, UserRoleID: domain.RoleViewer}

	tests := []struct {
		name      string
		path      string
		header    string
		validator stubValidator
		status    int
		code      string
	}{
		{name: "public path", path: "/healthcheck", status: http.StatusNoContent},
		{name: "missing header", path: "/v1/kpis", status: http.StatusUnauthorized, code: apiErrors.ErrInvalidToken},
		{name: "not bearer", path: "/v1/kpis", header: "Basic abc", status: http.StatusUnauthorized, code: apiErrors.ErrInvalidToken},
		{
			name:      "expired",
			path:      "/v1/kpis",
			header:    "Bearer old",
			validator: stubValidator{err: jwt.ErrTokenExpired},
			status:    http.StatusUnauthorized,
			code:      apiErrors.ErrExpiredToken,
		},
		{
			name:      "invalid",
			path:      "/v1/kpis",
			header:    "Bearer junk",
			validator: stubValidator{err: errors.New("signature is invalid")},
			status:    http.StatusUnauthorized,
			code:      apiErrors.ErrInvalidToken,
		},
		{
			name:      "valid",
			path:      "/v1/kpis",
			header:    "Bearer good",
			validator: stubValidator{claims: viewer},
			status:    http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			AuthMiddleware(tt.validator)(ok()).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, errorCode(t, rec))
			}
		})
	}
}

func TestAuthMiddleware_StoresClaims(t *testing.T) {
	claims := &domain.Claims{UserID: 9, UserRoleID: domain.RoleAdmin}
	var seen *domain.Claims

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	AuthMiddleware(stubValidator{claims: claims})(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.Same(t, claims, seen)
}

func TestRoleMiddleware(t *testing.T) {
	log.SetupTestLogger()

	withClaims := func(roleID int) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/v1/uploads", nil)
		claims := &domain.Claims{UserID: 1, UserRoleID: roleID}
		return req.WithContext(context.WithValue(req.Context(), ContextKeyUser, claims))
	}

	t.Run("manager may upload", func(t *testing.T) {
		rec := httptest.NewRecorder()
		AdminOrManager()(ok()).ServeHTTP(rec, withClaims(domain.RoleManager))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("viewer may not upload", func(t *testing.T) {
		rec := httptest.NewRecorder()
		AdminOrManager()(ok()).ServeHTTP(rec, withClaims(domain.RoleViewer))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, apiErrors.ErrInsufficientPrivilege, errorCode(t, rec))
	})

	t.Run("viewer may read", func(t *testing.T) {
		rec := httptest.NewRecorder()
		AllRoles()(ok()).ServeHTTP(rec, withClaims(domain.RoleViewer))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("no claims", func(t *testing.T) {
		rec := httptest.NewRecorder()
		AllRoles()(ok()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/kpis", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCors(t *testing.T) {
	handler := Cors([]string{"http://localhost:3000"})(ok())

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/kpis", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("foreign origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/kpis", nil)
		req.Header.Set("Origin", "http://evil.local")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/v1/uploads", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestLogPanicMiddleware(t *testing.T) {
	log.SetupTestLogger()
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	LogPanicMiddleware()(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/kpis", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apiErrors.ErrInternalServer, errorCode(t, rec))
}

func TestLoggingMiddleware_KeepsStatus(t *testing.T) {
	log.SetupTestLogger()
	var correlationID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID = log.GetCorrelationID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	LoggingMiddleware()(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/kpis", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, correlationID)
}
