package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shopfront/internal/config"
	"shopfront/internal/handler"
	"shopfront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

// tokenAuthenticator maps fixed tokens to users.
type tokenAuthenticator map[string]*model.User

func (a tokenAuthenticator) Authenticate(_ context.Context, token string) (*model.User, error) {
	if u, ok := a[token]; ok {
		return u, nil
	}
	return nil, model.ErrUnauthorised
}

func newTestRouter(t *testing.T, db Pinger) http.Handler {
	t.Helper()

	cfg := &config.Config{
		CORS:      config.CORSConfig{Origins: []string{"https://shop.example.com"}},
		RateLimit: config.RateLimitConfig{Max: 2, Window: time.Minute},
	}
	authn := tokenAuthenticator{
		"user-token":  {ID: uuid.New(), Role: model.RoleUser, Status: model.UserStatusActive},
		"admin-token": {ID: uuid.New(), Role: model.RoleAdmin, Status: model.UserStatusActive},
	}

	// Handlers are never reached by these requests; only the middleware answers.
	h := Handlers{
		Auth:          &handler.AuthHandler{},
		Authenticator: authn,
		OrderFeed: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}),
	}
	return New(h, db, cfg, zerolog.Nop())
}

func TestRouter_Health(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
		wantBody   string
	}{
		{name: "database reachable", wantStatus: http.StatusOK, wantBody: `{"status": "healthy"}`},
		{name: "database down", pingErr: errors.New("connection refused"), wantStatus: http.StatusServiceUnavailable, wantBody: `{"status": "unhealthy"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, stubPinger{err: tt.pingErr})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestRouter_AccessControl(t *testing.T) {
	r := newTestRouter(t, stubPinger{})

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{name: "user route without token", method: http.MethodGet, path: Prefix + "/users/me", wantStatus: http.StatusUnauthorized},
		{name: "user route with bad token", method: http.MethodGet, path: Prefix + "/carts", token: "forged", wantStatus: http.StatusUnauthorized},
		{name: "admin route as user", method: http.MethodGet, path: Prefix + "/users/all-users", token: "user-token", wantStatus: http.StatusForbidden},
		{name: "admin product create as user", method: http.MethodPost, path: Prefix + "/products", token: "user-token", wantStatus: http.StatusForbidden},
		{name: "order feed as user", method: http.MethodGet, path: Prefix + "/orders/feed", token: "user-token", wantStatus: http.StatusForbidden},
		{name: "order feed as admin", method: http.MethodGet, path: Prefix + "/orders/feed", token: "admin-token", wantStatus: http.StatusTeapot},
		{name: "order feed with query token", method: http.MethodGet, path: Prefix + "/orders/feed?token=admin-token", wantStatus: http.StatusTeapot},
		{name: "query token off the feed", method: http.MethodGet, path: Prefix + "/users/me?token=admin-token", wantStatus: http.StatusUnauthorized},
		{name: "unknown route", method: http.MethodGet, path: Prefix + "/nope", wantStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodPut, path: Prefix + "/products", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusUnauthorized || tt.wantStatus == http.StatusForbidden {
				var body model.ErrorResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.False(t, body.Success)
				assert.Equal(t, "You are not authorized!", body.Message)
			}
		})
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := newTestRouter(t, stubPinger{})

	req := httptest.NewRequest(http.MethodOptions, Prefix+"/products", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_AuthRoutesRateLimited(t *testing.T) {
	r := newTestRouter(t, stubPinger{})

	// An empty body is rejected by the handler, so the limiter is the only
	// thing that can produce a 429.
	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, Prefix+"/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusBadRequest, http.StatusBadRequest, http.StatusTooManyRequests}, codes)
}
