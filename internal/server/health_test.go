package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/ticktick-mcp/internal/instrumentation"
	"github.com/teemow/ticktick-mcp/internal/ticktick"
)

type staticTokens struct{}

func (staticTokens) ValidToken(context.Context) (string, error) { return "token", nil }

func (staticTokens) Refresh(context.Context, string) (string, error) { return "token", nil }

func newTestServerContext(t *testing.T) *ServerContext {
	t.Helper()
	client := ticktick.NewClient("http://127.0.0.1:1", staticTokens{})
	sc, err := NewServerContext(context.Background(), client, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestNewServerContext_RequiresClient(t *testing.T) {
	_, err := NewServerContext(context.Background(), nil, nil)
	require.Error(t, err)
}

func TestServerContext_Shutdown(t *testing.T) {
	sc := newTestServerContext(t)

	assert.False(t, sc.IsShutdown())
	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())
	assert.Error(t, sc.Context().Err())

	// idempotent
	require.NoError(t, sc.Shutdown())
}

func TestServerContext_AuthStateWithoutManager(t *testing.T) {
	sc := newTestServerContext(t)
	assert.Equal(t, instrumentation.StatusUnknown, sc.AuthState())
}

func TestHealthChecker(t *testing.T) {
	tests := []struct {
		name       string
		handler    func(h *HealthChecker) http.Handler
		ready      bool
		shutdown   bool
		wantStatus int
		wantBody   string
	}{
		{name: "liveness", handler: (*HealthChecker).LivenessHandler, ready: true, wantStatus: http.StatusOK, wantBody: healthStatusOK},
		{name: "liveness while not ready", handler: (*HealthChecker).LivenessHandler, ready: false, wantStatus: http.StatusOK, wantBody: healthStatusOK},
		{name: "readiness", handler: (*HealthChecker).ReadinessHandler, ready: true, wantStatus: http.StatusOK, wantBody: healthStatusOK},
		{name: "readiness not ready", handler: (*HealthChecker).ReadinessHandler, ready: false, wantStatus: http.StatusServiceUnavailable, wantBody: healthStatusNotReady},
		{name: "readiness shutting down", handler: (*HealthChecker).ReadinessHandler, ready: true, shutdown: true, wantStatus: http.StatusServiceUnavailable, wantBody: healthStatusNotReady},
		{name: "detailed shutting down", handler: (*HealthChecker).DetailedHealthHandler, ready: true, shutdown: true, wantStatus: http.StatusServiceUnavailable, wantBody: healthStatusShuttingDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := newTestServerContext(t)
			h := NewHealthChecker(sc)
			h.SetReady(tt.ready)
			if tt.shutdown {
				require.NoError(t, sc.Shutdown())
			}

			rec := httptest.NewRecorder()
			tt.handler(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body["status"])
		})
	}
}

func TestHealthChecker_DetailedReportsAuthState(t *testing.T) {
	h := NewHealthChecker(newTestServerContext(t))

	rec := httptest.NewRecorder()
	h.DetailedHealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil))

	var body DetailedHealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, healthStatusOK, body.Status)
	assert.Equal(t, instrumentation.StatusUnknown, body.Auth)
	assert.NotEmpty(t, body.Uptime)
}
