package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/barkit/internal/config"
)

func TestNew(t *testing.T) {
	t.Run("rate limiting disabled by default", func(t *testing.T) {
		server, err := newTestServer(&fakeEngine{}, nil)
		require.NoError(t, err)

		assert.NotNil(t, server.sc)
		assert.NotNil(t, server.scanPDF)
		assert.Nil(t, server.rateLimiter)
		assert.Equal(t, config.DefaultConfig().Scan.MaxImageSize, server.maxImageSize)
	})

	t.Run("rate limiting enabled", func(t *testing.T) {
		server, err := newTestServer(&fakeEngine{}, func(cfg *config.Config) {
			cfg.Server.RateLimitEnabled = true
			cfg.Server.RequestsPerMinute = 10
		})
		require.NoError(t, err)

		require.NotNil(t, server.rateLimiter)
		assert.Equal(t, 10, server.rateLimiter.requestsPerMinute)
	})
}

func TestServer_SetupRoutes(t *testing.T) {
	server, err := newTestServer(&fakeEngine{}, nil)
	require.NoError(t, err)

	mux := http.NewServeMux()
	server.SetupRoutes(mux)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{name: "health route", method: "GET", path: "/health", expectedStatus: http.StatusOK},
		{name: "symbologies route", method: "GET", path: "/v1/symbologies", expectedStatus: http.StatusOK},
		{name: "config route", method: "GET", path: "/v1/config", expectedStatus: http.StatusOK},
		{name: "metrics route", method: "GET", path: "/metrics", expectedStatus: http.StatusOK},
		{name: "decode image rejects GET", method: "GET", path: "/v1/decode/image", expectedStatus: http.StatusMethodNotAllowed},
		{name: "decode pdf rejects GET", method: "GET", path: "/v1/decode/pdf", expectedStatus: http.StatusMethodNotAllowed},
		{name: "unknown route", method: "GET", path: "/nope", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestServer_SetupRoutes_MiddlewareApplied(t *testing.T) {
	server, err := newTestServer(&fakeEngine{}, nil)
	require.NoError(t, err)

	mux := http.NewServeMux()
	server.SetupRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestJSON_FieldNames(t *testing.T) {
	t.Run("health response", func(t *testing.T) {
		data, err := json.Marshal(HealthResponse{Status: "healthy", Engine: "e", Time: "now"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"healthy","engine":"e","time":"now"}`, string(data))
	})

	t.Run("symbology info omits empty capabilities", func(t *testing.T) {
		data, err := json.Marshal(SymbologyInfo{Code: 4, Name: "Code 128", Enabled: true})
		require.NoError(t, err)
		assert.JSONEq(t, `{"code":4,"name":"Code 128","enabled":true}`, string(data))
	})

	t.Run("config response omits unset fields", func(t *testing.T) {
		speed := "fast"
		data, err := json.Marshal(ConfigResponse{Speed: &speed})
		require.NoError(t, err)
		assert.JSONEq(t, `{"speed":"fast"}`, string(data))
	})

	t.Run("error response", func(t *testing.T) {
		data, err := json.Marshal(ErrorResponse{Error: "nope"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"error":"nope"}`, string(data))
	})
}
