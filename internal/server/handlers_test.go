package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/barkit/internal/errs"
	"github.com/MeKo-Tech/barkit/internal/registry"
	"github.com/MeKo-Tech/barkit/internal/symbology"
)

func TestServer_HealthHandler(t *testing.T) {
	server, err := newTestServer(&fakeEngine{}, nil)
	require.NoError(t, err)

	tests := []struct {
		name           string
		method         string
		expectedStatus int
		checkResponse  bool
	}{
		{
			name:           "GET request success",
			method:         "GET",
			expectedStatus: http.StatusOK,
			checkResponse:  true,
		},
		{
			name:           "POST request not allowed",
			method:         "POST",
			expectedStatus: http.StatusMethodNotAllowed,
			checkResponse:  false,
		},
		{
			name:           "PUT request not allowed",
			method:         "PUT",
			expectedStatus: http.StatusMethodNotAllowed,
			checkResponse:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/health", nil)
			w := httptest.NewRecorder()

			server.healthHandler(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.checkResponse {
				var response HealthResponse
				err := json.Unmarshal(w.Body.Bytes(), &response)
				require.NoError(t, err)

				assert.Equal(t, "healthy", response.Status)
				assert.Equal(t, "fake-engine 1.0", response.Engine)
				assert.NotEmpty(t, response.Time)
				assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			}
		})
	}
}

func TestServer_SymbologiesHandler(t *testing.T) {
	server, err := newTestServer(&fakeEngine{}, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/symbologies", nil)
	w := httptest.NewRecorder()

	server.symbologiesHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response SymbologiesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, len(symbology.AllDecoderTypes()), response.Count)
	assert.Len(t, response.Symbologies, response.Count)

	// Declaration order: Aztec is code 0.
	first := response.Symbologies[0]
	assert.Equal(t, 0, first.Code)
	assert.Equal(t, "Aztec", first.Name)
	assert.False(t, first.Enabled)

	byName := make(map[string]SymbologyInfo, response.Count)
	for _, info := range response.Symbologies {
		byName[info.Name] = info
	}
	assert.Equal(t, []string{"dpm", "multi-part-merge"}, byName["QR"].Capabilities)
	assert.Equal(t, []string{"checksum"}, byName["MSI"].Capabilities)
	assert.Equal(t, []string{"expand-to-upc-a"}, byName["Upc-E"].Capabilities)
	assert.Equal(t, []string{"master-checksum"}, byName["ID Document"].Capabilities)
	assert.Empty(t, byName["Code 128"].Capabilities)
}

func TestServer_SymbologiesHandler_ReflectsEnabledState(t *testing.T) {
	server, err := newTestServer(&fakeEngine{}, nil)
	require.NoError(t, err)

	reg := server.sc.Registry()
	require.NoError(t, reg.SetEnabledDecoders([]symbology.DecoderType{symbology.QR, symbology.Ean13}))

	req := httptest.NewRequest(http.MethodGet, "/v1/symbologies", nil)
	w := httptest.NewRecorder()
	server.symbologiesHandler(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var response SymbologiesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	enabled := make([]string, 0, 2)
	for _, info := range response.Symbologies {
		if info.Enabled {
			enabled = append(enabled, info.Name)
		}
	}
	assert.Equal(t, []string{"QR", "Ean-13"}, enabled)
}

func TestServer_SymbologiesHandler_MethodNotAllowed(t *testing.T) {
	server, err := newTestServer(&fakeEngine{}, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/symbologies", nil)
	w := httptest.NewRecorder()
	server.symbologiesHandler(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServer_ConfigHandler_Get(t *testing.T) {
	server, err := newTestServer(&fakeEngine{}, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/config", nil)
	w := httptest.NewRecorder()

	server.configHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response ConfigResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	require.NotNil(t, response.Speed)
	assert.Equal(t, "normal", *response.Speed)
	require.NotNil(t, response.Formatting)
	assert.Equal(t, "automatic", *response.Formatting)
	require.NotNil(t, response.MaximumResults)
	assert.Equal(t, 1, *response.MaximumResults)
	require.NotNil(t, response.ROI)
	assert.True(t, response.ROI.IsFull())
	assert.Empty(t, response.Symbologies)
}

func TestServer_ConfigHandler_Put(t *testing.T) {
	server, err := newTestServer(&fakeEngine{}, nil)
	require.NoError(t, err)

	body := `{
		"speed": "slow",
		"formatting": "gs1",
		"maximum_results": 3,
		"roi": {"left": 10, "top": 20, "width": 50, "height": 40},
		"symbologies": ["qr", "code128"]
	}`
	req := httptest.NewRequest(http.MethodPut, "/v1/config", strings.NewReader(body))
	w := httptest.NewRecorder()

	server.configHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response ConfigResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotNil(t, response.Speed)
	assert.Equal(t, "slow", *response.Speed)
	require.NotNil(t, response.Formatting)
	assert.Equal(t, "gs1", *response.Formatting)
	require.NotNil(t, response.MaximumResults)
	assert.Equal(t, 3, *response.MaximumResults)
	assert.Equal(t, []string{"QR", "Code 128"}, response.Symbologies)

	reg := server.sc.Registry()
	assert.Equal(t, registry.SpeedSlow, reg.DecodingSpeed())
	assert.Equal(t, registry.FormattingGS1, reg.Formatting())
	assert.Equal(t, 3, reg.MaximumResults())
	assert.Equal(t, registry.ROI{Left: 10, Top: 20, Width: 50, Height: 40}, reg.ROI())
}

func TestServer_ConfigHandler_PutPartial(t *testing.T) {
	server, err := newTestServer(&fakeEngine{}, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/v1/config", strings.NewReader(`{"maximum_results": 5}`))
	w := httptest.NewRecorder()

	server.configHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	reg := server.sc.Registry()
	assert.Equal(t, 5, reg.MaximumResults())
	// Untouched fields keep their defaults.
	assert.Equal(t, registry.SpeedNormal, reg.DecodingSpeed())
	assert.True(t, reg.ROI().IsFull())
}

func TestServer_ConfigHandler_PutValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{
			name:    "malformed JSON",
			body:    `{"speed": `,
			wantMsg: "invalid config JSON",
		},
		{
			name:    "unknown speed",
			body:    `{"speed": "ludicrous"}`,
			wantMsg: "unknown speed ludicrous",
		},
		{
			name:    "unknown formatting",
			body:    `{"formatting": "yaml"}`,
			wantMsg: "unknown formatting yaml",
		},
		{
			name:    "zero maximum results",
			body:    `{"maximum_results": 0}`,
			wantMsg: "maximum results must be at least 1",
		},
		{
			name:    "roi past image edge",
			body:    `{"roi": {"left": 60, "top": 0, "width": 50, "height": 100}}`,
			wantMsg: "region of interest extends past the image",
		},
		{
			name:    "unknown symbology",
			body:    `{"symbologies": ["qr", "barcodezilla"]}`,
			wantMsg: "unknown symbology barcodezilla",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := newTestServer(&fakeEngine{}, nil)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPut, "/v1/config", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			server.configHandler(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Contains(t, response.Error, tt.wantMsg)
		})
	}
}

func TestServer_ConfigHandler_PutIsAtomic(t *testing.T) {
	server, err := newTestServer(&fakeEngine{}, nil)
	require.NoError(t, err)

	// Valid speed next to an unknown symbology: the whole update must be
	// rejected without the speed changing.
	body := `{"speed": "slow", "symbologies": ["nope"]}`
	req := httptest.NewRequest(http.MethodPut, "/v1/config", strings.NewReader(body))
	w := httptest.NewRecorder()

	server.configHandler(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, registry.SpeedNormal, server.sc.Registry().DecodingSpeed())
	assert.Empty(t, server.sc.Registry().EnabledDecoders())
}

func TestServer_ConfigHandler_MethodNotAllowed(t *testing.T) {
	server, err := newTestServer(&fakeEngine{}, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/v1/config", nil)
	w := httptest.NewRecorder()
	server.configHandler(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServer_WriteError(t *testing.T) {
	server, err := newTestServer(&fakeEngine{}, nil)
	require.NoError(t, err)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{
			name:           "validation error maps to 400",
			err:            errs.Validationf("decode", "bad input"),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "not initialized maps to 503",
			err:            errs.ErrNotInitialized,
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "engine error maps to 502",
			err:            errs.FromEngine(errors.New("decoder crashed")),
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "unknown error maps to 500",
			err:            errors.New("something else"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			server.writeError(w, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.NotEmpty(t, response.Error)
		})
	}
}

func TestServer_WriteErrorMessage(t *testing.T) {
	server, err := newTestServer(&fakeEngine{}, nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	server.writeErrorMessage(w, "No image file provided", http.StatusBadRequest)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "No image file provided", response.Error)
}
