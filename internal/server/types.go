// Package server exposes the barcode scanner over HTTP: decode endpoints for
// images, raw grayscale buffers, PDFs and a WebSocket live feed, plus
// configuration and introspection routes. One decode runs at a time; the
// engine below is not reentrant.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/barkit/internal/config"
	"github.com/MeKo-Tech/barkit/internal/errs"
	"github.com/MeKo-Tech/barkit/internal/pdfscan"
	"github.com/MeKo-Tech/barkit/internal/registry"
	"github.com/MeKo-Tech/barkit/internal/scanner"
)

// pdfScanner runs a PDF through the scanner. Swappable in tests.
type pdfScanner func(ctx context.Context, sc *scanner.Scanner, filename, pageRange string, maxDim int) (*pdfscan.FileResult, error)

// Server holds the HTTP server state and dependencies.
type Server struct {
	sc           *scanner.Scanner
	cfg          config.ServerConfig
	maxImageSize int

	// decodeMu serializes decodes across all transports.
	decodeMu sync.Mutex

	rateLimiter *RateLimiter
	scanPDF     pdfScanner
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status string `json:"status"`
	Engine string `json:"engine,omitempty"`
	Time   string `json:"time"`
}

// SymbologyInfo describes one decode capability.
type SymbologyInfo struct {
	Code         int      `json:"code"`
	Name         string   `json:"name"`
	Enabled      bool     `json:"enabled"`
	Capabilities []string `json:"capabilities,omitempty"`
}

// SymbologiesResponse is the GET /v1/symbologies body.
type SymbologiesResponse struct {
	Symbologies []SymbologyInfo `json:"symbologies"`
	Count       int             `json:"count"`
}

// ConfigResponse is the GET /v1/config body and the PUT /v1/config request
// shape. On PUT, nil fields keep their current value.
type ConfigResponse struct {
	Speed          *string       `json:"speed,omitempty"`
	Formatting     *string       `json:"formatting,omitempty"`
	MaximumResults *int          `json:"maximum_results,omitempty"`
	ROI            *registry.ROI `json:"roi,omitempty"`
	Symbologies    []string      `json:"symbologies,omitempty"`
}

// ErrorResponse is the JSON error body for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// New creates a server around an initialized scanner.
func New(sc *scanner.Scanner, cfg *config.Config) *Server {
	s := &Server{
		sc:           sc,
		cfg:          cfg.Server,
		maxImageSize: cfg.Scan.MaxImageSize,
		scanPDF:      pdfscan.ScanFile,
	}
	if cfg.Server.RateLimitEnabled {
		s.rateLimiter = NewRateLimiter(cfg.Server.RequestsPerMinute)
	}
	return s
}

// SetupRoutes configures the HTTP routes. The live decode socket skips the
// middleware stack; response headers cannot be added after the upgrade.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.requestIDMiddleware(s.healthHandler)))
	mux.HandleFunc("/v1/symbologies", s.corsMiddleware(s.requestIDMiddleware(s.symbologiesHandler)))
	mux.HandleFunc("/v1/config", s.corsMiddleware(s.requestIDMiddleware(s.configHandler)))
	mux.HandleFunc("/v1/decode/image", s.corsMiddleware(s.requestIDMiddleware(s.rateLimitMiddleware(s.decodeImageHandler))))
	mux.HandleFunc("/v1/decode/pdf", s.corsMiddleware(s.requestIDMiddleware(s.rateLimitMiddleware(s.decodePDFHandler))))
	mux.HandleFunc("/v1/decode/live", s.liveDecodeHandler)
	mux.Handle("/metrics", promhttp.Handler())
}

// writeJSON writes v with an application/json content type.
func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps a decode-path error onto an HTTP status and a JSON body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errs.IsValidation(err):
		status = http.StatusBadRequest
	case errs.IsNotInitialized(err):
		status = http.StatusServiceUnavailable
	case errs.IsEngine(err):
		status = http.StatusBadGateway
	}
	s.writeErrorMessage(w, err.Error(), status)
}

// writeErrorMessage writes a JSON error body with an explicit status.
func (s *Server) writeErrorMessage(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
