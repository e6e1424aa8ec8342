// Package scanner binds a registry and an engine into decode calls and
// renders the results as the cardinality-shaped response document.
package scanner

import (
	"context"
	"log/slog"
	"math"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/MeKo-Tech/barkit/internal/engine"
	"github.com/MeKo-Tech/barkit/internal/errs"
	"github.com/MeKo-Tech/barkit/internal/registry"
)

// Scanner executes decode calls against one registry. It does no locking:
// the caller must not run two decodes, or a decode and a reconfiguration,
// at the same time.
type Scanner struct {
	reg *registry.Registry
	eng engine.Engine
}

// New binds a registry and an engine. The registry must come from
// registry.Initialize; a nil registry reports ErrNotInitialized.
func New(reg *registry.Registry, eng engine.Engine) (*Scanner, error) {
	if reg == nil {
		return nil, errs.ErrNotInitialized
	}
	if eng == nil {
		return nil, errs.Validationf("", "engine must not be nil")
	}
	return &Scanner{reg: reg, eng: eng}, nil
}

// Registry returns the bound registry.
func (s *Scanner) Registry() *registry.Registry { return s.reg }

// EngineVersion reports the bound engine's version string.
func (s *Scanner) EngineVersion() string { return s.eng.Version() }

// DecodeImage runs one decode over a grayscale buffer. The buffer must hold
// at least width*height bytes, one byte per pixel in row-major order; excess
// bytes are ignored. The call is atomic from the caller's view: either a
// complete response or an error, never partial results. Engine failures
// surface as EngineError with the engine's message kept verbatim.
func (s *Scanner) DecodeImage(ctx context.Context, gray []byte, width, height int) (*Response, error) {
	if width <= 0 || height <= 0 {
		return nil, errs.Validationf("", "image dimensions must be positive")
	}
	if width > math.MaxInt/height {
		return nil, errs.Validationf("", "image dimensions overflow")
	}
	if len(gray) < width*height {
		return nil, errs.Validationf("", "Buffer too small for specified dimensions")
	}

	start := time.Now()
	items, err := s.eng.Decode(ctx, s.reg, gray, width, height)
	if err != nil {
		return nil, errs.FromEngine(err)
	}

	// Engine order is preserved; only the cap is applied.
	if limit := s.reg.MaximumResults(); len(items) > limit {
		items = items[:limit]
	}
	for i := range items {
		items[i].Text = norm.NFC.String(items[i].Text)
	}

	elapsed := time.Since(start)
	slog.Debug("decode complete",
		"width", width, "height", height,
		"results", len(items), "duration_ms", elapsed.Milliseconds())

	return &Response{Items: items, Elapsed: elapsed}, nil
}
