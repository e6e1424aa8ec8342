package engine

import (
	"context"

	"github.com/MeKo-Tech/barkit/internal/registry"
	"github.com/MeKo-Tech/barkit/internal/symbology"
)

// BaseResult is one decoded symbol as reported by the engine, before
// marshaling. Extra carries engine-provided key/value detail (GS1 element
// strings, ID document fields); the display name is always derived from
// Type, never stored.
type BaseResult struct {
	Type  symbology.BarcodeType
	Text  string
	Extra map[string]string
}

// Engine decodes one grayscale image under the settings held by the
// registry. Implementations read the registry but never mutate it, return
// results in engine order, and report zero symbols as an empty slice with a
// nil error.
type Engine interface {
	Decode(ctx context.Context, reg *registry.Registry, gray []byte, width, height int) ([]BaseResult, error)
	Version() string
}

// Default returns the engine selected at build time.
func Default() Engine { return newDefaultEngine() }
