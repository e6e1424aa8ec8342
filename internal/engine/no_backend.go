//go:build !barkit_gozxing

package engine

import (
	"context"
	"errors"

	"github.com/MeKo-Tech/barkit/internal/registry"
)

// ErrNoBackend is returned by the default build, which links no decoder.
var ErrNoBackend = errors.New("no decoder backend linked; build with -tags=barkit_gozxing or supply an Engine")

type stubEngine struct{}

func newDefaultEngine() Engine { return stubEngine{} }

func (stubEngine) Decode(_ context.Context, _ *registry.Registry, _ []byte, _, _ int) ([]BaseResult, error) {
	lockOptions()
	return nil, ErrNoBackend
}

func (stubEngine) Version() string { return "none" }
