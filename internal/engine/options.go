package engine

import (
	"sync"

	"github.com/MeKo-Tech/barkit/internal/errs"
)

// ProcOptions are the process-wide execution options consumed by engine
// implementations. They govern the engine's internal parallelism only;
// callers still serialize decode calls per registry themselves.
type ProcOptions struct {
	MaxThreads           int
	HardwareAcceleration bool
}

var (
	optMu     sync.Mutex
	opts      = ProcOptions{MaxThreads: 1}
	optLocked bool
)

// SetMaxThreads caps the engine's internal worker threads. Must be called
// before the first decode.
func SetMaxThreads(n int) error {
	if n < 1 {
		return errs.Validationf("", "max threads must be at least 1")
	}
	optMu.Lock()
	defer optMu.Unlock()
	if optLocked {
		return errs.Validationf("", "engine options are fixed after first decode")
	}
	opts.MaxThreads = n
	return nil
}

// SetHardwareAcceleration toggles GPU use where the backend supports it.
// Must be called before the first decode.
func SetHardwareAcceleration(on bool) error {
	optMu.Lock()
	defer optMu.Unlock()
	if optLocked {
		return errs.Validationf("", "engine options are fixed after first decode")
	}
	opts.HardwareAcceleration = on
	return nil
}

// Options returns the current process options.
func Options() ProcOptions {
	optMu.Lock()
	defer optMu.Unlock()
	return opts
}

// lockOptions freezes the process options. Every backend calls it at the
// top of Decode.
func lockOptions() {
	optMu.Lock()
	optLocked = true
	optMu.Unlock()
}

func resetOptionsForTest() {
	optMu.Lock()
	opts = ProcOptions{MaxThreads: 1}
	optLocked = false
	optMu.Unlock()
}
