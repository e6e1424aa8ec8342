// Package barkit exposes the barcode decoder as one process-wide session
// with string status results. This is the surface embedders bind to: every
// call answers with a "SUCCESS: ..." or "ERROR: ..." string (or a serialized
// result document), never a Go error. Programs wanting typed errors and
// independent sessions should use internal/registry and internal/scanner
// through their own wiring instead.
package barkit

import (
	"context"
	"fmt"
	"sync"

	"github.com/MeKo-Tech/barkit/internal/engine"
	"github.com/MeKo-Tech/barkit/internal/registry"
	"github.com/MeKo-Tech/barkit/internal/scanner"
	"github.com/MeKo-Tech/barkit/internal/symbology"
)

// session is the process-global state behind the string-status surface.
type session struct {
	reg *registry.Registry
	sc  *scanner.Scanner
}

var (
	mu   sync.Mutex
	live *session

	// newEngine is replaced in tests.
	newEngine = engine.Default
)

const errNotInitialized = "ERROR: SDK not initialized"

// Initialize validates the license key and builds the process session.
// On success it applies the embedding defaults: one engine thread, hardware
// acceleration off, normal decoding speed, one result per image. Calling it
// again replaces the session.
func Initialize(licenseKey string) string {
	mu.Lock()
	defer mu.Unlock()

	reg, message, err := registry.Initialize(licenseKey)
	if err != nil {
		return "ERROR: " + err.Error()
	}

	// Engine options freeze at the first decode; skip the setters when the
	// options already hold the defaults so re-initialization keeps working.
	opts := engine.Options()
	if opts.MaxThreads != 1 {
		if err := engine.SetMaxThreads(1); err != nil {
			return "ERROR: " + err.Error()
		}
	}
	if opts.HardwareAcceleration {
		if err := engine.SetHardwareAcceleration(false); err != nil {
			return "ERROR: " + err.Error()
		}
	}

	if err := reg.SetDecodingSpeed(registry.SpeedNormal); err != nil {
		return "ERROR: " + err.Error()
	}
	if err := reg.SetMaximumResults(1); err != nil {
		return "ERROR: " + err.Error()
	}

	sc, err := scanner.New(reg, newEngine())
	if err != nil {
		return "ERROR: " + err.Error()
	}

	live = &session{reg: reg, sc: sc}
	return "SUCCESS: " + message
}

// IsInitialized reports whether a session is live.
func IsInitialized() bool {
	mu.Lock()
	defer mu.Unlock()
	return live != nil
}

// GetVersion returns the engine version string. It works without a session.
func GetVersion() string {
	mu.Lock()
	defer mu.Unlock()
	if live != nil {
		return live.sc.EngineVersion()
	}
	return newEngine().Version()
}

// SetEnabledDecoders enables exactly the named decoders, given as the
// integer codes listed by the symbologies surfaces. The whole call is
// rejected on the first unknown code.
func SetEnabledDecoders(codes []int) string {
	mu.Lock()
	defer mu.Unlock()
	if live == nil {
		return errNotInitialized
	}

	decoders := make([]symbology.DecoderType, len(codes))
	for i, c := range codes {
		decoders[i] = symbology.DecoderType(c)
	}
	if err := live.reg.SetEnabledDecoders(decoders); err != nil {
		return "ERROR: " + err.Error()
	}
	return fmt.Sprintf("SUCCESS: Enabled %d decoders", len(decoders))
}

// SetDecodingSpeed selects the speed/effort trade-off
// (0=Fast, 1=Normal, 2=Slow, 3=Rigorous).
func SetDecodingSpeed(speed int) string {
	mu.Lock()
	defer mu.Unlock()
	if live == nil {
		return errNotInitialized
	}

	if err := live.reg.SetDecodingSpeed(registry.DecodingSpeed(speed)); err != nil {
		return "ERROR: " + err.Error()
	}
	return fmt.Sprintf("SUCCESS: Decoding speed set to %d", speed)
}

// SetRegionOfInterest restricts decoding to a window given in percent of
// the image (left, top, width, height).
func SetRegionOfInterest(left, top, width, height float32) string {
	mu.Lock()
	defer mu.Unlock()
	if live == nil {
		return errNotInitialized
	}

	if err := live.reg.SetRegionOfInterest(left, top, width, height); err != nil {
		return "ERROR: " + err.Error()
	}
	return fmt.Sprintf("SUCCESS: ROI set to (%g,%g,%g,%g)", left, top, width, height)
}

// SetMaximumResults caps how many symbols one decode call may return.
func SetMaximumResults(n int) string {
	mu.Lock()
	defer mu.Unlock()
	if live == nil {
		return errNotInitialized
	}

	if err := live.reg.SetMaximumResults(n); err != nil {
		return "ERROR: " + err.Error()
	}
	return fmt.Sprintf("SUCCESS: Maximum results set to %d", n)
}

// DecodeImage decodes one grayscale image, one byte per pixel in row-major
// order, and returns the serialized result document: a flat document for
// zero or one symbol, a document with a results array for several. Failures
// return an "ERROR: ..." string instead.
func DecodeImage(buf []byte, width, height int) string {
	mu.Lock()
	defer mu.Unlock()
	if live == nil {
		return errNotInitialized
	}

	resp, err := live.sc.DecodeImage(context.Background(), buf, width, height)
	if err != nil {
		return "ERROR: " + err.Error()
	}
	doc, err := scanner.ToJSONIndent(resp)
	if err != nil {
		return "ERROR: " + err.Error()
	}
	return doc
}

// Shutdown drops the session. Subsequent calls report the SDK as not
// initialized until Initialize succeeds again.
func Shutdown() {
	mu.Lock()
	defer mu.Unlock()
	live = nil
}
