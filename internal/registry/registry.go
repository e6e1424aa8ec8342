// Package registry holds the scan-time configuration shared by all decode
// calls: one symbology.Config slot per decode capability plus the scan-wide
// settings (speed, scan window, result cap, payload formatting).
//
// A Registry is obtained only through Initialize. Methods on a nil *Registry
// never panic: mutators and Config report ErrNotInitialized, plain getters
// read as the documented defaults. The registry does no locking of its own;
// callers must not reconfigure while a decode is in flight.
package registry

import (
	"strings"

	"github.com/MeKo-Tech/barkit/internal/errs"
	"github.com/MeKo-Tech/barkit/internal/symbology"
)

// Registry is the decode session configuration.
type Registry struct {
	slots      []*symbology.Config // indexed by DecoderType ordinal
	speed      DecodingSpeed
	roi        ROI
	maxResults int
	formatting Formatting
}

// Initialize validates the license key and returns a fresh registry along
// with a status message suitable for caller-facing surfaces. Every decode
// capability starts with its default configuration, disabled; scan settings
// start at speed Normal, full-image window, one result, automatic
// formatting.
func Initialize(licenseKey string) (*Registry, string, error) {
	key := strings.TrimSpace(licenseKey)
	if key == "" {
		return nil, "", errs.Validationf("", "license key must not be blank")
	}

	types := symbology.AllDecoderTypes()
	slots := make([]*symbology.Config, len(types))
	for i, dt := range types {
		slots[i] = symbology.New(dt)
	}

	r := &Registry{
		slots:      slots,
		speed:      SpeedNormal,
		roi:        FullImage(),
		maxResults: 1,
		formatting: FormattingAutomatic,
	}
	return r, "license accepted (key " + maskKey(key) + ")", nil
}

func maskKey(key string) string {
	const visible = 4
	if len(key) <= visible {
		return strings.Repeat("*", len(key))
	}
	return "****" + key[len(key)-visible:]
}

// Config returns the live configuration slot for dt. The slot stays owned
// by the registry; changes through it take effect on the next decode.
func (r *Registry) Config(dt symbology.DecoderType) (*symbology.Config, error) {
	if r == nil {
		return nil, errs.ErrNotInitialized
	}
	if !dt.Valid() {
		return nil, errs.Validationf("", "unknown decoder type %d", int(dt))
	}
	return r.slots[int(dt)], nil
}

// Configs returns every configuration slot in declaration order. The slots
// are live, not copies. A nil registry has none.
func (r *Registry) Configs() []*symbology.Config {
	if r == nil {
		return nil
	}
	return r.slots
}

// SetEnabledDecoders replaces the enabled set: listed capabilities are
// enabled, all others disabled. Duplicates are harmless. Any unknown value
// rejects the whole call and leaves the previous set untouched.
func (r *Registry) SetEnabledDecoders(decoders []symbology.DecoderType) error {
	if r == nil {
		return errs.ErrNotInitialized
	}
	for _, d := range decoders {
		if !d.Valid() {
			return errs.Validationf("", "unknown decoder type %d", int(d))
		}
	}
	enabled := make(map[symbology.DecoderType]bool, len(decoders))
	for _, d := range decoders {
		enabled[d] = true
	}
	for _, c := range r.slots {
		c.Enabled = enabled[c.DecoderType()]
	}
	return nil
}

// EnabledDecoders returns the enabled capabilities in declaration order.
func (r *Registry) EnabledDecoders() []symbology.DecoderType {
	if r == nil {
		return nil
	}
	var out []symbology.DecoderType
	for _, c := range r.slots {
		if c.Enabled {
			out = append(out, c.DecoderType())
		}
	}
	return out
}

// SetDecodingSpeed selects the scan effort level.
func (r *Registry) SetDecodingSpeed(s DecodingSpeed) error {
	if r == nil {
		return errs.ErrNotInitialized
	}
	if !s.Valid() {
		return errs.Validationf("", "invalid decoding speed %d", int(s))
	}
	r.speed = s
	return nil
}

// DecodingSpeed returns the scan effort level; Normal on a nil registry.
func (r *Registry) DecodingSpeed() DecodingSpeed {
	if r == nil {
		return SpeedNormal
	}
	return r.speed
}

// SetRegionOfInterest restricts scanning to a window given in percent of
// the image. The window must lie fully inside the image; an invalid window
// is rejected without touching the current one.
func (r *Registry) SetRegionOfInterest(left, top, width, height float32) error {
	if r == nil {
		return errs.ErrNotInitialized
	}
	roi := ROI{Left: left, Top: top, Width: width, Height: height}
	if err := roi.Validate(); err != nil {
		return err
	}
	r.roi = roi
	return nil
}

// ROI returns the scan window; full image on a nil registry.
func (r *Registry) ROI() ROI {
	if r == nil {
		return FullImage()
	}
	return r.roi
}

// SetMaximumResults caps how many results one decode call may return.
func (r *Registry) SetMaximumResults(n int) error {
	if r == nil {
		return errs.ErrNotInitialized
	}
	if n < 1 {
		return errs.Validationf("", "maximum results must be at least 1")
	}
	r.maxResults = n
	return nil
}

// MaximumResults returns the per-call result cap; 1 on a nil registry.
func (r *Registry) MaximumResults() int {
	if r == nil {
		return 1
	}
	return r.maxResults
}

// SetFormatting selects the payload post-formatting mode.
func (r *Registry) SetFormatting(f Formatting) error {
	if r == nil {
		return errs.ErrNotInitialized
	}
	if !f.Valid() {
		return errs.Validationf("", "invalid formatting mode %d", int(f))
	}
	r.formatting = f
	return nil
}

// Formatting returns the payload post-formatting mode; Automatic on a nil
// registry.
func (r *Registry) Formatting() Formatting {
	if r == nil {
		return FormattingAutomatic
	}
	return r.formatting
}
