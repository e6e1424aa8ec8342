package registry

import (
	"fmt"
	"math"
	"strings"

	"github.com/MeKo-Tech/barkit/internal/errs"
)

// DecodingSpeed trades scan thoroughness against latency. The ordinals are
// caller-visible codes.
type DecodingSpeed int

const (
	SpeedFast DecodingSpeed = iota
	SpeedNormal
	SpeedSlow
	SpeedRigorous
)

var speedNames = []string{"fast", "normal", "slow", "rigorous"}

// Valid reports whether s is a known speed.
func (s DecodingSpeed) Valid() bool { return s >= SpeedFast && s <= SpeedRigorous }

func (s DecodingSpeed) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return speedNames[s]
}

// ParseSpeed resolves a speed by name, case-insensitively.
func ParseSpeed(name string) (DecodingSpeed, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, n := range speedNames {
		if key == n {
			return DecodingSpeed(i), true
		}
	}
	return -1, false
}

// Formatting selects how decoded payloads are post-formatted before being
// returned (GS1 AI splitting, driving-licence field extraction).
type Formatting int

const (
	FormattingDisabled Formatting = iota
	FormattingAutomatic
	FormattingGS1
	FormattingAAMVA
	FormattingSADL
)

var formattingNames = []string{"disabled", "automatic", "gs1", "aamva", "sadl"}

// Valid reports whether f is a known formatting mode.
func (f Formatting) Valid() bool { return f >= FormattingDisabled && f <= FormattingSADL }

func (f Formatting) String() string {
	if !f.Valid() {
		return "unknown"
	}
	return formattingNames[f]
}

// ParseFormatting resolves a formatting mode by name, case-insensitively.
func ParseFormatting(name string) (Formatting, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, n := range formattingNames {
		if key == n {
			return Formatting(i), true
		}
	}
	return -1, false
}

// ROI is the scan window in percent of the image, (0,0) top-left.
type ROI struct {
	Left   float32 `json:"left" yaml:"left"`
	Top    float32 `json:"top" yaml:"top"`
	Width  float32 `json:"width" yaml:"width"`
	Height float32 `json:"height" yaml:"height"`
}

// FullImage is the default scan window covering the whole image.
func FullImage() ROI { return ROI{Left: 0, Top: 0, Width: 100, Height: 100} }

// IsFull reports whether r covers the whole image.
func (r ROI) IsFull() bool { return r == FullImage() }

// Validate checks that the window is a real sub-rectangle of the image:
// finite values, non-negative origin, positive size, and the window must
// not extend past 100% on either axis.
func (r ROI) Validate() error {
	for _, v := range []float32{r.Left, r.Top, r.Width, r.Height} {
		if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
			return errs.Validationf("", "region of interest values must be finite")
		}
	}
	if r.Left < 0 || r.Top < 0 {
		return errs.Validationf("", "region of interest origin must not be negative")
	}
	if r.Width <= 0 || r.Height <= 0 {
		return errs.Validationf("", "region of interest size must be positive")
	}
	if float64(r.Left)+float64(r.Width) > 100 || float64(r.Top)+float64(r.Height) > 100 {
		return errs.Validationf("", "region of interest extends past the image")
	}
	return nil
}

func (r ROI) String() string {
	return fmt.Sprintf("(%g,%g,%g,%g)", r.Left, r.Top, r.Width, r.Height)
}
