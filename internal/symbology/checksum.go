package symbology

import "strings"

// ChecksumType selects the checksum scheme a linear symbology verifies
// during decode. Each symbology admits only a subset of the values; see
// AllowedChecksums.
type ChecksumType int

const (
	ChecksumDisabled ChecksumType = iota
	ChecksumEnabled
	ChecksumSingle
	ChecksumDouble
	ChecksumMod10
	ChecksumMod11
	ChecksumMod1010
	ChecksumMod1110
	ChecksumMod11IBM
	ChecksumMod1110IBM

	numChecksumTypes // sentinel, keep last
)

var checksumNames = [numChecksumTypes]string{
	ChecksumDisabled:   "disabled",
	ChecksumEnabled:    "enabled",
	ChecksumSingle:     "single",
	ChecksumDouble:     "double",
	ChecksumMod10:      "mod10",
	ChecksumMod11:      "mod11",
	ChecksumMod1010:    "mod1010",
	ChecksumMod1110:    "mod1110",
	ChecksumMod11IBM:   "mod11ibm",
	ChecksumMod1110IBM: "mod1110ibm",
}

func (c ChecksumType) String() string {
	if c < 0 || c >= numChecksumTypes {
		return "unknown"
	}
	return checksumNames[c]
}

// ParseChecksum resolves a checksum name, ignoring case and separators.
func ParseChecksum(name string) (ChecksumType, bool) {
	key := normalizeName(name)
	for c, n := range checksumNames {
		if key == n {
			return ChecksumType(c), true
		}
	}
	switch key {
	case "off", "none":
		return ChecksumDisabled, true
	case "on":
		return ChecksumEnabled, true
	}
	return -1, false
}

// toggleChecksums is the admissible set for the symbologies whose checksum
// is a plain on/off switch.
var toggleChecksums = []ChecksumType{ChecksumDisabled, ChecksumEnabled}

// msiChecksums covers the MSI schemes.
var msiChecksums = []ChecksumType{
	ChecksumDisabled,
	ChecksumMod10,
	ChecksumMod11,
	ChecksumMod1010,
	ChecksumMod1110,
	ChecksumMod11IBM,
	ChecksumMod1110IBM,
}

// code11Checksums covers the Code 11 single/double digit schemes.
var code11Checksums = []ChecksumType{ChecksumDisabled, ChecksumSingle, ChecksumDouble}

// AllowedChecksums returns the checksum values the symbology admits, in a
// stable order, or nil when the symbology carries no checksum knob at all.
func AllowedChecksums(d DecoderType) []ChecksumType {
	switch d {
	case Msi:
		return msiChecksums
	case Code11:
		return code11Checksums
	case Code39, Code25, Interleaved25, IATA25, Matrix25, Datalogic25, COOP25:
		return toggleChecksums
	case IDDocument:
		// The ID Document knob verifies the MRZ master checksum.
		return toggleChecksums
	default:
		return nil
	}
}

func checksumAllowed(d DecoderType, c ChecksumType) bool {
	for _, a := range AllowedChecksums(d) {
		if a == c {
			return true
		}
	}
	return false
}

// DPMMode toggles direct-part-marking decode effort for the matrix
// symbologies that support it.
type DPMMode int

const (
	DPMDisabled DPMMode = iota
	DPMEnabled
)

func (m DPMMode) valid() bool { return m == DPMDisabled || m == DPMEnabled }

func (m DPMMode) String() string {
	if m == DPMEnabled {
		return "enabled"
	}
	return "disabled"
}

func checksumSetNames(set []ChecksumType) string {
	names := make([]string, len(set))
	for i, c := range set {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}
