package symbology

import "github.com/MeKo-Tech/barkit/internal/errs"

// Extras carries the settings that exist only for particular symbologies.
// Exactly one variant (or nil) is attached to a Config, keyed by its
// DecoderType; consumers reach the fields by switching on the variant, so
// symbology-specific knobs never leak into the base record.
type Extras interface{ isExtras() }

// ChecksumExtras is attached to the linear symbologies whose only extra
// setting is a checksum scheme (Code 11, Code 39, MSI and the Code 25
// family).
type ChecksumExtras struct {
	Checksum ChecksumType
}

// MatrixExtras is attached to Data Matrix and QR Micro.
type MatrixExtras struct {
	DPM DPMMode
}

// QRExtras is attached to QR, which additionally supports merging
// structured-append multi-part symbols into one result.
type QRExtras struct {
	DPM            DPMMode
	MultiPartMerge bool
}

// UPCCompactExtras is attached to Upc-E and Upc-E1.
type UPCCompactExtras struct {
	ExpandToUPCA bool
}

// IDDocumentExtras is attached to ID Document.
type IDDocumentExtras struct {
	MasterChecksum ChecksumType
}

func (*ChecksumExtras) isExtras()   {}
func (*MatrixExtras) isExtras()     {}
func (*QRExtras) isExtras()         {}
func (*UPCCompactExtras) isExtras() {}
func (*IDDocumentExtras) isExtras() {}

// Config is the per-symbology configuration record. One generic record
// covers all symbologies; the variable part lives in Extras. Identity
// (decoder type, type name) is fixed at construction, the length bounds
// move only through SetLengthRange, and the extras move only through the
// capability setters, so a Config can never hold a combination its
// symbology does not admit.
type Config struct {
	decoderType   DecoderType
	typeName      string
	minimumLength int
	maximumLength int
	extras        Extras

	// Enabled marks the symbology for inclusion in decode attempts.
	Enabled bool
	// ExpectedCount hints how many symbols of this type one image holds.
	// Zero means unconstrained.
	ExpectedCount int
}

// New constructs the default configuration for dt, or nil when dt is not a
// known capability. Defaults are all-zero except where the engine contract
// says otherwise: MSI starts with a Mod10 checksum and a minimum length of
// 5, Codabar with a minimum length of 4.
func New(dt DecoderType) *Config {
	if !dt.Valid() {
		return nil
	}
	c := &Config{decoderType: dt, typeName: dt.String()}
	switch dt {
	case Msi:
		c.minimumLength = 5
		c.extras = &ChecksumExtras{Checksum: ChecksumMod10}
	case Codabar:
		c.minimumLength = 4
	case Code11, Code39, Code25, Interleaved25, IATA25, Matrix25, Datalogic25, COOP25:
		c.extras = &ChecksumExtras{Checksum: ChecksumDisabled}
	case Datamatrix, QRMicro:
		c.extras = &MatrixExtras{}
	case QR:
		c.extras = &QRExtras{}
	case UpcE, UpcE1:
		c.extras = &UPCCompactExtras{}
	case IDDocument:
		c.extras = &IDDocumentExtras{MasterChecksum: ChecksumDisabled}
	}
	return c
}

// Clone returns a deep copy of the record, extras included.
func (c *Config) Clone() *Config {
	clone := *c
	switch e := c.extras.(type) {
	case *ChecksumExtras:
		cp := *e
		clone.extras = &cp
	case *MatrixExtras:
		cp := *e
		clone.extras = &cp
	case *QRExtras:
		cp := *e
		clone.extras = &cp
	case *UPCCompactExtras:
		cp := *e
		clone.extras = &cp
	case *IDDocumentExtras:
		cp := *e
		clone.extras = &cp
	}
	return &clone
}

// DecoderType returns the capability this record configures.
func (c *Config) DecoderType() DecoderType { return c.decoderType }

// TypeName returns the display name, e.g. "Interleaved 2 of 5".
func (c *Config) TypeName() string { return c.typeName }

// MinimumLength returns the lower payload-length bound; 0 = unconstrained.
func (c *Config) MinimumLength() int { return c.minimumLength }

// MaximumLength returns the upper payload-length bound; 0 = unconstrained.
func (c *Config) MaximumLength() int { return c.maximumLength }

// Extras returns the symbology-specific variant, or nil for the plain
// symbologies. The variant is live: mutate it only through the setters.
func (c *Config) Extras() Extras { return c.extras }

// SetLengthRange updates both payload-length bounds at once. Zero on either
// side leaves that side unconstrained; equal positive bounds demand an exact
// length. A negative value on either side, or positive bounds with max below
// min, is rejected and the previous bounds stay in place.
func (c *Config) SetLengthRange(min, max int) error {
	if min < 0 || max < 0 {
		return errs.Validationf("", "Length must be positive number")
	}
	if min > 0 && max > 0 && max < min {
		return errs.Validationf("", "Maximum length can't be smaller than minimum")
	}
	c.minimumLength = min
	c.maximumLength = max
	return nil
}

// Checksum returns the configured checksum scheme; ok is false when the
// symbology carries no checksum setting. For ID Document this is the MRZ
// master checksum.
func (c *Config) Checksum() (ct ChecksumType, ok bool) {
	switch e := c.extras.(type) {
	case *ChecksumExtras:
		return e.Checksum, true
	case *IDDocumentExtras:
		return e.MasterChecksum, true
	}
	return ChecksumDisabled, false
}

// SetChecksum updates the checksum scheme. Symbologies without a checksum
// setting, and values outside the symbology's admissible set, are rejected
// without mutation.
func (c *Config) SetChecksum(ct ChecksumType) error {
	allowed := AllowedChecksums(c.decoderType)
	if allowed == nil {
		return errs.Validationf("", "%s has no checksum setting", c.typeName)
	}
	if !checksumAllowed(c.decoderType, ct) {
		return errs.Validationf("", "checksum %s not supported for %s (allowed: %s)",
			ct, c.typeName, checksumSetNames(allowed))
	}
	switch e := c.extras.(type) {
	case *ChecksumExtras:
		e.Checksum = ct
	case *IDDocumentExtras:
		e.MasterChecksum = ct
	}
	return nil
}

// DPM returns the direct-part-marking mode; ok is false when the symbology
// has no DPM setting.
func (c *Config) DPM() (m DPMMode, ok bool) {
	switch e := c.extras.(type) {
	case *MatrixExtras:
		return e.DPM, true
	case *QRExtras:
		return e.DPM, true
	}
	return DPMDisabled, false
}

// SetDPMMode updates the direct-part-marking mode for Data Matrix, QR and
// QR Micro.
func (c *Config) SetDPMMode(m DPMMode) error {
	if !m.valid() {
		return errs.Validationf("", "invalid DPM mode %d", int(m))
	}
	switch e := c.extras.(type) {
	case *MatrixExtras:
		e.DPM = m
	case *QRExtras:
		e.DPM = m
	default:
		return errs.Validationf("", "%s has no DPM setting", c.typeName)
	}
	return nil
}

// MultiPartMerge returns the structured-append merge flag; ok is false for
// every symbology but QR.
func (c *Config) MultiPartMerge() (on bool, ok bool) {
	if e, isQR := c.extras.(*QRExtras); isQR {
		return e.MultiPartMerge, true
	}
	return false, false
}

// SetMultiPartMerge toggles merging of QR structured-append parts.
func (c *Config) SetMultiPartMerge(on bool) error {
	e, isQR := c.extras.(*QRExtras)
	if !isQR {
		return errs.Validationf("", "%s has no multi-part merge setting", c.typeName)
	}
	e.MultiPartMerge = on
	return nil
}

// ExpandToUPCA returns the Upc-E/Upc-E1 expansion flag; ok is false for
// other symbologies.
func (c *Config) ExpandToUPCA() (on bool, ok bool) {
	if e, isCompact := c.extras.(*UPCCompactExtras); isCompact {
		return e.ExpandToUPCA, true
	}
	return false, false
}

// SetExpandToUPCA toggles expanding compact UPC payloads to Upc-A form.
func (c *Config) SetExpandToUPCA(on bool) error {
	e, isCompact := c.extras.(*UPCCompactExtras)
	if !isCompact {
		return errs.Validationf("", "%s has no Upc-A expansion setting", c.typeName)
	}
	e.ExpandToUPCA = on
	return nil
}

// Capabilities lists the extra settings the symbology supports, for
// presentation surfaces. Length bounds and expected count apply everywhere
// and are not listed.
func Capabilities(dt DecoderType) []string {
	c := New(dt)
	if c == nil {
		return nil
	}
	switch c.Extras().(type) {
	case *ChecksumExtras:
		return []string{"checksum"}
	case *MatrixExtras:
		return []string{"dpm"}
	case *QRExtras:
		return []string{"dpm", "multi-part-merge"}
	case *UPCCompactExtras:
		return []string{"expand-to-upc-a"}
	case *IDDocumentExtras:
		return []string{"master-checksum"}
	}
	return nil
}
