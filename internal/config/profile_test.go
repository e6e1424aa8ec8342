package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/barkit/internal/registry"
	"github.com/MeKo-Tech/barkit/internal/symbology"
)

const sampleProfile = `
qr:
  enabled: true
  dpm_mode: true
  multi_part_merge: true
msi:
  enabled: true
  checksum: mod1010
  min_length: 6
code128:
  enabled: true
  min_length: 4
  max_length: 20
  expected_count: 2
`

// TestParseProfile tests parsing a well-formed profile.
func TestParseProfile(t *testing.T) {
	profile, err := ParseProfile([]byte(sampleProfile))
	if err != nil {
		t.Fatalf("ParseProfile() error: %v", err)
	}
	if len(profile.Symbologies) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(profile.Symbologies))
	}

	qr, ok := profile.Symbologies["qr"]
	if !ok {
		t.Fatal("Expected a qr entry")
	}
	if qr.Enabled == nil || !*qr.Enabled {
		t.Error("Expected qr enabled")
	}
	if qr.DPMMode == nil || !*qr.DPMMode {
		t.Error("Expected qr dpm_mode set")
	}
	if qr.MinLength != nil {
		t.Error("Expected qr min_length unset")
	}

	code128 := profile.Symbologies["code128"]
	if code128.ExpectedCount == nil || *code128.ExpectedCount != 2 {
		t.Error("Expected code128 expected_count 2")
	}
}

// TestParseProfileUnknownSymbology tests the eager name check.
func TestParseProfileUnknownSymbology(t *testing.T) {
	_, err := ParseProfile([]byte("barcodezilla:\n  enabled: true\n"))
	if err == nil {
		t.Error("ParseProfile() expected error for unknown symbology, got nil")
	}
}

// TestParseProfileInvalidYAML tests the YAML error path.
func TestParseProfileInvalidYAML(t *testing.T) {
	_, err := ParseProfile([]byte("qr:\n  enabled: [unclosed"))
	if err == nil {
		t.Error("ParseProfile() expected error for invalid YAML, got nil")
	}
}

// TestLoadProfile tests reading a profile from disk.
func TestLoadProfile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "retail.yaml")
	if err := os.WriteFile(path, []byte(sampleProfile), 0o644); err != nil {
		t.Fatalf("Failed to write profile: %v", err)
	}

	profile, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile() error: %v", err)
	}
	if len(profile.Symbologies) != 3 {
		t.Errorf("Expected 3 entries, got %d", len(profile.Symbologies))
	}

	if _, err := LoadProfile(filepath.Join(tmpDir, "missing.yaml")); err == nil {
		t.Error("LoadProfile() expected error for missing file, got nil")
	}
}

// TestProfileApply pushes a profile onto a registry and inspects the
// resulting per-symbology settings.
func TestProfileApply(t *testing.T) {
	reg, _, err := registry.Initialize("unit-test-license")
	if err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	profile, err := ParseProfile([]byte(sampleProfile))
	if err != nil {
		t.Fatalf("ParseProfile() error: %v", err)
	}
	if err := profile.Apply(reg); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	qr, err := reg.Config(symbology.QR)
	if err != nil {
		t.Fatalf("Config(QR) error: %v", err)
	}
	if !qr.Enabled {
		t.Error("Expected QR enabled")
	}
	if mode, ok := qr.DPM(); !ok || mode != symbology.DPMEnabled {
		t.Errorf("Expected QR DPM enabled, got %v (ok=%v)", mode, ok)
	}
	if on, ok := qr.MultiPartMerge(); !ok || !on {
		t.Error("Expected QR multi-part merge on")
	}

	msi, err := reg.Config(symbology.Msi)
	if err != nil {
		t.Fatalf("Config(Msi) error: %v", err)
	}
	if ct, ok := msi.Checksum(); !ok || ct != symbology.ChecksumMod1010 {
		t.Errorf("Expected MSI checksum mod1010, got %v (ok=%v)", ct, ok)
	}
	if msi.MinimumLength() != 6 {
		t.Errorf("Expected MSI minimum length 6, got %d", msi.MinimumLength())
	}

	code128, err := reg.Config(symbology.Code128)
	if err != nil {
		t.Fatalf("Config(Code128) error: %v", err)
	}
	if code128.MinimumLength() != 4 || code128.MaximumLength() != 20 {
		t.Errorf("Expected Code128 length range 4..20, got %d..%d",
			code128.MinimumLength(), code128.MaximumLength())
	}
	if code128.ExpectedCount != 2 {
		t.Errorf("Expected Code128 expected count 2, got %d", code128.ExpectedCount)
	}
}

// TestProfileApplyIsAtomic checks that one bad entry leaves the whole
// registry untouched, including entries that would have applied cleanly.
func TestProfileApplyIsAtomic(t *testing.T) {
	reg, _, err := registry.Initialize("unit-test-license")
	if err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	// "double" is a Code 11 checksum, not valid for MSI.
	bad := `
aztec:
  enabled: true
msi:
  checksum: double
`
	profile, err := ParseProfile([]byte(bad))
	if err != nil {
		t.Fatalf("ParseProfile() error: %v", err)
	}
	if err := profile.Apply(reg); err == nil {
		t.Fatal("Apply() expected error, got nil")
	}

	aztec, err := reg.Config(symbology.Aztec)
	if err != nil {
		t.Fatalf("Config(Aztec) error: %v", err)
	}
	if aztec.Enabled {
		t.Error("Expected Aztec to stay disabled after failed apply")
	}
	msi, err := reg.Config(symbology.Msi)
	if err != nil {
		t.Fatalf("Config(Msi) error: %v", err)
	}
	if ct, _ := msi.Checksum(); ct != symbology.ChecksumMod10 {
		t.Errorf("Expected MSI checksum to stay mod10, got %v", ct)
	}
}

// TestProfileApplyRejectsWrongKnob tests that a knob a symbology does not
// have fails the apply.
func TestProfileApplyRejectsWrongKnob(t *testing.T) {
	reg, _, err := registry.Initialize("unit-test-license")
	if err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	profile, err := ParseProfile([]byte("code128:\n  dpm_mode: true\n"))
	if err != nil {
		t.Fatalf("ParseProfile() error: %v", err)
	}
	if err := profile.Apply(reg); err == nil {
		t.Error("Apply() expected error for dpm_mode on Code 128, got nil")
	}
}

// TestProfileApplyNegativeExpectedCount tests the expected_count guard.
func TestProfileApplyNegativeExpectedCount(t *testing.T) {
	reg, _, err := registry.Initialize("unit-test-license")
	if err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	profile, err := ParseProfile([]byte("qr:\n  expected_count: -1\n"))
	if err != nil {
		t.Fatalf("ParseProfile() error: %v", err)
	}
	if err := profile.Apply(reg); err == nil {
		t.Error("Apply() expected error for negative expected_count, got nil")
	}
}

// TestProfileChecksumDrivesIDDocument tests that the checksum key flips the
// ID document master checksum toggle.
func TestProfileChecksumDrivesIDDocument(t *testing.T) {
	reg, _, err := registry.Initialize("unit-test-license")
	if err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	profile, err := ParseProfile([]byte("id:\n  enabled: true\n  checksum: enabled\n"))
	if err != nil {
		t.Fatalf("ParseProfile() error: %v", err)
	}
	if err := profile.Apply(reg); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	doc, err := reg.Config(symbology.IDDocument)
	if err != nil {
		t.Fatalf("Config(IDDocument) error: %v", err)
	}
	if ct, ok := doc.Checksum(); !ok || ct != symbology.ChecksumEnabled {
		t.Errorf("Expected ID document master checksum enabled, got %v (ok=%v)", ct, ok)
	}
}
