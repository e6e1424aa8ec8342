package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/barkit/internal/registry"
	"github.com/MeKo-Tech/barkit/internal/symbology"
)

// Profile is a bulk per-symbology settings file. Keys are symbology names
// (parsed the same way as scan.symbologies entries), values are the knobs to
// change. Absent knobs keep their current value.
//
//	code128:
//	  enabled: true
//	  min_length: 4
//	msi:
//	  enabled: true
//	  checksum: mod1010
//	qr:
//	  enabled: true
//	  dpm_mode: true
//	  multi_part_merge: true
type Profile struct {
	Symbologies map[string]ProfileEntry `yaml:",inline"`
}

// ProfileEntry holds the optional per-symbology overrides. Pointer fields
// distinguish "not set" from a zero value.
type ProfileEntry struct {
	Enabled        *bool   `yaml:"enabled"`
	ExpectedCount  *int    `yaml:"expected_count"`
	MinLength      *int    `yaml:"min_length"`
	MaxLength      *int    `yaml:"max_length"`
	Checksum       *string `yaml:"checksum"`
	DPMMode        *bool   `yaml:"dpm_mode"`
	MultiPartMerge *bool   `yaml:"multi_part_merge"`
	ExpandToUPCA   *bool   `yaml:"expand_to_upca"`
}

// LoadProfile reads and parses a profile file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	profile, err := ParseProfile(data)
	if err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return profile, nil
}

// ParseProfile parses profile YAML and resolves every symbology name.
func ParseProfile(data []byte) (*Profile, error) {
	var raw map[string]ProfileEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid profile YAML: %w", err)
	}
	for name := range raw {
		if _, ok := symbology.Parse(name); !ok {
			return nil, fmt.Errorf("unknown symbology %q in profile", name)
		}
	}
	return &Profile{Symbologies: raw}, nil
}

// Apply pushes the profile onto the registry. All entries are staged against
// clones of the live settings first; the registry is only touched once every
// entry has been accepted, so a bad entry leaves the registry unchanged.
func (p *Profile) Apply(reg *registry.Registry) error {
	type staged struct {
		live *symbology.Config
		next *symbology.Config
	}

	names := make([]string, 0, len(p.Symbologies))
	for name := range p.Symbologies {
		names = append(names, name)
	}
	sort.Strings(names)

	stages := make([]staged, 0, len(names))
	for _, name := range names {
		entry := p.Symbologies[name]
		dt, ok := symbology.Parse(name)
		if !ok {
			return fmt.Errorf("unknown symbology %q in profile", name)
		}
		live, err := reg.Config(dt)
		if err != nil {
			return err
		}
		next := live.Clone()
		if err := entry.applyTo(next); err != nil {
			return fmt.Errorf("profile entry %q: %w", name, err)
		}
		stages = append(stages, staged{live: live, next: next})
	}

	// Commit phase: nothing below can fail.
	for _, s := range stages {
		*s.live = *s.next
	}
	return nil
}

func (e *ProfileEntry) applyTo(cfg *symbology.Config) error {
	if e.Enabled != nil {
		cfg.Enabled = *e.Enabled
	}
	if e.ExpectedCount != nil {
		if *e.ExpectedCount < 0 {
			return fmt.Errorf("expected_count must not be negative, got %d", *e.ExpectedCount)
		}
		cfg.ExpectedCount = *e.ExpectedCount
	}
	if e.MinLength != nil || e.MaxLength != nil {
		minLen := cfg.MinimumLength()
		maxLen := cfg.MaximumLength()
		if e.MinLength != nil {
			minLen = *e.MinLength
		}
		if e.MaxLength != nil {
			maxLen = *e.MaxLength
		}
		if err := cfg.SetLengthRange(minLen, maxLen); err != nil {
			return err
		}
	}
	if e.Checksum != nil {
		ct, ok := symbology.ParseChecksum(*e.Checksum)
		if !ok {
			return fmt.Errorf("unknown checksum %q", *e.Checksum)
		}
		if err := cfg.SetChecksum(ct); err != nil {
			return err
		}
	}
	if e.DPMMode != nil {
		mode := symbology.DPMDisabled
		if *e.DPMMode {
			mode = symbology.DPMEnabled
		}
		if err := cfg.SetDPMMode(mode); err != nil {
			return err
		}
	}
	if e.MultiPartMerge != nil {
		if err := cfg.SetMultiPartMerge(*e.MultiPartMerge); err != nil {
			return err
		}
	}
	if e.ExpandToUPCA != nil {
		if err := cfg.SetExpandToUPCA(*e.ExpandToUPCA); err != nil {
			return err
		}
	}
	return nil
}
