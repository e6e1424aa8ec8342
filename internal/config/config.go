// Package config holds the application configuration for the barkit CLI and
// server: file/env/flag loading, validation, and application of the scan
// section onto a registry.
package config

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/barkit/internal/registry"
	"github.com/MeKo-Tech/barkit/internal/symbology"
)

// Config is the complete application configuration. It loads from
// configuration files, environment variables (BARKIT_*), and command-line
// flags.
type Config struct {
	// Global settings
	LicenseKey string `mapstructure:"license_key" yaml:"license_key" json:"license_key"`
	LogLevel   string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose    bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Engine execution options (process-wide, applied before first decode)
	Engine EngineConfig `mapstructure:"engine" yaml:"engine" json:"engine"`

	// Scan settings applied to the registry
	Scan ScanConfig `mapstructure:"scan" yaml:"scan" json:"scan"`

	// Server configuration (serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Output configuration (scan/pdf commands)
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`
}

// EngineConfig mirrors the engine's process-wide execution options.
type EngineConfig struct {
	MaxThreads           int  `mapstructure:"max_threads" yaml:"max_threads" json:"max_threads"`
	HardwareAcceleration bool `mapstructure:"hardware_acceleration" yaml:"hardware_acceleration" json:"hardware_acceleration"`
}

// ScanConfig holds the registry-level scan settings.
type ScanConfig struct {
	Speed          string    `mapstructure:"speed" yaml:"speed" json:"speed"`
	MaximumResults int       `mapstructure:"maximum_results" yaml:"maximum_results" json:"maximum_results"`
	Formatting     string    `mapstructure:"formatting" yaml:"formatting" json:"formatting"`
	Symbologies    []string  `mapstructure:"symbologies" yaml:"symbologies" json:"symbologies"`
	ROI            ROIConfig `mapstructure:"roi" yaml:"roi" json:"roi"`
	MaxImageSize   int       `mapstructure:"max_image_size" yaml:"max_image_size" json:"max_image_size"`
	Profile        string    `mapstructure:"profile" yaml:"profile" json:"profile"`
	// ExpectedCount hints how many symbols per enabled symbology one image
	// holds. Zero means unconstrained.
	ExpectedCount int `mapstructure:"expected_count" yaml:"expected_count" json:"expected_count"`
}

// ROIConfig is the scan window in percent of the image.
type ROIConfig struct {
	Left   float32 `mapstructure:"left" yaml:"left" json:"left"`
	Top    float32 `mapstructure:"top" yaml:"top" json:"top"`
	Width  float32 `mapstructure:"width" yaml:"width" json:"width"`
	Height float32 `mapstructure:"height" yaml:"height" json:"height"`
}

// ServerConfig contains the HTTP server settings.
type ServerConfig struct {
	Host               string `mapstructure:"host" yaml:"host" json:"host"`
	Port               int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin         string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB        int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec         int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeoutSec int    `mapstructure:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec" json:"shutdown_timeout_sec"`
	RateLimitEnabled   bool   `mapstructure:"rate_limit_enabled" yaml:"rate_limit_enabled" json:"rate_limit_enabled"`
	RequestsPerMinute  int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Engine: EngineConfig{
			MaxThreads: 1,
		},
		Scan: ScanConfig{
			Speed:          "normal",
			MaximumResults: 1,
			Formatting:     "automatic",
			ROI:            ROIConfig{Left: 0, Top: 0, Width: 100, Height: 100},
			MaxImageSize:   4096,
		},
		Server: ServerConfig{
			Host:               "",
			Port:               8080,
			CORSOrigin:         "*",
			MaxUploadMB:        50,
			TimeoutSec:         30,
			ShutdownTimeoutSec: 10,
			RequestsPerMinute:  120,
		},
		Output: OutputConfig{Format: "json"},
	}
}

var validLogLevels = []string{"debug", "info", "warn", "error"}
var validOutputFormats = []string{"json", "text", "csv"}

// Validate checks the full configuration and returns the first problem
// found.
func (c *Config) Validate() error {
	if err := c.validateGlobal(); err != nil {
		return err
	}
	if err := c.Engine.validate(); err != nil {
		return err
	}
	if err := c.Scan.validate(); err != nil {
		return err
	}
	if err := c.Server.validate(); err != nil {
		return err
	}
	return c.Output.validate()
}

func (c *Config) validateGlobal() error {
	level := strings.ToLower(c.LogLevel)
	for _, l := range validLogLevels {
		if level == l {
			return nil
		}
	}
	return fmt.Errorf("invalid log_level %q (valid: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
}

func (e EngineConfig) validate() error {
	if e.MaxThreads < 1 {
		return fmt.Errorf("engine.max_threads must be at least 1, got %d", e.MaxThreads)
	}
	return nil
}

func (s ScanConfig) validate() error {
	if _, ok := registry.ParseSpeed(s.Speed); !ok {
		return fmt.Errorf("invalid scan.speed %q (valid: fast, normal, slow, rigorous)", s.Speed)
	}
	if s.MaximumResults < 1 {
		return fmt.Errorf("scan.maximum_results must be at least 1, got %d", s.MaximumResults)
	}
	if _, ok := registry.ParseFormatting(s.Formatting); !ok {
		return fmt.Errorf("invalid scan.formatting %q (valid: disabled, automatic, gs1, aamva, sadl)", s.Formatting)
	}
	roi := registry.ROI(s.ROI)
	if err := roi.Validate(); err != nil {
		return fmt.Errorf("scan.roi: %w", err)
	}
	if s.MaxImageSize < 0 {
		return fmt.Errorf("scan.max_image_size must not be negative, got %d", s.MaxImageSize)
	}
	if s.ExpectedCount < 0 {
		return fmt.Errorf("scan.expected_count must not be negative, got %d", s.ExpectedCount)
	}
	for _, name := range s.Symbologies {
		if _, ok := symbology.Parse(name); !ok {
			return fmt.Errorf("unknown symbology %q in scan.symbologies", name)
		}
	}
	return nil
}

func (s ServerConfig) validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", s.Port)
	}
	if s.MaxUploadMB < 1 {
		return fmt.Errorf("server.max_upload_mb must be at least 1, got %d", s.MaxUploadMB)
	}
	if s.TimeoutSec < 1 {
		return fmt.Errorf("server.timeout_sec must be at least 1, got %d", s.TimeoutSec)
	}
	if s.ShutdownTimeoutSec < 1 {
		return fmt.Errorf("server.shutdown_timeout_sec must be at least 1, got %d", s.ShutdownTimeoutSec)
	}
	if s.RateLimitEnabled && s.RequestsPerMinute < 1 {
		return fmt.Errorf("server.requests_per_minute must be at least 1 when rate limiting is enabled, got %d", s.RequestsPerMinute)
	}
	return nil
}

func (o OutputConfig) validate() error {
	format := strings.ToLower(o.Format)
	for _, f := range validOutputFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid output.format %q (valid: %s)", o.Format, strings.Join(validOutputFormats, ", "))
}

// ApplyScanSettings pushes the scan section onto the registry: speed,
// window, result cap, formatting, and the enabled symbology set. An empty
// symbology list enables every capability (scan everything); a non-empty
// list enables exactly the named ones.
func (c *Config) ApplyScanSettings(reg *registry.Registry) error {
	speed, _ := registry.ParseSpeed(c.Scan.Speed)
	if err := reg.SetDecodingSpeed(speed); err != nil {
		return err
	}
	formatting, _ := registry.ParseFormatting(c.Scan.Formatting)
	if err := reg.SetFormatting(formatting); err != nil {
		return err
	}
	if err := reg.SetMaximumResults(c.Scan.MaximumResults); err != nil {
		return err
	}
	roi := c.Scan.ROI
	if err := reg.SetRegionOfInterest(roi.Left, roi.Top, roi.Width, roi.Height); err != nil {
		return err
	}

	var decoders []symbology.DecoderType
	if len(c.Scan.Symbologies) == 0 {
		decoders = symbology.AllDecoderTypes()
	} else {
		for _, name := range c.Scan.Symbologies {
			dt, ok := symbology.Parse(name)
			if !ok {
				return fmt.Errorf("unknown symbology %q", name)
			}
			decoders = append(decoders, dt)
		}
	}
	if err := reg.SetEnabledDecoders(decoders); err != nil {
		return err
	}

	if c.Scan.ExpectedCount > 0 {
		for _, dt := range decoders {
			sym, err := reg.Config(dt)
			if err != nil {
				return err
			}
			sym.ExpectedCount = c.Scan.ExpectedCount
		}
	}
	return nil
}
