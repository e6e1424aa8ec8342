package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/barkit/internal/config"
	"github.com/MeKo-Tech/barkit/internal/engine"
	"github.com/MeKo-Tech/barkit/internal/imgutil"
	"github.com/MeKo-Tech/barkit/internal/registry"
	"github.com/MeKo-Tech/barkit/internal/scanner"
)

const (
	outputFormatJSON = "json"
	outputFormatCSV  = "csv"
	outputFormatText = "text"
)

// scanCmd represents the scan command.
var scanCmd = &cobra.Command{
	Use:   "scan [image...]",
	Short: "Decode barcodes from image files",
	Long: `Decode barcodes from one or more image files.

Supported formats: JPEG, PNG, GIF, BMP, TIFF, WebP

Examples:
  barkit scan photo.jpg
  barkit scan *.png --format json
  barkit scan label.jpg --symbologies qr,code128 --max-results 5
  barkit scan dpm.png --profile industrial.yaml --speed rigorous
  barkit scan wide.png --roi 0,40,100,20 --output results.json`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		cfg := GetConfig()
		if err := applyROIFlag(cmd, cfg); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		sc, err := buildScanner(cfg)
		if err != nil {
			return err
		}

		var outputs []string
		for _, path := range args {
			if !imgutil.IsSupported(path) {
				return fmt.Errorf("unsupported image format: %s", path)
			}
			img, _, err := imgutil.LoadFile(path)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", path, err)
			}
			img = imgutil.FitWithin(img, cfg.Scan.MaxImageSize)

			gray, w, h := imgutil.ToGray(img)
			res, err := sc.DecodeImage(cmd.Context(), gray, w, h)
			imgutil.PutGray(gray)
			if err != nil {
				return fmt.Errorf("decode failed for %s: %w", path, err)
			}

			out, err := renderDocument(path, res, cfg.Output.Format, len(args) > 1)
			if err != nil {
				return err
			}
			outputs = append(outputs, out)
		}

		return writeOutputs(cmd, outputs, cfg.Output.File)
	},
}

// buildScanner turns the configuration into a ready scanner: engine options,
// license check, registry setup, symbology profile.
func buildScanner(cfg *config.Config) (*scanner.Scanner, error) {
	if strings.TrimSpace(cfg.LicenseKey) == "" {
		return nil, errors.New("license key required (--license-key or BARKIT_LICENSE_KEY)")
	}

	if err := engine.SetMaxThreads(cfg.Engine.MaxThreads); err != nil {
		return nil, err
	}
	if err := engine.SetHardwareAcceleration(cfg.Engine.HardwareAcceleration); err != nil {
		return nil, err
	}

	reg, status, err := registry.Initialize(cfg.LicenseKey)
	if err != nil {
		return nil, err
	}
	slog.Debug("engine initialized", "status", status)

	if err := cfg.ApplyScanSettings(reg); err != nil {
		return nil, err
	}

	if cfg.Scan.Profile != "" {
		profile, err := config.LoadProfile(cfg.Scan.Profile)
		if err != nil {
			return nil, err
		}
		if err := profile.Apply(reg); err != nil {
			return nil, fmt.Errorf("profile %s: %w", cfg.Scan.Profile, err)
		}
	}

	return scanner.New(reg, engine.Default())
}

// applyROIFlag parses the --roi flag ("left,top,width,height" in percent)
// into the scan configuration.
func applyROIFlag(cmd *cobra.Command, cfg *config.Config) error {
	if !cmd.Flags().Changed("roi") {
		return nil
	}
	spec, _ := cmd.Flags().GetString("roi")
	roi, err := parseROI(spec)
	if err != nil {
		return err
	}
	cfg.Scan.ROI = roi
	return nil
}

func parseROI(spec string) (config.ROIConfig, error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 4 {
		return config.ROIConfig{}, fmt.Errorf("invalid roi %q (expected left,top,width,height)", spec)
	}
	vals := make([]float32, 4)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return config.ROIConfig{}, fmt.Errorf("invalid roi value %q: %w", p, err)
		}
		vals[i] = float32(f)
	}
	return config.ROIConfig{Left: vals[0], Top: vals[1], Width: vals[2], Height: vals[3]}, nil
}

// renderDocument formats one decode document for the CLI.
func renderDocument(path string, res *scanner.Response, format string, multi bool) (string, error) {
	switch format {
	case outputFormatJSON:
		obj := struct {
			File     string            `json:"file"`
			Document *scanner.Response `json:"document"`
		}{File: path, Document: res}
		bts, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return string(bts), nil
	case outputFormatCSV:
		s, err := scanner.ToCSV(res)
		if err != nil {
			return "", fmt.Errorf("format csv failed: %w", err)
		}
		if multi {
			s = "# " + path + "\n" + s
		}
		return s, nil
	default:
		s, err := scanner.ToPlainText(res)
		if err != nil {
			return "", fmt.Errorf("format text failed: %w", err)
		}
		if multi {
			s = path + ":\n" + s
		}
		return s, nil
	}
}

// writeOutputs joins the per-file renderings and sends them to the output
// file or stdout.
func writeOutputs(cmd *cobra.Command, outputs []string, outputFile string) error {
	final := strings.Join(outputs, "\n")
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(final+"\n"), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Results written to %s\n", outputFile)
		return err
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), final)
	return err
}

func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "json", "output format (json, text, csv)")
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringSliceP("symbologies", "s", nil,
		"symbologies to enable (e.g. qr,code128; default: all)")
	cmd.Flags().String("profile", "", "symbology profile file (YAML)")
	cmd.Flags().String("speed", "normal", "decoding speed (fast, normal, slow, rigorous)")
	cmd.Flags().String("formatting", "automatic", "payload formatting (disabled, automatic, gs1, aamva, sadl)")
	cmd.Flags().IntP("max-results", "n", 1, "maximum results per image")
	cmd.Flags().Int("expected", 0, "expected symbols per enabled symbology (0=unconstrained)")
	cmd.Flags().String("roi", "", "scan window in percent: left,top,width,height")
	cmd.Flags().Int("max-image-size", 4096, "downscale images whose longer side exceeds this (0=off)")
}

func init() {
	rootCmd.AddCommand(scanCmd)
	addScanFlags(scanCmd)
	bindScanFlags(scanCmd)
}

// bindScanFlags binds the scan flags to their viper configuration keys. The
// roi flag is parsed separately; it is one flag but four keys.
func bindScanFlags(cmd *cobra.Command) {
	flagBindings := []struct {
		key  string
		flag string
	}{
		{"output.format", "format"},
		{"output.file", "output"},
		{"scan.symbologies", "symbologies"},
		{"scan.profile", "profile"},
		{"scan.speed", "speed"},
		{"scan.formatting", "formatting"},
		{"scan.maximum_results", "max-results"},
		{"scan.expected_count", "expected"},
		{"scan.max_image_size", "max-image-size"},
	}
	for _, binding := range flagBindings {
		if err := viper.BindPFlag(binding.key, cmd.Flags().Lookup(binding.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", binding.flag, err))
		}
	}
}

// GetScanCommand returns the scan command for testing purposes.
func GetScanCommand() *cobra.Command {
	return scanCmd
}
