package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/barkit/internal/config"
	"github.com/MeKo-Tech/barkit/internal/pdfscan"
	"github.com/MeKo-Tech/barkit/internal/scanner"
)

// pdfCmd represents the pdf command.
var pdfCmd = &cobra.Command{
	Use:   "pdf [file...]",
	Short: "Decode barcodes from PDF files",
	Long: `Decode barcodes from the images embedded in PDF files.

Works best with scanned documents; decodes every embedded page image.

Examples:
  barkit pdf invoice.pdf
  barkit pdf *.pdf --format csv
  barkit pdf scan.pdf --pages 1-5 --symbologies qr,pdf417`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         processPDFs,
}

func init() {
	rootCmd.AddCommand(pdfCmd)

	pdfCmd.Flags().StringP("format", "f", "json", "output format (json, text, csv)")
	pdfCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	pdfCmd.Flags().String("pages", "", "page range to decode (e.g. '1-5', '1,3,5')")
	pdfCmd.Flags().StringSliceP("symbologies", "s", nil,
		"symbologies to enable (e.g. qr,code128; default: all)")
	pdfCmd.Flags().String("profile", "", "symbology profile file (YAML)")
	pdfCmd.Flags().String("speed", "normal", "decoding speed (fast, normal, slow, rigorous)")
	pdfCmd.Flags().String("formatting", "automatic", "payload formatting (disabled, automatic, gs1, aamva, sadl)")
	pdfCmd.Flags().IntP("max-results", "n", 1, "maximum results per page image")
	pdfCmd.Flags().Int("expected", 0, "expected symbols per enabled symbology (0=unconstrained)")
	pdfCmd.Flags().String("roi", "", "scan window in percent: left,top,width,height")
	pdfCmd.Flags().Int("max-image-size", 4096, "downscale page images whose longer side exceeds this (0=off)")
}

// applyPDFFlags merges the pdf command flags into the central configuration.
// The scan command owns the viper bindings for these keys, so here only flags
// the user actually set override file and environment values.
func applyPDFFlags(cmd *cobra.Command, cfg *config.Config) error {
	setString := func(flag string, target *string) {
		if cmd.Flags().Changed(flag) {
			*target, _ = cmd.Flags().GetString(flag)
		}
	}
	setInt := func(flag string, target *int) {
		if cmd.Flags().Changed(flag) {
			*target, _ = cmd.Flags().GetInt(flag)
		}
	}

	setString("format", &cfg.Output.Format)
	setString("output", &cfg.Output.File)
	setString("profile", &cfg.Scan.Profile)
	setString("speed", &cfg.Scan.Speed)
	setString("formatting", &cfg.Scan.Formatting)
	setInt("max-results", &cfg.Scan.MaximumResults)
	setInt("expected", &cfg.Scan.ExpectedCount)
	setInt("max-image-size", &cfg.Scan.MaxImageSize)
	if cmd.Flags().Changed("symbologies") {
		cfg.Scan.Symbologies, _ = cmd.Flags().GetStringSlice("symbologies")
	}
	return applyROIFlag(cmd, cfg)
}

// processPDFs handles the main PDF decoding logic.
func processPDFs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("no input files provided")
	}

	cfg := GetConfig()
	if err := applyPDFFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	pages, _ := cmd.Flags().GetString("pages")

	sc, err := buildScanner(cfg)
	if err != nil {
		return err
	}

	results := make([]*pdfscan.FileResult, 0, len(args))
	for _, file := range args {
		res, err := pdfscan.ScanFile(cmd.Context(), sc, file, pages, cfg.Scan.MaxImageSize)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	return outputPDFResults(cmd, results, cfg.Output.Format, cfg.Output.File)
}

// outputPDFResults formats and outputs the PDF decode results.
func outputPDFResults(cmd *cobra.Command, results []*pdfscan.FileResult, format, outputFile string) error {
	var output string
	var err error

	switch format {
	case outputFormatJSON:
		output, err = formatPDFJSON(results)
	case outputFormatCSV:
		output, err = formatPDFCSV(results)
	default:
		output, err = formatPDFText(results)
	}
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Results written to %s\n", outputFile)
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), output)
	return err
}

func formatPDFJSON(results []*pdfscan.FileResult) (string, error) {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

func formatPDFText(results []*pdfscan.FileResult) (string, error) {
	var sb strings.Builder
	for _, doc := range results {
		fmt.Fprintf(&sb, "File: %s\n", doc.Filename)
		if len(doc.Pages) == 0 {
			sb.WriteString("no embedded images\n")
		}
		for _, page := range doc.Pages {
			text, err := scanner.ToPlainText(page.Document)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&sb, "Page %d image %d:\n%s\n", page.Page, page.ImageIndex, text)
		}
		sb.WriteString("---\n")
	}
	return sb.String(), nil
}

func formatPDFCSV(results []*pdfscan.FileResult) (string, error) {
	var sb strings.Builder
	for _, doc := range results {
		for _, page := range doc.Pages {
			csvDoc, err := scanner.ToCSV(page.Document)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&sb, "# %s page %d image %d\n%s", doc.Filename, page.Page, page.ImageIndex, csvDoc)
		}
	}
	return sb.String(), nil
}

// GetPdfCommand returns the pdf command for testing purposes.
func GetPdfCommand() *cobra.Command {
	return pdfCmd
}
