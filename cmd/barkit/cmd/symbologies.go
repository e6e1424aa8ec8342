package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/barkit/internal/symbology"
)

// symbologiesCmd lists every symbology the decoder knows about.
var symbologiesCmd = &cobra.Command{
	Use:   "symbologies",
	Short: "List supported symbologies",
	Long: `List every supported symbology with its numeric code and capabilities.

The names and codes are accepted by --symbologies flags, profile files and
the server configuration API.

Examples:
  barkit symbologies
  barkit symbologies --format json`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, _ := cmd.Flags().GetString("format")
		if format == outputFormatJSON {
			return printSymbologiesJSON(cmd)
		}
		return printSymbologiesText(cmd)
	},
}

func init() {
	rootCmd.AddCommand(symbologiesCmd)
	symbologiesCmd.Flags().StringP("format", "f", "text", "output format (text, json)")
}

func printSymbologiesText(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "%-6s %-22s %s\n", "CODE", "NAME", "CAPABILITIES"); err != nil {
		return err
	}
	for _, dt := range symbology.AllDecoderTypes() {
		caps := strings.Join(symbology.Capabilities(dt), ", ")
		if _, err := fmt.Fprintf(out, "%-6d %-22s %s\n", dt.Code(), dt.String(), caps); err != nil {
			return err
		}
	}
	return nil
}

func printSymbologiesJSON(cmd *cobra.Command) error {
	type entry struct {
		Code         int      `json:"code"`
		Name         string   `json:"name"`
		Capabilities []string `json:"capabilities,omitempty"`
	}
	entries := make([]entry, 0, len(symbology.AllDecoderTypes()))
	for _, dt := range symbology.AllDecoderTypes() {
		entries = append(entries, entry{
			Code:         dt.Code(),
			Name:         dt.String(),
			Capabilities: symbology.Capabilities(dt),
		})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

// GetSymbologiesCommand returns the symbologies command for testing purposes.
func GetSymbologiesCommand() *cobra.Command {
	return symbologiesCmd
}
