package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/barkit/internal/config"
	"github.com/MeKo-Tech/barkit/internal/server"
	"github.com/MeKo-Tech/barkit/internal/version"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the barcode decoding HTTP server",
	Long: `Start an HTTP server exposing the decoder as a REST and WebSocket API.

The server provides the following endpoints:
  POST /v1/decode/image - decode an uploaded image, or a raw grayscale
                          frame sent as application/octet-stream
  POST /v1/decode/pdf   - decode images embedded in a PDF
  GET  /v1/decode/live  - frame-by-frame decoding over WebSocket
  GET  /v1/symbologies  - list supported symbologies
  GET  /v1/config       - read the live decoder configuration
  PUT  /v1/config       - change the live decoder configuration
  GET  /health          - health check
  GET  /metrics         - Prometheus metrics

Examples:
  barkit serve
  barkit serve --port 3000
  barkit serve --host 0.0.0.0 --rate-limit-enabled`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("host", "H", "", "server host (default: all interfaces)")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("cors-origin", "*", "CORS allowed origins")
	serveCmd.Flags().Int("max-upload-size", 50, "maximum upload size in MB")
	serveCmd.Flags().Int("timeout", 30, "request timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	serveCmd.Flags().Bool("rate-limit-enabled", false, "enable rate limiting")
	serveCmd.Flags().Int("requests-per-minute", 120, "maximum requests per minute per client")
	// Initial decoder settings; PUT /v1/config changes them at runtime.
	serveCmd.Flags().StringSliceP("symbologies", "s", nil,
		"symbologies to enable at startup (default: all)")
	serveCmd.Flags().String("speed", "normal", "decoding speed (fast, normal, slow, rigorous)")
	serveCmd.Flags().IntP("max-results", "n", 1, "maximum results per image")
	serveCmd.Flags().String("profile", "", "symbology profile file (YAML)")
}

// applyServeFlags merges the serve command flags into the central
// configuration. Only flags the user actually set override file and
// environment values.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
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
	setBool := func(flag string, target *bool) {
		if cmd.Flags().Changed(flag) {
			*target, _ = cmd.Flags().GetBool(flag)
		}
	}

	setString("host", &cfg.Server.Host)
	setInt("port", &cfg.Server.Port)
	setString("cors-origin", &cfg.Server.CORSOrigin)
	setInt("max-upload-size", &cfg.Server.MaxUploadMB)
	setInt("timeout", &cfg.Server.TimeoutSec)
	setInt("shutdown-timeout", &cfg.Server.ShutdownTimeoutSec)
	setBool("rate-limit-enabled", &cfg.Server.RateLimitEnabled)
	setInt("requests-per-minute", &cfg.Server.RequestsPerMinute)
	setString("speed", &cfg.Scan.Speed)
	setInt("max-results", &cfg.Scan.MaximumResults)
	setString("profile", &cfg.Scan.Profile)
	if cmd.Flags().Changed("symbologies") {
		cfg.Scan.Symbologies, _ = cmd.Flags().GetStringSlice("symbologies")
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := GetConfig()
	applyServeFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	sc, err := buildScanner(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	srv := server.New(sc, cfg)
	mux := http.NewServeMux()
	srv.SetupRoutes(mux)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.TimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.TimeoutSec) * time.Second,
	}

	go func() {
		slog.Info("starting server", "addr", addr, "version", version.String())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
	}

	slog.Info("starting graceful shutdown", "timeout", fmt.Sprintf("%ds", cfg.Server.ShutdownTimeoutSec))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		return err
	}

	slog.Info("graceful shutdown completed")
	return nil
}

// GetServeCommand returns the serve command for testing purposes.
func GetServeCommand() *cobra.Command {
	return serveCmd
}
