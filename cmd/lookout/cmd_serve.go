package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yairfalse/lookout/api"
	"github.com/yairfalse/lookout/config"
	"github.com/yairfalse/lookout/inventory"
	"github.com/yairfalse/lookout/metric"
	"github.com/yairfalse/lookout/providers/aws"
	"github.com/yairfalse/lookout/secrets"
	"github.com/yairfalse/lookout/store"
	"github.com/yairfalse/lookout/telemetry"
)

var serveConfigPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	Long: `Run the Lookout HTTP service.

Serves the account, inventory, watch and metric endpoints plus /healthz
and a Prometheus /metrics endpoint. Shuts down gracefully on
SIGTERM/SIGINT.`,
	Example: `  lookout serve --config lookout.yaml`,
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "lookout.yaml", "Config file path")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(serveConfigPath)
	if err != nil {
		return err
	}

	logger := telemetry.NewLogger("lookout", cfg.Log.Level, cfg.Log.Pretty)

	if err := telemetry.InitMetrics(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cipher, err := buildCipher(ctx, cfg)
	if err != nil {
		return err
	}
	resolver := secrets.NewResolver(cipher)

	st, err := store.Open(cfg.Storage.Dir)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error().Err(err).Msg("store close failed")
		}
	}()

	fetcher := aws.NewFetcher()
	server := api.NewServer(
		st,
		resolver,
		inventory.NewService(st, resolver, fetcher, logger),
		metric.NewService(st, resolver, fetcher, logger),
		logger,
	)

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Listen).Msg("lookout listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}

// buildCipher selects the configured secret codec.
func buildCipher(ctx context.Context, cfg *config.Config) (secrets.Cipher, error) {
	if cfg.Encryption.Mode == "kms" {
		return secrets.NewKMSCipherFromRegion(ctx, cfg.Encryption.Region, cfg.Encryption.KMSKeyID)
	}
	return secrets.NewAESCipher(cfg.Encryption.KeyBytes())
}
