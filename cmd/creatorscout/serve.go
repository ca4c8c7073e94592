package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/creatorscout/internal/app"
	chiTransport "github.com/kailas-cloud/creatorscout/internal/transport/chi"
	"github.com/kailas-cloud/creatorscout/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Load(ctx, envName)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	logger := a.Logger
	logger.Info("Starting creatorscout API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("http_port", a.Config.HTTP.Port),
	)

	// Go gotcha: (*ledger.Service)(nil) wrapped in SessionReader != nil.
	var sessions chiTransport.SessionReader
	if a.Sessions != nil {
		sessions = a.Sessions
	}
	server := chiTransport.NewServer(a.Discovery, sessions, a.Usage, a.Health, logger)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys:     a.Config.Auth.APIKeys,
		ServiceName: a.Config.Telemetry.ServiceName,
		Logger:      logger,
	})

	addr := fmt.Sprintf(":%d", a.Config.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(a.Config.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(a.Config.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(a.Config.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
