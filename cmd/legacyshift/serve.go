package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"legacyshift/internal/gateway/app"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the conversion HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != "" {
			cfg.Port = servePort
		}
		a, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() { errCh <- a.Start() }()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case err := <-errCh:
			a.Close()
			return err
		case <-quit:
		}

		logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Shutdown(ctx); err != nil {
			logger.Error("server forced to shutdown", zap.Error(err))
			return err
		}
		logger.Info("server exiting")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen address, overrides PORT (e.g. :8080)")
}
