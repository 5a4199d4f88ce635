package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rustyorg/gokv/internal/command"
	"github.com/rustyorg/gokv/internal/logger"
	"github.com/rustyorg/gokv/internal/memstore"
	"github.com/rustyorg/gokv/internal/metrics"
	"github.com/rustyorg/gokv/internal/server"
	"github.com/rustyorg/gokv/internal/store"
	"github.com/rustyorg/gokv/pkg/config"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gokv server",
	Long: `Start the gokv server with the specified configuration.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/gokv/config.yaml.

Examples:
  # Start with default config location
  gokv serve

  # Start with custom config
  gokv serve --config /etc/gokv/config.yaml

  # Override settings via environment variables
  GOKV_SERVER_NETWORK_PORT=7000 gokv serve`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.MustLoad(GetConfigFile())

	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	logger.Info("configuration loaded", logger.KeyBindAddr, cfg.Server.Network.Addr())

	creds, err := store.Open(cfg.Server.DB.Path)
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := creds.EnsureUser(ctx, cfg.Server.Network.RootUser, cfg.Server.Network.RootPassword, true); err != nil {
		return fmt.Errorf("seed root user: %w", err)
	}
	if err := creds.EnsureUser(ctx, cfg.Server.Network.User, cfg.Server.Network.Password, false); err != nil {
		return fmt.Errorf("seed regular user: %w", err)
	}

	dispatcher := command.New(memstore.NewMemoryStore(), creds)

	srv, err := server.New(cfg.Server.Network.Addr(), dispatcher, 0)
	if err != nil {
		return fmt.Errorf("start listener: %w", err)
	}

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		registry := metrics.NewRegistry()
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(registry))
		metricsSrv = &http.Server{Addr: cfg.Metrics.Addr(), Handler: mux}

		go func() {
			logger.Info("metrics endpoint listening", logger.KeyBindAddr, cfg.Metrics.Addr())
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", logger.Err(err))
			}
		}()
	} else {
		metrics.MustRegister(prometheus.DefaultRegisterer)
		logger.Info("metrics registered, scrape endpoint disabled")
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Serve(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("server is running, press ctrl+c to stop")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, draining connections")
		cancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		<-serverDone
		if metricsSrv != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
		logger.Info("server stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped")
	}

	return nil
}
