// Command lakeriskd is the lakerisk API service.
// It loads reference data and model variants once at start, then serves the
// scoring, importance and catalog endpoints.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lakerisk/lakerisk/internal/api"
	"github.com/lakerisk/lakerisk/internal/assessment"
	"github.com/lakerisk/lakerisk/internal/telemetry"
	"github.com/lakerisk/lakerisk/pkg/config"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	var cfgFile string
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:           "lakeriskd",
		Short:         "Serve the lakerisk HTTP API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgFile, v)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgFile, "config", "", "Config file (default: .lakerisk/config.yaml in this or a parent directory)")
	f.String("addr", "", "Listen address (default :8080)")
	f.String("artifacts", "", "Artifact location: directory, s3://bucket/prefix or gs://bucket/prefix")
	f.String("log-level", "", "Log level (debug, info, warn, error)")
	f.String("log-format", "", "Log format (text, json)")
	_ = v.BindPFlag("server.addr", f.Lookup("addr"))
	_ = v.BindPFlag("artifacts.uri", f.Lookup("artifacts"))
	_ = v.BindPFlag("logging.level", f.Lookup("log-level"))
	_ = v.BindPFlag("logging.format", f.Lookup("log-format"))

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(path string, v *viper.Viper) (*config.Config, error) {
	if path == "" {
		if cwd, err := os.Getwd(); err == nil {
			path = config.FindConfigFile(cwd)
		}
	}
	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(v); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := telemetry.InitLogger(cfg.Logging.Level, cfg.Logging.Format)

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Options{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Interval:    time.Duration(cfg.Telemetry.IntervalSeconds) * time.Second,
	}, logger)
	if err != nil {
		// Scoring does not depend on telemetry.
		logger.Warn("telemetry init failed", "error", err)
	}
	defer telemetry.Flush(context.Background(), shutdownTelemetry)

	env, err := assessment.Bootstrap(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("loading: %w", err)
	}
	defer env.Close()

	handler := api.NewHandler(env.Service, api.Options{
		CacheSize:  cfg.Server.ImportanceCacheSize,
		SweepLimit: cfg.Server.SweepLimit,
		Version:    version,
		Logger:     logger,
	})
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: api.Chain(mux,
			api.RequestID,
			api.AccessLog(logger),
			api.CORS(cfg.Server.CORSOrigins),
			api.APIKeyAuth(cfg.Server.APIKey),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting lakeriskd", "addr", cfg.Server.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	return nil
}
