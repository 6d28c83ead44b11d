// Package main provides the lakerisk CLI entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lakerisk/lakerisk/internal/assessment"
	"github.com/lakerisk/lakerisk/internal/telemetry"
	"github.com/lakerisk/lakerisk/pkg/config"
)

var version = "dev"

// rootOpts carries the persistent flags every subcommand reads.
type rootOpts struct {
	cfgFile string
	v       *viper.Viper
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{v: config.NewViper()}

	rootCmd := &cobra.Command{
		Use:   "lakerisk",
		Short: "Invasive species colonization risk for monitored lakes",
		Long: `lakerisk scores how likely a fish species is to establish itself in each
monitored Luzon lake under a given set of water-quality readings, and explains
which parameters drive the model.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", "", "Config file (default: .lakerisk/config.yaml in this or a parent directory)")
	pf.String("artifacts", "", "Artifact location: directory, s3://bucket/prefix or gs://bucket/prefix")
	pf.String("log-level", "", "Log level (debug, info, warn, error)")
	pf.String("log-format", "", "Log format (text, json)")
	_ = opts.v.BindPFlag("artifacts.uri", pf.Lookup("artifacts"))
	_ = opts.v.BindPFlag("logging.level", pf.Lookup("log-level"))
	_ = opts.v.BindPFlag("logging.format", pf.Lookup("log-format"))

	rootCmd.AddCommand(
		newScoreCmd(opts),
		newImportanceCmd(opts),
		newLakesCmd(opts),
		newSpeciesCmd(opts),
		newSweepCmd(opts),
		newMigrateCmd(opts),
		newPublishCmd(opts),
	)
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *rootOpts) init() error {
	cfg, err := o.config()
	if err != nil {
		return err
	}
	o.logger = telemetry.InitLogger(cfg.Logging.Level, cfg.Logging.Format)
	return nil
}

// config loads the config file, then applies flag and LAKERISK_*
// environment overrides.
func (o *rootOpts) config() (*config.Config, error) {
	path := o.cfgFile
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
	if err := cfg.ApplyEnv(o.v); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bootstrap loads everything a scoring command needs.
func (o *rootOpts) bootstrap(ctx context.Context) (*assessment.Environment, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	return assessment.Bootstrap(ctx, cfg, o.log())
}

func (o *rootOpts) log() *slog.Logger {
	if o.logger == nil {
		return slog.Default()
	}
	return o.logger
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
