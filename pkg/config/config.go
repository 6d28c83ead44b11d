// Package config handles loading and managing lakerisk configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/lakerisk/lakerisk/pkg/model"
	"github.com/lakerisk/lakerisk/pkg/scoring"
)

// Config is the top-level configuration for lakerisk.
type Config struct {
	Scoring   scoring.Thresholds `yaml:"scoring"`
	Artifacts ArtifactConfig     `yaml:"artifacts"`
	Models    ModelsConfig       `yaml:"models"`
	Data      DataConfig         `yaml:"data"`
	Server    ServerConfig       `yaml:"server"`
	Database  DatabaseConfig     `yaml:"database"`
	Logging   LoggingConfig      `yaml:"logging"`
	Telemetry TelemetryConfig    `yaml:"telemetry"`
}

// ArtifactConfig locates model and dataset artifacts.
type ArtifactConfig struct {
	URI        string `yaml:"uri"`         // directory, s3://bucket/prefix or gs://bucket/prefix
	S3Endpoint string `yaml:"s3_endpoint"` // custom endpoint, e.g. MinIO
	S3Region   string `yaml:"s3_region"`
	Cache      bool   `yaml:"cache"` // keep remote artifacts under CacheDir
}

// ModelsConfig lists the classifier variants to load.
type ModelsConfig struct {
	Default  string              `yaml:"default"`
	Variants []model.VariantSpec `yaml:"variants"`
}

// DataConfig names the reference tables inside the artifact source.
type DataConfig struct {
	Species  string `yaml:"species"`  // species/occurrence CSV
	Lakes    string `yaml:"lakes"`    // optional lakes YAML; empty uses the built-in table
	Presence string `yaml:"presence"` // "dataset" or "postgres"
}

// ServerConfig controls the HTTP daemon.
type ServerConfig struct {
	Addr                string   `yaml:"addr"`
	APIKey              string   `yaml:"api_key"`
	CORSOrigins         []string `yaml:"cors_origins"`
	ImportanceCacheSize int      `yaml:"importance_cache_size"`
	SweepLimit          int      `yaml:"sweep_limit"`
}

// DatabaseConfig configures the Postgres occurrence store.
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	AutoMigrate  bool   `yaml:"auto_migrate"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// TelemetryConfig controls OpenTelemetry export. An empty endpoint disables it.
type TelemetryConfig struct {
	OTLPEndpoint    string `yaml:"otlp_endpoint"`
	ServiceName     string `yaml:"service_name"`
	IntervalSeconds int    `yaml:"interval_seconds"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Scoring: scoring.Defaults(),
		Artifacts: ArtifactConfig{
			URI: "artifacts",
		},
		Models: ModelsConfig{
			Default: model.DefaultVariant,
			Variants: []model.VariantSpec{
				{Name: "primary", Model: "models/primary/model.json", Preprocessor: "models/primary/preprocessor.json"},
				{Name: "baseline", Model: "models/baseline/model.json", Preprocessor: "models/baseline/preprocessor.json"},
				{Name: "alternative", Model: "models/alternative/model.json", Preprocessor: "models/alternative/preprocessor.json"},
			},
		},
		Data: DataConfig{
			Species:  "data/species.csv",
			Presence: "dataset",
		},
		Server: ServerConfig{
			Addr:                ":8080",
			CORSOrigins:         []string{"*"},
			ImportanceCacheSize: 64,
			SweepLimit:          50,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			ServiceName:     "lakerisk",
			IntervalSeconds: 10,
		},
	}
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	s := c.Scoring
	if !(s.LowBelow > 0 && s.LowBelow <= s.MediumBelow && s.MediumBelow <= 1) {
		return fmt.Errorf("scoring thresholds must satisfy 0 < low_below <= medium_below <= 1")
	}
	if s.DistanceScale <= 0 {
		return fmt.Errorf("scoring.distance_scale must be positive")
	}
	switch c.Data.Presence {
	case "dataset", "postgres":
	default:
		return fmt.Errorf("data.presence must be dataset or postgres, got %q", c.Data.Presence)
	}
	if c.Data.Presence == "postgres" && c.Database.URL == "" {
		return fmt.Errorf("data.presence is postgres but database.url is empty")
	}
	return nil
}

// NewViper returns a viper instance reading LAKERISK_* environment
// variables, e.g. LAKERISK_SERVER_ADDR for server.addr.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("LAKERISK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ApplyEnv overrides fields with values set in v through flags or the
// environment. Only the scalar settings operators commonly change are
// exposed; everything else comes from the YAML file.
func (c *Config) ApplyEnv(v *viper.Viper) error {
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	num := func(key string, dst *float64) {
		if v.IsSet(key) {
			*dst = v.GetFloat64(key)
		}
	}
	integer := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}

	str("artifacts.uri", &c.Artifacts.URI)
	str("artifacts.s3_endpoint", &c.Artifacts.S3Endpoint)
	str("artifacts.s3_region", &c.Artifacts.S3Region)
	if v.IsSet("artifacts.cache") {
		c.Artifacts.Cache = v.GetBool("artifacts.cache")
	}
	str("models.default", &c.Models.Default)
	str("data.species", &c.Data.Species)
	str("data.lakes", &c.Data.Lakes)
	str("data.presence", &c.Data.Presence)
	str("server.addr", &c.Server.Addr)
	str("server.api_key", &c.Server.APIKey)
	integer("server.importance_cache_size", &c.Server.ImportanceCacheSize)
	integer("server.sweep_limit", &c.Server.SweepLimit)
	str("database.url", &c.Database.URL)
	if v.IsSet("database.auto_migrate") {
		c.Database.AutoMigrate = v.GetBool("database.auto_migrate")
	}
	str("logging.level", &c.Logging.Level)
	str("logging.format", &c.Logging.Format)
	str("telemetry.otlp_endpoint", &c.Telemetry.OTLPEndpoint)
	num("scoring.low_below", &c.Scoring.LowBelow)
	num("scoring.medium_below", &c.Scoring.MediumBelow)
	num("scoring.warn_similarity_below", &c.Scoring.WarnSimilarityBelow)
	num("scoring.distance_scale", &c.Scoring.DistanceScale)

	return c.Validate()
}

// FindConfigFile looks for .lakerisk/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".lakerisk", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// CacheDir returns the local cache directory for a remote artifact URI.
// Uses ~/.cache/lakerisk/<slug>/.
func CacheDir(uri string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to temp dir if HOME isn't available
		home = os.TempDir()
	}
	return filepath.Join(home, ".cache", "lakerisk", uriSlug(uri))
}

// uriSlug creates a filesystem-safe identifier from an artifact URI,
// e.g. "s3_models-bucket_lakerisk" from "s3://models-bucket/lakerisk".
func uriSlug(uri string) string {
	s := strings.Replace(uri, "://", "_", 1)
	s = strings.Trim(s, "/")
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}
