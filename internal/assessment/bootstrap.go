package assessment

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/lakerisk/lakerisk/internal/artifact"
	"github.com/lakerisk/lakerisk/internal/dataset"
	"github.com/lakerisk/lakerisk/internal/occurrence"
	"github.com/lakerisk/lakerisk/internal/platform"
	"github.com/lakerisk/lakerisk/pkg/config"
	"github.com/lakerisk/lakerisk/pkg/model"
	"github.com/lakerisk/lakerisk/pkg/presence"
	"github.com/lakerisk/lakerisk/pkg/reference"
)

// Environment is the state a process loads once at start and then shares
// read-only between requests.
type Environment struct {
	Service  *Service
	Source   artifact.Source
	Dataset  *dataset.Dataset
	Registry *model.Registry
	DB       *sqlx.DB // nil unless presence comes from Postgres
}

// Close releases the database connection, if any.
func (e *Environment) Close() error {
	if e.DB != nil {
		return e.DB.Close()
	}
	return nil
}

// OpenSource opens the artifact source described by cfg.
func OpenSource(ctx context.Context, cfg *config.Config) (artifact.Source, error) {
	opts := artifact.Options{
		URI:        cfg.Artifacts.URI,
		S3Endpoint: cfg.Artifacts.S3Endpoint,
		S3Region:   cfg.Artifacts.S3Region,
	}
	if cfg.Artifacts.Cache {
		opts.CacheDir = config.CacheDir(cfg.Artifacts.URI)
	}
	src, err := artifact.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open artifacts %q: %w", cfg.Artifacts.URI, err)
	}
	return src, nil
}

// LoadDataset fetches and parses the species CSV.
func LoadDataset(ctx context.Context, src artifact.Source, key string) (*dataset.Dataset, error) {
	data, err := artifact.ReadAll(ctx, src, key)
	if err != nil {
		return nil, fmt.Errorf("fetch species data %s: %w", key, err)
	}
	ds, err := dataset.ParseSpeciesCSV(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse species data %s: %w", key, err)
	}
	return ds, nil
}

// LoadLakes returns the lakes YAML at key, or the built-in table when key
// is empty.
func LoadLakes(ctx context.Context, src artifact.Source, key string) ([]reference.LakeBaseline, error) {
	if key == "" {
		return reference.LuzonLakes(), nil
	}
	data, err := artifact.ReadAll(ctx, src, key)
	if err != nil {
		return nil, fmt.Errorf("fetch lakes %s: %w", key, err)
	}
	lakes, err := dataset.ParseLakesYAML(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse lakes %s: %w", key, err)
	}
	return lakes, nil
}

// Bootstrap loads reference data, model variants and presence records and
// wires them into a Service. A variant that fails to load is reported as
// unavailable rather than failing startup.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Environment, error) {
	if logger == nil {
		logger = slog.Default()
	}
	env := &Environment{}

	src, err := OpenSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	env.Source = src

	ds, err := LoadDataset(ctx, src, cfg.Data.Species)
	if err != nil {
		return nil, err
	}
	env.Dataset = ds

	lakes, err := LoadLakes(ctx, src, cfg.Data.Lakes)
	if err != nil {
		return nil, err
	}
	store, err := reference.NewStore(ds.Species, lakes)
	if err != nil {
		return nil, fmt.Errorf("build reference store: %w", err)
	}
	logger.Info("reference data loaded", "species", len(ds.Species), "lakes", len(lakes))

	env.Registry = model.LoadRegistry(ctx, src, cfg.Models.Default, cfg.Models.Variants, logger)

	var pc presence.Checker
	switch cfg.Data.Presence {
	case "postgres":
		db, err := platform.OpenDB(ctx, cfg.Database.URL, cfg.Database.MaxOpenConns)
		if err != nil {
			return nil, err
		}
		env.DB = db
		if cfg.Database.AutoMigrate {
			if err := platform.AutoMigrate(db.DB); err != nil {
				env.Close()
				return nil, err
			}
		}
		idx, err := occurrence.NewRepository(db).LoadIndex(ctx)
		if err != nil {
			env.Close()
			return nil, err
		}
		logger.Info("presence records loaded", "source", "postgres", "records", idx.Len())
		pc = idx
	default:
		idx := presence.NewIndex(ds.Occurrences)
		logger.Info("presence records loaded", "source", "dataset", "records", idx.Len())
		pc = idx
	}

	env.Service = New(store, env.Registry, pc, Options{
		Thresholds:   cfg.Scoring,
		RecordCounts: ds.RecordCounts,
		Logger:       logger,
	})
	return env, nil
}
