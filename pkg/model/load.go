package model

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Source fetches artifacts by key. internal/artifact provides local, S3 and
// GCS implementations.
type Source interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// VariantSpec names the artifacts of one variant.
type VariantSpec struct {
	Name         string `yaml:"name" json:"name"`
	Model        string `yaml:"model" json:"model"`               // XGBoost JSON
	Preprocessor string `yaml:"preprocessor" json:"preprocessor"` // preprocessor JSON
}

// LoadVariant fetches and decodes both artifacts of one variant.
func LoadVariant(ctx context.Context, src Source, spec VariantSpec) (*Variant, error) {
	pre, err := fetch(ctx, src, spec.Preprocessor, LoadPreprocessor)
	if err != nil {
		return nil, fmt.Errorf("loading preprocessor for %s: %w", spec.Name, err)
	}
	booster, err := fetch(ctx, src, spec.Model, LoadBooster)
	if err != nil {
		return nil, fmt.Errorf("loading model for %s: %w", spec.Name, err)
	}
	return NewVariant(spec.Name, pre, booster)
}

// LoadRegistry loads every spec. Failures are logged and recorded in the
// registry so the remaining variants stay usable.
func LoadRegistry(ctx context.Context, src Source, def string, specs []VariantSpec, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	reg := NewRegistry(def)
	for _, spec := range specs {
		v, err := LoadVariant(ctx, src, spec)
		if err != nil {
			logger.Warn("model variant unavailable", "variant", spec.Name, "error", err)
			reg.MarkFailed(spec.Name, err)
			continue
		}
		logger.Info("model variant loaded", "variant", spec.Name, "trees", v.booster.NumTrees())
		reg.Register(v)
	}
	return reg
}

func fetch[T any](ctx context.Context, src Source, key string, decode func(io.Reader) (T, error)) (T, error) {
	var zero T
	if key == "" {
		return zero, fmt.Errorf("no artifact key configured")
	}
	rc, err := src.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	defer rc.Close()
	return decode(rc)
}
