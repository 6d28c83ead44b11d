// Package assessment is the outward facade over the risk pipeline. The HTTP
// API and the CLI both go through a Service so they validate input and shape
// results the same way.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/lakerisk/lakerisk/pkg/features"
	"github.com/lakerisk/lakerisk/pkg/importance"
	"github.com/lakerisk/lakerisk/pkg/model"
	"github.com/lakerisk/lakerisk/pkg/presence"
	"github.com/lakerisk/lakerisk/pkg/reference"
	"github.com/lakerisk/lakerisk/pkg/scoring"
	"github.com/lakerisk/lakerisk/pkg/water"
)

// ErrInvalidReading is returned when a reading fails range validation.
var ErrInvalidReading = errors.New("invalid reading")

// Models is the model registry as the facade sees it.
type Models interface {
	Get(name string) (model.Adapter, error)
	Status() []model.VariantStatus
	DefaultName() string
}

// Service answers every outward request.
type Service struct {
	store    *reference.Store
	models   Models
	engine   *scoring.Engine
	analyzer *importance.Analyzer
	counts   map[string]int
	logger   *slog.Logger
}

// Options configures a Service.
type Options struct {
	Thresholds   scoring.Thresholds
	RecordCounts map[string]int // dataset rows per species
	Logger       *slog.Logger
}

// New wires the engine and analyzer over shared read-only state.
func New(store *reference.Store, models Models, pc presence.Checker, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	th := opts.Thresholds
	if th == (scoring.Thresholds{}) {
		th = scoring.Defaults()
	}
	return &Service{
		store:    store,
		models:   models,
		engine:   scoring.NewEngine(store, models, pc, scoring.WithThresholds(th), scoring.WithLogger(logger)),
		analyzer: importance.NewAnalyzer(models),
		counts:   opts.RecordCounts,
		logger:   logger,
	}
}

// Thresholds returns the cut-offs the engine scores with.
func (s *Service) Thresholds() scoring.Thresholds { return s.engine.Thresholds() }

// ScoreRisk validates the reading and ranks every lake for the species.
func (s *Service) ScoreRisk(ctx context.Context, species string, r water.Reading, variant string) (*scoring.Result, error) {
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReading, err)
	}
	return s.engine.Score(ctx, scoring.Request{Species: species, Reading: r, Variant: variant})
}

// ImportanceAnalysis aggregates the variant's importance into parameter
// buckets. Without vectors it reports global gain.
func (s *Service) ImportanceAnalysis(ctx context.Context, variant string, vectors ...features.Vector) (*importance.Result, error) {
	return s.analyzer.Analyze(ctx, variant, vectors...)
}

// ConditionImportance explains one species under one reading. The row uses a
// synthetic baseline around the reading, so the result is approximate.
func (s *Service) ConditionImportance(ctx context.Context, species string, r water.Reading, variant string) (*importance.Result, error) {
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReading, err)
	}
	v, err := features.BuildFor(s.store, species, nil, r)
	if err != nil {
		return nil, err
	}
	return s.analyzer.Analyze(ctx, variant, v)
}

// MostContributing returns the parameter bucket with the highest global
// importance. ok is false when the model reports no importance at all.
func (s *Service) MostContributing(ctx context.Context, variant string) (entry importance.Entry, ok bool, err error) {
	res, err := s.analyzer.Analyze(ctx, variant)
	if err != nil {
		return importance.Entry{}, false, err
	}
	entry, ok = res.MostContributing()
	return entry, ok, nil
}

// LakeList returns the monitored lakes in table order.
func (s *Service) LakeList() []reference.LakeBaseline { return s.store.Lakes() }

// SpeciesList returns every species name, sorted.
func (s *Service) SpeciesList() []string { return s.store.SpeciesNames() }

// LakeInfo looks up a lake by canonical name or a known variant.
func (s *Service) LakeInfo(name string) (reference.LakeBaseline, bool) { return s.store.Lake(name) }

// SpeciesInfo returns the summary view of one species.
func (s *Service) SpeciesInfo(name string) (*SpeciesInfo, error) {
	sp, err := s.store.Species(name)
	if err != nil {
		return nil, err
	}
	return newSpeciesInfo(sp, s.counts[sp.Name]), nil
}

// Models reports the load status of every configured variant.
func (s *Service) Models() []model.VariantStatus { return s.models.Status() }

// DefaultVariant names the variant used when a request names none.
func (s *Service) DefaultVariant() string { return s.models.DefaultName() }

// Sweep scores the first limit species (all when limit <= 0) and keeps each
// one's best lake. Rows are ordered by adjusted score, highest first. A
// species whose batch fails is logged and skipped; an unavailable variant
// stops the sweep. progress, when set, is called after every species.
func (s *Service) Sweep(ctx context.Context, r water.Reading, variant string, limit int, progress func(done, total int)) ([]scoring.SweepRow, error) {
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReading, err)
	}
	if _, err := s.models.Get(variant); err != nil {
		return nil, err
	}

	names := s.store.SpeciesNames()
	if limit > 0 && limit < len(names) {
		names = names[:limit]
	}

	rows := make([]scoring.SweepRow, 0, len(names))
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := s.engine.Score(ctx, scoring.Request{Species: name, Reading: r, Variant: variant})
		if err != nil {
			if scoring.KindOf(err) == scoring.KindModelUnavailable {
				return nil, err
			}
			s.logger.Warn("sweep skipped species", "species", name, "error", err)
		} else if top, ok := res.Top(); ok {
			sp, _ := s.store.Species(name)
			rows = append(rows, scoring.SweepRow{
				Species:       sp.Name,
				CommonName:    sp.CommonName,
				Family:        sp.Family,
				Status:        sp.Status,
				LakeName:      top.LakeName,
				RawScore:      top.RawScore,
				AdjustedScore: top.AdjustedScore,
				RiskLevel:     top.RiskLevel,
			})
		}
		if progress != nil {
			progress(i+1, len(names))
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].AdjustedScore != rows[j].AdjustedScore {
			return rows[i].AdjustedScore > rows[j].AdjustedScore
		}
		return rows[i].Species < rows[j].Species
	})
	return rows, nil
}
