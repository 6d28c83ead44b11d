package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/lakerisk/lakerisk/pkg/features"
	"github.com/lakerisk/lakerisk/pkg/model"
	"github.com/lakerisk/lakerisk/pkg/presence"
	"github.com/lakerisk/lakerisk/pkg/reference"
	"github.com/lakerisk/lakerisk/pkg/water"
)

// Models resolves a variant name to an adapter. *model.Registry satisfies it.
type Models interface {
	Get(name string) (model.Adapter, error)
}

// Engine scores species against the reference lake table. All of its
// collaborators are read-only, so one Engine serves concurrent requests.
type Engine struct {
	store      *reference.Store
	models     Models
	presence   presence.Checker
	thresholds Thresholds
	logger     *slog.Logger
	inst       instruments
}

// Option configures an Engine.
type Option func(*Engine)

// WithThresholds overrides Defaults().
func WithThresholds(t Thresholds) Option {
	return func(e *Engine) { e.thresholds = t }
}

// WithLogger sets the engine's logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates a scoring engine. A nil presence checker answers No for
// every lake.
func NewEngine(store *reference.Store, models Models, pc presence.Checker, opts ...Option) *Engine {
	if pc == nil {
		pc = presence.NewIndex(nil)
	}
	e := &Engine{
		store:      store,
		models:     models,
		presence:   pc,
		thresholds: Defaults(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.inst = newInstruments()
	return e
}

// Thresholds returns the engine's cut-offs.
func (e *Engine) Thresholds() Thresholds { return e.thresholds }

// Score ranks every lake for one species and reading. Failures are returned
// as *Error; no partial result is ever returned.
func (e *Engine) Score(ctx context.Context, req Request) (res *Result, err error) {
	ctx, span := otel.Tracer("lakerisk/scoring").Start(ctx, "scoring.Score")
	defer span.End()
	span.SetAttributes(attribute.String("species", req.Species), attribute.String("variant", req.Variant))

	start := time.Now()
	defer func() {
		attrs := metric.WithAttributes(attribute.String("outcome", outcome(err)))
		e.inst.requests.Add(ctx, 1, attrs)
		e.inst.duration.Record(ctx, time.Since(start).Seconds(), attrs)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	sp, err := e.store.Species(req.Species)
	if err != nil {
		return nil, newError(KindSpeciesNotFound, err, "cannot score %q", req.Species)
	}

	adapter, err := e.models.Get(req.Variant)
	if err != nil {
		e.inst.unavailable.Add(ctx, 1, metric.WithAttributes(attribute.String("variant", req.Variant)))
		return nil, newError(KindModelUnavailable, err, "cannot score with variant %q", req.Variant)
	}

	lakes := e.store.Lakes()
	raw, err := e.predict(adapter, features.BuildBatch(sp, lakes, req.Reading), len(lakes))
	if err != nil {
		e.logger.Error("scoring batch failed",
			"species", req.Species, "variant", adapter.Name(), "error", err)
		return nil, newError(KindComputationFailure, err, "scoring %q with %s", req.Species, adapter.Name())
	}

	res = &Result{
		Species:     sp.Name,
		Variant:     adapter.Name(),
		Reading:     req.Reading,
		Predictions: make([]Prediction, len(lakes)),
	}

	maxSim := 0.0
	for i, lake := range lakes {
		sim := water.ScaledSimilarity(req.Reading, lake.Baseline, e.thresholds.DistanceScale)
		adjusted := raw[i] * sim
		if sim > maxSim {
			maxSim = sim
		}
		res.Predictions[i] = Prediction{
			LakeName:      lake.Name,
			Region:        lake.Region,
			Latitude:      lake.Latitude,
			Longitude:     lake.Longitude,
			RawScore:      raw[i],
			AdjustedScore: adjusted,
			RiskLevel:     e.thresholds.Categorize(adjusted),
			Similarity:    sim,
			Presence:      e.presence.Present(sp.Name, lake.Name),
		}
	}

	sort.SliceStable(res.Predictions, func(i, j int) bool {
		a, b := res.Predictions[i], res.Predictions[j]
		if a.AdjustedScore != b.AdjustedScore {
			return a.AdjustedScore > b.AdjustedScore
		}
		return a.LakeName < b.LakeName
	})

	if maxSim < e.thresholds.WarnSimilarityBelow {
		res.Warning = LowSimilarityWarning
		e.logger.Warn("reading far from every lake baseline",
			"species", sp.Name, "max_similarity", maxSim)
	}

	e.logger.Debug("scored species", "species", sp.Name, "variant", adapter.Name(), "lakes", len(lakes))
	return res, nil
}

// predict runs one batched inference call and checks its shape. A panic
// inside the adapter fails the batch instead of the process.
func (e *Engine) predict(adapter model.Adapter, rows []features.Vector, want int) (out []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("model panicked: %v", r)
		}
	}()

	out, err = adapter.Predict(rows)
	if err != nil {
		return nil, err
	}
	if len(out) != want {
		return nil, fmt.Errorf("model returned %d predictions for %d lakes", len(out), want)
	}
	return out, nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var se *Error
	if errors.As(err, &se) {
		return string(se.Kind)
	}
	return "error"
}
