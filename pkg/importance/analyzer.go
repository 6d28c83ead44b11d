package importance

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/lakerisk/lakerisk/pkg/features"
	"github.com/lakerisk/lakerisk/pkg/model"
)

// Models resolves a variant name to an adapter. *model.Registry satisfies it.
type Models interface {
	Get(name string) (model.Adapter, error)
}

// Analyzer runs importance analyses against registered model variants.
type Analyzer struct {
	models Models
	groups []Group
}

// NewAnalyzer creates an Analyzer using DefaultGroups.
func NewAnalyzer(models Models) *Analyzer {
	return &Analyzer{models: models, groups: DefaultGroups()}
}

// Analyze attributes the variant's importance to the parameter groups. With
// no vectors it uses global split gain; with vectors it uses per-row path
// attribution averaged over them. Errors from an unavailable variant wrap
// model.ErrModelUnavailable.
func (a *Analyzer) Analyze(ctx context.Context, variant string, vectors ...features.Vector) (*Result, error) {
	_, span := otel.Tracer("lakerisk/importance").Start(ctx, "importance.Analyze")
	defer span.End()

	adapter, err := a.models.Get(variant)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	kind := model.ImportanceGlobal
	if len(vectors) > 0 {
		kind = model.ImportanceLocal
	}
	span.SetAttributes(
		attribute.String("variant", adapter.Name()),
		attribute.String("kind", string(kind)),
		attribute.Int("rows", len(vectors)),
	)

	raw, err := adapter.FeatureImportance(kind, vectors)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("computing %s importance: %w", kind, err)
	}

	res := Aggregate(raw, a.groups)
	res.Variant = adapter.Name()
	res.Kind = string(kind)
	for _, v := range vectors {
		if v.Approximate {
			res.Approximate = true
			break
		}
	}
	return res, nil
}
