package scoring

import (
	"errors"
	"fmt"

	"github.com/lakerisk/lakerisk/pkg/model"
	"github.com/lakerisk/lakerisk/pkg/reference"
)

// Kind classifies a scoring failure.
type Kind string

const (
	KindSpeciesNotFound    Kind = "SpeciesNotFound"
	KindModelUnavailable   Kind = "ModelUnavailable"
	KindComputationFailure Kind = "ComputationFailure"
)

// ErrComputationFailure marks a batch that failed during inference.
var ErrComputationFailure = errors.New("computation failure")

// Error is the only error type Engine.Score returns.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the cause and the sentinel for the kind, so errors.Is works
// against reference.ErrSpeciesNotFound, model.ErrModelUnavailable and
// ErrComputationFailure.
func (e *Error) Unwrap() []error {
	errs := []error{kindSentinel(e.Kind)}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func kindSentinel(k Kind) error {
	switch k {
	case KindSpeciesNotFound:
		return reference.ErrSpeciesNotFound
	case KindModelUnavailable:
		return model.ErrModelUnavailable
	default:
		return ErrComputationFailure
	}
}

// KindOf returns the kind of a scoring error, or "" for other errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	switch {
	case errors.Is(err, reference.ErrSpeciesNotFound):
		return KindSpeciesNotFound
	case errors.Is(err, model.ErrModelUnavailable):
		return KindModelUnavailable
	}
	return ""
}

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}
