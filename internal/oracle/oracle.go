// Package oracle is the client side of the optional predictive scoring
// service. The service is best-effort: it may be missing entirely (no model
// trained yet), slow, or wrong, and callers must treat every failure as a
// reason to fall back rather than an error to surface.
package oracle

import (
	"context"
	"errors"

	"github.com/lox/cardcricket/internal/catalog"
)

// ErrUnavailable means no prediction can be made right now.
var ErrUnavailable = errors.New("oracle: unavailable")

// Query is the context for one prediction.
type Query struct {
	HumanCard  catalog.Card
	Candidates []catalog.Card
	Innings    int
	Round      int
	Wickets    int
}

// CandidateIDs returns the ids of the candidate cards in order.
func (q Query) CandidateIDs() []int {
	ids := make([]int, len(q.Candidates))
	for i, c := range q.Candidates {
		ids[i] = c.ID
	}
	return ids
}

// Prediction is the oracle's suggested card and its confidence in [0, 1].
type Prediction struct {
	CardID     int
	Confidence float64
}

// Oracle predicts the best counter card.
type Oracle interface {
	Predict(ctx context.Context, q Query) (Prediction, error)
}

// Nop is the oracle used when no model is deployed.
type Nop struct{}

func (Nop) Predict(context.Context, Query) (Prediction, error) {
	return Prediction{}, ErrUnavailable
}

// Func adapts a function to the Oracle interface.
type Func func(ctx context.Context, q Query) (Prediction, error)

func (f Func) Predict(ctx context.Context, q Query) (Prediction, error) {
	return f(ctx, q)
}

// SoftFailure classifies why a consultation produced no usable card.
type SoftFailure int

const (
	FailureNone SoftFailure = iota
	FailureUnavailable
	FailureTimeout
	FailureError
	FailureInvalid
)

func (f SoftFailure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureUnavailable:
		return "unavailable"
	case FailureTimeout:
		return "timeout"
	case FailureError:
		return "error"
	case FailureInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Classify maps an error from Predict onto a SoftFailure.
func Classify(err error) SoftFailure {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrUnavailable):
		return FailureUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	default:
		return FailureError
	}
}
