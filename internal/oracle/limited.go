package oracle

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Limited caps the rate of calls to another oracle. Calls over the limit
// fail immediately with ErrUnavailable instead of waiting, so a busy
// oracle never slows a round down.
type Limited struct {
	next    Oracle
	limiter *rate.Limiter
}

// NewLimited allows perSecond calls with the given burst.
func NewLimited(next Oracle, perSecond float64, burst int) *Limited {
	if burst < 1 {
		burst = 1
	}
	return &Limited{next: next, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (l *Limited) Predict(ctx context.Context, q Query) (Prediction, error) {
	if !l.limiter.Allow() {
		return Prediction{}, fmt.Errorf("rate limited: %w", ErrUnavailable)
	}
	return l.next.Predict(ctx, q)
}
