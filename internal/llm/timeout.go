package llm

import (
	"context"
	"errors"
	"time"
)

// TimeoutProvider bounds every attempt with its own deadline so a hung
// provider call cannot stall the caller forever.
type TimeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout wraps p so each Generate call is cancelled after d. A zero or
// negative d returns p unchanged.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &TimeoutProvider{inner: p, timeout: d}
}

func (t *TimeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	resp, err := t.inner.Generate(attemptCtx, req)
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		// Our deadline fired, not the caller's: report it as retryable.
		return nil, &ErrTimeout{After: t.timeout}
	}
	return resp, err
}

func (t *TimeoutProvider) ModelID() string  { return t.inner.ModelID() }
func (t *TimeoutProvider) Unwrap() Provider { return t.inner }
