package invoker

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"ogarx/internal/domain"
	"ogarx/internal/port"
)

// Throttled spaces out calls to a ModelInvoker. It only waits; it never
// retries.
type Throttled struct {
	inner   port.ModelInvoker
	limiter *rate.Limiter
}

// NewThrottled allows perMinute calls per minute with a burst of one.
func NewThrottled(inner port.ModelInvoker, perMinute int) *Throttled {
	return &Throttled{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1),
	}
}

func (t *Throttled) Name() string {
	return t.inner.Name()
}

func (t *Throttled) Invoke(ctx context.Context, page domain.PageImage, prompt string) (domain.ModelReply, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return domain.ModelReply{}, fmt.Errorf("waiting for request slot: %w", err)
	}
	return t.inner.Invoke(ctx, page, prompt)
}
