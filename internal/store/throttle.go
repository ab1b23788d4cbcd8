package store

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"run-planner/internal/metrics"
	"run-planner/internal/planner/address"
	"run-planner/internal/planner/model"
)

// Throttled rate-limits every directory lookup, shared across request
// handlers and import workers.
type Throttled struct {
	next address.Directory
	lim  *rate.Limiter
}

// NewThrottled allows rps lookups per second with the given burst. rps <= 0
// disables limiting.
func NewThrottled(next address.Directory, rps float64, burst int) *Throttled {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &Throttled{next: next, lim: rate.NewLimiter(limit, burst)}
}

func (t *Throttled) wait(ctx context.Context) error {
	start := time.Now()
	err := t.lim.Wait(ctx)
	metrics.LookupWait.Observe(time.Since(start).Seconds())
	return err
}

func (t *Throttled) ListCustomerAddresses(ctx context.Context, customerID string) ([]model.CustomerAddress, error) {
	if err := t.wait(ctx); err != nil {
		return nil, err
	}
	return t.next.ListCustomerAddresses(ctx, customerID)
}

func (t *Throttled) SearchLocations(ctx context.Context, f model.LocationFilter) ([]model.Location, error) {
	if err := t.wait(ctx); err != nil {
		return nil, err
	}
	return t.next.SearchLocations(ctx, f)
}
