package scanner

import (
	"context"

	"golang.org/x/time/rate"
)

// dialLimiter caps the rate at which this process opens probe connections,
// independent of how many goroutines are concurrently calling Detect or how
// large the API's worker pool is. A nil limiter (the default) imposes no
// limit.
var dialLimiter *rate.Limiter

// SetDialRateLimit configures the process-wide cap on outbound probe
// dials. ratePerSecond <= 0 disables limiting.
func SetDialRateLimit(ratePerSecond float64, burst int) {
	if ratePerSecond <= 0 {
		dialLimiter = nil
		return
	}
	dialLimiter = rate.NewLimiter(rate.Limit(ratePerSecond), burst)
}

// waitForDialSlot blocks until the rate limiter admits another dial, or
// until ctx is cancelled.
func waitForDialSlot(ctx context.Context) error {
	if dialLimiter == nil {
		return nil
	}
	return dialLimiter.Wait(ctx)
}
