package scanner

import (
	"context"
	"testing"
	"time"
)

func TestSetDialRateLimitDisabledByDefault(t *testing.T) {
	SetDialRateLimit(0, 0)
	defer SetDialRateLimit(0, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	for i := 0; i < 100; i++ {
		if err := waitForDialSlot(ctx); err != nil {
			t.Fatalf("dial %d blocked with no rate limit configured: %v", i, err)
		}
	}
}

func TestSetDialRateLimitBoundsDialRate(t *testing.T) {
	SetDialRateLimit(1, 1)
	defer SetDialRateLimit(0, 0)

	ctx := context.Background()
	if err := waitForDialSlot(ctx); err != nil {
		t.Fatalf("first dial should consume the burst token: %v", err)
	}

	shortCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := waitForDialSlot(shortCtx); err == nil {
		t.Fatal("expected second dial to block past the 1/s limit and hit the deadline")
	}
}
