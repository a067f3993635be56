package utils

import (
	"context"
	"math/rand"
	"time"
)

// Sleep pauses for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// PoliteDelay sleeps for base plus up to 25% random jitter, so successive page
// fetches against one site are spaced out without a fixed rhythm.
func PoliteDelay(ctx context.Context, base time.Duration) error {
	if base <= 0 {
		return ctx.Err()
	}
	jitter := time.Duration(rand.Int63n(int64(base)/4 + 1))
	return Sleep(ctx, base+jitter)
}
