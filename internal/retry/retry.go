// Package retry provides a bounded retry combinator with jittered
// exponential backoff, applied at the external-call boundary so the
// services that use those calls stay deterministic.
package retry

import (
	"context"
	"math/rand"
	"time"
)

// Config bounds a retry loop.
type Config struct {
	// Attempts is the total number of tries, including the first.
	Attempts int

	// BaseDelay is the delay before the second attempt; each further
	// attempt doubles it.
	BaseDelay time.Duration

	// MaxDelay caps the backoff.
	MaxDelay time.Duration
}

// DefaultConfig matches the external-call policy: three attempts,
// 2s initial backoff, capped at 10s.
func DefaultConfig() Config {
	return Config{
		Attempts:  3,
		BaseDelay: 2 * time.Second,
		MaxDelay:  10 * time.Second,
	}
}

// Do runs op until it succeeds, the attempts are exhausted, or ctx ends.
// Between attempts it sleeps for the exponential backoff plus up to 50%
// jitter. The last error is returned; ctx errors win over op errors.
func Do(ctx context.Context, cfg Config, op func(ctx context.Context) error) error {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}

	var lastErr error
	delay := cfg.BaseDelay

	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		if attempt > 0 {
			jittered := delay + time.Duration(rand.Int63n(int64(delay)/2+1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(jittered):
			}
			delay *= 2
			if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}

		if err := op(ctx); err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		return nil
	}

	return lastErr
}
