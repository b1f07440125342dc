package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

// Config holds retry configuration
type Config struct {
	MaxAttempts uint
	Delay       time.Duration
	Fixed       bool // fixed delay between attempts instead of exponential backoff
	OnRetry     func(n uint, err error)
}

// DefaultConfig returns default retry configuration
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		Delay:       1 * time.Second,
		Fixed:       true,
	}
}

// Do executes fn up to MaxAttempts times. The context cancels waiting
// between attempts.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	delayType := retry.BackOffDelay
	if cfg.Fixed {
		delayType = retry.FixedDelay
	}
	onRetry := cfg.OnRetry
	if onRetry == nil {
		onRetry = func(uint, error) {}
	}
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(cfg.MaxAttempts),
		retry.Delay(cfg.Delay),
		retry.DelayType(delayType),
		retry.LastErrorOnly(true),
		retry.OnRetry(onRetry),
	)
}
