// Package retrylimit provides an adaptive rate limiter and a bounded retry
// loop for talking to devices that throttle their clients.
//
// Example usage:
//
//	lim := retrylimit.NewAdaptiveLimiter(retrylimit.LimiterConfig{Initial: 1, Min: 0.2, Max: 2})
//	err := retrylimit.Do(ctx, retrylimit.DefaultRetryConfig(), func(ctx context.Context) error {
//	    return dial(ctx)
//	})
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// Limiter
// =============================================================================

// LimiterConfig configures an AdaptiveLimiter. Rates are events per second.
type LimiterConfig struct {
	Initial  rate.Limit
	Min      rate.Limit
	Max      rate.Limit
	StepUp   rate.Limit    // added on success
	StepDown float64       // multiplier applied when throttled, e.g. 0.5
	Cooldown time.Duration // no step up until this long after the last throttle
}

// DefaultLimiterConfig suits a bulb that allows about one call per second.
func DefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		Initial:  1,
		Min:      0.2,
		Max:      2,
		StepUp:   0.1,
		StepDown: 0.5,
		Cooldown: 10 * time.Second,
	}
}

// AdaptiveLimiter is a token bucket whose rate drops when the remote side
// reports throttling and recovers slowly on success. Safe for concurrent use.
type AdaptiveLimiter struct {
	mu           sync.Mutex
	limiter      *rate.Limiter
	cfg          LimiterConfig
	lastThrottle time.Time
	now          func() time.Time
}

// NewAdaptiveLimiter creates a limiter. Zero rate and step fields fall back to
// DefaultLimiterConfig and Initial is kept within [Min, Max]. A zero Cooldown
// lets the rate recover on the very next success.
func NewAdaptiveLimiter(cfg LimiterConfig) *AdaptiveLimiter {
	def := DefaultLimiterConfig()
	if cfg.Initial <= 0 {
		cfg.Initial = def.Initial
	}
	if cfg.Min <= 0 {
		cfg.Min = def.Min
	}
	if cfg.Max <= 0 {
		cfg.Max = def.Max
	}
	if cfg.Max < cfg.Min {
		cfg.Max = cfg.Min
	}
	if cfg.StepUp <= 0 {
		cfg.StepUp = def.StepUp
	}
	if cfg.StepDown <= 0 || cfg.StepDown >= 1 {
		cfg.StepDown = def.StepDown
	}
	cfg.Initial = bound(cfg.Initial, cfg.Min, cfg.Max)

	return &AdaptiveLimiter{
		limiter: rate.NewLimiter(cfg.Initial, 1),
		cfg:     cfg,
		now:     time.Now,
	}
}

// Wait blocks until a token is available or ctx is done.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success raises the rate by StepUp unless a throttle happened within Cooldown.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.now().Sub(a.lastThrottle) < a.cfg.Cooldown {
		return
	}
	a.setLimit(a.limiter.Limit() + a.cfg.StepUp)
}

// Throttled lowers the rate by StepDown after the remote side refused a call.
func (a *AdaptiveLimiter) Throttled() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastThrottle = a.now()
	a.setLimit(rate.Limit(float64(a.limiter.Limit()) * a.cfg.StepDown))
}

// Limit returns the current rate.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	return a.limiter.Limit()
}

func (a *AdaptiveLimiter) setLimit(l rate.Limit) {
	l = bound(l, a.cfg.Min, a.cfg.Max)
	if l != a.limiter.Limit() {
		a.limiter.SetLimit(l)
	}
}

func bound(l, lo, hi rate.Limit) rate.Limit {
	if l < lo {
		return lo
	}
	if l > hi {
		return hi
	}
	return l
}

// =============================================================================
// Retry
// =============================================================================

// ErrAttemptsExhausted is returned (wrapping the last error) when every
// attempt failed.
var ErrAttemptsExhausted = errors.New("retry attempts exhausted")

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying. Do returns it unwrapped.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// RetryConfig configures Do.
type RetryConfig struct {
	MaxAttempts  int           // attempts in total, at least 1
	InitialDelay time.Duration // delay before the second attempt
	MaxDelay     time.Duration // cap for exponential growth
	Multiplier   float64       // delay growth per attempt
	Jitter       bool          // add up to 25% random delay
	OnRetry      func(attempt int, err error)
}

// DefaultRetryConfig returns a short exponential backoff suited to dialing a
// device on the local network.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  5,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// Do runs fn until it succeeds, returns a Permanent error, ctx is done, or
// MaxAttempts is reached.
func Do(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, lastErr)
		}

		wait := delay
		if cfg.Jitter {
			wait = addJitter(wait)
		}
		if err := sleep(ctx, wait); err != nil {
			return err
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, cfg.MaxAttempts, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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

// addJitter adds up to 25% random delay.
func addJitter(d time.Duration) time.Duration {
	if d < 4 {
		return d
	}
	return d + time.Duration(rand.Int63n(int64(d/4)))
}
