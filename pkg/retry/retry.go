package retry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
	}
}

// RetriesExhaustedError is returned after MaxAttempts retryable failures.
type RetriesExhaustedError struct {
	Attempts int
	Err      error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("max retries exceeded after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetriesExhaustedError) Unwrap() error {
	return e.Err
}

// Do executes fn with bounded exponential backoff. Only rate-limit and
// transient server errors are retried; any other error aborts immediately
// and is returned unchanged.
func Do[T any](ctx context.Context, cfg Config, logger *zap.Logger, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return zero, err
		}

		// Last attempt has no delay budget left
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		delay := backoff(cfg, attempt)
		logger.Warn("Remote call failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", cfg.MaxAttempts),
			zap.Duration("delay", delay),
			zap.Error(err))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}

	return zero, &RetriesExhaustedError{Attempts: cfg.MaxAttempts, Err: lastErr}
}

// IsRetryable reports whether err looks like a rate-limit or transient
// server failure (HTTP 429/500/503, or textual rate/quota signals).
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "500") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "rate") ||
		strings.Contains(msg, "quota")
}

func backoff(cfg Config, attempt int) time.Duration {
	delay := cfg.InitialDelay << uint(attempt)
	if delay > cfg.MaxDelay || delay <= 0 {
		delay = cfg.MaxDelay
	}
	return delay
}
