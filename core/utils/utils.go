// Package utils provides small helpers shared by configuration sources.
//
// Overview:
//   - Responsibility: Bounded retries for remote sources, string-set helpers for key filtering
//   - Key Types: RetryConfig
//   - Concurrency Model: All functions are safe for concurrent use
//   - Error Semantics: Retry returns the last error, or ctx.Err() when cancelled
//   - Performance Notes: No background goroutines; delays use the caller's goroutine
//
// Usage:
//
//	err := utils.Retry(ctx, utils.DefaultRetryConfig(), func() error { return fetch(ctx) })
package utils

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig holds configuration for retry operations.
type RetryConfig struct {
	MaxAttempts int              // Maximum number of attempts
	BaseDelay   time.Duration    // Base delay between attempts
	MaxDelay    time.Duration    // Maximum delay between attempts
	Multiplier  float64          // Delay multiplier for exponential backoff
	Retryable   func(error) bool // Reports whether an error is worth another attempt (nil = always)
}

// DefaultRetryConfig returns the retry policy used by remote configuration sources.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    2 * time.Second,
		Multiplier:  2.0,
	}
}

// Retry executes fn with exponential backoff until it succeeds, the attempts
// are exhausted, the error is not retryable, or ctx is done.
func Retry(ctx context.Context, config RetryConfig, fn func() error) error {
	var lastErr error
	delay := config.BaseDelay

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if config.Retryable != nil && !config.Retryable(err) {
			return err
		}
		if attempt == config.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * config.Multiplier)
		if delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}

	return fmt.Errorf("retry failed after %d attempts: %w", config.MaxAttempts, lastErr)
}

// Contains checks if a slice contains a specific string.
func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// Unique removes duplicate strings from a slice, keeping first occurrences.
func Unique(slice []string) []string {
	seen := make(map[string]bool, len(slice))
	var result []string

	for _, item := range slice {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}

	return result
}
