package util

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	maxLockRetries = 3
	baseLockDelay  = 100 * time.Millisecond
)

// RetryOnLock retries the given function if it fails with a database lock error
func RetryOnLock(ctx context.Context, operation func() error) error {
	_, err := RetryOnLockWithResult(ctx, func() (struct{}, error) {
		return struct{}{}, operation()
	})
	return err
}

// RetryOnLockWithResult retries the given function if it fails with a database lock error
// and returns the result along with any error. The backoff wait ends early
// with ctx.Err() when ctx is done.
func RetryOnLockWithResult[T any](ctx context.Context, operation func() (T, error)) (T, error) {
	var result T
	var err error

	for i := 0; i < maxLockRetries; i++ {
		result, err = operation()
		if err == nil {
			return result, nil
		}

		if !IsLockError(err) || i == maxLockRetries-1 {
			return result, err
		}

		// Exponential backoff: 100ms, 200ms
		delay := baseLockDelay * time.Duration(1<<i)
		logrus.WithError(err).Warnf("Database locked, retrying in %v", delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return result, ctx.Err()
		case <-timer.C:
		}
	}

	return result, err
}

// IsLockError reports whether err is SQLite's busy/locked condition.
func IsLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked")
}
