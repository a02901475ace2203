package util

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryOnLock_RetriesLockErrors(t *testing.T) {
	calls := 0
	err := RetryOnLock(context.Background(), func() error {
		calls++
		if calls < 2 {
			return errors.New("database is locked")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryOnLock_StopsOnOtherErrors(t *testing.T) {
	calls := 0
	boom := errors.New("UNIQUE constraint failed: users.username")
	err := RetryOnLock(context.Background(), func() error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRetryOnLockWithResult_GivesUp(t *testing.T) {
	calls := 0
	n, err := RetryOnLockWithResult(context.Background(), func() (int, error) {
		calls++
		return calls, errors.New("database is locked")
	})

	assert.Error(t, err)
	assert.Equal(t, maxLockRetries, calls)
	assert.Equal(t, maxLockRetries, n)
}

func TestRetryOnLockWithResult_StopsWaitingOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	start := time.Now()
	_, err := RetryOnLockWithResult(ctx, func() (int, error) {
		calls++
		cancel()
		return 0, errors.New("database is locked")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), baseLockDelay)
}

func TestIsLockError(t *testing.T) {
	assert.False(t, IsLockError(nil))
	assert.True(t, IsLockError(errors.New("database table is locked: users")))
	assert.False(t, IsLockError(errors.New("no such table")))
}
