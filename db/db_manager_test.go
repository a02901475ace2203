package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuietManager(t *testing.T) *DBManager {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	m := NewDBManager(log)
	t.Cleanup(m.Stop)
	return m
}

func TestDBManager_RunsOneAtATime(t *testing.T) {
	m := newQuietManager(t)

	var running, maxRunning int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Execute(context.Background(), func() (interface{}, error) {
				n := atomic.AddInt32(&running, 1)
				for {
					cur := atomic.LoadInt32(&maxRunning)
					if n <= cur || atomic.CompareAndSwapInt32(&maxRunning, cur, n) {
						break
					}
				}
				atomic.AddInt32(&running, -1)
				return nil, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxRunning)
}

func TestDBManager_ReturnsResultAndError(t *testing.T) {
	m := newQuietManager(t)

	data, err := m.Execute(context.Background(), func() (interface{}, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, data)

	boom := errors.New("boom")
	_, err = m.Execute(context.Background(), func() (interface{}, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}

func TestDBManager_Stopped(t *testing.T) {
	m := newQuietManager(t)
	m.Stop()
	m.Stop()

	_, err := m.Execute(context.Background(), func() (interface{}, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrManagerStopped)
}

func TestDBManager_CancelledContext(t *testing.T) {
	m := newQuietManager(t)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _ = m.Execute(context.Background(), func() (interface{}, error) {
			close(started)
			<-release
			return nil, nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Execute(ctx, func() (interface{}, error) { return nil, nil })
	assert.ErrorIs(t, err, context.Canceled)
	close(release)
}

func TestSerializedUserRepository_ConcurrentCreates(t *testing.T) {
	repo := NewSerializedUserRepository(setupUserRepository(t), newQuietManager(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Create(ctx, fmt.Sprintf("user%d@b.com", i), "hash")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	users, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 10)

	_, err = repo.Create(ctx, "user0@b.com", "hash")
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, repo.DeleteByID(ctx, users[0].ID))
	assert.ErrorIs(t, repo.DeleteByID(ctx, users[0].ID), ErrNotFound)
}
