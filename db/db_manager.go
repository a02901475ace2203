package db

import (
	"context"
	"errors"
	"sync"

	"digit-recognizer/models"

	"github.com/sirupsen/logrus"
)

var ErrManagerStopped = errors.New("database manager stopped")

type operation struct {
	execute func() (interface{}, error)
	result  chan operationResult
}

type operationResult struct {
	data interface{}
	err  error
}

// DBManager runs write operations one at a time on a single goroutine.
// SQLite allows a single writer, so concurrent registrations queue here
// instead of contending for the file lock.
type DBManager struct {
	ops      chan operation
	stopping chan struct{}
	stopOnce sync.Once
	log      *logrus.Logger
}

func NewDBManager(log *logrus.Logger) *DBManager {
	m := &DBManager{
		ops:      make(chan operation, 100),
		stopping: make(chan struct{}),
		log:      log,
	}
	go m.worker()
	log.Debug("Database access manager started")
	return m
}

func (m *DBManager) worker() {
	for {
		select {
		case op := <-m.ops:
			data, err := op.execute()
			op.result <- operationResult{data: data, err: err}
		case <-m.stopping:
			return
		}
	}
}

// Execute queues execute and waits for its result. The wait is abandoned
// when ctx ends; a queued operation may still run afterwards.
func (m *DBManager) Execute(ctx context.Context, execute func() (interface{}, error)) (interface{}, error) {
	select {
	case <-m.stopping:
		return nil, ErrManagerStopped
	default:
	}

	op := operation{execute: execute, result: make(chan operationResult, 1)}

	select {
	case m.ops <- op:
	case <-m.stopping:
		return nil, ErrManagerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-op.result:
		return res.data, res.err
	case <-m.stopping:
		return nil, ErrManagerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *DBManager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopping)
		m.log.Debug("Database access manager stopped")
	})
}

// SerializedUserRepository sends writes through a DBManager and reads
// straight to the wrapped repository.
type SerializedUserRepository struct {
	UserRepository
	manager *DBManager
}

func NewSerializedUserRepository(repo UserRepository, manager *DBManager) *SerializedUserRepository {
	return &SerializedUserRepository{UserRepository: repo, manager: manager}
}

func (r *SerializedUserRepository) Create(ctx context.Context, username, passwordHash string) (*models.User, error) {
	result, err := r.manager.Execute(ctx, func() (interface{}, error) {
		return r.UserRepository.Create(ctx, username, passwordHash)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.User), nil
}

func (r *SerializedUserRepository) DeleteByID(ctx context.Context, id int64) error {
	_, err := r.manager.Execute(ctx, func() (interface{}, error) {
		return nil, r.UserRepository.DeleteByID(ctx, id)
	})
	return err
}
