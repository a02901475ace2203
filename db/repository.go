package db

import (
	"context"
	"database/sql"
	"errors"

	"digit-recognizer/internal/config"
	"digit-recognizer/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Repository defines a common interface for all repositories
type Repository interface {
	Close() error
}

// UserRepository defines the interface for user operations
type UserRepository interface {
	Repository
	Create(ctx context.Context, username, passwordHash string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindAll(ctx context.Context) ([]*models.User, error)
	DeleteByID(ctx context.Context, id int64) error
}

// RepositoryFactory creates repositories based on the database type
type RepositoryFactory struct {
	DB     *sql.DB
	DBType config.DatabaseType
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(conn *sql.DB, dbType config.DatabaseType) *RepositoryFactory {
	return &RepositoryFactory{
		DB:     conn,
		DBType: dbType,
	}
}

// NewUserRepository creates a new user repository
func (f *RepositoryFactory) NewUserRepository() UserRepository {
	if f.DBType == config.Postgres {
		return NewPostgresUserRepository(f.DB)
	}
	return NewSQLiteUserRepository(f.DB)
}

// Connect opens the database configured in cfg and makes sure its schema exists.
func Connect(cfg *config.Config) (*sql.DB, error) {
	if cfg.DatabaseType == config.Postgres {
		conn, err := ConnectToPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := InitializePostgresSchema(conn); err != nil {
			conn.Close()
			return nil, err
		}
		return conn, nil
	}

	conn, err := ConnectToSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	if err := InitializeSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}
