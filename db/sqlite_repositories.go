package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"digit-recognizer/internal/util"
	"digit-recognizer/models"

	"github.com/mattn/go-sqlite3"
)

// SQLiteUserRepository implements the UserRepository interface for SQLite
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewSQLiteUserRepository creates a new SQLiteUserRepository
func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteUserRepository) Close() error {
	return r.db.Close()
}

// Create inserts a new user and returns it with its generated ID
func (r *SQLiteUserRepository) Create(ctx context.Context, username, passwordHash string) (*models.User, error) {
	id, err := util.RetryOnLockWithResult(ctx, func() (int64, error) {
		res, err := r.db.ExecContext(ctx, `INSERT INTO users (username, password) VALUES (?, ?)`, username, passwordHash)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	})
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("error inserting user: %w", err)
	}

	return &models.User{ID: id, Username: username, Password: passwordHash}, nil
}

// FindByID finds a user by ID
func (r *SQLiteUserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, username, password FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// FindByUsername finds a user by username
func (r *SQLiteUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, username, password FROM users WHERE username = ?`, username)
	return scanUser(row)
}

// FindAll returns every user ordered by ID
func (r *SQLiteUserRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, username, password FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error querying users: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

// DeleteByID deletes a user by ID
func (r *SQLiteUserRepository) DeleteByID(ctx context.Context, id int64) error {
	affected, err := util.RetryOnLockWithResult(ctx, func() (int64, error) {
		res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	})
	if err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.Password); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning user: %w", err)
	}
	return &user, nil
}

func scanUsers(rows *sql.Rows) ([]*models.User, error) {
	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}
