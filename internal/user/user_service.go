package user

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"digit-recognizer/db"
	"digit-recognizer/internal/auth"
	"digit-recognizer/models"

	"github.com/sirupsen/logrus"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrPasswordMismatch   = fmt.Errorf("%w: passwords do not match", ErrValidation)
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUsername  = errors.New("username already registered")
	ErrUserNotFound       = errors.New("user not found")
)

// RegistrationForm mirrors the fields of the registration page. Only Email
// and Password are persisted.
type RegistrationForm struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
	Phone           string
}

// Validate reports the first blank field, or a password mismatch.
func (f RegistrationForm) Validate() error {
	fields := []struct {
		name, value string
	}{
		{"first_name", f.FirstName},
		{"last_name", f.LastName},
		{"email", f.Email},
		{"password", f.Password},
		{"confirm_password", f.ConfirmPassword},
		{"phone", f.Phone},
	}
	for _, field := range fields {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrValidation, field.name)
		}
	}
	if f.Password != f.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return nil
}

type AdminCredentials struct {
	Username string
	Password string
}

type UserService struct {
	repo   db.UserRepository
	hasher *auth.PasswordHasher
	admin  AdminCredentials
	log    *logrus.Logger
}

func NewUserService(repo db.UserRepository, hasher *auth.PasswordHasher, admin AdminCredentials, log *logrus.Logger) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		admin:  admin,
		log:    log,
	}
}

// Register validates the form, hashes the password and stores the user
// under its e-mail address.
func (s *UserService) Register(ctx context.Context, form RegistrationForm) (*models.User, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(form.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, form.Email, hash)
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("User registered")
	return user, nil
}

// Authenticate returns the user whose username and password match.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Check(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// AuthenticateAdmin compares against the configured admin pair in constant time.
func (s *UserService) AuthenticateAdmin(username, password string) bool {
	if s.admin.Username == "" || s.admin.Password == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.admin.Password)) == 1
	return userOK && passOK
}

func (s *UserService) FindByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.FindAll(ctx)
}

// DeleteUser removes the user and returns the deleted record.
func (s *UserService) DeleteUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("delete user: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("User deleted")
	return user, nil
}
