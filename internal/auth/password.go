package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	DefaultIterations = 600000
	saltLength        = 16
	saltChars         = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var ErrMalformedHash = errors.New("malformed password hash")

// PasswordHasher produces and checks hashes in the
// "pbkdf2:<digest>:<iterations>$<salt>$<hex>" encoding.
type PasswordHasher struct {
	Iterations int
}

func NewPasswordHasher(iterations int) *PasswordHasher {
	if iterations < 1 {
		iterations = DefaultIterations
	}
	return &PasswordHasher{Iterations: iterations}
}

// Hash derives a PBKDF2-HMAC-SHA256 key from password with a fresh random salt.
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt, err := generateSalt(saltLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), []byte(salt), h.Iterations, sha256.Size, sha256.New)
	return fmt.Sprintf("pbkdf2:sha256:%d$%s$%s", h.Iterations, salt, hex.EncodeToString(key)), nil
}

// Check reports whether password matches encoded. Malformed hashes never match.
func (h *PasswordHasher) Check(encoded, password string) bool {
	method, salt, want, err := splitHash(encoded)
	if err != nil {
		return false
	}
	newHash, size, iterations, err := parseMethod(method)
	if err != nil {
		return false
	}
	got := pbkdf2.Key([]byte(password), []byte(salt), iterations, size, newHash)
	return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(got)), []byte(want)) == 1
}

func splitHash(encoded string) (method, salt, digest string, err error) {
	parts := strings.SplitN(encoded, "$", 3)
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return "", "", "", ErrMalformedHash
	}
	return parts[0], parts[1], parts[2], nil
}

func parseMethod(method string) (func() hash.Hash, int, int, error) {
	fields := strings.Split(method, ":")
	if len(fields) < 2 || len(fields) > 3 || fields[0] != "pbkdf2" {
		return nil, 0, 0, ErrMalformedHash
	}

	iterations := DefaultIterations
	if len(fields) == 3 {
		n, err := strconv.Atoi(fields[2])
		if err != nil || n < 1 {
			return nil, 0, 0, ErrMalformedHash
		}
		iterations = n
	}

	switch fields[1] {
	case "sha256":
		return sha256.New, sha256.Size, iterations, nil
	case "sha512":
		return sha512.New, sha512.Size, iterations, nil
	default:
		return nil, 0, 0, fmt.Errorf("%w: unsupported digest %q", ErrMalformedHash, fields[1])
	}
}

func generateSalt(n int) (string, error) {
	max := big.NewInt(int64(len(saltChars)))
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(saltChars[idx.Int64()])
	}
	return sb.String(), nil
}
