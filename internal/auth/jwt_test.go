package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test_jwt_secret"), time.Hour)

	token, err := issuer.Generate(42, "a@b.com")
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "a@b.com", claims.Username)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenIssuer_RejectsWrongKey(t *testing.T) {
	token, err := NewTokenIssuer([]byte("one"), time.Hour).Generate(1, "a@b.com")
	require.NoError(t, err)

	_, err = NewTokenIssuer([]byte("two"), time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer([]byte("k"), time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := issuer.Generate(1, "a@b.com")
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RejectsOtherAlgorithms(t *testing.T) {
	key := []byte("k")
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{UserID: 1})
	signed, err := token.SignedString(key)
	require.NoError(t, err)

	_, err = NewTokenIssuer(key, time.Hour).Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RejectsGarbage(t *testing.T) {
	_, err := NewTokenIssuer([]byte("k"), time.Hour).Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
