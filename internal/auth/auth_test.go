package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *AuthService {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	s, err := NewAuthService(privPEM, pubPEM, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	return s
}

func TestTokenPair_RoundTrip(t *testing.T) {
	s := newTestService(t)

	pair, err := s.GenerateTokenPair(42)
	require.NoError(t, err)

	access, err := s.ValidateToken(pair.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, uint(42), access.UserID)
	assert.Equal(t, "42", access.Subject)

	refresh, err := s.ValidateToken(pair.RefreshToken, TokenTypeRefresh)
	require.NoError(t, err)
	assert.NotEmpty(t, refresh.ID)
	assert.NotEqual(t, access.ID, refresh.ID)
}

func TestValidateToken_RejectsWrongType(t *testing.T) {
	s := newTestService(t)
	pair, err := s.GenerateTokenPair(1)
	require.NoError(t, err)

	_, err = s.ValidateToken(pair.RefreshToken, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = s.ValidateToken(pair.AccessToken, TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_RejectsExpiredAndForeign(t *testing.T) {
	s := newTestService(t)
	pair, err := s.GenerateTokenPair(1)
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = s.ValidateToken(pair.AccessToken, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := newTestService(t)
	_, err = other.ValidateToken(pair.RefreshToken, TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.ValidateToken("", TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("correct horse", hash))
	assert.False(t, CheckPasswordHash("wrong horse", hash))

	_, err = HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordLength)

	pw, err := RandomPassword()
	require.NoError(t, err)
	assert.Len(t, pw, 24)
}
