package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	raw, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestJWTGate_ValidToken(t *testing.T) {
	raw := signedToken(t, time.Now().Add(time.Hour))
	gate := NewJWTGate(StaticTokenStore(raw))

	assert.True(t, gate.Authenticated())

	got, err := gate.Token()
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestJWTGate_ExpiredToken(t *testing.T) {
	raw := signedToken(t, time.Now().Add(-time.Minute))
	gate := NewJWTGate(StaticTokenStore(raw))

	assert.False(t, gate.Authenticated())
}

func TestJWTGate_GarbageToken(t *testing.T) {
	gate := NewJWTGate(StaticTokenStore("not-a-jwt"))
	assert.False(t, gate.Authenticated())
}

func TestJWTGate_EmptyToken(t *testing.T) {
	gate := NewJWTGate(StaticTokenStore(""))
	assert.False(t, gate.Authenticated())
}
