package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionToken(t *testing.T) {
	st, err := NewSessionToken("test-secret", 42, "seller", 30)
	require.NoError(t, err)
	assert.NotEmpty(t, st.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(30*24*time.Hour), st.Exp, time.Minute)

	parsed, err := jwt.Parse(st.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(42), claims["sub"])
	assert.Equal(t, "seller", claims["role"])

	// Wrong key must not verify.
	_, err = jwt.Parse(st.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("other-secret"), nil
	})
	assert.Error(t, err)
}

func TestHashToken(t *testing.T) {
	a := HashToken("token-a")
	b := HashToken("token-b")
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, HashToken("token-a"))
	assert.Len(t, a, 64) // sha256 hex
}
