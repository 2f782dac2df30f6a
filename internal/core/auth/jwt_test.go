package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	j := &JWTer{Secret: []byte("test-secret"), Issuer: "test", TTL: time.Minute}

	tok, err := j.Issue(42, "alice", []string{"admin", "editor"})
	require.NoError(t, err)

	claims, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.HasRole("admin"))
	assert.False(t, claims.HasRole("viewer"))

	uid, err := claims.UserID()
	require.NoError(t, err)
	assert.EqualValues(t, 42, uid)
}

func TestJWTWrongSecret(t *testing.T) {
	j := &JWTer{Secret: []byte("test-secret"), Issuer: "test", TTL: time.Minute}
	tok, err := j.Issue(1, "bob", nil)
	require.NoError(t, err)

	other := &JWTer{Secret: []byte("other-secret"), Issuer: "test", TTL: time.Minute}
	_, err = other.Parse(tok)
	assert.Error(t, err)
}

func TestJWTWrongIssuer(t *testing.T) {
	j := &JWTer{Secret: []byte("test-secret"), Issuer: "one", TTL: time.Minute}
	tok, err := j.Issue(1, "bob", nil)
	require.NoError(t, err)

	other := &JWTer{Secret: []byte("test-secret"), Issuer: "two", TTL: time.Minute}
	_, err = other.Parse(tok)
	assert.Error(t, err)
}
