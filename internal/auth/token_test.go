// ABOUTME: Tests for static, JWT and chained token verification
// ABOUTME: Covers secret mismatch, expiry, missing claims and chaining

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticVerifier_Match(t *testing.T) {
	v := NewStaticVerifier("secret-token", "mcp-client")

	principalID, err := v.Verify("secret-token")
	require.NoError(t, err)
	assert.Equal(t, "mcp-client", principalID)
}

func TestStaticVerifier_Mismatch(t *testing.T) {
	v := NewStaticVerifier("secret-token", "mcp-client")

	_, err := v.Verify("wrong-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestStaticVerifier_EmptySecretRejectsEverything(t *testing.T) {
	v := NewStaticVerifier("", "mcp-client")

	_, err := v.Verify("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTVerifier_RoundTrip(t *testing.T) {
	v := NewJWTVerifier([]byte("test-secret-at-least-32-bytes-long"))

	token, err := v.Generate("principal-1", time.Hour)
	require.NoError(t, err)

	principalID, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "principal-1", principalID)
}

func TestJWTVerifier_Expired(t *testing.T) {
	v := NewJWTVerifier([]byte("test-secret-at-least-32-bytes-long"))

	token, err := v.Generate("principal-1", -time.Hour)
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTVerifier_WrongSecret(t *testing.T) {
	v1 := NewJWTVerifier([]byte("secret-one-0000000000000000000000"))
	v2 := NewJWTVerifier([]byte("secret-two-0000000000000000000000"))

	token, err := v1.Generate("principal-1", time.Hour)
	require.NoError(t, err)

	_, err = v2.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTVerifier_Garbage(t *testing.T) {
	v := NewJWTVerifier([]byte("test-secret-at-least-32-bytes-long"))

	_, err := v.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestChainVerifier_FallsThrough(t *testing.T) {
	static := NewStaticVerifier("shared-secret", "mcp-client")
	jwtV := NewJWTVerifier([]byte("test-secret-at-least-32-bytes-long"))
	chain := NewChainVerifier(static, jwtV)

	// Static secret accepted
	principalID, err := chain.Verify("shared-secret")
	require.NoError(t, err)
	assert.Equal(t, "mcp-client", principalID)

	// JWT accepted
	token, err := jwtV.Generate("jwt-principal", time.Hour)
	require.NoError(t, err)
	principalID, err = chain.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "jwt-principal", principalID)

	// Neither
	_, err = chain.Verify("bogus")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestChainVerifier_SkipsNil(t *testing.T) {
	chain := NewChainVerifier(nil, NewStaticVerifier("s", "p"))

	principalID, err := chain.Verify("s")
	require.NoError(t, err)
	assert.Equal(t, "p", principalID)
}
