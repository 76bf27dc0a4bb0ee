package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromTokenRoundTrip(t *testing.T) {
	p := NewProvider("test-secret")

	token, err := p.SignToken(Identity{
		UserID:      "u-123",
		Email:       "ana@example.com",
		Username:    "ana",
		DisplayName: "Ana",
	})
	require.NoError(t, err)

	id, err := p.FromToken(token)
	require.NoError(t, err)
	assert.True(t, id.Authenticated())
	assert.Equal(t, "u-123", id.UserID)
	assert.Equal(t, "ana", id.Username)
	assert.Equal(t, "Ana", id.DisplayName)
}

func TestFromTokenRejectsWrongSecret(t *testing.T) {
	signer := NewProvider("secret-a")
	verifier := NewProvider("secret-b")

	token, err := signer.SignToken(Identity{UserID: "u-123"})
	require.NoError(t, err)

	id, err := verifier.FromToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.False(t, id.Authenticated())
}

func TestFromTokenRejectsGarbage(t *testing.T) {
	p := NewProvider("test-secret")

	id, err := p.FromToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, Anonymous, id)
}

func TestFromTokenRequiresSubject(t *testing.T) {
	p := NewProvider("test-secret")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "nobody@example.com",
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = p.FromToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestFromTokenRejectsExpired(t *testing.T) {
	p := NewProvider("test-secret")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-123",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = p.FromToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestFromTokenRejectsUnexpectedSigningMethod(t *testing.T) {
	p := NewProvider("test-secret")

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u-123"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = p.FromToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
