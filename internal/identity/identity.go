// Package identity resolves the opaque viewer identity issued by the external
// identity provider. Account creation and login live entirely outside this
// service; all it sees are signed session tokens.
package identity

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the resolved session identity. A zero UserID means
// unauthenticated.
type Identity struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// Authenticated reports whether the identity carries a user id.
func (id Identity) Authenticated() bool {
	return id.UserID != ""
}

// Anonymous is the unauthenticated sentinel.
var Anonymous = Identity{}

// ErrInvalidToken is returned for tokens that fail validation.
var ErrInvalidToken = errors.New("invalid or expired session token")

// Provider parses session tokens into identities.
type Provider struct {
	secret []byte
}

// NewProvider creates a Provider validating tokens signed with secret.
func NewProvider(secret string) *Provider {
	return &Provider{secret: []byte(secret)}
}

// FromToken validates tokenString and extracts the session identity.
// The subject claim carries the opaque user id; name claims are optional.
func (p *Provider) FromToken(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return Anonymous, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Anonymous, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Anonymous, ErrInvalidToken
	}

	id := Identity{UserID: sub}
	if v, ok := claims["email"].(string); ok {
		id.Email = v
	}
	if v, ok := claims["username"].(string); ok {
		id.Username = v
	}
	if v, ok := claims["name"].(string); ok {
		id.DisplayName = v
	}
	return id, nil
}

// SignToken issues a session token for the given identity. Primarily used by
// the seed command and tests; real tokens come from the identity provider.
func (p *Provider) SignToken(id Identity) (string, error) {
	claims := jwt.MapClaims{
		"sub":      id.UserID,
		"email":    id.Email,
		"username": id.Username,
		"name":     id.DisplayName,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}
