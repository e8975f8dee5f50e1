package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tokens wraps a signing secret for issuing/resolving session tokens.
// The sub claim carries the session identity; the same token is
// presented on join-room and on the websocket handshake, so both phases
// resolve to one identity space.
type Tokens struct{ secret []byte }

// New creates a new token issuer/resolver.
func New(secret string) *Tokens { return &Tokens{secret: []byte(secret)} }

// Issue creates a token for the session identity with the given TTL
func (t *Tokens) Issue(id string, ttl time.Duration) (string, error) {
	if id == "" {
		return "", errors.New("empty session id")
	}
	claims := jwt.MapClaims{
		"sub": id,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(t.secret)
}

// Resolve checks a token and returns the session identity it carries
func (t *Tokens) Resolve(tok string) (string, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tok, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil {
		return "", err
	}
	id, _ := claims["sub"].(string)
	if id == "" {
		return "", errors.New("no sub")
	}
	return id, nil
}
