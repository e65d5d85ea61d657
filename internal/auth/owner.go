// Package auth resolves the authenticated owner for a request. It does not
// implement login or sessions; it only extracts an identity the upstream
// auth system already established.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var ErrUnauthorized = errors.New("unauthorized")

// OwnerProvider yields the owner ID every record operation is scoped to.
type OwnerProvider interface {
	OwnerID(r *http.Request) (string, error)
}

// Static always returns a fixed owner. Used for single-user deployments
// and tests.
type Static struct {
	ID string
}

func (s Static) OwnerID(*http.Request) (string, error) {
	if s.ID == "" {
		return "", ErrUnauthorized
	}
	return s.ID, nil
}

// JWT reads the owner from the subject claim of an HS256 bearer token.
type JWT struct {
	Secret []byte
}

func NewJWT(secret string) JWT {
	return JWT{Secret: []byte(secret)}
}

func (j JWT) OwnerID(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrUnauthorized
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", ErrUnauthorized
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.Secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrUnauthorized
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrUnauthorized
	}
	return sub, nil
}
