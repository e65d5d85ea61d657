package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestStatic(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)

	id, err := Static{ID: "o1"}.OwnerID(r)
	if err != nil || id != "o1" {
		t.Fatalf("OwnerID = %q, %v", id, err)
	}
	if _, err := (Static{}).OwnerID(r); err == nil {
		t.Fatal("empty static owner should be rejected")
	}
}

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestJWT(t *testing.T) {
	secret := []byte("test-secret")
	provider := NewJWT("test-secret")

	t.Run("valid token", func(t *testing.T) {
		raw := signToken(t, secret, jwt.MapClaims{
			"sub": "owner-42",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer "+raw)

		id, err := provider.OwnerID(r)
		if err != nil || id != "owner-42" {
			t.Fatalf("OwnerID = %q, %v", id, err)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		if _, err := provider.OwnerID(httptest.NewRequest("GET", "/", nil)); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		raw := signToken(t, []byte("other"), jwt.MapClaims{"sub": "owner-42"})
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer "+raw)
		if _, err := provider.OwnerID(r); err == nil {
			t.Fatal("expected error for bad signature")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		raw := signToken(t, secret, jwt.MapClaims{
			"sub": "owner-42",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer "+raw)
		if _, err := provider.OwnerID(r); err == nil {
			t.Fatal("expected error for expired token")
		}
	})

	t.Run("missing subject", func(t *testing.T) {
		raw := signToken(t, secret, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer "+raw)
		if _, err := provider.OwnerID(r); err == nil {
			t.Fatal("expected error for missing subject")
		}
	})
}
