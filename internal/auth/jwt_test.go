package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-jwt-secret-that-is-32-chars-!"

func newTestManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(testSecret)
	if err != nil {
		t.Fatalf("NewJWTManager() error: %v", err)
	}
	return m
}

func TestNewJWTManager(t *testing.T) {
	t.Run("empty secret", func(t *testing.T) {
		if _, err := NewJWTManager(""); !errors.Is(err, ErrEmptySecret) {
			t.Errorf("NewJWTManager(\"\") error = %v, want ErrEmptySecret", err)
		}
	})

	t.Run("short secret is weak", func(t *testing.T) {
		m, err := NewJWTManager("short")
		if err != nil {
			t.Fatalf("NewJWTManager() error: %v", err)
		}
		if !m.WeakSecret() {
			t.Error("WeakSecret() = false for 5 char secret")
		}
	})

	t.Run("long secret", func(t *testing.T) {
		if newTestManager(t).WeakSecret() {
			t.Error("WeakSecret() = true for 34 char secret")
		}
	})
}

func TestGenerateAndValidateJWT(t *testing.T) {
	m := newTestManager(t)

	t.Run("round trip", func(t *testing.T) {
		token, err := m.GenerateJWT("user-123", time.Hour)
		if err != nil {
			t.Fatalf("GenerateJWT() error: %v", err)
		}
		claims, err := m.ValidateJWT(token)
		if err != nil {
			t.Fatalf("ValidateJWT() error: %v", err)
		}
		if claims.UserID != "user-123" {
			t.Errorf("claims.UserID = %q, want user-123", claims.UserID)
		}
		if claims.Issuer != Issuer {
			t.Errorf("claims.Issuer = %q, want %q", claims.Issuer, Issuer)
		}
	})

	t.Run("zero expiry uses default", func(t *testing.T) {
		token, err := m.GenerateJWT("user-123", 0)
		if err != nil {
			t.Fatalf("GenerateJWT() error: %v", err)
		}
		claims, err := m.ValidateJWT(token)
		if err != nil {
			t.Fatalf("ValidateJWT() error: %v", err)
		}
		if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != defaultTokenTTL {
			t.Errorf("token lifetime = %v, want %v", got, defaultTokenTTL)
		}
	})

	t.Run("empty user id rejected", func(t *testing.T) {
		if _, err := m.GenerateJWT("", time.Hour); err == nil {
			t.Error("GenerateJWT(\"\") expected error, got nil")
		}
	})
}

func TestValidateJWT_Rejections(t *testing.T) {
	m := newTestManager(t)

	t.Run("garbage", func(t *testing.T) {
		if _, err := m.ValidateJWT("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ValidateJWT() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, _ := NewJWTManager("another-secret-that-is-long-enough!")
		token, err := other.GenerateJWT("user-123", time.Hour)
		if err != nil {
			t.Fatalf("GenerateJWT() error: %v", err)
		}
		if _, err := m.ValidateJWT(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ValidateJWT() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		past, _ := NewJWTManager(testSecret)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := past.GenerateJWT("user-123", time.Hour)
		if err != nil {
			t.Fatalf("GenerateJWT() error: %v", err)
		}
		if _, err := m.ValidateJWT(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ValidateJWT() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("none algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			UserID:           "user-123",
			RegisteredClaims: jwt.RegisteredClaims{Issuer: Issuer},
		})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("SignedString() error: %v", err)
		}
		if _, err := m.ValidateJWT(signed); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ValidateJWT() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("missing user_id", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    Issuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		signed, err := token.SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("SignedString() error: %v", err)
		}
		if _, err := m.ValidateJWT(signed); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("ValidateJWT() error = %v, want ErrInvalidToken", err)
		}
	})
}
