package auth

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"studiodrive/internal/domain"
	"studiodrive/internal/domain/models"
)

func sign(t *testing.T, method jwt.SigningMethod, key any, claims *models.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestHMACVerifier(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	secret := []byte("test-secret")
	v := NewHMACVerifier(secret, logger)

	valid := &models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "a@x.com",
	}
	expired := &models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		Email: "a@x.com",
	}
	noPrincipal := &models.Claims{}

	tests := []struct {
		name      string
		token     string
		wantEmail string
		wantErr   bool
	}{
		{"valid", sign(t, jwt.SigningMethodHS256, secret, valid), "a@x.com", false},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("other"), valid), "", true},
		{"wrong algorithm", sign(t, jwt.SigningMethodHS512, secret, valid), "", true},
		{"expired", sign(t, jwt.SigningMethodHS256, secret, expired), "", true},
		{"no principal", sign(t, jwt.SigningMethodHS256, secret, noPrincipal), "", true},
		{"garbage", "not-a-token", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := v.VerifyToken(tt.token)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrUnauthorized) {
					t.Fatalf("expected ErrUnauthorized, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if claims.Principal() != tt.wantEmail {
				t.Errorf("Principal() = %q, want %q", claims.Principal(), tt.wantEmail)
			}
		})
	}
}
