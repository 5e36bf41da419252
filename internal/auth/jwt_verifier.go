package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"studiodrive/internal/config"
	"studiodrive/internal/domain"
	"studiodrive/internal/domain/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// JWKSVerifier verifies RS256/ES256 tokens against a JWKS endpoint.
type JWKSVerifier struct {
	jwks   keyfunc.Keyfunc
	logger *slog.Logger
}

// NewJWTVerifier picks the verifier for cfg: JWKS when JWTJWKSURL is set,
// otherwise HS256 with JWTSecret.
func NewJWTVerifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) (JWTVerifier, error) {
	switch {
	case cfg.JWTJWKSURL != "":
		return NewJWKSVerifier(ctx, cfg.JWTJWKSURL, logger)
	case cfg.JWTSecret != "":
		return NewHMACVerifier([]byte(cfg.JWTSecret), logger), nil
	default:
		return nil, errors.New("either JWT_JWKS_URL or JWT_SECRET must be set")
	}
}

// NewJWKSVerifier creates a verifier that fetches public keys from jwksURL.
// keyfunc caches the keys and refreshes them based on HTTP cache headers.
func NewJWKSVerifier(ctx context.Context, jwksURL string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "mode", "jwks", "jwks_url", jwksURL)

	return &JWKSVerifier{
		jwks:   jwks,
		logger: logger,
	}, nil
}

// VerifyToken validates a JWT token and extracts the studio claims
func (v *JWKSVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	// Only asymmetric algorithms; prevents algorithm confusion
	return parseClaims(tokenString, v.jwks.Keyfunc, []string{"RS256", "ES256"}, v.logger)
}

// Close is a no-op; keyfunc v3 manages its own refresh goroutine lifetime via ctx
func (v *JWKSVerifier) Close() error {
	v.logger.Info("JWT verifier closed")
	return nil
}

// HMACVerifier verifies HS256 tokens signed with a shared secret
type HMACVerifier struct {
	secret []byte
	logger *slog.Logger
}

// NewHMACVerifier creates a shared-secret verifier
func NewHMACVerifier(secret []byte, logger *slog.Logger) JWTVerifier {
	logger.Info("JWT verifier initialized", "mode", "hmac")
	return &HMACVerifier{secret: secret, logger: logger}
}

// VerifyToken validates an HS256 token
func (v *HMACVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	keyFunc := func(*jwt.Token) (any, error) { return v.secret, nil }
	return parseClaims(tokenString, keyFunc, []string{"HS256"}, v.logger)
}

func (v *HMACVerifier) Close() error { return nil }

func parseClaims(tokenString string, keyFunc jwt.Keyfunc, algs []string, logger *slog.Logger) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, keyFunc, jwt.WithValidMethods(algs))
	if err != nil {
		logger.Debug("token parse failed", "error", err)
		return nil, fmt.Errorf("invalid token: %w", domain.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok || !token.Valid {
		logger.Debug("token claims invalid")
		return nil, fmt.Errorf("invalid token: %w", domain.ErrUnauthorized)
	}

	if claims.Principal() == "" {
		logger.Debug("token missing email and subject claims")
		return nil, fmt.Errorf("token has no principal: %w", domain.ErrUnauthorized)
	}

	return claims, nil
}
