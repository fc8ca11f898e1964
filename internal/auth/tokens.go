// Package auth handles access tokens, OAuth state, and the Google sign-in
// exchange.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/zoneinapp/zonein-server/internal/id"
)

const (
	tokenIssuer   = "zonein-server"
	tokenAudience = "zonein-client"

	minSecretLength = 32
)

// TokenService handles JWT access token generation and verification.
// Tokens are HS256-signed and carry the user ID as the subject claim.
type TokenService struct {
	secret              []byte
	accessTokenDuration time.Duration
}

// NewTokenService creates a new token service with the given configuration.
func NewTokenService(secret string, accessDuration time.Duration) (*TokenService, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("JWT secret must be at least %d characters, got %d", minSecretLength, len(secret))
	}

	return &TokenService{
		secret:              []byte(secret),
		accessTokenDuration: accessDuration,
	}, nil
}

// GenerateAccessToken creates a signed access token for the user.
func (s *TokenService) GenerateAccessToken(userID string) (string, error) {
	now := time.Now()

	tokenID, err := id.New("token")
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}

	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   userID,
		Audience:  jwt.ClaimStrings{tokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenDuration)),
		ID:        tokenID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken checks the token signature and standard claims and
// returns the user ID it was issued to.
func (s *TokenService) VerifyAccessToken(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims

	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("verify token: %w", err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return claims.Subject, nil
}
