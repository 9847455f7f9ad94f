package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// jwtSecretKey is used to sign and verify JWT tokens. It is injected from
// the environment at startup via InitJWT.
var jwtSecretKey []byte

const tokenIssuer = "supervisor-settings-backend"

// DefaultTokenTTL is the access token lifetime used when none is configured.
const DefaultTokenTTL = 1 * time.Hour

// ErrJWTNotConfigured is returned when token operations run before InitJWT.
var ErrJWTNotConfigured = errors.New("jwt secret not configured")

// InitJWT sets the shared signing secret. Must be called once at startup
// before any token is generated or validated.
func InitJWT(secret string) {
	jwtSecretKey = []byte(secret)
}

// Claims defines the JWT claims structure. The subject identifies the
// service account the token was issued to.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateAccessToken creates a signed JWT for the given subject and role.
func GenerateAccessToken(subject, role string, ttl time.Duration) (string, error) {
	if len(jwtSecretKey) == 0 {
		return "", ErrJWTNotConfigured
	}
	now := time.Now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token string.
// It returns the claims if the token is valid, otherwise an error.
func ValidateToken(tokenString string) (*Claims, error) {
	if len(jwtSecretKey) == 0 {
		return nil, ErrJWTNotConfigured
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
