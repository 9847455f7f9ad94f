package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"supervisor_settings_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// --- Custom Service Errors for Auth ---
var (
	ErrInvalidCredentials = errors.New("invalid client id or secret")
	ErrTokenGeneration    = errors.New("failed to generate token")
)

// --- DTOs ---

// TokenRequest exchanges service-account credentials for a bearer token.
type TokenRequest struct {
	ClientID     string `json:"client_id" binding:"required"`
	ClientSecret string `json:"client_secret" binding:"required"`
}

// TokenResponse carries the issued bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// --- TokenService Interface ---
type TokenService interface {
	IssueToken(req TokenRequest) (*TokenResponse, error)
}

type tokenService struct {
	clientID         string
	clientSecretHash string // bcrypt hash of the shared secret
	role             string
	tokenTTL         time.Duration
}

// NewTokenService creates a new instance of TokenService. Credentials are
// configured from the environment; tokens are never persisted.
func NewTokenService(clientID, clientSecretHash, role string, tokenTTL time.Duration) TokenService {
	return &tokenService{
		clientID:         clientID,
		clientSecretHash: clientSecretHash,
		role:             role,
		tokenTTL:         tokenTTL,
	}
}

func (s *tokenService) IssueToken(req TokenRequest) (*TokenResponse, error) {
	idMatch := subtle.ConstantTimeCompare([]byte(req.ClientID), []byte(s.clientID)) == 1
	secretErr := bcrypt.CompareHashAndPassword([]byte(s.clientSecretHash), []byte(req.ClientSecret))
	if !idMatch || secretErr != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateAccessToken(req.ClientID, s.role, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
	}, nil
}
