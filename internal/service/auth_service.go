package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/haf/internal/auth"
	"github.com/spec-kit/haf/internal/config"
	"github.com/spec-kit/haf/internal/settings"
)

// ErrEmptyPassword is returned when an API password would be blank.
var ErrEmptyPassword = errors.New("password must not be empty")

// CredentialStore holds the operator email and the API password hash.
type CredentialStore interface {
	Load() (settings.Settings, error)
	UpdateAPIPasswordHash(hash string) error
}

// AuthService logs the operator into the local API. The login name is the
// Microsoft email; the password is a separate one kept as a bcrypt hash.
type AuthService struct {
	credentials CredentialStore
	tokenMgr    *auth.TokenManager
	bcryptCost  int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, credentials CredentialStore) *AuthService {
	return &AuthService{
		credentials: credentials,
		tokenMgr:    auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost:  cfg.BcryptCost,
	}
}

// TokenManager exposes the token manager for the middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// SetPassword hashes password and stores it as the API password.
func (s *AuthService) SetPassword(ctx context.Context, password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.credentials.UpdateAPIPasswordHash(hash)
}

// Login checks email and password against the settings and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	cfg, err := s.credentials.Load()
	if err != nil {
		return "", time.Time{}, err
	}
	if cfg.Email == "" || cfg.APIPasswordHash == "" {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if !strings.EqualFold(strings.TrimSpace(email), cfg.Email) {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err := auth.ComparePassword(cfg.APIPasswordHash, password); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return s.tokenMgr.GenerateToken(cfg.Email)
}
