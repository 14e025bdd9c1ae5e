package admin

import (
	"context"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/rentalneeds/leadflow-backend/internal/admin/jwt"
	"github.com/rentalneeds/leadflow-backend/pkg/config"
	"github.com/rentalneeds/leadflow-backend/pkg/errors"
	"github.com/rentalneeds/leadflow-backend/pkg/logger"
)

// LoginRequest is the body of POST /admin/login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Service authenticates the dashboard operator.
type Service struct {
	cfg    config.AdminConfig
	tokens *jwt.Manager
	logger *logger.Logger
}

// NewService creates a new admin service
func NewService(cfg config.AdminConfig, tokens *jwt.Manager, log *logger.Logger) *Service {
	return &Service{cfg: cfg, tokens: tokens, logger: log}
}

// Enabled reports whether admin credentials are configured
func (s *Service) Enabled() bool {
	return s.cfg.PasswordHash != ""
}

// Login checks the credentials and issues an access token
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*jwt.AccessToken, error) {
	if !s.Enabled() {
		return nil, errors.BadRequest("admin login is not configured")
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.cfg.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(req.Password))
	if !userOK || passErr != nil {
		s.logger.Warn().Str("username", req.Username).Msg("admin login failed")
		return nil, errors.InvalidCredentials()
	}

	token, err := s.tokens.GenerateAccessToken(s.cfg.Username)
	if err != nil {
		return nil, fmt.Errorf("issue admin token: %w", err)
	}

	s.logger.Info().Str("username", req.Username).Msg("admin logged in")
	return token, nil
}

// Authenticate validates a bearer token and returns its subject
func (s *Service) Authenticate(token string) (string, error) {
	claims, err := s.tokens.ValidateAccessToken(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
