package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rugstore/storefront/internal/domain"
	"github.com/rugstore/storefront/internal/repository"
	"github.com/rugstore/storefront/pkg/errors"
)

type authService struct {
	repos  *repository.Repositories
	ttl    time.Duration
	logger *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(repos *repository.Repositories, ttl time.Duration, logger *zap.Logger) *authService {
	return &authService{
		repos:  repos,
		ttl:    ttl,
		logger: logger,
	}
}

// HashToken returns the value stored for a bearer token
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// HashPassword hashes a password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Register creates a shopper account
func (s *authService) Register(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	hash, err := HashPassword(creds.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Email:        creds.Email,
		PasswordHash: hash,
	}
	if err := s.repos.User.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

// Login verifies credentials and issues a session token
func (s *authService) Login(ctx context.Context, creds domain.Credentials) (*domain.TokenResponse, error) {
	user, err := s.repos.User.GetByEmail(ctx, creds.Email)
	if err != nil {
		var notFound *errors.ErrNotFound
		if stderrors.As(err, &notFound) {
			return nil, &errors.ErrUnauthorized{Message: "invalid email or password"}
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, &errors.ErrUnauthorized{Message: "invalid email or password"}
	}

	token := uuid.NewString()
	session := &domain.Session{
		TokenHash: HashToken(token),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	if err := s.repos.Session.Create(ctx, session); err != nil {
		return nil, err
	}

	return &domain.TokenResponse{Token: token, ExpiresAt: session.ExpiresAt}, nil
}

// Authenticate resolves a bearer token to its user
func (s *authService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, &errors.ErrUnauthorized{Message: "missing token"}
	}

	session, err := s.repos.Session.GetByTokenHash(ctx, HashToken(token))
	if err != nil {
		var notFound *errors.ErrNotFound
		if stderrors.As(err, &notFound) {
			return nil, &errors.ErrUnauthorized{Message: "invalid token"}
		}
		return nil, err
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, &errors.ErrUnauthorized{Message: "token expired"}
	}

	return s.repos.User.GetByID(ctx, session.UserID)
}
