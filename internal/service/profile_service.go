package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rugstore/storefront/internal/domain"
	"github.com/rugstore/storefront/internal/repository"
)

type profileService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(repos *repository.Repositories, logger *zap.Logger) *profileService {
	return &profileService{repos: repos, logger: logger}
}

// GetProfile returns the saved profile of a user
func (s *profileService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.ProfileView, error) {
	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.ProfileView{Email: user.Email, Profile: user.Profile}, nil
}

// UpdateProfile replaces the saved profile fields
func (s *profileService) UpdateProfile(ctx context.Context, userID uuid.UUID, profile domain.Profile) (*domain.ProfileView, error) {
	profile = domain.Profile{
		Name:    strings.TrimSpace(profile.Name),
		Phone:   strings.TrimSpace(profile.Phone),
		Address: strings.TrimSpace(profile.Address),
		City:    strings.TrimSpace(profile.City),
		Zip:     strings.TrimSpace(profile.Zip),
	}
	if err := s.repos.User.UpdateProfile(ctx, userID, profile); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}
