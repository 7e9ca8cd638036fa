package service

import (
	"context"
	"fmt"
	"net/url"

	"shopfront/internal/model"
	"shopfront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// userService implements UserService.
type userService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository, logger zerolog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger.With().Str("service", "user").Logger(),
	}
}

func (s *userService) GetMe(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, actor *model.User, req *model.UpdateProfileRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user := *actor
	req.ApplyTo(&user)
	if err := s.userRepo.UpdateProfile(ctx, &user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("profile updated")
	return &user, nil
}

func (s *userService) List(ctx context.Context, params url.Values) (*model.Page[model.User], error) {
	return list(ctx, repository.UserQuerySpec, params, s.userRepo.List)
}

// UpdateStatus changes an account status; deleted also marks the user deleted.
func (s *userService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.UserStatus) (*model.User, error) {
	req := model.UpdateUserStatusRequest{Status: status}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	s.logger.Info().Str("user_id", id.String()).Str("status", string(status)).Msg("user status updated")
	return user, nil
}
