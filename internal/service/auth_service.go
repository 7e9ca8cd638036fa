package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"shopfront/internal/auth"
	"shopfront/internal/config"
	"shopfront/internal/mail"
	"shopfront/internal/model"
	"shopfront/internal/repository"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
)

// ResetTokenTTL is how long a password reset link stays valid.
const ResetTokenTTL = 24 * time.Hour

// authService implements AuthService.
type authService struct {
	userRepo  repository.UserRepository
	tokens    *auth.TokenManager
	mailer    mail.Sender
	clientURL string
	now       func() time.Time
	logger    zerolog.Logger
}

// NewAuthService creates a new auth service. clientURL is the frontend base
// URL used in password reset links.
func NewAuthService(
	userRepo repository.UserRepository,
	tokens *auth.TokenManager,
	mailer mail.Sender,
	clientURL string,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		tokens:    tokens,
		mailer:    mailer,
		clientURL: strings.TrimRight(clientURL, "/"),
		now:       time.Now,
		logger:    logger.With().Str("service", "auth").Logger(),
	}
}

func (s *authService) SignUp(ctx context.Context, req *model.SignUpRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         model.RoleUser,
		Status:       model.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user signed up")
	return user, nil
}

// Login authenticates by email or phone and issues a token pair.
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		user *model.User
		err  error
	)
	if req.Email != "" {
		user, err = s.userRepo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	} else {
		user, err = s.userRepo.GetByPhone(ctx, strings.TrimSpace(req.Phone))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if err := checkActive(user); err != nil {
		s.logger.Warn().Str("user_id", user.ID.String()).Str("status", string(user.Status)).Msg("login refused")
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warn().Str("user_id", user.ID.String()).Msg("login with wrong password")
		return nil, ErrIncorrectPassword
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user logged in")
	return &model.LoginResponse{TokenPair: *pair, User: user}, nil
}

// RefreshToken issues a new access token for a valid refresh token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, model.ErrUnauthorised
	}

	user, err := s.tokenUser(ctx, claims)
	if err != nil {
		return nil, err
	}

	access, err := s.tokens.IssueAccess(user)
	if err != nil {
		return nil, err
	}
	return &model.TokenPair{AccessToken: access}, nil
}

func (s *authService) ChangePassword(ctx context.Context, actor *model.User, req *model.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if !auth.CheckPassword(actor.PasswordHash, req.OldPassword) {
		return ErrIncorrectOldPassword
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, actor.ID, hash, s.now()); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	s.logger.Info().Str("user_id", actor.ID.String()).Msg("password changed")
	return nil
}

// RequestPasswordReset emails a reset link. Unknown or disabled accounts are
// ignored so the response does not reveal which emails are registered.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.ValidationError(model.ErrorSource{Path: "email", Message: "Email is required"})
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to request password reset: %w", err)
	}
	if user == nil || checkActive(user) != nil {
		s.logger.Debug().Msg("password reset requested for unknown or disabled account")
		return nil
	}

	token, hash, err := auth.NewResetToken()
	if err != nil {
		return err
	}
	if err := s.userRepo.SetResetToken(ctx, user.ID, hash, s.now().Add(ResetTokenTTL)); err != nil {
		return fmt.Errorf("failed to request password reset: %w", err)
	}

	link := s.clientURL + "/reset-password?token=" + url.QueryEscape(token)
	if err := s.mailer.Send(ctx, mail.PasswordReset(user.Email, user.Name, link)); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to send password reset email")
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("password reset requested")
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	user, err := s.userRepo.GetByResetTokenHash(ctx, auth.HashResetToken(req.Token))
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	if user == nil || user.ResetTokenExpiresAt == nil || s.now().After(*user.ResetTokenExpiresAt) {
		return ErrInvalidResetToken
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash, s.now()); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("password reset")
	return nil
}

// Authenticate resolves an access token to its user. Tokens issued before the
// last password change are rejected.
func (s *authService) Authenticate(ctx context.Context, accessToken string) (*model.User, error) {
	claims, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, model.ErrUnauthorised
	}
	return s.tokenUser(ctx, claims)
}

func (s *authService) tokenUser(ctx context.Context, claims *auth.Claims) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load token user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUnauthorised
	}
	if err := checkActive(user); err != nil {
		return nil, err
	}
	if user.PasswordChangedAt != nil && claims.IssuedBefore(*user.PasswordChangedAt) {
		return nil, model.ErrUnauthorised
	}
	return user, nil
}

// SeedSuperAdmin creates the configured super-admin when none exists yet.
func (s *authService) SeedSuperAdmin(ctx context.Context, cfg config.SuperAdminConfig) error {
	if cfg.Email == "" || cfg.Password == "" {
		s.logger.Debug().Msg("super admin credentials not configured")
		return nil
	}

	exists, err := s.userRepo.ExistsWithRole(ctx, model.RoleSuperAdmin)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return err
	}
	admin := &model.User{
		Name:         cfg.Name,
		Email:        strings.ToLower(cfg.Email),
		PasswordHash: hash,
		Role:         model.RoleSuperAdmin,
		Status:       model.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		var conflict *model.ConflictError
		if errors.As(err, &conflict) {
			return fmt.Errorf("super admin email %s belongs to another account: %w", admin.Email, err)
		}
		return err
	}

	s.logger.Info().Str("email", admin.Email).Msg("super admin seeded")
	return nil
}

// checkActive rejects deleted and blocked accounts.
func checkActive(u *model.User) error {
	switch {
	case u.IsDeleted || u.Status == model.UserStatusDeleted:
		return ErrUserDeleted
	case u.Status == model.UserStatusBlocked:
		return ErrUserBlocked
	}
	return nil
}
