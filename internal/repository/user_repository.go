package repository

import (
	"context"
	"fmt"
	"time"

	"shopfront/internal/model"
	"shopfront/internal/query"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const userColumns = `id, name, email, phone, password_hash, profile_picture, address, role,
	is_email_verified, status, is_deleted, password_changed_at, reset_token_hash,
	reset_token_expires_at, created_at, updated_at`

// UserQuerySpec whitelists the user list parameters.
var UserQuerySpec = query.Spec{
	Columns: map[string]query.Column{
		"id":        {Expr: "id", Kind: query.UUID},
		"name":      {Expr: "name"},
		"email":     {Expr: "email"},
		"phone":     {Expr: "phone"},
		"role":      {Expr: "role"},
		"status":    {Expr: "status"},
		"isDeleted": {Expr: "is_deleted", Kind: query.Bool},
		"createdAt": {Expr: "created_at", Kind: query.Time},
	},
	Searchable:  []string{"name", "email", "phone"},
	DefaultSort: "-createdAt",
}

// userRepository implements the UserRepository interface using PostgreSQL.
type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

// Create inserts a new user and fills in the generated fields.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (name, email, phone, password_hash, profile_picture, address, role, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		user.Name, user.Email, user.Phone, user.PasswordHash,
		user.ProfilePicture, user.Address, user.Role, user.Status,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		err = translateError(err)
		r.logger.Error().Err(err).Str("email", user.Email).Msg("failed to create user")
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Debug().Str("user_id", user.ID.String()).Msg("user created successfully")
	return nil
}

// GetByID retrieves a user by id.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := getOne[model.User](ctx, r.pool, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email, ignoring case.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := getOne[model.User](ctx, r.pool,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query user by email")
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	return u, nil
}

// GetByPhone retrieves a user by phone number.
func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	u, err := getOne[model.User](ctx, r.pool, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query user by phone")
		return nil, fmt.Errorf("failed to query user by phone: %w", err)
	}
	return u, nil
}

// GetByResetTokenHash retrieves the user holding a password reset token.
func (r *userRepository) GetByResetTokenHash(ctx context.Context, hash string) (*model.User, error) {
	u, err := getOne[model.User](ctx, r.pool,
		`SELECT `+userColumns+` FROM users WHERE reset_token_hash = $1`, hash)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query user by reset token")
		return nil, fmt.Errorf("failed to query user by reset token: %w", err)
	}
	return u, nil
}

// UpdateProfile saves the user editable profile fields.
func (r *userRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET name = $2, phone = $3, profile_picture = $4, address = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		user.ID, user.Name, user.Phone, user.ProfilePicture, user.Address,
	).Scan(&user.UpdatedAt)
	if err != nil {
		err = translateError(err)
		r.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to update user")
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// UpdatePassword stores a new password hash and clears any reset token.
func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string, changedAt time.Time) error {
	query := `
		UPDATE users
		SET password_hash = $2, password_changed_at = $3,
		    reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := r.pool.Exec(ctx, query, id, hash, changedAt); err != nil {
		r.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to update password")
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// SetResetToken stores the hash of a password reset token.
func (r *userRepository) SetResetToken(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET reset_token_hash = $2, reset_token_expires_at = $3, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := r.pool.Exec(ctx, query, id, hash, expiresAt); err != nil {
		r.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to store reset token")
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

// UpdateStatus changes the account status. The deleted status also sets is_deleted.
func (r *userRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.UserStatus) (*model.User, error) {
	query := `
		UPDATE users
		SET status = $2, is_deleted = ($2 = 'deleted'), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	u, err := getOne[model.User](ctx, r.pool, query, id, status)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to update user status")
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}
	return u, nil
}

// ExistsWithRole reports whether any user has role.
func (r *userRepository) ExistsWithRole(ctx context.Context, role model.Role) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE role = $1)`, role).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Str("role", string(role)).Msg("failed to check role")
		return false, fmt.Errorf("failed to check role: %w", err)
	}
	return exists, nil
}

// List returns one page of users.
func (r *userRepository) List(ctx context.Context, q *query.Query) (*model.Page[model.User], error) {
	page, err := listPage[model.User](ctx, r.pool, q, `SELECT `+userColumns+` FROM users`, "users")
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list users")
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return page, nil
}
