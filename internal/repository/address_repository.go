package repository

import (
	"context"
	"fmt"

	"shopfront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const addressColumns = `id, user_id, street, city, postal_code, country, phone_number, label,
	is_default, created_at, updated_at`

type addressRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAddressRepository creates a new PostgreSQL-backed address repository.
func NewAddressRepository(pool *pgxpool.Pool, logger zerolog.Logger) AddressRepository {
	return &addressRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "address").Logger(),
	}
}

func (r *addressRepository) Create(ctx context.Context, tx pgx.Tx, a *model.Address) error {
	query := `
		INSERT INTO addresses (user_id, street, city, postal_code, country, phone_number, label, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		a.UserID, a.Street, a.City, a.PostalCode, a.Country, a.PhoneNumber, a.Label, a.IsDefault,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		err = translateError(err)
		r.logger.Error().Err(err).Str("user_id", a.UserID.String()).Msg("failed to create address")
		return fmt.Errorf("failed to create address: %w", err)
	}
	return nil
}

func (r *addressRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*model.Address, error) {
	return r.get(ctx, r.pool, id, userID, "")
}

// GetByIDTx retrieves and locks an address inside tx.
func (r *addressRepository) GetByIDTx(ctx context.Context, tx pgx.Tx, id, userID uuid.UUID) (*model.Address, error) {
	return r.get(ctx, tx, id, userID, " FOR UPDATE")
}

func (r *addressRepository) get(ctx context.Context, q Querier, id, userID uuid.UUID, suffix string) (*model.Address, error) {
	a, err := getOne[model.Address](ctx, q,
		`SELECT `+addressColumns+` FROM addresses WHERE id = $1 AND user_id = $2`+suffix, id, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to query address")
		return nil, fmt.Errorf("failed to query address: %w", err)
	}
	return a, nil
}

// ListByUser returns the user's addresses, default first then newest.
func (r *addressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at DESC`

	addresses, err := getMany[model.Address](ctx, r.pool, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list addresses")
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

// LockByUser locks every address of the user, newest first.
func (r *addressRepository) LockByUser(ctx context.Context, tx pgx.Tx, userID uuid.UUID) ([]model.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY created_at DESC FOR UPDATE`

	addresses, err := getMany[model.Address](ctx, tx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to lock addresses")
		return nil, fmt.Errorf("failed to lock addresses: %w", err)
	}
	return addresses, nil
}

// ClearDefault unsets the user's default address.
func (r *addressRepository) ClearDefault(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	query := `UPDATE addresses SET is_default = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_default`

	if _, err := tx.Exec(ctx, query, userID); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to clear default address")
		return fmt.Errorf("failed to clear default address: %w", err)
	}
	return nil
}

func (r *addressRepository) Update(ctx context.Context, tx pgx.Tx, a *model.Address) error {
	query := `
		UPDATE addresses
		SET street = $3, city = $4, postal_code = $5, country = $6, phone_number = $7,
		    label = $8, is_default = $9, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`

	err := tx.QueryRow(ctx, query,
		a.ID, a.UserID, a.Street, a.City, a.PostalCode, a.Country, a.PhoneNumber, a.Label, a.IsDefault,
	).Scan(&a.UpdatedAt)
	if err != nil {
		err = translateError(err)
		r.logger.Error().Err(err).Str("address_id", a.ID.String()).Msg("failed to update address")
		return fmt.Errorf("failed to update address: %w", err)
	}
	return nil
}

func (r *addressRepository) Delete(ctx context.Context, tx pgx.Tx, id, userID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, userID); err != nil {
		r.logger.Error().Err(err).Str("address_id", id.String()).Msg("failed to delete address")
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return nil
}
