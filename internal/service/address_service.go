package service

import (
	"context"
	"fmt"

	"shopfront/internal/model"
	"shopfront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// addressService implements AddressService. Changes that touch the default
// flag lock all of the user's addresses first so at most one stays default.
type addressService struct {
	tx          repository.Transactor
	addressRepo repository.AddressRepository
	logger      zerolog.Logger
}

// NewAddressService creates a new address service.
func NewAddressService(tx repository.Transactor, addressRepo repository.AddressRepository, logger zerolog.Logger) AddressService {
	return &addressService{
		tx:          tx,
		addressRepo: addressRepo,
		logger:      logger.With().Str("service", "address").Logger(),
	}
}

// Create adds an address. The user's first address becomes the default.
func (s *addressService) Create(ctx context.Context, userID uuid.UUID, in *model.AddressInput) (*model.Address, error) {
	if err := in.Validate(true); err != nil {
		return nil, err
	}

	address := &model.Address{UserID: userID}
	in.ApplyTo(address)

	err := inTx(ctx, s.tx, s.logger, func(tx pgx.Tx) error {
		existing, err := s.addressRepo.LockByUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		address.IsDefault = len(existing) == 0 || (in.IsDefault != nil && *in.IsDefault)
		if address.IsDefault && len(existing) > 0 {
			if err := s.addressRepo.ClearDefault(ctx, tx, userID); err != nil {
				return err
			}
		}
		return s.addressRepo.Create(ctx, tx, address)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("address_id", address.ID.String()).
		Bool("default", address.IsDefault).
		Msg("address created")
	return address, nil
}

// List returns the user's addresses, default first then newest.
func (s *addressService) List(ctx context.Context, userID uuid.UUID) ([]model.Address, error) {
	addresses, err := s.addressRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

func (s *addressService) Get(ctx context.Context, userID, id uuid.UUID) (*model.Address, error) {
	address, err := s.addressRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get address: %w", err)
	}
	if address == nil {
		return nil, ErrAddressNotFound
	}
	return address, nil
}

func (s *addressService) Update(ctx context.Context, userID, id uuid.UUID, in *model.AddressInput) (*model.Address, error) {
	if err := in.Validate(false); err != nil {
		return nil, err
	}

	var address *model.Address
	err := inTx(ctx, s.tx, s.logger, func(tx pgx.Tx) error {
		var err error
		address, _, err = s.lockOne(ctx, tx, userID, id)
		if err != nil {
			return err
		}

		in.ApplyTo(address)
		if in.IsDefault != nil && *in.IsDefault != address.IsDefault {
			if *in.IsDefault {
				if err := s.addressRepo.ClearDefault(ctx, tx, userID); err != nil {
					return err
				}
			}
			address.IsDefault = *in.IsDefault
		}
		return s.addressRepo.Update(ctx, tx, address)
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

// SetDefault makes the address the user's only default.
func (s *addressService) SetDefault(ctx context.Context, userID, id uuid.UUID) (*model.Address, error) {
	var address *model.Address
	err := inTx(ctx, s.tx, s.logger, func(tx pgx.Tx) error {
		var err error
		address, _, err = s.lockOne(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if err := s.addressRepo.ClearDefault(ctx, tx, userID); err != nil {
			return err
		}
		address.IsDefault = true
		return s.addressRepo.Update(ctx, tx, address)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("address_id", id.String()).Str("user_id", userID.String()).Msg("default address changed")
	return address, nil
}

// Delete removes the address. When it was the default, the most recently
// created remaining address becomes the default.
func (s *addressService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return inTx(ctx, s.tx, s.logger, func(tx pgx.Tx) error {
		address, all, err := s.lockOne(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if err := s.addressRepo.Delete(ctx, tx, id, userID); err != nil {
			return err
		}
		if !address.IsDefault {
			return nil
		}

		// all is ordered newest first
		for i := range all {
			if all[i].ID == id {
				continue
			}
			all[i].IsDefault = true
			return s.addressRepo.Update(ctx, tx, &all[i])
		}
		return nil
	})
}

// lockOne locks the user's addresses and returns the one with id along with all of them.
func (s *addressService) lockOne(ctx context.Context, tx pgx.Tx, userID, id uuid.UUID) (*model.Address, []model.Address, error) {
	all, err := s.addressRepo.LockByUser(ctx, tx, userID)
	if err != nil {
		return nil, nil, err
	}
	for i := range all {
		if all[i].ID == id {
			address := all[i]
			return &address, all, nil
		}
	}
	return nil, nil, ErrAddressNotFound
}
