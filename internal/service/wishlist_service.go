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

// wishlistService implements WishlistService.
type wishlistService struct {
	tx           repository.Transactor
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
	logger       zerolog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(
	tx repository.Transactor,
	wishlistRepo repository.WishlistRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) WishlistService {
	return &wishlistService{
		tx:           tx,
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
		logger:       logger.With().Str("service", "wishlist").Logger(),
	}
}

func (s *wishlistService) Get(ctx context.Context, userID uuid.UUID) (*model.Wishlist, error) {
	wishlist, err := s.wishlistRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}
	if wishlist == nil {
		return nil, ErrWishlistNotFound
	}
	return wishlist, nil
}

// Add puts the product on the wishlist, creating the wishlist if needed.
// Adding a product twice has no effect.
func (s *wishlistService) Add(ctx context.Context, userID, productID uuid.UUID) (*model.Wishlist, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	err = inTx(ctx, s.tx, s.logger, func(tx pgx.Tx) error {
		return s.wishlistRepo.AddItem(ctx, tx, userID, productID)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *wishlistService) Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	return s.wishlistRepo.Contains(ctx, userID, productID)
}

func (s *wishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) (*model.Wishlist, error) {
	removed, err := s.wishlistRepo.RemoveItem(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove wishlist item: %w", err)
	}
	if !removed {
		return nil, ErrNotInWishlist
	}
	return s.Get(ctx, userID)
}

func (s *wishlistService) Clear(ctx context.Context, userID uuid.UUID) error {
	deleted, err := s.wishlistRepo.Delete(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to clear wishlist: %w", err)
	}
	if !deleted {
		return ErrWishlistNotFound
	}
	return nil
}
