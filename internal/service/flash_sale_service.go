package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"shopfront/internal/model"
	"shopfront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// flashSaleService implements FlashSaleService.
type flashSaleService struct {
	tx            repository.Transactor
	flashSaleRepo repository.FlashSaleRepository
	productRepo   repository.ProductRepository
	now           func() time.Time
	logger        zerolog.Logger
}

// NewFlashSaleService creates a new flash sale service.
func NewFlashSaleService(
	tx repository.Transactor,
	flashSaleRepo repository.FlashSaleRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) FlashSaleService {
	return &flashSaleService{
		tx:            tx,
		flashSaleRepo: flashSaleRepo,
		productRepo:   productRepo,
		now:           time.Now,
		logger:        logger.With().Str("service", "flash-sale").Logger(),
	}
}

func (s *flashSaleService) Create(ctx context.Context, in *model.FlashSaleInput) (*model.FlashSale, error) {
	if err := in.Validate(true); err != nil {
		return nil, err
	}

	sale := &model.FlashSale{IsActive: true, ProductIDs: []uuid.UUID{}}
	in.ApplyTo(sale)
	if err := s.check(ctx, sale); err != nil {
		return nil, err
	}

	err := inTx(ctx, s.tx, s.logger, func(tx pgx.Tx) error {
		return s.flashSaleRepo.Create(ctx, tx, sale)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("flash_sale_id", sale.ID.String()).
		Int("products", len(sale.ProductIDs)).
		Msg("flash sale created")
	return sale, nil
}

func (s *flashSaleService) GetByID(ctx context.Context, id uuid.UUID) (*model.FlashSale, error) {
	sale, err := s.flashSaleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get flash sale: %w", err)
	}
	if sale == nil {
		return nil, ErrFlashSaleNotFound
	}
	return sale, nil
}

func (s *flashSaleService) Update(ctx context.Context, id uuid.UUID, in *model.FlashSaleInput) (*model.FlashSale, error) {
	if err := in.Validate(false); err != nil {
		return nil, err
	}

	sale, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.ApplyTo(sale)
	if err := s.check(ctx, sale); err != nil {
		return nil, err
	}

	err = inTx(ctx, s.tx, s.logger, func(tx pgx.Tx) error {
		return s.flashSaleRepo.Update(ctx, tx, sale)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// check validates the complete sale and that its products exist.
func (s *flashSaleService) check(ctx context.Context, sale *model.FlashSale) error {
	if err := model.ValidateFlashSale(sale); err != nil {
		return err
	}
	if len(sale.ProductIDs) == 0 {
		return nil
	}
	return s.productRepo.ValidateProductsExist(ctx, sale.ProductIDs)
}

func (s *flashSaleService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.flashSaleRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete flash sale: %w", err)
	}
	if !deleted {
		return ErrFlashSaleNotFound
	}
	return nil
}

// ListRunning returns the sales active right now, optionally only featured ones.
func (s *flashSaleService) ListRunning(ctx context.Context, featuredOnly bool) ([]model.FlashSale, error) {
	return s.flashSaleRepo.ListRunning(ctx, s.now(), featuredOnly)
}

func (s *flashSaleService) List(ctx context.Context, params url.Values) (*model.Page[model.FlashSale], error) {
	return list(ctx, repository.FlashSaleQuerySpec, params, s.flashSaleRepo.List)
}
