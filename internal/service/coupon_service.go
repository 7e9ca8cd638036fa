package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"shopfront/internal/model"
	"shopfront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CouponImporter bulk loads coupons from files; *couponimport.Importer implements it.
type CouponImporter interface {
	Run(ctx context.Context, files []string) (*model.CouponImportResult, error)
}

// couponService implements CouponService.
type couponService struct {
	couponRepo  repository.CouponRepository
	importer    CouponImporter
	importFiles []string
	now         func() time.Time
	logger      zerolog.Logger
}

// NewCouponService creates a new coupon service. importFiles are the files
// read by Import.
func NewCouponService(
	couponRepo repository.CouponRepository,
	importer CouponImporter,
	importFiles []string,
	logger zerolog.Logger,
) CouponService {
	return &couponService{
		couponRepo:  couponRepo,
		importer:    importer,
		importFiles: importFiles,
		now:         time.Now,
		logger:      logger.With().Str("service", "coupon").Logger(),
	}
}

func (s *couponService) Create(ctx context.Context, in *model.CouponInput) (*model.Coupon, error) {
	if err := in.Validate(true); err != nil {
		return nil, err
	}

	coupon := &model.Coupon{IsActive: true}
	in.ApplyTo(coupon)
	if err := model.ValidateCoupon(coupon); err != nil {
		return nil, err
	}

	if err := s.couponRepo.Create(ctx, coupon); err != nil {
		return nil, conflictOn(err, ErrCouponCodeTaken)
	}

	s.logger.Info().Str("code", coupon.Code).Msg("coupon created")
	return coupon, nil
}

func (s *couponService) List(ctx context.Context, params url.Values) (*model.Page[model.Coupon], error) {
	return list(ctx, repository.CouponQuerySpec, params, s.couponRepo.List)
}

func (s *couponService) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	coupon, err := s.couponRepo.GetByCode(ctx, model.NormaliseCouponCode(code))
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	return coupon, nil
}

// Validate quotes the discount for an order total. It never consumes a use;
// uses are only taken when an order is placed.
func (s *couponService) Validate(ctx context.Context, req *model.ValidateCouponRequest) (*model.CouponQuote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	coupon, err := s.GetByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	if v := coupon.Check(s.now(), req.OrderTotal); v != model.CouponOK {
		s.logger.Debug().Str("code", coupon.Code).Int("violation", int(v)).Msg("coupon rejected")
		return nil, couponError(v, coupon, couponWording)
	}

	discount := coupon.Discount(req.OrderTotal)
	return &model.CouponQuote{
		Coupon:         coupon,
		DiscountAmount: discount,
		FinalAmount:    req.OrderTotal.Sub(discount).Round(2),
	}, nil
}

func (s *couponService) Update(ctx context.Context, id uuid.UUID, in *model.CouponInput) (*model.Coupon, error) {
	if err := in.Validate(false); err != nil {
		return nil, err
	}

	coupon, err := s.couponRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}

	in.ApplyTo(coupon)
	if err := model.ValidateCoupon(coupon); err != nil {
		return nil, err
	}
	if err := s.couponRepo.Update(ctx, coupon); err != nil {
		return nil, conflictOn(err, ErrCouponCodeTaken)
	}
	return coupon, nil
}

func (s *couponService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.couponRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	if !deleted {
		return ErrCouponNotFound
	}
	s.logger.Info().Str("coupon_id", id.String()).Msg("coupon deleted")
	return nil
}

// Import runs the coupon importer over the configured files.
func (s *couponService) Import(ctx context.Context) (*model.CouponImportResult, error) {
	result, err := s.importer.Run(ctx, s.importFiles)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Int("parsed", result.Parsed).
		Int64("inserted", result.Inserted).
		Int64("skipped", result.Skipped).
		Int("invalid", result.Invalid).
		Msg("coupons imported")
	return result, nil
}
