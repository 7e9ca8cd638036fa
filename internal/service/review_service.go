package service

import (
	"context"
	"fmt"
	"net/url"

	"shopfront/internal/model"
	"shopfront/internal/query"
	"shopfront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// reviewService implements ReviewService. Every change to a published review
// recomputes the product rating in the same transaction.
type reviewService struct {
	tx          repository.Transactor
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	tx repository.Transactor,
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) ReviewService {
	return &reviewService{
		tx:          tx,
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "review").Logger(),
	}
}

// Create stores an unpublished review of the product.
func (s *reviewService) Create(ctx context.Context, userID uuid.UUID, req *model.CreateReviewRequest) (*model.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	review := &model.Review{
		UserID:     userID,
		ProductID:  req.ProductID,
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
	}
	err = inTx(ctx, s.tx, s.logger, func(tx pgx.Tx) error {
		return s.reviewRepo.Create(ctx, tx, review)
	})
	if err != nil {
		return nil, conflictOn(err, ErrReviewExists)
	}

	s.logger.Info().
		Str("review_id", review.ID.String()).
		Str("product_id", review.ProductID.String()).
		Msg("review created")
	return review, nil
}

func (s *reviewService) Update(ctx context.Context, userID, id uuid.UUID, req *model.UpdateReviewRequest) (*model.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var review *model.Review
	err := inTx(ctx, s.tx, s.logger, func(tx pgx.Tx) error {
		var err error
		review, err = s.lock(ctx, tx, id)
		if err != nil {
			return err
		}
		if review.UserID != userID {
			return ErrReviewNotOwned
		}

		req.ApplyTo(review)
		if err := s.reviewRepo.Update(ctx, tx, review); err != nil {
			return err
		}
		if review.IsPublished {
			return s.reviewRepo.RecomputeProductRating(ctx, tx, review.ProductID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) ListByProduct(ctx context.Context, productID uuid.UUID, params url.Values) (*model.Page[model.Review], error) {
	return list(ctx, repository.ReviewQuerySpec, params, s.reviewRepo.List,
		query.Eq("r.product_id", productID), query.Raw("r.is_published"))
}

func (s *reviewService) ListMine(ctx context.Context, userID uuid.UUID, params url.Values) (*model.Page[model.Review], error) {
	return list(ctx, repository.ReviewQuerySpec, params, s.reviewRepo.List, query.Eq("r.user_id", userID))
}

// SetPublished publishes or unpublishes a review and recomputes the rating.
func (s *reviewService) SetPublished(ctx context.Context, id uuid.UUID, published bool) (*model.Review, error) {
	var review *model.Review
	err := inTx(ctx, s.tx, s.logger, func(tx pgx.Tx) error {
		var err error
		review, err = s.lock(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.reviewRepo.SetPublished(ctx, tx, id, published); err != nil {
			return err
		}
		review.IsPublished = published
		return s.reviewRepo.RecomputeProductRating(ctx, tx, review.ProductID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("review_id", id.String()).Bool("published", published).Msg("review visibility changed")
	return review, nil
}

func (s *reviewService) MarkHelpful(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	review, err := s.reviewRepo.IncrementHelpful(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to mark review helpful: %w", err)
	}
	if review == nil {
		return nil, ErrReviewNotFound
	}
	return review, nil
}

// Delete removes a review. Owners may delete their own reviews, admins any.
func (s *reviewService) Delete(ctx context.Context, actor *model.User, id uuid.UUID) error {
	return inTx(ctx, s.tx, s.logger, func(tx pgx.Tx) error {
		review, err := s.lock(ctx, tx, id)
		if err != nil {
			return err
		}
		if !actor.Role.IsAdmin() && review.UserID != actor.ID {
			return ErrReviewDeleteNotOwned
		}
		if err := s.reviewRepo.Delete(ctx, tx, id); err != nil {
			return err
		}
		if review.IsPublished {
			return s.reviewRepo.RecomputeProductRating(ctx, tx, review.ProductID)
		}
		return nil
	})
}

func (s *reviewService) lock(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Review, error) {
	review, err := s.reviewRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	if review == nil {
		return nil, ErrReviewNotFound
	}
	return review, nil
}
