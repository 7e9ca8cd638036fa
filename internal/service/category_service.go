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

// categoryService implements CategoryService.
type categoryService struct {
	categoryRepo repository.CategoryRepository
	logger       zerolog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(categoryRepo repository.CategoryRepository, logger zerolog.Logger) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		logger:       logger.With().Str("service", "category").Logger(),
	}
}

func (s *categoryService) Create(ctx context.Context, in *model.CategoryInput) (*model.Category, error) {
	if err := in.Validate(true); err != nil {
		return nil, err
	}

	category := &model.Category{}
	in.ApplyTo(category)
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info().Str("category_id", category.ID.String()).Str("title", category.Title).Msg("category created")
	return category, nil
}

func (s *categoryService) GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, in *model.CategoryInput) (*model.Category, error) {
	if err := in.Validate(false); err != nil {
		return nil, err
	}

	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.ApplyTo(category)
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.categoryRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if !deleted {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *categoryService) List(ctx context.Context, params url.Values) (*model.Page[model.Category], error) {
	return list(ctx, repository.CategoryQuerySpec, params, s.categoryRepo.List)
}
