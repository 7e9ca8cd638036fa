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

// contactService implements ContactService.
type contactService struct {
	contactRepo repository.ContactRepository
	logger      zerolog.Logger
}

// NewContactService creates a new contact service.
func NewContactService(contactRepo repository.ContactRepository, logger zerolog.Logger) ContactService {
	return &contactService{
		contactRepo: contactRepo,
		logger:      logger.With().Str("service", "contact").Logger(),
	}
}

func (s *contactService) Create(ctx context.Context, in *model.ContactInput) (*model.Contact, error) {
	if err := in.Validate(true); err != nil {
		return nil, err
	}
	contact := &model.Contact{IsActive: true}
	in.ApplyTo(contact)
	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *contactService) GetByID(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	contact, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	if contact == nil {
		return nil, ErrContactNotFound
	}
	return contact, nil
}

func (s *contactService) Update(ctx context.Context, id uuid.UUID, in *model.ContactInput) (*model.Contact, error) {
	if err := in.Validate(false); err != nil {
		return nil, err
	}
	contact, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.ApplyTo(contact)
	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *contactService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.contactRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if !deleted {
		return ErrContactNotFound
	}
	return nil
}

func (s *contactService) ListActive(ctx context.Context) ([]model.Contact, error) {
	return s.contactRepo.ListActive(ctx)
}

func (s *contactService) List(ctx context.Context, params url.Values) (*model.Page[model.Contact], error) {
	return list(ctx, repository.ContactQuerySpec, params, s.contactRepo.List)
}

// carouselService implements CarouselService.
type carouselService struct {
	carouselRepo repository.CarouselRepository
	logger       zerolog.Logger
}

// NewCarouselService creates a new banner service.
func NewCarouselService(carouselRepo repository.CarouselRepository, logger zerolog.Logger) CarouselService {
	return &carouselService{
		carouselRepo: carouselRepo,
		logger:       logger.With().Str("service", "carousel").Logger(),
	}
}

func (s *carouselService) Create(ctx context.Context, in *model.CarouselInput) (*model.Carousel, error) {
	if err := in.Validate(true); err != nil {
		return nil, err
	}
	carousel := &model.Carousel{IsActive: true}
	in.ApplyTo(carousel)
	if err := s.carouselRepo.Create(ctx, carousel); err != nil {
		return nil, err
	}
	return carousel, nil
}

func (s *carouselService) GetByID(ctx context.Context, id uuid.UUID) (*model.Carousel, error) {
	carousel, err := s.carouselRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get carousel: %w", err)
	}
	if carousel == nil {
		return nil, ErrCarouselNotFound
	}
	return carousel, nil
}

func (s *carouselService) Update(ctx context.Context, id uuid.UUID, in *model.CarouselInput) (*model.Carousel, error) {
	if err := in.Validate(false); err != nil {
		return nil, err
	}
	carousel, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.ApplyTo(carousel)
	if err := s.carouselRepo.Update(ctx, carousel); err != nil {
		return nil, err
	}
	return carousel, nil
}

func (s *carouselService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.carouselRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete carousel: %w", err)
	}
	if !deleted {
		return ErrCarouselNotFound
	}
	return nil
}

func (s *carouselService) ListActive(ctx context.Context) ([]model.Carousel, error) {
	return s.carouselRepo.ListActive(ctx)
}

func (s *carouselService) List(ctx context.Context, params url.Values) (*model.Page[model.Carousel], error) {
	return list(ctx, repository.CarouselQuerySpec, params, s.carouselRepo.List)
}
