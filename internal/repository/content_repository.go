package repository

import (
	"context"
	"fmt"

	"shopfront/internal/model"
	"shopfront/internal/query"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const contactColumns = `id, label, contact_type, contact_value, is_active, display_order, created_at, updated_at`

// ContactQuerySpec whitelists the contact list parameters.
var ContactQuerySpec = query.Spec{
	Columns: map[string]query.Column{
		"id":           {Expr: "id", Kind: query.UUID},
		"label":        {Expr: "label"},
		"contactType":  {Expr: "contact_type"},
		"isActive":     {Expr: "is_active", Kind: query.Bool},
		"displayOrder": {Expr: "display_order", Kind: query.Int},
		"createdAt":    {Expr: "created_at", Kind: query.Time},
	},
	Searchable:  []string{"label", "contact_value"},
	DefaultSort: "displayOrder",
}

type contactRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewContactRepository creates a new PostgreSQL-backed contact repository.
func NewContactRepository(pool *pgxpool.Pool, logger zerolog.Logger) ContactRepository {
	return &contactRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "contact").Logger(),
	}
}

func (r *contactRepository) Create(ctx context.Context, c *model.Contact) error {
	query := `
		INSERT INTO contacts (label, contact_type, contact_value, is_active, display_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, c.Label, c.ContactType, c.ContactValue, c.IsActive, c.DisplayOrder).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("label", c.Label).Msg("failed to create contact")
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

func (r *contactRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	c, err := getOne[model.Contact](ctx, r.pool, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("contact_id", id.String()).Msg("failed to query contact")
		return nil, fmt.Errorf("failed to query contact: %w", err)
	}
	return c, nil
}

func (r *contactRepository) Update(ctx context.Context, c *model.Contact) error {
	query := `
		UPDATE contacts
		SET label = $2, contact_type = $3, contact_value = $4, is_active = $5, display_order = $6,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query, c.ID, c.Label, c.ContactType, c.ContactValue, c.IsActive, c.DisplayOrder).
		Scan(&c.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("contact_id", c.ID.String()).Msg("failed to update contact")
		return fmt.Errorf("failed to update contact: %w", err)
	}
	return nil
}

func (r *contactRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("contact_id", id.String()).Msg("failed to delete contact")
		return false, fmt.Errorf("failed to delete contact: %w", err)
	}
	return affected(tag), nil
}

func (r *contactRepository) ListActive(ctx context.Context) ([]model.Contact, error) {
	contacts, err := getMany[model.Contact](ctx, r.pool,
		`SELECT `+contactColumns+` FROM contacts WHERE is_active ORDER BY display_order, created_at`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list contacts")
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

func (r *contactRepository) List(ctx context.Context, q *query.Query) (*model.Page[model.Contact], error) {
	page, err := listPage[model.Contact](ctx, r.pool, q, `SELECT `+contactColumns+` FROM contacts`, "contacts")
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list contacts")
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return page, nil
}

const carouselColumns = `id, image, title, description, is_active, display_order, created_at, updated_at`

// CarouselQuerySpec whitelists the banner list parameters.
var CarouselQuerySpec = query.Spec{
	Columns: map[string]query.Column{
		"id":           {Expr: "id", Kind: query.UUID},
		"title":        {Expr: "title"},
		"isActive":     {Expr: "is_active", Kind: query.Bool},
		"displayOrder": {Expr: "display_order", Kind: query.Int},
		"createdAt":    {Expr: "created_at", Kind: query.Time},
	},
	Searchable:  []string{"title", "description"},
	DefaultSort: "displayOrder",
}

type carouselRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCarouselRepository creates a new PostgreSQL-backed banner repository.
func NewCarouselRepository(pool *pgxpool.Pool, logger zerolog.Logger) CarouselRepository {
	return &carouselRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "carousel").Logger(),
	}
}

func (r *carouselRepository) Create(ctx context.Context, c *model.Carousel) error {
	query := `
		INSERT INTO carousels (image, title, description, is_active, display_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, c.Image, c.Title, c.Description, c.IsActive, c.DisplayOrder).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to create carousel")
		return fmt.Errorf("failed to create carousel: %w", err)
	}
	return nil
}

func (r *carouselRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Carousel, error) {
	c, err := getOne[model.Carousel](ctx, r.pool, `SELECT `+carouselColumns+` FROM carousels WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("carousel_id", id.String()).Msg("failed to query carousel")
		return nil, fmt.Errorf("failed to query carousel: %w", err)
	}
	return c, nil
}

func (r *carouselRepository) Update(ctx context.Context, c *model.Carousel) error {
	query := `
		UPDATE carousels
		SET image = $2, title = $3, description = $4, is_active = $5, display_order = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query, c.ID, c.Image, c.Title, c.Description, c.IsActive, c.DisplayOrder).
		Scan(&c.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("carousel_id", c.ID.String()).Msg("failed to update carousel")
		return fmt.Errorf("failed to update carousel: %w", err)
	}
	return nil
}

func (r *carouselRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM carousels WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("carousel_id", id.String()).Msg("failed to delete carousel")
		return false, fmt.Errorf("failed to delete carousel: %w", err)
	}
	return affected(tag), nil
}

func (r *carouselRepository) ListActive(ctx context.Context) ([]model.Carousel, error) {
	banners, err := getMany[model.Carousel](ctx, r.pool,
		`SELECT `+carouselColumns+` FROM carousels WHERE is_active ORDER BY display_order, created_at`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list carousels")
		return nil, fmt.Errorf("failed to list carousels: %w", err)
	}
	return banners, nil
}

func (r *carouselRepository) List(ctx context.Context, q *query.Query) (*model.Page[model.Carousel], error) {
	page, err := listPage[model.Carousel](ctx, r.pool, q, `SELECT `+carouselColumns+` FROM carousels`, "carousels")
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list carousels")
		return nil, fmt.Errorf("failed to list carousels: %w", err)
	}
	return page, nil
}
