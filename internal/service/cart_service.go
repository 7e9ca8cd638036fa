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

// cartService implements CartService. Every mutation locks the cart row and
// recomputes the totals from the lines.
type cartService struct {
	tx          repository.Transactor
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	tx repository.Transactor,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		tx:          tx,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

func (s *cartService) Get(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}
	return cart, nil
}

// AddItem merges the quantity into the product's line, creating the cart and
// the line as needed.
func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) (*model.Cart, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	product, err := s.product(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsAvailable {
		return nil, ErrProductUnavailable
	}

	var cart *model.Cart
	err = inTx(ctx, s.tx, s.logger, func(tx pgx.Tx) error {
		var err error
		cart, err = s.cartRepo.GetByUserIDForUpdate(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("failed to add to cart: %w", err)
		}
		if cart == nil {
			cart = &model.Cart{UserID: userID}
			if err := s.cartRepo.Create(ctx, tx, cart); err != nil {
				return fmt.Errorf("failed to add to cart: %w", err)
			}
		}

		// Compare against the remaining stock so a huge request cannot wrap
		// the merged quantity.
		var inCart int
		if line, ok := cart.Item(product.ID); ok {
			inCart = line.Quantity
		}
		if req.Quantity > product.Quantity-inCart {
			s.logger.Warn().
				Str("product_id", product.ID.String()).
				Int("requested", req.Quantity).
				Int("available", product.Quantity-inCart).
				Msg("insufficient quantity for cart")
			return ErrInsufficientQuantity
		}
		quantity := inCart + req.Quantity

		line, ok := cart.Item(product.ID)
		if !ok {
			cart.Items = append(cart.Items, model.CartItem{ProductID: product.ID})
			line = &cart.Items[len(cart.Items)-1]
		}
		line.Name = product.Name
		line.Image = product.Image
		line.Quantity = quantity
		line.Price = product.EffectivePrice()

		return s.save(ctx, tx, cart, line)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("product_id", product.ID.String()).
		Int("quantity", req.Quantity).
		Msg("item added to cart")
	return cart, nil
}

// UpdateItem sets the quantity of an existing line.
func (s *cartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*model.Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}

	var cart *model.Cart
	err = inTx(ctx, s.tx, s.logger, func(tx pgx.Tx) error {
		var err error
		cart, err = s.lock(ctx, tx, userID)
		if err != nil {
			return err
		}
		line, ok := cart.Item(productID)
		if !ok {
			return ErrItemNotInCart
		}
		if quantity > product.Quantity {
			return ErrInsufficientQuantity
		}
		line.Quantity = quantity
		return s.save(ctx, tx, cart, line)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*model.Cart, error) {
	var cart *model.Cart
	err := inTx(ctx, s.tx, s.logger, func(tx pgx.Tx) error {
		var err error
		cart, err = s.lock(ctx, tx, userID)
		if err != nil {
			return err
		}
		if _, ok := cart.Item(productID); !ok {
			return ErrItemNotInCart
		}
		if err := s.cartRepo.RemoveItems(ctx, tx, cart.ID, []uuid.UUID{productID}); err != nil {
			return fmt.Errorf("failed to remove cart item: %w", err)
		}

		kept := cart.Items[:0]
		for _, item := range cart.Items {
			if item.ProductID != productID {
				kept = append(kept, item)
			}
		}
		cart.Items = kept
		cart.Recalculate()
		return s.cartRepo.UpdateTotals(ctx, tx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return inTx(ctx, s.tx, s.logger, func(tx pgx.Tx) error {
		cart, err := s.lock(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := s.cartRepo.Delete(ctx, tx, cart.ID); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		s.logger.Info().Str("user_id", userID.String()).Msg("cart cleared")
		return nil
	})
}

func (s *cartService) lock(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.GetByUserIDForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}
	return cart, nil
}

func (s *cartService) product(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// save recomputes the cart and writes line and the new totals.
func (s *cartService) save(ctx context.Context, tx pgx.Tx, cart *model.Cart, line *model.CartItem) error {
	productID := line.ProductID
	cart.Recalculate()
	line, _ = cart.Item(productID)

	if err := s.cartRepo.UpsertItem(ctx, tx, cart.ID, line); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	if err := s.cartRepo.UpdateTotals(ctx, tx, cart); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}
