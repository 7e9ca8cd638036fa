package service

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"slices"

	"shopfront/internal/export"
	"shopfront/internal/model"
	"shopfront/internal/query"
	"shopfront/internal/repository"
	"shopfront/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// uploadConcurrency bounds parallel object storage writes per request.
const uploadConcurrency = 4

// productService implements ProductService.
type productService struct {
	tx            repository.Transactor
	productRepo   repository.ProductRepository
	categoryRepo  repository.CategoryRepository
	cartRepo      repository.CartRepository
	orderRepo     repository.OrderRepository
	wishlistRepo  repository.WishlistRepository
	reviewRepo    repository.ReviewRepository
	flashSaleRepo repository.FlashSaleRepository
	store         storage.Store
	logger        zerolog.Logger
}

// ProductDeps groups the repositories the product service touches when a
// product is deleted.
type ProductDeps struct {
	Products   repository.ProductRepository
	Categories repository.CategoryRepository
	Carts      repository.CartRepository
	Orders     repository.OrderRepository
	Wishlists  repository.WishlistRepository
	Reviews    repository.ReviewRepository
	FlashSales repository.FlashSaleRepository
}

// NewProductService creates a new product service.
func NewProductService(tx repository.Transactor, deps ProductDeps, store storage.Store, logger zerolog.Logger) ProductService {
	return &productService{
		tx:            tx,
		productRepo:   deps.Products,
		categoryRepo:  deps.Categories,
		cartRepo:      deps.Carts,
		orderRepo:     deps.Orders,
		wishlistRepo:  deps.Wishlists,
		reviewRepo:    deps.Reviews,
		flashSaleRepo: deps.FlashSales,
		store:         store,
		logger:        logger.With().Str("service", "product").Logger(),
	}
}

func (s *productService) Create(ctx context.Context, in *model.ProductInput) (*model.Product, error) {
	if err := in.Validate(true); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	product := model.NewProduct(in)
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info().Str("product_id", product.ID.String()).Str("name", product.Name).Msg("product created")
	return product, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id.String()).Msg("product not found")
		return nil, ErrProductNotFound
	}

	return product, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, in *model.ProductInput) (*model.Product, error) {
	if err := in.Validate(false); err != nil {
		return nil, err
	}

	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	in.ApplyTo(product)
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) checkCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	category, err := s.categoryRepo.GetByID(ctx, *id)
	if err != nil {
		return fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	return nil
}

// Delete removes the product inside one transaction together with its cart
// lines, open order lines, wishlist entries, reviews and flash sale links.
// Its images are removed from storage once the transaction has committed.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	var deleted *model.Product
	err := inTx(ctx, s.tx, s.logger, func(tx pgx.Tx) error {
		if err := s.cartRepo.RemoveProduct(ctx, tx, id); err != nil {
			return err
		}
		if err := s.detachFromOpenOrders(ctx, tx, id); err != nil {
			return err
		}
		if err := s.wishlistRepo.RemoveProduct(ctx, tx, id); err != nil {
			return err
		}
		if err := s.reviewRepo.DeleteByProduct(ctx, tx, id); err != nil {
			return err
		}
		if err := s.flashSaleRepo.RemoveProduct(ctx, tx, id); err != nil {
			return err
		}

		var err error
		deleted, err = s.productRepo.Delete(ctx, tx, id)
		if err != nil {
			return err
		}
		if deleted == nil {
			return ErrProductNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product deleted")
	s.removeImages(ctx, deleted)
	return nil
}

// detachFromOpenOrders drops the product's lines from pending and processing
// orders, repricing them and deleting orders left without items.
func (s *productService) detachFromOpenOrders(ctx context.Context, tx pgx.Tx, productID uuid.UUID) error {
	orders, err := s.orderRepo.ListOpenWithProduct(ctx, tx, productID)
	if err != nil {
		return err
	}

	for i := range orders {
		order := &orders[i]
		if err := s.orderRepo.RemoveProductItems(ctx, tx, order.ID, productID); err != nil {
			return err
		}
		order.Items = slices.DeleteFunc(order.Items, func(item model.OrderItem) bool {
			return item.ProductID != nil && *item.ProductID == productID
		})

		if len(order.Items) == 0 {
			if err := s.orderRepo.Delete(ctx, tx, order.ID); err != nil {
				return err
			}
			s.logger.Info().Str("order_id", order.OrderID).Msg("order emptied by product deletion removed")
			continue
		}

		order.Reprice()
		if err := s.orderRepo.UpdateTotals(ctx, tx, order); err != nil {
			return err
		}
	}
	return nil
}

// removeImages deletes the product's images from storage. Failures are
// logged and otherwise ignored.
func (s *productService) removeImages(ctx context.Context, p *model.Product) {
	urls := slices.Clone(p.Images)
	if p.Image != nil && !slices.Contains(urls, *p.Image) {
		urls = append(urls, *p.Image)
	}

	var g errgroup.Group
	g.SetLimit(uploadConcurrency)
	for _, u := range urls {
		g.Go(func() error {
			if err := s.store.Delete(ctx, u); err != nil {
				s.logger.Warn().Err(err).Str("url", u).Msg("failed to delete product image")
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *productService) List(ctx context.Context, params url.Values) (*model.Page[model.Product], error) {
	return list(ctx, repository.ProductQuerySpec, params, s.productRepo.List)
}

func (s *productService) ListByTag(ctx context.Context, tag string, params url.Values) (*model.Page[model.Product], error) {
	return list(ctx, repository.ProductQuerySpec, params, s.productRepo.List,
		query.Condition{Expr: "? = ANY(tags)", Value: tag})
}

func (s *productService) ListByCategory(ctx context.Context, categoryID uuid.UUID, params url.Values) (*model.Page[model.Product], error) {
	return list(ctx, repository.ProductQuerySpec, params, s.productRepo.List, query.Eq("category_id", categoryID))
}

// UploadImages stores the files concurrently and appends their URLs to the product.
func (s *productService) UploadImages(ctx context.Context, id uuid.UUID, files []ImageUpload) (*model.Product, error) {
	if len(files) == 0 {
		return nil, ErrNoImages
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	urls := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for i, f := range files {
		g.Go(func() error {
			u, err := s.store.Put(gctx, f.Name, f.ContentType, f.Body)
			if err != nil {
				return err
			}
			urls[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to upload product images")
		s.discard(ctx, urls)
		return nil, err
	}

	product, err := s.productRepo.AppendImages(ctx, id, urls)
	if err != nil {
		s.discard(ctx, urls)
		return nil, err
	}
	if product == nil {
		s.discard(ctx, urls)
		return nil, ErrProductNotFound
	}

	s.logger.Info().Str("product_id", id.String()).Int("count", len(urls)).Msg("product images uploaded")
	return product, nil
}

// discard removes objects uploaded for a request that did not complete.
func (s *productService) discard(ctx context.Context, urls []string) {
	for _, u := range urls {
		if u == "" {
			continue
		}
		if err := s.store.Delete(ctx, u); err != nil {
			s.logger.Warn().Err(err).Str("url", u).Msg("failed to discard uploaded image")
		}
	}
}

// Export writes the whole catalogue as a spreadsheet.
func (s *productService) Export(ctx context.Context, w io.Writer) error {
	products, err := s.productRepo.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to export products: %w", err)
	}
	if err := export.WriteProducts(w, products); err != nil {
		s.logger.Error().Err(err).Msg("failed to write product spreadsheet")
		return fmt.Errorf("failed to export products: %w", err)
	}
	s.logger.Info().Int("count", len(products)).Msg("products exported")
	return nil
}
