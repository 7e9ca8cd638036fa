package service

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"shopfront/internal/model"
	"shopfront/internal/notify"
	"shopfront/internal/query"
	"shopfront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CancellationWindow is how long after creation a customer may cancel an order.
const CancellationWindow = 6 * time.Hour

// orderService implements OrderService.
type orderService struct {
	tx          repository.Transactor
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	addressRepo repository.AddressRepository
	productRepo repository.ProductRepository
	couponRepo  repository.CouponRepository
	events      notify.Publisher
	now         func() time.Time
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	tx repository.Transactor,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	addressRepo repository.AddressRepository,
	productRepo repository.ProductRepository,
	couponRepo repository.CouponRepository,
	events notify.Publisher,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		tx:          tx,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		addressRepo: addressRepo,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		events:      events,
		now:         time.Now,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder checks out the selected cart lines. The cart, stock, coupon and
// order writes share one transaction.
func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *model.CreateOrderRequest) (order *model.Order, err error) {
	if err := req.Validate(); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("invalid order request")
		return nil, err
	}

	tx, err := s.tx.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	cart, err := s.cartRepo.GetByUserIDForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if cart == nil || len(cart.Items) == 0 {
		s.logger.Warn().Str("user_id", userID.String()).Msg("checkout with empty cart")
		return nil, ErrCartEmpty
	}

	address, err := s.addressRepo.GetByIDTx(ctx, tx, req.ShippingAddressID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	if address == nil {
		s.logger.Warn().
			Str("user_id", userID.String()).
			Str("address_id", req.ShippingAddressID.String()).
			Msg("shipping address not found")
		return nil, ErrInvalidShipping
	}

	selected, remaining := splitCart(cart.Items, req.SelectedItems)
	if len(selected) == 0 {
		s.logger.Warn().Str("user_id", userID.String()).Msg("no cart items selected")
		return nil, ErrNoItemsSelected
	}

	subtotal := decimal.Zero
	for _, item := range selected {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	subtotal = subtotal.Round(2)

	var coupon *model.Coupon
	discount := decimal.Zero
	if code := model.NormaliseCouponCode(req.DiscountCode); code != "" {
		coupon, err = s.couponRepo.GetByCodeForUpdate(ctx, tx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		if coupon == nil {
			s.logger.Warn().Str("coupon_code", code).Msg("unknown discount code")
			return nil, ErrInvalidDiscountCode
		}
		if v := coupon.Check(s.now(), subtotal); v != model.CouponOK {
			s.logger.Warn().Str("coupon_code", code).Int("violation", int(v)).Msg("discount code rejected")
			return nil, couponError(v, coupon, checkoutWording)
		}
		discount = coupon.Discount(subtotal)
	}

	// Take stock in a fixed order so concurrent checkouts lock rows consistently.
	byProduct := slices.Clone(selected)
	slices.SortFunc(byProduct, func(a, b model.CartItem) int {
		return strings.Compare(a.ProductID.String(), b.ProductID.String())
	})
	for _, item := range byProduct {
		ok, err := s.productRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		if !ok {
			s.logger.Warn().
				Str("product_id", item.ProductID.String()).
				Int("quantity", item.Quantity).
				Msg("insufficient stock")
			return nil, model.BadRequest(model.ErrCodeInsufficientStock,
				fmt.Sprintf("Insufficient stock for %s", item.Name))
		}
	}

	order = newOrder(userID, req, address, subtotal, discount)

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	order.Items = make([]model.OrderItem, len(selected))
	for i, item := range selected {
		productID := item.ProductID
		order.Items[i] = model.OrderItem{
			OrderID:   order.ID,
			ProductID: &productID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Total:     item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2),
		}
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, order.Items); err != nil {
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if coupon != nil {
		redeemed, err := s.couponRepo.Redeem(ctx, tx, coupon.ID, order.ID, userID, discount)
		if err != nil {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		if !redeemed {
			s.logger.Warn().Str("coupon_code", coupon.Code).Msg("discount code exhausted during checkout")
			return nil, ErrDiscountLimitReached
		}
	}

	if err = s.clearOrdered(ctx, tx, cart, selected, remaining); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Commit transaction
	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.OrderID).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.OrderID).
		Str("user_id", userID.String()).
		Int("item_count", len(order.Items)).
		Str("total", order.Total.StringFixed(2)).
		Msg("order created successfully")

	s.publish(model.OrderEventCreated, order)
	return order, nil
}

// splitCart separates the cart lines whose product is in ids from the rest.
func splitCart(items []model.CartItem, ids []uuid.UUID) (selected, remaining []model.CartItem) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for _, item := range items {
		if want[item.ProductID] {
			selected = append(selected, item)
		} else {
			remaining = append(remaining, item)
		}
	}
	return selected, remaining
}

func newOrder(userID uuid.UUID, req *model.CreateOrderRequest, address *model.Address, subtotal, discount decimal.Decimal) *model.Order {
	pricing := model.PriceOrder(subtotal, discount)

	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		method = model.DefaultPaymentMethod
	}
	paymentStatus := model.PaymentPending
	if !model.IsCashOnDelivery(method) {
		paymentStatus = model.PaymentCompleted
	}

	order := &model.Order{
		OrderID:         "ORD-" + strings.ToUpper(uuid.NewString()),
		UserID:          userID,
		ShippingAddress: address.Snapshot(),
		BillingAddress:  address.Snapshot(),
		OrderStatus:     model.OrderPending,
		PaymentStatus:   paymentStatus,
		PaymentMethod:   method,
		Subtotal:        pricing.Subtotal,
		Tax:             pricing.Tax,
		ShippingCost:    pricing.ShippingCost,
		DiscountAmount:  pricing.DiscountAmount,
		Total:           pricing.Total,
	}
	if id := strings.TrimSpace(req.TransactionID); id != "" {
		order.TransactionID = &id
	}
	if code := model.NormaliseCouponCode(req.DiscountCode); code != "" {
		order.DiscountCode = &code
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		order.Notes = &notes
	}
	return order
}

// clearOrdered removes the ordered lines from the cart and deletes the cart
// when nothing else is left in it.
func (s *orderService) clearOrdered(ctx context.Context, tx pgx.Tx, cart *model.Cart, ordered, remaining []model.CartItem) error {
	if len(remaining) == 0 {
		return s.cartRepo.Delete(ctx, tx, cart.ID)
	}

	ids := make([]uuid.UUID, len(ordered))
	for i, item := range ordered {
		ids[i] = item.ProductID
	}
	if err := s.cartRepo.RemoveItems(ctx, tx, cart.ID, ids); err != nil {
		return err
	}
	cart.Items = remaining
	cart.Recalculate()
	return s.cartRepo.UpdateTotals(ctx, tx, cart)
}

func (s *orderService) ListMine(ctx context.Context, userID uuid.UUID, params url.Values) (*model.Page[model.Order], error) {
	return list(ctx, repository.OrderQuerySpec, params, s.orderRepo.List, query.Eq("user_id", userID))
}

func (s *orderService) ListAll(ctx context.Context, params url.Values) (*model.Page[model.Order], error) {
	return list(ctx, repository.OrderQuerySpec, params, s.orderRepo.List)
}

// Get returns the order for ref. Orders of other users look missing to non-admins.
func (s *orderService) Get(ctx context.Context, actor *model.User, ref string) (*model.Order, error) {
	order, err := s.orderRepo.GetByRef(ctx, ref)
	if err != nil {
		s.logger.Error().Err(err).Str("order_ref", ref).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || (!actor.Role.IsAdmin() && order.UserID != actor.ID) {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// UpdateStatus moves an order along the status state machine.
func (s *orderService) UpdateStatus(ctx context.Context, ref string, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidOrderStatus
	}

	var order *model.Order
	err := inTx(ctx, s.tx, s.logger, func(tx pgx.Tx) error {
		var err error
		order, err = s.orderRepo.GetByRefForUpdate(ctx, tx, ref)
		if err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if !order.OrderStatus.CanTransition(status) {
			s.logger.Warn().
				Str("order_id", order.OrderID).
				Str("from", string(order.OrderStatus)).
				Str("to", string(status)).
				Msg("illegal order status transition")
			return transitionError(order.OrderStatus, status)
		}
		if err := s.orderRepo.UpdateStatus(ctx, tx, order.ID, status); err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		if status == model.OrderCancelled {
			if err := s.restock(ctx, tx, order); err != nil {
				return err
			}
		}
		order.OrderStatus = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("order_id", order.OrderID).Str("status", string(status)).Msg("order status updated")

	eventType := model.OrderEventStatusChanged
	if status == model.OrderCancelled {
		eventType = model.OrderEventCancelled
	}
	s.publish(eventType, order)
	return order, nil
}

// Cancel cancels the user's own order within CancellationWindow of its
// creation and returns its items to stock. Coupon usage is kept.
func (s *orderService) Cancel(ctx context.Context, userID uuid.UUID, ref string) (*model.Order, error) {
	var order *model.Order
	err := inTx(ctx, s.tx, s.logger, func(tx pgx.Tx) error {
		var err error
		order, err = s.orderRepo.GetByRefForUpdate(ctx, tx, ref)
		if err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}
		if order == nil || order.UserID != userID {
			return ErrOrderNotFound
		}

		switch {
		case order.OrderStatus == model.OrderCancelled:
			return ErrOrderAlreadyCancelled
		case order.OrderStatus == model.OrderDelivered:
			return ErrOrderDelivered
		case s.now().Sub(order.CreatedAt) > CancellationWindow:
			s.logger.Warn().
				Str("order_id", order.OrderID).
				Time("created_at", order.CreatedAt).
				Msg("cancellation window elapsed")
			return ErrCancellationWindow
		case !order.OrderStatus.CanTransition(model.OrderCancelled):
			return transitionError(order.OrderStatus, model.OrderCancelled)
		}

		if err := s.orderRepo.UpdateStatus(ctx, tx, order.ID, model.OrderCancelled); err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}
		if err := s.restock(ctx, tx, order); err != nil {
			return err
		}
		order.OrderStatus = model.OrderCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("order_id", order.OrderID).Str("user_id", userID.String()).Msg("order cancelled")
	s.publish(model.OrderEventCancelled, order)
	return order, nil
}

// restock returns the quantities of the order's items to their products.
// Items whose product was deleted are skipped.
func (s *orderService) restock(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	for _, item := range order.Items {
		if item.ProductID == nil {
			continue
		}
		if err := s.productRepo.IncrementStock(ctx, tx, *item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("failed to restore stock: %w", err)
		}
	}
	return nil
}

func (s *orderService) publish(eventType model.OrderEventType, order *model.Order) {
	if s.events == nil {
		return
	}
	s.events.Publish(model.OrderEvent{
		Type:       eventType,
		OrderID:    order.OrderID,
		UserID:     order.UserID,
		Status:     order.OrderStatus,
		Total:      order.Total,
		OccurredAt: s.now().UTC(),
	})
}
