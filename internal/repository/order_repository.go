package repository

import (
	"context"
	"fmt"

	"shopfront/internal/model"
	"shopfront/internal/query"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `id, order_id, user_id, shipping_address, billing_address, order_status,
	payment_status, payment_method, transaction_id, subtotal, tax, shipping_cost, discount_code,
	discount_amount, total, notes, created_at, updated_at`

// OrderQuerySpec whitelists the order list parameters.
var OrderQuerySpec = query.Spec{
	Columns: map[string]query.Column{
		"id":            {Expr: "id", Kind: query.UUID},
		"orderId":       {Expr: "order_id"},
		"userId":        {Expr: "user_id", Kind: query.UUID},
		"orderStatus":   {Expr: "order_status"},
		"paymentStatus": {Expr: "payment_status"},
		"paymentMethod": {Expr: "payment_method"},
		"total":         {Expr: "total", Kind: query.Number},
		"createdAt":     {Expr: "created_at", Kind: query.Time},
	},
	Searchable:  []string{"order_id", "payment_method", "order_status"},
	DefaultSort: "-createdAt",
}

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (order_id, user_id, shipping_address, billing_address, order_status,
			payment_status, payment_method, transaction_id, subtotal, tax, shipping_cost,
			discount_code, discount_amount, total, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		order.OrderID, order.UserID, order.ShippingAddress, order.BillingAddress, order.OrderStatus,
		order.PaymentStatus, order.PaymentMethod, order.TransactionID, order.Subtotal, order.Tax,
		order.ShippingCost, order.DiscountCode, order.DiscountAmount, order.Total, order.Notes,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		err = translateError(err)
		r.logger.Error().
			Err(err).
			Str("order_id", order.OrderID).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.OrderID).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (order_id, product_id, name, price, quantity, total)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.OrderID, item.ProductID, item.Name, item.Price, item.Quantity, item.Total)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range items {
		if err := results.QueryRow().Scan(&items[i].ID); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("name", items[i].Name).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// refPredicate matches a row by UUID or by its public id in publicColumn.
func refPredicate(ref, publicColumn string) (string, any) {
	if id, err := uuid.Parse(ref); err == nil {
		return "id = $1", id
	}
	return publicColumn + " = $1", ref
}

// GetByRef retrieves an order along with its items.
func (r *orderRepository) GetByRef(ctx context.Context, ref string) (*model.Order, error) {
	return r.get(ctx, r.pool, ref, "")
}

// GetByRefForUpdate retrieves and locks an order inside tx.
func (r *orderRepository) GetByRefForUpdate(ctx context.Context, tx pgx.Tx, ref string) (*model.Order, error) {
	return r.get(ctx, tx, ref, " FOR UPDATE")
}

func (r *orderRepository) get(ctx context.Context, q Querier, ref, suffix string) (*model.Order, error) {
	where, arg := refPredicate(ref, "order_id")

	order, err := getOne[model.Order](ctx, q, `SELECT `+orderColumns+` FROM orders WHERE `+where+suffix, arg)
	if err != nil {
		r.logger.Error().Err(err).Str("order_ref", ref).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	if order == nil {
		r.logger.Debug().Str("order_ref", ref).Msg("order not found")
		return nil, nil
	}

	orders := []model.Order{*order}
	if err := r.attachItems(ctx, q, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// attachItems loads the items of every order with a single query.
func (r *orderRepository) attachItems(ctx context.Context, q Querier, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(orders))
	index := make(map[uuid.UUID]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].Items = []model.OrderItem{}
	}

	itemsQuery := `
		SELECT id, order_id, product_id, name, price, quantity, total
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`

	items, err := getMany[model.OrderItem](ctx, q, itemsQuery, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("orders", len(ids)).Msg("failed to query order items")
		return fmt.Errorf("failed to query order items: %w", err)
	}
	for _, item := range items {
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	return nil
}

// List returns one page of orders with their items.
func (r *orderRepository) List(ctx context.Context, q *query.Query) (*model.Page[model.Order], error) {
	page, err := listPage[model.Order](ctx, r.pool, q, `SELECT `+orderColumns+` FROM orders`, "orders")
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if err := r.attachItems(ctx, r.pool, page.Items); err != nil {
		return nil, err
	}
	return page, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error {
	query := `UPDATE orders SET order_status = $2, updated_at = NOW() WHERE id = $1`

	if _, err := tx.Exec(ctx, query, id, status); err != nil {
		r.logger.Error().Err(err).Str("id", id.String()).Str("status", string(status)).Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}

// UpdatePayment sets the payment status and, when method is non-nil, the payment method.
func (r *orderRepository) UpdatePayment(ctx context.Context, tx pgx.Tx, id uuid.UUID, method *string, status model.PaymentStatus) error {
	query := `
		UPDATE orders
		SET payment_method = COALESCE($2, payment_method), payment_status = $3, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := tx.Exec(ctx, query, id, method, status); err != nil {
		r.logger.Error().Err(err).Str("id", id.String()).Msg("failed to update order payment")
		return fmt.Errorf("failed to update order payment: %w", err)
	}
	return nil
}

// ListOpenWithProduct locks the pending and processing orders containing productID.
func (r *orderRepository) ListOpenWithProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE order_status IN ('pending', 'processing')
		  AND id IN (SELECT order_id FROM order_items WHERE product_id = $1)
		ORDER BY created_at
		FOR UPDATE
	`

	orders, err := getMany[model.Order](ctx, tx, query, productID)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to query open orders")
		return nil, fmt.Errorf("failed to query open orders: %w", err)
	}
	if err := r.attachItems(ctx, tx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) RemoveProductItems(ctx context.Context, tx pgx.Tx, orderID, productID uuid.UUID) error {
	query := `DELETE FROM order_items WHERE order_id = $1 AND product_id = $2`

	if _, err := tx.Exec(ctx, query, orderID, productID); err != nil {
		r.logger.Error().Err(err).Str("id", orderID.String()).Msg("failed to remove order items")
		return fmt.Errorf("failed to remove order items: %w", err)
	}
	return nil
}

// UpdateTotals stores the order's money fields.
func (r *orderRepository) UpdateTotals(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		UPDATE orders
		SET subtotal = $2, tax = $3, shipping_cost = $4, discount_amount = $5, total = $6, updated_at = NOW()
		WHERE id = $1
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.Subtotal, order.Tax, order.ShippingCost, order.DiscountAmount, order.Total)
	if err != nil {
		r.logger.Error().Err(err).Str("id", order.ID.String()).Msg("failed to update order totals")
		return fmt.Errorf("failed to update order totals: %w", err)
	}
	return nil
}

func (r *orderRepository) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
		r.logger.Error().Err(err).Str("id", id.String()).Msg("failed to delete order")
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}
