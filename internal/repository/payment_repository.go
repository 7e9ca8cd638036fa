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

const paymentMethodColumns = `id, method_name, description, account_number, account_name, account_type,
	instructions, is_active, display_order, created_at, updated_at`

// PaymentMethodQuerySpec whitelists the payment method list parameters.
var PaymentMethodQuerySpec = query.Spec{
	Columns: map[string]query.Column{
		"id":           {Expr: "id", Kind: query.UUID},
		"methodName":   {Expr: "method_name"},
		"accountType":  {Expr: "account_type"},
		"isActive":     {Expr: "is_active", Kind: query.Bool},
		"displayOrder": {Expr: "display_order", Kind: query.Int},
		"createdAt":    {Expr: "created_at", Kind: query.Time},
	},
	Searchable:  []string{"method_name", "account_name", "account_number"},
	DefaultSort: "displayOrder",
}

type paymentMethodRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPaymentMethodRepository creates a new PostgreSQL-backed payment method repository.
func NewPaymentMethodRepository(pool *pgxpool.Pool, logger zerolog.Logger) PaymentMethodRepository {
	return &paymentMethodRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "payment_method").Logger(),
	}
}

func (r *paymentMethodRepository) Create(ctx context.Context, m *model.PaymentMethod) error {
	query := `
		INSERT INTO payment_methods (method_name, description, account_number, account_name,
			account_type, instructions, is_active, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		m.MethodName, m.Description, m.AccountNumber, m.AccountName,
		m.AccountType, m.Instructions, m.IsActive, m.DisplayOrder,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		err = translateError(err)
		r.logger.Error().Err(err).Str("method_name", m.MethodName).Msg("failed to create payment method")
		return fmt.Errorf("failed to create payment method: %w", err)
	}
	return nil
}

func (r *paymentMethodRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PaymentMethod, error) {
	m, err := getOne[model.PaymentMethod](ctx, r.pool,
		`SELECT `+paymentMethodColumns+` FROM payment_methods WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("payment_method_id", id.String()).Msg("failed to query payment method")
		return nil, fmt.Errorf("failed to query payment method: %w", err)
	}
	return m, nil
}

func (r *paymentMethodRepository) Update(ctx context.Context, m *model.PaymentMethod) error {
	query := `
		UPDATE payment_methods
		SET method_name = $2, description = $3, account_number = $4, account_name = $5,
		    account_type = $6, instructions = $7, is_active = $8, display_order = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		m.ID, m.MethodName, m.Description, m.AccountNumber, m.AccountName,
		m.AccountType, m.Instructions, m.IsActive, m.DisplayOrder,
	).Scan(&m.UpdatedAt)
	if err != nil {
		err = translateError(err)
		r.logger.Error().Err(err).Str("payment_method_id", m.ID.String()).Msg("failed to update payment method")
		return fmt.Errorf("failed to update payment method: %w", err)
	}
	return nil
}

func (r *paymentMethodRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM payment_methods WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("payment_method_id", id.String()).Msg("failed to delete payment method")
		return false, fmt.Errorf("failed to delete payment method: %w", err)
	}
	return affected(tag), nil
}

func (r *paymentMethodRepository) ListActive(ctx context.Context) ([]model.PaymentMethod, error) {
	methods, err := getMany[model.PaymentMethod](ctx, r.pool,
		`SELECT `+paymentMethodColumns+` FROM payment_methods WHERE is_active ORDER BY display_order, method_name`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list payment methods")
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	return methods, nil
}

func (r *paymentMethodRepository) List(ctx context.Context, q *query.Query) (*model.Page[model.PaymentMethod], error) {
	page, err := listPage[model.PaymentMethod](ctx, r.pool, q,
		`SELECT `+paymentMethodColumns+` FROM payment_methods`, "payment_methods")
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list payment methods")
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	return page, nil
}

const transactionColumns = `id, transaction_id, order_id, user_id, payment_method_id, amount,
	transaction_status, user_provided_transaction_id, admin_notes, created_at, updated_at`

// TransactionQuerySpec whitelists the transaction history parameters.
var TransactionQuerySpec = query.Spec{
	Columns: map[string]query.Column{
		"id":                {Expr: "id", Kind: query.UUID},
		"transactionId":     {Expr: "transaction_id"},
		"orderId":           {Expr: "order_id", Kind: query.UUID},
		"userId":            {Expr: "user_id", Kind: query.UUID},
		"paymentMethodId":   {Expr: "payment_method_id", Kind: query.UUID},
		"transactionStatus": {Expr: "transaction_status"},
		"amount":            {Expr: "amount", Kind: query.Number},
		"createdAt":         {Expr: "created_at", Kind: query.Time},
	},
	Searchable:  []string{"transaction_id", "user_provided_transaction_id"},
	DefaultSort: "-createdAt",
}

type transactionRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewTransactionRepository creates a new PostgreSQL-backed transaction repository.
func NewTransactionRepository(pool *pgxpool.Pool, logger zerolog.Logger) TransactionRepository {
	return &transactionRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "transaction").Logger(),
	}
}

func (r *transactionRepository) Create(ctx context.Context, tx pgx.Tx, t *model.Transaction) error {
	query := `
		INSERT INTO transactions (transaction_id, order_id, user_id, payment_method_id, amount,
			transaction_status, user_provided_transaction_id, admin_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		t.TransactionID, t.OrderID, t.UserID, t.PaymentMethodID, t.Amount,
		t.TransactionStatus, t.UserProvidedTransactionID, t.AdminNotes,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		err = translateError(err)
		r.logger.Error().Err(err).Str("transaction_id", t.TransactionID).Msg("failed to create transaction")
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByRef(ctx context.Context, ref string) (*model.Transaction, error) {
	return r.get(ctx, r.pool, ref, "")
}

func (r *transactionRepository) GetByRefForUpdate(ctx context.Context, tx pgx.Tx, ref string) (*model.Transaction, error) {
	return r.get(ctx, tx, ref, " FOR UPDATE")
}

func (r *transactionRepository) get(ctx context.Context, q Querier, ref, suffix string) (*model.Transaction, error) {
	where, arg := refPredicate(ref, "transaction_id")

	t, err := getOne[model.Transaction](ctx, q,
		`SELECT `+transactionColumns+` FROM transactions WHERE `+where+suffix, arg)
	if err != nil {
		r.logger.Error().Err(err).Str("transaction_ref", ref).Msg("failed to query transaction")
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return t, nil
}

func (r *transactionRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Transaction, error) {
	transactions, err := getMany[model.Transaction](ctx, r.pool,
		`SELECT `+transactionColumns+` FROM transactions WHERE order_id = $1 ORDER BY created_at DESC`, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to list order transactions")
		return nil, fmt.Errorf("failed to list order transactions: %w", err)
	}
	return transactions, nil
}

func (r *transactionRepository) List(ctx context.Context, q *query.Query) (*model.Page[model.Transaction], error) {
	page, err := listPage[model.Transaction](ctx, r.pool, q,
		`SELECT `+transactionColumns+` FROM transactions`, "transactions")
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list transactions")
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return page, nil
}

// UpdateStatus stores the review outcome of a transaction.
func (r *transactionRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, t *model.Transaction) error {
	query := `
		UPDATE transactions
		SET transaction_status = $2, admin_notes = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	if err := tx.QueryRow(ctx, query, t.ID, t.TransactionStatus, t.AdminNotes).Scan(&t.UpdatedAt); err != nil {
		r.logger.Error().Err(err).Str("id", t.ID.String()).Msg("failed to update transaction status")
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	return nil
}
