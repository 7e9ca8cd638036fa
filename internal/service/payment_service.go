package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"shopfront/internal/model"
	"shopfront/internal/query"
	"shopfront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// paymentMethodService implements PaymentMethodService.
type paymentMethodService struct {
	methodRepo repository.PaymentMethodRepository
	logger     zerolog.Logger
}

// NewPaymentMethodService creates a new payment method service.
func NewPaymentMethodService(methodRepo repository.PaymentMethodRepository, logger zerolog.Logger) PaymentMethodService {
	return &paymentMethodService{
		methodRepo: methodRepo,
		logger:     logger.With().Str("service", "payment-method").Logger(),
	}
}

func (s *paymentMethodService) Create(ctx context.Context, in *model.PaymentMethodInput) (*model.PaymentMethod, error) {
	if err := in.Validate(true); err != nil {
		return nil, err
	}
	method := &model.PaymentMethod{IsActive: true}
	in.ApplyTo(method)
	if err := s.methodRepo.Create(ctx, method); err != nil {
		return nil, err
	}
	s.logger.Info().Str("method", method.MethodName).Msg("payment method created")
	return method, nil
}

func (s *paymentMethodService) GetByID(ctx context.Context, id uuid.UUID) (*model.PaymentMethod, error) {
	method, err := s.methodRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment method: %w", err)
	}
	if method == nil {
		return nil, ErrPaymentMethodNotFound
	}
	return method, nil
}

func (s *paymentMethodService) Update(ctx context.Context, id uuid.UUID, in *model.PaymentMethodInput) (*model.PaymentMethod, error) {
	if err := in.Validate(false); err != nil {
		return nil, err
	}
	method, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.ApplyTo(method)
	if err := s.methodRepo.Update(ctx, method); err != nil {
		return nil, err
	}
	return method, nil
}

func (s *paymentMethodService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.methodRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete payment method: %w", err)
	}
	if !deleted {
		return ErrPaymentMethodNotFound
	}
	return nil
}

func (s *paymentMethodService) ListActive(ctx context.Context) ([]model.PaymentMethod, error) {
	return s.methodRepo.ListActive(ctx)
}

func (s *paymentMethodService) List(ctx context.Context, params url.Values) (*model.Page[model.PaymentMethod], error) {
	return list(ctx, repository.PaymentMethodQuerySpec, params, s.methodRepo.List)
}

// transactionService implements TransactionService.
type transactionService struct {
	tx         repository.Transactor
	txRepo     repository.TransactionRepository
	orderRepo  repository.OrderRepository
	methodRepo repository.PaymentMethodRepository
	logger     zerolog.Logger
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(
	tx repository.Transactor,
	txRepo repository.TransactionRepository,
	orderRepo repository.OrderRepository,
	methodRepo repository.PaymentMethodRepository,
	logger zerolog.Logger,
) TransactionService {
	return &transactionService{
		tx:         tx,
		txRepo:     txRepo,
		orderRepo:  orderRepo,
		methodRepo: methodRepo,
		logger:     logger.With().Str("service", "transaction").Logger(),
	}
}

// Create records the user's payment for their order and puts the order's
// payment back to pending until an admin reviews it.
func (s *transactionService) Create(ctx context.Context, userID uuid.UUID, req *model.CreateTransactionRequest) (*model.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByRef(ctx, strings.TrimSpace(req.OrderID))
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || order.UserID != userID {
		return nil, ErrOrderNotFound
	}

	method, err := s.methodRepo.GetByID(ctx, req.PaymentMethodID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment method: %w", err)
	}
	if method == nil || !method.IsActive {
		return nil, ErrPaymentMethodInactive
	}

	t := &model.Transaction{
		TransactionID:             "TXN-" + strings.ToUpper(uuid.NewString()),
		OrderID:                   order.ID,
		UserID:                    userID,
		PaymentMethodID:           method.ID,
		Amount:                    order.Total,
		TransactionStatus:         model.TransactionPending,
		UserProvidedTransactionID: strings.TrimSpace(req.UserProvidedTransactionID),
	}
	err = inTx(ctx, s.tx, s.logger, func(tx pgx.Tx) error {
		if err := s.txRepo.Create(ctx, tx, t); err != nil {
			return err
		}
		return s.orderRepo.UpdatePayment(ctx, tx, order.ID, &method.MethodName, model.PaymentPending)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("transaction_id", t.TransactionID).
		Str("order_id", order.OrderID).
		Str("method", method.MethodName).
		Msg("transaction recorded")
	return t, nil
}

func (s *transactionService) ListMine(ctx context.Context, userID uuid.UUID, params url.Values) (*model.Page[model.Transaction], error) {
	return list(ctx, repository.TransactionQuerySpec, params, s.txRepo.List, query.Eq("user_id", userID))
}

func (s *transactionService) ListAll(ctx context.Context, params url.Values) (*model.Page[model.Transaction], error) {
	return list(ctx, repository.TransactionQuerySpec, params, s.txRepo.List)
}

func (s *transactionService) ListByOrder(ctx context.Context, actor *model.User, orderRef string) ([]model.Transaction, error) {
	order, err := s.orderRepo.GetByRef(ctx, orderRef)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || (!actor.Role.IsAdmin() && order.UserID != actor.ID) {
		return nil, ErrOrderNotFound
	}
	return s.txRepo.ListByOrder(ctx, order.ID)
}

func (s *transactionService) GetByRef(ctx context.Context, ref string) (*model.Transaction, error) {
	t, err := s.txRepo.GetByRef(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if t == nil {
		return nil, ErrTransactionNotFound
	}
	return t, nil
}

// UpdateStatus stores the review outcome and sets the order's payment status
// to match it.
func (s *transactionService) UpdateStatus(ctx context.Context, ref string, req *model.UpdateTransactionStatusRequest) (*model.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var t *model.Transaction
	err := inTx(ctx, s.tx, s.logger, func(tx pgx.Tx) error {
		var err error
		t, err = s.txRepo.GetByRefForUpdate(ctx, tx, ref)
		if err != nil {
			return fmt.Errorf("failed to get transaction: %w", err)
		}
		if t == nil {
			return ErrTransactionNotFound
		}

		t.TransactionStatus = req.Status
		if req.AdminNotes != nil {
			t.AdminNotes = req.AdminNotes
		}
		if err := s.txRepo.UpdateStatus(ctx, tx, t); err != nil {
			return err
		}
		return s.orderRepo.UpdatePayment(ctx, tx, t.OrderID, nil, req.Status.OrderPaymentStatus())
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("transaction_id", t.TransactionID).
		Str("status", string(t.TransactionStatus)).
		Msg("transaction status updated")
	return t, nil
}
