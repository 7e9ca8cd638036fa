package service

import (
	"context"
	"testing"

	"shopfront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTransactionService_Create(t *testing.T) {
	ctx := context.Background()
	tr, tx := newCommittingTx()
	txns, orders, methods := new(MockTransactionRepository), new(MockOrderRepository), new(MockPaymentMethodRepository)
	svc := NewTransactionService(tr, txns, orders, methods, zerolog.Nop())

	userID := uuid.New()
	order := &model.Order{ID: uuid.New(), OrderID: "ORD-0F3C1B2A-4D5E-4F60-8A7B-9C0D1E2F3A4B", UserID: userID, Total: decimal.NewFromInt(290)}
	method := &model.PaymentMethod{ID: uuid.New(), MethodName: "bKash", IsActive: true}

	orders.On("GetByRef", ctx, order.OrderID).Return(order, nil)
	methods.On("GetByID", ctx, method.ID).Return(method, nil)
	txns.On("Create", ctx, tx, mock.AnythingOfType("*model.Transaction")).Return(nil)
	orders.On("UpdatePayment", ctx, tx, order.ID, mock.MatchedBy(func(m *string) bool {
		return m != nil && *m == "bKash"
	}), model.PaymentPending).Return(nil)

	got, err := svc.Create(ctx, userID, &model.CreateTransactionRequest{
		OrderID:                   order.OrderID,
		PaymentMethodID:           method.ID,
		UserProvidedTransactionID: " 8N7A6D ",
	})

	require.NoError(t, err)
	assert.Regexp(t, `^TXN-[0-9A-F-]{36}$`, got.TransactionID)
	assert.Equal(t, model.TransactionPending, got.TransactionStatus)
	assert.Equal(t, "8N7A6D", got.UserProvidedTransactionID)
	assert.True(t, got.Amount.Equal(order.Total))
	assert.Equal(t, order.ID, got.OrderID)
	txns.AssertExpectations(t)
	orders.AssertExpectations(t)
}

func TestTransactionService_Create_Rejections(t *testing.T) {
	userID := uuid.New()
	orderID, methodID := uuid.New(), uuid.New()

	tests := []struct {
		name    string
		order   *model.Order
		method  *model.PaymentMethod
		wantErr error
	}{
		{name: "unknown order", order: nil, wantErr: ErrOrderNotFound},
		{name: "order of another user", order: &model.Order{ID: orderID, UserID: uuid.New()}, wantErr: ErrOrderNotFound},
		{
			name:    "inactive method",
			order:   &model.Order{ID: orderID, UserID: userID},
			method:  &model.PaymentMethod{ID: methodID, IsActive: false},
			wantErr: ErrPaymentMethodInactive,
		},
		{
			name:    "unknown method",
			order:   &model.Order{ID: orderID, UserID: userID},
			method:  nil,
			wantErr: ErrPaymentMethodInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			tr := new(MockTransactor)
			orders, methods := new(MockOrderRepository), new(MockPaymentMethodRepository)
			svc := NewTransactionService(tr, new(MockTransactionRepository), orders, methods, zerolog.Nop())

			orders.On("GetByRef", ctx, orderID.String()).Return(tt.order, nil)
			methods.On("GetByID", ctx, methodID).Return(tt.method, nil).Maybe()

			_, err := svc.Create(ctx, userID, &model.CreateTransactionRequest{
				OrderID:                   orderID.String(),
				PaymentMethodID:           methodID,
				UserProvidedTransactionID: "X1",
			})

			assert.ErrorIs(t, err, tt.wantErr)
			tr.AssertNotCalled(t, "BeginTx", mock.Anything)
		})
	}
}

func TestTransactionService_UpdateStatus_CascadesToOrder(t *testing.T) {
	tests := []struct {
		status      model.TransactionStatus
		wantPayment model.PaymentStatus
	}{
		{status: model.TransactionCompleted, wantPayment: model.PaymentCompleted},
		{status: model.TransactionFailed, wantPayment: model.PaymentFailed},
		{status: model.TransactionCancelled, wantPayment: model.PaymentPending},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			ctx := context.Background()
			tr, tx := newCommittingTx()
			txns, orders := new(MockTransactionRepository), new(MockOrderRepository)
			svc := NewTransactionService(tr, txns, orders, new(MockPaymentMethodRepository), zerolog.Nop())

			existing := &model.Transaction{
				ID:                uuid.New(),
				TransactionID:     "TXN-5B1E7C2D-0A3F-4E6B-9D8C-7F6E5D4C3B2A",
				OrderID:           uuid.New(),
				TransactionStatus: model.TransactionPending,
			}
			notes := "checked statement"
			txns.On("GetByRefForUpdate", ctx, tx, existing.TransactionID).Return(existing, nil)
			txns.On("UpdateStatus", ctx, tx, existing).Return(nil)
			orders.On("UpdatePayment", ctx, tx, existing.OrderID, (*string)(nil), tt.wantPayment).Return(nil)

			got, err := svc.UpdateStatus(ctx, existing.TransactionID, &model.UpdateTransactionStatusRequest{
				Status:     tt.status,
				AdminNotes: &notes,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.status, got.TransactionStatus)
			require.NotNil(t, got.AdminNotes)
			assert.Equal(t, notes, *got.AdminNotes)
			txns.AssertExpectations(t)
			orders.AssertExpectations(t)
		})
	}
}

func TestTransactionService_UpdateStatus_InvalidStatus(t *testing.T) {
	tr := new(MockTransactor)
	svc := NewTransactionService(tr, new(MockTransactionRepository), new(MockOrderRepository),
		new(MockPaymentMethodRepository), zerolog.Nop())

	_, err := svc.UpdateStatus(context.Background(), uuid.NewString(), &model.UpdateTransactionStatusRequest{Status: "refunded"})

	require.Error(t, err)
	tr.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestTransactionService_Create_MissingOrderID(t *testing.T) {
	tr := new(MockTransactor)
	orders := new(MockOrderRepository)
	svc := NewTransactionService(tr, new(MockTransactionRepository), orders, new(MockPaymentMethodRepository), zerolog.Nop())

	_, err := svc.Create(context.Background(), uuid.New(), &model.CreateTransactionRequest{
		OrderID:                   "  ",
		PaymentMethodID:           uuid.New(),
		UserProvidedTransactionID: "X1",
	})

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "orderId", domainErr.Sources[0].Path)
	orders.AssertNotCalled(t, "GetByRef", mock.Anything, mock.Anything)
}

func TestTransactionService_GetByRef(t *testing.T) {
	ctx := context.Background()
	txns := new(MockTransactionRepository)
	svc := NewTransactionService(new(MockTransactor), txns, new(MockOrderRepository), new(MockPaymentMethodRepository), zerolog.Nop())

	txn := &model.Transaction{ID: uuid.New(), TransactionID: "TXN-1"}
	txns.On("GetByRef", ctx, "TXN-1").Return(txn, nil)
	txns.On("GetByRef", ctx, "TXN-2").Return(nil, nil)

	got, err := svc.GetByRef(ctx, "TXN-1")
	require.NoError(t, err)
	assert.Equal(t, txn, got)

	_, err = svc.GetByRef(ctx, "TXN-2")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestTransactionService_ListByOrder(t *testing.T) {
	ctx := context.Background()
	txns, orders := new(MockTransactionRepository), new(MockOrderRepository)
	svc := NewTransactionService(new(MockTransactor), txns, orders, new(MockPaymentMethodRepository), zerolog.Nop())

	owner := &model.User{ID: uuid.New(), Role: model.RoleUser}
	order := &model.Order{ID: uuid.New(), OrderID: "ORD-10", UserID: owner.ID}
	orders.On("GetByRef", ctx, "ORD-10").Return(order, nil)
	txns.On("ListByOrder", ctx, order.ID).Return([]model.Transaction{{ID: uuid.New()}}, nil)

	got, err := svc.ListByOrder(ctx, owner, "ORD-10")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.ListByOrder(ctx, &model.User{ID: uuid.New(), Role: model.RoleUser}, "ORD-10")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	got, err = svc.ListByOrder(ctx, &model.User{ID: uuid.New(), Role: model.RoleSuperAdmin}, "ORD-10")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestPaymentMethodService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPaymentMethodRepository)
	svc := NewPaymentMethodService(repo, zerolog.Nop())

	id := uuid.New()
	repo.On("Delete", ctx, id).Return(false, nil)

	assert.ErrorIs(t, svc.Delete(ctx, id), ErrPaymentMethodNotFound)
}

func TestPaymentMethodService_Create_DefaultsActive(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPaymentMethodRepository)
	svc := NewPaymentMethodService(repo, zerolog.Nop())

	name := " Nagad "
	repo.On("Create", ctx, mock.AnythingOfType("*model.PaymentMethod")).Return(nil)

	got, err := svc.Create(ctx, &model.PaymentMethodInput{MethodName: &name})

	require.NoError(t, err)
	assert.Equal(t, "Nagad", got.MethodName)
	assert.True(t, got.IsActive)
}
