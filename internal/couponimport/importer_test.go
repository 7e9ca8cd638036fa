package couponimport

import (
	"context"
	"errors"
	"testing"

	"shopfront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockStore is a mock implementation of the Store interface.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) BulkInsert(ctx context.Context, coupons []model.Coupon) (int64, error) {
	args := m.Called(ctx, coupons)
	return args.Get(0).(int64), args.Error(1)
}

func codes(coupons []model.Coupon) []string {
	out := make([]string, len(coupons))
	for i, c := range coupons {
		out[i] = c.Code
	}
	return out
}

func TestImporter_Run(t *testing.T) {
	ctx := context.Background()

	loader := new(mockLoader)
	loader.On("Load", mock.Anything, "a.gz").Return(&Batch{
		Coupons: []model.Coupon{{Code: "ONE"}, {Code: "TWO"}},
		Invalid: 1,
	}, nil)
	loader.On("Load", mock.Anything, "b.gz").Return(&Batch{
		Coupons: []model.Coupon{{Code: "TWO"}, {Code: "THREE"}},
		Invalid: 2,
	}, nil)

	store := new(mockStore)
	store.On("BulkInsert", ctx, mock.MatchedBy(func(cs []model.Coupon) bool {
		return assert.ObjectsAreEqual([]string{"ONE", "TWO", "THREE"}, codes(cs))
	})).Return(int64(2), nil)

	result, err := NewImporter(loader, store, zerolog.Nop()).Run(ctx, []string{"a.gz", "b.gz"})

	require.NoError(t, err)
	assert.Equal(t, &model.CouponImportResult{
		Files:    2,
		Parsed:   4,
		Invalid:  3,
		Inserted: 2,
		Skipped:  2,
	}, result)
	loader.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestImporter_Run_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("No files", func(t *testing.T) {
		_, err := NewImporter(new(mockLoader), new(mockStore), zerolog.Nop()).Run(ctx, nil)

		var domainErr *model.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, 400, domainErr.Status)
	})

	t.Run("Load failure writes nothing", func(t *testing.T) {
		loader := new(mockLoader)
		loader.On("Load", mock.Anything, "a.gz").Return(&Batch{}, nil).Maybe()
		loader.On("Load", mock.Anything, "b.gz").Return(nil, errors.New("corrupt"))
		store := new(mockStore)

		result, err := NewImporter(loader, store, zerolog.Nop()).Run(ctx, []string{"a.gz", "b.gz"})

		require.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "corrupt")
		store.AssertNotCalled(t, "BulkInsert", mock.Anything, mock.Anything)
	})

	t.Run("Store failure", func(t *testing.T) {
		loader := new(mockLoader)
		loader.On("Load", mock.Anything, "a.gz").Return(&Batch{Coupons: []model.Coupon{{Code: "X"}}}, nil)
		store := new(mockStore)
		store.On("BulkInsert", ctx, mock.Anything).Return(int64(0), errors.New("db down"))

		_, err := NewImporter(loader, store, zerolog.Nop()).Run(ctx, []string{"a.gz"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to store coupons")
	})
}
