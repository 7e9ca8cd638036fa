package repository

import (
	"context"
	"testing"
	"time"

	"shopfront/internal/model"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartRepository_RemoveProduct(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewCartRepository(pool, zerolog.Nop())
	doomed := seedProduct(t, pool, "Old Stock", "10", 10)
	kept := seedProduct(t, pool, "New Stock", "25", 10)
	shared := seedUser(t, pool, "shared@example.com")
	lonely := seedUser(t, pool, "lonely@example.com")

	fill := func(userID uuid.UUID, items ...model.CartItem) {
		tx, err := pool.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		cart := &model.Cart{UserID: userID, Items: items}
		require.NoError(t, repo.Create(ctx, tx, cart))
		for i := range items {
			require.NoError(t, repo.UpsertItem(ctx, tx, cart.ID, &items[i]))
		}
		cart.Recalculate()
		require.NoError(t, repo.UpdateTotals(ctx, tx, cart))
		require.NoError(t, tx.Commit(ctx))
	}
	line := func(pid uuid.UUID, price string, qty int) model.CartItem {
		item := model.CartItem{ProductID: pid, Price: decimal.RequireFromString(price), Quantity: qty}
		item.Total = item.Price.Mul(decimal.NewFromInt(int64(qty)))
		return item
	}

	fill(shared, line(doomed, "10", 2), line(kept, "25", 1))
	fill(lonely, line(doomed, "10", 1))

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.RemoveProduct(ctx, tx, doomed))
	require.NoError(t, tx.Commit(ctx))

	cart, err := repo.GetByUserID(ctx, shared)
	require.NoError(t, err)
	require.NotNil(t, cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, kept, cart.Items[0].ProductID)
	assert.Equal(t, "New Stock", cart.Items[0].Name)
	assert.True(t, decimal.NewFromInt(25).Equal(cart.Subtotal))

	empty, err := repo.GetByUserID(ctx, lonely)
	require.NoError(t, err)
	assert.Nil(t, empty, "cart left empty should be deleted")
}

func seedCoupon(t *testing.T, repo CouponRepository, code string, maxUses *int) *model.Coupon {
	t.Helper()
	now := time.Now()
	c := &model.Coupon{
		Code:          code,
		DiscountType:  model.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		ValidFrom:     now.Add(-time.Hour),
		ValidUntil:    now.Add(time.Hour),
		MaxUses:       maxUses,
		IsActive:      true,
	}
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func TestCouponRepository_Redeem(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	coupons := NewCouponRepository(pool, zerolog.Nop())
	orders := NewOrderRepository(pool, zerolog.Nop())
	userID := seedUser(t, pool, "coupon@example.com")
	pid := seedProduct(t, pool, "Book", "100", 10)

	one := 1
	c := seedCoupon(t, coupons, "ONCE", &one)
	first := insertOrder(t, pool, orders, userID, model.OrderPending, pid)
	second := insertOrder(t, pool, orders, userID, model.OrderPending, pid)

	redeem := func(orderID uuid.UUID) bool {
		tx, err := pool.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		ok, err := coupons.Redeem(ctx, tx, c.ID, orderID, userID, decimal.NewFromInt(10))
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))
		return ok
	}

	assert.True(t, redeem(first.ID))
	assert.False(t, redeem(second.ID), "usage limit reached")

	got, err := coupons.GetByCode(ctx, "ONCE")
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentUses)
}

func TestCouponRepository_CreateConflictAndBulkInsert(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewCouponRepository(pool, zerolog.Nop())
	seedCoupon(t, repo, "TAKEN", nil)

	dup := &model.Coupon{
		Code:          "TAKEN",
		DiscountType:  model.DiscountFixed,
		DiscountValue: decimal.NewFromInt(5),
		ValidFrom:     time.Now(),
		ValidUntil:    time.Now().Add(time.Hour),
		IsActive:      true,
	}
	err := repo.Create(ctx, dup)
	var conflict *model.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "code", conflict.Field)

	batch := []model.Coupon{*dup, *dup, *dup}
	batch[1].Code = "FRESH1"
	batch[2].Code = "FRESH2"

	inserted, err := repo.BulkInsert(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, int64(2), inserted)

	fresh, err := repo.GetByCode(ctx, "FRESH2")
	require.NoError(t, err)
	require.NotNil(t, fresh)
	assert.Equal(t, model.DiscountFixed, fresh.DiscountType)
	assert.Zero(t, fresh.CurrentUses)
}

func TestReviewRepository_RecomputeProductRating(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewReviewRepository(pool, zerolog.Nop())
	products := NewProductRepository(pool, zerolog.Nop())
	pid := seedProduct(t, pool, "Headphones", "60", 3)

	ratings := []struct {
		rating    int
		published bool
	}{
		{rating: 5, published: true},
		{rating: 4, published: true},
		{rating: 4, published: true},
		{rating: 1, published: false},
	}

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	var reviews []*model.Review
	for i, r := range ratings {
		userID := seedUser(t, pool, uuid.NewString()+"@example.com")
		rv := &model.Review{UserID: userID, ProductID: pid, Rating: r.rating, IsPublished: r.published}
		require.NoError(t, repo.Create(ctx, tx, rv), "review %d", i)
		reviews = append(reviews, rv)
	}
	require.NoError(t, repo.RecomputeProductRating(ctx, tx, pid))
	require.NoError(t, tx.Commit(ctx))

	p, err := products.GetByID(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, 3, p.RatingCount)
	assert.True(t, decimal.RequireFromString("4.33").Equal(p.RatingAverage), p.RatingAverage.String())

	helpful, err := repo.IncrementHelpful(ctx, reviews[0].ID)
	require.NoError(t, err)
	require.NotNil(t, helpful)
	assert.Equal(t, 1, helpful.HelpfulCount)
	require.NotNil(t, helpful.UserName)

	tx, err = pool.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.SetPublished(ctx, tx, reviews[3].ID, true))
	require.NoError(t, repo.RecomputeProductRating(ctx, tx, pid))
	require.NoError(t, tx.Commit(ctx))

	p, err = products.GetByID(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, 4, p.RatingCount)
	assert.True(t, decimal.RequireFromString("3.5").Equal(p.RatingAverage))
}

func seedAddress(t *testing.T, pool *pgxpool.Pool, repo AddressRepository, userID uuid.UUID, isDefault bool) (*model.Address, error) {
	t.Helper()
	ctx := context.Background()
	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	a := &model.Address{UserID: userID, Street: "1 Road", City: "Chattogram", PostalCode: "4000", Country: "BD", IsDefault: isDefault}
	if err := repo.Create(ctx, tx, a); err != nil {
		return nil, err
	}
	require.NoError(t, tx.Commit(ctx))
	return a, nil
}

func TestAddressRepository_SingleDefault(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewAddressRepository(pool, zerolog.Nop())
	userID := seedUser(t, pool, "addr@example.com")

	first, err := seedAddress(t, pool, repo, userID, true)
	require.NoError(t, err)

	_, err = seedAddress(t, pool, repo, userID, true)
	var conflict *model.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "isDefault", conflict.Field)

	second, err := seedAddress(t, pool, repo, userID, false)
	require.NoError(t, err)

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	locked, err := repo.LockByUser(ctx, tx, userID)
	require.NoError(t, err)
	assert.Len(t, locked, 2)

	require.NoError(t, repo.ClearDefault(ctx, tx, userID))
	second.IsDefault = true
	require.NoError(t, repo.Update(ctx, tx, second))
	require.NoError(t, tx.Commit(ctx))

	got, err := repo.GetByID(ctx, first.ID, userID)
	require.NoError(t, err)
	assert.False(t, got.IsDefault)

	other, err := repo.GetByID(ctx, second.ID, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, other, "address is scoped to its owner")
}
