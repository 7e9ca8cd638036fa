package service

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"shopfront/internal/model"
	"shopfront/internal/query"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReviewService_Create(t *testing.T) {
	ctx := context.Background()
	userID, productID := uuid.New(), uuid.New()
	req := &model.CreateReviewRequest{ProductID: productID, Rating: 4}

	t.Run("stores unpublished review", func(t *testing.T) {
		tr, tx := newCommittingTx()
		reviews, products := new(MockReviewRepository), new(MockProductRepository)
		svc := NewReviewService(tr, reviews, products, zerolog.Nop())
		products.On("GetByID", ctx, productID).Return(&model.Product{ID: productID}, nil)
		reviews.On("Create", ctx, tx, mock.MatchedBy(func(r *model.Review) bool {
			return r.UserID == userID && r.Rating == 4 && !r.IsPublished
		})).Return(nil)

		_, err := svc.Create(ctx, userID, req)
		require.NoError(t, err)
		reviews.AssertNotCalled(t, "RecomputeProductRating", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("second review of same product", func(t *testing.T) {
		tr, tx := newRollbackTx()
		reviews, products := new(MockReviewRepository), new(MockProductRepository)
		svc := NewReviewService(tr, reviews, products, zerolog.Nop())
		products.On("GetByID", ctx, productID).Return(&model.Product{ID: productID}, nil)
		reviews.On("Create", ctx, tx, mock.Anything).Return(&model.ConflictError{Field: "productId"})

		_, err := svc.Create(ctx, userID, req)
		assert.ErrorIs(t, err, ErrReviewExists)
	})

	t.Run("rating out of range", func(t *testing.T) {
		svc := NewReviewService(new(MockTransactor), new(MockReviewRepository), new(MockProductRepository), zerolog.Nop())
		_, err := svc.Create(ctx, userID, &model.CreateReviewRequest{ProductID: productID, Rating: 6})
		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "rating", domainErr.Sources[0].Path)
	})
}

func TestReviewService_Update_PublishedRecomputes(t *testing.T) {
	ctx := context.Background()
	tr, tx := newCommittingTx()
	reviews := new(MockReviewRepository)
	svc := NewReviewService(tr, reviews, new(MockProductRepository), zerolog.Nop())

	userID := uuid.New()
	review := &model.Review{ID: uuid.New(), UserID: userID, ProductID: uuid.New(), Rating: 2, IsPublished: true}
	rating := 5
	reviews.On("GetByIDForUpdate", ctx, tx, review.ID).Return(review, nil)
	reviews.On("Update", ctx, tx, review).Return(nil)
	reviews.On("RecomputeProductRating", ctx, tx, review.ProductID).Return(nil)

	got, err := svc.Update(ctx, userID, review.ID, &model.UpdateReviewRequest{Rating: &rating})

	require.NoError(t, err)
	assert.Equal(t, 5, got.Rating)
	reviews.AssertExpectations(t)
}

func TestReviewService_Update_NotOwner(t *testing.T) {
	ctx := context.Background()
	tr, tx := newRollbackTx()
	reviews := new(MockReviewRepository)
	svc := NewReviewService(tr, reviews, new(MockProductRepository), zerolog.Nop())

	review := &model.Review{ID: uuid.New(), UserID: uuid.New()}
	reviews.On("GetByIDForUpdate", ctx, tx, review.ID).Return(review, nil)

	_, err := svc.Update(ctx, uuid.New(), review.ID, &model.UpdateReviewRequest{})

	assert.ErrorIs(t, err, ErrReviewNotOwned)
}

func TestReviewService_SetPublished(t *testing.T) {
	ctx := context.Background()
	tr, tx := newCommittingTx()
	reviews := new(MockReviewRepository)
	svc := NewReviewService(tr, reviews, new(MockProductRepository), zerolog.Nop())

	review := &model.Review{ID: uuid.New(), ProductID: uuid.New()}
	reviews.On("GetByIDForUpdate", ctx, tx, review.ID).Return(review, nil)
	reviews.On("SetPublished", ctx, tx, review.ID, true).Return(nil)
	reviews.On("RecomputeProductRating", ctx, tx, review.ProductID).Return(nil)

	got, err := svc.SetPublished(ctx, review.ID, true)

	require.NoError(t, err)
	assert.True(t, got.IsPublished)
	reviews.AssertExpectations(t)
}

func TestReviewService_Delete(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name    string
		actor   *model.User
		wantErr error
	}{
		{name: "owner", actor: &model.User{ID: owner, Role: model.RoleUser}},
		{name: "admin", actor: &model.User{ID: uuid.New(), Role: model.RoleAdmin}},
		{name: "someone else", actor: &model.User{ID: uuid.New(), Role: model.RoleUser}, wantErr: ErrReviewDeleteNotOwned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			var tr *MockTransactor
			var tx *MockTx
			if tt.wantErr == nil {
				tr, tx = newCommittingTx()
			} else {
				tr, tx = newRollbackTx()
			}
			reviews := new(MockReviewRepository)
			svc := NewReviewService(tr, reviews, new(MockProductRepository), zerolog.Nop())

			review := &model.Review{ID: uuid.New(), UserID: owner, ProductID: uuid.New(), IsPublished: true}
			reviews.On("GetByIDForUpdate", ctx, tx, review.ID).Return(review, nil)
			if tt.wantErr == nil {
				reviews.On("Delete", ctx, tx, review.ID).Return(nil)
				reviews.On("RecomputeProductRating", ctx, tx, review.ProductID).Return(nil)
			}

			err := svc.Delete(ctx, tt.actor, review.ID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			reviews.AssertExpectations(t)
		})
	}
}

func TestReviewService_ListByProduct_OnlyPublished(t *testing.T) {
	ctx := context.Background()
	reviews := new(MockReviewRepository)
	svc := NewReviewService(new(MockTransactor), reviews, new(MockProductRepository), zerolog.Nop())

	productID := uuid.New()
	reviews.On("List", ctx, mock.MatchedBy(func(q *query.Query) bool {
		return strings.Contains(q.Where(), "r.product_id = $1") &&
			strings.Contains(q.Where(), "r.is_published") &&
			q.Args()[0] == productID
	})).Return(&model.Page[model.Review]{}, nil)

	_, err := svc.ListByProduct(ctx, productID, url.Values{})

	require.NoError(t, err)
	reviews.AssertExpectations(t)
}

func TestReviewService_MarkHelpful_NotFound(t *testing.T) {
	ctx := context.Background()
	reviews := new(MockReviewRepository)
	svc := NewReviewService(new(MockTransactor), reviews, new(MockProductRepository), zerolog.Nop())

	id := uuid.New()
	reviews.On("IncrementHelpful", ctx, id).Return(nil, nil)

	_, err := svc.MarkHelpful(ctx, id)

	assert.ErrorIs(t, err, ErrReviewNotFound)
}
