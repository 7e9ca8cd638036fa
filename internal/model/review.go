package model

import (
	"time"

	"github.com/google/uuid"
)

// Review is a user's rating of a product. Only published reviews count toward
// the product rating.
type Review struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"userId" db:"user_id"`
	ProductID    uuid.UUID `json:"productId" db:"product_id"`
	Rating       int       `json:"rating" db:"rating"`
	ReviewText   *string   `json:"reviewText,omitempty" db:"review_text"`
	IsPublished  bool      `json:"isPublished" db:"is_published"`
	HelpfulCount int       `json:"helpfulCount" db:"helpful_count"`
	UserName     *string   `json:"userName,omitempty" db:"user_name"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// CreateReviewRequest is the payload for posting a review.
type CreateReviewRequest struct {
	ProductID  uuid.UUID `json:"productId"`
	Rating     int       `json:"rating"`
	ReviewText *string   `json:"reviewText,omitempty"`
}

// Validate checks the payload.
func (r *CreateReviewRequest) Validate() error {
	v := &validator{}
	v.check(r.ProductID != uuid.Nil, "productId", "Product ID is required")
	v.check(r.Rating >= 1 && r.Rating <= 5, "rating", "Rating must be between 1 and 5")
	return v.err()
}

// UpdateReviewRequest is the payload for editing a review.
type UpdateReviewRequest struct {
	Rating     *int    `json:"rating,omitempty"`
	ReviewText *string `json:"reviewText,omitempty"`
}

// Validate checks the payload.
func (r *UpdateReviewRequest) Validate() error {
	v := &validator{}
	if r.Rating != nil {
		v.check(*r.Rating >= 1 && *r.Rating <= 5, "rating", "Rating must be between 1 and 5")
	}
	return v.err()
}

// ApplyTo copies the provided fields onto rv.
func (r *UpdateReviewRequest) ApplyTo(rv *Review) {
	if r.Rating != nil {
		rv.Rating = *r.Rating
	}
	if r.ReviewText != nil {
		rv.ReviewText = r.ReviewText
	}
}
