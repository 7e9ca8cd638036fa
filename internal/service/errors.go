package service

import (
	"fmt"
	"net/http"

	"shopfront/internal/model"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Business errors returned by the services.
var (
	ErrUserNotFound          = model.NotFound("This user is not found")
	ErrUserDeleted           = model.Forbidden("This user is deleted")
	ErrUserBlocked           = model.Forbidden("This user is blocked")
	ErrIncorrectPassword     = model.Forbidden("Your password is incorrect")
	ErrIncorrectOldPassword  = model.Forbidden("Incorrect old password")
	ErrInvalidResetToken     = model.BadRequest(model.ErrCodeBadRequest, "Invalid or expired reset token")
	ErrCategoryNotFound      = model.NotFound("Category not found")
	ErrProductNotFound       = model.NotFound("Product not found")
	ErrProductUnavailable    = model.BadRequest(model.ErrCodeBadRequest, "Product is not available")
	ErrInsufficientQuantity  = model.BadRequest(model.ErrCodeInsufficientStock, "Insufficient quantity available")
	ErrNoImages              = model.BadRequest(model.ErrCodeBadRequest, "At least one image is required")
	ErrCartNotFound          = model.NotFound("Cart not found")
	ErrItemNotInCart         = model.NotFound("Item not in cart")
	ErrInvalidQuantity       = model.BadRequest(model.ErrCodeBadRequest, "Quantity must be greater than 0")
	ErrCartEmpty             = model.BadRequest(model.ErrCodeBadRequest, "Cart is empty")
	ErrInvalidShipping       = model.BadRequest(model.ErrCodeBadRequest, "Invalid shipping address")
	ErrNoItemsSelected       = model.BadRequest(model.ErrCodeBadRequest, "No valid products selected for order")
	ErrInvalidDiscountCode   = model.BadRequest(model.ErrCodeInvalidCoupon, "Invalid discount code")
	ErrDiscountLimitReached  = model.BadRequest(model.ErrCodeInvalidCoupon, "Discount code usage limit reached")
	ErrOrderNotFound         = model.NotFound("Order not found")
	ErrInvalidOrderStatus    = model.BadRequest(model.ErrCodeBadRequest, "Invalid status")
	ErrOrderAlreadyCancelled = model.BadRequest(model.ErrCodeCancellationDenied, "Order is already cancelled")
	ErrOrderDelivered        = model.BadRequest(model.ErrCodeCancellationDenied, "Cannot cancel a delivered order")
	ErrCancellationWindow    = model.BadRequest(model.ErrCodeCancellationDenied,
		"Order can only be cancelled within 6 hours of creation")
	ErrCouponNotFound        = model.NotFound("Coupon not found")
	ErrCouponCodeTaken       = model.Conflict("code", "Coupon code already exists")
	ErrReviewNotFound        = model.NotFound("Review not found")
	ErrReviewExists          = model.Conflict("productId", "You have already reviewed this product")
	ErrReviewNotOwned        = model.Forbidden("You can only update your own reviews")
	ErrReviewDeleteNotOwned  = model.Forbidden("You can only delete your own reviews")
	ErrWishlistNotFound      = model.NotFound("Wishlist not found")
	ErrNotInWishlist         = model.NotFound("Product not in wishlist")
	ErrAddressNotFound       = model.NotFound("Address not found")
	ErrContactNotFound       = model.NotFound("Contact not found")
	ErrCarouselNotFound      = model.NotFound("Carousel not found")
	ErrPaymentMethodNotFound = model.NotFound("Payment method not found")
	ErrPaymentMethodInactive = model.BadRequest(model.ErrCodeBadRequest, "Selected payment method is not available")
	ErrTransactionNotFound   = model.NotFound("Transaction not found")
	ErrFlashSaleNotFound     = model.NotFound("Flash sale not found")
)

// couponMessages holds the wording of each coupon violation. Checkout talks
// about discount codes, the coupon endpoints about coupons.
var couponMessages = map[model.CouponViolation][2]string{
	model.CouponInactive:    {"Discount code is inactive", "Coupon is inactive"},
	model.CouponNotYetValid: {"Discount code is not yet valid", "Coupon is not yet valid"},
	model.CouponExpired:     {"Discount code has expired", "Coupon has expired"},
	model.CouponExhausted:   {"Discount code usage limit reached", "Coupon usage limit reached"},
}

const (
	checkoutWording = 0
	couponWording   = 1
)

// couponError converts a coupon rule violation into a 400 error.
func couponError(v model.CouponViolation, c *model.Coupon, wording int) error {
	if v == model.CouponBelowMinimum {
		minimum := decimal.Zero
		if c.MinOrderAmount != nil {
			minimum = *c.MinOrderAmount
		}
		return model.BadRequest(model.ErrCodeInvalidCoupon,
			fmt.Sprintf("Minimum order amount of %s required", minimum.StringFixed(2)))
	}
	return model.BadRequest(model.ErrCodeInvalidCoupon, couponMessages[v][wording])
}

// transitionError reports an order status change the state machine forbids.
func transitionError(from, to model.OrderStatus) error {
	return model.NewDomainError(http.StatusBadRequest, model.ErrCodeInvalidTransition,
		fmt.Sprintf("Cannot change order status from %s to %s", from, to))
}

// conflictOn returns dup when err is a uniqueness violation, err otherwise.
func conflictOn(err, dup error) error {
	var conflict *model.ConflictError
	if errors.As(err, &conflict) {
		return dup
	}
	return err
}
