package handler

import (
	"net/http"

	"shopfront/internal/model"
	"shopfront/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles the current user's cart.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /carts.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.Get(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Cart retrieved successfully", cart)
}

// AddItem handles POST /carts/add.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req model.AddToCartRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	cart, err := h.service.AddItem(r.Context(), currentUser(r).ID, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Item added to cart successfully", cart)
}

// UpdateItem handles PATCH /carts/{productId}.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	var req model.UpdateCartItemRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	cart, err := h.service.UpdateItem(r.Context(), currentUser(r).ID, productID, req.Quantity)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Cart item updated successfully", cart)
}

// RemoveItem handles DELETE /carts/{productId}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), currentUser(r).ID, productID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Item removed from cart successfully", cart)
}

// Clear handles DELETE /carts.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context(), currentUser(r).ID); err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Cart cleared successfully", nil)
}

// WishlistHandler handles the current user's wishlist.
type WishlistHandler struct {
	service service.WishlistService
	logger  zerolog.Logger
}

// NewWishlistHandler creates a new wishlist handler.
func NewWishlistHandler(service service.WishlistService, logger zerolog.Logger) *WishlistHandler {
	return &WishlistHandler{
		service: service,
		logger:  logger.With().Str("handler", "wishlist").Logger(),
	}
}

func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	wishlist, err := h.service.Get(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Wishlist retrieved successfully", wishlist)
}

func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req model.AddToWishlistRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	wishlist, err := h.service.Add(r.Context(), currentUser(r).ID, req.ProductID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Product added to wishlist successfully", wishlist)
}

// Check handles GET /wishlists/check/{productId}.
func (h *WishlistHandler) Check(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	in, err := h.service.Contains(r.Context(), currentUser(r).ID, productID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Wishlist status retrieved successfully", map[string]bool{"inWishlist": in})
}

func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	wishlist, err := h.service.Remove(r.Context(), currentUser(r).ID, productID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Product removed from wishlist successfully", wishlist)
}

func (h *WishlistHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context(), currentUser(r).ID); err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Wishlist cleared successfully", nil)
}
