package handler

import (
	"net/http"

	"shopfront/internal/model"
	"shopfront/internal/service"

	"github.com/rs/zerolog"
)

// ReviewHandler handles product review requests.
type ReviewHandler struct {
	service service.ReviewService
	logger  zerolog.Logger
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(service service.ReviewService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  logger.With().Str("handler", "review").Logger(),
	}
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateReviewRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	review, err := h.service.Create(r.Context(), currentUser(r).ID, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusCreated, "Review submitted successfully", review)
}

func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "reviewId")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	var req model.UpdateReviewRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	review, err := h.service.Update(r.Context(), currentUser(r).ID, id, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Review updated successfully", review)
}

// ListByProduct handles GET /reviews/product/{productId}. Only published
// reviews are listed.
func (h *ReviewHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	page, err := h.service.ListByProduct(r.Context(), productID, r.URL.Query())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respondPage(w, "Reviews retrieved successfully", page, h.logger)
}

func (h *ReviewHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListMine(r.Context(), currentUser(r).ID, r.URL.Query())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respondPage(w, "Reviews retrieved successfully", page, h.logger)
}

// Publish handles PATCH /reviews/{reviewId}/publish.
func (h *ReviewHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, true, "Review published successfully")
}

// Unpublish handles PATCH /reviews/{reviewId}/unpublish.
func (h *ReviewHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, false, "Review unpublished successfully")
}

func (h *ReviewHandler) setPublished(w http.ResponseWriter, r *http.Request, published bool, message string) {
	id, err := pathID(r, "reviewId")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	review, err := h.service.SetPublished(r.Context(), id, published)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, message, review)
}

func (h *ReviewHandler) MarkHelpful(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "reviewId")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	review, err := h.service.MarkHelpful(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Review marked as helpful", review)
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "reviewId")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), currentUser(r), id); err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Review deleted successfully", nil)
}
