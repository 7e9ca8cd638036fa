package handler

import (
	"net/http"

	"shopfront/internal/model"
	"shopfront/internal/service"

	"github.com/rs/zerolog"
)

// CategoryHandler handles category requests.
type CategoryHandler struct {
	service service.CategoryService
	logger  zerolog.Logger
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(service service.CategoryService, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		logger:  logger.With().Str("handler", "category").Logger(),
	}
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.CategoryInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err, h.logger)
		return
	}

	category, err := h.service.Create(r.Context(), &in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusCreated, "Category created successfully", category)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respondPage(w, "Categories retrieved successfully", page, h.logger)
}

func (h *CategoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	category, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Category retrieved successfully", category)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	var in model.CategoryInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err, h.logger)
		return
	}

	category, err := h.service.Update(r.Context(), id, &in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Category updated successfully", category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Category deleted successfully", nil)
}
