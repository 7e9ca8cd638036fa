package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"shopfront/internal/model"
	"shopfront/internal/service"

	"github.com/rs/zerolog"
)

const maxUploadBytes = 32 << 20

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// Create handles POST /products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.ProductInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err, h.logger)
		return
	}

	product, err := h.service.Create(r.Context(), &in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusCreated, "Product created successfully", product)
}

// List handles GET /products with search, filters, sorting and paging.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respondPage(w, "Products retrieved successfully", page, h.logger)
}

// GetByID handles GET /products/{id}.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	product, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Product retrieved successfully", product)
}

// Update handles PATCH /products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	var in model.ProductInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err, h.logger)
		return
	}

	product, err := h.service.Update(r.Context(), id, &in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Product updated successfully", product)
}

// Delete handles DELETE /products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Product deleted successfully", nil)
}

// ListByTag handles GET /products/tag/{tag}.
func (h *ProductHandler) ListByTag(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListByTag(r.Context(), r.PathValue("tag"), r.URL.Query())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respondPage(w, "Products retrieved successfully", page, h.logger)
}

// ListByCategory handles GET /products/category/{categoryId}.
func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathID(r, "categoryId")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	page, err := h.service.ListByCategory(r.Context(), categoryID, r.URL.Query())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respondPage(w, "Products retrieved successfully", page, h.logger)
}

// UploadImages handles POST /products/{id}/images, a multipart form with one
// or more "images" parts.
func (h *ProductHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, model.BadRequest(model.ErrCodeBadRequest, "Invalid multipart form"), h.logger)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["images"]
	uploads := make([]service.ImageUpload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeError(w, err, h.logger)
			return
		}
		defer func(f multipart.File) { _ = f.Close() }(f)
		uploads = append(uploads, service.ImageUpload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		})
	}

	product, err := h.service.UploadImages(r.Context(), id, uploads)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Images uploaded successfully", product)
}

// Export handles GET /products/export.
func (h *ProductHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), &buf); err != nil {
		writeError(w, err, h.logger)
		return
	}

	name := "products-" + time.Now().UTC().Format("20060102") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn().Err(err).Msg("product export interrupted")
	}
}
