package handler

import (
	"context"
	"net/http"
	"net/url"

	"shopfront/internal/model"
	"shopfront/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// contentService is the shape shared by contacts, carousels and payment
// methods: admin CRUD plus a public list of the active entries.
type contentService[T, In any] interface {
	Create(ctx context.Context, in *In) (*T, error)
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	Update(ctx context.Context, id uuid.UUID, in *In) (*T, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListActive(ctx context.Context) ([]T, error)
	List(ctx context.Context, params url.Values) (*model.Page[T], error)
}

// ContentHandler serves one kind of storefront content.
type ContentHandler[T, In any] struct {
	service contentService[T, In]
	noun    string
	plural  string
	logger  zerolog.Logger
}

// NewContactHandler creates the handler for /contacts.
func NewContactHandler(s service.ContactService, logger zerolog.Logger) *ContentHandler[model.Contact, model.ContactInput] {
	return newContentHandler[model.Contact, model.ContactInput](s, "Contact", "Contacts", "contact", logger)
}

// NewCarouselHandler creates the handler for /carousels.
func NewCarouselHandler(s service.CarouselService, logger zerolog.Logger) *ContentHandler[model.Carousel, model.CarouselInput] {
	return newContentHandler[model.Carousel, model.CarouselInput](s, "Carousel", "Carousels", "carousel", logger)
}

// NewPaymentMethodHandler creates the handler for /payment-methods.
func NewPaymentMethodHandler(s service.PaymentMethodService, logger zerolog.Logger) *ContentHandler[model.PaymentMethod, model.PaymentMethodInput] {
	return newContentHandler[model.PaymentMethod, model.PaymentMethodInput](s, "Payment method", "Payment methods", "payment-method", logger)
}

func newContentHandler[T, In any](s contentService[T, In], noun, plural, name string, logger zerolog.Logger) *ContentHandler[T, In] {
	return &ContentHandler[T, In]{
		service: s,
		noun:    noun,
		plural:  plural,
		logger:  logger.With().Str("handler", name).Logger(),
	}
}

func (h *ContentHandler[T, In]) Create(w http.ResponseWriter, r *http.Request) {
	var in In
	if err := decode(w, r, &in); err != nil {
		writeError(w, err, h.logger)
		return
	}

	item, err := h.service.Create(r.Context(), &in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusCreated, h.noun+" created successfully", item)
}

func (h *ContentHandler[T, In]) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	item, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, h.noun+" retrieved successfully", item)
}

func (h *ContentHandler[T, In]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	var in In
	if err := decode(w, r, &in); err != nil {
		writeError(w, err, h.logger)
		return
	}

	item, err := h.service.Update(r.Context(), id, &in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, h.noun+" updated successfully", item)
}

func (h *ContentHandler[T, In]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, h.noun+" deleted successfully", nil)
}

// ListActive is the public listing, ordered by display order.
func (h *ContentHandler[T, In]) ListActive(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListActive(r.Context())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	if items == nil {
		items = []T{}
	}
	respond(w, http.StatusOK, h.plural+" retrieved successfully", items)
}

// List is the admin listing with the query builder.
func (h *ContentHandler[T, In]) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respondPage(w, h.plural+" retrieved successfully", page, h.logger)
}

// FlashSaleHandler handles flash sale requests.
type FlashSaleHandler struct {
	service service.FlashSaleService
	logger  zerolog.Logger
}

// NewFlashSaleHandler creates a new flash sale handler.
func NewFlashSaleHandler(service service.FlashSaleService, logger zerolog.Logger) *FlashSaleHandler {
	return &FlashSaleHandler{
		service: service,
		logger:  logger.With().Str("handler", "flash-sale").Logger(),
	}
}

func (h *FlashSaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.FlashSaleInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err, h.logger)
		return
	}

	sale, err := h.service.Create(r.Context(), &in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusCreated, "Flash sale created successfully", sale)
}

func (h *FlashSaleHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respondPage(w, "Flash sales retrieved successfully", page, h.logger)
}

// Active handles GET /flash-sales/active.
func (h *FlashSaleHandler) Active(w http.ResponseWriter, r *http.Request) {
	h.running(w, r, false)
}

// Featured handles GET /flash-sales/featured.
func (h *FlashSaleHandler) Featured(w http.ResponseWriter, r *http.Request) {
	h.running(w, r, true)
}

func (h *FlashSaleHandler) running(w http.ResponseWriter, r *http.Request, featuredOnly bool) {
	sales, err := h.service.ListRunning(r.Context(), featuredOnly)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	if sales == nil {
		sales = []model.FlashSale{}
	}
	respond(w, http.StatusOK, "Flash sales retrieved successfully", sales)
}

func (h *FlashSaleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	sale, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Flash sale retrieved successfully", sale)
}

func (h *FlashSaleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	var in model.FlashSaleInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err, h.logger)
		return
	}

	sale, err := h.service.Update(r.Context(), id, &in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Flash sale updated successfully", sale)
}

func (h *FlashSaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Flash sale deleted successfully", nil)
}
