package handler

import (
	"net/http"

	"shopfront/internal/model"
	"shopfront/internal/service"

	"github.com/rs/zerolog"
)

// CouponHandler handles coupon requests.
type CouponHandler struct {
	service service.CouponService
	logger  zerolog.Logger
}

// NewCouponHandler creates a new coupon handler.
func NewCouponHandler(service service.CouponService, logger zerolog.Logger) *CouponHandler {
	return &CouponHandler{
		service: service,
		logger:  logger.With().Str("handler", "coupon").Logger(),
	}
}

func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.CouponInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err, h.logger)
		return
	}

	coupon, err := h.service.Create(r.Context(), &in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusCreated, "Coupon created successfully", coupon)
}

func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respondPage(w, "Coupons retrieved successfully", page, h.logger)
}

// GetByCode handles GET /coupons/{code}.
func (h *CouponHandler) GetByCode(w http.ResponseWriter, r *http.Request) {
	coupon, err := h.service.GetByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Coupon retrieved successfully", coupon)
}

// Validate handles POST /coupons/validate.
func (h *CouponHandler) Validate(w http.ResponseWriter, r *http.Request) {
	h.quote(w, r, "Coupon is valid")
}

// Apply handles POST /coupons/apply. It previews the discount; the use is
// only taken when the order is placed.
func (h *CouponHandler) Apply(w http.ResponseWriter, r *http.Request) {
	h.quote(w, r, "Coupon applied successfully")
}

func (h *CouponHandler) quote(w http.ResponseWriter, r *http.Request, message string) {
	var req model.ValidateCouponRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	quote, err := h.service.Validate(r.Context(), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, message, quote)
}

func (h *CouponHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "couponId")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	var in model.CouponInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err, h.logger)
		return
	}

	coupon, err := h.service.Update(r.Context(), id, &in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Coupon updated successfully", coupon)
}

func (h *CouponHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "couponId")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Coupon deleted successfully", nil)
}

// Import handles POST /coupons/import.
func (h *CouponHandler) Import(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Import(r.Context())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Coupons imported successfully", result)
}
