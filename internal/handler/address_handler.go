package handler

import (
	"net/http"

	"shopfront/internal/model"
	"shopfront/internal/service"

	"github.com/rs/zerolog"
)

// AddressHandler handles the current user's saved addresses.
type AddressHandler struct {
	service service.AddressService
	logger  zerolog.Logger
}

// NewAddressHandler creates a new address handler.
func NewAddressHandler(service service.AddressService, logger zerolog.Logger) *AddressHandler {
	return &AddressHandler{
		service: service,
		logger:  logger.With().Str("handler", "address").Logger(),
	}
}

func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.AddressInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err, h.logger)
		return
	}

	address, err := h.service.Create(r.Context(), currentUser(r).ID, &in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusCreated, "Address created successfully", address)
}

// List handles GET /addresses, default address first.
func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.service.List(r.Context(), currentUser(r).ID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	if addresses == nil {
		addresses = []model.Address{}
	}
	respond(w, http.StatusOK, "Addresses retrieved successfully", addresses)
}

func (h *AddressHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "addressId")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	address, err := h.service.Get(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Address retrieved successfully", address)
}

func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "addressId")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	var in model.AddressInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err, h.logger)
		return
	}

	address, err := h.service.Update(r.Context(), currentUser(r).ID, id, &in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Address updated successfully", address)
}

func (h *AddressHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "addressId")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	address, err := h.service.SetDefault(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Default address updated successfully", address)
}

func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "addressId")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), currentUser(r).ID, id); err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Address deleted successfully", nil)
}
