package handler

import (
	"net/http"

	"shopfront/internal/model"
	"shopfront/internal/service"

	"github.com/rs/zerolog"
)

// TransactionHandler handles reported payments.
type TransactionHandler struct {
	service service.TransactionService
	logger  zerolog.Logger
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(service service.TransactionService, logger zerolog.Logger) *TransactionHandler {
	return &TransactionHandler{
		service: service,
		logger:  logger.With().Str("handler", "transaction").Logger(),
	}
}

// Create handles POST /transactions.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTransactionRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	txn, err := h.service.Create(r.Context(), currentUser(r).ID, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusCreated, "Transaction submitted successfully", txn)
}

// ListMine handles GET /transactions/history/user.
func (h *TransactionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListMine(r.Context(), currentUser(r).ID, r.URL.Query())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respondPage(w, "Transactions retrieved successfully", page, h.logger)
}

// ListAll handles GET /transactions/history/all.
func (h *TransactionHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListAll(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respondPage(w, "Transactions retrieved successfully", page, h.logger)
}

// ListByOrder handles GET /transactions/order/{orderId}.
func (h *TransactionHandler) ListByOrder(w http.ResponseWriter, r *http.Request) {
	txns, err := h.service.ListByOrder(r.Context(), currentUser(r), r.PathValue("orderId"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	if txns == nil {
		txns = []model.Transaction{}
	}
	respond(w, http.StatusOK, "Transactions retrieved successfully", txns)
}

// GetByID handles GET /transactions/{id}, where id is the UUID or TXN- id.
func (h *TransactionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	txn, err := h.service.GetByRef(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Transaction retrieved successfully", txn)
}

// UpdateStatus handles PATCH /transactions/{id}/status.
func (h *TransactionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateTransactionStatusRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	txn, err := h.service.UpdateStatus(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Transaction status updated successfully", txn)
}
