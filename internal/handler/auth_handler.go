package handler

import (
	"net/http"

	"shopfront/internal/model"
	"shopfront/internal/service"

	"github.com/rs/zerolog"
)

// AuthHandler handles sign-up, login and password flows.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("handler", "auth").Logger(),
	}
}

// SignUp handles POST /auth/sign-up.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req model.SignUpRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	user, err := h.service.SignUp(r.Context(), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusCreated, "User registered successfully", user)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	res, err := h.service.Login(r.Context(), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "User logged in successfully", res)
}

// RefreshToken handles POST /auth/refresh-token.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshTokenRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	tokens, err := h.service.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Access token is retrieved successfully", tokens)
}

// ChangePassword handles POST /auth/change-password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req model.ChangePasswordRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.service.ChangePassword(r.Context(), currentUser(r), &req); err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Password changed successfully", nil)
}

// RequestPasswordReset handles POST /auth/request-password-reset. The reply
// is the same whether or not the address belongs to an account.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req model.PasswordResetRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "If an account exists for this email, a password reset link has been sent", nil)
}

// ResetPassword handles POST /auth/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req model.ResetPasswordRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.service.ResetPassword(r.Context(), &req); err != nil {
		writeError(w, err, h.logger)
		return
	}
	respond(w, http.StatusOK, "Password reset successfully", nil)
}
