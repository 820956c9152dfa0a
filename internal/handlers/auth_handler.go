package handlers

import (
	"net/http"

	"github.com/gotodo/gotodo/internal/middleware"
	"github.com/gotodo/gotodo/internal/models"
	"github.com/gotodo/gotodo/internal/services"
)

// RefreshRequest is the optional body of POST /api/v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthHandler handles sign-in and token refresh.
type AuthHandler struct {
	service services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc services.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// SignIn handles POST /api/v1/auth/sign-in.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		writeError(w, err)
		return
	}

	tokens, err := h.service.SignIn(r.Context(), creds)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, tokens)
}

// Refresh handles POST /api/v1/auth/refresh. The refresh token is read from
// the Authorization header, or from the body when no header is sent.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	raw, ok := middleware.BearerToken(r)
	if !ok && r.ContentLength != 0 {
		var req RefreshRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		raw = req.RefreshToken
	}

	tokens, err := h.service.Refresh(r.Context(), raw)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, tokens)
}
