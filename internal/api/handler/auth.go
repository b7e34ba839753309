package handler

import (
	"net/http"

	"github.com/mcoot/teamboard/internal/api/apierr"
	"github.com/mcoot/teamboard/internal/api/middleware"
	"github.com/mcoot/teamboard/internal/api/request"
	"github.com/mcoot/teamboard/internal/api/response"
	"github.com/mcoot/teamboard/internal/model"
	"github.com/mcoot/teamboard/internal/services/auth"
)

// AuthHandler handles account endpoints
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	session, err := h.authService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession(session))
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session))
}

// Verify handles GET /api/v1/auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetCredential(r.Context())
	if token == "" {
		apierr.WriteError(w, model.ErrUnauthenticated)
		return
	}

	user, err := h.authService.Verify(r.Context(), token)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.VerifyResponse{
		Valid: true,
		User:  response.UserFromModel(user),
	})
}
