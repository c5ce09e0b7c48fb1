package handler

import (
	"net/http"
	"strings"

	"github.com/syslvlup/syslvlup/internal/api/middleware"
	"github.com/syslvlup/syslvlup/internal/api/request"
	"github.com/syslvlup/syslvlup/internal/api/response"
	"github.com/syslvlup/syslvlup/internal/services/auth"
)

// AuthHandler handles account, token and device link endpoints
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (request.CredentialsRequest, error) {
	var req request.CredentialsRequest
	if err := decodeBody(w, r, &req); err != nil {
		return req, err
	}
	if strings.TrimSpace(req.Email) == "" {
		return req, NewInvalidRequestError("email is required")
	}
	if req.Password == "" {
		return req, NewInvalidRequestError("password is required")
	}
	return req, nil
}

// Register handles POST /api/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(w, r)
	if err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.authService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession(session))
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(w, r)
	if err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session))
}

// Verify handles GET /api/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims := middleware.MustGetClaims(r.Context())

	response.JSON(w, http.StatusOK, response.VerifyResponse{
		Valid:  true,
		UserID: claims.UserID,
		Email:  claims.Email,
	})
}

// CreateDeviceLink handles POST /api/device-link
func (h *AuthHandler) CreateDeviceLink(w http.ResponseWriter, r *http.Request) {
	claims := middleware.MustGetClaims(r.Context())

	link, err := h.authService.CreateDeviceLink(claims.UserID, claims.Email)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.DeviceLink{
		Code:      link.Code,
		ExpiresAt: link.ExpiresAt,
	})
}

// RedeemDeviceLink handles POST /api/device-link/redeem
func (h *AuthHandler) RedeemDeviceLink(w http.ResponseWriter, r *http.Request) {
	var req request.RedeemLinkRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		WriteError(w, NewInvalidRequestError("code is required"))
		return
	}

	session, err := h.authService.RedeemDeviceLink(r.Context(), strings.TrimSpace(req.Code))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session))
}
