package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/syslvlup/syslvlup/internal/api/apierr"
	"github.com/syslvlup/syslvlup/internal/api/middleware"
	"github.com/syslvlup/syslvlup/internal/api/request"
	"github.com/syslvlup/syslvlup/internal/api/response"
	"github.com/syslvlup/syslvlup/internal/services/auth"
	"github.com/syslvlup/syslvlup/internal/services/syncstore"
)

// SyncHandler handles the profile sync endpoints
type SyncHandler struct {
	store *syncstore.Service
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(store *syncstore.Service) *SyncHandler {
	return &SyncHandler{
		store: store,
	}
}

// Sync handles POST /api/sync
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req request.SyncRequest
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if req.UserID == "" {
		WriteError(w, NewInvalidRequestError("userId is required"))
		return
	}
	if len(req.LocalStorageData) == 0 {
		WriteError(w, NewInvalidRequestError("localStorageData is required"))
		return
	}
	if err := authorize(r, req.UserID); err != nil {
		WriteError(w, err)
		return
	}

	if _, err := h.store.Save(r.Context(), req.UserID, req.LocalStorageData); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SyncResponse{Success: true})
}

// GetUser handles GET /api/user/{userId}
func (h *SyncHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if err := authorize(r, userID); err != nil {
		WriteError(w, err)
		return
	}

	data, err := h.store.Load(r.Context(), userID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.UserDataFromModel(data))
}

// authorize rejects requests whose bearer token belongs to another user.
// Anonymous ids may sync without a token; account ids need their own token.
func authorize(r *http.Request, userID string) error {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		if strings.HasPrefix(userID, auth.AccountIDPrefix) {
			return apierr.NewUnauthorizedError()
		}
		return nil
	}
	if claims.UserID != userID {
		return apierr.NewForbiddenError("token does not belong to this user")
	}
	return nil
}
