package response

import (
	"encoding/json"
	"time"

	"github.com/syslvlup/syslvlup/internal/model"
	"github.com/syslvlup/syslvlup/internal/services/auth"
)

// SyncResponse is the response for POST /api/sync
type SyncResponse struct {
	Success bool `json:"success"`
}

// UserData is the response for GET /api/user/{userId}
type UserData struct {
	UserID       string          `json:"userId"`
	LocalStorage json.RawMessage `json:"localStorage"`
	LastUpdated  time.Time       `json:"lastUpdated"`
}

// UserDataFromModel converts model.UserData
func UserDataFromModel(d *model.UserData) UserData {
	return UserData{
		UserID:       d.UserID,
		LocalStorage: d.Payload,
		LastUpdated:  d.LastUpdated,
	}
}

// AuthResponse is the response for register, login and link redemption
type AuthResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Token:     s.Token,
		UserID:    s.UserID,
		Email:     s.Email,
		ExpiresAt: s.ExpiresAt,
	}
}

// VerifyResponse is the response for GET /api/verify
type VerifyResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// DeviceLink is the response for POST /api/device-link
type DeviceLink struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Health is the response for GET /api/health
type Health struct {
	Status string `json:"status"`
}
