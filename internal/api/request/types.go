package request

import "encoding/json"

// SyncRequest is the request body for POST /api/sync
type SyncRequest struct {
	UserID           string          `json:"userId"`
	LocalStorageData json.RawMessage `json:"localStorageData"`
}

// CredentialsRequest is the request body for registering and logging in
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RedeemLinkRequest is the request body for redeeming a device link
type RedeemLinkRequest struct {
	Code string `json:"code"`
}
