package model

import (
	"encoding/json"
	"time"
)

// IdentityKind distinguishes anonymous device ids from server-issued ones
type IdentityKind string

const (
	IdentityAnonymous     IdentityKind = "anonymous"
	IdentityAuthenticated IdentityKind = "authenticated"
)

// Identity is the id used as the sync key
type Identity struct {
	ID    string       `json:"id"`
	Kind  IdentityKind `json:"kind"`
	Email string       `json:"email,omitempty"`
	Token string       `json:"token,omitempty"`
}

// IsAuthenticated reports whether the identity was issued by the server
func (i Identity) IsAuthenticated() bool {
	return i.Kind == IdentityAuthenticated
}

// UserData is the remote document stored per user id
type UserData struct {
	UserID      string          `json:"userId"`
	Payload     json.RawMessage `json:"payload"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// Account is a registered user on the sync server
// The password hash never leaves the server
type Account struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"` // normalized lowercase
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}
