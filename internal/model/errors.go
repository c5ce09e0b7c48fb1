package model

import "errors"

// Common errors used across the application
var (
	// Storage errors
	ErrUserDataNotFound = errors.New("user data not found")
	ErrAccountNotFound  = errors.New("account not found")

	// Payload errors
	ErrInvalidPayload = errors.New("payload must be a JSON object")
	ErrMissingUserID  = errors.New("user id is required")

	// Identity errors
	ErrIdentityConflict = errors.New("authenticated identity replaced an anonymous identity with local data")
)
