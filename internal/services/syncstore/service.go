// Package syncstore keeps the remote copy of each user's profile document.
package syncstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/syslvlup/syslvlup/internal/dependencies/clock"
	"github.com/syslvlup/syslvlup/internal/model"
	"github.com/syslvlup/syslvlup/internal/storage"
)

// Service saves and loads sync payloads
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new sync store Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// Save replaces the stored payload for userID. The payload must be a JSON
// object; it is stored as received and stamped with the current time.
func (s *Service) Save(ctx context.Context, userID string, payload json.RawMessage) (*model.UserData, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, model.ErrMissingUserID
	}
	if !isObject(payload) {
		return nil, model.ErrInvalidPayload
	}

	data := &model.UserData{
		UserID:      userID,
		Payload:     append(json.RawMessage(nil), payload...),
		LastUpdated: s.clock.Now().UTC(),
	}
	if err := s.storage.SaveUserData(ctx, data); err != nil {
		return nil, fmt.Errorf("save user data: %w", err)
	}

	s.logger.Debug("user data saved",
		slog.String("user_id", userID),
		slog.Int("bytes", len(payload)),
	)
	return data, nil
}

// Load returns the stored payload for userID or model.ErrUserDataNotFound
func (s *Service) Load(ctx context.Context, userID string) (*model.UserData, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, model.ErrMissingUserID
	}
	return s.storage.GetUserData(ctx, userID)
}

func isObject(payload json.RawMessage) bool {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	return json.Valid(trimmed)
}
