package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/syslvlup/syslvlup/internal/model"
)

// Device link errors
var (
	ErrInvalidLink = errors.New("invalid device link")
	ErrLinkExpired = errors.New("device link expired")
)

// DeviceLink is a code another device redeems to sign in as the same user
type DeviceLink struct {
	Code      string
	ExpiresAt time.Time
}

// linkPayload is the base64-encoded JSON blob carried by a device link
type linkPayload struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Timestamp int64  `json:"timestamp"` // unix millis
	Sig       string `json:"sig"`
}

func (s *Service) sign(userID, email string, ts int64) string {
	mac := hmac.New(sha256.New, s.cfg.Secret)
	mac.Write([]byte(userID))
	mac.Write([]byte{0})
	mac.Write([]byte(email))
	mac.Write([]byte{0})
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// CreateDeviceLink encodes the caller's identity into a short-lived link code
func (s *Service) CreateDeviceLink(userID, email string) (*DeviceLink, error) {
	now := s.clock.Now()
	ts := now.UnixMilli()

	data, err := json.Marshal(linkPayload{
		UserID:    userID,
		Email:     email,
		Timestamp: ts,
		Sig:       s.sign(userID, email, ts),
	})
	if err != nil {
		return nil, err
	}

	return &DeviceLink{
		Code:      base64.StdEncoding.EncodeToString(data),
		ExpiresAt: now.Add(s.cfg.LinkTTL),
	}, nil
}

// RedeemDeviceLink validates a link code and issues a session for its user
func (s *Service) RedeemDeviceLink(ctx context.Context, code string) (*Session, error) {
	raw, err := base64.StdEncoding.DecodeString(code)
	if err != nil {
		return nil, fmt.Errorf("%w: not base64", ErrInvalidLink)
	}

	var payload linkPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: not json", ErrInvalidLink)
	}
	if payload.UserID == "" {
		return nil, fmt.Errorf("%w: missing user", ErrInvalidLink)
	}

	expected := s.sign(payload.UserID, payload.Email, payload.Timestamp)
	if !hmac.Equal([]byte(expected), []byte(payload.Sig)) {
		return nil, fmt.Errorf("%w: bad signature", ErrInvalidLink)
	}

	issued := time.UnixMilli(payload.Timestamp)
	age := s.clock.Now().Sub(issued)
	if age > s.cfg.LinkTTL || age < -s.cfg.LinkTTL {
		return nil, ErrLinkExpired
	}

	account, err := s.storage.GetAccount(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: unknown user", ErrInvalidLink)
		}
		return nil, err
	}

	s.logger.Info("device link redeemed", slog.String("user_id", account.UserID))
	return s.issue(account.UserID, account.Email)
}
