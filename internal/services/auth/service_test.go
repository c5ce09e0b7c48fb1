package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/syslvlup/syslvlup/internal/dependencies/mocks"
	"github.com/syslvlup/syslvlup/internal/storage/memory"
	"github.com/syslvlup/syslvlup/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	cfg := DefaultConfig()
	cfg.Secret = []byte("test-secret")
	cfg.BcryptCost = bcrypt.MinCost
	s.service = New(s.storage, s.clock, cfg, testutil.NopLogger())
	s.ctx = context.Background()
}

// Register tests

func (s *ServiceSuite) TestRegisterSucceeds() {
	session, err := s.service.Register(s.ctx, "hunter@example.com", "password123")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.NotEmpty(session.UserID)
	s.Equal("hunter@example.com", session.Email)
	s.Equal(s.clock.Now().Add(DefaultConfig().TokenTTL), session.ExpiresAt)
}

func (s *ServiceSuite) TestRegisterPersistsHashedPassword() {
	session, _ := s.service.Register(s.ctx, "hunter@example.com", "password123")

	account, err := s.storage.GetAccount(s.ctx, session.UserID)
	s.Require().NoError(err)
	s.NotEmpty(account.PasswordHash)
	s.NotEqual("password123", account.PasswordHash)
}

func (s *ServiceSuite) TestRegisterNormalizesEmail() {
	session, err := s.service.Register(s.ctx, "  Hunter@Example.COM ", "password123")
	s.Require().NoError(err)
	s.Equal("hunter@example.com", session.Email)
}

func (s *ServiceSuite) TestRegisterDuplicateEmailFails() {
	_, _ = s.service.Register(s.ctx, "hunter@example.com", "password123")

	_, err := s.service.Register(s.ctx, "HUNTER@example.com", "different456")
	s.ErrorIs(err, ErrEmailExists)
}

func (s *ServiceSuite) TestRegisterRejectsInvalidEmail() {
	for _, email := range []string{"", "hunter", "@example.com", "hunter@"} {
		_, err := s.service.Register(s.ctx, email, "password123")
		s.ErrorIs(err, ErrInvalidEmail, email)
	}
}

func (s *ServiceSuite) TestRegisterRejectsShortPassword() {
	_, err := s.service.Register(s.ctx, "hunter@example.com", "abc")
	s.ErrorIs(err, ErrWeakPassword)
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	registered, _ := s.service.Register(s.ctx, "hunter@example.com", "password123")

	session, err := s.service.Login(s.ctx, "hunter@example.com", "password123")
	s.Require().NoError(err)
	s.Equal(registered.UserID, session.UserID)
	s.NotEmpty(session.Token)
}

func (s *ServiceSuite) TestLoginIssuesDistinctTokens() {
	registered, _ := s.service.Register(s.ctx, "hunter@example.com", "password123")

	session, err := s.service.Login(s.ctx, "hunter@example.com", "password123")
	s.Require().NoError(err)
	s.NotEqual(registered.Token, session.Token)
}

func (s *ServiceSuite) TestLoginWrongPasswordFails() {
	_, _ = s.service.Register(s.ctx, "hunter@example.com", "password123")

	_, err := s.service.Login(s.ctx, "hunter@example.com", "wrongpassword")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginUnknownEmailFails() {
	_, err := s.service.Login(s.ctx, "nobody@example.com", "password123")
	s.ErrorIs(err, ErrInvalidCredentials)
}

// Verify tests

func (s *ServiceSuite) TestVerifyValidToken() {
	session, _ := s.service.Register(s.ctx, "hunter@example.com", "password123")

	claims, err := s.service.Verify(session.Token)
	s.Require().NoError(err)
	s.Equal(session.UserID, claims.UserID)
	s.Equal("hunter@example.com", claims.Email)
}

func (s *ServiceSuite) TestVerifyExpiredToken() {
	session, _ := s.service.Register(s.ctx, "hunter@example.com", "password123")

	s.clock.Advance(DefaultConfig().TokenTTL + time.Minute)

	_, err := s.service.Verify(session.Token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestVerifyEmptyToken() {
	_, err := s.service.Verify("")
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestVerifyGarbageToken() {
	_, err := s.service.Verify("not-a-jwt")
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestVerifyRejectsForeignSecret() {
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   "u_attacker",
			ExpiresAt: jwt.NewNumericDate(s.clock.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	s.Require().NoError(err)

	_, err = s.service.Verify(forged)
	s.ErrorIs(err, ErrInvalidToken)
}

// Device link tests

func (s *ServiceSuite) TestDeviceLinkRoundTrip() {
	session, _ := s.service.Register(s.ctx, "hunter@example.com", "password123")

	link, err := s.service.CreateDeviceLink(session.UserID, session.Email)
	s.Require().NoError(err)
	s.Equal(s.clock.Now().Add(5*time.Minute), link.ExpiresAt)

	s.clock.Advance(2 * time.Minute)

	redeemed, err := s.service.RedeemDeviceLink(s.ctx, link.Code)
	s.Require().NoError(err)
	s.Equal(session.UserID, redeemed.UserID)
	s.Equal(session.Email, redeemed.Email)
}

func (s *ServiceSuite) TestDeviceLinkCarriesPayloadFields() {
	link, _ := s.service.CreateDeviceLink("u_1", "hunter@example.com")

	raw, err := base64.StdEncoding.DecodeString(link.Code)
	s.Require().NoError(err)

	var payload map[string]any
	s.Require().NoError(json.Unmarshal(raw, &payload))
	s.Equal("u_1", payload["userId"])
	s.Equal("hunter@example.com", payload["email"])
	s.EqualValues(s.clock.Now().UnixMilli(), payload["timestamp"])
	s.NotEmpty(payload["sig"])
}

func (s *ServiceSuite) TestDeviceLinkExpires() {
	session, _ := s.service.Register(s.ctx, "hunter@example.com", "password123")
	link, _ := s.service.CreateDeviceLink(session.UserID, session.Email)

	s.clock.Advance(5*time.Minute + time.Second)

	_, err := s.service.RedeemDeviceLink(s.ctx, link.Code)
	s.ErrorIs(err, ErrLinkExpired)
}

func (s *ServiceSuite) TestDeviceLinkTamperedFails() {
	session, _ := s.service.Register(s.ctx, "hunter@example.com", "password123")
	link, _ := s.service.CreateDeviceLink(session.UserID, session.Email)

	raw, _ := base64.StdEncoding.DecodeString(link.Code)
	var payload linkPayload
	s.Require().NoError(json.Unmarshal(raw, &payload))
	payload.UserID = "u_someone_else"
	tampered, _ := json.Marshal(payload)

	_, err := s.service.RedeemDeviceLink(s.ctx, base64.StdEncoding.EncodeToString(tampered))
	s.ErrorIs(err, ErrInvalidLink)
}

func (s *ServiceSuite) TestDeviceLinkGarbageFails() {
	_, err := s.service.RedeemDeviceLink(s.ctx, "%%%")
	s.ErrorIs(err, ErrInvalidLink)

	_, err = s.service.RedeemDeviceLink(s.ctx, base64.StdEncoding.EncodeToString([]byte("nope")))
	s.ErrorIs(err, ErrInvalidLink)
}

func (s *ServiceSuite) TestDeviceLinkUnknownUserFails() {
	link, _ := s.service.CreateDeviceLink("u_deleted", "gone@example.com")

	_, err := s.service.RedeemDeviceLink(s.ctx, link.Code)
	s.ErrorIs(err, ErrInvalidLink)
}
