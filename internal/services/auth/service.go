package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/syslvlup/syslvlup/internal/dependencies/clock"
	"github.com/syslvlup/syslvlup/internal/model"
	"github.com/syslvlup/syslvlup/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password is too short")
)

const (
	// MinPasswordLength is the shortest password Register accepts
	MinPasswordLength = 6

	// AccountIDPrefix starts every server-issued user id
	AccountIDPrefix = "u_"

	tokenIssuer = "syslvlup"
)

// Session is the result of a successful register, login or link redemption
type Session struct {
	Token     string
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// Claims are the verified contents of a session token
type Claims struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Config holds configuration for the auth service
type Config struct {
	// Secret signs session tokens and device links
	Secret []byte
	// TokenTTL is how long a session token stays valid
	TokenTTL time.Duration
	// LinkTTL is the freshness window of a device link
	LinkTTL time.Duration
	// BcryptCost is the password hashing cost
	BcryptCost int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		Secret:     []byte("dev-secret-change-me"),
		TokenTTL:   30 * 24 * time.Hour,
		LinkTTL:    5 * time.Minute,
		BcryptCost: bcrypt.DefaultCost,
	}
}

// Service handles accounts, session tokens and device links
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	cfg     Config
	logger  *slog.Logger
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, cfg Config, logger *slog.Logger) *Service {
	defaults := DefaultConfig()
	if len(cfg.Secret) == 0 {
		cfg.Secret = defaults.Secret
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = defaults.TokenTTL
	}
	if cfg.LinkTTL == 0 {
		cfg.LinkTTL = defaults.LinkTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = defaults.BcryptCost
	}
	return &Service{
		storage: storage,
		clock:   clock,
		cfg:     cfg,
		logger:  logger,
	}
}

func normalizeEmail(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	at := strings.Index(e, "@")
	if at <= 0 || at == len(e)-1 {
		return "", ErrInvalidEmail
	}
	return e, nil
}

// Register creates an account and returns a session for it
func (s *Service) Register(ctx context.Context, email, password string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	// Check if email exists
	_, err = s.storage.GetAccountByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, model.ErrAccountNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		UserID:       AccountIDPrefix + uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.storage.SaveAccount(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("account registered", slog.String("user_id", account.UserID))
	return s.issue(account.UserID, account.Email)
}

// Login checks credentials and returns a new session
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	account, err := s.storage.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(account.UserID, account.Email)
}

// Verify validates a session token and returns its claims
func (s *Service) Verify(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (any, error) {
		return s.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if parsed.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &Claims{
		UserID:    parsed.Subject,
		Email:     parsed.Email,
		ExpiresAt: parsed.ExpiresAt.Time,
	}, nil
}

// issue signs a new session token
func (s *Service) issue(userID, email string) (*Session, error) {
	now := s.clock.Now()
	expires := now.Add(s.cfg.TokenTTL)

	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Email: email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Session{
		Token:     signed,
		UserID:    userID,
		Email:     email,
		ExpiresAt: expires,
	}, nil
}
