package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/syslvlup/syslvlup/internal/model"
	"github.com/syslvlup/syslvlup/internal/storage"
)

// anonymousIDPrefix marks ids generated on devices without an account
const anonymousIDPrefix = "user_"

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// storedUserData is the JSON document kept under a user data key
type storedUserData struct {
	Payload     json.RawMessage `json:"payload"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// Sync payload operations

func (s *Storage) SaveUserData(ctx context.Context, data *model.UserData) error {
	doc, err := json.Marshal(storedUserData{Payload: data.Payload, LastUpdated: data.LastUpdated})
	if err != nil {
		return err
	}

	// Expire only anonymous payloads
	var ttl time.Duration
	if strings.HasPrefix(data.UserID, anonymousIDPrefix) {
		ttl = s.cfg.AnonymousDataTTL
	}

	return s.client.Set(ctx, userDataKey(data.UserID), doc, ttl).Err()
}

func (s *Storage) GetUserData(ctx context.Context, userID string) (*model.UserData, error) {
	raw, err := s.client.Get(ctx, userDataKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserDataNotFound
		}
		return nil, err
	}

	var doc storedUserData
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &model.UserData{
		UserID:      userID,
		Payload:     doc.Payload,
		LastUpdated: doc.LastUpdated,
	}, nil
}

func (s *Storage) DeleteUserData(ctx context.Context, userID string) error {
	return s.client.Del(ctx, userDataKey(userID)).Err()
}

// Account operations

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, accountKey(account.UserID), data, 0)
	pipe.Set(ctx, emailIndexKey(account.Email), account.UserID, 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetAccount(ctx context.Context, userID string) (*model.Account, error) {
	data, err := s.client.Get(ctx, accountKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	var account model.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	// Look up user ID from email index
	userID, err := s.client.Get(ctx, emailIndexKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	return s.GetAccount(ctx, userID)
}
