// Package sqlite provides a SQLite-backed storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/syslvlup/syslvlup/internal/model"
	"github.com/syslvlup/syslvlup/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS user_data (
	user_id      TEXT PRIMARY KEY,
	payload      TEXT NOT NULL,
	last_updated INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
	user_id       TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    INTEGER NOT NULL
);
`

// Storage persists sync payloads and accounts in SQLite
type Storage struct {
	db *sql.DB
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Open opens (creating if needed) the database at path and applies the schema
func Open(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the SQLite handle
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Sync payload operations

func (s *Storage) SaveUserData(ctx context.Context, data *model.UserData) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_data (user_id, payload, last_updated) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET payload = excluded.payload, last_updated = excluded.last_updated`,
		data.UserID,
		string(data.Payload),
		toMillis(data.LastUpdated),
	)
	if err != nil {
		return fmt.Errorf("save user data: %w", err)
	}
	return nil
}

func (s *Storage) GetUserData(ctx context.Context, userID string) (*model.UserData, error) {
	var (
		payload string
		updated int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, last_updated FROM user_data WHERE user_id = ?`,
		userID,
	).Scan(&payload, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserDataNotFound
		}
		return nil, fmt.Errorf("get user data: %w", err)
	}
	return &model.UserData{
		UserID:      userID,
		Payload:     []byte(payload),
		LastUpdated: fromMillis(updated),
	}, nil
}

func (s *Storage) DeleteUserData(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_data WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete user data: %w", err)
	}
	return nil
}

// Account operations

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (user_id, email, password_hash, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET email = excluded.email, password_hash = excluded.password_hash`,
		account.UserID,
		strings.ToLower(account.Email),
		account.PasswordHash,
		toMillis(account.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, userID string) (*model.Account, error) {
	return s.queryAccount(ctx, `SELECT user_id, email, password_hash, created_at FROM accounts WHERE user_id = ?`, userID)
}

func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	return s.queryAccount(ctx, `SELECT user_id, email, password_hash, created_at FROM accounts WHERE email = ?`, strings.ToLower(email))
}

func (s *Storage) queryAccount(ctx context.Context, query string, arg string) (*model.Account, error) {
	var (
		account model.Account
		created int64
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&account.UserID, &account.Email, &account.PasswordHash, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	account.CreatedAt = fromMillis(created)
	return &account, nil
}
