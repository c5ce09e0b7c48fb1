package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/syslvlup/syslvlup/internal/model"
	"github.com/syslvlup/syslvlup/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	userData   map[string]model.UserData
	accounts   map[string]model.Account
	emailIndex map[string]string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		userData:   make(map[string]model.UserData),
		accounts:   make(map[string]model.Account),
		emailIndex: make(map[string]string),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op for memory storage
func (s *Storage) Close() error {
	return nil
}

// Sync payload operations

func (s *Storage) SaveUserData(ctx context.Context, data *model.UserData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *data
	stored.Payload = append([]byte(nil), data.Payload...)
	s.userData[data.UserID] = stored
	return nil
}

func (s *Storage) GetUserData(ctx context.Context, userID string) (*model.UserData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.userData[userID]
	if !ok {
		return nil, model.ErrUserDataNotFound
	}
	data.Payload = append([]byte(nil), data.Payload...)
	return &data, nil
}

func (s *Storage) DeleteUserData(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.userData, userID)
	return nil
}

// Account operations

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.UserID] = *account
	s.emailIndex[strings.ToLower(account.Email)] = account.UserID
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, userID string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[userID]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return &account, nil
}

func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.emailIndex[strings.ToLower(email)]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	account, ok := s.accounts[userID]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return &account, nil
}
