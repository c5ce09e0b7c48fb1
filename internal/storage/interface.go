package storage

import (
	"context"

	"github.com/syslvlup/syslvlup/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Sync payload operations
	SaveUserData(ctx context.Context, data *model.UserData) error
	GetUserData(ctx context.Context, userID string) (*model.UserData, error)
	DeleteUserData(ctx context.Context, userID string) error

	// Account operations
	SaveAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, userID string) (*model.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)

	// Close releases any underlying connection
	Close() error
}
