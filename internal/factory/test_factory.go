package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/syslvlup/syslvlup/internal/dependencies/mocks"
	"github.com/syslvlup/syslvlup/internal/services/auth"
	"github.com/syslvlup/syslvlup/internal/storage/memory"
	"github.com/syslvlup/syslvlup/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	Memory    *memory.Storage
}

// NewTestApp creates an App backed by memory storage and a mock clock
// fixed at Monday 2024-01-01 12:00 UTC
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	authCfg := auth.DefaultConfig()
	authCfg.Secret = []byte("test-secret")
	authCfg.BcryptCost = bcrypt.MinCost

	app := newWithDependencies(store, mockClock, authCfg, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		Memory:    store,
	}
}
