package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/syslvlup/syslvlup/internal/model"
	"github.com/syslvlup/syslvlup/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	path   string
	sqlite *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "syslvl.db")

	store, err := Open(s.path)
	s.Require().NoError(err)

	s.sqlite = store
	s.Storage = store
	s.Ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.sqlite != nil {
		_ = s.sqlite.Close()
	}
}

func (s *StorageSuite) TestDataSurvivesReopen() {
	data := &model.UserData{UserID: "u", Payload: json.RawMessage(`{"level":5}`)}
	s.Require().NoError(s.sqlite.SaveUserData(s.Ctx, data))
	s.Require().NoError(s.sqlite.Close())

	reopened, err := Open(s.path)
	s.Require().NoError(err)
	s.sqlite = reopened

	got, err := reopened.GetUserData(s.Ctx, "u")
	s.Require().NoError(err)
	s.JSONEq(`{"level":5}`, string(got.Payload))
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}
