package memory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/syslvlup/syslvlup/internal/model"
	"github.com/syslvlup/syslvlup/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	memory *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.memory = New()
	s.Storage = s.memory
	s.Ctx = context.Background()
}

func (s *StorageSuite) TestReturnedPayloadIsCopy() {
	_ = s.memory.SaveUserData(s.Ctx, &model.UserData{UserID: "u", Payload: json.RawMessage(`{"a":1}`)})

	first, err := s.memory.GetUserData(s.Ctx, "u")
	s.Require().NoError(err)
	first.Payload[1] = 'X'

	second, err := s.memory.GetUserData(s.Ctx, "u")
	s.Require().NoError(err)
	s.JSONEq(`{"a":1}`, string(second.Payload))
}

func (s *StorageSuite) TestEmailLookupIsCaseInsensitive() {
	_ = s.memory.SaveAccount(s.Ctx, &model.Account{UserID: "u_1", Email: "Hunter@Example.com"})

	account, err := s.memory.GetAccountByEmail(s.Ctx, "hunter@example.COM")
	s.Require().NoError(err)
	s.Equal("u_1", account.UserID)
}
