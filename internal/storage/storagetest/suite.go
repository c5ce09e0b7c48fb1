// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/syslvlup/syslvlup/internal/model"
	"github.com/syslvlup/syslvlup/internal/storage"
)

// Suite runs the common storage contract. Backends embed it and set Storage in SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

func (s *Suite) ctx() context.Context {
	if s.Ctx == nil {
		return context.Background()
	}
	return s.Ctx
}

// User data tests

func (s *Suite) TestSaveAndGetUserData() {
	updated := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	data := &model.UserData{
		UserID:      "user_1_abc",
		Payload:     json.RawMessage(`{"level":3,"experience":42.5}`),
		LastUpdated: updated,
	}

	err := s.Storage.SaveUserData(s.ctx(), data)
	s.Require().NoError(err)

	retrieved, err := s.Storage.GetUserData(s.ctx(), "user_1_abc")
	s.Require().NoError(err)
	s.Equal("user_1_abc", retrieved.UserID)
	s.JSONEq(`{"level":3,"experience":42.5}`, string(retrieved.Payload))
	s.True(updated.Equal(retrieved.LastUpdated))
}

func (s *Suite) TestGetUserDataNotFound() {
	_, err := s.Storage.GetUserData(s.ctx(), "nobody")
	s.ErrorIs(err, model.ErrUserDataNotFound)
}

func (s *Suite) TestSaveUserDataUpserts() {
	first := &model.UserData{UserID: "u", Payload: json.RawMessage(`{"level":1}`), LastUpdated: time.Unix(100, 0).UTC()}
	second := &model.UserData{UserID: "u", Payload: json.RawMessage(`{"level":2}`), LastUpdated: time.Unix(200, 0).UTC()}

	s.Require().NoError(s.Storage.SaveUserData(s.ctx(), first))
	s.Require().NoError(s.Storage.SaveUserData(s.ctx(), second))

	retrieved, err := s.Storage.GetUserData(s.ctx(), "u")
	s.Require().NoError(err)
	s.JSONEq(`{"level":2}`, string(retrieved.Payload))
	s.Equal(int64(200), retrieved.LastUpdated.Unix())
}

func (s *Suite) TestDeleteUserData() {
	data := &model.UserData{UserID: "u", Payload: json.RawMessage(`{}`)}
	_ = s.Storage.SaveUserData(s.ctx(), data)

	s.Require().NoError(s.Storage.DeleteUserData(s.ctx(), "u"))

	_, err := s.Storage.GetUserData(s.ctx(), "u")
	s.ErrorIs(err, model.ErrUserDataNotFound)
}

// Account tests

func (s *Suite) TestSaveAndGetAccount() {
	account := &model.Account{
		UserID:       "u_1",
		Email:        "hunter@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.Storage.SaveAccount(s.ctx(), account))

	byID, err := s.Storage.GetAccount(s.ctx(), "u_1")
	s.Require().NoError(err)
	s.Equal("hunter@example.com", byID.Email)
	s.Equal("hash", byID.PasswordHash)

	byEmail, err := s.Storage.GetAccountByEmail(s.ctx(), "hunter@example.com")
	s.Require().NoError(err)
	s.Equal("u_1", byEmail.UserID)
}

func (s *Suite) TestGetAccountNotFound() {
	_, err := s.Storage.GetAccount(s.ctx(), "missing")
	s.ErrorIs(err, model.ErrAccountNotFound)

	_, err = s.Storage.GetAccountByEmail(s.ctx(), "missing@example.com")
	s.ErrorIs(err, model.ErrAccountNotFound)
}
