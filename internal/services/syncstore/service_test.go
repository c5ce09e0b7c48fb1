package syncstore

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/syslvlup/syslvlup/internal/dependencies/mocks"
	"github.com/syslvlup/syslvlup/internal/model"
	"github.com/syslvlup/syslvlup/internal/storage/memory"
	"github.com/syslvlup/syslvlup/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(memory.New(), s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestSaveThenLoad() {
	payload := json.RawMessage(`{"gameData":{"level":3}}`)

	saved, err := s.service.Save(s.ctx, "user_1", payload)
	s.Require().NoError(err)
	s.Equal(s.clock.Now(), saved.LastUpdated)

	loaded, err := s.service.Load(s.ctx, "user_1")
	s.Require().NoError(err)
	s.JSONEq(string(payload), string(loaded.Payload))
	s.Equal(s.clock.Now(), loaded.LastUpdated)
}

func (s *ServiceSuite) TestSaveOverwritesAndRestamps() {
	_, _ = s.service.Save(s.ctx, "user_1", json.RawMessage(`{"level":1}`))
	s.clock.Advance(time.Hour)
	_, _ = s.service.Save(s.ctx, "user_1", json.RawMessage(`{"level":2}`))

	loaded, err := s.service.Load(s.ctx, "user_1")
	s.Require().NoError(err)
	s.JSONEq(`{"level":2}`, string(loaded.Payload))
	s.Equal(s.clock.Now(), loaded.LastUpdated)
}

func (s *ServiceSuite) TestSaveRejectsNonObjects() {
	for _, raw := range []string{``, `null`, `[]`, `"text"`, `42`, `{broken`} {
		_, err := s.service.Save(s.ctx, "user_1", json.RawMessage(raw))
		s.ErrorIs(err, model.ErrInvalidPayload, raw)
	}
}

func (s *ServiceSuite) TestSaveRequiresUserID() {
	_, err := s.service.Save(s.ctx, "  ", json.RawMessage(`{}`))
	s.ErrorIs(err, model.ErrMissingUserID)
}

func (s *ServiceSuite) TestLoadMissing() {
	_, err := s.service.Load(s.ctx, "user_unknown")
	s.ErrorIs(err, model.ErrUserDataNotFound)
}

func (s *ServiceSuite) TestLoadRequiresUserID() {
	_, err := s.service.Load(s.ctx, "")
	s.ErrorIs(err, model.ErrMissingUserID)
}
