package tracker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/syslvlup/syslvlup/internal/dependencies/mocks"
	"github.com/syslvlup/syslvlup/internal/factory"
	"github.com/syslvlup/syslvlup/internal/model"
	"github.com/syslvlup/syslvlup/internal/services/identity"
	"github.com/syslvlup/syslvlup/internal/services/progression"
	"github.com/syslvlup/syslvlup/internal/services/quest"
	"github.com/syslvlup/syslvlup/internal/services/reset"
	"github.com/syslvlup/syslvlup/internal/services/syncclient"
	"github.com/syslvlup/syslvlup/internal/testutil"
)

type SessionSuite struct {
	suite.Suite
	app    *factory.TestApp
	server *httptest.Server
	random *mocks.MockRandom
	ctx    context.Context
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.server = httptest.NewServer(s.app.Router())
	s.random = mocks.NewMockRandom()
	s.ctx = context.Background()
}

func (s *SessionSuite) TearDownTest() {
	s.server.Close()
}

// newDevice creates a session with its own identity store, as a separate device would have
func (s *SessionSuite) newDevice(kv identity.KeyValueStore, initial *model.Profile) *Session {
	return s.newDeviceAt(s.server.URL, kv, initial)
}

func (s *SessionSuite) newDeviceAt(url string, kv identity.KeyValueStore, initial *model.Profile) *Session {
	return New(s.config(url, kv, initial))
}

func (s *SessionSuite) config(url string, kv identity.KeyValueStore, initial *model.Profile) Config {
	logger := testutil.NopLogger()
	return Config{
		Initial:  initial,
		Table:    quest.NewRewardTable(quest.SpiritualLight),
		Resolver: identity.NewResolver(kv, s.app.MockClock, s.random, logger),
		Remote:   syncclient.New(url),
		Clock:    s.app.MockClock,
		Logger:   logger,
	}
}

func (s *SessionSuite) closedURL() string {
	closed := httptest.NewServer(http.NotFoundHandler())
	url := closed.URL
	closed.Close()
	return url
}

func (s *SessionSuite) completePhysical(sess *Session) quest.Outcome {
	var out quest.Outcome
	for i := range model.CategoryTotals[model.CategoryPhysical] {
		out = sess.CompleteTask(model.CategoryPhysical, string(rune('a'+i)))
	}
	return out
}

func (s *SessionSuite) TestFreshStartWithoutRemoteData() {
	sess := s.newDevice(identity.NewMemoryKV(), nil)

	result, err := sess.Start(s.ctx)
	s.Require().NoError(err)
	s.Equal(RemoteNotFound, result.Remote)
	s.Equal(reset.StateCurrent, result.Reset)
	s.Equal(model.IdentityAnonymous, result.Identity.Kind)

	p := sess.Profile()
	s.Equal(1, p.Level)
	s.Equal(model.FormatDate(s.app.MockClock.Now()), p.LastResetDate)
}

func (s *SessionSuite) TestStartMergesRemoteProfile() {
	kv := identity.NewMemoryKV()
	first := s.newDevice(kv, nil)
	_, err := first.Start(s.ctx)
	s.Require().NoError(err)

	first.GainExperience(250)
	s.Require().NoError(first.Push(s.ctx))

	// Same identity store, fresh local profile
	second := s.newDevice(kv, nil)
	result, err := second.Start(s.ctx)
	s.Require().NoError(err)
	s.Equal(RemoteMerged, result.Remote)
	s.Equal(3, second.Profile().Level)
	s.InDelta(50.0, second.Profile().Experience, 1e-9)
}

func (s *SessionSuite) TestStartOfflineKeepsLocalProfile() {
	url := s.closedURL()

	local := s.newDevice(identity.NewMemoryKV(), nil).Profile()
	local.Level = 7

	sess := s.newDeviceAt(url, identity.NewMemoryKV(), local)
	result, err := sess.Start(s.ctx)
	s.Require().NoError(err)
	s.Equal(RemoteOffline, result.Remote)
	s.Equal(7, sess.Profile().Level)
}

func (s *SessionSuite) TestStartOnNextDayResets() {
	sess := s.newDevice(identity.NewMemoryKV(), nil)
	_, err := sess.Start(s.ctx)
	s.Require().NoError(err)

	s.completePhysical(sess)
	s.Equal(80.0, sess.Profile().Resources.HP)

	s.app.MockClock.NextDay()

	result, err := sess.Start(s.ctx)
	s.Require().NoError(err)
	s.Equal(reset.StateReset, result.Reset)

	p := sess.Profile()
	s.Equal(100.0, p.Resources.HP)
	s.Equal(0, p.QuestProgress[model.CategoryPhysical].Completed)
	s.False(p.QuestCostsApplied[model.CategoryPhysical])
	s.Equal(reset.StateCurrent, sess.CheckReset())
}

func (s *SessionSuite) TestCompleteTaskAppliesMondayPhysicalReward() {
	sess := s.newDevice(identity.NewMemoryKV(), nil)

	out := s.completePhysical(sess)
	s.True(out.CategoryDone)
	s.True(out.RewardApplied)

	p := sess.Profile()
	s.Equal(80.0, p.Resources.HP)
	s.Equal(80.0, p.Resources.Stamina)
	s.Equal(20.0, p.Resources.Fatigue)
	s.Equal(5.0, p.Experience)

	again := sess.CompleteTask(model.CategoryPhysical, "extra")
	s.False(again.RewardApplied)
	s.Equal(5.0, sess.Profile().Experience)
}

func (s *SessionSuite) TestUnknownCategoryIsIgnored() {
	sess := s.newDevice(identity.NewMemoryKV(), nil)
	before := sess.Profile()

	out := sess.CompleteTask(model.QuestCategory("cosmic"), "x")
	s.False(out.Recorded)
	s.Equal(before, sess.Profile())
}

func (s *SessionSuite) TestGainExperienceLevelsUp() {
	sess := s.newDevice(identity.NewMemoryKV(), nil)

	ups, err := sess.GainExperience(250)
	s.Require().NoError(err)
	s.Equal(2, ups)
	s.Equal(3, sess.Profile().Level)
	s.InDelta(50.0, sess.Profile().Experience, 1e-9)
}

func (s *SessionSuite) TestRegisterAfterLocalProgressReportsConflict() {
	s.random.QueueString("anon00000")
	sess := s.newDevice(identity.NewMemoryKV(), nil)
	_, err := sess.Start(s.ctx)
	s.Require().NoError(err)
	anonID := sess.Identity().ID

	sess.GainExperience(10)

	t, err := sess.Register(s.ctx, "hunter@example.com", "password123")
	s.Require().NoError(err)
	s.True(t.Conflict)
	s.True(t.MergePending)
	s.Equal(anonID, t.AbandonedID)
	s.ErrorIs(t.Err(), model.ErrIdentityConflict)

	s.Equal(model.IdentityAuthenticated, sess.Identity().Kind)
	s.Equal(t.To.ID, sess.Identity().ID)
}

func (s *SessionSuite) TestRegisterWithoutLocalProgressHasNoConflict() {
	sess := s.newDevice(identity.NewMemoryKV(), nil)
	_, err := sess.Start(s.ctx)
	s.Require().NoError(err)

	t, err := sess.Register(s.ctx, "hunter@example.com", "password123")
	s.Require().NoError(err)
	s.False(t.Conflict)
	s.NoError(t.Err())
}

func (s *SessionSuite) TestAuthenticatedProgressFollowsLogin() {
	phone := s.newDevice(identity.NewMemoryKV(), nil)
	_, err := phone.Register(s.ctx, "hunter@example.com", "password123")
	s.Require().NoError(err)
	phone.GainExperience(120)
	s.Require().NoError(phone.Push(s.ctx))

	laptop := s.newDevice(identity.NewMemoryKV(), nil)
	_, err = laptop.Login(s.ctx, "hunter@example.com", "password123")
	s.Require().NoError(err)

	result, err := laptop.Start(s.ctx)
	s.Require().NoError(err)
	s.Equal(RemoteMerged, result.Remote)
	s.Equal(phone.Identity().ID, result.Identity.ID)
	s.Equal(2, laptop.Profile().Level)
}

func (s *SessionSuite) TestLoginWithBadPasswordKeepsAnonymousIdentity() {
	sess := s.newDevice(identity.NewMemoryKV(), nil)
	before := sess.Identity()

	_, err := sess.Login(s.ctx, "nobody@example.com", "password123")

	var syncErr *syncclient.SyncError
	s.Require().ErrorAs(err, &syncErr)
	s.Equal(http.StatusUnauthorized, syncErr.StatusCode)
	s.Equal(before, sess.Identity())
}

func (s *SessionSuite) TestLogoutReturnsToNewAnonymousIdentity() {
	s.random.QueueString("first0000", "second000")
	sess := s.newDevice(identity.NewMemoryKV(), nil)
	first := sess.Identity()

	_, err := sess.Register(s.ctx, "hunter@example.com", "password123")
	s.Require().NoError(err)

	sess.Logout()
	after := sess.Identity()
	s.Equal(model.IdentityAnonymous, after.Kind)
	s.NotEqual(first.ID, after.ID)
}

func (s *SessionSuite) TestImportOverlaysKnownFields() {
	sess := s.newDevice(identity.NewMemoryKV(), nil)

	err := sess.Import(map[string]json.RawMessage{
		"level":   json.RawMessage(`9`),
		"unknown": json.RawMessage(`"ignored"`),
	})
	s.Require().NoError(err)
	s.Equal(9, sess.Profile().Level)

	err = sess.Import(map[string]json.RawMessage{"level": json.RawMessage(`"nine"`)})
	s.Error(err)
	s.Equal(9, sess.Profile().Level)
}

func (s *SessionSuite) TestOfflineProgressIsPushedOnReconnect() {
	kv := identity.NewMemoryKV()

	online := s.newDevice(kv, nil)
	_, err := online.Start(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(online.Push(s.ctx))

	offline := s.newDeviceAt(s.closedURL(), kv, online.Profile())
	result, err := offline.Start(s.ctx)
	s.Require().NoError(err)
	s.Equal(RemoteOffline, result.Remote)
	_, err = offline.GainExperience(250)
	s.Require().NoError(err)
	s.Error(offline.Push(s.ctx))

	reconnected := s.newDevice(kv, offline.Profile())
	result, err = reconnected.Start(s.ctx)
	s.Require().NoError(err)
	s.Equal(RemotePushed, result.Remote)
	s.Equal(3, reconnected.Profile().Level)

	snap, err := syncclient.New(s.server.URL).Pull(s.ctx, result.Identity.ID)
	s.Require().NoError(err)
	s.Equal(3, snap.Profile.Level)

	// Reconciled, so the next start pulls again
	again := s.newDevice(kv, nil)
	result, err = again.Start(s.ctx)
	s.Require().NoError(err)
	s.Equal(RemoteMerged, result.Remote)
	s.Equal(3, again.Profile().Level)
}

func (s *SessionSuite) TestSignInDropsUnpushedAnonymousChanges() {
	phone := s.newDevice(identity.NewMemoryKV(), nil)
	_, err := phone.Register(s.ctx, "hunter@example.com", "password123")
	s.Require().NoError(err)
	_, err = phone.GainExperience(120)
	s.Require().NoError(err)
	s.Require().NoError(phone.Push(s.ctx))

	// Anonymous progress made offline on another device
	kv := identity.NewMemoryKV()
	laptop := s.newDeviceAt(s.closedURL(), kv, nil)
	_, err = laptop.GainExperience(500)
	s.Require().NoError(err)

	online := s.newDevice(kv, laptop.Profile())
	_, err = online.Login(s.ctx, "hunter@example.com", "password123")
	s.Require().NoError(err)

	result, err := online.Start(s.ctx)
	s.Require().NoError(err)
	s.Equal(RemoteMerged, result.Remote)
	s.Equal(2, online.Profile().Level)
}

func (s *SessionSuite) TestStrictRejectsNegativeExperience() {
	cfg := s.config(s.server.URL, identity.NewMemoryKV(), nil)
	cfg.Strict = true
	sess := New(cfg)
	before := sess.Profile()

	_, err := sess.GainExperience(-50)
	s.ErrorIs(err, progression.ErrInvalidDelta)
	s.Equal(before, sess.Profile())

	ups, err := sess.GainExperience(100)
	s.Require().NoError(err)
	s.Equal(1, ups)
}

func (s *SessionSuite) TestPermissiveAcceptsNegativeExperience() {
	sess := s.newDevice(identity.NewMemoryKV(), nil)
	_, err := sess.GainExperience(80)
	s.Require().NoError(err)

	_, err = sess.GainExperience(-50)
	s.NoError(err)
	s.Equal(30.0, sess.Profile().Experience)
}

func (s *SessionSuite) TestLedgerListsTodaysRewards() {
	sess := s.newDevice(identity.NewMemoryKV(), nil)

	s.Equal(time.Monday, sess.Ledger().Weekday())
	reward, ok := sess.Ledger().RewardToday(model.CategoryPhysical)
	s.True(ok)
	s.Equal(-20.0, reward.HP)
}
