// Package tracker wires the client-side components into one session: the
// live profile, quest rewards, the daily reset, identity and remote sync.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/syslvlup/syslvlup/internal/api/response"
	"github.com/syslvlup/syslvlup/internal/dependencies/clock"
	"github.com/syslvlup/syslvlup/internal/model"
	"github.com/syslvlup/syslvlup/internal/services/identity"
	"github.com/syslvlup/syslvlup/internal/services/profile"
	"github.com/syslvlup/syslvlup/internal/services/progression"
	"github.com/syslvlup/syslvlup/internal/services/quest"
	"github.com/syslvlup/syslvlup/internal/services/reset"
	"github.com/syslvlup/syslvlup/internal/services/syncclient"
)

// Remote is the server API used by a session
type Remote interface {
	Pull(ctx context.Context, id string) (*syncclient.Snapshot, error)
	Push(ctx context.Context, id string, p *model.Profile) error
	Register(ctx context.Context, email, password string) (*response.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*response.AuthResponse, error)
	RedeemDeviceLink(ctx context.Context, code string) (*response.AuthResponse, error)
	SetToken(token string)
}

// RemoteState describes the outcome of the initial pull
type RemoteState string

const (
	RemoteMerged   RemoteState = "merged"
	RemoteNotFound RemoteState = "not_found"
	RemoteOffline  RemoteState = "offline"
	// RemotePushed means unpushed local changes were uploaded instead of pulling
	RemotePushed RemoteState = "pushed"
)

// StartResult reports what Start did
type StartResult struct {
	Identity model.Identity
	Remote   RemoteState
	Reset    reset.State
}

// Session is one host's view of a user's progression
type Session struct {
	store     *profile.Store
	ledger    *quest.Ledger
	scheduler *reset.Scheduler
	resolver  *identity.Resolver
	remote    Remote
	strict    bool
	logger    *slog.Logger
}

// Config holds the dependencies of a Session
type Config struct {
	// Initial is the locally saved profile; nil starts from defaults
	Initial  *model.Profile
	Table    quest.RewardTable
	Resolver *identity.Resolver
	Remote   Remote
	Clock    clock.Clock
	Logger   *slog.Logger
	// Strict rejects invalid experience grants instead of applying them
	Strict bool
}

// New creates a Session
func New(cfg Config) *Session {
	initial := cfg.Initial
	if initial == nil {
		initial = profile.CreateDefault(model.CharacterIdentity{}, cfg.Clock.Now())
	}
	return &Session{
		store:     profile.NewStore(initial),
		ledger:    quest.NewLedger(cfg.Table, cfg.Clock),
		scheduler: reset.NewScheduler(cfg.Clock, cfg.Logger),
		resolver:  cfg.Resolver,
		remote:    cfg.Remote,
		strict:    cfg.Strict,
		logger:    cfg.Logger,
	}
}

// Identity returns the active identity
func (s *Session) Identity() model.Identity {
	return s.resolver.Current()
}

// Profile returns a copy of the live profile
func (s *Session) Profile() *model.Profile {
	return s.store.Get()
}

// Ledger exposes the quest ledger, for listing today's rewards
func (s *Session) Ledger() *quest.Ledger {
	return s.ledger
}

// Store exposes the live profile store
func (s *Session) Store() *profile.Store {
	return s.store
}

// Start pulls remote data for the active identity, merges it over the local
// profile and runs the daily reset check. When local changes were never
// pushed, the local profile is uploaded instead of pulled. A remote failure
// leaves the session offline but usable.
func (s *Session) Start(ctx context.Context) (StartResult, error) {
	ident := s.resolver.Current()
	if ident.IsAuthenticated() {
		s.remote.SetToken(ident.Token)
	}

	result := StartResult{Identity: ident}

	if s.resolver.PendingPush() {
		err := s.Push(ctx)
		if err == nil {
			result.Remote = RemotePushed
		} else if result.Remote, err = s.offline(ident, err); err != nil {
			return result, err
		}
		result.Reset = s.CheckReset()
		return result, nil
	}

	snap, err := s.remote.Pull(ctx, ident.ID)
	switch {
	case err == nil:
		if err := s.store.Merge(snap.Fields); err != nil {
			return result, err
		}
		result.Remote = RemoteMerged
	case errors.Is(err, syncclient.ErrNotFound):
		result.Remote = RemoteNotFound
	default:
		if result.Remote, err = s.offline(ident, err); err != nil {
			return result, err
		}
	}

	result.Reset = s.CheckReset()
	return result, nil
}

// offline turns a SyncError into RemoteOffline; other errors are returned
func (s *Session) offline(ident model.Identity, err error) (RemoteState, error) {
	var syncErr *syncclient.SyncError
	if !errors.As(err, &syncErr) {
		return "", err
	}
	s.logger.Warn("starting offline", slog.String("user_id", ident.ID), slog.String("error", err.Error()))
	return RemoteOffline, nil
}

// CheckReset runs the daily reset against the live profile
func (s *Session) CheckReset() reset.State {
	var state reset.State
	s.store.Update(func(p *model.Profile) *model.Profile {
		next, st := s.scheduler.CheckNow(p)
		state = st
		return next
	})
	return state
}

// CompleteTask records a task and applies the category reward when due
func (s *Session) CompleteTask(category model.QuestCategory, taskID string) quest.Outcome {
	var out quest.Outcome
	s.store.Update(func(p *model.Profile) *model.Profile {
		next, o := s.ledger.CompleteTask(p, category, taskID)
		out = o
		return next
	})
	if out.Recorded {
		s.touched()
	}
	return out
}

// GainExperience adds experience and returns the number of level-ups.
// In strict mode negative or non-finite xp fails with
// progression.ErrInvalidDelta and leaves the profile unchanged.
func (s *Session) GainExperience(xp float64) (int, error) {
	if s.strict {
		if _, err := (progression.Strict{}).ApplyExperience(s.store.Get(), xp); err != nil {
			return 0, err
		}
	}

	var ups int
	s.store.Update(func(p *model.Profile) *model.Profile {
		next := progression.ApplyExperience(p, xp)
		ups = progression.LevelUps(p, next)
		return next
	})
	s.touched()
	return ups, nil
}

// Import replaces top-level profile fields from a JSON object
func (s *Session) Import(fields map[string]json.RawMessage) error {
	if err := s.store.Merge(fields); err != nil {
		return err
	}
	s.touched()
	return nil
}

// Push uploads the profile as it is at call time
func (s *Session) Push(ctx context.Context) error {
	ident := s.resolver.Current()
	if err := s.remote.Push(ctx, ident.ID, s.store.Get()); err != nil {
		return err
	}
	s.resolver.ClearPendingPush()
	return nil
}

// Register creates an account and promotes the identity to it
func (s *Session) Register(ctx context.Context, email, password string) (identity.Transition, error) {
	resp, err := s.remote.Register(ctx, email, password)
	if err != nil {
		return identity.Transition{}, err
	}
	return s.promote(resp), nil
}

// Login signs in and promotes the identity
func (s *Session) Login(ctx context.Context, email, password string) (identity.Transition, error) {
	resp, err := s.remote.Login(ctx, email, password)
	if err != nil {
		return identity.Transition{}, err
	}
	return s.promote(resp), nil
}

// RedeemDeviceLink signs in with a link code from another device
func (s *Session) RedeemDeviceLink(ctx context.Context, code string) (identity.Transition, error) {
	resp, err := s.remote.RedeemDeviceLink(ctx, code)
	if err != nil {
		return identity.Transition{}, err
	}
	return s.promote(resp), nil
}

// Logout drops the authenticated identity
func (s *Session) Logout() {
	s.resolver.Logout()
	s.remote.SetToken("")
}

func (s *Session) promote(resp *response.AuthResponse) identity.Transition {
	t := s.resolver.PromoteToAuthenticated(resp.UserID, resp.Email, resp.Token)
	s.remote.SetToken(resp.Token)
	if t.Conflict {
		s.logger.Warn("local progress stays under the abandoned anonymous id",
			slog.String("anonymous_id", t.AbandonedID),
			slog.String("user_id", resp.UserID),
		)
	}
	return t
}

// touched marks the local profile as changed since the last push, and as
// owned by the anonymous identity when not signed in
func (s *Session) touched() {
	s.resolver.MarkPendingPush()
	if !s.resolver.Current().IsAuthenticated() {
		s.resolver.MarkLocalData()
	}
}
