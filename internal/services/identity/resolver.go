// Package identity derives the id used as the sync key and manages the
// anonymous to authenticated transition.
package identity

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/syslvlup/syslvlup/internal/dependencies/clock"
	"github.com/syslvlup/syslvlup/internal/dependencies/random"
	"github.com/syslvlup/syslvlup/internal/model"
)

// Keys used in the backing KeyValueStore
const (
	KeyAnonymousID = "syslvl.anonymous_id"
	KeyUserID      = "syslvl.user_id"
	KeyEmail       = "syslvl.email"
	KeyToken       = "syslvl.token"

	// KeyHasLocalData is set by hosts once a profile was saved under the anonymous id
	KeyHasLocalData = "syslvl.has_local_data"

	// KeyPendingPush is set while the local profile has changes the server has not seen
	KeyPendingPush = "syslvl.pending_push"
)

const (
	anonymousPrefix       = "user_"
	anonymousSuffixLength = 9
)

// Transition describes an identity promotion. The abandoned anonymous id's
// remote data is not merged; MergePending marks that step as unresolved.
type Transition struct {
	From         model.Identity
	To           model.Identity
	AbandonedID  string
	MergePending bool
	Conflict     bool
}

// Err returns model.ErrIdentityConflict when the promotion abandoned local data
func (t Transition) Err() error {
	if t.Conflict {
		return fmt.Errorf("%w: %s", model.ErrIdentityConflict, t.AbandonedID)
	}
	return nil
}

// Resolver produces a stable identifier for this device
type Resolver struct {
	kv     KeyValueStore
	clock  clock.Clock
	random random.Random
	logger *slog.Logger

	mu       sync.Mutex
	fallback *model.Identity // used when the backing store fails
}

// NewResolver creates a Resolver over the given backing store
func NewResolver(kv KeyValueStore, clock clock.Clock, random random.Random, logger *slog.Logger) *Resolver {
	return &Resolver{
		kv:     kv,
		clock:  clock,
		random: random,
		logger: logger,
	}
}

// GetOrCreateAnonymousID returns the persisted anonymous id, creating one if absent
func (r *Resolver) GetOrCreateAnonymousID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.anonymousIDLocked()
}

func (r *Resolver) anonymousIDLocked() string {
	id, ok, err := r.kv.Get(KeyAnonymousID)
	if err != nil {
		r.logger.Warn("could not read anonymous id", slog.String("error", err.Error()))
	}
	if ok && id != "" {
		return id
	}
	if r.fallback != nil && r.fallback.Kind == model.IdentityAnonymous {
		return r.fallback.ID
	}

	id = r.newAnonymousID()
	if err := r.kv.Set(KeyAnonymousID, id); err != nil {
		r.logger.Warn("could not persist anonymous id", slog.String("error", err.Error()))
		r.fallback = &model.Identity{ID: id, Kind: model.IdentityAnonymous}
	}
	return id
}

func (r *Resolver) newAnonymousID() string {
	return fmt.Sprintf("%s%d_%s",
		anonymousPrefix,
		r.clock.Now().UnixMilli(),
		r.random.String(anonymousSuffixLength, random.Base36),
	)
}

// Current returns the active identity, creating an anonymous one if needed
func (r *Resolver) Current() model.Identity {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ident, ok := r.authenticatedLocked(); ok {
		return ident
	}
	if r.fallback != nil && r.fallback.Kind == model.IdentityAuthenticated {
		return *r.fallback
	}
	return model.Identity{ID: r.anonymousIDLocked(), Kind: model.IdentityAnonymous}
}

func (r *Resolver) authenticatedLocked() (model.Identity, bool) {
	userID, ok, err := r.kv.Get(KeyUserID)
	if err != nil || !ok || userID == "" {
		return model.Identity{}, false
	}
	email, _, _ := r.kv.Get(KeyEmail)
	token, _, _ := r.kv.Get(KeyToken)
	return model.Identity{
		ID:    userID,
		Kind:  model.IdentityAuthenticated,
		Email: email,
		Token: token,
	}, true
}

// PromoteToAuthenticated makes the server-issued identity the active one.
// Any anonymous id is discarded; its data stays where it is.
func (r *Resolver) PromoteToAuthenticated(userID, email, token string) Transition {
	r.mu.Lock()
	defer r.mu.Unlock()

	from, wasAuthenticated := r.authenticatedLocked()
	if !wasAuthenticated {
		if id, ok, _ := r.kv.Get(KeyAnonymousID); ok && id != "" {
			from = model.Identity{ID: id, Kind: model.IdentityAnonymous}
		} else if r.fallback != nil {
			from = *r.fallback
		}
	}

	to := model.Identity{
		ID:    userID,
		Kind:  model.IdentityAuthenticated,
		Email: email,
		Token: token,
	}

	for key, value := range map[string]string{KeyUserID: userID, KeyEmail: email, KeyToken: token} {
		if err := r.kv.Set(key, value); err != nil {
			r.logger.Warn("could not persist authenticated identity", slog.String("key", key), slog.String("error", err.Error()))
			fallback := to
			r.fallback = &fallback
		}
	}

	t := Transition{From: from, To: to}
	if from.ID != userID {
		// Unpushed changes belong to the previous id and must not overwrite the account
		_ = r.kv.Delete(KeyPendingPush)
	}
	if from.Kind == model.IdentityAnonymous && from.ID != "" && from.ID != userID {
		t.AbandonedID = from.ID
		t.MergePending = true
		hasData, _, _ := r.kv.Get(KeyHasLocalData)
		t.Conflict = hasData == "true"

		_ = r.kv.Delete(KeyAnonymousID)
		_ = r.kv.Delete(KeyHasLocalData)
		if r.fallback != nil && r.fallback.Kind == model.IdentityAnonymous {
			r.fallback = nil
		}

		r.logger.Info("anonymous identity abandoned",
			slog.String("anonymous_id", t.AbandonedID),
			slog.String("user_id", userID),
			slog.Bool("had_local_data", t.Conflict),
		)
	}

	return t
}

// MarkLocalData records that the current anonymous identity owns saved data
func (r *Resolver) MarkLocalData() {
	if err := r.kv.Set(KeyHasLocalData, "true"); err != nil {
		r.logger.Warn("could not mark local data", slog.String("error", err.Error()))
	}
}

// MarkPendingPush records that the local profile changed since the last push
func (r *Resolver) MarkPendingPush() {
	if err := r.kv.Set(KeyPendingPush, "true"); err != nil {
		r.logger.Warn("could not mark pending push", slog.String("error", err.Error()))
	}
}

// ClearPendingPush is called once the server holds the local profile
func (r *Resolver) ClearPendingPush() {
	if err := r.kv.Delete(KeyPendingPush); err != nil {
		r.logger.Warn("could not clear pending push", slog.String("error", err.Error()))
	}
}

// PendingPush reports whether local changes are waiting to be pushed
func (r *Resolver) PendingPush() bool {
	v, ok, err := r.kv.Get(KeyPendingPush)
	return err == nil && ok && v == "true"
}

// Logout forgets the authenticated identity; the next Current is a new anonymous id
func (r *Resolver) Logout() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range []string{KeyUserID, KeyEmail, KeyToken, KeyPendingPush} {
		if err := r.kv.Delete(key); err != nil {
			r.logger.Warn("could not clear identity key", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
	r.fallback = nil
}
