// Package profile owns the live profile of the current session.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/syslvlup/syslvlup/internal/model"
)

// Top-level profile fields accepted by Set and Merge
const (
	FieldLevel             = "level"
	FieldExperience        = "experience"
	FieldResources         = "resources"
	FieldAttributes        = "attributes"
	FieldStackedAttributes = "stackedAttributes"
	FieldIdentity          = "identity"
	FieldQuestProgress     = "questProgress"
	FieldQuestCostsApplied = "questCostsApplied"
	FieldLastResetDate     = "lastResetDate"
)

var (
	ErrUnknownField = errors.New("unknown profile field")
	ErrFieldType    = errors.New("value has the wrong type for profile field")
)

// CreateDefault builds the canonical starting profile
func CreateDefault(identity model.CharacterIdentity, today time.Time) *model.Profile {
	p := &model.Profile{
		Level:      1,
		Experience: 0,
		Resources: model.Resources{
			HP:      model.ResourceMax,
			MP:      model.ResourceMax,
			Stamina: model.ResourceMax,
			Fatigue: model.ResourceMin,
		},
		Identity:      identity,
		LastResetDate: model.FormatDate(today),
	}
	p.EnsureMaps()

	for _, a := range model.Attributes {
		p.Attributes[a] = model.DefaultAttributeValue
		p.StackedAttributes[a] = 0
	}
	for _, c := range model.QuestCategories {
		p.QuestProgress[c] = model.QuestProgress{Completed: 0, Total: model.CategoryTotals[c]}
		p.QuestCostsApplied[c] = false
	}

	return p
}

// Store holds one profile for the active session
type Store struct {
	mu      sync.RWMutex
	profile *model.Profile
}

// NewStore creates a store holding initial (copied)
func NewStore(initial *model.Profile) *Store {
	if initial == nil {
		initial = &model.Profile{Level: 1}
	}
	return &Store{profile: initial.Clone()}
}

// Get returns a copy of the current profile
func (s *Store) Get() *model.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.Clone()
}

// Replace installs a full replacement profile
func (s *Store) Replace(p *model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p.Clone()
}

// Update applies fn to a copy of the profile and stores the result
func (s *Store) Update(fn func(*model.Profile) *model.Profile) *model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = fn(s.profile.Clone()).Clone()
	return s.profile.Clone()
}

// Set replaces one top-level field. Only the value's type is checked.
func (s *Store) Set(field string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.profile.Clone()
	if err := setField(next, field, value); err != nil {
		return err
	}
	s.profile = next
	return nil
}

func setField(p *model.Profile, field string, value any) error {
	ok := true
	switch field {
	case FieldLevel:
		var v int
		v, ok = value.(int)
		p.Level = v
	case FieldExperience:
		var v float64
		v, ok = value.(float64)
		p.Experience = v
	case FieldResources:
		var v model.Resources
		v, ok = value.(model.Resources)
		p.Resources = v
	case FieldAttributes:
		var v map[model.Attribute]int
		v, ok = value.(map[model.Attribute]int)
		p.Attributes = v
	case FieldStackedAttributes:
		var v map[model.Attribute]float64
		v, ok = value.(map[model.Attribute]float64)
		p.StackedAttributes = v
	case FieldIdentity:
		var v model.CharacterIdentity
		v, ok = value.(model.CharacterIdentity)
		p.Identity = v
	case FieldQuestProgress:
		var v map[model.QuestCategory]model.QuestProgress
		v, ok = value.(map[model.QuestCategory]model.QuestProgress)
		p.QuestProgress = v
	case FieldQuestCostsApplied:
		var v map[model.QuestCategory]bool
		v, ok = value.(map[model.QuestCategory]bool)
		p.QuestCostsApplied = v
	case FieldLastResetDate:
		var v string
		v, ok = value.(string)
		p.LastResetDate = v
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if !ok {
		return fmt.Errorf("%w: %q got %T", ErrFieldType, field, value)
	}
	return nil
}

// Merge overlays remote top-level keys onto the local profile; remote wins for
// every key present. Unknown keys are ignored. If any known key fails to decode
// the profile is left untouched.
func (s *Store) Merge(partial map[string]json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	local, err := json.Marshal(s.profile)
	if err != nil {
		return fmt.Errorf("encode local profile: %w", err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(local, &fields); err != nil {
		return fmt.Errorf("decode local profile: %w", err)
	}

	for key, raw := range partial {
		if !isField(key) {
			continue
		}
		fields[key] = raw
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode merged profile: %w", err)
	}
	var next model.Profile
	if err := json.Unmarshal(merged, &next); err != nil {
		return fmt.Errorf("decode merged profile: %w", err)
	}
	next.EnsureMaps()

	s.profile = &next
	return nil
}

func isField(key string) bool {
	switch key {
	case FieldLevel, FieldExperience, FieldResources, FieldAttributes, FieldStackedAttributes,
		FieldIdentity, FieldQuestProgress, FieldQuestCostsApplied, FieldLastResetDate:
		return true
	}
	return false
}
