package profile

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/syslvlup/syslvlup/internal/model"
)

type StoreSuite struct {
	suite.Suite
	today time.Time
	store *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.today = time.Date(2024, 3, 15, 23, 30, 0, 0, time.UTC)
	s.store = NewStore(CreateDefault(model.CharacterIdentity{Name: "Jinwoo", Title: "Player"}, s.today))
}

func (s *StoreSuite) TestCreateDefault() {
	p := s.store.Get()

	s.Equal(1, p.Level)
	s.Equal(0.0, p.Experience)
	s.Equal(model.Resources{HP: 100, MP: 100, Stamina: 100, Fatigue: 0}, p.Resources)
	for _, a := range model.Attributes {
		s.Equal(10, p.Attributes[a], "attribute %s", a)
		s.Equal(0.0, p.StackedAttributes[a], "stacked %s", a)
	}
	s.Equal(model.QuestProgress{Completed: 0, Total: 4}, p.QuestProgress[model.CategoryPhysical])
	s.Equal(model.QuestProgress{Completed: 0, Total: 3}, p.QuestProgress[model.CategoryMental])
	s.Equal(model.QuestProgress{Completed: 0, Total: 2}, p.QuestProgress[model.CategorySpiritual])
	s.False(p.QuestCostsApplied[model.CategoryMental])
	s.Equal("2024-03-15", p.LastResetDate)
	s.Equal("Jinwoo", p.Identity.Name)
}

func (s *StoreSuite) TestGetReturnsCopy() {
	p := s.store.Get()
	p.Attributes[model.AttributeSTR] = 99
	p.Level = 50

	fresh := s.store.Get()
	s.Equal(10, fresh.Attributes[model.AttributeSTR])
	s.Equal(1, fresh.Level)
}

func (s *StoreSuite) TestSetReplacesField() {
	s.Require().NoError(s.store.Set(FieldLevel, 7))
	s.Require().NoError(s.store.Set(FieldResources, model.Resources{HP: 1, MP: 2, Stamina: 3, Fatigue: 4}))

	p := s.store.Get()
	s.Equal(7, p.Level)
	s.Equal(1.0, p.Resources.HP)
}

func (s *StoreSuite) TestSetRejectsWrongType() {
	err := s.store.Set(FieldLevel, "seven")
	s.ErrorIs(err, ErrFieldType)
	s.Equal(1, s.store.Get().Level)
}

func (s *StoreSuite) TestSetRejectsUnknownField() {
	err := s.store.Set("gold", 100)
	s.ErrorIs(err, ErrUnknownField)
}

func (s *StoreSuite) TestSetDoesNotValidateRange() {
	s.Require().NoError(s.store.Set(FieldExperience, 250.0))
	s.Equal(250.0, s.store.Get().Experience)
}

func (s *StoreSuite) TestMergeRemoteWinsPerKey() {
	partial := map[string]json.RawMessage{
		"level":      json.RawMessage(`4`),
		"attributes": json.RawMessage(`{"STR":15}`),
		"theme":      json.RawMessage(`"dark"`),
	}

	s.Require().NoError(s.store.Merge(partial))

	p := s.store.Get()
	s.Equal(4, p.Level)
	// shallow merge: the whole attributes map is replaced
	s.Equal(map[model.Attribute]int{model.AttributeSTR: 15}, p.Attributes)
	s.Equal(100.0, p.Resources.HP, "keys absent remotely keep local values")
	s.Equal("2024-03-15", p.LastResetDate)
}

func (s *StoreSuite) TestMergeIsAllOrNothing() {
	partial := map[string]json.RawMessage{
		"level":     json.RawMessage(`9`),
		"resources": json.RawMessage(`"not an object"`),
	}

	err := s.store.Merge(partial)
	s.Error(err)
	s.Equal(1, s.store.Get().Level)
}

func (s *StoreSuite) TestUpdate() {
	got := s.store.Update(func(p *model.Profile) *model.Profile {
		p.Experience = 12
		return p
	})

	s.Equal(12.0, got.Experience)
	s.Equal(12.0, s.store.Get().Experience)
}
