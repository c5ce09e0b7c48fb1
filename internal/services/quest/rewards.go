package quest

import (
	"fmt"
	"strings"
	"time"

	"github.com/syslvlup/syslvlup/internal/model"
)

// CategoryXP is the experience awarded for completing any category
const CategoryXP = 5.0

// PhysicalScheduleRate scales the weekly physical weights into stacked attributes
const PhysicalScheduleRate = 0.25

// Reward is what completing a category grants and costs
type Reward struct {
	XP      float64
	Stacked map[model.Attribute]float64
	HP      float64
	MP      float64
	Stamina float64
	Fatigue float64
}

// SpiritualPreset names one of the two spiritual cost variants
type SpiritualPreset string

const (
	// SpiritualLight costs mp 10 and adds fatigue 10
	SpiritualLight SpiritualPreset = "light"
	// SpiritualHeavy costs mp 20 and adds fatigue 20
	SpiritualHeavy SpiritualPreset = "heavy"
)

// ParseSpiritualPreset validates a preset name
func ParseSpiritualPreset(s string) (SpiritualPreset, error) {
	switch p := SpiritualPreset(strings.ToLower(strings.TrimSpace(s))); p {
	case SpiritualLight, SpiritualHeavy:
		return p, nil
	default:
		return "", fmt.Errorf("unknown spiritual preset %q (want %q or %q)", s, SpiritualLight, SpiritualHeavy)
	}
}

// WeeklyWeights are the STR/VIT/AGI weights of the physical quest for one weekday
type WeeklyWeights struct {
	STR float64
	VIT float64
	AGI float64
}

// PhysicalSchedule maps each weekday to its physical attribute weights
var PhysicalSchedule = map[time.Weekday]WeeklyWeights{
	time.Monday:    {STR: 4, VIT: 2, AGI: 2},
	time.Tuesday:   {STR: 2, VIT: 4, AGI: 2},
	time.Wednesday: {STR: 2, VIT: 2, AGI: 4},
	time.Thursday:  {STR: 4, VIT: 2, AGI: 2},
	time.Friday:    {STR: 2, VIT: 4, AGI: 2},
	time.Saturday:  {STR: 2, VIT: 2, AGI: 4},
	time.Sunday:    {STR: 1, VIT: 1, AGI: 1},
}

// RewardTable resolves the reward of each category
type RewardTable struct {
	Spiritual SpiritualPreset
}

// NewRewardTable builds a table for the given spiritual preset
func NewRewardTable(preset SpiritualPreset) RewardTable {
	return RewardTable{Spiritual: preset}
}

// RewardFor returns the reward of category on the given weekday.
// The second result is false for unknown categories.
func (t RewardTable) RewardFor(category model.QuestCategory, day time.Weekday) (Reward, bool) {
	switch category {
	case model.CategoryPhysical:
		w := PhysicalSchedule[day]
		return Reward{
			XP: CategoryXP,
			Stacked: map[model.Attribute]float64{
				model.AttributeSTR: w.STR * PhysicalScheduleRate,
				model.AttributeVIT: w.VIT * PhysicalScheduleRate,
				model.AttributeAGI: w.AGI * PhysicalScheduleRate,
			},
			HP:      -20,
			Stamina: -20,
			Fatigue: 20,
		}, true
	case model.CategoryMental:
		return Reward{
			XP: CategoryXP,
			Stacked: map[model.Attribute]float64{
				model.AttributeINT: 2,
				model.AttributePER: 0.45,
			},
			MP:      -20,
			Stamina: -10,
			Fatigue: 20,
		}, true
	case model.CategorySpiritual:
		r := Reward{
			XP:      CategoryXP,
			Stacked: map[model.Attribute]float64{model.AttributeWIS: 2},
			MP:      -10,
			Stamina: -10,
			Fatigue: 10,
		}
		if t.Spiritual == SpiritualHeavy {
			r.MP = -20
			r.Fatigue = 20
		}
		return r, true
	default:
		return Reward{}, false
	}
}

// String renders the reward as "+5 xp, STR +1.00, hp -20" with attributes in
// canonical order and zero deltas omitted
func (r Reward) String() string {
	parts := []string{fmt.Sprintf("+%g xp", r.XP)}
	for _, a := range model.Attributes {
		if v := r.Stacked[a]; v != 0 {
			parts = append(parts, fmt.Sprintf("%s %+.2f", a, v))
		}
	}
	for _, d := range []struct {
		name  string
		value float64
	}{{"hp", r.HP}, {"mp", r.MP}, {"stamina", r.Stamina}, {"fatigue", r.Fatigue}} {
		if d.value != 0 {
			parts = append(parts, fmt.Sprintf("%s %+g", d.name, d.value))
		}
	}
	return strings.Join(parts, ", ")
}
