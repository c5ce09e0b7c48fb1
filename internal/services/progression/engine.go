// Package progression holds the pure state transitions of a character profile.
//
// Every function takes a profile and returns a new one; the input is never
// mutated. None of them fail: out-of-range deltas are accepted and the result
// is clamped where the profile has bounds.
package progression

import (
	"math"

	"github.com/syslvlup/syslvlup/internal/model"
)

const (
	// StackedFoldRate is the share of a stacked attribute folded into the
	// permanent attribute on level-up
	StackedFoldRate = 0.25

	// roundUpThreshold is the fractional part above which CustomRound rounds up
	roundUpThreshold = 0.4

	// roundTolerance absorbs float64 representation error so that values
	// written as x.4 (which are stored as x.3999...) still round up
	roundTolerance = 1e-9
)

// ResourceDelta describes a change to some of the resources; nil fields are left alone
type ResourceDelta struct {
	HP      *float64
	MP      *float64
	Stamina *float64
	Fatigue *float64
}

// Delta is a convenience constructor for a ResourceDelta field
func Delta(v float64) *float64 {
	return &v
}

// CustomRound rounds v up when its fractional part exceeds 0.4, otherwise down.
// This is not standard rounding: 2.45 and 2.4 both give 3, 2.3 gives 2.
func CustomRound(v float64) float64 {
	floor := math.Floor(v)
	frac := v - floor
	if frac > roundUpThreshold-roundTolerance {
		return math.Ceil(v)
	}
	return floor
}

// ApplyExperience adds deltaXP and converts any overflow into level-ups.
// Each level-up folds the stacked attributes into the permanent ones and
// clears them, so a large delta can fold several times (the second fold
// sees zero stacks).
func ApplyExperience(p *model.Profile, deltaXP float64) *model.Profile {
	next := p.Clone()
	next.EnsureMaps()

	if math.IsNaN(deltaXP) || math.IsInf(deltaXP, 0) {
		return next
	}

	next.Experience += deltaXP
	if next.Level < 1 {
		next.Level = 1
	}

	for next.Experience >= model.ExperiencePerLevel {
		next.Experience -= model.ExperiencePerLevel
		next.Level++
		foldStackedAttributes(next)
	}

	if next.Experience < 0 {
		next.Experience = 0
	}

	return next
}

// foldStackedAttributes applies one level-up worth of stacked bonuses
func foldStackedAttributes(p *model.Profile) {
	for key, stacked := range p.StackedAttributes {
		gain := int(CustomRound(stacked * StackedFoldRate))
		if gain > 0 {
			p.Attributes[key] += gain
		}
		p.StackedAttributes[key] = 0
	}
}

// ApplyResourceDelta adds each given delta to its resource and clamps all of them to [0,100]
func ApplyResourceDelta(p *model.Profile, delta ResourceDelta) *model.Profile {
	next := p.Clone()

	if delta.HP != nil {
		next.Resources.HP += *delta.HP
	}
	if delta.MP != nil {
		next.Resources.MP += *delta.MP
	}
	if delta.Stamina != nil {
		next.Resources.Stamina += *delta.Stamina
	}
	if delta.Fatigue != nil {
		next.Resources.Fatigue += *delta.Fatigue
	}

	next.Resources = ClampResources(next.Resources)
	return next
}

// AddStackedAttribute accumulates a fractional bonus for key; no clamping is applied
func AddStackedAttribute(p *model.Profile, key model.Attribute, amount float64) *model.Profile {
	next := p.Clone()
	next.EnsureMaps()
	if math.IsNaN(amount) {
		return next
	}
	next.StackedAttributes[key] += amount
	return next
}

// ClampResources bounds every resource to [ResourceMin, ResourceMax]
func ClampResources(r model.Resources) model.Resources {
	return model.Resources{
		HP:      clamp(r.HP),
		MP:      clamp(r.MP),
		Stamina: clamp(r.Stamina),
		Fatigue: clamp(r.Fatigue),
	}
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < model.ResourceMin {
		return model.ResourceMin
	}
	if v > model.ResourceMax {
		return model.ResourceMax
	}
	return v
}

// LevelUps returns how many levels were gained between two profiles
func LevelUps(before, after *model.Profile) int {
	if before == nil || after == nil || after.Level <= before.Level {
		return 0
	}
	return after.Level - before.Level
}
