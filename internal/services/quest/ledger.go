// Package quest tracks daily quest completion and applies category rewards.
package quest

import (
	"time"

	"github.com/syslvlup/syslvlup/internal/dependencies/clock"
	"github.com/syslvlup/syslvlup/internal/model"
	"github.com/syslvlup/syslvlup/internal/services/progression"
)

// Outcome reports what CompleteTask did
type Outcome struct {
	Recorded        bool
	CategoryDone    bool
	RewardApplied   bool
	LevelUps        int
	ExperienceAfter float64
}

// Ledger applies quest progress and rewards to profiles
type Ledger struct {
	table RewardTable
	clock clock.Clock
}

// NewLedger creates a ledger using the given reward table.
// The clock decides the weekday of the physical schedule (UTC).
func NewLedger(table RewardTable, clock clock.Clock) *Ledger {
	return &Ledger{
		table: table,
		clock: clock,
	}
}

// Weekday is the UTC weekday that picks today's physical schedule
func (l *Ledger) Weekday() time.Weekday {
	return l.clock.Now().UTC().Weekday()
}

// RewardToday returns the reward category grants when completed today
func (l *Ledger) RewardToday(category model.QuestCategory) (Reward, bool) {
	return l.table.RewardFor(category, l.Weekday())
}

// RecordTaskCompletion increments the category's completed count, clamped to its total.
// Unknown categories leave the profile unchanged.
func (l *Ledger) RecordTaskCompletion(p *model.Profile, category model.QuestCategory, taskID string) *model.Profile {
	next := p.Clone()
	next.EnsureMaps()

	progress, ok := next.QuestProgress[category]
	if !ok {
		total, known := model.CategoryTotals[category]
		if !known {
			return next
		}
		progress = model.QuestProgress{Total: total}
	}

	progress.Completed++
	if progress.Completed > progress.Total {
		progress.Completed = progress.Total
	}
	if progress.Completed < 0 {
		progress.Completed = 0
	}
	next.QuestProgress[category] = progress

	return next
}

// IsCategoryComplete reports whether all of a category's tasks are done
func (l *Ledger) IsCategoryComplete(p *model.Profile, category model.QuestCategory) bool {
	progress, ok := p.QuestProgress[category]
	if !ok {
		return false
	}
	return progress.Completed >= progress.Total
}

// ApplyCategoryCompletionReward applies the category reward once per day.
// If the reward was already applied the profile is returned unchanged.
func (l *Ledger) ApplyCategoryCompletionReward(p *model.Profile, category model.QuestCategory) *model.Profile {
	next := p.Clone()
	next.EnsureMaps()

	if next.QuestCostsApplied[category] {
		return next
	}

	reward, ok := l.RewardToday(category)
	if !ok {
		return next
	}

	for _, attr := range model.Attributes {
		if amount, ok := reward.Stacked[attr]; ok {
			next = progression.AddStackedAttribute(next, attr, amount)
		}
	}
	next = progression.ApplyResourceDelta(next, progression.ResourceDelta{
		HP:      progression.Delta(reward.HP),
		MP:      progression.Delta(reward.MP),
		Stamina: progression.Delta(reward.Stamina),
		Fatigue: progression.Delta(reward.Fatigue),
	})
	next = progression.ApplyExperience(next, reward.XP)

	next.QuestCostsApplied[category] = true
	return next
}

// CompleteTask records one task and, when that completes the category,
// applies its reward.
func (l *Ledger) CompleteTask(p *model.Profile, category model.QuestCategory, taskID string) (*model.Profile, Outcome) {
	if !category.IsValid() {
		return p.Clone(), Outcome{ExperienceAfter: p.Experience}
	}

	next := l.RecordTaskCompletion(p, category, taskID)
	out := Outcome{Recorded: true}

	if l.IsCategoryComplete(next, category) {
		out.CategoryDone = true
		if !next.QuestCostsApplied[category] {
			rewarded := l.ApplyCategoryCompletionReward(next, category)
			out.RewardApplied = true
			out.LevelUps = progression.LevelUps(next, rewarded)
			next = rewarded
		}
	}

	out.ExperienceAfter = next.Experience
	return next, out
}
