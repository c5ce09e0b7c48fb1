// Package reset decides when a profile crosses a UTC calendar day and restores
// its daily resources and quest counters.
//
// The scheduler is a decision function only. Hosts call Check on start-up and
// on whatever timer they own.
package reset

import (
	"log/slog"
	"time"

	"github.com/syslvlup/syslvlup/internal/dependencies/clock"
	"github.com/syslvlup/syslvlup/internal/model"
)

// State is the daily reset state reached by Check
type State string

const (
	// StateFresh: no reset date was ever recorded
	StateFresh State = "fresh"
	// StateInitialized: the date was stamped without touching stats
	StateInitialized State = "initialized"
	// StateStale: the recorded date is not today
	StateStale State = "stale"
	// StateReset: a reset was performed and the date updated
	StateReset State = "reset"
	// StateCurrent: the profile was already reset today
	StateCurrent State = "current"
)

// Scheduler performs the daily reset transitions
type Scheduler struct {
	clock  clock.Clock
	logger *slog.Logger
}

// NewScheduler creates a scheduler reading "today" from clock
func NewScheduler(clock clock.Clock, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		clock:  clock,
		logger: logger,
	}
}

// StateOf classifies a profile relative to today without changing it
func StateOf(p *model.Profile, today time.Time) State {
	switch p.LastResetDate {
	case "":
		return StateFresh
	case model.FormatDate(today):
		return StateCurrent
	default:
		return StateStale
	}
}

// NeedsReset reports whether the profile's last reset happened on another day.
// A profile with no recorded date never needs a reset; it needs Initialize.
func NeedsReset(p *model.Profile, today time.Time) bool {
	return StateOf(p, today) == StateStale
}

// Initialize stamps today's date without mutating any stats
func Initialize(p *model.Profile, today time.Time) *model.Profile {
	next := p.Clone()
	next.LastResetDate = model.FormatDate(today)
	return next
}

// PerformReset restores resources, clears quest counters and cost guards, and
// stamps today's date. Quest totals are kept.
func PerformReset(p *model.Profile, today time.Time) *model.Profile {
	next := p.Clone()
	next.EnsureMaps()

	next.Resources.HP = model.ResourceMax
	next.Resources.MP = model.ResourceMax
	next.Resources.Stamina = model.ResourceMax
	next.Resources.Fatigue = model.ResourceMin

	for category, progress := range next.QuestProgress {
		progress.Completed = 0
		next.QuestProgress[category] = progress
	}
	for _, category := range model.QuestCategories {
		if _, ok := next.QuestProgress[category]; !ok {
			next.QuestProgress[category] = model.QuestProgress{Total: model.CategoryTotals[category]}
		}
	}
	for category := range next.QuestCostsApplied {
		next.QuestCostsApplied[category] = false
	}

	next.LastResetDate = model.FormatDate(today)
	return next
}

// Check runs one step of the daily state machine for the given day
func (s *Scheduler) Check(p *model.Profile, today time.Time) (*model.Profile, State) {
	switch StateOf(p, today) {
	case StateFresh:
		s.logger.Debug("stamping first reset date", slog.String("date", model.FormatDate(today)))
		return Initialize(p, today), StateInitialized
	case StateStale:
		s.logger.Info("performing daily reset",
			slog.String("last_reset", p.LastResetDate),
			slog.String("date", model.FormatDate(today)),
		)
		return PerformReset(p, today), StateReset
	default:
		return p.Clone(), StateCurrent
	}
}

// CheckNow runs Check against the scheduler's clock
func (s *Scheduler) CheckNow(p *model.Profile) (*model.Profile, State) {
	return s.Check(p, s.clock.Now())
}
