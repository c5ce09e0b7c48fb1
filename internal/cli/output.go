package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/syslvlup/syslvlup/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case StatusView:
		o.printStatus(v)
	case QuestListView:
		o.printQuestList(v)
	case QuestOutcomeView:
		o.printQuestOutcome(v)
	case XPView:
		fmt.Fprintf(o.w, "Level %d (%.1f/%.0f xp), %d level-up(s)\n", v.Level, v.Experience, model.ExperiencePerLevel, v.LevelUps)
	case ResetView:
		fmt.Fprintf(o.w, "Daily reset: %s (last reset %s)\n", v.State, v.LastResetDate)
	case IdentityView:
		o.printIdentity(v)
	case AuthView:
		o.printAuth(v)
	case LinkView:
		fmt.Fprintf(o.w, "Link code (expires %s):\n%s\n", v.ExpiresAt, v.Code)
	case HealthView:
		fmt.Fprintf(o.w, "Server status: %s\n", v.Status)
	default:
		o.printJSON(data)
	}
}

// StatusView is the character sheet shown by status
type StatusView struct {
	UserID            string                                      `json:"userId"`
	IdentityKind      string                                      `json:"identityKind"`
	Remote            string                                      `json:"remote"`
	Reset             string                                      `json:"reset"`
	Level             int                                         `json:"level"`
	Experience        float64                                     `json:"experience"`
	Resources         model.Resources                             `json:"resources"`
	Attributes        map[model.Attribute]int                     `json:"attributes"`
	StackedAttributes map[model.Attribute]float64                 `json:"stackedAttributes"`
	QuestProgress     map[model.QuestCategory]model.QuestProgress `json:"questProgress"`
	LastResetDate     string                                      `json:"lastResetDate"`
}

// QuestListView lists today's quests and their rewards
type QuestListView struct {
	Weekday string          `json:"weekday"`
	Quests  []QuestLineView `json:"quests"`
}

// QuestLineView is one category in QuestListView
type QuestLineView struct {
	Category     model.QuestCategory `json:"category"`
	Completed    int                 `json:"completed"`
	Total        int                 `json:"total"`
	Rewarded     bool                `json:"rewarded"`
	RewardSource string              `json:"reward"`
}

// QuestOutcomeView reports a completed task
type QuestOutcomeView struct {
	Category      model.QuestCategory `json:"category"`
	Completed     int                 `json:"completed"`
	Total         int                 `json:"total"`
	CategoryDone  bool                `json:"categoryDone"`
	RewardApplied bool                `json:"rewardApplied"`
	LevelUps      int                 `json:"levelUps"`
	Level         int                 `json:"level"`
	Experience    float64             `json:"experience"`
}

// XPView reports an experience grant
type XPView struct {
	Level      int     `json:"level"`
	Experience float64 `json:"experience"`
	LevelUps   int     `json:"levelUps"`
}

// ResetView reports the daily reset check
type ResetView struct {
	State         string `json:"state"`
	LastResetDate string `json:"lastResetDate"`
}

// IdentityView shows the active identity
type IdentityView struct {
	UserID string `json:"userId"`
	Kind   string `json:"kind"`
	Email  string `json:"email,omitempty"`
}

// AuthView reports a sign-in and the identity transition it caused
type AuthView struct {
	UserID       string `json:"userId"`
	Email        string `json:"email"`
	AbandonedID  string `json:"abandonedId,omitempty"`
	MergePending bool   `json:"mergePending"`
	Conflict     bool   `json:"conflict"`
}

// LinkView is a device link code
type LinkView struct {
	Code      string `json:"code"`
	ExpiresAt string `json:"expiresAt"`
}

// HealthView is the server health result
type HealthView struct {
	Status string `json:"status"`
}

func (o *Output) printStatus(s StatusView) {
	fmt.Fprintf(o.w, "User: %s (%s)\n", s.UserID, s.IdentityKind)
	fmt.Fprintf(o.w, "Sync: %s, reset: %s (last %s)\n", s.Remote, s.Reset, s.LastResetDate)
	fmt.Fprintf(o.w, "Level %d  XP %.1f/%.0f\n", s.Level, s.Experience, model.ExperiencePerLevel)
	fmt.Fprintf(o.w, "HP %.0f  MP %.0f  Stamina %.0f  Fatigue %.0f\n",
		s.Resources.HP, s.Resources.MP, s.Resources.Stamina, s.Resources.Fatigue)

	parts := make([]string, 0, len(model.Attributes))
	for _, a := range model.Attributes {
		part := fmt.Sprintf("%s %d", a, s.Attributes[a])
		if stacked := s.StackedAttributes[a]; stacked > 0 {
			part += fmt.Sprintf(" (+%.2f)", stacked)
		}
		parts = append(parts, part)
	}
	fmt.Fprintln(o.w, strings.Join(parts, "  "))

	for _, c := range model.QuestCategories {
		qp := s.QuestProgress[c]
		fmt.Fprintf(o.w, "  %-10s %d/%d\n", c, qp.Completed, qp.Total)
	}
}

func (o *Output) printQuestList(l QuestListView) {
	fmt.Fprintf(o.w, "Quests for %s:\n", l.Weekday)
	for _, q := range l.Quests {
		mark := " "
		if q.Rewarded {
			mark = "x"
		}
		fmt.Fprintf(o.w, "  [%s] %-10s %d/%d  %s\n", mark, q.Category, q.Completed, q.Total, q.RewardSource)
	}
}

func (o *Output) printQuestOutcome(q QuestOutcomeView) {
	fmt.Fprintf(o.w, "%s: %d/%d\n", q.Category, q.Completed, q.Total)
	if q.RewardApplied {
		fmt.Fprintln(o.w, "Category complete, reward applied")
	} else if q.CategoryDone {
		fmt.Fprintln(o.w, "Category already rewarded today")
	}
	if q.LevelUps > 0 {
		fmt.Fprintf(o.w, "Level up! Now level %d\n", q.Level)
	}
}

func (o *Output) printIdentity(i IdentityView) {
	fmt.Fprintf(o.w, "User: %s\n", i.UserID)
	fmt.Fprintf(o.w, "Kind: %s\n", i.Kind)
	if i.Email != "" {
		fmt.Fprintf(o.w, "Email: %s\n", i.Email)
	}
}

func (o *Output) printAuth(a AuthView) {
	fmt.Fprintf(o.w, "Signed in as %s (%s)\n", a.Email, a.UserID)
	if a.AbandonedID != "" {
		fmt.Fprintf(o.w, "Previous anonymous id %s is no longer used\n", a.AbandonedID)
	}
	if a.Conflict {
		fmt.Fprintln(o.w, "Warning: progress saved under the anonymous id was not merged into this account")
	}
}
