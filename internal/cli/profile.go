package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/syslvlup/syslvlup/internal/model"
	"github.com/syslvlup/syslvlup/internal/services/tracker"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the character sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, result, err := startSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := finishSession(cmd.Context(), sess, result); err != nil {
				return err
			}

			p := sess.Profile()
			output(cmd).Print(StatusView{
				UserID:            result.Identity.ID,
				IdentityKind:      string(result.Identity.Kind),
				Remote:            remoteLabel(result.Remote),
				Reset:             string(result.Reset),
				Level:             p.Level,
				Experience:        p.Experience,
				Resources:         p.Resources,
				Attributes:        p.Attributes,
				StackedAttributes: p.StackedAttributes,
				QuestProgress:     p.QuestProgress,
				LastResetDate:     p.LastResetDate,
			})
			return nil
		},
	}
}

func newQuestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quest",
		Short: "Daily quest commands",
	}

	cmd.AddCommand(newQuestListCmd())
	cmd.AddCommand(newQuestCompleteCmd())

	return cmd
}

func newQuestListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List today's quests and rewards",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, result, err := startSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := finishSession(cmd.Context(), sess, result); err != nil {
				return err
			}

			p := sess.Profile()
			ledger := sess.Ledger()

			view := QuestListView{Weekday: ledger.Weekday().String()}
			for _, c := range model.QuestCategories {
				reward, _ := ledger.RewardToday(c)
				qp := p.QuestProgress[c]
				view.Quests = append(view.Quests, QuestLineView{
					Category:     c,
					Completed:    qp.Completed,
					Total:        qp.Total,
					Rewarded:     p.QuestCostsApplied[c],
					RewardSource: reward.String(),
				})
			}

			output(cmd).Print(view)
			return nil
		},
	}
}

func newQuestCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <category> [task-id]",
		Short: "Complete one task of a quest category (physical, mental, spiritual)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category := model.QuestCategory(args[0])
			if !category.IsValid() {
				return fmt.Errorf("unknown category %q: must be physical, mental or spiritual", args[0])
			}
			taskID := ""
			if len(args) == 2 {
				taskID = args[1]
			}

			sess, result, err := startSession(cmd.Context())
			if err != nil {
				return err
			}
			out := sess.CompleteTask(category, taskID)
			if err := finishSession(cmd.Context(), sess, result); err != nil {
				return err
			}

			p := sess.Profile()
			qp := p.QuestProgress[category]
			output(cmd).Print(QuestOutcomeView{
				Category:      category,
				Completed:     qp.Completed,
				Total:         qp.Total,
				CategoryDone:  out.CategoryDone,
				RewardApplied: out.RewardApplied,
				LevelUps:      out.LevelUps,
				Level:         p.Level,
				Experience:    p.Experience,
			})
			return nil
		},
	}
}

func newXPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xp",
		Short: "Experience commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <amount>",
		Short: "Add experience",
		Long:  "Adds experience. Negative amounts need a -- separator and are rejected with --strict.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}

			sess, result, err := startSession(cmd.Context())
			if err != nil {
				return err
			}
			ups, err := sess.GainExperience(amount)
			if err != nil {
				return err
			}
			if err := finishSession(cmd.Context(), sess, result); err != nil {
				return err
			}

			p := sess.Profile()
			output(cmd).Print(XPView{Level: p.Level, Experience: p.Experience, LevelUps: ups})
			return nil
		},
	})

	return cmd
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Run the daily reset check",
		Long:  "Runs the once-per-day reset. Running it again on the same UTC day changes nothing.",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, result, err := startSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := finishSession(cmd.Context(), sess, result); err != nil {
				return err
			}

			output(cmd).Print(ResetView{
				State:         string(result.Reset),
				LastResetDate: sess.Profile().LastResetDate,
			})
			return nil
		},
	}
}

// remoteLabel is shared by commands that report the startup pull
func remoteLabel(r tracker.RemoteState) string {
	switch r {
	case tracker.RemoteMerged:
		return "pulled"
	case tracker.RemoteNotFound:
		return "no remote data"
	case tracker.RemotePushed:
		return "pushed local changes"
	default:
		return "offline"
	}
}
