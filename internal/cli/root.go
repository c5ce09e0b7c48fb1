package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/syslvlup/syslvlup/internal/dependencies/clock"
	"github.com/syslvlup/syslvlup/internal/dependencies/random"
	"github.com/syslvlup/syslvlup/internal/services/identity"
	"github.com/syslvlup/syslvlup/internal/services/quest"
	"github.com/syslvlup/syslvlup/internal/services/syncclient"
	"github.com/syslvlup/syslvlup/internal/services/tracker"
)

var (
	cfg    *Config
	client *syncclient.Client
	logger *slog.Logger
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var err error
	cfg, err = DefaultConfig()
	if err != nil {
		// Fall back to built-in defaults; the bad variable is reported on run
		cfg = &Config{ServerURL: "http://localhost:8080", Output: "text", SpiritualPreset: "light", StateDir: defaultStateDir()}
	}
	envErr := err

	rootCmd := &cobra.Command{
		Use:   "syslvl",
		Short: "Track daily quests and character progression",
		Long: `syslvl tracks a character sheet driven by daily physical, mental and
spiritual quests. Progress is kept in a local state directory and synced to
a SysLvLUp server under an anonymous id, or under an account after login.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return fmt.Errorf("invalid environment: %w", envErr)
			}
			if cfg.Output != "text" && cfg.Output != "json" {
				return fmt.Errorf("invalid --output %q: must be text or json", cfg.Output)
			}

			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			client = syncclient.New(cfg.ServerURL)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: SYSLVL_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "Local state directory (env: SYSLVL_STATE_DIR)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().StringVar(&cfg.SpiritualPreset, "spiritual-preset", cfg.SpiritualPreset, "Spiritual reward preset: light, heavy (env: SYSLVL_SPIRITUAL_PRESET)")
	rootCmd.PersistentFlags().BoolVar(&cfg.NoSync, "no-sync", cfg.NoSync, "Work offline without pulling or pushing (env: SYSLVL_NO_SYNC)")
	rootCmd.PersistentFlags().BoolVar(&cfg.Strict, "strict", cfg.Strict, "Reject invalid experience amounts (env: SYSLVL_STRICT)")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newQuestCmd())
	rootCmd.AddCommand(newXPCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newIdentityCmd())
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLinkCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func output(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout())
}

// openSession loads local state into a tracker session
func openSession() (*tracker.Session, error) {
	preset, err := quest.ParseSpiritualPreset(cfg.SpiritualPreset)
	if err != nil {
		return nil, err
	}

	initial, err := loadProfile(cfg.ProfileFile())
	if err != nil {
		return nil, err
	}

	clk := clock.New()
	resolver := identity.NewResolver(identity.NewFileKV(cfg.IdentityFile()), clk, random.New(), logger)

	return tracker.New(tracker.Config{
		Initial:  initial,
		Table:    quest.NewRewardTable(preset),
		Resolver: resolver,
		Remote:   client,
		Clock:    clk,
		Logger:   logger,
		Strict:   cfg.Strict,
	}), nil
}

// startSession opens the session and runs the startup pull and reset check
func startSession(ctx context.Context) (*tracker.Session, tracker.StartResult, error) {
	sess, err := openSession()
	if err != nil {
		return nil, tracker.StartResult{}, err
	}

	if cfg.NoSync {
		return sess, tracker.StartResult{
			Identity: sess.Identity(),
			Remote:   tracker.RemoteOffline,
			Reset:    sess.CheckReset(),
		}, nil
	}

	result, err := sess.Start(ctx)
	if err != nil {
		return nil, result, err
	}
	return sess, result, nil
}

// finishSession saves the profile locally and pushes it unless offline.
// A failed push is reported but keeps the local save.
func finishSession(ctx context.Context, sess *tracker.Session, result tracker.StartResult) error {
	if err := saveProfile(cfg.ProfileFile(), sess.Profile()); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	if cfg.NoSync || result.Remote == tracker.RemoteOffline {
		return nil
	}
	if err := sess.Push(ctx); err != nil {
		logger.Warn("push failed; progress kept locally", slog.String("error", err.Error()))
	}
	return nil
}
