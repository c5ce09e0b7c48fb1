package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syslvlup/syslvlup/internal/services/tracker"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync the profile with the server",
	}

	cmd.AddCommand(newSyncPushCmd())
	cmd.AddCommand(newSyncPullCmd())

	return cmd
}

func newSyncPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Upload the local profile, replacing the remote copy",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			ident := sess.Identity()
			if ident.IsAuthenticated() {
				client.SetToken(ident.Token)
			}

			if err := sess.Push(cmd.Context()); err != nil {
				return err
			}
			if err := saveProfile(cfg.ProfileFile(), sess.Profile()); err != nil {
				return fmt.Errorf("save profile: %w", err)
			}

			output(cmd).PrintMessage(fmt.Sprintf("Pushed profile for %s", ident.ID))
			return nil
		},
	}
}

func newSyncPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Merge the remote profile over the local one",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}

			result, err := sess.Start(cmd.Context())
			if err != nil {
				return err
			}
			if err := saveProfile(cfg.ProfileFile(), sess.Profile()); err != nil {
				return fmt.Errorf("save profile: %w", err)
			}

			if result.Remote == tracker.RemoteOffline {
				return errors.New("server unreachable; nothing pulled")
			}

			output(cmd).PrintMessage(fmt.Sprintf("%s: %s", result.Identity.ID, remoteLabel(result.Remote)))
			return nil
		},
	}
}
