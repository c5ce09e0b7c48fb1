package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/syslvlup/syslvlup/internal/services/identity"
	"github.com/syslvlup/syslvlup/internal/services/tracker"
)

func newIdentityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Identity commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the id progress is synced under",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			ident := sess.Identity()
			output(cmd).Print(IdentityView{UserID: ident.ID, Kind: string(ident.Kind), Email: ident.Email})
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "logout",
		Short: "Forget the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			sess.Logout()
			output(cmd).PrintMessage("Logged out; a new anonymous id will be used")
			return nil
		},
	})

	return cmd
}

// credentialFlags adds --email and --password to cmd
func credentialFlags(cmd *cobra.Command, email, password *string) {
	cmd.Flags().StringVar(email, "email", "", "Account email (required)")
	cmd.Flags().StringVar(password, "password", "", "Account password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
}

type signInFunc func(ctx context.Context, sess *tracker.Session) (identity.Transition, error)

// runSignIn promotes the identity, then pulls the account's remote profile
// and pushes the merged result back
func runSignIn(cmd *cobra.Command, signIn signInFunc) error {
	sess, err := openSession()
	if err != nil {
		return err
	}

	t, err := signIn(cmd.Context(), sess)
	if err != nil {
		return err
	}

	result := tracker.StartResult{Identity: sess.Identity(), Remote: tracker.RemoteOffline}
	if !cfg.NoSync {
		if result, err = sess.Start(cmd.Context()); err != nil {
			return err
		}
	}
	if err := finishSession(cmd.Context(), sess, result); err != nil {
		return err
	}

	output(cmd).Print(AuthView{
		UserID:       t.To.ID,
		Email:        t.To.Email,
		AbandonedID:  t.AbandonedID,
		MergePending: t.MergePending,
		Conflict:     t.Conflict,
	})
	return nil
}

func newRegisterCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignIn(cmd, func(ctx context.Context, sess *tracker.Session) (identity.Transition, error) {
				return sess.Register(ctx, email, password)
			})
		},
	}
	credentialFlags(cmd, &email, &password)

	return cmd
}

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignIn(cmd, func(ctx context.Context, sess *tracker.Session) (identity.Transition, error) {
				return sess.Login(ctx, email, password)
			})
		},
	}
	credentialFlags(cmd, &email, &password)

	return cmd
}

func newLinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Sign in another device",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Create a short-lived code for another device",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			ident := sess.Identity()
			if !ident.IsAuthenticated() {
				return errors.New("not signed in: run register or login first")
			}
			client.SetToken(ident.Token)

			link, err := client.CreateDeviceLink(cmd.Context())
			if err != nil {
				return err
			}
			output(cmd).Print(LinkView{Code: link.Code, ExpiresAt: link.ExpiresAt.Format(time.RFC3339)})
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "redeem <code>",
		Short: "Sign in with a code from another device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignIn(cmd, func(ctx context.Context, sess *tracker.Session) (identity.Transition, error) {
				return sess.RedeemDeviceLink(ctx, args[0])
			})
		},
	})

	return cmd
}
