package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagebionetworks/bridge-sdk-go/internal/api"
	"github.com/sagebionetworks/bridge-sdk-go/internal/bridge"
	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
	"github.com/sagebionetworks/bridge-sdk-go/internal/iocontext"
	"github.com/sagebionetworks/bridge-sdk-go/internal/outfmt"
)

// newAuthCmd returns the auth command with subcommands
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in and out of Bridge",
		Long:  "Sign in to the configured Bridge server. Sessions are stored in your OS keychain, one per profile.",
	}

	cmd.AddCommand(newAuthSignInCmd())
	cmd.AddCommand(newAuthSignOutCmd())
	cmd.AddCommand(newAuthStatusCmd())

	return cmd
}

func newAuthSignInCmd() *cobra.Command {
	var (
		username      string
		passwordStdin bool
		admin         bool
	)

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and store the session",
		Long: strings.TrimSpace(`
Sign in and store the session under the active profile.

Without --username the participant account from the configuration is used,
or the admin account with --admin. With --username the password is read
from stdin.
`),
		Example: strings.TrimSpace(`
  # Sign in as the configured participant
  bridge auth signin

  # Sign in as the configured admin under a separate profile
  bridge auth signin --admin --profile admin

  # Sign in as another account
  echo "$PASSWORD" | bridge auth signin --username researcher@example.org --password-stdin
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if username != "" && admin {
				return usageErrorf("--username and --admin cannot be used together")
			}
			if username != "" && !passwordStdin {
				return usageErrorf("--username requires --password-stdin")
			}

			p, err := newProvider()
			if err != nil {
				return err
			}
			defer func() { _ = p.Close() }()

			var session api.Session
			switch {
			case username != "":
				password, err := readPassword(ctx)
				if err != nil {
					return err
				}
				session, err = p.SignIn(ctx, username, password)
				if err != nil {
					return err
				}
			case admin:
				session, err = p.SignInAdmin(ctx)
			default:
				session, err = p.SignInParticipant(ctx)
			}
			if err != nil {
				return err
			}

			profile := resolveProfile()
			if err := storeSession(profile, p.Config().Host(), session); err != nil {
				return err
			}
			return printSession(ctx, profile, session)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Account to sign in as (default: configured participant)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	cmd.Flags().BoolVar(&admin, "admin", false, "Sign in as the configured admin account")
	return cmd
}

func readPassword(ctx context.Context) (string, error) {
	line, err := bufio.NewReader(iocontext.GetIO(ctx).In).ReadString('\n')
	if err != nil && line == "" {
		return "", usageErrorf("no password on stdin")
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", usageErrorf("no password on stdin")
	}
	return password, nil
}

func newAuthSignOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out and remove the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			profile := resolveProfile()

			p, err := signedInProvider()
			if errors.Is(err, config.ErrNoSession) {
				_, _ = fmt.Fprintf(iocontext.GetIO(ctx).ErrOut, "Profile %q is not signed in\n", profile)
				return nil
			}
			if err != nil {
				return err
			}
			defer func() { _ = p.Close() }()

			signOutErr := p.SignOut(ctx)
			if err := config.DeleteSession(profile); err != nil {
				return err
			}
			if signOutErr != nil {
				_, _ = fmt.Fprintf(iocontext.GetIO(ctx).ErrOut, "Warning: server sign-out failed: %v\n", signOutErr)
			}
			_, _ = fmt.Fprintf(iocontext.GetIO(ctx).ErrOut, "Signed out of profile %q\n", profile)
			return nil
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session of the active profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			profile := resolveProfile()

			p, err := signedInProvider()
			if err != nil {
				if !isSignedOutError(err) {
					return err
				}
				if outfmt.IsJSON(ctx) {
					return outfmt.NewFormatter(ctx, iocontext.GetIO(ctx).Out, iocontext.GetIO(ctx).ErrOut).
						Output(map[string]any{"profile": profile, "authenticated": false})
				}
				_, _ = fmt.Fprintf(iocontext.GetIO(ctx).Out, "Profile %q is not signed in\n", profile)
				return nil
			}
			defer func() { _ = p.Close() }()
			return printSession(ctx, profile, p.Session())
		},
	}
}

func printSession(ctx context.Context, profile string, session api.Session) error {
	streams := iocontext.GetIO(ctx)
	if outfmt.IsJSON(ctx) {
		return outfmt.NewFormatter(ctx, streams.Out, streams.ErrOut).Output(map[string]any{
			"profile":       profile,
			"authenticated": session.SignedIn(),
			"username":      session.Username,
			"email":         session.Email,
			"roles":         bridge.RolesOf(session).String(),
			"consented":     session.Consented,
			"dataSharing":   session.DataSharing,
			"sharingScope":  session.SharingScope,
		})
	}
	name := session.Username
	if name == "" {
		name = session.Email
	}
	_, _ = fmt.Fprintf(streams.Out, "Profile:   %s\n", profile)
	_, _ = fmt.Fprintf(streams.Out, "Signed in: %s\n", name)
	_, _ = fmt.Fprintf(streams.Out, "Roles:     %s\n", bridge.RolesOf(session))
	_, _ = fmt.Fprintf(streams.Out, "Consented: %t\n", session.Consented)
	return nil
}
