package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagebionetworks/bridge-sdk-go/internal/api"
	"github.com/sagebionetworks/bridge-sdk-go/internal/bridge"
	"github.com/sagebionetworks/bridge-sdk-go/internal/dryrun"
	"github.com/sagebionetworks/bridge-sdk-go/internal/outfmt"
)

func newConsentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consent",
		Short: "Manage the participant's study consent",
	}
	cmd.AddCommand(newConsentGetCmd())
	cmd.AddCommand(newConsentSignCmd())
	cmd.AddCommand(newConsentWithdrawCmd())
	cmd.AddCommand(newConsentEmailCmd())
	cmd.AddCommand(newConsentSharingCmd())
	return cmd
}

func newConsentGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the consent signature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *bridge.Client) error {
				sig, err := c.GetConsentSignature(ctx)
				if err != nil {
					return err
				}
				return printResult(ctx, sig, func(f *outfmt.Formatter) error {
					f.StartTable([]string{"FIELD", "VALUE"})
					f.Row("name", sig.Name)
					f.Row("birthdate", sig.Birthdate)
					f.Row("signed", formatTime(sig.SignedOn))
					if sig.Scope != "" {
						f.Row("sharing", sig.Scope)
					}
					return f.EndTable()
				})
			})
		},
	}
}

var sharingScopes = map[string]string{
	"none":                  api.SharingNone,
	"sponsors":              api.SharingSponsors,
	"all":                   api.SharingAllQualified,
	api.SharingNone:         api.SharingNone,
	api.SharingSponsors:     api.SharingSponsors,
	api.SharingAllQualified: api.SharingAllQualified,
}

func newConsentSignCmd() *cobra.Command {
	var name, birthdate, scope string

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Consent to the study",
		Example: strings.TrimSpace(`
  bridge consent sign --name "Ada Lovelace" --birthdate 1815-12-10 --sharing sponsors
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sharing, ok := sharingScopes[strings.ToLower(strings.TrimSpace(scope))]
			if !ok {
				return usageErrorf("invalid --sharing %q: use none, sponsors or all", scope)
			}
			sig, err := api.NewConsentSignature(name, birthdate, "", "")
			if err != nil {
				return err
			}
			preview := dryrun.New("sign", "study consent").
				With("name", sig.Name).
				With("birthdate", birthdate).
				With("sharingScope", sharing)
			if done, err := previewed(cmd.Context(), preview); done {
				return err
			}
			return withClient(cmd.Context(), func(ctx context.Context, c *bridge.Client) error {
				if err := c.ConsentToResearch(ctx, sig, sharing); err != nil {
					return err
				}
				return printAction(ctx, map[string]any{"consented": true, "sharingScope": sharing}, "Consented to the study")
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Full name of the signer (required)")
	cmd.Flags().StringVar(&birthdate, "birthdate", "", "Birthdate as YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&scope, "sharing", "none", "Data sharing: none, sponsors or all")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("birthdate")
	return cmd
}

func newConsentWithdrawCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Withdraw from the study",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			preview := dryrun.New("withdraw", "study consent").
				With("reason", reason).
				Warn("the participant stops contributing data")
			if done, err := previewed(cmd.Context(), preview); done {
				return err
			}
			if !confirm(cmd.Context(), "Withdraw consent? The participant stops contributing data.") {
				return usageErrorf("aborted")
			}
			return withClient(cmd.Context(), func(ctx context.Context, c *bridge.Client) error {
				if err := c.WithdrawConsent(ctx, reason); err != nil {
					return err
				}
				return printAction(ctx, map[string]any{"withdrawn": true, "reason": reason}, "Consent withdrawn")
			})
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Reason for withdrawing")
	return cmd
}

func newConsentEmailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "email",
		Short: "Email a copy of the signed consent to the participant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if done, err := previewed(cmd.Context(), dryrun.New("email", "a copy of the signed consent")); done {
				return err
			}
			return withClient(cmd.Context(), func(ctx context.Context, c *bridge.Client) error {
				if err := c.EmailConsentSignature(ctx); err != nil {
					return err
				}
				return printAction(ctx, map[string]any{"emailed": true}, "Consent copy sent")
			})
		},
	}
}

func newConsentSharingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "sharing <suspend|resume>",
		Short:     "Suspend or resume data sharing",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"suspend", "resume"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := strings.ToLower(args[0])
			if action != "suspend" && action != "resume" {
				return usageErrorf("unknown sharing action %q: use suspend or resume", args[0])
			}
			if done, err := previewed(cmd.Context(), dryrun.New(action, "data sharing")); done {
				return err
			}
			return withClient(cmd.Context(), func(ctx context.Context, c *bridge.Client) error {
				if action == "suspend" {
					if err := c.SuspendDataSharing(ctx); err != nil {
						return err
					}
					return printAction(ctx, map[string]any{"sharing": false}, "Data sharing suspended")
				}
				if err := c.ResumeDataSharing(ctx); err != nil {
					return err
				}
				return printAction(ctx, map[string]any{"sharing": true}, "Data sharing resumed")
			})
		},
	}
	return cmd
}
