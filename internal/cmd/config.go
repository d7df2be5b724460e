package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
	"github.com/sagebionetworks/bridge-sdk-go/internal/iocontext"
	"github.com/sagebionetworks/bridge-sdk-go/internal/outfmt"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "Inspect configuration and stored sessions",
	}
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigProfilesCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long:  "Show the effective configuration after environment overrides, with passwords redacted, and the BRIDGE_* transport settings.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			settings, err := config.LoadSettings()
			if err != nil {
				return err
			}

			entries := cfg.Entries()
			if outfmt.IsJSON(ctx) {
				values := make(map[string]string, len(entries))
				for _, e := range entries {
					values[e[0]] = e[1]
				}
				return printResult(ctx, map[string]any{
					"source":   cfg.Source(),
					"values":   values,
					"settings": settings,
				}, nil)
			}

			return printResult(ctx, nil, func(f *outfmt.Formatter) error {
				_, _ = fmt.Fprintf(iocontext.GetIO(ctx).Out, "Source: %s\n\n", sourceLabel(cfg.Source()))
				f.StartTable([]string{"KEY", "VALUE"})
				for _, e := range entries {
					f.Row(e[0], e[1])
				}
				f.Row("timeout", settings.Timeout.String())
				f.Row("max_retries", fmt.Sprint(settings.MaxRetries))
				f.Row("follow_redirects", fmt.Sprint(settings.FollowRedirects))
				f.Row("rate_limit", fmt.Sprint(settings.RateLimit))
				f.Row("cache", settings.Cache)
				return f.EndTable()
			})
		},
	}
}

func sourceLabel(source string) string {
	if source == "" {
		return "environment only"
	}
	return source
}

func newConfigProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage stored session profiles",
	}
	cmd.AddCommand(newProfilesListCmd())
	cmd.AddCommand(newProfilesUseCmd())
	cmd.AddCommand(newProfilesDeleteCmd())
	return cmd
}

func newProfilesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List profiles with a stored session",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			profiles, err := config.ListSessions()
			if err != nil {
				return err
			}
			current, _ := config.CurrentProfile()
			if outfmt.IsJSON(ctx) {
				return printResult(ctx, map[string]any{"current": current, "profiles": profiles}, nil)
			}
			return printResult(ctx, nil, func(f *outfmt.Formatter) error {
				if len(profiles) == 0 {
					f.Empty("No stored sessions. Run 'bridge auth signin' to add one.")
					return nil
				}
				f.StartTable([]string{"PROFILE", "CURRENT"})
				for _, p := range profiles {
					marker := ""
					if p == current {
						marker = "*"
					}
					f.Row(p, marker)
				}
				return f.EndTable()
			})
		},
	}
}

func newProfilesUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <profile>",
		Short: "Make a profile the default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := args[0]
			profiles, err := config.ListSessions()
			if err != nil {
				return err
			}
			if !slices.Contains(profiles, profile) {
				return fmt.Errorf("profile %q has no stored session: %w", profile, config.ErrNoSession)
			}
			if err := config.SetCurrentProfile(profile); err != nil {
				return err
			}
			return printAction(cmd.Context(), map[string]any{"current": profile}, "Switched to profile "+profile)
		},
	}
}

func newProfilesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <profile>",
		Aliases: []string{"rm"},
		Short:   "Forget a profile's stored session without signing out",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := args[0]
			if err := config.DeleteSession(profile); err != nil {
				return err
			}
			return printAction(cmd.Context(), map[string]any{"profile": profile, "deleted": true}, "Deleted profile "+profile)
		},
	}
}
