package cmd

import (
	"context"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagebionetworks/bridge-sdk-go/internal/api"
	"github.com/sagebionetworks/bridge-sdk-go/internal/bridge"
	"github.com/sagebionetworks/bridge-sdk-go/internal/dryrun"
	"github.com/sagebionetworks/bridge-sdk-go/internal/outfmt"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and update the signed-in participant's profile",
	}
	cmd.AddCommand(newProfileGetCmd())
	cmd.AddCommand(newProfileUpdateCmd())
	return cmd
}

func newProfileGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *bridge.Client) error {
				profile, err := c.GetProfile(ctx)
				if err != nil {
					return err
				}
				return printProfile(ctx, profile)
			})
		},
	}
}

func newProfileUpdateCmd() *cobra.Command {
	var (
		firstName  string
		lastName   string
		attributes []string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields",
		Example: strings.TrimSpace(`
  bridge profile update --first-name Ada --last-name Lovelace
  bridge profile update --attribute phone=555-0100 --attribute can_be_recontacted=true
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := cmd.Flags().Changed("first-name") || cmd.Flags().Changed("last-name") || len(attributes) > 0
			if !changed {
				return usageErrorf("nothing to update: set --first-name, --last-name or --attribute")
			}
			attrs, err := parseAttributes(attributes)
			if err != nil {
				return err
			}
			preview := dryrun.New("update", "profile")
			if cmd.Flags().Changed("first-name") {
				preview.With("firstName", firstName)
			}
			if cmd.Flags().Changed("last-name") {
				preview.With("lastName", lastName)
			}
			for k, v := range attrs {
				preview.With("attributes."+k, v)
			}
			if done, err := previewed(cmd.Context(), preview); done {
				return err
			}

			return withClient(cmd.Context(), func(ctx context.Context, c *bridge.Client) error {
				profile, err := c.GetProfile(ctx)
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("first-name") {
					profile.FirstName = firstName
				}
				if cmd.Flags().Changed("last-name") {
					profile.LastName = lastName
				}
				if len(attrs) > 0 && profile.Attributes == nil {
					profile.Attributes = make(map[string]string, len(attrs))
				}
				for k, v := range attrs {
					profile.Attributes[k] = v
				}
				if err := c.UpdateProfile(ctx, *profile); err != nil {
					return err
				}
				return printProfile(ctx, profile)
			})
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	cmd.Flags().StringArrayVar(&attributes, "attribute", nil, "Study attribute as key=value (repeatable)")
	return cmd
}

func parseAttributes(values []string) (map[string]string, error) {
	attrs := make(map[string]string, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, usageErrorf("invalid --attribute %q: use key=value", v)
		}
		attrs[key] = value
	}
	return attrs, nil
}

func printProfile(ctx context.Context, profile *api.UserProfile) error {
	return printResult(ctx, profile, func(f *outfmt.Formatter) error {
		f.StartTable([]string{"FIELD", "VALUE"})
		f.Row("username", profile.Username)
		f.Row("email", profile.Email)
		f.Row("firstName", profile.FirstName)
		f.Row("lastName", profile.LastName)
		keys := make([]string, 0, len(profile.Attributes))
		for k := range profile.Attributes {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			f.Row(k, profile.Attributes[k])
		}
		return f.EndTable()
	})
}
