package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagebionetworks/bridge-sdk-go/internal/api"
	"github.com/sagebionetworks/bridge-sdk-go/internal/bridge"
	"github.com/sagebionetworks/bridge-sdk-go/internal/dryrun"
	"github.com/sagebionetworks/bridge-sdk-go/internal/iocontext"
	"github.com/sagebionetworks/bridge-sdk-go/internal/outfmt"
)

func newSurveysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "surveys",
		Aliases: []string{"survey"},
		Short:   "Browse and publish surveys",
		Long: strings.TrimSpace(`
Browse and publish surveys. Participants can read published surveys with
'get'; listing, versions, publishing and deleting need the developer role.

A survey revision is addressed by its guid and --created-on timestamp.
`),
	}
	cmd.AddCommand(newSurveysListCmd())
	cmd.AddCommand(newSurveysGetCmd())
	cmd.AddCommand(newSurveysVersionsCmd())
	cmd.AddCommand(newSurveysPublishCmd())
	cmd.AddCommand(newSurveysDeleteCmd())
	return cmd
}

func newSurveysListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the most recent revision of every survey",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *bridge.Client) error {
				surveys, err := c.GetAllSurveys(ctx)
				if err != nil {
					return err
				}
				return printSurveys(ctx, surveys)
			})
		},
	}
}

func newSurveysGetCmd() *cobra.Command {
	var createdOn string

	cmd := &cobra.Command{
		Use:   "get <guid>",
		Short: "Show a survey and its questions",
		Long:  "Show a survey revision. Without --created-on the newest published revision is shown.",
		Example: strings.TrimSpace(`
  bridge surveys get 0b3c7e62-6f1d-4c53-9a8e-1d1c2f6f0a11
  bridge surveys get 0b3c7e62-6f1d-4c53-9a8e-1d1c2f6f0a11 --created-on 2024-03-01T09:30:00Z
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			guid := args[0]
			var keys *api.GuidCreatedOnVersionHolder
			if createdOn != "" {
				k, err := surveyKeys(guid, createdOn)
				if err != nil {
					return err
				}
				keys = &k
			}

			return withClient(cmd.Context(), func(ctx context.Context, c *bridge.Client) error {
				var (
					survey *api.Survey
					err    error
				)
				if keys != nil {
					survey, err = c.GetSurvey(ctx, *keys)
				} else {
					survey, err = c.GetPublishedSurvey(ctx, guid)
				}
				if err != nil {
					return err
				}
				return printResult(ctx, survey, func(f *outfmt.Formatter) error {
					printSurveyDetail(ctx, survey)
					if len(survey.Elements) == 0 {
						return nil
					}
					f.StartTable([]string{"IDENTIFIER", "TYPE", "PROMPT"})
					for _, e := range survey.Elements {
						prompt := e.Prompt
						if prompt == "" {
							prompt = e.Title
						}
						f.Row(e.Identifier, e.Type, truncate(prompt, 60))
					}
					return f.EndTable()
				})
			})
		},
	}

	cmd.Flags().StringVar(&createdOn, "created-on", "", "Revision timestamp (RFC 3339)")
	return cmd
}

func newSurveysVersionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions <guid>",
		Short: "List every revision of a survey",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *bridge.Client) error {
				surveys, err := c.GetSurveyVersions(ctx, args[0])
				if err != nil {
					return err
				}
				return printSurveys(ctx, surveys)
			})
		},
	}
}

func newSurveysPublishCmd() *cobra.Command {
	var createdOn string

	cmd := &cobra.Command{
		Use:   "publish <guid>",
		Short: "Publish a survey revision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := surveyKeys(args[0], createdOn)
			if err != nil {
				return err
			}
			preview := dryrun.New("publish", "survey "+keys.GUID).With("createdOn", api.FormatCreatedOn(keys.CreatedOn))
			if done, err := previewed(cmd.Context(), preview); done {
				return err
			}
			return withClient(cmd.Context(), func(ctx context.Context, c *bridge.Client) error {
				published, err := c.PublishSurvey(ctx, keys)
				if err != nil {
					return err
				}
				return printAction(ctx, map[string]any{
					"guid":      published.GUID,
					"createdOn": published.CreatedOn,
					"version":   published.Version,
					"published": true,
				}, fmt.Sprintf("Published survey %s (version %d)", published.GUID, published.Version))
			})
		},
	}

	cmd.Flags().StringVar(&createdOn, "created-on", "", "Revision timestamp (RFC 3339, required)")
	return cmd
}

func newSurveysDeleteCmd() *cobra.Command {
	var createdOn string

	cmd := &cobra.Command{
		Use:   "delete <guid>",
		Short: "Delete an unpublished survey revision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := surveyKeys(args[0], createdOn)
			if err != nil {
				return err
			}
			preview := dryrun.New("delete", "survey "+keys.GUID).With("createdOn", api.FormatCreatedOn(keys.CreatedOn))
			if done, err := previewed(cmd.Context(), preview); done {
				return err
			}
			if !confirm(cmd.Context(), fmt.Sprintf("Delete survey %s revision %s?", keys.GUID, createdOn)) {
				return usageErrorf("aborted")
			}
			return withClient(cmd.Context(), func(ctx context.Context, c *bridge.Client) error {
				if err := c.DeleteSurvey(ctx, keys); err != nil {
					return err
				}
				return printAction(ctx, map[string]any{"guid": keys.GUID, "createdOn": keys.CreatedOn, "deleted": true},
					"Deleted survey "+keys.GUID)
			})
		},
	}

	cmd.Flags().StringVar(&createdOn, "created-on", "", "Revision timestamp (RFC 3339, required)")
	return cmd
}

func printSurveys(ctx context.Context, surveys []api.Survey) error {
	return printResult(ctx, surveys, func(f *outfmt.Formatter) error {
		if len(surveys) == 0 {
			f.Empty("No surveys found")
			return nil
		}
		f.StartTable([]string{"GUID", "NAME", "IDENTIFIER", "CREATED", "VERSION", "PUBLISHED"})
		for _, s := range surveys {
			f.Row(s.GUID, s.Name, s.Identifier, formatTime(s.CreatedOn), fmt.Sprint(s.Version), fmt.Sprint(s.Published))
		}
		return f.EndTable()
	})
}

func printSurveyDetail(ctx context.Context, s *api.Survey) {
	out := iocontext.GetIO(ctx).Out
	_, _ = fmt.Fprintf(out, "%s (%s)\n", s.Name, s.Identifier)
	_, _ = fmt.Fprintf(out, "GUID:      %s\n", s.GUID)
	if s.CreatedOn != nil {
		_, _ = fmt.Fprintf(out, "Created:   %s\n", s.CreatedOn.UTC().Format("2006-01-02T15:04:05.000Z"))
	}
	_, _ = fmt.Fprintf(out, "Version:   %d\n", s.Version)
	_, _ = fmt.Fprintf(out, "Published: %t\n\n", s.Published)
}
