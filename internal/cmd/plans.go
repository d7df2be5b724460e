package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagebionetworks/bridge-sdk-go/internal/api"
	"github.com/sagebionetworks/bridge-sdk-go/internal/bridge"
	"github.com/sagebionetworks/bridge-sdk-go/internal/dryrun"
	"github.com/sagebionetworks/bridge-sdk-go/internal/outfmt"
)

func newPlansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "plans",
		Aliases: []string{"plan"},
		Short:   "Manage schedule plans (developer)",
	}
	cmd.AddCommand(newPlansListCmd())
	cmd.AddCommand(newPlansGetCmd())
	cmd.AddCommand(newPlansDeleteCmd())
	return cmd
}

func newPlansListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the study's schedule plans",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *bridge.Client) error {
				plans, err := c.GetAllSchedulePlans(ctx)
				if err != nil {
					return err
				}
				return printResult(ctx, plans, func(f *outfmt.Formatter) error {
					if len(plans) == 0 {
						f.Empty("No schedule plans found")
						return nil
					}
					printPlans(f, plans)
					return f.EndTable()
				})
			})
		},
	}
}

func newPlansGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <guid>",
		Short: "Show a schedule plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *bridge.Client) error {
				plan, err := c.GetSchedulePlan(ctx, args[0])
				if err != nil {
					return err
				}
				return printResult(ctx, plan, func(f *outfmt.Formatter) error {
					printPlans(f, []api.SchedulePlan{*plan})
					return f.EndTable()
				})
			})
		},
	}
}

func newPlansDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <guid>",
		Short: "Delete a schedule plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			guid := args[0]
			if done, err := previewed(cmd.Context(), dryrun.New("delete", "schedule plan "+guid)); done {
				return err
			}
			if !confirm(cmd.Context(), fmt.Sprintf("Delete schedule plan %s?", guid)) {
				return usageErrorf("aborted")
			}
			return withClient(cmd.Context(), func(ctx context.Context, c *bridge.Client) error {
				if err := c.DeleteSchedulePlan(ctx, guid); err != nil {
					return err
				}
				return printAction(ctx, map[string]any{"guid": guid, "deleted": true}, "Deleted schedule plan "+guid)
			})
		},
	}
}

func printPlans(f *outfmt.Formatter, plans []api.SchedulePlan) {
	f.StartTable([]string{"GUID", "LABEL", "VERSION", "STRATEGY", "MODIFIED"})
	for _, p := range plans {
		f.Row(p.GUID, p.Label, fmt.Sprint(p.Version), p.StrategyType(), formatTime(p.ModifiedOn))
	}
}
