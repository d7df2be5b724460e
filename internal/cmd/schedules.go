package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagebionetworks/bridge-sdk-go/internal/api"
	"github.com/sagebionetworks/bridge-sdk-go/internal/bridge"
	"github.com/sagebionetworks/bridge-sdk-go/internal/outfmt"
)

func newSchedulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schedules",
		Aliases: []string{"schedule"},
		Short:   "Show the participant's schedules",
	}
	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List schedules assigned to the participant",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *bridge.Client) error {
				schedules, err := c.GetSchedules(ctx)
				if err != nil {
					return err
				}
				return printResult(ctx, schedules, func(f *outfmt.Formatter) error {
					if len(schedules) == 0 {
						f.Empty("No schedules found")
						return nil
					}
					f.StartTable([]string{"LABEL", "TYPE", "TRIGGER", "ACTIVITIES", "PLAN"})
					for _, s := range schedules {
						f.Row(s.Label, s.ScheduleType, scheduleTrigger(s), activityLabels(s.Activities), s.SchedulePlanGUID)
					}
					return f.EndTable()
				})
			})
		},
	})
	return cmd
}

func newActivitiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "activities",
		Aliases: []string{"activity"},
		Short:   "Show the participant's scheduled activities",
	}

	var days int
	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List activities due in the next days",
		Example: strings.TrimSpace(`
  bridge activities list
  bridge activities list --days 4 -o json
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 0 || days > api.MaxDaysAhead {
				return usageErrorf("--days must be between 0 and %d", api.MaxDaysAhead)
			}
			var until time.Time
			if days > 0 {
				until = time.Now().AddDate(0, 0, days)
			}
			return withClient(cmd.Context(), func(ctx context.Context, c *bridge.Client) error {
				activities, err := c.GetScheduledActivities(ctx, until)
				if err != nil {
					return err
				}
				return printResult(ctx, activities, func(f *outfmt.Formatter) error {
					if len(activities) == 0 {
						f.Empty("No activities due")
						return nil
					}
					f.StartTable([]string{"GUID", "LABEL", "TYPE", "STATUS", "SCHEDULED", "EXPIRES"})
					for _, a := range activities {
						f.Row(a.GUID, a.Activity.Label, a.Activity.ActivityType, a.Status, formatTime(a.ScheduledOn), formatTime(a.ExpiresOn))
					}
					return f.EndTable()
				})
			})
		},
	}
	list.Flags().IntVar(&days, "days", 0, fmt.Sprintf("Days ahead to include (0-%d)", api.MaxDaysAhead))
	cmd.AddCommand(list)
	return cmd
}

func scheduleTrigger(s api.Schedule) string {
	switch {
	case s.CronTrigger != "":
		return s.CronTrigger
	case s.Interval != "":
		return "every " + s.Interval
	case s.EventID != "":
		return "on " + s.EventID
	default:
		return "-"
	}
}

func activityLabels(activities []api.Activity) string {
	labels := make([]string, 0, len(activities))
	for _, a := range activities {
		labels = append(labels, a.Label)
	}
	if len(labels) == 0 {
		return "-"
	}
	return strings.Join(labels, ", ")
}
