package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagebionetworks/bridge-sdk-go/internal/api"
	"github.com/sagebionetworks/bridge-sdk-go/internal/bridge"
	"github.com/sagebionetworks/bridge-sdk-go/internal/iocontext"
	"github.com/sagebionetworks/bridge-sdk-go/internal/outfmt"
	"github.com/sagebionetworks/bridge-sdk-go/internal/resolve"
)

func newTrackersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "trackers",
		Aliases: []string{"tracker"},
		Short:   "List health data trackers",
	}
	cmd.AddCommand(newTrackersListCmd())
	cmd.AddCommand(newTrackersSchemaCmd())
	return cmd
}

func newTrackersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the study's trackers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *bridge.Client) error {
				trackers, err := c.GetAllTrackers(ctx)
				if err != nil {
					return err
				}
				return printResult(ctx, trackers, func(f *outfmt.Formatter) error {
					if len(trackers) == 0 {
						f.Empty("No trackers found")
						return nil
					}
					f.StartTable([]string{"ID", "NAME", "TYPE"})
					for _, t := range trackers {
						f.Row(t.ID.String(), t.Name, t.Type)
					}
					return f.EndTable()
				})
			})
		},
	}
}

func newTrackersSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <tracker>",
		Short: "Show the JSON schema of a tracker's records",
		Long:  "Show the JSON schema of a tracker's records. The tracker is matched by id, then by name, then fuzzily.",
		Example: strings.TrimSpace(`
  bridge trackers schema 1
  bridge trackers schema "blood pressure"
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *bridge.Client) error {
				tracker, err := findTracker(ctx, c, args[0])
				if err != nil {
					return err
				}
				schema, err := c.GetSchema(ctx, tracker)
				if err != nil {
					return err
				}
				if outfmt.IsJSON(ctx) && json.Valid([]byte(schema)) {
					return printResult(ctx, json.RawMessage(schema), nil)
				}
				_, _ = fmt.Fprintln(iocontext.GetIO(ctx).Out, strings.TrimSpace(schema))
				return nil
			})
		},
	}
}

// findTracker resolves a --tracker value against the study's trackers.
func findTracker(ctx context.Context, c *bridge.Client, query string) (api.Tracker, error) {
	trackers, err := c.GetAllTrackers(ctx)
	if err != nil {
		return api.Tracker{}, err
	}
	items := make([]resolve.Named, len(trackers))
	for i, t := range trackers {
		items[i] = resolve.Named{ID: t.ID.String(), Name: t.Name}
	}
	match, err := resolve.Resolve(query, items)
	if err != nil {
		if errors.Is(err, resolve.ErrEmptyItems) {
			return api.Tracker{}, &resolve.NotFoundError{Query: query}
		}
		return api.Tracker{}, err
	}
	for _, t := range trackers {
		if t.ID.String() == match.ID {
			return t, nil
		}
	}
	return api.Tracker{}, &resolve.NotFoundError{Query: query}
}
