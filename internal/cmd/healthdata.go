package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagebionetworks/bridge-sdk-go/internal/api"
	"github.com/sagebionetworks/bridge-sdk-go/internal/bridge"
	"github.com/sagebionetworks/bridge-sdk-go/internal/dryrun"
	"github.com/sagebionetworks/bridge-sdk-go/internal/iocontext"
	"github.com/sagebionetworks/bridge-sdk-go/internal/outfmt"
)

func newHealthDataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "healthdata",
		Aliases: []string{"hd"},
		Short:   "Read and record tracker data",
	}
	cmd.AddCommand(newHealthDataListCmd())
	cmd.AddCommand(newHealthDataGetCmd())
	cmd.AddCommand(newHealthDataAddCmd())
	cmd.AddCommand(newHealthDataDeleteCmd())
	return cmd
}

func newHealthDataListCmd() *cobra.Command {
	var tracker, since, until string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List records in a time range",
		Long:    "List a tracker's records that overlap the range. Defaults to the last 7 days.",
		Example: strings.TrimSpace(`
  bridge healthdata list --tracker "blood pressure"
  bridge healthdata list --tracker 1 --since 2024-03-01 --until 2024-03-31 -o json
  bridge healthdata list --tracker 1 --since "last monday"
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseTimeFlag("since", since)
			if err != nil {
				return err
			}
			end, err := parseTimeFlag("until", until)
			if err != nil {
				return err
			}
			if end.IsZero() {
				end = time.Now().UTC()
			}
			if start.IsZero() {
				start = end.AddDate(0, 0, -7)
			}
			if end.Before(start) {
				return usageErrorf("--until must not be before --since")
			}

			return withClient(cmd.Context(), func(ctx context.Context, c *bridge.Client) error {
				t, err := findTracker(ctx, c, tracker)
				if err != nil {
					return err
				}
				records, err := c.GetHealthData(ctx, t, start, end)
				if err != nil {
					return err
				}
				return printResult(ctx, records, func(f *outfmt.Formatter) error {
					if len(records) == 0 {
						f.Empty("No records found")
						return nil
					}
					printRecords(f, records)
					return f.EndTable()
				})
			})
		},
	}

	cmd.Flags().StringVar(&tracker, "tracker", "", "Tracker id or name (required)")
	cmd.Flags().StringVar(&since, "since", "", "Start of the range (date, RFC 3339, yesterday, 3d ago...)")
	cmd.Flags().StringVar(&until, "until", "", "End of the range (default now)")
	_ = cmd.MarkFlagRequired("tracker")
	return cmd
}

func newHealthDataGetCmd() *cobra.Command {
	var tracker string

	cmd := &cobra.Command{
		Use:   "get <record-id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *bridge.Client) error {
				t, err := findTracker(ctx, c, tracker)
				if err != nil {
					return err
				}
				record, err := c.GetHealthDataRecord(ctx, t, args[0])
				if err != nil {
					return err
				}
				return printResult(ctx, record, func(f *outfmt.Formatter) error {
					printRecords(f, []api.HealthDataRecord{*record})
					return f.EndTable()
				})
			})
		},
	}

	cmd.Flags().StringVar(&tracker, "tracker", "", "Tracker id or name (required)")
	_ = cmd.MarkFlagRequired("tracker")
	return cmd
}

func newHealthDataAddCmd() *cobra.Command {
	var (
		tracker     string
		file        string
		batchSize   int
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record new tracker data from a JSON file",
		Long: strings.TrimSpace(`
Record tracker data. The file holds a JSON array of records, each with
startDate and endDate in epoch milliseconds and a data object matching the
tracker's schema (see 'bridge trackers schema'). Use --file - to read stdin.

With --batch-size, records are posted in batches of that size, several at a
time.
`),
		Example: strings.TrimSpace(`
  bridge healthdata add --tracker "blood pressure" --file readings.json
  cat readings.json | bridge healthdata add --tracker 1 --file - --batch-size 50
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if batchSize < 0 {
				return usageErrorf("--batch-size must not be negative")
			}
			records, err := readRecords(cmd.Context(), file)
			if err != nil {
				return err
			}
			preview := dryrun.New("record", fmt.Sprintf("%d health data record(s)", len(records))).
				With("tracker", tracker)
			if batchSize > 0 && len(records) > batchSize {
				preview.With("batches", len(chunkRecords(records, batchSize)))
			}
			if done, err := previewed(cmd.Context(), preview); done {
				return err
			}

			return withClient(cmd.Context(), func(ctx context.Context, c *bridge.Client) error {
				t, err := findTracker(ctx, c, tracker)
				if err != nil {
					return err
				}

				var ids []api.IdVersionHolder
				if batchSize == 0 || len(records) <= batchSize {
					ids, err = c.AddHealthData(ctx, t, records)
					if err != nil {
						return err
					}
				} else {
					results, err := c.AddHealthDataBatch(ctx, t, chunkRecords(records, batchSize), concurrency)
					if err != nil {
						return err
					}
					var failed error
					for _, r := range results {
						if r.Err != nil {
							_, _ = fmt.Fprintf(iocontext.GetIO(ctx).ErrOut, "batch %d failed: %v\n", r.Index+1, r.Err)
							if failed == nil {
								failed = r.Err
							}
							continue
						}
						ids = append(ids, r.IDs...)
					}
					if failed != nil {
						_ = printAddedRecords(ctx, ids)
						return fmt.Errorf("recorded %d of %d records: %w", len(ids), len(records), failed)
					}
				}
				return printAddedRecords(ctx, ids)
			})
		},
	}

	cmd.Flags().StringVar(&tracker, "tracker", "", "Tracker id or name (required)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file of records, or - for stdin (required)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Records per request (0 sends all at once)")
	cmd.Flags().IntVar(&concurrency, "concurrency", bridge.DefaultConcurrency, "Batches in flight at once")
	_ = cmd.MarkFlagRequired("tracker")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newHealthDataDeleteCmd() *cobra.Command {
	var (
		tracker     string
		concurrency int64
	)

	cmd := &cobra.Command{
		Use:   "delete <record-id>...",
		Short: "Delete records",
		Example: strings.TrimSpace(`
  bridge healthdata delete --tracker 1 3f1c9a2e
  bridge healthdata delete --tracker 1 3f1c9a2e 7b20d4c1 --yes
`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := dedupe(args)
			if len(ids) == 0 {
				return usageErrorf("no record ids given")
			}
			preview := dryrun.New("delete", fmt.Sprintf("%d health data record(s)", len(ids))).
				With("tracker", tracker).
				With("records", ids).
				Warn("deleted records cannot be restored")
			if done, err := previewed(cmd.Context(), preview); done {
				return err
			}
			prompt := fmt.Sprintf("Delete %d record(s)?", len(ids))
			if !confirm(cmd.Context(), prompt) {
				return usageErrorf("aborted")
			}

			return withClient(cmd.Context(), func(ctx context.Context, c *bridge.Client) error {
				t, err := findTracker(ctx, c, tracker)
				if err != nil {
					return err
				}
				var progress io.Writer
				if !flags.Quiet && !outfmt.IsJSON(ctx) {
					progress = iocontext.GetIO(ctx).ErrOut
				}
				results := runBulkOperation(ctx, ids, concurrency, progress, func(ctx context.Context, id string) error {
					return c.DeleteHealthDataRecord(ctx, t, id)
				})

				ok, failed := countResults(results)
				if outfmt.IsJSON(ctx) {
					if err := printResult(ctx, results, nil); err != nil {
						return err
					}
				} else {
					for _, r := range results {
						if !r.Success {
							_, _ = fmt.Fprintf(iocontext.GetIO(ctx).ErrOut, "%s: %s\n", r.ID, r.Error)
						}
					}
					_, _ = fmt.Fprintf(iocontext.GetIO(ctx).ErrOut, "Deleted %d record(s), %d failed\n", ok, failed)
				}
				return firstError(results)
			})
		},
	}

	cmd.Flags().StringVar(&tracker, "tracker", "", "Tracker id or name (required)")
	cmd.Flags().Int64Var(&concurrency, "concurrency", DefaultConcurrency, "Deletes in flight at once")
	_ = cmd.MarkFlagRequired("tracker")
	return cmd
}

func printRecords(f *outfmt.Formatter, records []api.HealthDataRecord) {
	f.StartTable([]string{"RECORD", "VERSION", "START", "END", "DATA"})
	for _, r := range records {
		f.Row(r.RecordID, fmt.Sprint(r.Version), formatMillis(r.StartDate), formatMillis(r.EndDate), truncate(string(r.Data), 60))
	}
}

func printAddedRecords(ctx context.Context, ids []api.IdVersionHolder) error {
	return printResult(ctx, ids, func(f *outfmt.Formatter) error {
		f.StartTable([]string{"RECORD", "VERSION"})
		for _, id := range ids {
			f.Row(id.ID, fmt.Sprint(id.Version))
		}
		return f.EndTable()
	})
}

// readRecords decodes a JSON array of records from path, or stdin for "-".
func readRecords(ctx context.Context, path string) ([]api.HealthDataRecord, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(iocontext.GetIO(ctx).In)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	var records []api.HealthDataRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, usageErrorf("invalid records in %s: %v", path, err)
	}
	if len(records) == 0 {
		return nil, usageErrorf("no records in %s", path)
	}
	return records, nil
}

func chunkRecords(records []api.HealthDataRecord, size int) [][]api.HealthDataRecord {
	var batches [][]api.HealthDataRecord
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		batches = append(batches, records[start:end])
	}
	return batches
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
