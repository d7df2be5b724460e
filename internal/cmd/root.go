package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
	"github.com/sagebionetworks/bridge-sdk-go/internal/debug"
	"github.com/sagebionetworks/bridge-sdk-go/internal/dryrun"
	"github.com/sagebionetworks/bridge-sdk-go/internal/iocontext"
	"github.com/sagebionetworks/bridge-sdk-go/internal/metrics"
	"github.com/sagebionetworks/bridge-sdk-go/internal/outfmt"
)

// rootFlags holds global CLI flags
type rootFlags struct {
	Output      string
	Query       string
	Compact     bool
	Debug       bool
	Quiet       bool
	Silent      bool
	Yes         bool
	DryRun      bool
	ConfigPath  string
	Profile     string
	Timeout     time.Duration
	MetricsFile string
}

// flags holds the global command flags. This is package-level mutable state
// that MUST be reset at the start of every Execute() call; tests run many
// commands in one process.
var flags rootFlags

// registry collects the transport metrics of one Execute() call.
var (
	registry  *prometheus.Registry
	collector *metrics.Collector
)

func defaultOutput() string {
	value := strings.TrimSpace(os.Getenv("BRIDGE_OUTPUT"))
	if value != "" {
		return value
	}
	return "text"
}

// Execute runs the root command
func Execute(ctx context.Context, args []string) error {
	flags = rootFlags{Output: defaultOutput()}
	registry = prometheus.NewRegistry()
	collector = metrics.NewCollector(registry)

	root := &cobra.Command{
		Use:           "bridge",
		Short:         "Command-line client for the Bridge study-management service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if flags.Query != "" && flags.Output == "text" {
				if cmd.Flags().Changed("output") {
					return usageErrorf("--query requires --output json or jsonl")
				}
				flags.Output = "json"
			}
			mode, err := outfmt.Parse(flags.Output)
			if err != nil {
				return usageError(err)
			}
			ctx = outfmt.WithMode(ctx, mode)
			ctx = outfmt.WithCompact(ctx, flags.Compact)
			if flags.Query != "" {
				ctx = outfmt.WithQuery(ctx, flags.Query)
			}

			streams := iocontext.GetIO(ctx)
			if flags.Silent || flags.Quiet {
				streams = streams.Quiet(flags.Quiet && mode == outfmt.Text)
			}
			ctx = iocontext.WithIO(ctx, streams)
			cmd.SetOut(streams.Out)
			cmd.SetErr(streams.ErrOut)

			if flags.Timeout < 0 {
				return usageErrorf("--timeout must be >= 0")
			}

			if settings, err := config.LoadSettings(); err == nil && settings.Debug {
				flags.Debug = true
			}
			debug.SetupLogger(flags.Debug)
			ctx = debug.WithDebug(ctx, flags.Debug)
			ctx = dryrun.WithDryRun(ctx, flags.DryRun)

			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetContext(ctx)
	root.SetArgs(args)
	root.PersistentFlags().StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text|json|jsonl (env BRIDGE_OUTPUT)")
	root.PersistentFlags().StringVarP(&flags.Query, "query", "q", "", "jq expression to filter JSON output")
	root.PersistentFlags().BoolVar(&flags.Compact, "compact-json", false, "Compact JSON output (no indentation)")
	root.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "Q", false, "Suppress non-essential output")
	root.PersistentFlags().BoolVar(&flags.Silent, "silent", false, "Suppress non-error output to stderr")
	root.PersistentFlags().BoolVarP(&flags.Yes, "yes", "y", false, "Skip confirmation prompts")
	root.PersistentFlags().BoolVar(&flags.DryRun, "dry-run", false, "Show what would change without changing it")
	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "Properties file (env BRIDGE_SDK_CONFIG, default bridge-sdk.properties)")
	root.PersistentFlags().StringVar(&flags.Profile, "profile", "", "Stored session profile (default: current profile)")
	root.PersistentFlags().DurationVar(&flags.Timeout, "timeout", 0, "HTTP request timeout (e.g., 30s, 2m; env BRIDGE_TIMEOUT)")
	root.PersistentFlags().StringVar(&flags.MetricsFile, "metrics-file", "", "Write request metrics in Prometheus text format to this file on exit")

	root.AddCommand(newAuthCmd())
	root.AddCommand(newProfileCmd())
	root.AddCommand(newTrackersCmd())
	root.AddCommand(newHealthDataCmd())
	root.AddCommand(newSchedulesCmd())
	root.AddCommand(newActivitiesCmd())
	root.AddCommand(newPlansCmd())
	root.AddCommand(newSurveysCmd())
	root.AddCommand(newConsentCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	_, err := root.ExecuteC()
	if flags.MetricsFile != "" {
		if werr := metrics.WriteFile(flags.MetricsFile, registry); werr != nil {
			slog.Warn("failed to write metrics", "path", flags.MetricsFile, "error", werr)
			if err == nil {
				err = fmt.Errorf("write metrics: %w", werr)
			}
		}
	}
	if err != nil {
		_, _ = fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}
