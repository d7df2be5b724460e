package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sagebionetworks/bridge-sdk-go/internal/api"
	"github.com/sagebionetworks/bridge-sdk-go/internal/dryrun"
	"github.com/sagebionetworks/bridge-sdk-go/internal/iocontext"
	"github.com/sagebionetworks/bridge-sdk-go/internal/outfmt"
	"github.com/sagebionetworks/bridge-sdk-go/internal/timeexpr"
)

// printResult writes data as JSON in JSON modes, otherwise calls text with
// a formatter for table output.
func printResult(ctx context.Context, data any, text func(f *outfmt.Formatter) error) error {
	streams := iocontext.GetIO(ctx)
	f := outfmt.NewFormatter(ctx, streams.Out, streams.ErrOut)
	if outfmt.IsJSON(ctx) {
		return f.Output(data)
	}
	return text(f)
}

// printAction reports a completed change on stderr, or as JSON.
func printAction(ctx context.Context, data map[string]any, message string) error {
	streams := iocontext.GetIO(ctx)
	if outfmt.IsJSON(ctx) {
		return outfmt.NewFormatter(ctx, streams.Out, streams.ErrOut).Output(data)
	}
	_, _ = fmt.Fprintln(streams.ErrOut, message)
	return nil
}

// parseTimeFlag reads a --since or --until value; see timeexpr.Parse for
// the accepted forms. Empty means unset.
func parseTimeFlag(name, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	t, err := timeexpr.Parse(value, time.Now())
	if err != nil {
		return time.Time{}, usageErrorf("invalid --%s: %v (try 2024-03-01, 2024-03-01T12:00:00Z, yesterday or 7d ago)", name, err)
	}
	return t, nil
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

// previewed reports whether dry-run mode is on, writing p as JSON or to
// stderr when it is. Callers return without making the change.
func previewed(ctx context.Context, p *dryrun.Preview) (bool, error) {
	if !dryrun.IsEnabled(ctx) {
		return false, nil
	}
	streams := iocontext.GetIO(ctx)
	if outfmt.IsJSON(ctx) {
		return true, outfmt.NewFormatter(ctx, streams.Out, streams.ErrOut).Output(p)
	}
	p.Write(streams.ErrOut)
	return true, nil
}

// confirm asks on stderr and reads the answer from stdin. --yes answers
// for the user.
func confirm(ctx context.Context, prompt string) bool {
	if flags.Yes {
		return true
	}
	streams := iocontext.GetIO(ctx)
	_, _ = fmt.Fprintf(streams.ErrOut, "%s [y/N]: ", prompt)
	answer, _ := bufio.NewReader(streams.In).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// surveyKeys addresses a survey revision. The timestamp must be exact.
func surveyKeys(guid, createdOn string) (api.GuidCreatedOnVersionHolder, error) {
	if strings.TrimSpace(createdOn) == "" {
		return api.GuidCreatedOnVersionHolder{}, usageErrorf("--created-on is required")
	}
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(createdOn))
	if err != nil {
		return api.GuidCreatedOnVersionHolder{}, usageErrorf("invalid --created-on %q: use the RFC 3339 timestamp of the revision", createdOn)
	}
	return api.GuidCreatedOnVersionHolder{GUID: guid, CreatedOn: t}, nil
}
