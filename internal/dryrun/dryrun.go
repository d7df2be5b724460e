// Package dryrun lets commands that change server state describe the change
// instead of making it.
package dryrun

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
)

type contextKey struct{}

// WithDryRun returns a context with dry-run mode enabled or disabled.
func WithDryRun(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, contextKey{}, enabled)
}

// IsEnabled reports whether dry-run mode is on.
func IsEnabled(ctx context.Context) bool {
	v, _ := ctx.Value(contextKey{}).(bool)
	return v
}

// Preview describes a change that was not made.
type Preview struct {
	DryRun    bool           `json:"dryRun"`
	Operation string         `json:"operation"`
	Target    string         `json:"target"`
	Details   map[string]any `json:"details,omitempty"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// New returns a preview of operation on target.
func New(operation, target string) *Preview {
	return &Preview{DryRun: true, Operation: operation, Target: target}
}

// With adds a detail and returns p.
func (p *Preview) With(key string, value any) *Preview {
	if p.Details == nil {
		p.Details = make(map[string]any)
	}
	p.Details[key] = value
	return p
}

// Warn adds a warning and returns p.
func (p *Preview) Warn(format string, args ...any) *Preview {
	p.Warnings = append(p.Warnings, fmt.Sprintf(format, args...))
	return p
}

// Write prints the preview for people. Details are sorted by key.
func (p *Preview) Write(w io.Writer) {
	_, _ = fmt.Fprintf(w, "[DRY-RUN] Would %s %s\n", p.Operation, p.Target)

	keys := make([]string, 0, len(p.Details))
	for k := range p.Details {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "  %s: %v\n", k, formatValue(p.Details[k]))
	}
	for _, warning := range p.Warnings {
		_, _ = fmt.Fprintf(w, "  ! %s\n", warning)
	}
	_, _ = fmt.Fprintln(w, "No changes made (dry-run mode)")
}

func formatValue(v any) string {
	if list, ok := v.([]string); ok {
		return strings.Join(list, ", ")
	}
	return fmt.Sprint(v)
}
