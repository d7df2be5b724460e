package outfmt

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Formatter writes one command's result: JSON through Render, or a table
// that the command fills row by row.
type Formatter struct {
	ctx    context.Context
	opts   Options
	out    io.Writer
	errOut io.Writer
	table  *tabwriter.Writer
}

// NewFormatter creates a Formatter for the options in ctx.
func NewFormatter(ctx context.Context, out, errOut io.Writer) *Formatter {
	return &Formatter{
		ctx:    ctx,
		opts:   OptionsFrom(ctx),
		out:    out,
		errOut: errOut,
		table:  tabwriter.NewWriter(out, 0, 4, 2, ' ', 0),
	}
}

// Output writes data in JSON modes and does nothing in text mode.
func (f *Formatter) Output(data any) error {
	return Render(f.ctx, f.out, data, f.opts)
}

// StartTable writes the header row. It reports false, writing nothing, in
// JSON modes.
func (f *Formatter) StartTable(headers []string) bool {
	if f.opts.Mode != Text {
		return false
	}
	f.Row(headers...)
	return true
}

// Row writes one table row.
func (f *Formatter) Row(columns ...string) {
	_, _ = fmt.Fprintln(f.table, strings.Join(columns, "\t"))
}

// EndTable flushes the aligned table.
func (f *Formatter) EndTable() error {
	return f.table.Flush()
}

// Empty tells the user on stderr that there was nothing to show.
func (f *Formatter) Empty(message string) {
	_, _ = fmt.Fprintln(f.errOut, message)
}
