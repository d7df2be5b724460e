// Package outfmt renders command results as aligned tables or as JSON. The
// output mode, the compact flag and the --query expression travel in the
// context.
package outfmt

import (
	"context"
	"fmt"
)

// Mode represents the output format mode
type Mode int

const (
	// Text is the default human-readable output
	Text Mode = iota
	// JSON outputs structured JSON
	JSON
	// JSONL outputs newline-delimited JSON, one list item per line
	JSONL
)

var modeNames = map[string]Mode{
	"":       Text,
	"text":   Text,
	"json":   JSON,
	"jsonl":  JSONL,
	"ndjson": JSONL,
}

// Parse parses an --output value. Names are case sensitive.
func Parse(s string) (Mode, error) {
	if mode, ok := modeNames[s]; ok {
		return mode, nil
	}
	return Text, fmt.Errorf("invalid output format %q: use text, json or jsonl", s)
}

func (m Mode) String() string {
	switch m {
	case JSON:
		return "json"
	case JSONL:
		return "jsonl"
	}
	return "text"
}

// Options controls how a result is rendered.
type Options struct {
	Mode    Mode
	Compact bool
	// Query is a jq expression applied to JSON output.
	Query string
}

type optionsKey struct{}

// OptionsFrom returns the rendering options stored in ctx.
func OptionsFrom(ctx context.Context) Options {
	opts, _ := ctx.Value(optionsKey{}).(Options)
	return opts
}

func update(ctx context.Context, fn func(*Options)) context.Context {
	opts := OptionsFrom(ctx)
	fn(&opts)
	return context.WithValue(ctx, optionsKey{}, opts)
}

// WithMode sets the output mode.
func WithMode(ctx context.Context, mode Mode) context.Context {
	return update(ctx, func(o *Options) { o.Mode = mode })
}

// WithCompact turns off JSON indentation.
func WithCompact(ctx context.Context, compact bool) context.Context {
	return update(ctx, func(o *Options) { o.Compact = compact })
}

// WithQuery sets the jq expression applied to JSON output.
func WithQuery(ctx context.Context, query string) context.Context {
	return update(ctx, func(o *Options) { o.Query = query })
}

// IsJSON reports whether ctx asks for JSON or JSONL output.
func IsJSON(ctx context.Context) bool {
	return OptionsFrom(ctx).Mode != Text
}
