package outfmt

import (
	"context"
	"encoding/json"
	"io"

	"github.com/sagebionetworks/bridge-sdk-go/internal/filter"
)

// Render writes v as opts ask. Lists are wrapped as {"items": [...]} before
// the query runs; JSONL then writes each item on its own line. Text mode
// writes nothing.
func Render(ctx context.Context, w io.Writer, v any, opts Options) error {
	if opts.Mode == Text {
		return nil
	}

	data := normalizeJSONOutput(v)
	if opts.Query != "" || opts.Mode == JSONL {
		var err error
		if data, err = filter.ApplyToValue(ctx, data, opts.Query); err != nil {
			return err
		}
	}

	if opts.Mode == JSONL {
		return writeLines(w, unwrapItems(data))
	}
	return encode(w, data, opts.Compact)
}

func unwrapItems(v any) any {
	if m, ok := v.(map[string]any); ok && len(m) == 1 {
		if items, ok := m["items"].([]any); ok {
			return items
		}
	}
	return v
}

func writeLines(w io.Writer, v any) error {
	items, ok := v.([]any)
	if !ok {
		return encode(w, v, true)
	}
	for _, item := range items {
		if err := encode(w, item, true); err != nil {
			return err
		}
	}
	return nil
}

func encode(w io.Writer, v any, compact bool) error {
	enc := json.NewEncoder(w)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
