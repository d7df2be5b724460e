// Package filter applies jq expressions (--query) to command output.
package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
)

// Query is a compiled jq expression.
type Query struct {
	expr string
	code *gojq.Code
}

// Compile parses and compiles expr. Shell-escaped operators are fixed
// first: zsh turns != into \!= even inside single quotes.
func Compile(expr string) (*Query, error) {
	expr = NormalizeExpression(expr)
	parsed, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid query expression: %w", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, fmt.Errorf("invalid query expression: %w", err)
	}
	return &Query{expr: expr, code: code}, nil
}

// NormalizeExpression undoes shell escaping of "!".
func NormalizeExpression(expr string) string {
	return strings.TrimSpace(strings.ReplaceAll(expr, `\!`, `!`))
}

// String returns the normalized expression.
func (q *Query) String() string {
	return q.expr
}

// Run evaluates the query against data, which must hold only JSON-shaped
// values (maps, slices, strings, float64, bool, nil). A single result is
// returned as is; several results are returned as a slice.
//
// List output is wrapped as {"items": [...]}; a query written against a
// bare array (".[] | ...") is retried against the items when the first run
// fails on the wrapper object.
func (q *Query) Run(ctx context.Context, data any) (any, error) {
	results, err := q.run(ctx, data)
	if err != nil {
		if items, ok := itemsFallback(data, q.expr, err); ok {
			if retried, retryErr := q.run(ctx, items); retryErr == nil {
				results, err = retried, nil
			}
		}
	}
	if err != nil {
		return nil, err
	}
	if len(results) == 1 {
		return results[0], nil
	}
	return results, nil
}

func (q *Query) run(ctx context.Context, data any) ([]any, error) {
	iter := q.code.RunWithContext(ctx, data)
	var results []any
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, fmt.Errorf("query error: %w", err)
		}
		results = append(results, v)
	}
	return results, nil
}

func itemsFallback(data any, expr string, runErr error) (any, bool) {
	trimmed := strings.TrimSpace(expr)
	if !strings.HasPrefix(trimmed, ".[]") && !strings.HasPrefix(trimmed, "[.[]") && !strings.HasPrefix(trimmed, "(.[]") {
		return nil, false
	}
	if !strings.Contains(runErr.Error(), "expected an object but got: array") {
		return nil, false
	}
	m, ok := data.(map[string]any)
	if !ok {
		return nil, false
	}
	items, ok := m["items"].([]any)
	if !ok {
		return nil, false
	}
	return items, true
}

// Apply evaluates expr against data. An empty expression returns data
// unchanged.
func Apply(ctx context.Context, data any, expr string) (any, error) {
	if strings.TrimSpace(expr) == "" {
		return data, nil
	}
	q, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	return q.Run(ctx, data)
}

// ApplyToValue converts v, any JSON-encodable value, to its generic JSON
// form and evaluates expr against it.
func ApplyToValue(ctx context.Context, v any, expr string) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return ApplyFromJSON(ctx, data, expr)
}

// ApplyFromJSON decodes jsonData and evaluates expr against it.
func ApplyFromJSON(ctx context.Context, jsonData []byte, expr string) (any, error) {
	var data any
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return Apply(ctx, data, expr)
}
