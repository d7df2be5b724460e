package api

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ExpandPath fills a path template. Each "{name}" placeholder is replaced, in
// order, by the next argument; arguments left over are appended as path
// segments. Every argument is path-escaped and must be non-empty.
//
//	ExpandPath("api/v1/surveys", guid, "revisions", createdOn)
//	ExpandPath("api/v1/surveys/{guid}/revisions", guid)
func ExpandPath(template string, args ...string) (string, error) {
	for i, arg := range args {
		if strings.TrimSpace(arg) == "" {
			return "", argumentError("path segment", "argument "+strconv.Itoa(i+1)+" is empty")
		}
	}

	var b strings.Builder
	rest := template
	next := 0
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			break
		}
		if next >= len(args) {
			return "", argumentError("path segment", "no value for "+rest[open:open+end+1]+" in "+template)
		}
		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(args[next]))
		next++
		rest = rest[open+end+1:]
	}
	b.WriteString(rest)

	out := b.String()
	for _, arg := range args[next:] {
		if out != "" && !strings.HasSuffix(out, "/") {
			out += "/"
		}
		out += url.PathEscape(arg)
	}
	return out, nil
}

// withQuery appends encoded query parameters to path. Empty values are
// skipped.
func withQuery(path string, params url.Values) string {
	for key, values := range params {
		if len(values) == 0 || values[0] == "" {
			delete(params, key)
		}
	}
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}

// FormatCreatedOn formats a revision timestamp the way the server
// addresses it in paths.
func FormatCreatedOn(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
