package api

import (
	"context"

	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
)

// PathResolver builds resource paths from the configured templates.
type PathResolver interface {
	// resourcePath expands the template of key with args.
	// Example: resourcePath(config.SurveysAPI, guid, "revisions")
	//   -> "api/v2/surveys/<guid>/revisions"
	resourcePath(key config.Key, args ...string) (string, error)
}

// HTTPExecutor executes requests against the host.
type HTTPExecutor interface {
	// do sends a request and decodes the JSON response into result. A nil
	// session sends an unauthenticated request.
	do(ctx context.Context, method, path string, session *Session, body any, result any) error

	// send returns the raw response.
	send(ctx context.Context, method, path string, session *Session, body any) (*RawResponse, error)
}

// Requester combines PathResolver and HTTPExecutor; it is the surface the
// resource services depend on.
type Requester interface {
	PathResolver
	HTTPExecutor
}

func (c *Client) resourcePath(key config.Key, args ...string) (string, error) {
	template, ok := c.paths[key]
	if !ok {
		return "", argumentError(string(key), "no path template configured")
	}
	return ExpandPath(template, args...)
}

// Path returns the expanded path of a resource, for display and tests.
func (c *Client) Path(key config.Key, args ...string) (string, error) {
	return c.resourcePath(key, args...)
}
