// Package update checks GitHub for a newer release of the bridge CLI.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/sagebionetworks/bridge-sdk-go/internal/api"
)

const (
	DefaultReleasesURL = "https://api.github.com/repos/sagebionetworks/bridge-sdk-go/releases/latest"
	CheckTimeout       = 5 * time.Second
)

// ReleasesURL is where the latest release is read from.
var ReleasesURL = DefaultReleasesURL

type release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Result compares the running version with the latest release.
type Result struct {
	CurrentVersion  string `json:"currentVersion"`
	LatestVersion   string `json:"latestVersion"`
	URL             string `json:"url,omitempty"`
	UpdateAvailable bool   `json:"updateAvailable"`
}

// Check fetches the latest release. Development builds are never compared
// and return a nil result.
func Check(ctx context.Context, hc *http.Client, current string) (*Result, error) {
	current = api.CanonicalVersion(current)
	if current == "dev" {
		return nil, nil
	}
	if hc == nil {
		hc = http.DefaultClient
	}

	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ReleasesURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("check for updates: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("check for updates: unexpected status %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("check for updates: %w", err)
	}

	result := &Result{
		CurrentVersion: current,
		LatestVersion:  strings.TrimPrefix(rel.TagName, "v"),
		URL:            rel.HTMLURL,
	}
	latest := "v" + result.LatestVersion
	if semver.IsValid(latest) {
		result.UpdateAvailable = semver.Compare(latest, "v"+current) > 0
	}
	return result, nil
}
