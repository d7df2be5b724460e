package api

import (
	"context"
	"net/http"

	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
)

// List returns the trackers the study collects data for.
func (s TrackersService) List(ctx context.Context, session Session) ([]Tracker, error) {
	path, err := s.resourcePath(config.TrackerAPI)
	if err != nil {
		return nil, err
	}
	var result ResourceList[Tracker]
	if err := s.do(ctx, http.MethodGet, path, &session, nil, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// Schema returns the JSON schema of tracker's records, as sent by the
// server.
func (s TrackersService) Schema(ctx context.Context, session Session, tracker Tracker) (string, error) {
	if tracker.ID == "" {
		return "", argumentError("tracker", "id must not be empty")
	}
	path, err := s.resourcePath(config.TrackerAPI, "schema", tracker.ID.String())
	if err != nil {
		return "", err
	}
	resp, err := s.send(ctx, http.MethodGet, path, &session, nil)
	if err != nil {
		return "", err
	}
	return string(resp.Body), nil
}
