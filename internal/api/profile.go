package api

import (
	"context"
	"net/http"

	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
)

// Get returns the signed-in participant's profile.
func (s ProfileService) Get(ctx context.Context, session Session) (*UserProfile, error) {
	path, err := s.resourcePath(config.ProfileAPI)
	if err != nil {
		return nil, err
	}
	var result UserProfile
	if err := s.do(ctx, http.MethodGet, path, &session, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Update replaces the signed-in participant's profile.
func (s ProfileService) Update(ctx context.Context, session Session, profile UserProfile) error {
	path, err := s.resourcePath(config.ProfileAPI)
	if err != nil {
		return err
	}
	return s.do(ctx, http.MethodPost, path, &session, profile, nil)
}
