package api

import (
	"context"
	"net/http"
	"time"

	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
)

// List returns every revision of the study consent document.
func (s StudyConsentsService) List(ctx context.Context, session Session) ([]StudyConsent, error) {
	path, err := s.resourcePath(config.StudyConsentAPI)
	if err != nil {
		return nil, err
	}
	var result ResourceList[StudyConsent]
	if err := s.do(ctx, http.MethodGet, path, &session, nil, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// Create adds a new revision of the consent document.
func (s StudyConsentsService) Create(ctx context.Context, session Session, consent StudyConsent) (*StudyConsent, error) {
	if consent.DocumentContent == "" {
		return nil, argumentError("consent", "document content must not be empty")
	}
	path, err := s.resourcePath(config.StudyConsentAPI)
	if err != nil {
		return nil, err
	}
	var result StudyConsent
	if err := s.do(ctx, http.MethodPost, path, &session, consent, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get returns the revision created at createdOn.
func (s StudyConsentsService) Get(ctx context.Context, session Session, createdOn time.Time) (*StudyConsent, error) {
	if createdOn.IsZero() {
		return nil, argumentError("createdOn", "must be set")
	}
	return s.get(ctx, session, FormatCreatedOn(createdOn))
}

// Active returns the revision currently shown to participants.
func (s StudyConsentsService) Active(ctx context.Context, session Session) (*StudyConsent, error) {
	return s.get(ctx, session, "active")
}

// Activate makes the revision created at createdOn the active one.
func (s StudyConsentsService) Activate(ctx context.Context, session Session, createdOn time.Time) error {
	if createdOn.IsZero() {
		return argumentError("createdOn", "must be set")
	}
	path, err := s.resourcePath(config.StudyConsentAPI, "active", FormatCreatedOn(createdOn))
	if err != nil {
		return err
	}
	return s.do(ctx, http.MethodPost, path, &session, nil, nil)
}

func (s StudyConsentsService) get(ctx context.Context, session Session, segment string) (*StudyConsent, error) {
	path, err := s.resourcePath(config.StudyConsentAPI, segment)
	if err != nil {
		return nil, err
	}
	var result StudyConsent
	if err := s.do(ctx, http.MethodGet, path, &session, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
