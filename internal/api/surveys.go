package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
	"github.com/sagebionetworks/bridge-sdk-go/internal/debug"
)

// List returns the most recent revision of every survey in the study.
func (s SurveysService) List(ctx context.Context, session Session) ([]Survey, error) {
	path, err := s.resourcePath(config.SurveysAPI)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, session, path)
}

// Create saves a new survey and returns the keys of its first revision.
func (s SurveysService) Create(ctx context.Context, session Session, survey Survey) (*GuidCreatedOnVersionHolder, error) {
	if survey.Name == "" || survey.Identifier == "" {
		return nil, argumentError("survey", "name and identifier are required")
	}
	path, err := s.resourcePath(config.SurveysAPI)
	if err != nil {
		return nil, err
	}
	return s.keysResult(ctx, session, path, survey)
}

// Get returns the revision addressed by guid and createdOn. Published
// revisions never change, so they are served from the cache when one is
// configured.
func (s SurveysService) Get(ctx context.Context, session Session, keys GuidCreatedOnVersionHolder) (*Survey, error) {
	if err := keys.validate(); err != nil {
		return nil, err
	}
	if !session.SignedIn() {
		return nil, ErrNotSignedIn("surveys get")
	}
	createdOn := FormatCreatedOn(keys.CreatedOn)
	cacheKey := "survey:" + keys.GUID + ":" + createdOn

	var cached Survey
	if s.cache.Get(ctx, cacheKey, &cached) {
		if debug.IsEnabled(ctx) {
			slog.Debug("survey cache hit", "guid", keys.GUID, "createdOn", createdOn)
		}
		return &cached, nil
	}

	path, err := s.resourcePath(config.SurveysAPI, keys.GUID, "revisions", createdOn)
	if err != nil {
		return nil, err
	}
	var result Survey
	if err := s.do(ctx, http.MethodGet, path, &session, nil, &result); err != nil {
		return nil, err
	}
	if result.Published {
		s.cache.Put(ctx, cacheKey, result)
	}
	return &result, nil
}

// Versions returns every revision of the survey with guid.
func (s SurveysService) Versions(ctx context.Context, session Session, guid string) ([]Survey, error) {
	path, err := s.resourcePath(config.SurveysAPI, guid, "revisions")
	if err != nil {
		return nil, err
	}
	return s.list(ctx, session, path)
}

// Recent returns the newest revision of the survey, published or not.
func (s SurveysService) Recent(ctx context.Context, session Session, guid string) (*Survey, error) {
	return s.one(ctx, session, guid, "recent")
}

// Published returns the newest published revision of the survey.
func (s SurveysService) Published(ctx context.Context, session Session, guid string) (*Survey, error) {
	return s.one(ctx, session, guid, "published")
}

// Publish makes the revision available to participants.
func (s SurveysService) Publish(ctx context.Context, session Session, keys GuidCreatedOnVersionHolder) (*GuidCreatedOnVersionHolder, error) {
	return s.revisionAction(ctx, session, keys, "publish")
}

// Version copies the revision into a new, unpublished revision and returns
// its keys.
func (s SurveysService) Version(ctx context.Context, session Session, keys GuidCreatedOnVersionHolder) (*GuidCreatedOnVersionHolder, error) {
	return s.revisionAction(ctx, session, keys, "version")
}

// Update saves an unpublished revision in place.
func (s SurveysService) Update(ctx context.Context, session Session, survey Survey) (*GuidCreatedOnVersionHolder, error) {
	keys := survey.Keys()
	if err := keys.validate(); err != nil {
		return nil, err
	}
	path, err := s.resourcePath(config.SurveysAPI, keys.GUID, "revisions", FormatCreatedOn(keys.CreatedOn))
	if err != nil {
		return nil, err
	}
	return s.keysResult(ctx, session, path, survey)
}

// Delete removes the revision. Published revisions cannot be deleted.
func (s SurveysService) Delete(ctx context.Context, session Session, keys GuidCreatedOnVersionHolder) error {
	if err := keys.validate(); err != nil {
		return err
	}
	path, err := s.resourcePath(config.SurveysAPI, keys.GUID, "revisions", FormatCreatedOn(keys.CreatedOn))
	if err != nil {
		return err
	}
	return s.do(ctx, http.MethodDelete, path, &session, nil, nil)
}

func (s SurveysService) revisionAction(ctx context.Context, session Session, keys GuidCreatedOnVersionHolder, action string) (*GuidCreatedOnVersionHolder, error) {
	if err := keys.validate(); err != nil {
		return nil, err
	}
	path, err := s.resourcePath(config.SurveysAPI, keys.GUID, "revisions", FormatCreatedOn(keys.CreatedOn), action)
	if err != nil {
		return nil, err
	}
	return s.keysResult(ctx, session, path, nil)
}

func (s SurveysService) one(ctx context.Context, session Session, guid, which string) (*Survey, error) {
	path, err := s.resourcePath(config.SurveysAPI, guid, "revisions", which)
	if err != nil {
		return nil, err
	}
	var result Survey
	if err := s.do(ctx, http.MethodGet, path, &session, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s SurveysService) list(ctx context.Context, session Session, path string) ([]Survey, error) {
	var result ResourceList[Survey]
	if err := s.do(ctx, http.MethodGet, path, &session, nil, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (s SurveysService) keysResult(ctx context.Context, session Session, path string, body any) (*GuidCreatedOnVersionHolder, error) {
	var result GuidCreatedOnVersionHolder
	if err := s.do(ctx, http.MethodPost, path, &session, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
