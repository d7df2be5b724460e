package api

import (
	"context"
	"net/http"

	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
)

// Submit starts a response to the survey revision with answers and returns
// the response's identifier.
func (s SurveyResponsesService) Submit(ctx context.Context, session Session, keys GuidCreatedOnVersionHolder, answers []SurveyAnswer) (*IdentifierHolder, error) {
	if err := keys.validate(); err != nil {
		return nil, err
	}
	if answers == nil {
		return nil, argumentError("answers", "must not be nil")
	}
	path, err := s.resourcePath(config.SurveyResponseAPI, keys.GUID, "revisions", FormatCreatedOn(keys.CreatedOn))
	if err != nil {
		return nil, err
	}
	var result IdentifierHolder
	if err := s.do(ctx, http.MethodPost, path, &session, answers, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get returns the response with identifier.
func (s SurveyResponsesService) Get(ctx context.Context, session Session, identifier string) (*SurveyResponse, error) {
	path, err := s.resourcePath(config.SurveyResponseAPI, identifier)
	if err != nil {
		return nil, err
	}
	var result SurveyResponse
	if err := s.do(ctx, http.MethodGet, path, &session, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AddAnswers appends answers to an existing response.
func (s SurveyResponsesService) AddAnswers(ctx context.Context, session Session, identifier string, answers []SurveyAnswer) error {
	if len(answers) == 0 {
		return argumentError("answers", "must not be empty")
	}
	path, err := s.resourcePath(config.SurveyResponseAPI, identifier)
	if err != nil {
		return err
	}
	return s.do(ctx, http.MethodPost, path, &session, answers, nil)
}

// Delete removes the response with identifier.
func (s SurveyResponsesService) Delete(ctx context.Context, session Session, identifier string) error {
	path, err := s.resourcePath(config.SurveyResponseAPI, identifier)
	if err != nil {
		return err
	}
	return s.do(ctx, http.MethodDelete, path, &session, nil, nil)
}
