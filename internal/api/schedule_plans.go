package api

import (
	"context"
	"net/http"

	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
)

// List returns the study's schedule plans.
func (s SchedulePlansService) List(ctx context.Context, session Session) ([]SchedulePlan, error) {
	path, err := s.resourcePath(config.SchedulePlanningAPI)
	if err != nil {
		return nil, err
	}
	var result ResourceList[SchedulePlan]
	if err := s.do(ctx, http.MethodGet, path, &session, nil, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// Create saves a new plan and returns its guid and version.
func (s SchedulePlansService) Create(ctx context.Context, session Session, plan SchedulePlan) (*GuidVersionHolder, error) {
	if len(plan.Strategy) == 0 {
		return nil, argumentError("plan", "strategy must be set")
	}
	path, err := s.resourcePath(config.SchedulePlanningAPI)
	if err != nil {
		return nil, err
	}
	var result GuidVersionHolder
	if err := s.do(ctx, http.MethodPost, path, &session, plan, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get returns the plan with guid.
func (s SchedulePlansService) Get(ctx context.Context, session Session, guid string) (*SchedulePlan, error) {
	path, err := s.resourcePath(config.SchedulePlanningAPI, guid)
	if err != nil {
		return nil, err
	}
	var result SchedulePlan
	if err := s.do(ctx, http.MethodGet, path, &session, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Update saves plan, which must carry its guid, and returns the new
// version.
func (s SchedulePlansService) Update(ctx context.Context, session Session, plan SchedulePlan) (*GuidVersionHolder, error) {
	if plan.GUID == "" {
		return nil, argumentError("plan", "guid must not be empty")
	}
	path, err := s.resourcePath(config.SchedulePlanningAPI, plan.GUID)
	if err != nil {
		return nil, err
	}
	var result GuidVersionHolder
	if err := s.do(ctx, http.MethodPost, path, &session, plan, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete removes the plan with guid.
func (s SchedulePlansService) Delete(ctx context.Context, session Session, guid string) error {
	path, err := s.resourcePath(config.SchedulePlanningAPI, guid)
	if err != nil {
		return err
	}
	return s.do(ctx, http.MethodDelete, path, &session, nil, nil)
}
