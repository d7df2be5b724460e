package api

import (
	"context"
	"net/http"

	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
)

// List returns the schedules assigned to the signed-in participant.
func (s SchedulesService) List(ctx context.Context, session Session) ([]Schedule, error) {
	path, err := s.resourcePath(config.SchedulesAPI)
	if err != nil {
		return nil, err
	}
	var result ResourceList[Schedule]
	if err := s.do(ctx, http.MethodGet, path, &session, nil, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}
