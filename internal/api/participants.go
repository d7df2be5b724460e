package api

import (
	"context"
	"net/http"

	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
)

// Self returns the signed-in participant's own account.
func (s ParticipantsService) Self(ctx context.Context, session Session) (*StudyParticipant, error) {
	return s.get(ctx, session, "self")
}

// UpdateSelf saves the signed-in participant's own account.
func (s ParticipantsService) UpdateSelf(ctx context.Context, session Session, participant StudyParticipant) error {
	return s.update(ctx, session, "self", participant)
}

// Get returns the participant with id. Requires the researcher role.
func (s ParticipantsService) Get(ctx context.Context, session Session, id string) (*StudyParticipant, error) {
	return s.get(ctx, session, id)
}

// Update saves the participant with id. Requires the researcher role.
func (s ParticipantsService) Update(ctx context.Context, session Session, id string, participant StudyParticipant) error {
	return s.update(ctx, session, id, participant)
}

func (s ParticipantsService) get(ctx context.Context, session Session, id string) (*StudyParticipant, error) {
	path, err := s.resourcePath(config.ParticipantsAPI, id)
	if err != nil {
		return nil, err
	}
	var result StudyParticipant
	if err := s.do(ctx, http.MethodGet, path, &session, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s ParticipantsService) update(ctx context.Context, session Session, id string, participant StudyParticipant) error {
	path, err := s.resourcePath(config.ParticipantsAPI, id)
	if err != nil {
		return err
	}
	return s.do(ctx, http.MethodPost, path, &session, participant, nil)
}
