package api

import (
	"context"
	"net/http"

	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
)

// Sign records the participant's consent signature with the chosen sharing
// scope.
func (s ConsentService) Sign(ctx context.Context, session Session, signature ConsentSignature, scope string) error {
	if signature.Name == "" || signature.Birthdate == "" {
		return argumentError("signature", "name and birthdate are required")
	}
	switch scope {
	case SharingNone, SharingSponsors, SharingAllQualified:
	default:
		return argumentError("scope", "unknown sharing scope "+scope)
	}
	path, err := s.resourcePath(config.ConsentAPI)
	if err != nil {
		return err
	}
	signature.Scope = scope
	return s.do(ctx, http.MethodPost, path, &session, signature, nil)
}

// Get returns the participant's current consent signature.
func (s ConsentService) Get(ctx context.Context, session Session) (*ConsentSignature, error) {
	path, err := s.resourcePath(config.ConsentAPI)
	if err != nil {
		return nil, err
	}
	var result ConsentSignature
	if err := s.do(ctx, http.MethodGet, path, &session, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Withdraw withdraws the participant from the study.
func (s ConsentService) Withdraw(ctx context.Context, session Session, reason string) error {
	path, err := s.resourcePath(config.ConsentAPI, "withdraw")
	if err != nil {
		return err
	}
	return s.do(ctx, http.MethodPost, path, &session, Withdrawal{Reason: reason}, nil)
}

// Email asks the server to email the signed consent document.
func (s ConsentService) Email(ctx context.Context, session Session) error {
	return s.post(ctx, session, "email")
}

// SuspendDataSharing stops sharing the participant's data.
func (s ConsentService) SuspendDataSharing(ctx context.Context, session Session) error {
	return s.post(ctx, session, "dataSharing", "suspend")
}

// ResumeDataSharing resumes sharing the participant's data.
func (s ConsentService) ResumeDataSharing(ctx context.Context, session Session) error {
	return s.post(ctx, session, "dataSharing", "resume")
}

func (s ConsentService) post(ctx context.Context, session Session, segments ...string) error {
	path, err := s.resourcePath(config.ConsentAPI, segments...)
	if err != nil {
		return err
	}
	return s.do(ctx, http.MethodPost, path, &session, nil, nil)
}
