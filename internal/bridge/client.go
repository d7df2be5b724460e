package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/sagebionetworks/bridge-sdk-go/internal/api"
)

// Client exposes the resource operations of a Provider's current session.
// Each operation declares the role it requires. Calls fail with a
// *api.StateError, before anything is sent, when the Provider is signed out
// or the session lacks that role.
type Client struct {
	provider *Provider
}

// guard returns the session to call op with, or the StateError explaining
// why op cannot run.
func (c *Client) guard(op string, role Role) (api.Session, error) {
	session := c.provider.Session()
	if !session.SignedIn() {
		return api.Session{}, api.ErrNotSignedIn(op)
	}
	if !RolesOf(session).Has(role) {
		return api.Session{}, &api.StateError{Op: op, Reason: fmt.Sprintf("requires the %s role", role)}
	}
	return session, nil
}

func (c *Client) transport() *api.Client {
	return c.provider.api
}

// Participant operations.

func (c *Client) GetProfile(ctx context.Context) (*api.UserProfile, error) {
	session, err := c.guard("GetProfile", RoleNone)
	if err != nil {
		return nil, err
	}
	return c.transport().Profile().Get(ctx, session)
}

func (c *Client) UpdateProfile(ctx context.Context, profile api.UserProfile) error {
	session, err := c.guard("UpdateProfile", RoleNone)
	if err != nil {
		return err
	}
	return c.transport().Profile().Update(ctx, session, profile)
}

func (c *Client) GetParticipant(ctx context.Context) (*api.StudyParticipant, error) {
	session, err := c.guard("GetParticipant", RoleNone)
	if err != nil {
		return nil, err
	}
	return c.transport().Participants().Self(ctx, session)
}

func (c *Client) UpdateParticipant(ctx context.Context, participant api.StudyParticipant) error {
	session, err := c.guard("UpdateParticipant", RoleNone)
	if err != nil {
		return err
	}
	return c.transport().Participants().UpdateSelf(ctx, session, participant)
}

func (c *Client) ConsentToResearch(ctx context.Context, signature api.ConsentSignature, scope string) error {
	session, err := c.guard("ConsentToResearch", RoleNone)
	if err != nil {
		return err
	}
	return c.transport().Consent().Sign(ctx, session, signature, scope)
}

func (c *Client) GetConsentSignature(ctx context.Context) (*api.ConsentSignature, error) {
	session, err := c.guard("GetConsentSignature", RoleNone)
	if err != nil {
		return nil, err
	}
	return c.transport().Consent().Get(ctx, session)
}

func (c *Client) WithdrawConsent(ctx context.Context, reason string) error {
	session, err := c.guard("WithdrawConsent", RoleNone)
	if err != nil {
		return err
	}
	return c.transport().Consent().Withdraw(ctx, session, reason)
}

func (c *Client) EmailConsentSignature(ctx context.Context) error {
	session, err := c.guard("EmailConsentSignature", RoleNone)
	if err != nil {
		return err
	}
	return c.transport().Consent().Email(ctx, session)
}

func (c *Client) SuspendDataSharing(ctx context.Context) error {
	session, err := c.guard("SuspendDataSharing", RoleNone)
	if err != nil {
		return err
	}
	return c.transport().Consent().SuspendDataSharing(ctx, session)
}

func (c *Client) ResumeDataSharing(ctx context.Context) error {
	session, err := c.guard("ResumeDataSharing", RoleNone)
	if err != nil {
		return err
	}
	return c.transport().Consent().ResumeDataSharing(ctx, session)
}

func (c *Client) GetSchedules(ctx context.Context) ([]api.Schedule, error) {
	session, err := c.guard("GetSchedules", RoleNone)
	if err != nil {
		return nil, err
	}
	return c.transport().Schedules().List(ctx, session)
}

// GetScheduledActivities returns the activities due up to until, at most
// api.MaxDaysAhead days from now. A zero until means today.
func (c *Client) GetScheduledActivities(ctx context.Context, until time.Time) ([]api.ScheduledActivity, error) {
	session, err := c.guard("GetScheduledActivities", RoleNone)
	if err != nil {
		return nil, err
	}
	return c.transport().Activities().List(ctx, session, until)
}

func (c *Client) UpdateScheduledActivities(ctx context.Context, activities []api.ScheduledActivity) error {
	session, err := c.guard("UpdateScheduledActivities", RoleNone)
	if err != nil {
		return err
	}
	return c.transport().Activities().Update(ctx, session, activities)
}

func (c *Client) GetAllTrackers(ctx context.Context) ([]api.Tracker, error) {
	session, err := c.guard("GetAllTrackers", RoleNone)
	if err != nil {
		return nil, err
	}
	return c.transport().Trackers().List(ctx, session)
}

// GetSchema returns the JSON schema of tracker's records as sent by the
// server.
func (c *Client) GetSchema(ctx context.Context, tracker api.Tracker) (string, error) {
	session, err := c.guard("GetSchema", RoleNone)
	if err != nil {
		return "", err
	}
	return c.transport().Trackers().Schema(ctx, session, tracker)
}

func (c *Client) GetHealthData(ctx context.Context, tracker api.Tracker, start, end time.Time) ([]api.HealthDataRecord, error) {
	session, err := c.guard("GetHealthData", RoleNone)
	if err != nil {
		return nil, err
	}
	return c.transport().HealthData().List(ctx, session, tracker, start, end)
}

func (c *Client) GetHealthDataRecord(ctx context.Context, tracker api.Tracker, recordID string) (*api.HealthDataRecord, error) {
	session, err := c.guard("GetHealthDataRecord", RoleNone)
	if err != nil {
		return nil, err
	}
	return c.transport().HealthData().Get(ctx, session, tracker, recordID)
}

func (c *Client) AddHealthData(ctx context.Context, tracker api.Tracker, records []api.HealthDataRecord) ([]api.IdVersionHolder, error) {
	session, err := c.guard("AddHealthData", RoleNone)
	if err != nil {
		return nil, err
	}
	return c.transport().HealthData().Add(ctx, session, tracker, records)
}

func (c *Client) UpdateHealthDataRecord(ctx context.Context, tracker api.Tracker, record api.HealthDataRecord) (*api.IdVersionHolder, error) {
	session, err := c.guard("UpdateHealthDataRecord", RoleNone)
	if err != nil {
		return nil, err
	}
	return c.transport().HealthData().Update(ctx, session, tracker, record)
}

func (c *Client) DeleteHealthDataRecord(ctx context.Context, tracker api.Tracker, recordID string) error {
	session, err := c.guard("DeleteHealthDataRecord", RoleNone)
	if err != nil {
		return err
	}
	return c.transport().HealthData().Delete(ctx, session, tracker, recordID)
}

// GetSurvey returns one survey revision. Published revisions may be served
// from the cache.
func (c *Client) GetSurvey(ctx context.Context, keys api.GuidCreatedOnVersionHolder) (*api.Survey, error) {
	session, err := c.guard("GetSurvey", RoleNone)
	if err != nil {
		return nil, err
	}
	return c.transport().Surveys().Get(ctx, session, keys)
}

func (c *Client) GetPublishedSurvey(ctx context.Context, guid string) (*api.Survey, error) {
	session, err := c.guard("GetPublishedSurvey", RoleNone)
	if err != nil {
		return nil, err
	}
	return c.transport().Surveys().Published(ctx, session, guid)
}

func (c *Client) SubmitAnswers(ctx context.Context, keys api.GuidCreatedOnVersionHolder, answers []api.SurveyAnswer) (*api.IdentifierHolder, error) {
	session, err := c.guard("SubmitAnswers", RoleNone)
	if err != nil {
		return nil, err
	}
	return c.transport().SurveyResponses().Submit(ctx, session, keys, answers)
}

func (c *Client) GetSurveyResponse(ctx context.Context, identifier string) (*api.SurveyResponse, error) {
	session, err := c.guard("GetSurveyResponse", RoleNone)
	if err != nil {
		return nil, err
	}
	return c.transport().SurveyResponses().Get(ctx, session, identifier)
}

func (c *Client) AddAnswersToResponse(ctx context.Context, identifier string, answers []api.SurveyAnswer) error {
	session, err := c.guard("AddAnswersToResponse", RoleNone)
	if err != nil {
		return err
	}
	return c.transport().SurveyResponses().AddAnswers(ctx, session, identifier, answers)
}

func (c *Client) DeleteSurveyResponse(ctx context.Context, identifier string) error {
	session, err := c.guard("DeleteSurveyResponse", RoleNone)
	if err != nil {
		return err
	}
	return c.transport().SurveyResponses().Delete(ctx, session, identifier)
}

// RequestUpload announces a file and returns where to store it.
func (c *Client) RequestUpload(ctx context.Context, req api.UploadRequest) (*api.UploadSession, error) {
	session, err := c.guard("RequestUpload", RoleNone)
	if err != nil {
		return nil, err
	}
	return c.transport().Uploads().Request(ctx, session, req)
}

func (c *Client) CompleteUpload(ctx context.Context, id string) error {
	session, err := c.guard("CompleteUpload", RoleNone)
	if err != nil {
		return err
	}
	return c.transport().Uploads().Complete(ctx, session, id)
}

// Upload requests an upload session for data, stores the file and marks
// the upload complete.
func (c *Client) Upload(ctx context.Context, name, contentType string, data []byte) (*api.UploadSession, error) {
	if _, err := c.guard("Upload", RoleNone); err != nil {
		return nil, err
	}
	req, err := api.NewUploadRequest(name, data, contentType)
	if err != nil {
		return nil, err
	}
	upload, err := c.RequestUpload(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := c.transport().Uploads().PutFile(ctx, *upload, req, data); err != nil {
		return nil, fmt.Errorf("store upload %s: %w", upload.ID, err)
	}
	if err := c.CompleteUpload(ctx, upload.ID); err != nil {
		return nil, err
	}
	return upload, nil
}

// Developer operations.

func (c *Client) GetAllSchedulePlans(ctx context.Context) ([]api.SchedulePlan, error) {
	session, err := c.guard("GetAllSchedulePlans", RoleDeveloper)
	if err != nil {
		return nil, err
	}
	return c.transport().SchedulePlans().List(ctx, session)
}

func (c *Client) CreateSchedulePlan(ctx context.Context, plan api.SchedulePlan) (*api.GuidVersionHolder, error) {
	session, err := c.guard("CreateSchedulePlan", RoleDeveloper)
	if err != nil {
		return nil, err
	}
	return c.transport().SchedulePlans().Create(ctx, session, plan)
}

func (c *Client) GetSchedulePlan(ctx context.Context, guid string) (*api.SchedulePlan, error) {
	session, err := c.guard("GetSchedulePlan", RoleDeveloper)
	if err != nil {
		return nil, err
	}
	return c.transport().SchedulePlans().Get(ctx, session, guid)
}

func (c *Client) UpdateSchedulePlan(ctx context.Context, plan api.SchedulePlan) (*api.GuidVersionHolder, error) {
	session, err := c.guard("UpdateSchedulePlan", RoleDeveloper)
	if err != nil {
		return nil, err
	}
	return c.transport().SchedulePlans().Update(ctx, session, plan)
}

func (c *Client) DeleteSchedulePlan(ctx context.Context, guid string) error {
	session, err := c.guard("DeleteSchedulePlan", RoleDeveloper)
	if err != nil {
		return err
	}
	return c.transport().SchedulePlans().Delete(ctx, session, guid)
}

func (c *Client) GetAllSurveys(ctx context.Context) ([]api.Survey, error) {
	session, err := c.guard("GetAllSurveys", RoleDeveloper)
	if err != nil {
		return nil, err
	}
	return c.transport().Surveys().List(ctx, session)
}

func (c *Client) CreateSurvey(ctx context.Context, survey api.Survey) (*api.GuidCreatedOnVersionHolder, error) {
	session, err := c.guard("CreateSurvey", RoleDeveloper)
	if err != nil {
		return nil, err
	}
	return c.transport().Surveys().Create(ctx, session, survey)
}

func (c *Client) GetSurveyVersions(ctx context.Context, guid string) ([]api.Survey, error) {
	session, err := c.guard("GetSurveyVersions", RoleDeveloper)
	if err != nil {
		return nil, err
	}
	return c.transport().Surveys().Versions(ctx, session, guid)
}

func (c *Client) GetMostRecentSurvey(ctx context.Context, guid string) (*api.Survey, error) {
	session, err := c.guard("GetMostRecentSurvey", RoleDeveloper)
	if err != nil {
		return nil, err
	}
	return c.transport().Surveys().Recent(ctx, session, guid)
}

func (c *Client) PublishSurvey(ctx context.Context, keys api.GuidCreatedOnVersionHolder) (*api.GuidCreatedOnVersionHolder, error) {
	session, err := c.guard("PublishSurvey", RoleDeveloper)
	if err != nil {
		return nil, err
	}
	return c.transport().Surveys().Publish(ctx, session, keys)
}

func (c *Client) VersionSurvey(ctx context.Context, keys api.GuidCreatedOnVersionHolder) (*api.GuidCreatedOnVersionHolder, error) {
	session, err := c.guard("VersionSurvey", RoleDeveloper)
	if err != nil {
		return nil, err
	}
	return c.transport().Surveys().Version(ctx, session, keys)
}

func (c *Client) UpdateSurvey(ctx context.Context, survey api.Survey) (*api.GuidCreatedOnVersionHolder, error) {
	session, err := c.guard("UpdateSurvey", RoleDeveloper)
	if err != nil {
		return nil, err
	}
	return c.transport().Surveys().Update(ctx, session, survey)
}

func (c *Client) DeleteSurvey(ctx context.Context, keys api.GuidCreatedOnVersionHolder) error {
	session, err := c.guard("DeleteSurvey", RoleDeveloper)
	if err != nil {
		return err
	}
	return c.transport().Surveys().Delete(ctx, session, keys)
}

// Researcher operations.

func (c *Client) GetStudyParticipant(ctx context.Context, id string) (*api.StudyParticipant, error) {
	session, err := c.guard("GetStudyParticipant", RoleResearcher)
	if err != nil {
		return nil, err
	}
	return c.transport().Participants().Get(ctx, session, id)
}

func (c *Client) UpdateStudyParticipant(ctx context.Context, id string, participant api.StudyParticipant) error {
	session, err := c.guard("UpdateStudyParticipant", RoleResearcher)
	if err != nil {
		return err
	}
	return c.transport().Participants().Update(ctx, session, id, participant)
}

func (c *Client) GetAllStudyConsents(ctx context.Context) ([]api.StudyConsent, error) {
	session, err := c.guard("GetAllStudyConsents", RoleResearcher)
	if err != nil {
		return nil, err
	}
	return c.transport().StudyConsents().List(ctx, session)
}

func (c *Client) GetStudyConsent(ctx context.Context, createdOn time.Time) (*api.StudyConsent, error) {
	session, err := c.guard("GetStudyConsent", RoleResearcher)
	if err != nil {
		return nil, err
	}
	return c.transport().StudyConsents().Get(ctx, session, createdOn)
}

func (c *Client) GetActiveStudyConsent(ctx context.Context) (*api.StudyConsent, error) {
	session, err := c.guard("GetActiveStudyConsent", RoleResearcher)
	if err != nil {
		return nil, err
	}
	return c.transport().StudyConsents().Active(ctx, session)
}

func (c *Client) CreateStudyConsent(ctx context.Context, consent api.StudyConsent) (*api.StudyConsent, error) {
	session, err := c.guard("CreateStudyConsent", RoleResearcher)
	if err != nil {
		return nil, err
	}
	return c.transport().StudyConsents().Create(ctx, session, consent)
}

func (c *Client) ActivateStudyConsent(ctx context.Context, createdOn time.Time) error {
	session, err := c.guard("ActivateStudyConsent", RoleResearcher)
	if err != nil {
		return err
	}
	return c.transport().StudyConsents().Activate(ctx, session, createdOn)
}

// Admin operations.

// CreateUser makes an account with roles, consented to the study when
// consent is true.
func (c *Client) CreateUser(ctx context.Context, creds api.SignUpCredentials, roles []string, consent bool) error {
	session, err := c.guard("CreateUser", RoleAdmin)
	if err != nil {
		return err
	}
	return c.transport().Users().Create(ctx, session, creds, roles, consent)
}

func (c *Client) DeleteUser(ctx context.Context, email string) error {
	session, err := c.guard("DeleteUser", RoleAdmin)
	if err != nil {
		return err
	}
	return c.transport().Users().Delete(ctx, session, email)
}
