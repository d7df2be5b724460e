package api

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sagebionetworks/bridge-sdk-go/internal/validation"
)

// Sharing scopes a participant may choose when consenting.
const (
	SharingNone         = "no_sharing"
	SharingSponsors     = "sponsors_and_partners"
	SharingAllQualified = "all_qualified_researchers"
)

// Role names as the server reports them in a session.
const (
	RoleNameDeveloper  = "developer"
	RoleNameResearcher = "researcher"
	RoleNameAdmin      = "admin"
	RoleNameTestUsers  = "test_users"
)

// FlexString handles identifiers that may come as strings or numbers.
type FlexString string

func (fs *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*fs = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*fs = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*fs = FlexString(n.String())
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into FlexString", data)
}

func (fs FlexString) String() string {
	return string(fs)
}

// ResourceList is the server's list envelope.
type ResourceList[T any] struct {
	Items []T    `json:"items"`
	Total int    `json:"total"`
	Type  string `json:"type,omitempty"`
}

// SignInCredentials is the sign-in request body.
type SignInCredentials struct {
	Study    string `json:"study,omitempty"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignUpCredentials is the body of a sign-up or admin account creation.
type SignUpCredentials struct {
	Study    string   `json:"study,omitempty"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles,omitempty"`
}

// NewSignUpCredentials validates and returns sign-up credentials.
func NewSignUpCredentials(username, email, password string) (SignUpCredentials, error) {
	if err := validation.ValidateCredentials(username, password); err != nil {
		return SignUpCredentials{}, argumentError("credentials", err.Error())
	}
	if err := validation.ValidateEmailFormat(email); err != nil {
		return SignUpCredentials{}, argumentError("email", err.Error())
	}
	return SignUpCredentials{Username: username, Email: email, Password: password}, nil
}

// EmailRequest is the body of password-reset and verification requests.
type EmailRequest struct {
	Study string `json:"study,omitempty"`
	Email string `json:"email"`
}

// Tracker is a kind of health data a participant can record.
type Tracker struct {
	ID        FlexString `json:"id"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	SchemaURL string     `json:"schemaUrl,omitempty"`
}

// SchedulePlan assigns schedules to participants through a strategy.
type SchedulePlan struct {
	GUID          string          `json:"guid,omitempty"`
	Label         string          `json:"label,omitempty"`
	Version       int64           `json:"version,omitempty"`
	ModifiedOn    *time.Time      `json:"modifiedOn,omitempty"`
	MinAppVersion int             `json:"minAppVersion,omitempty"`
	MaxAppVersion int             `json:"maxAppVersion,omitempty"`
	Strategy      json.RawMessage `json:"strategy"`
}

// Strategy types understood by SchedulePlan.Schedules.
const (
	StrategySimple = "SimpleScheduleStrategy"
	StrategyABTest = "ABTestScheduleStrategy"
)

type scheduleGroup struct {
	Percentage int      `json:"percentage"`
	Schedule   Schedule `json:"schedule"`
}

type strategy struct {
	Type           string          `json:"type"`
	Schedule       *Schedule       `json:"schedule,omitempty"`
	ScheduleGroups []scheduleGroup `json:"scheduleGroups,omitempty"`
}

// SimpleStrategy returns a strategy that gives every participant schedule.
func SimpleStrategy(schedule Schedule) json.RawMessage {
	data, _ := json.Marshal(strategy{Type: StrategySimple, Schedule: &schedule})
	return data
}

// ABTestGroup is one arm of an A/B strategy.
type ABTestGroup struct {
	Percentage int
	Schedule   Schedule
}

// ABTestStrategy returns a strategy that splits participants across groups.
// Percentages must add up to 100.
func ABTestStrategy(groups ...ABTestGroup) (json.RawMessage, error) {
	total := 0
	s := strategy{Type: StrategyABTest}
	for _, g := range groups {
		total += g.Percentage
		s.ScheduleGroups = append(s.ScheduleGroups, scheduleGroup{Percentage: g.Percentage, Schedule: g.Schedule})
	}
	if total != 100 {
		return nil, argumentError("groups", fmt.Sprintf("percentages add up to %d, not 100", total))
	}
	return json.Marshal(s)
}

// StrategyType returns the type of the plan's strategy.
func (p SchedulePlan) StrategyType() string {
	var s strategy
	if err := json.Unmarshal(p.Strategy, &s); err != nil {
		return ""
	}
	return s.Type
}

// Schedules returns every schedule the plan's strategy can assign.
func (p SchedulePlan) Schedules() ([]Schedule, error) {
	var s strategy
	if err := json.Unmarshal(p.Strategy, &s); err != nil {
		return nil, fmt.Errorf("decode strategy: %w", err)
	}
	switch s.Type {
	case StrategySimple:
		if s.Schedule == nil {
			return nil, nil
		}
		return []Schedule{*s.Schedule}, nil
	case StrategyABTest:
		out := make([]Schedule, 0, len(s.ScheduleGroups))
		for _, g := range s.ScheduleGroups {
			out = append(out, g.Schedule)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported strategy type %q", s.Type)
	}
}

// Schedule types.
const (
	ScheduleOnce       = "once"
	ScheduleRecurring  = "recurring"
	SchedulePersistent = "persistent"
)

// Schedule describes when a participant is asked to perform activities.
type Schedule struct {
	Label            string     `json:"label,omitempty"`
	ScheduleType     string     `json:"scheduleType"`
	EventID          string     `json:"eventId,omitempty"`
	CronTrigger      string     `json:"cronTrigger,omitempty"`
	Delay            string     `json:"delay,omitempty"`
	Interval         string     `json:"interval,omitempty"`
	Expires          string     `json:"expires,omitempty"`
	Times            []string   `json:"times,omitempty"`
	StartsOn         *time.Time `json:"startsOn,omitempty"`
	EndsOn           *time.Time `json:"endsOn,omitempty"`
	Persistent       bool       `json:"persistent"`
	Activities       []Activity `json:"activities"`
	SchedulePlanGUID string     `json:"schedulePlanGuid,omitempty"`
}

// Activity types.
const (
	ActivityTask   = "task"
	ActivitySurvey = "survey"
)

// SurveyReference points an activity at a survey revision. A nil CreatedOn
// means the most recently published revision.
type SurveyReference struct {
	GUID       string     `json:"guid"`
	CreatedOn  *time.Time `json:"createdOn,omitempty"`
	Identifier string     `json:"identifier,omitempty"`
}

// TaskReference points an activity at an app task.
type TaskReference struct {
	Identifier string `json:"identifier"`
}

// Activity is one task or survey within a schedule.
type Activity struct {
	GUID         string           `json:"guid,omitempty"`
	Label        string           `json:"label"`
	LabelDetail  string           `json:"labelDetail,omitempty"`
	ActivityType string           `json:"activityType,omitempty"`
	Survey       *SurveyReference `json:"survey,omitempty"`
	Task         *TaskReference   `json:"task,omitempty"`
}

// NewTaskActivity returns an activity that asks for task identifier.
func NewTaskActivity(label, identifier string) (Activity, error) {
	if strings.TrimSpace(label) == "" {
		return Activity{}, argumentError("label", "must not be empty")
	}
	if strings.TrimSpace(identifier) == "" {
		return Activity{}, argumentError("identifier", "must not be empty")
	}
	return Activity{Label: label, ActivityType: ActivityTask, Task: &TaskReference{Identifier: identifier}}, nil
}

// NewSurveyActivity returns an activity that asks for a survey revision.
func NewSurveyActivity(label string, survey SurveyReference) (Activity, error) {
	if strings.TrimSpace(label) == "" {
		return Activity{}, argumentError("label", "must not be empty")
	}
	if strings.TrimSpace(survey.GUID) == "" {
		return Activity{}, argumentError("survey", "guid must not be empty")
	}
	return Activity{Label: label, ActivityType: ActivitySurvey, Survey: &survey}, nil
}

// Ref returns the identifier of what the activity points at.
func (a Activity) Ref() string {
	switch {
	case a.Task != nil:
		return a.Task.Identifier
	case a.Survey != nil:
		return a.Survey.GUID
	default:
		return ""
	}
}

// IsPersistentlyRescheduledBy reports whether completing this activity
// immediately makes it available again under schedule.
func (a Activity) IsPersistentlyRescheduledBy(schedule Schedule) bool {
	if !schedule.Persistent && schedule.ScheduleType != SchedulePersistent {
		return false
	}
	ref := a.Ref()
	return ref != "" && strings.Contains(schedule.EventID, ref)
}

// Scheduled activity states.
const (
	StatusScheduled = "scheduled"
	StatusAvailable = "available"
	StatusStarted   = "started"
	StatusFinished  = "finished"
	StatusExpired   = "expired"
)

// ScheduledActivity is an activity instance on a participant's timeline.
type ScheduledActivity struct {
	GUID        string     `json:"guid"`
	Activity    Activity   `json:"activity"`
	ScheduledOn *time.Time `json:"scheduledOn,omitempty"`
	ExpiresOn   *time.Time `json:"expiresOn,omitempty"`
	StartedOn   *time.Time `json:"startedOn,omitempty"`
	FinishedOn  *time.Time `json:"finishedOn,omitempty"`
	Persistent  bool       `json:"persistent"`
	Status      string     `json:"status,omitempty"`
}

// Survey is one revision of a survey, addressed by guid and createdOn.
type Survey struct {
	GUID           string          `json:"guid,omitempty"`
	CreatedOn      *time.Time      `json:"createdOn,omitempty"`
	ModifiedOn     *time.Time      `json:"modifiedOn,omitempty"`
	Version        int64           `json:"version,omitempty"`
	Name           string          `json:"name"`
	Identifier     string          `json:"identifier"`
	Published      bool            `json:"published"`
	SchemaRevision int             `json:"schemaRevision,omitempty"`
	Elements       []SurveyElement `json:"elements"`
}

// Keys returns the survey's guid, createdOn and version.
func (s Survey) Keys() GuidCreatedOnVersionHolder {
	keys := GuidCreatedOnVersionHolder{GUID: s.GUID, Version: s.Version}
	if s.CreatedOn != nil {
		keys.CreatedOn = *s.CreatedOn
	}
	return keys
}

// QuestionByIdentifier returns the element with identifier.
func (s Survey) QuestionByIdentifier(identifier string) (SurveyElement, bool) {
	for _, e := range s.Elements {
		if e.Identifier == identifier {
			return e, true
		}
	}
	return SurveyElement{}, false
}

// Survey element types.
const (
	ElementQuestion   = "SurveyQuestion"
	ElementInfoScreen = "SurveyInfoScreen"
)

// SurveyElement is a question or an information screen.
type SurveyElement struct {
	GUID         string          `json:"guid,omitempty"`
	Identifier   string          `json:"identifier"`
	Type         string          `json:"type"`
	Prompt       string          `json:"prompt,omitempty"`
	PromptDetail string          `json:"promptDetail,omitempty"`
	Title        string          `json:"title,omitempty"`
	UIHint       string          `json:"uiHint,omitempty"`
	Constraints  json.RawMessage `json:"constraints,omitempty"`
}

// SurveyAnswer answers one question. Declined answers carry no values.
type SurveyAnswer struct {
	QuestionGUID string     `json:"questionGuid"`
	Declined     bool       `json:"declined"`
	Client       string     `json:"client,omitempty"`
	AnsweredOn   *time.Time `json:"answeredOn,omitempty"`
	Answers      []string   `json:"answers,omitempty"`
}

// NewSurveyAnswer answers question with values at answeredOn.
func NewSurveyAnswer(question SurveyElement, answeredOn time.Time, client string, values ...string) (SurveyAnswer, error) {
	if question.GUID == "" {
		return SurveyAnswer{}, argumentError("question", "guid must not be empty")
	}
	if len(values) == 0 {
		return SurveyAnswer{}, argumentError("values", "at least one answer is required; use a declined answer instead")
	}
	at := answeredOn.UTC()
	return SurveyAnswer{QuestionGUID: question.GUID, Client: client, AnsweredOn: &at, Answers: values}, nil
}

// Survey response states.
const (
	ResponseUnstarted  = "unstarted"
	ResponseInProgress = "in_progress"
	ResponseFinished   = "finished"
)

// SurveyResponse is a participant's answers to one survey revision.
type SurveyResponse struct {
	Identifier  string         `json:"identifier"`
	Status      string         `json:"status,omitempty"`
	StartedOn   *time.Time     `json:"startedOn,omitempty"`
	CompletedOn *time.Time     `json:"completedOn,omitempty"`
	Answers     []SurveyAnswer `json:"answers"`
	Survey      *Survey        `json:"survey,omitempty"`
}

// ConsentSignature is the participant's signature on the study consent.
type ConsentSignature struct {
	Name          string     `json:"name"`
	Birthdate     string     `json:"birthdate"`
	ImageData     string     `json:"imageData,omitempty"`
	ImageMimeType string     `json:"imageMimeType,omitempty"`
	SignedOn      *time.Time `json:"signedOn,omitempty"`
	Scope         string     `json:"scope,omitempty"`
}

// NewConsentSignature validates a signature. birthdate is "YYYY-MM-DD".
// Image data and its MIME type must be supplied together.
func NewConsentSignature(name, birthdate, imageData, imageMimeType string) (ConsentSignature, error) {
	if strings.TrimSpace(name) == "" {
		return ConsentSignature{}, argumentError("name", "must not be empty")
	}
	if _, err := time.Parse(time.DateOnly, birthdate); err != nil {
		return ConsentSignature{}, argumentError("birthdate", "must be YYYY-MM-DD")
	}
	if (imageData == "") != (imageMimeType == "") {
		return ConsentSignature{}, argumentError("imageData", "image data and MIME type go together")
	}
	return ConsentSignature{Name: name, Birthdate: birthdate, ImageData: imageData, ImageMimeType: imageMimeType}, nil
}

// UserConsentHistory is one consent signed by a participant.
type UserConsentHistory struct {
	SubpopulationGUID      string     `json:"subpopulationGuid"`
	ConsentCreatedOn       *time.Time `json:"consentCreatedOn,omitempty"`
	Name                   string     `json:"name,omitempty"`
	Birthdate              string     `json:"birthdate,omitempty"`
	SignedOn               *time.Time `json:"signedOn,omitempty"`
	WithdrewOn             *time.Time `json:"withdrewOn,omitempty"`
	HasSignedActiveConsent bool       `json:"hasSignedActiveConsent"`
}

// Withdrawal is the body of a consent withdrawal.
type Withdrawal struct {
	Reason string `json:"reason,omitempty"`
}

// StudyConsent is one revision of the consent document.
type StudyConsent struct {
	CreatedOn       *time.Time `json:"createdOn,omitempty"`
	Active          bool       `json:"active"`
	DocumentContent string     `json:"documentContent,omitempty"`
	StoragePath     string     `json:"storagePath,omitempty"`
}

// HealthDataRecord is one tracker reading. Start and end dates are epoch
// milliseconds.
type HealthDataRecord struct {
	RecordID  string          `json:"recordId,omitempty"`
	Version   int64           `json:"version,omitempty"`
	StartDate int64           `json:"startDate"`
	EndDate   int64           `json:"endDate"`
	Data      json.RawMessage `json:"data"`
}

// NewHealthDataRecord builds a record over [start, end] holding data.
func NewHealthDataRecord(start, end time.Time, data any) (HealthDataRecord, error) {
	if start.IsZero() {
		return HealthDataRecord{}, argumentError("start", "must be set")
	}
	if end.IsZero() {
		end = start
	}
	if end.Before(start) {
		return HealthDataRecord{}, argumentError("end", "must not be before start")
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return HealthDataRecord{}, argumentError("data", err.Error())
	}
	return HealthDataRecord{StartDate: start.UnixMilli(), EndDate: end.UnixMilli(), Data: raw}, nil
}

// Start returns StartDate as a time.
func (r HealthDataRecord) Start() time.Time {
	return time.UnixMilli(r.StartDate).UTC()
}

// End returns EndDate as a time.
func (r HealthDataRecord) End() time.Time {
	return time.UnixMilli(r.EndDate).UTC()
}

// UploadRequest announces a file upload.
type UploadRequest struct {
	Name          string `json:"name"`
	ContentLength int64  `json:"contentLength"`
	ContentMD5    string `json:"contentMd5"`
	ContentType   string `json:"contentType"`
}

// NewUploadRequest describes data, computing its length and MD5.
func NewUploadRequest(name string, data []byte, contentType string) (UploadRequest, error) {
	if strings.TrimSpace(name) == "" {
		return UploadRequest{}, argumentError("name", "must not be empty")
	}
	if len(data) == 0 {
		return UploadRequest{}, argumentError("data", "must not be empty")
	}
	if contentType == "" {
		contentType = "application/zip"
	}
	sum := md5.Sum(data)
	return UploadRequest{
		Name:          name,
		ContentLength: int64(len(data)),
		ContentMD5:    base64.StdEncoding.EncodeToString(sum[:]),
		ContentType:   contentType,
	}, nil
}

// UploadSession is the server's answer to an UploadRequest: where to PUT
// the file and until when.
type UploadSession struct {
	ID      string     `json:"id"`
	URL     string     `json:"url"`
	Expires *time.Time `json:"expires,omitempty"`
}

// GuidCreatedOnVersionHolder addresses a survey revision.
type GuidCreatedOnVersionHolder struct {
	GUID      string    `json:"guid"`
	CreatedOn time.Time `json:"createdOn"`
	Version   int64     `json:"version,omitempty"`
}

func (h GuidCreatedOnVersionHolder) validate() error {
	if strings.TrimSpace(h.GUID) == "" {
		return argumentError("keys", "guid must not be empty")
	}
	if h.CreatedOn.IsZero() {
		return argumentError("keys", "createdOn must be set")
	}
	return nil
}

// GuidVersionHolder is returned when a guid-addressed entity is saved.
type GuidVersionHolder struct {
	GUID    string `json:"guid"`
	Version int64  `json:"version"`
}

// IdVersionHolder is returned when an id-addressed entity is saved.
type IdVersionHolder struct {
	ID      string `json:"id"`
	Version int64  `json:"version"`
}

// IdentifierHolder names a created survey response.
type IdentifierHolder struct {
	Identifier string `json:"identifier"`
}

// Message is the server's plain acknowledgement body.
type Message struct {
	Message string `json:"message"`
}
