package config

import (
	"fmt"

	"github.com/sagebionetworks/bridge-sdk-go/internal/validation"
)

// Key names one configuration property. The same name is used in the
// properties file and as the overriding environment variable.
type Key string

const (
	ParticipantEmail    Key = "PARTICIPANT_EMAIL"
	ParticipantPassword Key = "PARTICIPANT_PASSWORD"
	AdminEmail          Key = "ADMIN_EMAIL"
	AdminPassword       Key = "ADMIN_PASSWORD"
	Host                Key = "HOST"
	AuthAPI             Key = "AUTH_API"
	ProfileAPI          Key = "PROFILE_API"
	ConsentAPI          Key = "CONSENT_API"
	StudyConsentAPI     Key = "STUDY_CONSENT_API"
	SchedulePlanningAPI Key = "SCHEDULE_PLANNING_API"
	SchedulesAPI        Key = "SCHEDULES_API"
	ActivitiesAPI       Key = "ACTIVITIES_API"
	SurveysAPI          Key = "SURVEYS_API"
	SurveyResponseAPI   Key = "SURVEY_RESPONSE_API"
	TrackerAPI          Key = "TRACKER_API"
	HealthDataAPI       Key = "HEALTH_DATA_API"
	UploadAPI           Key = "UPLOAD_API"

	ParticipantsAPI Key = "PARTICIPANTS_API"
	UsersAPI        Key = "USERS_API"
)

type keySpec struct {
	key      Key
	required bool
	fallback string
	secret   bool
	rule     func(string) error
}

// schema is evaluated in order; its order is the order in which validation
// failures are reported.
var schema = []keySpec{
	{key: ParticipantEmail, required: true, rule: validation.ValidateEmailFormat},
	{key: ParticipantPassword, required: true, secret: true},
	{key: AdminEmail, required: true, rule: validation.ValidateEmailFormat},
	{key: AdminPassword, required: true, secret: true},
	{key: Host, required: true, rule: validation.ValidateHostURL},
	{key: AuthAPI, required: true, rule: validation.ValidateRelativePath},
	{key: ProfileAPI, required: true, rule: validation.ValidateRelativePath},
	{key: ConsentAPI, required: true, rule: validation.ValidateRelativePath},
	{key: StudyConsentAPI, required: true, rule: validation.ValidateRelativePath},
	{key: SchedulePlanningAPI, required: true, rule: validation.ValidateRelativePath},
	{key: SchedulesAPI, required: true, rule: validation.ValidateRelativePath},
	{key: ActivitiesAPI, required: true, rule: validation.ValidateRelativePath},
	{key: SurveysAPI, required: true, rule: validation.ValidateRelativePath},
	{key: SurveyResponseAPI, required: true, rule: validation.ValidateRelativePath},
	{key: TrackerAPI, required: true, rule: validation.ValidateRelativePath},
	{key: HealthDataAPI, required: true, rule: validation.ValidateRelativePath},
	{key: UploadAPI, required: true, rule: validation.ValidateRelativePath},
	{key: ParticipantsAPI, fallback: "api/v3/participants", rule: validation.ValidateRelativePath},
	{key: UsersAPI, fallback: "api/v3/users", rule: validation.ValidateRelativePath},
}

// RequiredKeys returns the keys that must be present after loading.
func RequiredKeys() []Key {
	keys := make([]Key, 0, len(schema))
	for _, spec := range schema {
		if spec.required {
			keys = append(keys, spec.key)
		}
	}
	return keys
}

// AllKeys returns every declared key, required or optional.
func AllKeys() []Key {
	keys := make([]Key, 0, len(schema))
	for _, spec := range schema {
		keys = append(keys, spec.key)
	}
	return keys
}

// PathKeys returns the keys holding URL path templates.
func PathKeys() []Key {
	var keys []Key
	for _, spec := range schema {
		switch spec.key {
		case ParticipantEmail, ParticipantPassword, AdminEmail, AdminPassword, Host:
			continue
		}
		keys = append(keys, spec.key)
	}
	return keys
}

func specFor(key Key) (keySpec, error) {
	for _, spec := range schema {
		if spec.key == key {
			return spec, nil
		}
	}
	return keySpec{}, fmt.Errorf("unknown configuration key %q", key)
}
