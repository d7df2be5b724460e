package api

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// UserProfile is the signed-in participant's profile. Attributes are study
// defined and travel as top-level properties of the JSON object.
type UserProfile struct {
	FirstName  string            `json:"firstName,omitempty"`
	LastName   string            `json:"lastName,omitempty"`
	Email      string            `json:"email,omitempty"`
	Username   string            `json:"username,omitempty"`
	Attributes map[string]string `json:"-"`
}

var userProfileFields = map[string]bool{
	"firstName": true, "lastName": true, "email": true, "username": true, "type": true,
}

func (p UserProfile) MarshalJSON() ([]byte, error) {
	type alias UserProfile
	return marshalFlattened(alias(p), p.Attributes, userProfileFields)
}

func (p *UserProfile) UnmarshalJSON(data []byte) error {
	type alias UserProfile
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	attrs, err := unmarshalFlattened(data, userProfileFields)
	if err != nil {
		return err
	}
	*p = UserProfile(a)
	p.Attributes = attrs
	return nil
}

// StudyParticipant is a participant account as researchers see it.
// Attributes are flattened into the JSON object like UserProfile's.
type StudyParticipant struct {
	ID               string                          `json:"id,omitempty"`
	FirstName        string                          `json:"firstName,omitempty"`
	LastName         string                          `json:"lastName,omitempty"`
	Email            string                          `json:"email,omitempty"`
	ExternalID       string                          `json:"externalId,omitempty"`
	Password         string                          `json:"password,omitempty"`
	SharingScope     string                          `json:"sharingScope,omitempty"`
	NotifyByEmail    bool                            `json:"notifyByEmail"`
	DataGroups       []string                        `json:"dataGroups,omitempty"`
	HealthCode       string                          `json:"healthCode,omitempty"`
	ConsentHistories map[string][]UserConsentHistory `json:"consentHistories,omitempty"`
	Roles            []string                        `json:"roles,omitempty"`
	Languages        []string                        `json:"languages,omitempty"`
	Status           string                          `json:"status,omitempty"`
	CreatedOn        *time.Time                      `json:"createdOn,omitempty"`
	Attributes       map[string]string               `json:"-"`
}

var studyParticipantFields = map[string]bool{
	"id": true, "firstName": true, "lastName": true, "email": true, "externalId": true,
	"password": true, "sharingScope": true, "notifyByEmail": true, "dataGroups": true,
	"healthCode": true, "consentHistories": true, "roles": true, "languages": true,
	"status": true, "createdOn": true, "type": true,
}

// NewStudyParticipant returns a participant with email and the given
// attributes. Blank attribute names or values are dropped.
func NewStudyParticipant(email string, attributes map[string]string) (StudyParticipant, error) {
	if strings.TrimSpace(email) == "" {
		return StudyParticipant{}, argumentError("email", "must not be empty")
	}
	p := StudyParticipant{Email: email, SharingScope: SharingNone}
	for k, v := range attributes {
		p.SetAttribute(k, v)
	}
	return p, nil
}

// SetAttribute stores a study attribute. Blank names or values are ignored.
func (p *StudyParticipant) SetAttribute(name, value string) {
	if isBlank(name) || isBlank(value) {
		return
	}
	if p.Attributes == nil {
		p.Attributes = make(map[string]string)
	}
	p.Attributes[name] = value
}

func (p StudyParticipant) MarshalJSON() ([]byte, error) {
	type alias StudyParticipant
	return marshalFlattened(alias(p), p.Attributes, studyParticipantFields)
}

func (p *StudyParticipant) UnmarshalJSON(data []byte) error {
	type alias StudyParticipant
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	attrs, err := unmarshalFlattened(data, studyParticipantFields)
	if err != nil {
		return err
	}
	*p = StudyParticipant(a)
	p.Attributes = attrs
	return nil
}

// marshalFlattened encodes v and merges attrs into the resulting object.
// Attributes never overwrite declared fields.
func marshalFlattened(v any, attrs map[string]string, declared map[string]bool) ([]byte, error) {
	base, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(attrs) == 0 {
		return base, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(base, &obj); err != nil {
		return nil, err
	}
	for name, value := range attrs {
		if isBlank(name) || isBlank(value) || declared[name] {
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		obj[name] = encoded
	}
	return json.Marshal(obj)
}

// unmarshalFlattened collects the undeclared top-level string properties of
// data, plus any nested "attributes" object. Blank names or values are
// dropped; non-string values are ignored.
func unmarshalFlattened(data []byte, declared map[string]bool) (map[string]string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	var attrs map[string]string
	put := func(name, value string) {
		if isBlank(name) || isBlank(value) {
			return
		}
		if attrs == nil {
			attrs = make(map[string]string)
		}
		attrs[name] = value
	}

	if nested, ok := obj["attributes"]; ok {
		var m map[string]string
		if err := json.Unmarshal(nested, &m); err == nil {
			for k, v := range m {
				put(k, v)
			}
		}
	}
	for name, raw := range obj {
		if declared[name] || name == "attributes" {
			continue
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '"' {
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, err
		}
		put(name, value)
	}
	return attrs, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
