package api

import (
	"encoding/json"
	"slices"
)

// Session is the signed-in or signed-out state of one account. A Session is
// a value: operations that change state return a new Session and never
// modify the receiver.
type Session struct {
	token string

	Username     string
	Email        string
	Roles        []string
	Consented    bool
	DataSharing  bool
	SharingScope string
	Environment  string
}

// wireSession is the server's session JSON (UserSessionInfo).
type wireSession struct {
	Authenticated bool     `json:"authenticated"`
	SessionToken  string   `json:"sessionToken,omitempty"`
	Username      string   `json:"username,omitempty"`
	Email         string   `json:"email,omitempty"`
	Roles         []string `json:"roles,omitempty"`
	Consented     bool     `json:"consented"`
	DataSharing   bool     `json:"dataSharing"`
	SharingScope  string   `json:"sharingScope,omitempty"`
	Environment   string   `json:"environment,omitempty"`
}

// NewSession returns a signed-in session for token. An empty token yields a
// signed-out session.
func NewSession(token string, roles ...string) Session {
	return Session{token: token, Roles: slices.Clone(roles)}
}

// Token returns the session token, or "" when signed out.
func (s Session) Token() string {
	return s.token
}

// SignedIn reports whether the session carries a token.
func (s Session) SignedIn() bool {
	return s.token != ""
}

// HasRole reports whether the server granted role to this session.
func (s Session) HasRole(role string) bool {
	return slices.Contains(s.Roles, role)
}

// SignedOut returns a copy with the token cleared and identity kept.
func (s Session) SignedOut() Session {
	s.token = ""
	s.Roles = slices.Clone(s.Roles)
	return s
}

// withToken returns a copy that carries token.
func (s Session) withToken(token string) Session {
	s.token = token
	s.Roles = slices.Clone(s.Roles)
	return s
}

// MarshalJSON encodes the session in the server's format, token included,
// so a session can be persisted and resumed.
func (s Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireSession{
		Authenticated: s.SignedIn(),
		SessionToken:  s.token,
		Username:      s.Username,
		Email:         s.Email,
		Roles:         s.Roles,
		Consented:     s.Consented,
		DataSharing:   s.DataSharing,
		SharingScope:  s.SharingScope,
		Environment:   s.Environment,
	})
}

func (s *Session) UnmarshalJSON(data []byte) error {
	var w wireSession
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = Session{
		token:        w.SessionToken,
		Username:     w.Username,
		Email:        w.Email,
		Roles:        w.Roles,
		Consented:    w.Consented,
		DataSharing:  w.DataSharing,
		SharingScope: w.SharingScope,
		Environment:  w.Environment,
	}
	return nil
}

// String never includes the token.
func (s Session) String() string {
	state := "signed out"
	if s.SignedIn() {
		state = "signed in"
	}
	if s.Username == "" {
		return "Session[" + state + "]"
	}
	return "Session[" + s.Username + ", " + state + "]"
}
