package api

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSession_States(t *testing.T) {
	var zero Session
	if zero.SignedIn() || zero.Token() != "" {
		t.Error("zero Session should be signed out")
	}

	s := NewSession("tok", RoleNameAdmin)
	if !s.SignedIn() || s.Token() != "tok" {
		t.Error("NewSession with a token should be signed in")
	}
	if !s.HasRole(RoleNameAdmin) || s.HasRole(RoleNameResearcher) {
		t.Errorf("unexpected roles %v", s.Roles)
	}

	out := s.SignedOut()
	if out.SignedIn() || out.Token() != "" {
		t.Error("SignedOut should clear the token")
	}
	if !s.SignedIn() {
		t.Error("SignedOut must not modify the receiver")
	}
	if twice := out.SignedOut(); twice.SignedIn() {
		t.Error("signing out twice should stay signed out")
	}

	out.Roles[0] = "changed"
	if s.Roles[0] != RoleNameAdmin {
		t.Error("SignedOut should copy roles")
	}
}

func TestSession_JSONRoundTrip(t *testing.T) {
	s := NewSession("tok", RoleNameDeveloper)
	s.Username = "ada"
	s.Email = "ada@example.org"
	s.Consented = true
	s.SharingScope = SharingSponsors
	s.Environment = "staging"

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"authenticated":true`) || !strings.Contains(string(data), `"sessionToken":"tok"`) {
		t.Errorf("unexpected JSON %s", data)
	}

	var decoded Session
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Token() != "tok" || decoded.Username != "ada" || !decoded.Consented ||
		decoded.SharingScope != SharingSponsors || decoded.Environment != "staging" || !decoded.HasRole(RoleNameDeveloper) {
		t.Errorf("round trip lost data: %+v", decoded)
	}
}

func TestSession_UnmarshalServerBody(t *testing.T) {
	body := `{"authenticated":true,"sessionToken":"abc","username":"ada","roles":["researcher"],"dataSharing":true,"type":"UserSessionInfo"}`
	var s Session
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Token() != "abc" || !s.DataSharing || !s.HasRole(RoleNameResearcher) {
		t.Errorf("unexpected session %+v", s)
	}
}

func TestSession_StringHidesToken(t *testing.T) {
	s := NewSession("secret-token")
	s.Username = "ada"
	if got := s.String(); strings.Contains(got, "secret-token") || got != "Session[ada, signed in]" {
		t.Errorf("String() = %q", got)
	}
	if got := (Session{}).String(); got != "Session[signed out]" {
		t.Errorf("String() = %q", got)
	}
}
