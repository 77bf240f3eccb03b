package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestSubmissionIsComplete(t *testing.T) {
	tests := []struct {
		name string
		sub  Submission
		want bool
	}{
		{"both urls", Submission{GithubURL: "https://github.com/x", PresentationURL: "https://slides/x"}, true},
		{"github only", Submission{GithubURL: "https://github.com/x"}, false},
		{"presentation only", Submission{PresentationURL: "https://slides/x"}, false},
		{"neither", Submission{}, false},
		{"demo video does not count", Submission{DemoVideoURL: "https://video/x"}, false},
		{"complete ignores missing demo", Submission{GithubURL: "g", PresentationURL: "p"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sub.IsComplete(); got != tt.want {
				t.Errorf("IsComplete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubmissionShareURL(t *testing.T) {
	s := Submission{ProjectID: "abc-123"}
	if got := s.ShareURL(); got != "/submission/abc-123/public" {
		t.Errorf("ShareURL() = %q", got)
	}
}

func TestAccessRequestEffectiveStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		req  AccessRequest
		want string
	}{
		{"pending stays pending", AccessRequest{Status: RequestPending}, RequestPending},
		{"denied stays denied", AccessRequest{Status: RequestDenied}, RequestDenied},
		{"approved no expiry", AccessRequest{Status: RequestApproved}, RequestApproved},
		{"approved future expiry", AccessRequest{Status: RequestApproved, AccessExpiresAt: &future}, RequestApproved},
		{"approved past expiry", AccessRequest{Status: RequestApproved, AccessExpiresAt: &past}, RequestExpired},
		{"pending with past expiry is still pending", AccessRequest{Status: RequestPending, AccessExpiresAt: &past}, RequestPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.EffectiveStatus(now); got != tt.want {
				t.Errorf("EffectiveStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAccessRequestGrantsAccess(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)

	approved := AccessRequest{Status: RequestApproved}
	if !approved.GrantsAccess(now) {
		t.Error("approved request without expiry should grant access")
	}

	expired := AccessRequest{Status: RequestApproved, AccessExpiresAt: &past}
	if expired.GrantsAccess(now) {
		t.Error("expired approval should not grant access")
	}

	pending := AccessRequest{Status: RequestPending}
	if pending.GrantsAccess(now) {
		t.Error("pending request should not grant access")
	}
}

func TestSecretJSONNeverContainsValue(t *testing.T) {
	s := Secret{
		ID:             "s1",
		ProjectID:      "p1",
		Name:           "API_KEY",
		EncryptedValue: "hunter2-opaque-blob",
	}

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal secret: %v", err)
	}
	if strings.Contains(string(raw), "hunter2") {
		t.Errorf("serialized secret leaked value: %s", raw)
	}

	raw, err = json.Marshal(s.Meta())
	if err != nil {
		t.Fatalf("marshal meta: %v", err)
	}
	if strings.Contains(string(raw), "hunter2") {
		t.Errorf("serialized metadata leaked value: %s", raw)
	}
}

func TestMemberIsManager(t *testing.T) {
	lead := Member{Role: RoleTeamLead}
	if !lead.IsManager() {
		t.Error("Team Lead should be a manager")
	}
	member := Member{Role: RoleMember}
	if member.IsManager() {
		t.Error("plain member should not be a manager")
	}
}
