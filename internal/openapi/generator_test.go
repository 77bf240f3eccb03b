package openapi

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestGenerateDocument(t *testing.T) {
	doc := Generate("http://localhost:8080", "1.2.3")

	if doc.OpenAPI != "3.1.0" {
		t.Errorf("openapi version = %q", doc.OpenAPI)
	}
	if doc.Info.Version != "1.2.3" {
		t.Errorf("info version = %q", doc.Info.Version)
	}
	if len(doc.Servers) != 1 || doc.Servers[0].URL != "http://localhost:8080" {
		t.Errorf("servers = %+v", doc.Servers)
	}
}

func TestGenerateCoversRouteSurface(t *testing.T) {
	doc := Generate("http://localhost:8080", "dev")

	wantPaths := []string{
		"/api/projects",
		"/api/projects/{id}",
		"/api/projects/{id}/members",
		"/api/projects/{id}/members/{memberId}",
		"/api/projects/{id}/tasks",
		"/api/tasks/{taskId}",
		"/api/projects/{id}/pivots",
		"/api/projects/{id}/submission",
		"/api/submission/{projectId}/public",
		"/api/projects/{id}/vault/secrets",
		"/api/vault/secrets/{secretId}",
		"/api/vault/secrets/{secretId}/reveal",
		"/api/vault/secrets/{secretId}/requests",
		"/api/vault/secrets/{secretId}/status",
		"/api/projects/{id}/vault/requests",
		"/api/vault/requests/{requestId}",
		"/api/flags",
	}
	for _, p := range wantPaths {
		if doc.Paths.Value(p) == nil {
			t.Errorf("missing path %s", p)
		}
	}
}

func TestGenerateSecurity(t *testing.T) {
	doc := Generate("http://localhost:8080", "dev")

	// Project creation is open.
	create := doc.Paths.Value("/api/projects").Post
	if create.Security != nil {
		t.Error("POST /api/projects should not require auth")
	}
	// The public submission view is open.
	public := doc.Paths.Value("/api/submission/{projectId}/public").Get
	if public.Security != nil {
		t.Error("public submission view should not require auth")
	}
	// Vault reveal requires the project token.
	reveal := doc.Paths.Value("/api/vault/secrets/{secretId}/reveal").Post
	if reveal.Security == nil || len(*reveal.Security) == 0 {
		t.Error("reveal should require the project token")
	}
}

func TestGenerateSerializes(t *testing.T) {
	doc := Generate("http://localhost:8080", "dev")

	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(b)
	if !strings.Contains(out, "projectToken") {
		t.Error("serialized doc missing security scheme")
	}
	if !strings.Contains(out, "Envelope") {
		t.Error("serialized doc missing envelope schema")
	}
}
