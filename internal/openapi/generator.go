package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// Generate builds the OpenAPI 3.1 document for the huddle REST surface. The
// routes are fixed, so the document is assembled directly rather than
// reflected from the router.
func Generate(baseURL, version string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "Huddle API",
			Description: "Hackathon team collaboration backend: projects, tasks, pivots, submissions, and the team vault.",
			Version:     version,
		},
		Servers: openapi3.Servers{
			{URL: baseURL},
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	components.SecuritySchemes = openapi3.SecuritySchemes{}
	doc.Components = &components

	doc.Components.SecuritySchemes["projectToken"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
			Description:  "Project token minted at project creation",
		},
	}

	doc.Components.Schemas["Envelope"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"success":   schemaOf("boolean"),
				"data":      schemaOf("object"),
				"error":     errorSchema(),
				"timestamp": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "date-time"}},
			},
		},
	}

	doc.Paths = openapi3.NewPaths()

	// Unauthenticated surface.
	addPath(doc, "/api/projects", &openapi3.PathItem{
		Post: publicOp("Create a project", "projects",
			"201", "Project created with its minted token",
			"409", "A project with this name already exists"),
	})
	addPath(doc, "/api/submission/{projectId}/public", &openapi3.PathItem{
		Get: publicOp("Public submission view", "submissions",
			"200", "Submission with derived completeness",
			"404", "Submission not found"),
	})

	// Project surface.
	addPath(doc, "/api/projects/{id}", &openapi3.PathItem{
		Get: securedOp("Get a project with members", "projects",
			"200", "Project", "404", "Project not found"),
		Put: securedOp("Update project fields", "projects",
			"200", "Updated project", "400", "Update failed"),
	})
	addPath(doc, "/api/projects/{id}/members", &openapi3.PathItem{
		Post: securedOp("Add a team member", "projects",
			"201", "Member added", "409", "Member name already taken"),
	})
	addPath(doc, "/api/projects/{id}/members/{memberId}", &openapi3.PathItem{
		Delete: securedOp("Remove a team member", "projects",
			"200", "Member removed", "400", "Cannot remove the last member"),
	})

	// Tasks.
	addPath(doc, "/api/projects/{id}/tasks", &openapi3.PathItem{
		Get: securedOp("List board tasks", "tasks",
			"200", "Tasks ordered by column and position", "403", "Wrong project token"),
		Post: securedOp("Create a task", "tasks",
			"201", "Task created, position auto-assigned when omitted", "400", "Validation failed"),
	})
	addPath(doc, "/api/tasks/{taskId}", &openapi3.PathItem{
		Put: securedOp("Update a task", "tasks",
			"200", "Updated task", "404", "Task not found"),
		Delete: securedOp("Delete a task", "tasks",
			"200", "Task deleted", "404", "Task not found"),
	})

	// Pivots.
	addPath(doc, "/api/projects/{id}/pivots", &openapi3.PathItem{
		Get: securedOp("List pivot log entries, newest first", "pivots",
			"200", "Pivot entries", "403", "Wrong project token"),
		Post: securedOp("Append a pivot entry", "pivots",
			"201", "Pivot recorded", "400", "Validation failed"),
	})

	// Submission.
	addPath(doc, "/api/projects/{id}/submission", &openapi3.PathItem{
		Get: securedOp("Get the submission package", "submissions",
			"200", "Submission with derived completeness", "404", "No submission yet"),
		Post: securedOp("Create or update the submission", "submissions",
			"200", "Saved submission", "400", "Validation failed"),
	})

	// Vault.
	addPath(doc, "/api/projects/{id}/vault/secrets", &openapi3.PathItem{
		Get: securedOp("List secret metadata, values never included", "vault",
			"200", "Secret metadata", "403", "Wrong project token"),
		Post: securedOp("Create a secret (Team Lead only)", "vault",
			"201", "Secret metadata", "403", "Team Lead role required"),
	})
	addPath(doc, "/api/vault/secrets/{secretId}", &openapi3.PathItem{
		Put: securedOp("Update a secret (Team Lead only)", "vault",
			"200", "Secret metadata", "404", "Secret not found"),
		Delete: securedOp("Delete a secret (Team Lead only)", "vault",
			"200", "Secret deleted", "404", "Secret not found"),
	})
	addPath(doc, "/api/vault/secrets/{secretId}/reveal", &openapi3.PathItem{
		Post: securedOp("Reveal the secret value for an authorized caller", "vault",
			"200", "Secret value with audit counters", "403", "No active grant"),
	})
	addPath(doc, "/api/vault/secrets/{secretId}/requests", &openapi3.PathItem{
		Post: securedOp("Request access to a secret", "vault",
			"201", "Pending access request", "400", "Justification required"),
	})
	addPath(doc, "/api/vault/secrets/{secretId}/status", &openapi3.PathItem{
		Get: securedOp("Derived access status for the caller", "vault",
			"200", "pending, approved, denied, expired, or none", "404", "Secret not found"),
	})
	addPath(doc, "/api/projects/{id}/vault/requests", &openapi3.PathItem{
		Get: securedOp("List access requests visible to the caller", "vault",
			"200", "Access requests, newest first", "403", "Wrong project token"),
	})
	addPath(doc, "/api/vault/requests/{requestId}", &openapi3.PathItem{
		Put: securedOp("Decide a pending request (Team Lead only)", "vault",
			"200", "Handled request", "409", "Request was already decided"),
	})

	// Flags.
	addPath(doc, "/api/flags", &openapi3.PathItem{
		Get: securedOp("Evaluate all feature flags for the caller", "flags",
			"200", "Flag values keyed by flag name", "401", "Missing or invalid token"),
	})

	return doc
}

func addPath(doc *openapi3.T, path string, item *openapi3.PathItem) {
	doc.Paths.Set(path, item)
}

func publicOp(summary, tag string, responsePairs ...string) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.Summary = summary
	op.Tags = []string{tag}
	op.Responses = envelopeResponses(responsePairs)
	return op
}

func securedOp(summary, tag string, responsePairs ...string) *openapi3.Operation {
	op := publicOp(summary, tag, responsePairs...)
	op.Security = &openapi3.SecurityRequirements{{"projectToken": {}}}
	return op
}

// envelopeResponses builds responses from (status, description) pairs, all
// referencing the shared envelope schema.
func envelopeResponses(pairs []string) *openapi3.Responses {
	responses := openapi3.NewResponses()
	for i := 0; i+1 < len(pairs); i += 2 {
		desc := pairs[i+1]
		responses.Set(pairs[i], &openapi3.ResponseRef{
			Value: &openapi3.Response{
				Description: &desc,
				Content: openapi3.Content{
					"application/json": &openapi3.MediaType{
						Schema: &openapi3.SchemaRef{Ref: "#/components/schemas/Envelope"},
					},
				},
			},
		})
	}
	return responses
}

func schemaOf(t string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{t}}}
}

func errorSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"code":    schemaOf("string"),
				"message": schemaOf("string"),
				"details": schemaOf("object"),
			},
		},
	}
}
