package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/huddlehq/huddle/internal/model"
)

// registerResources adds MCP resource definitions to the server. Resources
// provide read-only data that LLM clients can load into their context.
func (s *MCPServer) registerResources(srv *server.MCPServer) {

	// -------------------------------------------------------------------
	// huddle://project — the authenticated project and its team
	// -------------------------------------------------------------------
	srv.AddResource(
		mcp.NewResource(
			"huddle://project",
			"Project Overview",
			mcp.WithResourceDescription(
				"The authenticated project: name, one-line idea, hackathon, "+
					"and team members with their roles.",
			),
			mcp.WithMIMEType("application/json"),
		),
		s.handleProjectResource,
	)

	// -------------------------------------------------------------------
	// huddle://pivots — the project's pivot history
	// -------------------------------------------------------------------
	srv.AddResource(
		mcp.NewResource(
			"huddle://pivots",
			"Pivot Log",
			mcp.WithResourceDescription(
				"Append-only history of the project's direction changes, "+
					"newest first, with the reason for each pivot.",
			),
			mcp.WithMIMEType("application/json"),
		),
		s.handlePivotsResource,
	)

	// -------------------------------------------------------------------
	// huddle://board/{column} — tasks in one board column (template)
	// -------------------------------------------------------------------
	srv.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"huddle://board/{column}",
			"Board Column",
			mcp.WithTemplateDescription(
				"Tasks in a single board column of the authenticated project, "+
					"ordered by position.",
			),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleBoardColumnResource,
	)
}

// handleProjectResource returns the authenticated project with its members.
func (s *MCPServer) handleProjectResource(
	ctx context.Context,
	request mcp.ReadResourceRequest,
) ([]mcp.ResourceContents, error) {

	p := principalFrom(ctx)
	if p == nil {
		return nil, fmt.Errorf("not authenticated")
	}

	project, err := s.store.GetProject(ctx, p.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	b, err := json.MarshalIndent(project, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal project: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "huddle://project",
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}

// handlePivotsResource returns the project's pivot log, newest first.
func (s *MCPServer) handlePivotsResource(
	ctx context.Context,
	request mcp.ReadResourceRequest,
) ([]mcp.ResourceContents, error) {

	p := principalFrom(ctx)
	if p == nil {
		return nil, fmt.Errorf("not authenticated")
	}

	pivots, err := s.store.ListPivots(ctx, p.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pivots: %w", err)
	}

	b, err := json.MarshalIndent(pivots, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pivots: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "huddle://pivots",
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}

// handleBoardColumnResource returns the tasks of one board column.
func (s *MCPServer) handleBoardColumnResource(
	ctx context.Context,
	request mcp.ReadResourceRequest,
) ([]mcp.ResourceContents, error) {

	p := principalFrom(ctx)
	if p == nil {
		return nil, fmt.Errorf("not authenticated")
	}

	// Extract column from URI: "huddle://board/{column}"
	uri := request.Params.URI
	column := strings.TrimPrefix(uri, "huddle://board/")
	if column == "" || column == uri {
		return nil, fmt.Errorf("invalid board URI %q: expected huddle://board/{column}", uri)
	}

	tasks, err := s.store.ListTasks(ctx, p.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	inColumn := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ColumnID == column {
			inColumn = append(inColumn, t)
		}
	}

	b, err := json.MarshalIndent(inColumn, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tasks: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}
