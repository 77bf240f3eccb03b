package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/huddlehq/huddle/internal/model"
	"github.com/huddlehq/huddle/internal/server/middleware"
	"github.com/huddlehq/huddle/internal/service"
)

// registerTools registers all huddle MCP tools on the given server.
func (s *MCPServer) registerTools(srv *server.MCPServer) {

	// ----- Read tools -----

	srv.AddTool(
		mcp.NewTool("huddle_get_project",
			mcp.WithDescription(
				"Get the authenticated project: its name, one-line idea, hackathon, "+
					"and team members with their roles. Use this first to orient yourself.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		s.handleGetProject,
	)

	srv.AddTool(
		mcp.NewTool("huddle_list_tasks",
			mcp.WithDescription(
				"List all board tasks of the authenticated project, ordered by column "+
					"and position. Each task carries its column, title, assignee, and order.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		s.handleListTasks,
	)

	srv.AddTool(
		mcp.NewTool("huddle_get_submission",
			mcp.WithDescription(
				"Get the project's submission package: repository, presentation, and "+
					"demo video URLs, plus whether the submission is complete.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		s.handleGetSubmission,
	)

	srv.AddTool(
		mcp.NewTool("huddle_list_secrets",
			mcp.WithDescription(
				"List vault secret metadata for the project: names, descriptions, and "+
					"audit counters. Secret values are never returned by this tool.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		s.handleListSecrets,
	)

	// ----- Mutation tools -----

	srv.AddTool(
		mcp.NewTool("huddle_create_task",
			mcp.WithDescription(
				"Create a board task in the authenticated project. The task is placed "+
					"at the end of its column unless an explicit order is given.",
			),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("column",
				mcp.Required(),
				mcp.Description("Board column for the task (e.g. todo, doing, done)"),
			),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("Short task title"),
			),
			mcp.WithString("description",
				mcp.Description("Longer task description"),
			),
			mcp.WithNumber("order",
				mcp.Description("Explicit position within the column. Omit to append."),
			),
		),
		s.handleCreateTask,
	)

	srv.AddTool(
		mcp.NewTool("huddle_log_pivot",
			mcp.WithDescription(
				"Append an entry to the project's pivot log, recording a change of "+
					"direction and why it happened. The log is append-only.",
			),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("description",
				mcp.Required(),
				mcp.Description("What the project is pivoting to"),
			),
			mcp.WithString("reason",
				mcp.Description("Why the team is pivoting"),
			),
		),
		s.handleLogPivot,
	)
}

// principalFrom pulls the authenticated principal out of the tool context.
// The HTTP mount runs behind the auth middleware, so a missing principal
// means the server was wired without it.
func principalFrom(ctx context.Context) *service.Principal {
	return middleware.GetPrincipal(ctx)
}

func (s *MCPServer) handleGetProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := principalFrom(ctx)
	if p == nil {
		return toolError("not authenticated")
	}

	project, err := s.store.GetProject(ctx, p.ProjectID)
	if err != nil {
		return toolError("load project: %v", err)
	}
	return successJSON(project)
}

func (s *MCPServer) handleListTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := principalFrom(ctx)
	if p == nil {
		return toolError("not authenticated")
	}

	tasks, err := s.store.ListTasks(ctx, p.ProjectID)
	if err != nil {
		return toolError("list tasks: %v", err)
	}
	return successJSON(tasks)
}

func (s *MCPServer) handleGetSubmission(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := principalFrom(ctx)
	if p == nil {
		return toolError("not authenticated")
	}

	sub, err := s.store.GetSubmission(ctx, p.ProjectID)
	if err != nil {
		return toolError("no submission yet")
	}
	return successJSON(map[string]interface{}{
		"submission": sub,
		"isComplete": sub.IsComplete(),
		"shareUrl":   sub.ShareURL(),
	})
}

func (s *MCPServer) handleListSecrets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := principalFrom(ctx)
	if p == nil {
		return toolError("not authenticated")
	}

	project, err := s.store.GetProject(ctx, p.ProjectID)
	if err != nil {
		return toolError("load project: %v", err)
	}
	secrets, err := s.store.ListSecrets(ctx, p.ProjectID, project.HackathonID)
	if err != nil {
		return toolError("list secrets: %v", err)
	}
	return successJSON(secrets)
}

func (s *MCPServer) handleCreateTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := principalFrom(ctx)
	if p == nil {
		return toolError("not authenticated")
	}

	column, err := requireString(request, "column")
	if err != nil {
		return toolError("%v", err)
	}
	title, err := requireString(request, "title")
	if err != nil {
		return toolError("%v", err)
	}

	task := &model.Task{
		ProjectID:   p.ProjectID,
		ColumnID:    column,
		Title:       title,
		Description: optionalString(request, "description"),
	}
	assignPosition := true
	if order := optionalInt(request, "order", -1); order >= 0 {
		task.Position = order
		assignPosition = false
	}

	if err := s.store.CreateTask(ctx, task, assignPosition); err != nil {
		return toolError("create task: %v", err)
	}
	return successJSON(task)
}

func (s *MCPServer) handleLogPivot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := principalFrom(ctx)
	if p == nil {
		return toolError("not authenticated")
	}

	description, err := requireString(request, "description")
	if err != nil {
		return toolError("%v", err)
	}

	pivot := &model.Pivot{
		ProjectID:   p.ProjectID,
		Description: description,
		Reason:      optionalString(request, "reason"),
	}
	if err := s.store.AddPivot(ctx, pivot); err != nil {
		return toolError("log pivot: %v", err)
	}
	return successJSON(pivot)
}
