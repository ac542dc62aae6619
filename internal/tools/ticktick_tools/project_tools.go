package ticktick_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ticktick-mcp/internal/instrumentation"
	"github.com/teemow/ticktick-mcp/internal/server"
	"github.com/teemow/ticktick-mcp/internal/ticktick"
	"github.com/teemow/ticktick-mcp/internal/tools/common"
)

const serviceProjects = instrumentation.ServiceProjects

// registerProjectTools registers project listing and management tools
func registerProjectTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) {
	getProjectsTool := mcp.NewTool("get_projects",
		mcp.WithDescription("List all projects of the authenticated user"),
	)
	s.AddTool(getProjectsTool, common.InstrumentedToolHandlerWithService("get_projects", serviceProjects, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projects, err := sc.Client().GetProjects(ctx)
			if err != nil {
				return toolError("list projects", err), nil
			}
			if projects == nil {
				projects = []ticktick.Project{}
			}
			return jsonResult(projects)
		}))

	getProjectTool := mcp.NewTool("get_project",
		mcp.WithDescription("Get details of a specific project"),
		projectIDParam("ID of the project"),
	)
	s.AddTool(getProjectTool, common.InstrumentedToolHandlerWithService("get_project", serviceProjects, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectID, err := requiredString(request.GetArguments(), "project_id")
			if err != nil {
				return toolError("get project", err), nil
			}
			project, err := sc.Client().GetProject(ctx, projectID)
			if err != nil {
				return toolError("get project", err), nil
			}
			return jsonResult(project)
		}))

	getProjectTasksTool := mcp.NewTool("get_project_tasks",
		mcp.WithDescription("List the open tasks of a project"),
		projectIDParam("ID of the project"),
	)
	s.AddTool(getProjectTasksTool, common.InstrumentedToolHandlerWithService("get_project_tasks", serviceProjects, instrumentation.OperationGetData, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectID, err := requiredString(request.GetArguments(), "project_id")
			if err != nil {
				return toolError("get project tasks", err), nil
			}
			data, err := sc.Client().GetProjectWithData(ctx, projectID)
			if err != nil {
				return toolError("get project tasks", err), nil
			}
			if data.Tasks == nil {
				data.Tasks = []ticktick.Task{}
			}
			return jsonResult(data)
		}))

	if readOnly {
		return
	}

	createProjectTool := mcp.NewTool("create_project",
		mcp.WithDescription("Create a new project"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name of the project")),
		mcp.WithString("color", mcp.Description("Color as hex code (default: #F18181)")),
		mcp.WithString("view_mode", mcp.Description("View mode: list, kanban or timeline (default: list)")),
		mcp.WithString("kind", mcp.Description("Project kind: TASK or NOTE (default: TASK)")),
	)
	s.AddTool(createProjectTool, common.InstrumentedToolHandlerWithService("create_project", serviceProjects, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			name, err := requiredString(args, "name")
			if err != nil {
				return toolError("create project", err), nil
			}
			project, err := sc.Client().CreateProject(ctx, ticktick.ProjectSpec{
				Name:     name,
				Color:    optionalString(args, "color"),
				ViewMode: optionalString(args, "view_mode"),
				Kind:     optionalString(args, "kind"),
			})
			if err != nil {
				return toolError("create project", err), nil
			}
			return jsonResult(project)
		}))

	updateProjectTool := mcp.NewTool("update_project",
		mcp.WithDescription("Update the name, color, view mode or kind of a project"),
		projectIDParam("ID of the project to update"),
		mcp.WithString("name", mcp.Description("New name")),
		mcp.WithString("color", mcp.Description("New color as hex code")),
		mcp.WithString("view_mode", mcp.Description("New view mode: list, kanban or timeline")),
		mcp.WithString("kind", mcp.Description("New kind: TASK or NOTE")),
	)
	s.AddTool(updateProjectTool, common.InstrumentedToolHandlerWithService("update_project", serviceProjects, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			projectID, err := requiredString(args, "project_id")
			if err != nil {
				return toolError("update project", err), nil
			}
			project, err := sc.Client().UpdateProject(ctx, projectID, ticktick.ProjectSpec{
				Name:     optionalString(args, "name"),
				Color:    optionalString(args, "color"),
				ViewMode: optionalString(args, "view_mode"),
				Kind:     optionalString(args, "kind"),
			})
			if err != nil {
				return toolError("update project", err), nil
			}
			return jsonResult(project)
		}))

	deleteProjectTool := mcp.NewTool("delete_project",
		mcp.WithDescription("Delete a project and all of its tasks"),
		projectIDParam("ID of the project to delete"),
	)
	s.AddTool(deleteProjectTool, common.InstrumentedToolHandlerWithService("delete_project", serviceProjects, instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			projectID, err := requiredString(request.GetArguments(), "project_id")
			if err != nil {
				return toolError("delete project", err), nil
			}
			if err := sc.Client().DeleteProject(ctx, projectID); err != nil {
				return toolError("delete project", err), nil
			}
			return jsonResult(map[string]string{"status": "deleted", "project_id": projectID})
		}))
}
