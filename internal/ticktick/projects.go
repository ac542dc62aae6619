package ticktick

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/teemow/ticktick-mcp/internal/instrumentation"
)

const serviceProjects = instrumentation.ServiceProjects

func projectPath(id string) string {
	return "/project/" + url.PathEscape(id)
}

func requireID(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(field, "is required")
	}
	return nil
}

// GetProjects lists all projects of the user.
func (c *Client) GetProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.do(ctx, serviceProjects, instrumentation.OperationList, http.MethodGet, "/project", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject retrieves a project by ID.
func (c *Client) GetProject(ctx context.Context, projectID string) (*Project, error) {
	if err := requireID("project_id", projectID); err != nil {
		return nil, err
	}
	var p Project
	if err := c.do(ctx, serviceProjects, instrumentation.OperationGet, http.MethodGet, projectPath(projectID), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProjectWithData retrieves a project together with its open tasks and columns.
func (c *Client) GetProjectWithData(ctx context.Context, projectID string) (*ProjectData, error) {
	if err := requireID("project_id", projectID); err != nil {
		return nil, err
	}
	var data ProjectData
	if err := c.do(ctx, serviceProjects, instrumentation.OperationGetData, http.MethodGet, projectPath(projectID)+"/data", nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// CreateProject creates a project. Empty color, view mode and kind take the
// defaults #F18181, list and TASK.
func (c *Client) CreateProject(ctx context.Context, spec ProjectSpec) (*Project, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return nil, NewValidationError("name", "is required")
	}
	if spec.Color == "" {
		spec.Color = DefaultProjectColor
	}
	if spec.ViewMode == "" {
		spec.ViewMode = DefaultProjectViewMode
	}
	if spec.Kind == "" {
		spec.Kind = DefaultProjectKind
	}
	if err := validateInput(spec); err != nil {
		return nil, err
	}

	var p Project
	if err := c.do(ctx, serviceProjects, instrumentation.OperationCreate, http.MethodPost, "/project", spec, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProject changes the non-empty fields of spec on the project.
func (c *Client) UpdateProject(ctx context.Context, projectID string, spec ProjectSpec) (*Project, error) {
	if err := requireID("project_id", projectID); err != nil {
		return nil, err
	}
	if spec == (ProjectSpec{}) {
		return nil, NewValidationError("", "at least one of name, color, view_mode or kind must be set")
	}
	if err := validateInput(spec); err != nil {
		return nil, err
	}

	var p Project
	if err := c.do(ctx, serviceProjects, instrumentation.OperationUpdate, http.MethodPost, projectPath(projectID), spec, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProject deletes a project and all of its tasks.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	if err := requireID("project_id", projectID); err != nil {
		return err
	}
	return c.do(ctx, serviceProjects, instrumentation.OperationDelete, http.MethodDelete, projectPath(projectID), nil, nil)
}

// AllTasks returns the open tasks of every project that is not closed, in
// project order.
func (c *Client) AllTasks(ctx context.Context) ([]Task, error) {
	projects, err := c.GetProjects(ctx)
	if err != nil {
		return nil, err
	}

	var tasks []Task
	for _, p := range projects {
		if p.Closed {
			continue
		}
		data, err := c.GetProjectWithData(ctx, p.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load tasks of project %q", p.Name)
		}
		tasks = append(tasks, data.Tasks...)
	}
	return tasks, nil
}
