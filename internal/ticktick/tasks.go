package ticktick

import (
	"context"
	"net/http"
	"net/url"

	"github.com/teemow/ticktick-mcp/internal/instrumentation"
)

const serviceTasks = instrumentation.ServiceTasks

func taskPath(projectID, taskID string) string {
	return projectPath(projectID) + "/task/" + url.PathEscape(taskID)
}

// GetTask retrieves a task of a project.
func (c *Client) GetTask(ctx context.Context, projectID, taskID string) (*Task, error) {
	if err := requireID("project_id", projectID); err != nil {
		return nil, err
	}
	if err := requireID("task_id", taskID); err != nil {
		return nil, err
	}
	var t Task
	if err := c.do(ctx, serviceTasks, instrumentation.OperationGet, http.MethodGet, taskPath(projectID, taskID), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// prepareSpec validates spec and normalizes its dates into the user location.
func (c *Client) prepareSpec(spec TaskSpec) (TaskSpec, error) {
	if err := validateInput(spec); err != nil {
		return spec, err
	}
	var err error
	if spec.StartDate, err = c.normalizeField("start_date", spec.StartDate); err != nil {
		return spec, err
	}
	if spec.DueDate, err = c.normalizeField("due_date", spec.DueDate); err != nil {
		return spec, err
	}
	return spec, nil
}

func (c *Client) normalizeField(field, value string) (string, error) {
	out, err := NormalizeDateTime(value, c.location)
	if err != nil {
		return "", NewValidationError(field, "%q is not a recognized date or datetime", value)
	}
	return out, nil
}

// CreateTask validates and creates a task.
func (c *Client) CreateTask(ctx context.Context, spec TaskSpec) (*Task, error) {
	spec, err := c.prepareSpec(spec)
	if err != nil {
		return nil, err
	}
	var t Task
	if err := c.do(ctx, serviceTasks, instrumentation.OperationCreate, http.MethodPost, "/task", spec, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTask sends the non-zero fields of u.
func (c *Client) UpdateTask(ctx context.Context, u TaskUpdate) (*Task, error) {
	if err := validateInput(u); err != nil {
		return nil, err
	}
	var err error
	if u.StartDate, err = c.normalizeField("start_date", u.StartDate); err != nil {
		return nil, err
	}
	if u.DueDate, err = c.normalizeField("due_date", u.DueDate); err != nil {
		return nil, err
	}

	var t Task
	if err := c.do(ctx, serviceTasks, instrumentation.OperationUpdate, http.MethodPost, "/task/"+url.PathEscape(u.ID), u, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CompleteTask marks a task as completed.
func (c *Client) CompleteTask(ctx context.Context, projectID, taskID string) error {
	if err := requireID("project_id", projectID); err != nil {
		return err
	}
	if err := requireID("task_id", taskID); err != nil {
		return err
	}
	return c.do(ctx, serviceTasks, instrumentation.OperationComplete, http.MethodPost, taskPath(projectID, taskID)+"/complete", nil, nil)
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, projectID, taskID string) error {
	if err := requireID("project_id", projectID); err != nil {
		return err
	}
	if err := requireID("task_id", taskID); err != nil {
		return err
	}
	return c.do(ctx, serviceTasks, instrumentation.OperationDelete, http.MethodDelete, taskPath(projectID, taskID), nil, nil)
}

// BatchCreateTasks creates specs one after another. It returns one result per
// spec in input order and never stops early: an invalid spec yields a
// ValidationError and a remote failure yields that item's error.
func (c *Client) BatchCreateTasks(ctx context.Context, specs []TaskSpec) []BatchResult {
	results := make([]BatchResult, len(specs))
	for i, spec := range specs {
		results[i] = BatchResult{Index: i, Spec: spec}
		results[i].Task, results[i].Err = c.CreateTask(ctx, spec)
	}
	return results
}
