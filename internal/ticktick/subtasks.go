package ticktick

import (
	"context"
	"net/http"

	"github.com/teemow/ticktick-mcp/internal/instrumentation"
)

// Sort order spacing. Values outside [0, maxSortOrder] are provider artifacts
// and are ignored when computing the next position.
const (
	maxSortOrder     = 1_000_000_000
	subtaskBase      = 1000
	subtaskIncrement = 1000
	subtaskSpacing   = 100
	rootBase         = 10000
	rootIncrement    = 10000
)

func validSortOrder(v int64) bool {
	return v >= 0 && v <= maxSortOrder
}

// NextSubtaskSortOrder returns the sort order that appends a subtask after the
// parent's existing checklist items.
func NextSubtaskSortOrder(parent Task) int64 {
	var (
		maxOrder int64
		found    bool
	)
	for _, item := range parent.Items {
		if validSortOrder(item.SortOrder) && (!found || item.SortOrder > maxOrder) {
			maxOrder, found = item.SortOrder, true
		}
	}
	if !found {
		return subtaskBase
	}
	return maxOrder + subtaskIncrement
}

// NextRootOrder returns the sort order after the last root task of tasks.
func NextRootOrder(tasks []Task) int64 {
	var (
		maxOrder int64
		found    bool
	)
	for _, t := range tasks {
		if t.ParentID != "" || !validSortOrder(t.SortOrder) {
			continue
		}
		if !found || t.SortOrder > maxOrder {
			maxOrder, found = t.SortOrder, true
		}
	}
	if !found {
		return rootBase
	}
	return maxOrder + rootIncrement
}

// NextRootSortOrder fetches the project and returns the sort order that
// places a new root task last.
func (c *Client) NextRootSortOrder(ctx context.Context, projectID string) (int64, error) {
	data, err := c.GetProjectWithData(ctx, projectID)
	if err != nil {
		return 0, err
	}
	return NextRootOrder(data.Tasks), nil
}

func subtaskTaskSpec(projectID, parentID string, s SubtaskSpec, order int64) TaskSpec {
	return TaskSpec{
		Title:     s.Title,
		ProjectID: projectID,
		Content:   s.Content,
		Priority:  s.Priority,
		ParentID:  parentID,
		SortOrder: &order,
	}
}

// CreateSubtask appends a subtask to a parent task of the same project.
func (c *Client) CreateSubtask(ctx context.Context, projectID, parentID string, spec SubtaskSpec) (*Task, error) {
	if err := requireID("parent_task_id", parentID); err != nil {
		return nil, err
	}
	if err := validateInput(spec); err != nil {
		return nil, err
	}
	parent, err := c.GetTask(ctx, projectID, parentID)
	if err != nil {
		return nil, err
	}
	return c.createSubtask(ctx, subtaskTaskSpec(projectID, parentID, spec, NextSubtaskSortOrder(*parent)))
}

// CreateSubtasks appends several subtasks, spaced 100 apart, after the
// parent's existing items. The parent is fetched once; when that fails every
// result carries the error.
func (c *Client) CreateSubtasks(ctx context.Context, projectID, parentID string, specs []SubtaskSpec) []BatchResult {
	results := make([]BatchResult, len(specs))

	var parent *Task
	err := requireID("parent_task_id", parentID)
	if err == nil {
		parent, err = c.GetTask(ctx, projectID, parentID)
	}
	if err != nil {
		for i := range specs {
			results[i] = BatchResult{Index: i, Spec: subtaskTaskSpec(projectID, parentID, specs[i], 0), Err: err}
		}
		return results
	}

	base := NextSubtaskSortOrder(*parent)
	for i, s := range specs {
		spec := subtaskTaskSpec(projectID, parentID, s, base+int64(i)*subtaskSpacing)
		results[i] = BatchResult{Index: i, Spec: spec}
		if err := validateInput(s); err != nil {
			results[i].Err = err
			continue
		}
		results[i].Task, results[i].Err = c.createSubtask(ctx, spec)
	}
	return results
}

func (c *Client) createSubtask(ctx context.Context, spec TaskSpec) (*Task, error) {
	var t Task
	if err := c.do(ctx, serviceTasks, instrumentation.OperationCreateSubtask, http.MethodPost, "/task", spec, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
