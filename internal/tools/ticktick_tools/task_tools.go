package ticktick_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ticktick-mcp/internal/instrumentation"
	"github.com/teemow/ticktick-mcp/internal/logging"
	"github.com/teemow/ticktick-mcp/internal/server"
	"github.com/teemow/ticktick-mcp/internal/ticktick"
	"github.com/teemow/ticktick-mcp/internal/tools/batch"
	"github.com/teemow/ticktick-mcp/internal/tools/common"
)

const serviceTasks = instrumentation.ServiceTasks

// taskSpecFromArgs builds a TaskSpec from create_task style arguments.
func taskSpecFromArgs(args map[string]interface{}) (ticktick.TaskSpec, error) {
	spec := ticktick.TaskSpec{
		Content:   optionalString(args, "content"),
		Desc:      optionalString(args, "desc"),
		StartDate: optionalString(args, "start_date"),
		DueDate:   optionalString(args, "due_date"),
		TimeZone:  optionalString(args, "time_zone"),
	}
	var err error
	if spec.Title, err = requiredString(args, "title"); err != nil {
		return spec, err
	}
	if spec.ProjectID, err = requiredString(args, "project_id"); err != nil {
		return spec, err
	}
	if spec.Priority, _, err = priorityArg(args); err != nil {
		return spec, err
	}
	if spec.IsAllDay, _, err = optionalBool(args, "is_all_day"); err != nil {
		return spec, err
	}
	order, ok, err := optionalInt(args, "sort_order")
	if err != nil {
		return spec, err
	}
	if ok {
		if order < 0 {
			return spec, ticktick.NewValidationError("sort_order", "must not be negative")
		}
		o := int64(order)
		spec.SortOrder = &o
	}
	return spec, nil
}

// taskIDsFromArgs reads task_id as a single ID or a list of IDs.
func taskIDsFromArgs(args map[string]interface{}) ([]string, error) {
	ids, err := batch.ParseStringOrArray(args["task_id"], "task_id")
	if err != nil {
		return nil, ticktick.NewValidationError("", "%s", err.Error())
	}
	return ids, nil
}

// registerTaskTools registers single task tools
func registerTaskTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) {
	getTaskTool := mcp.NewTool("get_task",
		mcp.WithDescription("Get details of a specific task"),
		projectIDParam("ID of the project the task belongs to"),
		taskIDParam("ID of the task"),
	)
	s.AddTool(getTaskTool, common.InstrumentedToolHandlerWithService("get_task", serviceTasks, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			projectID, err := requiredString(args, "project_id")
			if err != nil {
				return toolError("get task", err), nil
			}
			taskID, err := requiredString(args, "task_id")
			if err != nil {
				return toolError("get task", err), nil
			}
			task, err := sc.Client().GetTask(ctx, projectID, taskID)
			if err != nil {
				return toolError("get task", err), nil
			}
			return jsonResult(task)
		}))

	if readOnly {
		return
	}

	createTaskTool := mcp.NewTool("create_task",
		mcp.WithDescription("Create a new task. Without sort_order the task is placed after the existing tasks of the project"),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title of the task")),
		projectIDParam("ID of the project to create the task in"),
		mcp.WithString("content", mcp.Description("Notes of the task")),
		mcp.WithString("desc", mcp.Description("Description of the checklist")),
		mcp.WithString("start_date", mcp.Description("Start "+dateDescription)),
		mcp.WithString("due_date", mcp.Description("Due "+dateDescription)),
		mcp.WithString("time_zone", mcp.Description("IANA time zone of the task, e.g. Europe/Berlin")),
		mcp.WithNumber("priority", mcp.Description(priorityDescription)),
		mcp.WithBoolean("is_all_day", mcp.Description("Whether the task is an all-day task")),
		mcp.WithNumber("sort_order", mcp.Description("Explicit position within the project")),
	)
	s.AddTool(createTaskTool, common.InstrumentedToolHandlerWithService("create_task", serviceTasks, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			spec, err := taskSpecFromArgs(request.GetArguments())
			if err != nil {
				return toolError("create task", err), nil
			}
			if spec.SortOrder == nil {
				order, err := sc.Client().NextRootSortOrder(ctx, spec.ProjectID)
				if err != nil {
					logging.WithTool(sc.Logger(), "create_task").Warn("could not compute sort order, creating task without one",
						logging.Project(spec.ProjectID), logging.Err(err))
				} else {
					spec.SortOrder = &order
				}
			}
			task, err := sc.Client().CreateTask(ctx, spec)
			if err != nil {
				return toolError("create task", err), nil
			}
			return jsonResult(task)
		}))

	updateTaskTool := mcp.NewTool("update_task",
		mcp.WithDescription("Update fields of an existing task. Omitted fields are left unchanged"),
		taskIDParam("ID of the task to update"),
		projectIDParam("ID of the project the task belongs to"),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("content", mcp.Description("New notes")),
		mcp.WithString("start_date", mcp.Description("New start "+dateDescription)),
		mcp.WithString("due_date", mcp.Description("New due "+dateDescription)),
		mcp.WithNumber("priority", mcp.Description(priorityDescription)),
		mcp.WithBoolean("is_all_day", mcp.Description("Whether the task is an all-day task")),
	)
	s.AddTool(updateTaskTool, common.InstrumentedToolHandlerWithService("update_task", serviceTasks, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			update := ticktick.TaskUpdate{
				Title:     optionalString(args, "title"),
				Content:   optionalString(args, "content"),
				StartDate: optionalString(args, "start_date"),
				DueDate:   optionalString(args, "due_date"),
			}
			var err error
			if update.ID, err = requiredString(args, "task_id"); err != nil {
				return toolError("update task", err), nil
			}
			if update.ProjectID, err = requiredString(args, "project_id"); err != nil {
				return toolError("update task", err), nil
			}
			if p, ok, err := priorityArg(args); err != nil {
				return toolError("update task", err), nil
			} else if ok {
				update.Priority = &p
			}
			if allDay, ok, err := optionalBool(args, "is_all_day"); err != nil {
				return toolError("update task", err), nil
			} else if ok {
				update.IsAllDay = &allDay
			}

			task, err := sc.Client().UpdateTask(ctx, update)
			if err != nil {
				return toolError("update task", err), nil
			}
			return jsonResult(task)
		}))

	completeTaskTool := mcp.NewTool("complete_task",
		mcp.WithDescription("Mark one or more tasks as completed"),
		projectIDParam("ID of the project the tasks belong to"),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Task ID (string) or array of task IDs to complete"),
		),
	)
	s.AddTool(completeTaskTool, common.InstrumentedToolHandlerWithService("complete_task", serviceTasks, instrumentation.OperationComplete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return taskIDsAction(ctx, request, "complete", "completed", sc.Client().CompleteTask)
		}))

	deleteTaskTool := mcp.NewTool("delete_task",
		mcp.WithDescription("Delete one or more tasks"),
		projectIDParam("ID of the project the tasks belong to"),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Task ID (string) or array of task IDs to delete"),
		),
	)
	s.AddTool(deleteTaskTool, common.InstrumentedToolHandlerWithService("delete_task", serviceTasks, instrumentation.OperationDelete, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return taskIDsAction(ctx, request, "delete", "deleted", sc.Client().DeleteTask)
		}))
}

// taskIDsAction applies fn to every task ID of the request. A single ID fails
// the whole call; several IDs are reported per item.
func taskIDsAction(ctx context.Context, request mcp.CallToolRequest, verb, status string,
	fn func(ctx context.Context, projectID, taskID string) error,
) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	action := verb + " task"

	projectID, err := requiredString(args, "project_id")
	if err != nil {
		return toolError(action, err), nil
	}
	ids, err := taskIDsFromArgs(args)
	if err != nil {
		return toolError(action, err), nil
	}

	if len(ids) == 1 {
		if err := fn(ctx, projectID, ids[0]); err != nil {
			return toolError(action, err), nil
		}
		return jsonResult(map[string]string{"status": status, "project_id": projectID, "task_id": ids[0]})
	}

	results := batch.ProcessBatch(ids, func(id string) (any, error) {
		if err := fn(ctx, projectID, id); err != nil {
			return nil, err
		}
		return status, nil
	}, formatError)
	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}
