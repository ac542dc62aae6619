package ticktick_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ticktick-mcp/internal/instrumentation"
	"github.com/teemow/ticktick-mcp/internal/server"
	"github.com/teemow/ticktick-mcp/internal/ticktick"
	"github.com/teemow/ticktick-mcp/internal/tools/batch"
	"github.com/teemow/ticktick-mcp/internal/tools/common"
)

// subtaskSpecFromArgs builds a SubtaskSpec from title, content and priority.
func subtaskSpecFromArgs(args map[string]interface{}) (ticktick.SubtaskSpec, error) {
	spec := ticktick.SubtaskSpec{Content: optionalString(args, "content")}
	var err error
	if spec.Title, err = requiredString(args, "title"); err != nil {
		return spec, err
	}
	if spec.Priority, _, err = priorityArg(args); err != nil {
		return spec, err
	}
	return spec, nil
}

// pending collects the items that passed validation, remembering their
// position in the request.
type pending[T any] struct {
	specs     []T
	positions []int
}

func (p *pending[T]) add(index int, spec T) {
	p.specs = append(p.specs, spec)
	p.positions = append(p.positions, index)
}

// mergeResults writes the API outcomes of the valid items into results.
func mergeResults(results []batch.Result, positions []int, created []ticktick.BatchResult) {
	for _, r := range created {
		i := positions[r.Index]
		if r.Err != nil {
			results[i] = batch.NewErrorResult(i, "", formatError(r.Err))
			continue
		}
		results[i] = batch.NewSuccessResult(i, r.Task.ID, r.Task)
	}
}

// registerBatchTools registers batch creation and subtask tools
func registerBatchTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	batchCreateTool := mcp.NewTool("batch_create_tasks",
		mcp.WithDescription("Create several tasks in one call. Each item is validated and created on its own; "+
			"a failing item does not stop the others"),
		mcp.WithArray("tasks",
			mcp.Required(),
			mcp.Description("Tasks to create, each with the fields of create_task"),
			mcp.Items(itemsSchema(taskItemSchemaJSON)),
		),
	)
	s.AddTool(batchCreateTool, common.InstrumentedToolHandlerWithService("batch_create_tasks", serviceTasks, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			items, err := objectList(request.GetArguments(), "tasks")
			if err != nil {
				return toolError("create tasks", err), nil
			}

			results := make([]batch.Result, len(items))
			var valid pending[ticktick.TaskSpec]
			for i, item := range items {
				if err := validateItem(taskItemSchema, item); err != nil {
					results[i] = batch.NewErrorResult(i, "", formatError(err))
					continue
				}
				spec, err := taskSpecFromArgs(item)
				if err != nil {
					results[i] = batch.NewErrorResult(i, "", formatError(err))
					continue
				}
				valid.add(i, spec)
			}
			if len(valid.specs) > 0 {
				mergeResults(results, valid.positions, sc.Client().BatchCreateTasks(ctx, valid.specs))
			}
			return mcp.NewToolResultText(batch.FormatResults(results)), nil
		}))

	createSubtaskTool := mcp.NewTool("create_subtask",
		mcp.WithDescription("Create a subtask under a parent task, placed after the parent's existing subtasks"),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title of the subtask")),
		mcp.WithString("parent_task_id", mcp.Required(), mcp.Description("ID of the parent task")),
		projectIDParam("ID of the project of the parent task"),
		mcp.WithString("content", mcp.Description("Notes of the subtask")),
		mcp.WithNumber("priority", mcp.Description(priorityDescription)),
	)
	s.AddTool(createSubtaskTool, common.InstrumentedToolHandlerWithService("create_subtask", serviceTasks, instrumentation.OperationCreateSubtask, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			projectID, err := requiredString(args, "project_id")
			if err != nil {
				return toolError("create subtask", err), nil
			}
			parentID, err := requiredString(args, "parent_task_id")
			if err != nil {
				return toolError("create subtask", err), nil
			}
			spec, err := subtaskSpecFromArgs(args)
			if err != nil {
				return toolError("create subtask", err), nil
			}
			task, err := sc.Client().CreateSubtask(ctx, projectID, parentID, spec)
			if err != nil {
				return toolError("create subtask", err), nil
			}
			return jsonResult(task)
		}))

	createSubtasksTool := mcp.NewTool("create_subtasks",
		mcp.WithDescription("Create several subtasks under one parent task, in the given order"),
		mcp.WithString("parent_task_id", mcp.Required(), mcp.Description("ID of the parent task")),
		projectIDParam("ID of the project of the parent task"),
		mcp.WithArray("subtasks",
			mcp.Required(),
			mcp.Description("Subtasks to create"),
			mcp.Items(itemsSchema(subtaskItemSchemaJSON)),
		),
	)
	s.AddTool(createSubtasksTool, common.InstrumentedToolHandlerWithService("create_subtasks", serviceTasks, instrumentation.OperationCreateSubtask, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			projectID, err := requiredString(args, "project_id")
			if err != nil {
				return toolError("create subtasks", err), nil
			}
			parentID, err := requiredString(args, "parent_task_id")
			if err != nil {
				return toolError("create subtasks", err), nil
			}
			items, err := objectList(args, "subtasks")
			if err != nil {
				return toolError("create subtasks", err), nil
			}

			results := make([]batch.Result, len(items))
			var valid pending[ticktick.SubtaskSpec]
			for i, item := range items {
				if err := validateItem(subtaskItemSchema, item); err != nil {
					results[i] = batch.NewErrorResult(i, "", formatError(err))
					continue
				}
				spec, err := subtaskSpecFromArgs(item)
				if err != nil {
					results[i] = batch.NewErrorResult(i, "", formatError(err))
					continue
				}
				valid.add(i, spec)
			}
			if len(valid.specs) > 0 {
				mergeResults(results, valid.positions, sc.Client().CreateSubtasks(ctx, projectID, parentID, valid.specs))
			}
			return mcp.NewToolResultText(batch.FormatResults(results)), nil
		}))
}
