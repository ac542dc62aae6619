package ticktick_tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ticktick-mcp/internal/instrumentation"
	"github.com/teemow/ticktick-mcp/internal/server"
	"github.com/teemow/ticktick-mcp/internal/ticktick"
	"github.com/teemow/ticktick-mcp/internal/ticktick/query"
	"github.com/teemow/ticktick-mcp/internal/tools/common"
)

// now is the reference time of date filters. Tests replace it.
var now = time.Now

// filterBuilder derives a task filter from the tool arguments.
type filterBuilder func(args map[string]interface{}, clock query.Clock) (query.Filter, error)

// queryResult is the output of every query tool.
type queryResult struct {
	Count int             `json:"count"`
	Tasks []ticktick.Task `json:"tasks"`
}

func fixed(pick func(clock query.Clock) query.Filter) filterBuilder {
	return func(_ map[string]interface{}, clock query.Clock) (query.Filter, error) {
		return pick(clock), nil
	}
}

func matchAll(ticktick.Task) bool { return true }

type queryToolDef struct {
	name    string
	desc    string
	options []mcp.ToolOption
	build   filterBuilder
}

var queryTools = []queryToolDef{
	{
		name:  "get_all_tasks",
		desc:  "List the open tasks of all projects, ordered by due date",
		build: fixed(func(query.Clock) query.Filter { return matchAll }),
	},
	{
		name: "get_tasks_by_priority",
		desc: "List open tasks with the given priority",
		options: []mcp.ToolOption{
			mcp.WithNumber("priority", mcp.Required(), mcp.Description(priorityDescription)),
		},
		build: func(args map[string]interface{}, _ query.Clock) (query.Filter, error) {
			p, ok, err := optionalInt(args, "priority")
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, ticktick.NewValidationError("priority", "is required")
			}
			return query.ByPriority(p)
		},
	},
	{
		name: "search_tasks",
		desc: "Search open tasks whose title, content or checklist items contain a term, ignoring case",
		options: []mcp.ToolOption{
			mcp.WithString("search_term", mcp.Required(), mcp.Description("Text to search for")),
		},
		build: func(args map[string]interface{}, _ query.Clock) (query.Filter, error) {
			return query.Search(optionalString(args, "search_term"))
		},
	},
	{
		name:  "get_tasks_due_today",
		desc:  "List open tasks due today",
		build: fixed(query.Clock.DueToday),
	},
	{
		name:  "get_tasks_due_tomorrow",
		desc:  "List open tasks due tomorrow",
		build: fixed(query.Clock.DueTomorrow),
	},
	{
		name: "get_tasks_due_in_days",
		desc: "List open tasks due exactly the given number of days from today",
		options: []mcp.ToolOption{
			mcp.WithNumber("days", mcp.Required(), mcp.Description("Days from today; 0 is today")),
		},
		build: func(args map[string]interface{}, clock query.Clock) (query.Filter, error) {
			days, ok, err := optionalInt(args, "days")
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, ticktick.NewValidationError("days", "is required")
			}
			return clock.DueInDays(days)
		},
	},
	{
		name:  "get_tasks_due_this_week",
		desc:  "List open tasks due within the next seven days, today included",
		build: fixed(query.Clock.DueThisWeek),
	},
	{
		name:  "get_overdue_tasks",
		desc:  "List open tasks whose due date has passed",
		build: fixed(query.Clock.Overdue),
	},
	{
		name:  "get_engaged_tasks",
		desc:  "List engaged tasks: high priority (5) or overdue",
		build: fixed(query.Clock.Engaged),
	},
	{
		name:  "get_next_tasks",
		desc:  "List next tasks: medium priority (3) or due tomorrow",
		build: fixed(query.Clock.Next),
	},
}

// registerQueryTools registers the derived read-only queries over all tasks
func registerQueryTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	for _, def := range queryTools {
		opts := append([]mcp.ToolOption{mcp.WithDescription(def.desc)}, def.options...)
		tool := mcp.NewTool(def.name, opts...)
		s.AddTool(tool, common.InstrumentedToolHandlerWithService(def.name, serviceTasks, instrumentation.OperationSearch, sc,
			queryHandler(sc, def.build)))
	}
}

func queryHandler(sc *server.ServerContext, build filterBuilder) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		client := sc.Client()
		clock := query.NewClock(now(), client.Location())

		filter, err := build(request.GetArguments(), clock)
		if err != nil {
			return toolError("query tasks", err), nil
		}
		tasks, err := client.AllTasks(ctx)
		if err != nil {
			return toolError("query tasks", err), nil
		}
		matched := clock.Apply(tasks, filter)
		return jsonResult(queryResult{Count: len(matched), Tasks: matched})
	}
}
