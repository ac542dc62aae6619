// Package ticktick_tools provides MCP tools for TickTick and Dida365 projects and tasks.
//
// The tools wrap the ticktick client and the query filters. Every handler
// validates its arguments, calls the API and returns indented JSON.
//
// # Available Tools
//
// Projects:
//   - get_projects, get_project, get_project_tasks
//   - create_project, update_project, delete_project
//
// Tasks:
//   - get_task, create_task, update_task
//   - complete_task, delete_task (single ID or array)
//   - batch_create_tasks, create_subtask, create_subtasks
//
// Queries across all projects:
//   - get_all_tasks, get_tasks_by_priority, search_tasks
//   - get_tasks_due_today, get_tasks_due_tomorrow, get_tasks_due_in_days,
//     get_tasks_due_this_week, get_overdue_tasks
//   - get_engaged_tasks, get_next_tasks
//
// # Read-Only Mode
//
// Tools that change remote state are not registered when readOnly is set.
//
// # Errors
//
// Failures are returned as tool error results whose message starts with the
// error kind, for example "reauthorization required: ...", followed by any
// hints attached to the error.
package ticktick_tools
