package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCategoryFromToolName(t *testing.T) {
	tests := []struct {
		tool     string
		expected string
	}{
		{"get_projects", "Project Tools"},
		{"get_project_tasks", "Project Tools"},
		{"delete_project", "Project Tools"},
		{"get_task", "Task Tools"},
		{"create_task", "Task Tools"},
		{"complete_task", "Task Tools"},
		{"batch_create_tasks", "Batch and Subtask Tools"},
		{"create_subtask", "Batch and Subtask Tools"},
		{"create_subtasks", "Batch and Subtask Tools"},
		{"get_all_tasks", "Query Tools"},
		{"get_tasks_by_priority", "Query Tools"},
		{"get_tasks_due_in_days", "Query Tools"},
		{"search_tasks", "Query Tools"},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			assert.Equal(t, tt.expected, getCategoryFromToolName(tt.tool))
		})
	}
}

func TestRunGenerateDocs(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runGenerateDocs(&out, ""))

	markdown := out.String()
	assert.Contains(t, markdown, "# MCP Tools Reference")
	assert.Contains(t, markdown, "## Project Tools")
	assert.Contains(t, markdown, "## Query Tools")
	assert.Contains(t, markdown, "### create_task")
	assert.Contains(t, markdown, "### get_tasks_due_today")
	assert.Contains(t, markdown, "`project_id`")
}

func TestRenderToolsMarkdown(t *testing.T) {
	tools := []mcp.Tool{
		mcp.NewTool("get_task",
			mcp.WithDescription("Get a task."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task ID")),
		),
		mcp.NewTool("delete_task",
			mcp.WithString("notes", mcp.Description("a | b")),
		),
	}

	markdown := renderToolsMarkdown(tools, map[string]bool{"get_task": true})

	assert.Contains(t, markdown, "| `task_id` | string | yes | Task ID |")
	assert.Contains(t, markdown, "| `notes` | string | no | a \\| b |")
	assert.Equal(t, 1, strings.Count(markdown, "*writes*\n"))
	assert.NotContains(t, markdown, "## Query Tools")
}
