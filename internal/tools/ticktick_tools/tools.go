package ticktick_tools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ticktick-mcp/internal/server"
)

// RegisterTickTickTools registers all TickTick tools with the MCP server.
// Tools that create, change or delete data are skipped when readOnly is set.
func RegisterTickTickTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if sc == nil || sc.Client() == nil {
		return fmt.Errorf("server context with a TickTick client is required")
	}

	registerProjectTools(s, sc, readOnly)
	registerTaskTools(s, sc, readOnly)
	registerQueryTools(s, sc)
	if !readOnly {
		registerBatchTools(s, sc)
	}
	return nil
}

// jsonResult renders v as indented JSON.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// projectIDParam and taskIDParam are shared parameter definitions.
func projectIDParam(desc string) mcp.ToolOption {
	return mcp.WithString("project_id", mcp.Required(), mcp.Description(desc))
}

func taskIDParam(desc string) mcp.ToolOption {
	return mcp.WithString("task_id", mcp.Required(), mcp.Description(desc))
}

const priorityDescription = "Priority: 0 (none), 1 (low), 3 (medium), 5 (high)"

const dateDescription = "Date or datetime, e.g. 2025-06-01 or 2025-06-01T09:00:00. " +
	"Values without an offset are read in the user time zone"
