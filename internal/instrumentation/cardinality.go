package instrumentation

import "strings"

// idSegments are the path segments whose following segment is an identifier.
var idSegments = map[string]bool{
	"project": true,
	"task":    true,
}

// NormalizeAPIPath replaces project and task identifiers in an open API path
// with a placeholder. Query strings are dropped.
//
// Example:
//
//	NormalizeAPIPath("/project/abc/task/def/complete")  // "/project/{id}/task/{id}/complete"
//	NormalizeAPIPath("/project/abc/data")               // "/project/{id}/data"
//	NormalizeAPIPath("/task")                           // "/task"
//	NormalizeAPIPath("")                                // "unknown"
func NormalizeAPIPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "unknown"
	}

	segments := strings.Split(path, "/")
	for i := 1; i < len(segments); i++ {
		if segments[i] != "" && idSegments[segments[i-1]] {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}

// Operation label values of TickTick API metrics and spans.
const (
	OperationList          = "list"
	OperationGet           = "get"
	OperationGetData       = "get_data"
	OperationCreate        = "create"
	OperationCreateSubtask = "create_subtask"
	OperationUpdate        = "update"
	OperationComplete      = "complete"
	OperationDelete        = "delete"
	OperationSearch        = "search"
)
