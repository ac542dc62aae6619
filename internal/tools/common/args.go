package common

// TargetFromArgs extracts the project and task identifiers a tool call
// refers to. Missing or non-string values yield empty strings.
func TargetFromArgs(args map[string]any) (projectID, taskID string) {
	projectID = stringArg(args, "project_id")
	taskID = stringArg(args, "task_id")
	if taskID == "" {
		taskID = stringArg(args, "parent_task_id")
	}
	return projectID, taskID
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}
