// Package logging builds the process slog logger and the attribute helpers
// shared by the client, the token manager and the tool handlers.
//
//	logger := logging.WithOperation(slog.Default(), "ticktick.tasks.create")
//	logger.Info("task created", logging.Project(projectID), logging.Status(logging.StatusSuccess))
//
// Access and refresh tokens are only ever logged through SanitizeToken.
package logging
