// Package common provides shared utilities for MCP tool implementations:
// the instrumentation wrapper applied to every handler and small argument
// helpers.
package common
