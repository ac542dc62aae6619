// Package resources provides MCP resources for TickTick account data.
// Resources are read-only data sources that MCP clients can fetch without a
// tool call, such as the project list and the authorization status.
package resources
