// Package batch provides the fail-soft batch helpers shared by the MCP tools.
//
// This package includes helpers for:
//   - Parsing parameters that accept both single values and arrays
//   - Running an operation per item while preserving input order
//   - Formatting per-item results with success and failure counts
package batch
