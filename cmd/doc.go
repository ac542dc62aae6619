// Package cmd implements the command-line interface for ticktick-mcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server over stdio or streamable HTTP
//   - auth: Run the OAuth authorization flow and store the tokens
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// Every flag can also be set through an environment variable named after
// the flag with the TICKTICK_MCP_ prefix, e.g. TICKTICK_MCP_READ_ONLY=true.
// Flags given on the command line take precedence.
package cmd
