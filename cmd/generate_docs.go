package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ticktick-mcp/internal/credentials"
	"github.com/teemow/ticktick-mcp/internal/server"
	"github.com/teemow/ticktick-mcp/internal/ticktick"
)

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Print a markdown reference of every MCP tool, built from the tool
definitions registered by the server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(cmd.OutOrStdout(), outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

// noTokens backs the client used for documentation; no API call is ever made.
type noTokens struct{}

func (noTokens) ValidToken(context.Context) (string, error) {
	return "", fmt.Errorf("documentation server has no credentials")
}

func (noTokens) Refresh(context.Context, string) (string, error) {
	return "", fmt.Errorf("documentation server has no credentials")
}

// collectTools registers the tools on a throwaway server and returns their
// definitions sorted by name.
func collectTools(readOnly bool) ([]mcp.Tool, error) {
	client := ticktick.NewClient(credentials.DefaultBaseURL, noTokens{})
	sc, err := server.NewServerContext(context.Background(), client, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = sc.Shutdown() }()

	mcpSrv := mcpserver.NewMCPServer("ticktick-mcp", version, mcpserver.WithToolCapabilities(true))
	if err := registerAllTools(mcpSrv, sc, readOnly); err != nil {
		return nil, err
	}

	var tools []mcp.Tool
	for _, t := range mcpSrv.ListTools() {
		tools = append(tools, t.Tool)
	}
	slices.SortFunc(tools, func(a, b mcp.Tool) int { return strings.Compare(a.Name, b.Name) })
	return tools, nil
}

func runGenerateDocs(stdout io.Writer, outputFile string) error {
	tools, err := collectTools(false)
	if err != nil {
		return err
	}
	readOnly, err := collectTools(true)
	if err != nil {
		return err
	}
	safe := make(map[string]bool, len(readOnly))
	for _, t := range readOnly {
		safe[t.Name] = true
	}

	markdown := renderToolsMarkdown(tools, safe)
	if outputFile == "" {
		_, err = io.WriteString(stdout, markdown)
		return err
	}
	if err := os.WriteFile(outputFile, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	return nil
}

var categoryOrder = []string{"Project Tools", "Task Tools", "Batch and Subtask Tools", "Query Tools", "Other"}

func getCategoryFromToolName(name string) string {
	switch {
	case strings.Contains(name, "project"):
		return "Project Tools"
	case strings.Contains(name, "subtask"), strings.HasPrefix(name, "batch_"):
		return "Batch and Subtask Tools"
	case name == "get_task", strings.HasSuffix(name, "_task"):
		return "Task Tools"
	case strings.HasSuffix(name, "_tasks"), strings.HasPrefix(name, "get_tasks_"):
		return "Query Tools"
	default:
		return "Other"
	}
}

// renderToolsMarkdown documents tools grouped by category. safe holds the
// names registered in read-only mode.
func renderToolsMarkdown(tools []mcp.Tool, safe map[string]bool) string {
	byCategory := make(map[string][]mcp.Tool)
	for _, t := range tools {
		c := getCategoryFromToolName(t.Name)
		byCategory[c] = append(byCategory[c], t)
	}

	var sb strings.Builder
	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("Tools exposed by `ticktick-mcp serve`, generated from the registered definitions.\n")
	sb.WriteString("Tools marked *writes* are not registered with `--read-only`.\n\n")

	for _, category := range categoryOrder {
		if len(byCategory[category]) > 0 {
			anchor := strings.ToLower(strings.ReplaceAll(category, " ", "-"))
			fmt.Fprintf(&sb, "- [%s](#%s)\n", category, anchor)
		}
	}
	sb.WriteString("\n")

	for _, category := range categoryOrder {
		if len(byCategory[category]) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "## %s\n\n", category)
		for _, t := range byCategory[category] {
			writeToolMarkdown(&sb, t, !safe[t.Name])
		}
	}
	return sb.String()
}

func writeToolMarkdown(sb *strings.Builder, tool mcp.Tool, writes bool) {
	fmt.Fprintf(sb, "### %s\n\n", tool.Name)
	if writes {
		sb.WriteString("*writes*\n\n")
	}
	if tool.Description != "" {
		sb.WriteString(tool.Description + "\n\n")
	}

	props := tool.InputSchema.Properties
	if len(props) == 0 {
		return
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	slices.Sort(names)

	sb.WriteString("| Argument | Type | Required | Description |\n|---|---|---|---|\n")
	for _, name := range names {
		prop, _ := props[name].(map[string]any)
		typ, _ := prop["type"].(string)
		if typ == "" {
			typ = "any"
		}
		desc, _ := prop["description"].(string)
		required := "no"
		if slices.Contains(tool.InputSchema.Required, name) {
			required = "yes"
		}
		fmt.Fprintf(sb, "| `%s` | %s | %s | %s |\n", name, typ, required, strings.ReplaceAll(desc, "|", "\\|"))
	}
	sb.WriteString("\n")
}
