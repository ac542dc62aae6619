package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ticktick-mcp/internal/server"
	"github.com/teemow/ticktick-mcp/internal/ticktick"
)

// Resource URIs.
const (
	ProjectsURI   = "ticktick://projects"
	AuthStatusURI = "ticktick://auth/status"
)

// RegisterTickTickResources registers the project list and auth status resources.
func RegisterTickTickResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if sc == nil || sc.Client() == nil {
		return fmt.Errorf("ticktick client is required to register resources")
	}

	projectsResource := mcp.NewResource(
		ProjectsURI,
		"TickTick Projects",
		mcp.WithResourceDescription("Open projects of the authorized TickTick account"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(projectsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleProjects(ctx, request, sc)
	})

	statusResource := mcp.NewResource(
		AuthStatusURI,
		"Authorization Status",
		mcp.WithResourceDescription("Token lifecycle state and API endpoint in use. Never contains secrets."),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(statusResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleAuthStatus(request, sc)
	})

	return nil
}

// handleProjects returns the open projects of the user
func handleProjects(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	projects, err := sc.Client().GetProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get projects: %w", err)
	}

	open := make([]ticktick.Project, 0, len(projects))
	for _, p := range projects {
		if !p.Closed {
			open = append(open, p)
		}
	}

	return jsonContents(request.Params.URI, open)
}

type authStatus struct {
	State        string `json:"state"`
	APIBaseURL   string `json:"api_base_url"`
	HasClient    bool   `json:"has_client"`
	CanRefresh   bool   `json:"can_refresh"`
	Instructions string `json:"instructions,omitempty"`
}

// handleAuthStatus reports the token manager state
func handleAuthStatus(request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	status := authStatus{State: sc.AuthState()}

	if manager := sc.Tokens(); manager != nil {
		creds := manager.Credentials()
		status.APIBaseURL = creds.APIBaseURL()
		status.HasClient = creds.HasClient()
		status.CanRefresh = creds.RefreshToken != ""
		if !creds.HasAccessToken() {
			status.Instructions = "run `ticktick-mcp auth` to authorize"
		}
	}

	return jsonContents(request.Params.URI, status)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
