package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"mockingbird/internal/domain"
	"mockingbird/internal/journey"
	"mockingbird/internal/workspace"
)

const (
	pagesURI   = "wireframe://pages"
	journeyURI = "wireframe://journey"
	pagePrefix = "wireframe://page/"
	pageSuffix = "/components"
)

func (s *Server) registerResources() {
	// ── wireframe://pages ──────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		pagesURI,
		"All Pages",
		mcp.WithMIMEType("application/json"),
	), s.handlePagesResource)

	// ── wireframe://journey ────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		journeyURI,
		"Journey Graph",
		mcp.WithMIMEType("application/json"),
	), s.handleJourneyResource)

	// ── wireframe://page/{pageId}/components ───────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			pagePrefix+"{pageId}"+pageSuffix,
			"Components on a Page",
		),
		s.handlePageComponentsResource,
	)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal resource: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handlePagesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(pagesURI, summarizePages(s.svc.State()))
}

type journeyView struct {
	Nodes       []domain.PageNode   `json:"nodes"`
	Connections []connectionSummary `json:"connections"`
	Paths       []journey.EdgePath  `json:"paths"`
	Pending     *domain.Endpoint    `json:"pending,omitempty"`
}

func (s *Server) handleJourneyResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	st := s.svc.State()
	view := journeyView{
		Nodes:       st.PageNodes,
		Connections: summarizeConnections(st),
		Paths:       s.svc.EdgePaths(),
	}
	if p, ok := s.svc.PendingConnection(); ok {
		view.Pending = &p
	}
	return jsonContents(journeyURI, view)
}

func (s *Server) handlePageComponentsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	pageID := extractPageIDFromURI(uri)
	if pageID == "" {
		return nil, fmt.Errorf("could not extract pageId from URI: %s", uri)
	}
	page, ok := s.svc.State().Page(pageID)
	if !ok {
		return nil, workspace.ErrPageNotFound
	}
	return jsonContents(uri, journey.SortedComponents(page))
}

// extractPageIDFromURI extracts the page ID from
// "wireframe://page/{id}/components".
func extractPageIDFromURI(uri string) string {
	if !strings.HasPrefix(uri, pagePrefix) || !strings.HasSuffix(uri, pageSuffix) {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(uri, pagePrefix), pageSuffix)
}
