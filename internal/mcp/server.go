// Package mcpserver exposes the wireframe designer to AI agents over the
// Model Context Protocol.
package mcpserver

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"mockingbird/internal/export"
	"mockingbird/internal/service"
)

// Server is the MCP server for mockingbird.
// It exposes tools and resources so agents can edit pages, components and
// the journey graph.
type Server struct {
	mcp *server.MCPServer
	svc *service.DesignService
	log *zap.Logger

	exportFormat export.Format
	exportScope  export.Scope
}

// Deps holds everything the server needs from the app layer.
type Deps struct {
	Service *service.DesignService
	Logger  *zap.Logger
	Name    string
	Version string
	// Export defaults used when the export tool omits them.
	ExportFormat export.Format
	ExportScope  export.Scope
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Name == "" {
		deps.Name = "mockingbird"
	}
	if deps.Version == "" {
		deps.Version = "1.0.0"
	}
	if deps.ExportFormat == "" {
		deps.ExportFormat = export.FormatJSON
	}
	if deps.ExportScope == "" {
		deps.ExportScope = export.ScopeActive
	}
	s := &Server{
		svc:          deps.Service,
		log:          deps.Logger,
		exportFormat: deps.ExportFormat,
		exportScope:  deps.ExportScope,
	}

	s.mcp = server.NewMCPServer(
		deps.Name,
		deps.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.registerPageTools()
	s.registerComponentTools()
	s.registerJourneyTools()
	s.registerHistoryTools()
	s.registerResources()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.log.Info("starting MCP stdio server")
	return server.ServeStdio(s.mcp)
}

// ── Notifications ──────────────────────────────────────────

// Notifier is a service.EventEmitter that forwards design events to every
// connected MCP client. It is created before the server exists, so events
// emitted before Bind are dropped.
type Notifier struct {
	mu  sync.RWMutex
	srv *server.MCPServer
}

// Bind attaches the notifier to a running server.
func (n *Notifier) Bind(s *Server) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.srv = s.mcp
}

func (n *Notifier) Emit(_ context.Context, event string, data any) {
	n.mu.RLock()
	srv := n.srv
	n.mu.RUnlock()
	if srv == nil {
		return
	}
	srv.SendNotificationToAllClients("notifications/message", map[string]any{
		"level":  "info",
		"logger": "mockingbird",
		"data":   map[string]any{"event": event, "payload": data},
	})
}

var _ service.EventEmitter = (*Notifier)(nil)
