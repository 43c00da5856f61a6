package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/nlpdemo/internal/demos"
	"github.com/ziadkadry99/nlpdemo/internal/session"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes the demos and the token
// alignment helpers as tools.
type Server struct {
	registry     *demos.Registry
	orchestrator *session.Orchestrator
	defaultTopK  int
	mcp          *server.MCPServer
}

// NewServer creates a new MCP server. orchestrator may be nil, in which
// case only the offline tools are registered.
func NewServer(registry *demos.Registry, orchestrator *session.Orchestrator, defaultTopK int) *Server {
	s := &Server{
		registry:     registry,
		orchestrator: orchestrator,
		defaultTopK:  defaultTopK,
	}

	s.mcp = server.NewMCPServer(
		"nlpdemo",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(listDemosTool, s.handleListDemos)
	s.mcp.AddTool(alignHotFlipTool, s.handleAlignHotFlip)
	s.mcp.AddTool(alignInputReductionTool, s.handleAlignInputReduction)
	s.mcp.AddTool(saliencyTopKTool, s.handleSaliencyTopK)
	if s.orchestrator != nil {
		s.mcp.AddTool(predictTool, s.handlePredict)
	}
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
