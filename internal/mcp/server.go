package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog training log. Look up the next split day of the active mesocycle, the workout in progress, previous performance per exercise and workout history. All tools are read-only."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetNextSplit, Handler: h.getNextSplit},
		server.ServerTool{Tool: toolGetWeekProgress, Handler: h.getWeekProgress},
		server.ServerTool{Tool: toolGetCurrentSession, Handler: h.getCurrentSession},
		server.ServerTool{Tool: toolGetPreviousPerformance, Handler: h.getPreviousPerformance},
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resCurrentSession, Handler: h.currentSession},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resCurrentSession = mcp.NewResource(
	"liftlog://current_session",
	"Current Session",
	mcp.WithResourceDescription("The workout in progress with its exercises and sets, or an inactive state"),
	mcp.WithMIMEType("application/json"),
)
