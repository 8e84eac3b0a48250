// Package mcp exposes read-only device data to assistants over the Model
// Context Protocol.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("RepRight", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("RepRight workout server. Read a device's streak, today's workout, its active plan and saved workouts. Every tool except list_devices needs a device_id."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListDevices, Handler: h.listDevices},
		server.ServerTool{Tool: toolGetSession, Handler: h.getSession},
		server.ServerTool{Tool: toolGetTodayWorkout, Handler: h.getTodayWorkout},
		server.ServerTool{Tool: toolGetPlan, Handler: h.getPlan},
		server.ServerTool{Tool: toolListSavedWorkouts, Handler: h.listSavedWorkouts},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resDevices, Handler: h.devicesOverview},
	)

	return s
}

// NewHTTPHandler wraps an MCP server in the streamable HTTP transport.
func NewHTTPHandler(s *server.MCPServer) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s, server.WithStateLess(true))
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resDevices = mcp.NewResource(
	"repright://devices",
	"Devices",
	mcp.WithResourceDescription("Every device with stored data, with its streak and today's completion"),
	mcp.WithMIMEType("application/json"),
)
