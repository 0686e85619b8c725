package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("FlexTrack", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("FlexTrack workout tracking server. Query the workout library, training session history, daily weight/calorie logs, and training analytics (streaks, personal records, plateau detection)."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolGetSessions, Handler: h.getSessions},
		server.ServerTool{Tool: toolGetSessionSummary, Handler: h.getSessionSummary},
		server.ServerTool{Tool: toolGetStreak, Handler: h.getStreak},
		server.ServerTool{Tool: toolGetPersonalRecords, Handler: h.getPersonalRecords},
		server.ServerTool{Tool: toolDetectPlateau, Handler: h.detectPlateau},
		server.ServerTool{Tool: toolGetDailyLogs, Handler: h.getDailyLogs},
		server.ServerTool{Tool: toolGetDataStats, Handler: h.getDataStats},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resWorkoutLibrary, Handler: h.workoutLibrary},
		server.ServerResource{Resource: resRecentSessions, Handler: h.recentSessions},
		server.ServerResource{Resource: resTrainingStreak, Handler: h.trainingStreak},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resWorkoutLibrary = mcp.NewResource(
	"flextrack://workout_library",
	"Workout Library",
	mcp.WithResourceDescription("All defined workouts with their exercise lists, set counts, and warmup/dropset flags"),
	mcp.WithMIMEType("application/json"),
)

var resRecentSessions = mcp.NewResource(
	"flextrack://recent_sessions",
	"Recent Sessions",
	mcp.WithResourceDescription("Training sessions from the last 14 days with per-session volume and duration"),
	mcp.WithMIMEType("application/json"),
)

var resTrainingStreak = mcp.NewResource(
	"flextrack://training_streak",
	"Training Streak",
	mcp.WithResourceDescription("Current consecutive-day training streak"),
	mcp.WithMIMEType("application/json"),
)
