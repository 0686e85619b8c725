package mcp

import (
	"context"
	"time"

	"github.com/claude/flextrack/internal/analytics"
	"github.com/claude/flextrack/internal/history"
	"github.com/claude/flextrack/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List all workouts in the library with their exercises, set counts, and warmup/dropset configuration."),
)

var toolGetSessions = mcp.NewTool("get_sessions",
	mcp.WithDescription("Query completed training sessions, most recent first. Each session includes per-exercise set results and computed volume, set/rep counts, and duration."),
	mcp.WithString("workout_id", mcp.Description("Filter by workout id")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of sessions to return. Defaults to 20.")),
)

var toolGetSessionSummary = mcp.NewTool("get_session_summary",
	mcp.WithDescription("Summarize one session: total volume, sets, reps, duration, and volume change versus the previous session of the same workout."),
	mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
)

var toolGetStreak = mcp.NewTool("get_streak",
	mcp.WithDescription("Current training streak: the number of consecutive calendar days with at least one session, ending today or yesterday."),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("Personal records per exercise: the heaviest completed working set ever recorded, with the session and date it happened."),
)

var toolDetectPlateau = mcp.NewTool("detect_plateau",
	mcp.WithDescription("Check whether an exercise has plateaued: identical average working-set weight and reps across the most recent N sessions of a workout."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout id")),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise id within the workout")),
	mcp.WithNumber("n", mcp.Description("Number of consecutive sessions required. Defaults to 3.")),
)

var toolGetDailyLogs = mcp.NewTool("get_daily_logs",
	mcp.WithDescription("Daily body weight and calorie log entries, optionally restricted to a date range."),
	mcp.WithString("start", mcp.Description("Start date (YYYY-MM-DD), inclusive")),
	mcp.WithString("end", mcp.Description("End date (YYYY-MM-DD), inclusive")),
)

var toolGetDataStats = mcp.NewTool("get_data_stats",
	mcp.WithDescription("Aggregate counts of stored workouts, sessions, and daily logs, plus the session date range."),
)

// --- Tool handlers ---

func (h *handlers) listWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workouts, err := h.ds.LoadWorkouts(ctx)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// sessionView augments a stored session with its computed metrics.
type sessionView struct {
	models.TrainingSession
	TotalVolume float64 `json:"totalVolume"`
	TotalSets   int     `json:"totalSets"`
	TotalReps   int     `json:"totalReps"`
	Duration    int     `json:"duration"`
}

func (h *handlers) getSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := h.ds.LoadSessions(ctx)
	if err != nil {
		h.log.Error("mcp get_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	if id := req.GetString("workout_id", ""); id != "" {
		filtered := sessions[:0]
		for _, sess := range sessions {
			if sess.WorkoutID == models.WorkoutID(id) {
				filtered = append(filtered, sess)
			}
		}
		sessions = filtered
	}

	history.SortByDateDesc(sessions)

	limit := req.GetInt("limit", 20)
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}

	views := make([]sessionView, 0, len(sessions))
	for _, sess := range sessions {
		views = append(views, sessionView{
			TrainingSession: sess,
			TotalVolume:     analytics.TotalVolume(sess),
			TotalSets:       analytics.TotalSets(sess),
			TotalReps:       analytics.TotalReps(sess),
			Duration:        analytics.Duration(sess),
		})
	}

	result, err := mcp.NewToolResultJSON(views)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSessionSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id parameter is required"), nil
	}

	sessions, err := h.ds.LoadSessions(ctx)
	if err != nil {
		h.log.Error("mcp get_session_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	var target *models.TrainingSession
	for i := range sessions {
		if sessions[i].ID == models.SessionID(id) {
			target = &sessions[i]
			break
		}
	}
	if target == nil {
		return mcp.NewToolResultError("session not found: " + id), nil
	}

	previous := history.MostRecentSession(sessions, target.WorkoutID, target.ID)
	result, err := mcp.NewToolResultJSON(analytics.Summarize(*target, previous))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getStreak(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := h.ds.LoadSessions(ctx)
	if err != nil {
		h.log.Error("mcp get_streak", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(map[string]int{
		"streak": analytics.Streak(sessions, time.Now()),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := h.ds.LoadSessions(ctx)
	if err != nil {
		h.log.Error("mcp get_personal_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(analytics.PersonalRecords(sessions))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) detectPlateau(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workoutID, err := req.RequireString("workout_id")
	if err != nil {
		return mcp.NewToolResultError("workout_id parameter is required"), nil
	}
	exerciseID, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	n := req.GetInt("n", 3)
	if n < 2 {
		return mcp.NewToolResultError("n must be >= 2"), nil
	}

	sessions, err := h.ds.LoadSessions(ctx)
	if err != nil {
		h.log.Error("mcp detect_plateau", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	plateau := analytics.DetectPlateau(sessions, models.WorkoutID(workoutID), models.ExerciseID(exerciseID), n)
	if plateau == nil {
		plateau = &analytics.PlateauResult{}
	}
	result, err := mcp.NewToolResultJSON(plateau)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getDailyLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logs, err := h.ds.LoadDailyLogs(ctx)
	if err != nil {
		h.log.Error("mcp get_daily_logs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	// Dates are YYYY-MM-DD, so range bounds compare lexicographically.
	start := req.GetString("start", "")
	end := req.GetString("end", "")
	if start != "" || end != "" {
		filtered := logs[:0]
		for _, log := range logs {
			if start != "" && log.Date < start {
				continue
			}
			if end != "" && log.Date > end {
				continue
			}
			filtered = append(filtered, log)
		}
		logs = filtered
	}

	result, err := mcp.NewToolResultJSON(logs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getDataStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.ds.GetDataStats(ctx)
	if err != nil {
		h.log.Error("mcp get_data_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
