package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/claude/flextrack/internal/analytics"
	"github.com/claude/flextrack/internal/history"
	"github.com/mark3labs/mcp-go/mcp"
)

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) workoutLibrary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	workouts, err := h.ds.LoadWorkouts(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, workouts)
}

func (h *handlers) recentSessions(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sessions, err := h.ds.LoadSessions(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().AddDate(0, 0, -14).UTC().Format(time.RFC3339)
	recent := sessions[:0]
	for _, sess := range sessions {
		if sess.Date >= cutoff {
			recent = append(recent, sess)
		}
	}
	history.SortByDateDesc(recent)

	views := make([]sessionView, 0, len(recent))
	for _, sess := range recent {
		views = append(views, sessionView{
			TrainingSession: sess,
			TotalVolume:     analytics.TotalVolume(sess),
			TotalSets:       analytics.TotalSets(sess),
			TotalReps:       analytics.TotalReps(sess),
			Duration:        analytics.Duration(sess),
		})
	}
	return jsonResource(req.Params.URI, views)
}

func (h *handlers) trainingStreak(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sessions, err := h.ds.LoadSessions(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, map[string]int{
		"streak": analytics.Streak(sessions, time.Now()),
	})
}
