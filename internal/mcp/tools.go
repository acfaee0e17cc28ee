package mcp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 30 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -30)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolGetNextSplit = mcp.NewTool("get_next_split",
	mcp.WithDescription("Recommend the split day to train next. Rotates through the mesocycle's split days in order and cycles back to the first once the current week is fully trained."),
	mcp.WithString("mesocycle_id", mcp.Description("Mesocycle UUID. Defaults to the active mesocycle.")),
)

var toolGetWeekProgress = mcp.NewTool("get_week_progress",
	mcp.WithDescription("How many split days of the mesocycle's current week were trained, and whether the week is complete."),
	mcp.WithString("mesocycle_id", mcp.Required(), mcp.Description("Mesocycle UUID")),
)

var toolGetCurrentSession = mcp.NewTool("get_current_session",
	mcp.WithDescription("The workout in progress: state (active/inactive), exercises, sets with target and actual reps, weight and RIR."),
)

var toolGetPreviousPerformance = mcp.NewTool("get_previous_performance",
	mcp.WithDescription("Sets logged for an exercise in the most recent completed workout that contained it."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise UUID")),
)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("Workout history with exercises and sets, newest first."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

// --- Tool handlers ---

func (h *handlers) getNextSplit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var id uuid.UUID
	if s := req.GetString("mesocycle_id", ""); s != "" {
		parsed, err := uuid.Parse(s)
		if err != nil {
			return mcp.NewToolResultError("invalid mesocycle_id: " + err.Error()), nil
		}
		id = parsed
	}

	next, err := h.ds.NextSplit(ctx, id)
	if isNotFound(err) {
		return mcp.NewToolResultError("mesocycle not found"), nil
	}
	if err != nil {
		h.log.Error("mcp get_next_split", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if next.SplitDay == nil {
		return mcp.NewToolResultText("No split day to recommend: there is no active mesocycle or it has no split days."), nil
	}

	return jsonResult(next)
}

func (h *handlers) getWeekProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("mesocycle_id")
	if err != nil {
		return mcp.NewToolResultError("mesocycle_id parameter is required"), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError("invalid mesocycle_id: " + err.Error()), nil
	}

	progress, err := h.ds.WeekProgress(ctx, id)
	if isNotFound(err) {
		return mcp.NewToolResultError("mesocycle not found"), nil
	}
	if err != nil {
		h.log.Error("mcp get_week_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(progress)
}

func (h *handlers) getCurrentSession(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := h.ds.CurrentSession(ctx)
	if err != nil {
		h.log.Error("mcp get_current_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(snap)
}

func (h *handlers) getPreviousPerformance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError("invalid exercise_id: " + err.Error()), nil
	}

	prev, err := h.ds.PreviousPerformance(ctx, id)
	if err != nil {
		h.log.Error("mcp get_previous_performance", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if prev == nil {
		return mcp.NewToolResultText("This exercise has not been trained in a completed workout yet."), nil
	}
	return jsonResult(prev)
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	workouts, err := h.ds.QueryWorkouts(ctx, start, end)
	if err != nil {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(workouts)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
