package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

var deviceArg = mcp.WithString("device_id", mcp.Required(),
	mcp.Description("Device identifier (letters, digits, '-' and '_'). Use list_devices to find one."))

// --- Tool definitions ---

var toolListDevices = mcp.NewTool("list_devices",
	mcp.WithDescription("List every device that has stored workout data."),
)

var toolGetSession = mcp.NewTool("get_session",
	mcp.WithDescription("Current streak and today's workout progress for a device: whether today is scheduled, attempted or completed, minutes trained and live elapsed seconds."),
	deviceArg,
)

var toolGetTodayWorkout = mcp.NewTool("get_today_workout",
	mcp.WithDescription("Today's workout from the device's active plan, with exercises, sets, reps and rest times. Empty on rest days."),
	deviceArg,
)

var toolGetPlan = mcp.NewTool("get_plan",
	mcp.WithDescription("The device's active workout plan and its position in the weekly rotation."),
	deviceArg,
)

var toolListSavedWorkouts = mcp.NewTool("list_saved_workouts",
	mcp.WithDescription("The three saved-workout slots of a device and which of them are free."),
	deviceArg,
)

// --- Tool handlers ---

func (h *handlers) listDevices(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := h.ds.DeviceIDs(ctx)
	if err != nil {
		h.log.Error("mcp list_devices", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(map[string]any{"devices": ids})
}

func (h *handlers) getSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("device_id")
	if err != nil {
		return mcp.NewToolResultError("device_id parameter is required"), nil
	}
	summary, err := h.ds.Session(ctx, id)
	if err != nil {
		h.log.Error("mcp get_session", "device", id, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(summary)
}

func (h *handlers) getTodayWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("device_id")
	if err != nil {
		return mcp.NewToolResultError("device_id parameter is required"), nil
	}
	today, err := h.ds.TodayWorkout(ctx, id)
	if err != nil {
		h.log.Error("mcp get_today_workout", "device", id, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(today)
}

func (h *handlers) getPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("device_id")
	if err != nil {
		return mcp.NewToolResultError("device_id parameter is required"), nil
	}
	plan, err := h.ds.Plan(ctx, id)
	if err != nil {
		h.log.Error("mcp get_plan", "device", id, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(plan)
}

func (h *handlers) listSavedWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("device_id")
	if err != nil {
		return mcp.NewToolResultError("device_id parameter is required"), nil
	}
	slots, err := h.ds.SavedWorkouts(ctx, id)
	if err != nil {
		h.log.Error("mcp list_saved_workouts", "device", id, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(slots)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
