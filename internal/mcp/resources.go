package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// deviceOverview is one line of the devices resource.
type deviceOverview struct {
	DeviceID       string `json:"device_id"`
	StreakCount    int    `json:"streak_count"`
	CompletedToday bool   `json:"completed_today"`
	ActivePlanName string `json:"active_plan_name,omitempty"`
}

func (h *handlers) devicesOverview(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ids, err := h.ds.DeviceIDs(ctx)
	if err != nil {
		return nil, err
	}

	overview := make([]deviceOverview, 0, len(ids))
	for _, id := range ids {
		s, err := h.ds.Session(ctx, id)
		if err != nil {
			h.log.Warn("devices resource: session query failed", "device", id, "error", err)
			continue
		}
		overview = append(overview, deviceOverview{
			DeviceID:       id,
			StreakCount:    s.StreakCount,
			CompletedToday: s.CompletedToday,
			ActivePlanName: s.ActivePlanName,
		})
	}

	data, err := json.Marshal(overview)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
