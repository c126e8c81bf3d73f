package trackerclient

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jakechorley/editor-points/pkg/core/model"
)

// MaxStatusBatch is the largest id batch the bulk status endpoint accepts
const MaxStatusBatch = 100

type apiStatusEntry struct {
	Status    string       `json:"status"`
	TotalTime apiTotalTime `json:"total_time"`
}

type apiTotalTime struct {
	Since epochMillis `json:"since"`
}

type apiTimeInStatus struct {
	CurrentStatus *apiStatusEntry  `json:"current_status"`
	StatusHistory []apiStatusEntry `json:"status_history"`
}

// StatusHistories returns the status history of each task in a batch of at
// most MaxStatusBatch ids. Tasks the tracker omits are absent from the map.
func (c *Client) StatusHistories(ctx context.Context, taskIDs []string) (map[string][]model.StatusTransition, error) {
	if len(taskIDs) > MaxStatusBatch {
		return nil, fmt.Errorf("status batch of %d ids exceeds limit of %d", len(taskIDs), MaxStatusBatch)
	}
	if len(taskIDs) == 0 {
		return map[string][]model.StatusTransition{}, nil
	}

	query := url.Values{}
	for _, id := range taskIDs {
		query.Add("task_ids", id)
	}

	var resp map[string]apiTimeInStatus
	if err := c.get(ctx, "/task/bulk_time_in_status/task_ids", query, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch status history: %w", err)
	}

	histories := make(map[string][]model.StatusTransition, len(resp))
	for id, entry := range resp {
		if entry.StatusHistory == nil && entry.CurrentStatus == nil {
			continue
		}
		history := make([]model.StatusTransition, 0, len(entry.StatusHistory)+1)
		for _, s := range entry.StatusHistory {
			history = append(history, model.StatusTransition{Status: s.Status, Since: s.TotalTime.Since.t})
		}
		if entry.CurrentStatus != nil && len(entry.StatusHistory) == 0 {
			history = append(history, model.StatusTransition{Status: entry.CurrentStatus.Status, Since: entry.CurrentStatus.TotalTime.Since.t})
		}
		histories[id] = history
	}

	return histories, nil
}
