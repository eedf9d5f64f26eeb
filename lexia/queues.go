package lexia

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Analytics periods accepted by GetQueueAnalytics
const (
	Period24Hours = "24h"
	Period7Days   = "7d"
	Period30Days  = "30d"
)

// AddQueueItem adds an item to a queue, addressed by name or ID.
func (c *Client) AddQueueItem(ctx context.Context, queue string, data Object, priority Priority) (Object, error) {
	if strings.TrimSpace(queue) == "" {
		return nil, inputError("queue is required", map[string]string{"queue": "is required"})
	}
	if data == nil {
		data = Object{}
	}

	return c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   "/public/api/queues/add-item",
		Body: map[string]any{
			"queue":    queue,
			"data":     data,
			"priority": priority.String(),
		},
	})
}

// GetNextQueueItem fetches the next item of a queue
func (c *Client) GetNextQueueItem(ctx context.Context, params NextItemParams) (Object, error) {
	if params.Status == "" {
		params.Status = QueueStatusNew
	}
	if err := validateParams(params); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("queue", params.Queue)
	query.Set("status", params.Status)
	query.Set("priority_order", strconv.FormatBool(params.PriorityOrder))
	query.Set("mark_as_processing", strconv.FormatBool(params.MarkAsProcessing))

	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   "/public/api/queues/next-item",
		Query:  query,
	})
}

// UpdateQueueItem updates the data, status or stage of a queue item
func (c *Client) UpdateQueueItem(ctx context.Context, params UpdateItemParams) (Object, error) {
	if params.MergeMode == "" {
		params.MergeMode = MergeModeUpdate
	}
	if err := validateParams(params); err != nil {
		return nil, err
	}

	body := map[string]any{
		"item_id":    params.ItemID,
		"merge_mode": params.MergeMode,
	}
	if len(params.Data) > 0 {
		body["data"] = params.Data
	}
	if params.Status != "" {
		body["status"] = params.Status
	}
	if params.Etapa != "" {
		body["etapa"] = params.Etapa
	}

	return c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   "/public/api/queues/items/update-data",
		Body:   body,
	})
}

// FinishQueueItem marks a queue item as successfully completed. The service
// records the completion time and merges Output into the item data.
func (c *Client) FinishQueueItem(ctx context.Context, itemID string, params FinishItemParams) (Object, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, inputError("item_id is required and must not be blank", map[string]string{"item_id": "must not be blank"})
	}
	if err := validateParams(params); err != nil {
		return nil, err
	}

	progress := 100
	if params.Progress != nil {
		progress = *params.Progress
	}

	body := map[string]any{"progress": progress}
	if len(params.Output) > 0 {
		body["output"] = params.Output
	}
	if params.Etapa != "" {
		body["etapa"] = params.Etapa
	}

	return c.Do(ctx, &Request{
		Method: http.MethodPatch,
		Path:   "/public/api/queues/items/" + url.PathEscape(itemID) + "/finish",
		Body:   body,
	})
}

// BulkDeleteQueueItems deletes several queue items by ID
func (c *Client) BulkDeleteQueueItems(ctx context.Context, itemIDs []string) (Object, error) {
	if len(itemIDs) == 0 {
		return nil, inputError("item_ids must not be empty", map[string]string{"item_ids": "is required"})
	}
	for _, id := range itemIDs {
		if strings.TrimSpace(id) == "" {
			return nil, inputError("item_ids must not contain blank ids", map[string]string{"item_ids": "must not contain blank ids"})
		}
	}

	return c.Do(ctx, &Request{
		Method: http.MethodDelete,
		Path:   "/public/api/queues/items/bulk",
		Body:   map[string]any{"item_ids": itemIDs},
	})
}

// GetQueueAnalytics returns queue analytics for a period ("24h", "7d" or "30d").
// An empty period means "24h".
func (c *Client) GetQueueAnalytics(ctx context.Context, period string) (Object, error) {
	switch period {
	case "":
		period = Period24Hours
	case Period24Hours, Period7Days, Period30Days:
	default:
		return nil, inputError("period must be one of [24h 7d 30d]", map[string]string{"period": "must be one of [24h 7d 30d]"})
	}

	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   "/public/api/queues/analytics",
		Query:  url.Values{"period": {period}},
	})
}
