package lexia

import (
	"context"
	"fmt"
	"net/http"
)

// GetGridData returns a page of grid rows. Filters are sent as extra query
// parameters and cannot override page or per_page.
func (c *Client) GetGridData(ctx context.Context, gridID int64, q GridQuery) (Object, error) {
	if err := checkID("grid_id", gridID); err != nil {
		return nil, err
	}
	if err := validateParams(q); err != nil {
		return nil, err
	}

	query := pageQuery(q.Page, q.PerPage)
	for k, v := range q.Filters {
		if k == "page" || k == "per_page" {
			continue
		}
		query.Set(k, v)
	}

	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/api/public/grids/%d/data", gridID),
		Query:  query,
	})
}

// GetGridInfo returns the definition of a grid
func (c *Client) GetGridInfo(ctx context.Context, gridID int64) (Object, error) {
	if err := checkID("grid_id", gridID); err != nil {
		return nil, err
	}
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/api/public/grids/%d/info", gridID),
	})
}
