package lexia

import (
	"context"
	"net/http"
)

// ListAreas lists the areas available to the API key
func (c *Client) ListAreas(ctx context.Context) (Object, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: "/public/api/areas"})
}

// HealthCheck verifies the API is reachable with the configured key by
// listing areas. On failure the returned Health describes the error, which
// is also returned.
func (c *Client) HealthCheck(ctx context.Context) (Health, error) {
	if _, err := c.ListAreas(ctx); err != nil {
		c.logger.Debug().Err(err).Msg("Lexia health check failed")
		return Health{
			Status:        HealthStatusError,
			APIAccessible: false,
			Error:         err.Error(),
		}, err
	}

	return Health{Status: HealthStatusOK, APIAccessible: true}, nil
}
