package accountsdk

import (
	"context"
	"net/http"
)

// GetRoot calls GET / and returns the service banner.
func (c *Client) GetRoot(ctx context.Context) (RootResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, c.BaseURL+"/", nil, nil)
	if err != nil {
		return RootResponse{}, err
	}

	var out RootResponse
	err = decodeJSON(resp, &out, http.StatusOK)
	return out, err
}

// GetLiveness calls GET /livez.
func (c *Client) GetLiveness(ctx context.Context) (HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness calls GET /readyz. A degraded service is returned as an
// *APIError with status 503.
func (c *Client) GetReadiness(ctx context.Context) (HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *Client) health(ctx context.Context, path string) (HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, c.BaseURL+path, nil, nil)
	if err != nil {
		return HealthResponse{}, err
	}

	var out HealthResponse
	err = decodeJSON(resp, &out, http.StatusOK)
	return out, err
}
