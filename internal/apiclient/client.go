// Package apiclient wraps the platform's public game lookup endpoints.
//
// Both lookups are best effort and never surface errors to callers: a
// transport failure, a non-success status, or an unparsable body all come
// back as nil, and the caller falls through to page-derived data. Retry
// policy, if any, belongs to the HTTP client this package is handed.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/Baccarat456/experience-harvester/internal/record"
)

// Config names the two endpoints consumed. Neither response schema is
// guaranteed stable by the origin.
type Config struct {
	// PlaceDetailsURL is the multiget place-details endpoint; it accepts a
	// comma-joined placeIds parameter.
	PlaceDetailsURL string
	// GamesURL is the games-by-universe endpoint; it answers with a
	// {data: [...]} envelope.
	GamesURL string
}

// Client issues the lookups. Timeouts are whatever the injected http.Client
// carries; the Client adds no budget of its own.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// New builds a Client around the given HTTP client.
func New(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger}
}

// ByPlaceID looks an experience up by its place id. An ordered-sequence
// response yields its first element, an id-keyed mapping yields the value at
// that key, any other object comes back as-is. Nil means the lookup failed
// or returned nothing usable.
func (c *Client) ByPlaceID(ctx context.Context, placeID string) record.Fragment {
	payload := c.getJSON(ctx, fmt.Sprintf("%s?placeIds=%s", c.cfg.PlaceDetailsURL, url.QueryEscape(placeID)))
	switch v := payload.(type) {
	case []any:
		if len(v) == 0 {
			return nil
		}
		return asFragment(v[0])
	case map[string]any:
		if entry, ok := v[placeID]; ok {
			return asFragment(entry)
		}
		return record.Fragment(v)
	default:
		return nil
	}
}

// ByUniverseID looks an experience up by its universe id. Callers use this
// only as a secondary attempt when the place-id lookup yielded nothing and a
// universe id was discovered inside embedded page data.
func (c *Client) ByUniverseID(ctx context.Context, universeID string) record.Fragment {
	payload := c.getJSON(ctx, fmt.Sprintf("%s?universeIds=%s", c.cfg.GamesURL, url.QueryEscape(universeID)))
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	if data, ok := obj["data"].([]any); ok && len(data) > 0 {
		return asFragment(data[0])
	}
	return record.Fragment(obj)
}

func (c *Client) getJSON(ctx context.Context, endpoint string) any {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Debug("build api request", zap.String("endpoint", endpoint), zap.Error(err))
		return nil
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("api request rejected",
			zap.String("endpoint", endpoint),
			zap.Int("status_code", resp.StatusCode),
		)
		return nil
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Debug("decode api response", zap.String("endpoint", endpoint), zap.Error(err))
		return nil
	}
	return payload
}

func asFragment(v any) record.Fragment {
	if m, ok := v.(map[string]any); ok {
		return record.Fragment(m)
	}
	return nil
}
