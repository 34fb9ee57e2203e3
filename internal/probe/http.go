package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/hiddengems/internal/adapters/mapview"
	"github.com/okian/hiddengems/internal/domain/collate"
	"github.com/okian/hiddengems/internal/domain/filter"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// HTTPClient wraps http.Client with the probe's base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a new HTTP client with timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// get fetches path and returns the body of a 200 response.
func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	return body, nil
}

// Health checks that /healthz answers.
func (c *HTTPClient) Health(ctx context.Context) error {
	_, err := c.get(ctx, "/healthz")
	return err
}

// Options fetches the option lists.
func (c *HTTPClient) Options(ctx context.Context) (collate.OptionSet, error) {
	var opts collate.OptionSet
	body, err := c.get(ctx, "/api/options")
	if err != nil {
		return opts, err
	}
	if err := json.Unmarshal(body, &opts); err != nil {
		return opts, fmt.Errorf("decode options: %w", err)
	}
	return opts, nil
}

// Markers fetches the view pass for state.
func (c *HTTPClient) Markers(ctx context.Context, state filter.State) (mapview.Snapshot, error) {
	var snap mapview.Snapshot
	body, err := c.get(ctx, "/api/markers"+query(state))
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(body, &snap); err != nil {
		return snap, fmt.Errorf("decode markers: %w", err)
	}
	return snap, nil
}

// Features fetches the GeoJSON subset for state.
func (c *HTTPClient) Features(ctx context.Context, state filter.State) ([]Feature, error) {
	body, err := c.get(ctx, "/api/markers.geojson"+query(state))
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	out := make([]Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			return nil, fmt.Errorf("feature %v is not a point", f.ID)
		}
		id, _ := f.ID.(string)
		out = append(out, Feature{ID: id, Lon: p.Lon(), Lat: p.Lat(), Properties: map[string]any(f.Properties)})
	}
	return out, nil
}

func query(state filter.State) string {
	v := state.Values()
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}
