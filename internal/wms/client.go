package wms

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jiangrong2001/uom-proxy/internal/metrics"
	"github.com/jiangrong2001/uom-proxy/internal/region"
	"github.com/jiangrong2001/uom-proxy/internal/tile"
)

// DefaultTimeout bounds a single upstream GetMap request.
const DefaultTimeout = 10 * time.Second

// Config holds upstream connection settings.
type Config struct {
	// BaseURL is the upstream WMS endpoint, without GetMap parameters.
	BaseURL string
	// Token is appended to every request as the "token" query parameter.
	// Empty means the upstream needs no authentication.
	Token string
	// Timeout bounds each fetch. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Client fetches rendered tiles from the upstream WMS server.
type Client struct {
	base   *url.URL
	token  string
	http   *http.Client
	logger *slog.Logger
}

// NewClient validates the upstream configuration and builds a client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("wms: base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("wms: parse base URL: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		base:   base,
		token:  cfg.Token,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

// GetMap requests a rendered 256x256 map image covering the bounding box,
// restricted to the given region layers, and returns the raw image bytes.
// The caller's context cancels an in-flight fetch.
func (c *Client) GetMap(ctx context.Context, codes []region.Code, bbox tile.BBox) ([]byte, error) {
	params := BuildParams(codes, bbox)
	if c.token != "" {
		params.Set("token", c.token)
	}

	// Preserve any query parameters baked into the base URL.
	u := *c.base
	q := u.Query()
	for key, vals := range params {
		q[key] = vals
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}

	metrics.UpstreamRequestsTotal.Inc()
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamFailuresTotal.Inc()
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()
	metrics.UpstreamDurationMs.Observe(float64(time.Since(start).Milliseconds()))

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamFailuresTotal.Inc()
		return nil, fmt.Errorf("upstream returned %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamFailuresTotal.Inc()
		return nil, fmt.Errorf("read upstream response: %w", err)
	}

	c.logger.Debug("fetched upstream tile", "layers", len(codes), "bytes", len(data), "duration", time.Since(start))
	return data, nil
}
