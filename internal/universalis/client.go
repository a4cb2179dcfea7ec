// Package universalis speaks to the aggregated market statistics API and
// turns its responses into typed engine.PriceStats at the boundary, so the
// core never handles raw untyped JSON.
package universalis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"xiv-profit/internal/engine"
)

const (
	// DefaultBaseURL is the public Universalis endpoint.
	DefaultBaseURL = "https://universalis.app"

	// statsTTL bounds how long an aggregated stats response is reused.
	statsTTL = 5 * time.Minute

	// maxConcurrentFetches caps in-flight HTTP requests per client.
	maxConcurrentFetches = 8
)

// Client fetches aggregated price statistics with a TTL cache in front.
// A singleflight group coalesces concurrent fetches for the same scope+item.
type Client struct {
	http    *http.Client
	baseURL string
	stats   *gocache.Cache
	group   singleflight.Group
	sem     chan struct{}
}

// NewClient creates a client for the given base URL ("" = public endpoint).
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    &http.Client{Timeout: 20 * time.Second},
		baseURL: baseURL,
		stats:   gocache.New(statsTTL, 10*time.Minute),
		sem:     make(chan struct{}, maxConcurrentFetches),
	}
}

// aggregatedStats mirrors the wire shape of one aggregated stats record.
// Optional fields stay pointers: absence means "no market data", which must
// survive decoding instead of collapsing to zero.
type aggregatedStats struct {
	AveragePrice   *float64 `json:"averagePrice"`
	MedianPrice    *float64 `json:"medianPrice"`
	MinListing     *float64 `json:"minListingPrice"`
	SaleVelocity   *float64 `json:"saleVelocity"`
	LastUploadTime *int64   `json:"lastUploadTime"` // unix milliseconds
}

func (a aggregatedStats) toPriceStats() engine.PriceStats {
	stats := engine.PriceStats{
		Average:      a.AveragePrice,
		Median:       a.MedianPrice,
		MinListing:   a.MinListing,
		SaleVelocity: a.SaleVelocity,
	}
	if a.LastUploadTime != nil {
		t := time.UnixMilli(*a.LastUploadTime).UTC()
		stats.LastUpload = &t
	}
	return stats
}

// PriceStats returns aggregated statistics for an item within a scope (a
// world, data center, or region name). Results are cached for statsTTL.
func (c *Client) PriceStats(ctx context.Context, scope string, itemID int32) (engine.PriceStats, error) {
	key := fmt.Sprintf("%s:%d", scope, itemID)

	if cached, ok := c.stats.Get(key); ok {
		return cached.(engine.PriceStats), nil
	}

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		stats, err := c.fetchStats(ctx, scope, itemID)
		if err != nil {
			return nil, err
		}
		c.stats.SetDefault(key, stats)
		return stats, nil
	})
	if err != nil {
		return engine.PriceStats{}, err
	}
	return result.(engine.PriceStats), nil
}

func (c *Client) fetchStats(ctx context.Context, scope string, itemID int32) (engine.PriceStats, error) {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	url := fmt.Sprintf("%s/api/v2/aggregated/%s/%d", c.baseURL, scope, itemID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return engine.PriceStats{}, err
	}
	req.Header.Set("User-Agent", "xiv-profit/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return engine.PriceStats{}, fmt.Errorf("fetch stats %s/%d: %w", scope, itemID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Unknown item or scope: no market data, not an error.
		return engine.PriceStats{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return engine.PriceStats{}, fmt.Errorf("fetch stats %s/%d: status %d", scope, itemID, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return engine.PriceStats{}, fmt.Errorf("read stats %s/%d: %w", scope, itemID, err)
	}

	var decoded aggregatedStats
	if err := json.Unmarshal(body, &decoded); err != nil {
		return engine.PriceStats{}, fmt.Errorf("decode stats %s/%d: %w", scope, itemID, err)
	}
	return decoded.toPriceStats(), nil
}
