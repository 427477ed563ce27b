// Package analytics fetches the analytics snapshot the analyst stage consumes.
// Snapshots are cached per calendar day: the pipeline may run several times a
// day (manual rewrites, retries) without re-hitting the analytics proxy.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// PageStat is one page's aggregated metrics for the reporting window.
type PageStat struct {
	Path           string  `json:"path"`
	Title          string  `json:"title"`
	Views          int     `json:"views"`
	Users          int     `json:"users"`
	EngagementRate float64 `json:"engagement_rate"`
}

// Snapshot is the analytics summary for one reporting window.
type Snapshot struct {
	Period    string     `json:"period"` // "YYYY-MM-DD" for daily, "YYYY-MM" for monthly
	Pages     []PageStat `json:"pages"`
	FetchedAt time.Time  `json:"fetched_at"`
}

// Serialize renders the snapshot as indented JSON for prompt inputs.
func (s *Snapshot) Serialize() string {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Fetcher provides read-only access to analytics summaries.
type Fetcher interface {
	// FetchDaily returns yesterday's snapshot, cached per calendar day.
	FetchDaily(ctx context.Context) (*Snapshot, error)
	// FetchMonthly returns the aggregated snapshot for a month key ("YYYY-MM").
	FetchMonthly(ctx context.Context, month string) (*Snapshot, error)
}

// cacheTTL keeps day-cache entries beyond their useful life so a run started
// just before midnight still reads a consistent snapshot.
const cacheTTL = 36 * time.Hour

// Client fetches summaries from the analytics proxy over HTTP, with a
// per-calendar-day cache in Redis when configured, or in process otherwise.
type Client struct {
	baseURL    string
	httpClient *http.Client
	redis      *redis.Client

	mu       sync.Mutex
	memCache map[string]*Snapshot
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds an analytics client. redisURL may be empty, in which case
// the day cache lives in process memory only.
func NewClient(baseURL, redisURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("analytics base URL is required")
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		memCache:   make(map[string]*Snapshot),
	}

	if redisURL != "" {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			opt = &redis.Options{Addr: redisURL}
		}
		c.redis = redis.NewClient(opt)
	}

	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Close releases the Redis connection if one exists.
func (c *Client) Close() error {
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}

// FetchDaily returns yesterday's snapshot, consulting the day cache first.
func (c *Client) FetchDaily(ctx context.Context) (*Snapshot, error) {
	day := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	cacheKey := "content-agent:analytics:daily:" + day

	if snap := c.cached(ctx, cacheKey); snap != nil {
		return snap, nil
	}

	snap, err := c.fetch(ctx, "daily", day)
	if err != nil {
		return nil, err
	}
	c.store(ctx, cacheKey, snap)
	return snap, nil
}

// FetchMonthly returns the aggregated snapshot for a month key. Monthly
// summaries are cached under the month key with the same TTL.
func (c *Client) FetchMonthly(ctx context.Context, month string) (*Snapshot, error) {
	cacheKey := "content-agent:analytics:monthly:" + month

	if snap := c.cached(ctx, cacheKey); snap != nil {
		return snap, nil
	}

	snap, err := c.fetch(ctx, "monthly", month)
	if err != nil {
		return nil, err
	}
	c.store(ctx, cacheKey, snap)
	return snap, nil
}

func (c *Client) fetch(ctx context.Context, period, key string) (*Snapshot, error) {
	endpoint := fmt.Sprintf("%s/summary?%s", c.baseURL, url.Values{
		"period": {period},
		"date":   {key},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build analytics request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analytics request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analytics request returned %s", resp.Status)
	}

	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode analytics response: %w", err)
	}
	snap.Period = key
	snap.FetchedAt = time.Now()
	return &snap, nil
}

// cached returns the snapshot for key from Redis or process memory, nil on miss.
func (c *Client) cached(ctx context.Context, key string) *Snapshot {
	if c.redis != nil {
		data, err := c.redis.Get(ctx, key).Bytes()
		if err == nil {
			var snap Snapshot
			if json.Unmarshal(data, &snap) == nil {
				return &snap
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memCache[key]
}

// store writes the snapshot to whichever cache is available. Cache failures
// are ignored: the snapshot is already in hand.
func (c *Client) store(ctx context.Context, key string, snap *Snapshot) {
	if c.redis != nil {
		if data, err := json.Marshal(snap); err == nil {
			_ = c.redis.Set(ctx, key, data, cacheTTL).Err()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.memCache[key] = snap
}
