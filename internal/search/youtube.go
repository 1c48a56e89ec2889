package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hourglass-dev/timetube/internal/infrastructure/metrics"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// YouTubeConfig holds configuration for the YouTube Data API client.
type YouTubeConfig struct {
	// APIKey is the primary credential.
	APIKey string
	// SecondaryAPIKey, when set, is used for a single bounded failover
	// attempt after the primary key runs out of quota.
	SecondaryAPIKey string
	// BaseURL overrides the API endpoint, used by tests.
	BaseURL string
	// MaxResults is the page size requested from the search endpoint.
	MaxResults int
	// Timeout bounds each HTTP request.
	Timeout time.Duration
}

// DefaultYouTubeConfig returns a YouTubeConfig with sensible defaults.
func DefaultYouTubeConfig(apiKey, secondaryAPIKey string) YouTubeConfig {
	return YouTubeConfig{
		APIKey:          apiKey,
		SecondaryAPIKey: secondaryAPIKey,
		BaseURL:         defaultBaseURL,
		MaxResults:      50,
		Timeout:         10 * time.Second,
	}
}

// YouTubeClient implements Provider against the YouTube Data API v3.
type YouTubeClient struct {
	cfg   YouTubeConfig
	httpc *http.Client
}

// Compile-time verification that YouTubeClient implements Provider.
var _ Provider = (*YouTubeClient)(nil)

// NewYouTubeClient creates a new YouTube Data API client.
func NewYouTubeClient(cfg YouTubeConfig) *YouTubeClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 50
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &YouTubeClient{
		cfg:   cfg,
		httpc: &http.Client{Timeout: cfg.Timeout},
	}
}

type searchThumbnail struct {
	URL string `json:"url"`
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			Thumbnails struct {
				Default *searchThumbnail `json:"default"`
				Medium  *searchThumbnail `json:"medium"`
				High    *searchThumbnail `json:"high"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID     string `json:"id"`
		Status struct {
			PrivacyStatus string `json:"privacyStatus"`
			Embeddable    bool   `json:"embeddable"`
		} `json:"status"`
	} `json:"items"`
}

// Search runs one query against the search endpoint. It requests embeddable,
// syndicated videos ordered by view count; candidate filtering against the
// target time is the caller's concern.
func (c *YouTubeClient) Search(ctx context.Context, query string) ([]Candidate, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(c.cfg.MaxResults))
	params.Set("order", "viewCount")
	params.Set("type", "video")
	params.Set("videoEmbeddable", "true")
	params.Set("videoSyndicated", "true")
	params.Set("safeSearch", "moderate")

	var resp searchResponse
	if err := c.getWithFailover(ctx, "search", params, &resp); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID == "" {
			continue
		}
		c := Candidate{VideoID: item.ID.VideoID, Title: item.Snippet.Title}
		thumbs := item.Snippet.Thumbnails
		switch {
		case thumbs.Medium != nil:
			c.ThumbnailURL = thumbs.Medium.URL
		case thumbs.High != nil:
			c.ThumbnailURL = thumbs.High.URL
		case thumbs.Default != nil:
			c.ThumbnailURL = thumbs.Default.URL
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// Verify checks the videos endpoint for public, embeddable status.
// An unknown video ID verifies false without error.
func (c *YouTubeClient) Verify(ctx context.Context, videoID string) (bool, error) {
	params := url.Values{}
	params.Set("part", "status")
	params.Set("id", videoID)

	var resp videosResponse
	if err := c.getWithFailover(ctx, "videos", params, &resp); err != nil {
		return false, err
	}

	if len(resp.Items) == 0 {
		return false, nil
	}
	status := resp.Items[0].Status
	return status.PrivacyStatus == "public" && status.Embeddable, nil
}

// getWithFailover performs a GET with the primary credential and retries
// exactly once with the secondary credential on quota exhaustion. This is
// a bounded two-credential failover, not a general retry policy.
func (c *YouTubeClient) getWithFailover(ctx context.Context, endpoint string, params url.Values, v any) error {
	err := c.get(ctx, endpoint, params, c.cfg.APIKey, v)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrQuotaExceeded) && c.cfg.SecondaryAPIKey != "" {
		metrics.ProviderFailoversTotal.Inc()
		return c.get(ctx, endpoint, params, c.cfg.SecondaryAPIKey, v)
	}
	return err
}

func (c *YouTubeClient) get(ctx context.Context, endpoint string, params url.Values, key string, v any) error {
	q := url.Values{}
	for name, vals := range params {
		q[name] = vals
	}
	q.Set("key", key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/"+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(endpoint, metrics.ProviderStatusError).Inc()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		metrics.ProviderRequestsTotal.WithLabelValues(endpoint, metrics.ProviderStatusQuota).Inc()
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, resp.Status)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		metrics.ProviderRequestsTotal.WithLabelValues(endpoint, metrics.ProviderStatusError).Inc()
		return fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(endpoint, metrics.ProviderStatusError).Inc()
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(endpoint, metrics.ProviderStatusOK).Inc()
	return nil
}
