package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/your-org/aura-wellness-engine/internal/resilience"
)

// SearchAPI is the contract the resolver needs from a video search backend
type SearchAPI interface {
	// Search returns the top-ranked video id for a query
	Search(ctx context.Context, query string) (string, error)
	// Status reports the current availability of a video id
	Status(ctx context.Context, id string) (VideoStatus, error)
}

// VideoStatus is the availability snapshot used for embeddability
// verification
type VideoStatus struct {
	Embeddable    bool   `json:"embeddable"`
	PrivacyStatus string `json:"privacy_status"`
}

// Playable reports whether the video can actually be embedded in-app
func (s VideoStatus) Playable() bool {
	return s.Embeddable && s.PrivacyStatus == "public"
}

// YouTubeClient wraps the YouTube Data API v3 search and videos endpoints.
// Searches are constrained to embeddable, moderate-length, safe results so
// the top hit is usually usable as-is.
type YouTubeClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// DefaultYouTubeBaseURL is the production API endpoint
const DefaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"

// NewYouTubeClient creates a search client with default settings
func NewYouTubeClient(baseURL, apiKey string, logger *zap.Logger) *YouTubeClient {
	if baseURL == "" {
		baseURL = DefaultYouTubeBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YouTubeClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: resilience.DefaultMediaTimeout},
		logger:     logger,
	}
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		Status struct {
			Embeddable    bool   `json:"embeddable"`
			PrivacyStatus string `json:"privacyStatus"`
		} `json:"status"`
	} `json:"items"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// Search returns the single top-ranked candidate for the query, constrained
// to embeddable, medium-duration, safe-search-strict video results
func (c *YouTubeClient) Search(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("videoEmbeddable", "true")
	params.Set("videoDuration", "medium")
	params.Set("safeSearch", "strict")
	params.Set("relevanceLanguage", "en")
	params.Set("maxResults", "1")
	params.Set("key", c.apiKey)

	var resp searchResponse
	if err := c.get(ctx, "/search", params, &resp); err != nil {
		return "", err
	}
	if len(resp.Items) == 0 || resp.Items[0].ID.VideoID == "" {
		return "", resilience.NewError(resilience.KindMediaNotFound,
			fmt.Sprintf("no embeddable result for %q", query), nil)
	}
	return resp.Items[0].ID.VideoID, nil
}

// Status re-checks a previously found id. A found video can still be
// region-locked or pulled between search indexing and now, so acceptance
// requires this second call.
func (c *YouTubeClient) Status(ctx context.Context, id string) (VideoStatus, error) {
	params := url.Values{}
	params.Set("part", "status")
	params.Set("id", id)
	params.Set("key", c.apiKey)

	var resp videosResponse
	if err := c.get(ctx, "/videos", params, &resp); err != nil {
		return VideoStatus{}, err
	}
	if len(resp.Items) == 0 {
		return VideoStatus{}, resilience.NewError(resilience.KindMediaNotFound,
			fmt.Sprintf("video %s no longer exists", id), nil)
	}
	return VideoStatus{
		Embeddable:    resp.Items[0].Status.Embeddable,
		PrivacyStatus: resp.Items[0].Status.PrivacyStatus,
	}, nil
}

func (c *YouTubeClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return resilience.NewError(resilience.KindMediaNotFound, "search call failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("Media API call completed",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		return c.classify(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// classify maps API error responses onto the pipeline taxonomy. The
// distinction matters only for logging; every class degrades to an
// unresolved candidate.
func (c *YouTubeClient) classify(statusCode int, body []byte) error {
	var apiErr apiErrorResponse
	_ = json.Unmarshal(body, &apiErr)

	reason := ""
	if len(apiErr.Error.Errors) > 0 {
		reason = apiErr.Error.Errors[0].Reason
	}

	switch {
	case reason == "quotaExceeded" || reason == "dailyLimitExceeded" || statusCode == http.StatusTooManyRequests:
		return resilience.NewError(resilience.KindMediaQuota,
			"search quota exhausted", fmt.Errorf("%s (status %d)", apiErr.Error.Message, statusCode))
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden || reason == "keyInvalid":
		return resilience.NewError(resilience.KindMediaAuth,
			"search credentials rejected", fmt.Errorf("%s (status %d)", apiErr.Error.Message, statusCode))
	default:
		return resilience.NewError(resilience.KindMediaNotFound,
			fmt.Sprintf("search call failed (status %d)", statusCode),
			fmt.Errorf("%s", apiErr.Error.Message))
	}
}
