package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// Client is the search collaborator consumed by the pipeline stages.
type Client interface {
	SearchRecent(ctx context.Context, query string, opts SearchOpts) ([]Post, error)
	SearchConversation(ctx context.Context, conversationID string, limit int) ([]Reply, error)
}

// HTTPClient implements Client against the X API v2.
type HTTPClient struct {
	bearerToken string
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
}

// HTTPConfig holds configuration for HTTPClient.
type HTTPConfig struct {
	BearerToken       string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
}

// DefaultHTTPConfig returns sensible defaults.
func DefaultHTTPConfig(bearerToken string) HTTPConfig {
	return HTTPConfig{
		BearerToken:       bearerToken,
		BaseURL:           "https://api.twitter.com/2",
		Timeout:           30 * time.Second,
		RequestsPerMinute: 60,
	}
}

// NewHTTPClient creates a search client with default config.
func NewHTTPClient(bearerToken string) *HTTPClient {
	return NewHTTPClientWithConfig(DefaultHTTPConfig(bearerToken))
}

// NewHTTPClientWithConfig creates a search client with custom config.
func NewHTTPClientWithConfig(config HTTPConfig) *HTTPClient {
	rpm := config.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		bearerToken: config.BearerToken,
		baseURL:     config.BaseURL,
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
	}
}

// SearchRecent queries the recent-search endpoint and returns normalized
// posts with author and media metadata resolved from the includes block.
func (c *HTTPClient) SearchRecent(ctx context.Context, query string, opts SearchOpts) ([]Post, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 || maxResults > 100 {
		maxResults = 100
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("tweet.fields", "public_metrics,created_at,author_id,conversation_id,entities")
	params.Set("user.fields", "verified,public_metrics,username,profile_image_url")
	params.Set("expansions", "author_id,attachments.media_keys")
	params.Set("media.fields", "url,preview_image_url")
	if !opts.StartTime.IsZero() {
		params.Set("start_time", opts.StartTime.UTC().Format(time.RFC3339))
	}

	parsed, err := c.get(ctx, "/tweets/search/recent", params)
	if err != nil {
		return nil, err
	}

	users := make(map[string]wireUser, len(parsed.Includes.Users))
	for _, u := range parsed.Includes.Users {
		users[u.ID] = u
	}
	media := make(map[string]wireMedia, len(parsed.Includes.Media))
	for _, m := range parsed.Includes.Media {
		media[m.MediaKey] = m
	}

	posts := make([]Post, 0, len(parsed.Data))
	for _, tweet := range parsed.Data {
		posts = append(posts, normalize(tweet, users, media))
	}
	return posts, nil
}

// SearchConversation returns replies in a conversation thread.
func (c *HTTPClient) SearchConversation(ctx context.Context, conversationID string, limit int) ([]Reply, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	params := url.Values{}
	params.Set("query", "conversation_id:"+conversationID)
	params.Set("max_results", strconv.Itoa(limit))
	params.Set("tweet.fields", "public_metrics,created_at,author_id")

	parsed, err := c.get(ctx, "/tweets/search/recent", params)
	if err != nil {
		return nil, err
	}

	replies := make([]Reply, 0, len(parsed.Data))
	for _, tweet := range parsed.Data {
		replies = append(replies, Reply{
			Text:      tweet.Text,
			Likes:     tweet.PublicMetrics.LikeCount,
			CreatedAt: tweet.CreatedAt,
		})
	}
	return replies, nil
}

// get performs one rate-limited GET with bounded retries on 429/5xx.
func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) (*searchResponse, error) {
	if c.bearerToken == "" {
		return nil, fmt.Errorf("bearer token not configured")
	}

	const maxRetries = 3
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(1<<uint(i-1)) * time.Second):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		parsed, retryable, err := c.doRequest(ctx, path, params)
		if err == nil {
			return parsed, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *HTTPClient) doRequest(ctx context.Context, path string, params url.Values) (parsed *searchResponse, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("search API returned status %d: %s", resp.StatusCode, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("search API returned status %d: %s", resp.StatusCode, string(body))
	}

	var out searchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, false, fmt.Errorf("failed to parse response: %w", err)
	}
	return &out, false, nil
}

func normalize(tweet wireTweet, users map[string]wireUser, media map[string]wireMedia) Post {
	post := Post{
		ID:             tweet.ID,
		Text:           tweet.Text,
		CreatedAt:      tweet.CreatedAt,
		Likes:          tweet.PublicMetrics.LikeCount,
		Retweets:       tweet.PublicMetrics.RetweetCount,
		Replies:        tweet.PublicMetrics.ReplyCount,
		Quotes:         tweet.PublicMetrics.QuoteCount,
		ConversationID: tweet.ConversationID,
		AuthorUsername: "unknown",
	}

	if author, ok := users[tweet.AuthorID]; ok {
		post.AuthorUsername = author.Username
		post.AuthorVerified = author.Verified
		post.AuthorFollowers = author.PublicMetrics.FollowersCount
		post.PostURL = fmt.Sprintf("https://twitter.com/%s/status/%s", author.Username, tweet.ID)
	}

	if tweet.Entities != nil {
		for _, h := range tweet.Entities.Hashtags {
			post.Hashtags = append(post.Hashtags, h.Tag)
		}
		for _, u := range tweet.Entities.URLs {
			post.URLs = append(post.URLs, u.ExpandedURL)
		}
	}

	if tweet.Attachments != nil {
		for _, key := range tweet.Attachments.MediaKeys {
			m, ok := media[key]
			if !ok {
				continue
			}
			mediaURL := m.URL
			if mediaURL == "" {
				mediaURL = m.PreviewImageURL
			}
			post.Media = append(post.Media, Media{Type: m.Type, URL: mediaURL})
		}
	}

	return post
}
