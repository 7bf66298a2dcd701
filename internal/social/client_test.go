package social

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchFixture = `{
  "data": [
    {
      "id": "101",
      "text": "BREAKING: something happened #NFL",
      "created_at": "2026-01-05T12:00:00Z",
      "author_id": "u1",
      "conversation_id": "101",
      "public_metrics": {"like_count": 50, "retweet_count": 20, "reply_count": 10, "quote_count": 5},
      "entities": {
        "hashtags": [{"tag": "NFL"}],
        "urls": [{"expanded_url": "https://example.com/story"}]
      },
      "attachments": {"media_keys": ["m1", "m-missing"]}
    },
    {
      "id": "102",
      "text": "no author in includes",
      "created_at": "2026-01-05T11:00:00Z",
      "author_id": "u-unknown",
      "conversation_id": "102",
      "public_metrics": {"like_count": 1, "retweet_count": 0, "reply_count": 0, "quote_count": 0}
    }
  ],
  "includes": {
    "users": [
      {"id": "u1", "username": "reporter", "verified": true, "public_metrics": {"followers_count": 120000}}
    ],
    "media": [
      {"media_key": "m1", "type": "photo", "preview_image_url": "https://img.example.com/p.jpg"}
    ]
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClientWithConfig(HTTPConfig{
		BearerToken:       "test-token",
		BaseURL:           srv.URL,
		Timeout:           5 * time.Second,
		RequestsPerMinute: 6000,
	})
}

func TestSearchRecent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tweets/search/recent", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "(NFL) -is:retweet lang:en", q.Get("query"))
		assert.Equal(t, "100", q.Get("max_results"))
		assert.NotEmpty(t, q.Get("start_time"))
		assert.Contains(t, q.Get("expansions"), "author_id")

		w.Write([]byte(searchFixture))
	})

	posts, err := client.SearchRecent(context.Background(), "(NFL) -is:retweet lang:en", SearchOpts{
		StartTime:  time.Now().Add(-24 * time.Hour),
		MaxResults: 100,
	})
	require.NoError(t, err)
	require.Len(t, posts, 2)

	first := posts[0]
	assert.Equal(t, "101", first.ID)
	assert.Equal(t, "reporter", first.AuthorUsername)
	assert.True(t, first.AuthorVerified)
	assert.Equal(t, 120000, first.AuthorFollowers)
	assert.Equal(t, 50, first.Likes)
	assert.Equal(t, 5, first.Quotes)
	assert.Equal(t, []string{"NFL"}, first.Hashtags)
	assert.Equal(t, []string{"https://example.com/story"}, first.URLs)
	require.Len(t, first.Media, 1, "unresolved media keys are dropped")
	assert.Equal(t, "https://img.example.com/p.jpg", first.Media[0].URL)
	assert.Equal(t, "https://twitter.com/reporter/status/101", first.PostURL)

	// Author missing from includes falls back to unknown, no URL.
	second := posts[1]
	assert.Equal(t, "unknown", second.AuthorUsername)
	assert.Empty(t, second.PostURL)
}

func TestSearchConversation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "conversation_id:101", r.URL.Query().Get("query"))
		w.Write([]byte(`{"data":[
			{"id":"201","text":"reply one","created_at":"2026-01-05T12:05:00Z","public_metrics":{"like_count":9}},
			{"id":"202","text":"reply two","created_at":"2026-01-05T12:06:00Z","public_metrics":{"like_count":3}}
		]}`))
	})

	replies, err := client.SearchConversation(context.Background(), "101", 100)
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, "reply one", replies[0].Text)
	assert.Equal(t, 9, replies[0].Likes)
}

func TestSearchRecentEmptyData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta":{"result_count":0}}`))
	})

	posts, err := client.SearchRecent(context.Background(), "q", SearchOpts{})
	require.NoError(t, err)
	assert.Empty(t, posts, "empty result set is not a transport error")
}

func TestSearchRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data":[]}`))
	})

	_, err := client.SearchRecent(context.Background(), "q", SearchOpts{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearchDoesNotRetryAuthError(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.SearchRecent(context.Background(), "q", SearchOpts{})
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestMissingBearerToken(t *testing.T) {
	client := NewHTTPClient("")
	_, err := client.SearchRecent(context.Background(), "q", SearchOpts{})
	assert.Error(t, err)
}
