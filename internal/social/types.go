// Package social implements the search collaborator: a rate-limited HTTP
// client for the X API v2 recent-search endpoint.
package social

import "time"

// Post is one normalized search result with author and engagement metadata.
type Post struct {
	ID             string
	Text           string
	CreatedAt      time.Time
	AuthorUsername string
	AuthorVerified bool
	AuthorFollowers int
	Likes          int
	Retweets       int
	Replies        int
	Quotes         int
	ConversationID string
	Hashtags       []string
	URLs           []string
	Media          []Media
	PostURL        string
}

// Media is one attachment on a post.
type Media struct {
	Type string
	URL  string
}

// Reply is one conversation reply.
type Reply struct {
	Text      string
	Likes     int
	CreatedAt time.Time
}

// SearchOpts bound a recent-search request.
type SearchOpts struct {
	StartTime  time.Time // zero value means no lower bound
	MaxResults int       // capped by the API at 100
}

// Wire types for the v2 recent-search response.

type searchResponse struct {
	Data     []wireTweet  `json:"data"`
	Includes wireIncludes `json:"includes"`
	Errors   []wireError  `json:"errors"`
}

type wireTweet struct {
	ID             string        `json:"id"`
	Text           string        `json:"text"`
	CreatedAt      time.Time     `json:"created_at"`
	AuthorID       string        `json:"author_id"`
	ConversationID string        `json:"conversation_id"`
	PublicMetrics  wireMetrics   `json:"public_metrics"`
	Entities       *wireEntities `json:"entities"`
	Attachments    *struct {
		MediaKeys []string `json:"media_keys"`
	} `json:"attachments"`
}

type wireMetrics struct {
	LikeCount    int `json:"like_count"`
	RetweetCount int `json:"retweet_count"`
	ReplyCount   int `json:"reply_count"`
	QuoteCount   int `json:"quote_count"`
}

type wireEntities struct {
	Hashtags []struct {
		Tag string `json:"tag"`
	} `json:"hashtags"`
	URLs []struct {
		ExpandedURL string `json:"expanded_url"`
	} `json:"urls"`
}

type wireIncludes struct {
	Users []wireUser  `json:"users"`
	Media []wireMedia `json:"media"`
}

type wireUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Verified      bool   `json:"verified"`
	PublicMetrics struct {
		FollowersCount int `json:"followers_count"`
	} `json:"public_metrics"`
}

type wireMedia struct {
	MediaKey        string `json:"media_key"`
	Type            string `json:"type"`
	URL             string `json:"url"`
	PreviewImageURL string `json:"preview_image_url"`
}

type wireError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}
