// Package pipeline implements the content pipeline: a fixed sequence of
// stages that turn a topic into filtered posts, LLM-backed analysis and
// candidate video scripts. Each stage takes the previous state snapshot and
// returns a new one; once Err is set every later stage passes the state
// through untouched.
package pipeline

import (
	"time"

	"scriptforge/internal/config"
	"scriptforge/internal/quality"
	"scriptforge/internal/social"
)

// State is the snapshot threaded through the stages. Topic and Config are
// fixed at construction; every other field is owned by exactly one stage.
type State struct {
	Topic  string
	Config config.TopicConfig

	// Err records the first fatal ingestion failure. Stage-local analysis
	// failures live inside the owning output field instead.
	Err string

	TrendingHashtags []string
	RawPosts         []Post
	FilteredPosts    []Post
	Competitors      *CompetitorAnalysis
	FactChecks       *FactCheckReport
	Sentiment        *SentimentAnalysis
	TrendingTopics   []string
	MediaSuggestions []MediaSuggestion
	Scripts          []ScriptVariant
	Deliverable      *Deliverable

	// OutputDir is set by the persist stage.
	OutputDir string
}

// NewState builds the initial state for a run.
func NewState(topic string, cfg config.TopicConfig) State {
	return State{Topic: topic, Config: cfg}
}

// Post is one social-media item with engagement metrics and enrichment
// attached by later stages. QualityScore, Comments and FactCheck are absent
// until the owning stage runs.
type Post struct {
	ID              string     `json:"id"`
	Text            string     `json:"text"`
	CreatedAt       time.Time  `json:"created_at"`
	AuthorUsername  string     `json:"author_username"`
	AuthorVerified  bool       `json:"author_verified"`
	AuthorFollowers int        `json:"author_followers"`
	Likes           int        `json:"likes"`
	Retweets        int        `json:"retweets"`
	Replies         int        `json:"replies"`
	Quotes          int        `json:"quotes"`
	TotalEngagement int        `json:"total_engagement"`
	EngagementRatio float64    `json:"engagement_ratio"`
	ConversationID  string     `json:"conversation_id"`
	Media           []MediaRef `json:"media,omitempty"`
	URLs            []string   `json:"urls,omitempty"`
	PostURL         string     `json:"post_url"`
	Hashtags        []string   `json:"hashtags,omitempty"`

	QualityScore float64    `json:"quality_score,omitempty"`
	Comments     []Comment  `json:"comments,omitempty"`
	CommentCount int        `json:"comment_count,omitempty"`
	FactCheck    *FactCheck `json:"fact_check,omitempty"`
}

// MediaRef is one attachment on a post.
type MediaRef struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Comment is one conversation reply, ordered by likes.
type Comment struct {
	Text      string    `json:"text"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
}

// FactCheck is the credibility verdict for one post's claim.
type FactCheck struct {
	PostID         string `json:"post_id"`
	Claim          string `json:"claim"`
	Credibility    string `json:"credibility"` // HIGH, MEDIUM, LOW
	Reasoning      string `json:"reasoning"`
	Recommendation string `json:"recommendation"`
}

// FactCheckReport holds the fact-check stage output. Error marks a
// stage-local failure; the pipeline continues regardless.
type FactCheckReport struct {
	Checks []FactCheck `json:"checks"`
	Error  string      `json:"error,omitempty"`
}

// CompetitorAnalysis holds the competitor stage output.
type CompetitorAnalysis struct {
	CommonThemes     []string `json:"common_themes"`
	Gaps             []string `json:"gaps"`
	CompetitorAngles []string `json:"competitor_angles"`
	Error            string   `json:"error,omitempty"`
}

// SentimentAnalysis holds the sentiment stage output.
type SentimentAnalysis struct {
	Sentiment            string   `json:"sentiment"`
	TrendingTopics       []string `json:"trending_topics"`
	Controversies        []string `json:"controversies"`
	ViralMoments         []string `json:"viral_moments"`
	CommentInsights      []string `json:"comment_insights"`
	UniqueAngles         []string `json:"unique_angles"`
	ContentOpportunities []string `json:"content_opportunities"`
	ViewerEmotions       []string `json:"viewer_emotions"`
	Error                string   `json:"error,omitempty"`
}

// MediaSuggestion is one editing cue for the video.
type MediaSuggestion struct {
	Type        string `json:"type"`
	Timestamp   string `json:"timestamp"`
	Description string `json:"description"`
	PostURL     string `json:"post_url,omitempty"`
	Source      string `json:"source,omitempty"`
	Reasoning   string `json:"reasoning"`
}

// ScriptVariant is one generated script draft. Immutable once created.
type ScriptVariant struct {
	Name        string `json:"variant_name"`
	Description string `json:"description"`
	Script      string `json:"script"`
	WordCount   int    `json:"word_count"`
}

// Deliverable is the compiled final output package.
type Deliverable struct {
	Metadata        Metadata        `json:"metadata"`
	Analysis        Analysis        `json:"analysis"`
	Content         Content         `json:"content"`
	Recommendations Recommendations `json:"recommendations"`
}

// Metadata describes the run that produced the deliverable.
type Metadata struct {
	Topic            string             `json:"topic"`
	GeneratedAt      string             `json:"generated_at"`
	Config           config.TopicConfig `json:"config"`
	TrendingHashtags []string           `json:"trending_hashtags"`
}

// Analysis aggregates the analysis stages' outputs.
type Analysis struct {
	PostsAnalyzed      int                 `json:"posts_analyzed"`
	QualityPosts       int                 `json:"quality_posts"`
	Sentiment          *SentimentAnalysis  `json:"sentiment"`
	CompetitorInsights *CompetitorAnalysis `json:"competitor_insights"`
	FactChecks         *FactCheckReport    `json:"fact_checks"`
}

// Content carries the generated assets.
type Content struct {
	ScriptVariants   []ScriptVariant   `json:"script_variants"`
	MediaSuggestions []MediaSuggestion `json:"media_suggestions"`
	TopPosts         []Post            `json:"top_posts"`
}

// Recommendations highlights what to use first.
type Recommendations struct {
	BestVariant      string   `json:"best_variant"`
	KeyTalkingPoints []string `json:"key_talking_points"`
	UniqueAngles     []string `json:"unique_angles"`
}

// postFromSocial normalizes a search result into a pipeline post, computing
// the derived engagement fields.
func postFromSocial(p social.Post) Post {
	post := Post{
		ID:              p.ID,
		Text:            p.Text,
		CreatedAt:       p.CreatedAt,
		AuthorUsername:  p.AuthorUsername,
		AuthorVerified:  p.AuthorVerified,
		AuthorFollowers: p.AuthorFollowers,
		Likes:           p.Likes,
		Retweets:        p.Retweets,
		Replies:         p.Replies,
		Quotes:          p.Quotes,
		ConversationID:  p.ConversationID,
		URLs:            p.URLs,
		PostURL:         p.PostURL,
		Hashtags:        p.Hashtags,
	}
	for _, m := range p.Media {
		post.Media = append(post.Media, MediaRef{Type: m.Type, URL: m.URL})
	}

	s := post.signals()
	post.TotalEngagement = s.TotalEngagement()
	post.EngagementRatio = s.EngagementRatio()
	return post
}

// signals extracts the scoring inputs for the quality engine.
func (p Post) signals() quality.Signals {
	return quality.Signals{
		Likes:     p.Likes,
		Retweets:  p.Retweets,
		Replies:   p.Replies,
		Quotes:    p.Quotes,
		Verified:  p.AuthorVerified,
		Followers: p.AuthorFollowers,
	}
}

// clonePosts copies a post slice so a stage can amend entries without
// aliasing the previous snapshot.
func clonePosts(posts []Post) []Post {
	out := make([]Post, len(posts))
	copy(out, posts)
	return out
}
