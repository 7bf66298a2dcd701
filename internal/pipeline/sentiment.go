package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"scriptforge/internal/llm"
)

// postSummary is the condensed view of a post fed to the sentiment prompt.
type postSummary struct {
	Text         string     `json:"text"`
	Engagement   int        `json:"engagement"`
	QualityScore float64    `json:"quality_score"`
	Author       string     `json:"author"`
	Verified     bool       `json:"verified"`
	TopComments  []string   `json:"top_comments,omitempty"`
	FactCheck    *FactCheck `json:"fact_check,omitempty"`
}

const sentimentPromptFmt = `Analyze these top posts and provide comprehensive insights:

POSTS:
%s

COMPETITOR COVERAGE:
%s

TRENDING HASHTAGS:
%s

Provide:
1. Overall sentiment: dominant mood and why
2. Trending topics ranked by importance (top 10)
3. Controversies generating discussion
4. Most shared viral moments
5. What people are saying in replies
6. Unique angles competitors aren't covering
7. Specific video content opportunities
8. Viewer emotions to tap into

Format as JSON with keys: sentiment, trending_topics (list), controversies (list), viral_moments (list), comment_insights (list), unique_angles (list), content_opportunities (list), viewer_emotions (list)`

// sentiment runs the LLM insight pass over the enriched post batch with
// competitor context. Failure is stage-local; later stages degrade to an
// empty insight set.
func (p *Pipeline) sentiment(ctx context.Context, st State) State {
	if st.Err != "" || len(st.FilteredPosts) == 0 {
		return st
	}

	top := st.FilteredPosts
	if len(top) > 20 {
		top = top[:20]
	}

	summaries := make([]postSummary, 0, len(top))
	for _, post := range top {
		summary := postSummary{
			Text:         post.Text,
			Engagement:   post.TotalEngagement,
			QualityScore: post.QualityScore,
			Author:       post.AuthorUsername,
			Verified:     post.AuthorVerified,
			FactCheck:    post.FactCheck,
		}
		for i, comment := range post.Comments {
			if i == 5 {
				break
			}
			summary.TopComments = append(summary.TopComments, comment.Text)
		}
		summaries = append(summaries, summary)
	}

	postsPayload, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		st.Sentiment = &SentimentAnalysis{Error: fmt.Sprintf("encoding post summaries: %v", err)}
		return st
	}

	competitorPayload := []byte("{}")
	if st.Competitors != nil {
		if data, err := json.MarshalIndent(st.Competitors, "", "  "); err == nil {
			competitorPayload = data
		}
	}

	prompt := fmt.Sprintf(sentimentPromptFmt,
		postsPayload, competitorPayload, strings.Join(st.TrendingHashtags, ", "))

	reply, err := p.llm.Complete(ctx, prompt)
	if err != nil {
		st.Sentiment = &SentimentAnalysis{Error: fmt.Sprintf("sentiment analysis: %v", err)}
		return st
	}

	var analysis SentimentAnalysis
	if err := llm.UnmarshalReply(reply, &analysis); err != nil {
		st.Sentiment = &SentimentAnalysis{Error: fmt.Sprintf("sentiment analysis: %v", err)}
		return st
	}

	st.Sentiment = &analysis
	st.TrendingTopics = analysis.TrendingTopics
	p.log.Info("sentiment analysis complete",
		zap.String("topic", st.Topic),
		zap.String("sentiment", analysis.Sentiment),
		zap.Int("trending_topics", len(analysis.TrendingTopics)))
	return st
}
