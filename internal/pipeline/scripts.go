package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// variantTemplate describes one scripted angle on the same material.
type variantTemplate struct {
	Name        string
	Description string
	Approach    string
}

var scriptVariants = []variantTemplate{
	{
		Name:        "Hook-Heavy",
		Description: "Maximum engagement in first 30 seconds, fast-paced throughout",
		Approach:    "Start with the most shocking moment, rapid-fire delivery, multiple hooks",
	},
	{
		Name:        "Story-Driven",
		Description: "Narrative arc, builds tension, emotional payoff",
		Approach:    "Build a story around the biggest moment, character-driven, emotional journey",
	},
	{
		Name:        "Analytical",
		Description: "Deep-dive analysis, tactical breakdown, expert perspective",
		Approach:    "Start with analysis, use data/stats, expert commentary style",
	},
	{
		Name:        "Controversy-First",
		Description: "Lead with debate, balanced takes, engagement farming",
		Approach:    "Open with controversial take, present both sides, ask viewers to comment",
	},
	{
		Name:        "Reactions-Focused",
		Description: "Social reactions, fan perspectives, viral takes",
		Approach:    "Showcase the best post reactions, fan humor, community vibe",
	},
}

type contextPost struct {
	Author     string `json:"author"`
	Text       string `json:"text"`
	Engagement int    `json:"engagement"`
}

// scripts generates the top script variants from the shared context block.
// A failed variant is skipped, not fatal.
func (p *Pipeline) scripts(ctx context.Context, st State) State {
	if st.Err != "" {
		return st
	}

	sentimentLabel := "N/A"
	var trendingTopics, viralMoments []string
	if st.Sentiment != nil {
		if st.Sentiment.Sentiment != "" {
			sentimentLabel = st.Sentiment.Sentiment
		}
		trendingTopics = st.Sentiment.TrendingTopics
		viralMoments = st.Sentiment.ViralMoments
	}

	var uniqueAngles []string
	if st.Competitors != nil {
		uniqueAngles = dedupStrings(st.Competitors.Gaps)
	}

	topPosts := st.FilteredPosts
	if len(topPosts) > 5 {
		topPosts = topPosts[:5]
	}
	contextPosts := make([]contextPost, 0, len(topPosts))
	for _, post := range topPosts {
		text := post.Text
		if len(text) > 100 {
			text = text[:100]
		}
		contextPosts = append(contextPosts, contextPost{
			Author:     post.AuthorUsername,
			Text:       text,
			Engagement: post.TotalEngagement,
		})
	}
	postsPayload, _ := json.MarshalIndent(contextPosts, "", "  ")

	mediaTop := st.MediaSuggestions
	if len(mediaTop) > 10 {
		mediaTop = mediaTop[:10]
	}
	mediaPayload, _ := json.MarshalIndent(mediaTop, "", "  ")

	contextBlock := fmt.Sprintf(`
TOPIC: %s
TONE: %s
VIDEO LENGTH: %s minutes
TRENDING HASHTAGS: %s
SENTIMENT: %s
TRENDING TOPICS: %s
VIRAL MOMENTS: %s
UNIQUE ANGLES (vs competitors): %s

TOP POSTS:
%s

MEDIA SUGGESTIONS:
%s
`,
		st.Topic,
		st.Config.Tone,
		st.Config.VideoLength,
		strings.Join(head(st.TrendingHashtags, 5), ", "),
		sentimentLabel,
		strings.Join(head(trendingTopics, 5), ", "),
		strings.Join(head(viralMoments, 3), ", "),
		strings.Join(head(uniqueAngles, 3), ", "),
		postsPayload,
		mediaPayload,
	)

	minWords, maxWords := st.Config.WordTarget()

	variants := make([]ScriptVariant, 0, 3)
	for _, tmpl := range scriptVariants[:3] {
		prompt := fmt.Sprintf(`%s

VARIANT: %s
DESCRIPTION: %s
APPROACH: %s

Write a COMPLETE YouTube script for a %s minute video.

Requirements:
- Match the %s tone
- Use the variant approach described above
- Include [TIMESTAMP X:XX] markers every major section
- Add [SCREENSHOT: post_url] for specific posts to show
- Include [B-ROLL: description] for visual suggestions
- Add [PAUSE] for emphasis
- Reference fact-checked claims safely (from fact-check data)
- Strong CTA at end
- Word count: %d-%d words

Start naturally and make it %s.`,
			contextBlock,
			tmpl.Name, tmpl.Description, tmpl.Approach,
			st.Config.VideoLength,
			st.Config.Tone,
			minWords, maxWords,
			strings.ToLower(tmpl.Description),
		)

		script, err := p.llm.Complete(ctx, prompt)
		if err != nil {
			p.log.Warn("script variant failed",
				zap.String("variant", tmpl.Name), zap.Error(err))
			continue
		}

		variants = append(variants, ScriptVariant{
			Name:        tmpl.Name,
			Description: tmpl.Description,
			Script:      script,
			WordCount:   len(strings.Fields(script)),
		})
	}

	st.Scripts = variants
	p.log.Info("script variants generated", zap.Int("count", len(variants)))
	return st
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func dedupStrings(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
