package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"scriptforge/internal/llm"
	"scriptforge/internal/social"
)

// competitorPost is one competitor-channel post fed to the LLM.
type competitorPost struct {
	Channel    string `json:"channel"`
	Text       string `json:"text"`
	Engagement int    `json:"engagement"`
}

const competitorPromptFmt = `Analyze what these competitor channels are covering:

%s

Identify:
1. Common themes they're all covering (we should too)
2. Gaps they're missing (opportunities for us)
3. Their content angles (to differentiate ourselves)

Return JSON with: common_themes (list), gaps (list), competitor_angles (list)`

// competitors samples recent posts from the configured competitor channels
// and asks the LLM for coverage themes and gaps. Failures here are
// stage-local: the analysis field carries the error and the pipeline
// continues.
func (p *Pipeline) competitors(ctx context.Context, st State) State {
	if st.Err != "" {
		return st
	}

	var sampled []competitorPost
	for _, channel := range st.Config.CompetitorChannels {
		handle := strings.TrimPrefix(channel, "@")
		posts, err := p.search.SearchRecent(ctx, fmt.Sprintf("from:%s -is:retweet", handle), social.SearchOpts{
			MaxResults: 10,
		})
		if err != nil {
			// Per-channel failure: skip the channel, keep the rest.
			p.log.Warn("competitor channel fetch failed",
				zap.String("channel", channel), zap.Error(err))
			continue
		}
		for _, post := range posts {
			sampled = append(sampled, competitorPost{
				Channel:    channel,
				Text:       post.Text,
				Engagement: post.Likes + post.Retweets,
			})
		}
	}

	if len(sampled) == 0 {
		st.Competitors = &CompetitorAnalysis{
			CommonThemes:     []string{},
			Gaps:             []string{},
			CompetitorAngles: []string{},
		}
		return st
	}
	if len(sampled) > 20 {
		sampled = sampled[:20]
	}

	payload, err := json.MarshalIndent(sampled, "", "  ")
	if err != nil {
		st.Competitors = &CompetitorAnalysis{Error: fmt.Sprintf("encoding competitor posts: %v", err)}
		return st
	}

	reply, err := p.llm.Complete(ctx, fmt.Sprintf(competitorPromptFmt, payload))
	if err != nil {
		st.Competitors = &CompetitorAnalysis{Error: fmt.Sprintf("competitor analysis: %v", err)}
		return st
	}

	var analysis CompetitorAnalysis
	if err := llm.UnmarshalReply(reply, &analysis); err != nil {
		st.Competitors = &CompetitorAnalysis{Error: fmt.Sprintf("competitor analysis: %v", err)}
		return st
	}

	st.Competitors = &analysis
	p.log.Info("competitor analysis complete",
		zap.String("topic", st.Topic),
		zap.Int("themes", len(analysis.CommonThemes)),
		zap.Int("gaps", len(analysis.Gaps)))
	return st
}
