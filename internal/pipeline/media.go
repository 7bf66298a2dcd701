package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// media proposes editing assets for the top posts and viral moments.
// Pure transformation, no network calls.
func (p *Pipeline) media(ctx context.Context, st State) State {
	if st.Err != "" {
		return st
	}

	top := st.FilteredPosts
	if len(top) > 10 {
		top = top[:10]
	}

	suggestions := make([]MediaSuggestion, 0, len(top)+5)
	for i, post := range top {
		if len(post.Media) > 0 {
			suggestions = append(suggestions, MediaSuggestion{
				Type:        "tweet_with_media",
				Timestamp:   fmt.Sprintf("[%ds]", (i+1)*60),
				Description: fmt.Sprintf("Screenshot tweet from @%s with embedded media", post.AuthorUsername),
				PostURL:     post.PostURL,
				Reasoning:   fmt.Sprintf("High engagement (%d), has visual content", post.TotalEngagement),
			})
			continue
		}
		suggestions = append(suggestions, MediaSuggestion{
			Type:        "tweet_screenshot",
			Timestamp:   fmt.Sprintf("[%ds]", (i+1)*60),
			Description: fmt.Sprintf("Screenshot tweet from @%s", post.AuthorUsername),
			PostURL:     post.PostURL,
			Reasoning:   fmt.Sprintf("Top quality score (%d)", int(post.QualityScore)),
		})
	}

	if st.Sentiment != nil {
		moments := st.Sentiment.ViralMoments
		if len(moments) > 5 {
			moments = moments[:5]
		}
		for _, moment := range moments {
			suggestions = append(suggestions, MediaSuggestion{
				Type:        "video_clip",
				Timestamp:   "[B-ROLL]",
				Description: fmt.Sprintf("Clip of: %s", moment),
				Source:      "YouTube highlights",
				Reasoning:   "Viral moment mentioned in posts",
			})
		}
	}

	st.MediaSuggestions = suggestions
	p.log.Info("media suggestions generated", zap.Int("count", len(suggestions)))
	return st
}
