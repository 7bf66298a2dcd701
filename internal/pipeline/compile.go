package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// compile assembles the final deliverable package. Nil list fields are
// normalized to empty slices so the persisted JSON always carries the same
// keys.
func (p *Pipeline) compile(ctx context.Context, st State) State {
	if st.Err != "" {
		return st
	}

	topPosts := st.FilteredPosts
	if len(topPosts) > 20 {
		topPosts = topPosts[:20]
	}

	deliverable := &Deliverable{
		Metadata: Metadata{
			Topic:            st.Topic,
			GeneratedAt:      p.now().UTC().Format(time.RFC3339),
			Config:           st.Config,
			TrendingHashtags: emptyIfNil(st.TrendingHashtags),
		},
		Analysis: Analysis{
			PostsAnalyzed:      len(st.RawPosts),
			QualityPosts:       len(st.FilteredPosts),
			Sentiment:          st.Sentiment,
			CompetitorInsights: st.Competitors,
			FactChecks:         st.FactChecks,
		},
		Content: Content{
			ScriptVariants:   st.Scripts,
			MediaSuggestions: st.MediaSuggestions,
			TopPosts:         topPosts,
		},
		Recommendations: Recommendations{
			KeyTalkingPoints: []string{},
			UniqueAngles:     []string{},
		},
	}
	if deliverable.Content.ScriptVariants == nil {
		deliverable.Content.ScriptVariants = []ScriptVariant{}
	}
	if deliverable.Content.MediaSuggestions == nil {
		deliverable.Content.MediaSuggestions = []MediaSuggestion{}
	}
	if deliverable.Content.TopPosts == nil {
		deliverable.Content.TopPosts = []Post{}
	}

	if len(st.Scripts) > 0 {
		deliverable.Recommendations.BestVariant = st.Scripts[0].Name
	}
	if st.Sentiment != nil {
		deliverable.Recommendations.KeyTalkingPoints = head(emptyIfNil(st.Sentiment.TrendingTopics), 5)
	}
	if st.Competitors != nil {
		deliverable.Recommendations.UniqueAngles = dedupStrings(st.Competitors.Gaps)
	}

	st.Deliverable = deliverable
	p.log.Info("deliverable compiled", zap.String("topic", st.Topic))
	return st
}

// persist hands the finished state to the configured writer.
func (p *Pipeline) persist(ctx context.Context, st State) State {
	if st.Err != "" {
		return st
	}
	if p.writer == nil {
		p.log.Debug("no persister configured, skipping save")
		return st
	}

	dir, err := p.writer.Persist(&st)
	if err != nil {
		st.Err = "saving outputs: " + err.Error()
		return st
	}
	st.OutputDir = dir
	p.log.Info("outputs saved", zap.String("dir", dir))
	return st
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
