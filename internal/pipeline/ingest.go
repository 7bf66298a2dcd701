package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"scriptforge/internal/quality"
	"scriptforge/internal/social"
)

// searchWindow is how far back the recent-search queries reach.
const searchWindow = 24

// discover finds trending hashtags for the topic. A search failure here is
// fatal: without discovery there is nothing to build on.
func (p *Pipeline) discover(ctx context.Context, st State) State {
	if st.Err != "" {
		return st
	}

	query := st.Config.SearchBase + " -is:retweet lang:en"
	posts, err := p.search.SearchRecent(ctx, query, social.SearchOpts{
		StartTime:  p.now().Add(-searchWindow * time.Hour),
		MaxResults: quality.MaxPostsPerRequest,
	})
	if err != nil {
		st.Err = fmt.Sprintf("discovering hashtags: %v", err)
		return st
	}

	tags := make([][]string, len(posts))
	for i, post := range posts {
		tags[i] = post.Hashtags
	}
	st.TrendingHashtags = quality.TopHashtags(tags)

	p.log.Info("trending hashtags discovered",
		zap.String("topic", st.Topic),
		zap.Strings("hashtags", st.TrendingHashtags))
	return st
}

// scrape pulls the raw post batch for the topic, widening the preset query
// with the top trending hashtags. No posts is a fatal ingestion error.
func (p *Pipeline) scrape(ctx context.Context, st State) State {
	if st.Err != "" {
		return st
	}

	query := st.Config.SearchBase + " -is:retweet lang:en"
	if len(st.TrendingHashtags) > 0 {
		top := st.TrendingHashtags
		if len(top) > 5 {
			top = top[:5]
		}
		query = fmt.Sprintf("(%s OR %s) -is:retweet lang:en", st.Config.SearchBase, strings.Join(top, " OR "))
	}

	results, err := p.search.SearchRecent(ctx, query, social.SearchOpts{
		StartTime:  p.now().Add(-searchWindow * time.Hour),
		MaxResults: quality.MaxPostsPerRequest,
	})
	if err != nil {
		st.Err = fmt.Sprintf("scraping posts: %v", err)
		return st
	}
	if len(results) == 0 {
		st.Err = "no posts found"
		return st
	}

	raw := make([]Post, 0, len(results))
	for _, r := range results {
		raw = append(raw, postFromSocial(r))
	}
	sort.SliceStable(raw, func(i, j int) bool {
		return raw[i].TotalEngagement > raw[j].TotalEngagement
	})
	st.RawPosts = raw

	p.log.Info("posts scraped", zap.String("topic", st.Topic), zap.Int("count", len(raw)))
	return st
}

// filter scores every raw post and admits the ones passing the quality
// thresholds, ranked by score. Pure; no collaborator calls.
func (p *Pipeline) filter(ctx context.Context, st State) State {
	if st.Err != "" {
		return st
	}

	thresholds := quality.Thresholds{
		Engagement: st.Config.EngagementThreshold,
		Follower:   st.Config.FollowerThreshold,
	}

	var filtered []Post
	for _, post := range st.RawPosts {
		s := post.signals()
		if !quality.Admit(s, thresholds) {
			continue
		}
		post.QualityScore = quality.Score(s)
		filtered = append(filtered, post)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].QualityScore > filtered[j].QualityScore
	})
	if len(filtered) > quality.MaxFilteredPosts {
		filtered = filtered[:quality.MaxFilteredPosts]
	}
	st.FilteredPosts = filtered

	p.log.Info("quality filter applied",
		zap.String("topic", st.Topic),
		zap.Int("admitted", len(filtered)),
		zap.Int("rejected", len(st.RawPosts)-len(filtered)))
	return st
}
