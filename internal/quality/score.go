// Package quality implements the pure post-scoring, admission-filtering and
// hashtag-ranking logic. No I/O, deterministic for a fixed input.
package quality

// Filter constants. The engagement-ratio floor is global policy and is
// deliberately not part of the per-topic thresholds.
const (
	MinEngagementRatio = 0.001
	SpamReplyShare     = 0.8
	BotRetweetFactor   = 2

	MaxFilteredPosts   = 50
	MaxCommentThreads  = 15
	MaxCommentsPerPost = 30
	MaxPostsPerRequest = 100
	MaxTrendingTags    = 10
)

// Signals are the engagement and authorship inputs scoring operates on.
type Signals struct {
	Likes     int
	Retweets  int
	Replies   int
	Quotes    int
	Verified  bool
	Followers int
}

// TotalEngagement is the sum of all four engagement counts.
func (s Signals) TotalEngagement() int {
	return s.Likes + s.Retweets + s.Replies + s.Quotes
}

// EngagementRatio normalizes total engagement by follower count.
// Zero-follower authors are treated as having one follower.
func (s Signals) EngagementRatio() float64 {
	followers := s.Followers
	if followers < 1 {
		followers = 1
	}
	return float64(s.TotalEngagement()) / float64(followers)
}

// Thresholds are the per-topic admission thresholds.
type Thresholds struct {
	Engagement int
	Follower   int
}

// Score computes the weighted quality score for a post.
func Score(s Signals) float64 {
	score := float64(s.Likes)*1.0 +
		float64(s.Retweets)*2.0 +
		float64(s.Replies)*1.5 +
		float64(s.Quotes)*3.0
	if s.Verified {
		score += 100
	}
	return score
}

// Admit reports whether a post passes all quality filters.
func Admit(s Signals, t Thresholds) bool {
	total := s.TotalEngagement()

	meetsEngagement := total >= t.Engagement
	goodRatio := s.EngagementRatio() >= MinEngagementRatio
	meaningfulLikes := float64(s.Likes) >= float64(t.Engagement)*0.4

	// Bot and spam heuristics.
	reasonableRetweets := s.Retweets <= s.Likes*BotRetweetFactor
	notSpam := float64(s.Replies) <= float64(total)*SpamReplyShare

	reputable := s.Verified ||
		s.Followers >= t.Follower ||
		total >= t.Engagement*4

	return meetsEngagement && goodRatio && meaningfulLikes &&
		reasonableRetweets && notSpam && reputable
}
