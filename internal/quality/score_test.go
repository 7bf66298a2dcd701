package quality

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestScoreWeights(t *testing.T) {
	s := Signals{Likes: 10, Retweets: 5, Replies: 4, Quotes: 2}
	// 10*1.0 + 5*2.0 + 4*1.5 + 2*3.0 = 32
	assert.Equal(t, 32.0, Score(s))

	s.Verified = true
	assert.Equal(t, 132.0, Score(s))
}

func TestScoreDeterministic(t *testing.T) {
	s := Signals{Likes: 7, Retweets: 3, Replies: 9, Quotes: 1, Verified: true, Followers: 42}
	assert.Equal(t, Score(s), Score(s))
}

func TestEngagementRatioZeroFollowers(t *testing.T) {
	s := Signals{Likes: 10, Followers: 0}
	// Must not divide by zero; 10 engagement over max(0,1) followers.
	assert.Equal(t, 10.0, s.EngagementRatio())
}

func TestAdmitAllConditions(t *testing.T) {
	thresholds := Thresholds{Engagement: 40, Follower: 1000}
	base := Signals{Likes: 50, Retweets: 20, Replies: 10, Quotes: 5, Followers: 5000}

	assert.True(t, Admit(base, thresholds))

	tests := []struct {
		name   string
		mutate func(Signals) Signals
	}{
		{"below engagement threshold", func(s Signals) Signals {
			return Signals{Likes: 16, Followers: s.Followers}
		}},
		{"weak likes", func(s Signals) Signals {
			s.Likes = 10
			s.Replies = 40
			return s
		}},
		{"bot retweet ratio", func(s Signals) Signals {
			s.Retweets = s.Likes*BotRetweetFactor + 1
			return s
		}},
		{"spam replies", func(s Signals) Signals {
			s.Replies = 1000
			s.Likes = 40
			s.Retweets = 0
			s.Quotes = 0
			return s
		}},
		{"disreputable source", func(s Signals) Signals {
			s.Followers = 10
			s.Likes = 40
			s.Retweets = 0
			s.Replies = 0
			s.Quotes = 0
			return s
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, Admit(tt.mutate(base), thresholds))
		})
	}
}

func TestAdmitReputableEscapeHatches(t *testing.T) {
	thresholds := Thresholds{Engagement: 40, Follower: 100000}
	// Low followers, unverified, but 4x the engagement threshold.
	viral := Signals{Likes: 120, Retweets: 30, Replies: 10, Quotes: 0, Followers: 2000}
	assert.True(t, Admit(viral, thresholds))

	// Verified author passes the credibility check on its own.
	verified := Signals{Likes: 40, Retweets: 5, Replies: 2, Quotes: 0, Verified: true, Followers: 50}
	assert.True(t, Admit(verified, thresholds))
}

func TestAdmitMonotonicInEngagementThreshold(t *testing.T) {
	posts := []Signals{
		{Likes: 100, Retweets: 50, Replies: 10, Quotes: 5, Followers: 20000},
		{Likes: 50, Retweets: 10, Replies: 5, Quotes: 0, Followers: 20000},
		{Likes: 20, Retweets: 4, Replies: 2, Quotes: 0, Followers: 20000},
		{Likes: 8, Retweets: 2, Replies: 1, Quotes: 0, Verified: true, Followers: 300},
	}

	for threshold := 1; threshold <= 200; threshold += 7 {
		lower := Thresholds{Engagement: threshold, Follower: 1000}
		higher := Thresholds{Engagement: threshold + 25, Follower: 1000}
		for i, s := range posts {
			if Admit(s, higher) {
				assert.True(t, Admit(s, lower),
					"post %d admitted at threshold %d but not at %d", i, higher.Engagement, lower.Engagement)
			}
		}
	}
}

func TestTopHashtagsFrequencyOrder(t *testing.T) {
	got := TopHashtags([][]string{{"#a", "#a", "#b"}})
	if diff := cmp.Diff([]string{"#a", "#b"}, got); diff != "" {
		t.Errorf("unexpected ranking (-want +got):\n%s", diff)
	}
}

func TestTopHashtagsTieKeepsFirstSeen(t *testing.T) {
	got := TopHashtags([][]string{{"#x", "#y"}, {"#x", "#y"}})
	if diff := cmp.Diff([]string{"#x", "#y"}, got); diff != "" {
		t.Errorf("unexpected tie order (-want +got):\n%s", diff)
	}
}

func TestTopHashtagsNormalizesAndCaps(t *testing.T) {
	var batch [][]string
	// 12 distinct tags, tag0 most frequent, then tag1, etc.
	for i := 0; i < 12; i++ {
		tags := make([]string, 0, 12-i)
		for j := 0; j < 12-i; j++ {
			tags = append(tags, []string{"TAG", "tag"}[j%2]+string(rune('a'+i)))
		}
		batch = append(batch, tags)
	}

	got := TopHashtags(batch)
	assert.Len(t, got, MaxTrendingTags)
	assert.Equal(t, "#taga", got[0])
	for _, tag := range got {
		assert.Equal(t, tag, "#"+string([]rune(tag)[1:]), "tags carry a single # prefix")
	}
}

func TestTopHashtagsEmpty(t *testing.T) {
	assert.Empty(t, TopHashtags(nil))
	assert.Empty(t, TopHashtags([][]string{{}, {""}}))
}
