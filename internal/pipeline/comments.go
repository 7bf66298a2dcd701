package pipeline

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"scriptforge/internal/quality"
)

// comments fetches conversation replies for the top filtered posts. A
// failed fetch is a per-item error: that post keeps an empty comment list.
// The filtered set is truncated to the commented batch; every later stage
// works on at most MaxCommentThreads posts.
func (p *Pipeline) comments(ctx context.Context, st State) State {
	if st.Err != "" || len(st.FilteredPosts) == 0 {
		return st
	}

	top := st.FilteredPosts
	if len(top) > quality.MaxCommentThreads {
		top = top[:quality.MaxCommentThreads]
	}
	top = clonePosts(top)

	for i := range top {
		replies, err := p.search.SearchConversation(ctx, top[i].ConversationID, 100)
		if err != nil {
			p.log.Warn("comment fetch failed",
				zap.String("post_id", top[i].ID), zap.Error(err))
			top[i].Comments = []Comment{}
			top[i].CommentCount = 0
			continue
		}

		comments := make([]Comment, 0, len(replies))
		for _, r := range replies {
			comments = append(comments, Comment{
				Text:      r.Text,
				Likes:     r.Likes,
				CreatedAt: r.CreatedAt,
			})
		}
		sort.SliceStable(comments, func(a, b int) bool {
			return comments[a].Likes > comments[b].Likes
		})
		top[i].CommentCount = len(comments)
		if len(comments) > quality.MaxCommentsPerPost {
			comments = comments[:quality.MaxCommentsPerPost]
		}
		top[i].Comments = comments
	}

	st.FilteredPosts = top
	p.log.Info("comment threads scraped",
		zap.String("topic", st.Topic), zap.Int("threads", len(top)))
	return st
}
