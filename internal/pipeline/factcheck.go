package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"scriptforge/internal/llm"
)

// claimIndicators flag posts likely to contain a checkable factual claim.
var claimIndicators = []string{
	"breaking:", "report:", "sources:", "confirmed:", "%", "first time", "record",
}

// checkableClaim is one claim candidate fed to the LLM.
type checkableClaim struct {
	PostID     string `json:"post_id"`
	Text       string `json:"text"`
	Author     string `json:"author"`
	Engagement int    `json:"engagement"`
}

const factCheckPromptFmt = `You are a fact-checker. Analyze these viral claims and rate their credibility:

%s

For each claim:
1. Identify the specific factual claim being made
2. Rate credibility: HIGH (likely true), MEDIUM (needs context), LOW (likely false/misleading)
3. Provide brief reasoning
4. Suggest how to present it safely (e.g., "add qualifier", "verify first", "safe to use")

Return a JSON array of objects with: post_id, claim, credibility, reasoning, recommendation`

// factCheck asks the LLM to rate the credibility of strong claims in the
// top filtered posts, then attaches verdicts to the matching posts. LLM or
// parse failures are stage-local: the report carries the error.
func (p *Pipeline) factCheck(ctx context.Context, st State) State {
	if st.Err != "" || len(st.FilteredPosts) == 0 {
		return st
	}

	top := st.FilteredPosts
	if len(top) > 10 {
		top = top[:10]
	}

	var claims []checkableClaim
	for _, post := range top {
		if !hasClaimIndicator(post.Text) {
			continue
		}
		claims = append(claims, checkableClaim{
			PostID:     post.ID,
			Text:       post.Text,
			Author:     post.AuthorUsername,
			Engagement: post.TotalEngagement,
		})
	}

	if len(claims) == 0 {
		st.FactChecks = &FactCheckReport{Checks: []FactCheck{}}
		return st
	}
	if len(claims) > 5 {
		claims = claims[:5]
	}

	payload, err := json.MarshalIndent(claims, "", "  ")
	if err != nil {
		st.FactChecks = &FactCheckReport{Error: fmt.Sprintf("encoding claims: %v", err)}
		return st
	}

	reply, err := p.llm.Complete(ctx, fmt.Sprintf(factCheckPromptFmt, payload))
	if err != nil {
		st.FactChecks = &FactCheckReport{Error: fmt.Sprintf("fact check: %v", err)}
		return st
	}

	var checks []FactCheck
	if err := llm.UnmarshalReply(reply, &checks); err != nil {
		st.FactChecks = &FactCheckReport{Error: fmt.Sprintf("fact check: %v", err)}
		return st
	}

	byPost := make(map[string]FactCheck, len(checks))
	for _, check := range checks {
		byPost[check.PostID] = check
	}

	filtered := clonePosts(st.FilteredPosts)
	for i := range filtered {
		if check, ok := byPost[filtered[i].ID]; ok {
			c := check
			filtered[i].FactCheck = &c
		}
	}

	st.FilteredPosts = filtered
	st.FactChecks = &FactCheckReport{Checks: checks}
	p.log.Info("claims fact-checked",
		zap.String("topic", st.Topic), zap.Int("claims", len(checks)))
	return st
}

func hasClaimIndicator(text string) bool {
	lower := strings.ToLower(text)
	for _, indicator := range claimIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
