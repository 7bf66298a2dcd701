package quality

import (
	"sort"
	"strings"
)

// TopHashtags counts tag frequency across a batch of posts and returns the
// top MaxTrendingTags tags rendered as "#tag", lower-cased, most frequent
// first. Ties keep first-seen order from the input batch.
func TopHashtags(postTags [][]string) []string {
	counts := make(map[string]int)
	var order []string

	for _, tags := range postTags {
		for _, raw := range tags {
			tag := strings.ToLower(strings.TrimPrefix(raw, "#"))
			if tag == "" {
				continue
			}
			if _, seen := counts[tag]; !seen {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > MaxTrendingTags {
		order = order[:MaxTrendingTags]
	}

	trending := make([]string, len(order))
	for i, tag := range order {
		trending[i] = "#" + tag
	}
	return trending
}
