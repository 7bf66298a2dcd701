package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// TopicConfig holds the content parameters for one topic.
type TopicConfig struct {
	SearchBase          string   `yaml:"search_base" json:"search_base"`
	ScheduleDay         string   `yaml:"schedule_day" json:"schedule_day"`
	ScheduleTime        string   `yaml:"schedule_time" json:"schedule_time"`
	VideoLength         string   `yaml:"video_length" json:"video_length"` // "min-max" minutes
	Tone                string   `yaml:"tone" json:"tone"`
	EngagementThreshold int      `yaml:"engagement_threshold" json:"engagement_threshold"`
	FollowerThreshold   int      `yaml:"follower_threshold" json:"follower_threshold"`
	CompetitorChannels  []string `yaml:"competitor_channels" json:"competitor_channels"`
}

// Overrides holds optional caller-supplied overrides for a topic preset.
// Nil fields keep the preset value.
type Overrides struct {
	EngagementThreshold *int
	FollowerThreshold   *int
	VideoLength         *string
	Tone                *string
}

// Merge returns a copy of the preset with the given overrides applied.
// Precedence: explicit override > named preset > built-in default.
func (t TopicConfig) Merge(o Overrides) TopicConfig {
	merged := t
	merged.CompetitorChannels = append([]string(nil), t.CompetitorChannels...)
	if o.EngagementThreshold != nil {
		merged.EngagementThreshold = *o.EngagementThreshold
	}
	if o.FollowerThreshold != nil {
		merged.FollowerThreshold = *o.FollowerThreshold
	}
	if o.VideoLength != nil {
		merged.VideoLength = *o.VideoLength
	}
	if o.Tone != nil {
		merged.Tone = *o.Tone
	}
	return merged
}

// WordTarget returns the script word-count range derived from VideoLength,
// at roughly 150 spoken words per minute. A malformed length falls back to
// a 10-12 minute video.
func (t TopicConfig) WordTarget() (min, max int) {
	parts := strings.SplitN(t.VideoLength, "-", 2)
	lo, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	hi := lo
	var err2 error
	if len(parts) == 2 {
		hi, err2 = strconv.Atoi(strings.TrimSpace(parts[1]))
	}
	if err1 != nil || err2 != nil || lo <= 0 || hi < lo {
		lo, hi = 10, 12
	}
	return lo * 150, hi * 150
}

// topicPresets are the built-in per-topic content presets.
var topicPresets = map[string]TopicConfig{
	"nfl": {
		SearchBase:          "(NFL OR #NFL OR #SundayFootball)",
		ScheduleDay:         "monday",
		ScheduleTime:        "08:00",
		VideoLength:         "10-12",
		Tone:                "energetic and passionate",
		EngagementThreshold: 50,
		FollowerThreshold:   10000,
		CompetitorChannels:  []string{"@UndisputedOnFS1", "@FirstTake", "@PatMcAfeeShow"},
	},
	"nba": {
		SearchBase:          "(NBA OR #NBA OR #NBATwitter)",
		ScheduleDay:         "daily",
		ScheduleTime:        "09:00",
		VideoLength:         "8-10",
		Tone:                "casual and entertaining",
		EngagementThreshold: 30,
		FollowerThreshold:   5000,
		CompetitorChannels:  []string{"@KOT4Q", "@Jxmyhighroller"},
	},
	"tech": {
		SearchBase:          "(tech OR #TechNews OR AI OR #AI)",
		ScheduleDay:         "daily",
		ScheduleTime:        "10:00",
		VideoLength:         "12-15",
		Tone:                "informative and analytical",
		EngagementThreshold: 100,
		FollowerThreshold:   20000,
		CompetitorChannels:  []string{"@mkbhd", "@TechLinked"},
	},
	"politics": {
		SearchBase:          "(politics OR #politics OR breaking)",
		ScheduleDay:         "daily",
		ScheduleTime:        "07:00",
		VideoLength:         "15-20",
		Tone:                "balanced and factual",
		EngagementThreshold: 200,
		FollowerThreshold:   50000,
		CompetitorChannels:  []string{"@PhilipDeFranco"},
	},
}

// TopicNames returns the names of all built-in topic presets, sorted.
func TopicNames() []string {
	names := make([]string, 0, len(topicPresets))
	for name := range topicPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TopicConfigFor returns the preset for a named topic.
func TopicConfigFor(topic string) (TopicConfig, error) {
	preset, ok := topicPresets[strings.ToLower(topic)]
	if !ok {
		return TopicConfig{}, fmt.Errorf("unknown topic %q (valid: %v)", topic, TopicNames())
	}
	preset.CompetitorChannels = append([]string(nil), preset.CompetitorChannels...)
	return preset, nil
}
