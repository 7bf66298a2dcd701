package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "https://api.twitter.com/2", cfg.Social.BaseURL)
	assert.Equal(t, "outputs", cfg.OutputDir)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Social.BaseURL, cfg.Social.BaseURL)
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.LLM.Provider = "gemini"
	cfg.LLM.Model = "gemini-2.5-flash"
	cfg.OutputDir = "/tmp/out"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", loaded.LLM.Model)
	assert.Equal(t, "/tmp/out", loaded.OutputDir)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "test-gemini-key")
	t.Setenv("TWITTER_BEARER_TOKEN", "test-bearer")
	t.Setenv("SCRIPTFORGE_DB", "/tmp/custom.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "test-gemini-key", cfg.LLM.APIKey)
	assert.Equal(t, "test-bearer", cfg.Social.BearerToken)
	assert.Equal(t, "/tmp/custom.db", cfg.Store.DatabasePath)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate(), "missing API key should fail")

	cfg.LLM.APIKey = "key"
	assert.Error(t, cfg.Validate(), "missing bearer token should fail")

	cfg.Social.BearerToken = "token"
	assert.NoError(t, cfg.Validate())

	cfg.LLM.Provider = "openai"
	assert.Error(t, cfg.Validate(), "unsupported provider should fail")
}

func TestTopicConfigFor(t *testing.T) {
	nfl, err := TopicConfigFor("nfl")
	require.NoError(t, err)
	assert.Equal(t, 50, nfl.EngagementThreshold)
	assert.Equal(t, "monday", nfl.ScheduleDay)
	assert.Len(t, nfl.CompetitorChannels, 3)

	_, err = TopicConfigFor("cooking")
	assert.Error(t, err)
}

func TestTopicConfigForIsolatesPreset(t *testing.T) {
	a, err := TopicConfigFor("nba")
	require.NoError(t, err)
	a.CompetitorChannels[0] = "@mutated"

	b, err := TopicConfigFor("nba")
	require.NoError(t, err)
	assert.Equal(t, "@KOT4Q", b.CompetitorChannels[0])
}

func TestMergePrecedence(t *testing.T) {
	preset, err := TopicConfigFor("tech")
	require.NoError(t, err)

	threshold := 250
	tone := "dry and skeptical"
	merged := preset.Merge(Overrides{
		EngagementThreshold: &threshold,
		Tone:                &tone,
	})

	assert.Equal(t, 250, merged.EngagementThreshold)
	assert.Equal(t, "dry and skeptical", merged.Tone)
	// Unset overrides keep preset values.
	assert.Equal(t, preset.FollowerThreshold, merged.FollowerThreshold)
	assert.Equal(t, preset.VideoLength, merged.VideoLength)
	// Preset itself is untouched.
	assert.Equal(t, 100, preset.EngagementThreshold)
}

func TestWordTarget(t *testing.T) {
	tc := TopicConfig{VideoLength: "10-12"}
	min, max := tc.WordTarget()
	assert.Equal(t, 1500, min)
	assert.Equal(t, 1800, max)

	tc.VideoLength = "garbage"
	min, max = tc.WordTarget()
	assert.Equal(t, 1500, min)
	assert.Equal(t, 1800, max)
}

func TestMain(m *testing.M) {
	// Keep ambient credentials from leaking into env-override tests.
	os.Unsetenv("ANTHROPIC_API_KEY")
	os.Unsetenv("GEMINI_API_KEY")
	os.Unsetenv("TWITTER_BEARER_TOKEN")
	os.Unsetenv("SCRIPTFORGE_DB")
	os.Exit(m.Run())
}
