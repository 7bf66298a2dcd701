package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"scriptforge/internal/config"
	"scriptforge/internal/llm"
	"scriptforge/internal/output"
	"scriptforge/internal/pipeline"
	"scriptforge/internal/schedule"
	"scriptforge/internal/social"
	"scriptforge/internal/store"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Run flags
	runTopic            string
	engagementThreshold int
	followerThreshold   int
	videoLength         string
	tone                string

	// Automate flags
	automateTopics []string
	runNow         bool

	// History flags
	historyLimit int

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "scriptforge",
	Short: "scriptforge - social-trend research and YouTube script generation",
	Long: `scriptforge turns a topic into ready-to-edit YouTube script drafts.

It scrapes recent posts for the topic, filters them through a quality gate,
enriches the survivors with competitor, fact-check and sentiment analysis,
and generates multiple script variants with media cues for the editor.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline for one topic",
	Long: `Runs every stage for the given topic and saves the deliverable
package under the configured output directory.

Example:
  scriptforge run --topic nfl --engagement-threshold 100 --tone "calm and analytical"`,
	RunE: runTopicCmd,
}

var automateCmd = &cobra.Command{
	Use:   "automate",
	Short: "Run topics on their configured weekly schedule",
	Long: `Blocks and fires each topic at its preset schedule slot.
With --run-now, every topic runs once immediately instead.

Example:
  scriptforge automate --topics nfl,nba`,
	RunE: runAutomate,
}

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List the built-in topic presets",
	RunE:  listTopics,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent pipeline runs",
	RunE:  showHistory,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "scriptforge.yaml", "Path to config file")

	runCmd.Flags().StringVar(&runTopic, "topic", "nfl", "Topic to analyze")
	runCmd.Flags().IntVar(&engagementThreshold, "engagement-threshold", 0, "Minimum engagement threshold override")
	runCmd.Flags().IntVar(&followerThreshold, "follower-threshold", 0, "Minimum follower threshold override")
	runCmd.Flags().StringVar(&videoLength, "video-length", "", `Video length override (e.g. "10-12")`)
	runCmd.Flags().StringVar(&tone, "tone", "", "Video tone/style override")

	automateCmd.Flags().StringSliceVar(&automateTopics, "topics", []string{"nfl", "nba"}, "Topics to automate")
	automateCmd.Flags().BoolVar(&runNow, "run-now", false, "Run each topic once immediately instead of scheduling")

	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of runs to show")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(automateCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles the wired collaborators for one invocation.
type app struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	runs     *store.RunStore
}

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	completer, err := buildLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}

	search := social.NewHTTPClientWithConfig(social.HTTPConfig{
		BearerToken:       cfg.Social.BearerToken,
		BaseURL:           cfg.Social.BaseURL,
		Timeout:           cfg.GetSocialTimeout(),
		RequestsPerMinute: cfg.Social.RequestsPerMinute,
	})

	runs, err := store.Open(cfg.Store.DatabasePath, logger)
	if err != nil {
		return nil, err
	}

	writer := output.NewWriter(cfg.OutputDir, logger)
	p := pipeline.New(search, completer, logger, pipeline.WithPersister(writer))

	return &app{cfg: cfg, pipeline: p, runs: runs}, nil
}

func buildLLM(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	switch cfg.LLM.Provider {
	case "gemini":
		return llm.NewGeminiClient(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
	case "anthropic":
		return llm.NewAnthropicClientWithConfig(llm.AnthropicConfig{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.GetLLMTimeout(),
		}), nil
	default:
		return nil, fmt.Errorf("invalid LLM provider: %s (valid: %v)", cfg.LLM.Provider, config.ValidProviders)
	}
}

func (a *app) close() {
	if a.runs != nil {
		_ = a.runs.Close()
	}
}

// runOne executes the pipeline for one topic and records the run.
func (a *app) runOne(ctx context.Context, topic string, overrides config.Overrides) error {
	preset, err := config.TopicConfigFor(topic)
	if err != nil {
		return err
	}
	topicCfg := preset.Merge(overrides)

	runID, err := a.runs.RecordStart(topic, time.Now())
	if err != nil {
		logger.Warn("could not record run start", zap.Error(err))
	}

	st, runErr := a.pipeline.Run(ctx, topic, topicCfg)

	if runID != "" {
		errText := ""
		if runErr != nil {
			errText = runErr.Error()
		}
		if err := a.runs.RecordFinish(runID, time.Now(), errText,
			len(st.RawPosts), len(st.FilteredPosts), len(st.Scripts), st.OutputDir); err != nil {
			logger.Warn("could not record run finish", zap.Error(err))
		}
	}

	if runErr != nil {
		return fmt.Errorf("run failed for %s: %w", topic, runErr)
	}
	printSummary(&st)
	return nil
}

func overridesFromFlags() config.Overrides {
	var o config.Overrides
	if engagementThreshold > 0 {
		o.EngagementThreshold = &engagementThreshold
	}
	if followerThreshold > 0 {
		o.FollowerThreshold = &followerThreshold
	}
	if videoLength != "" {
		o.VideoLength = &videoLength
	}
	if tone != "" {
		o.Tone = &tone
	}
	return o
}

func runTopicCmd(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	return a.runOne(ctx, runTopic, overridesFromFlags())
}

func runAutomate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if runNow {
		for _, topic := range automateTopics {
			if err := a.runOne(ctx, topic, config.Overrides{}); err != nil {
				logger.Error("topic run failed", zap.String("topic", topic), zap.Error(err))
			}
		}
		return nil
	}

	entries := make([]schedule.Entry, 0, len(automateTopics))
	for _, topic := range automateTopics {
		preset, err := config.TopicConfigFor(topic)
		if err != nil {
			return err
		}
		entries = append(entries, schedule.Entry{
			Topic: topic,
			Day:   preset.ScheduleDay,
			At:    preset.ScheduleTime,
		})
		fmt.Printf("%s: %s at %s\n", strings.ToUpper(topic), preset.ScheduleDay, preset.ScheduleTime)
	}

	sched, err := schedule.New(entries, func(ctx context.Context, topic string) error {
		return a.runOne(ctx, topic, config.Overrides{})
	}, logger)
	if err != nil {
		return err
	}

	fmt.Println("Scheduler running. Press Ctrl+C to stop.")
	if err := sched.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func listTopics(cmd *cobra.Command, args []string) error {
	for _, name := range config.TopicNames() {
		preset, err := config.TopicConfigFor(name)
		if err != nil {
			return err
		}
		fmt.Printf("%-10s %s at %s, %s min, threshold %d\n",
			name, preset.ScheduleDay, preset.ScheduleTime, preset.VideoLength, preset.EngagementThreshold)
	}
	return nil
}

func showHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	runs, err := store.Open(cfg.Store.DatabasePath, logger)
	if err != nil {
		return err
	}
	defer runs.Close()

	recent, err := runs.RecentRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(recent) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	for _, r := range recent {
		status := "ok"
		if r.Error != "" {
			status = "failed: " + r.Error
		}
		fmt.Printf("%s  %-10s %3d raw / %2d quality / %d scripts  %s  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Topic, r.RawPosts, r.QualityPosts, r.Variants, status, r.OutputDir)
	}
	return nil
}

// printSummary renders the human-readable run recap.
func printSummary(st *pipeline.State) {
	line := strings.Repeat("=", 80)
	fmt.Println("\n" + line)
	fmt.Println("EXECUTION SUMMARY")
	fmt.Println(line)

	fmt.Printf("\nPosts Analyzed: %d\n", len(st.RawPosts))
	fmt.Printf("Quality Posts: %d\n", len(st.FilteredPosts))
	fmt.Printf("Trending Hashtags: %s\n", strings.Join(capStrings(st.TrendingHashtags, 5), ", "))
	fmt.Printf("Script Variants Generated: %d\n", len(st.Scripts))
	fmt.Printf("Media Suggestions: %d\n", len(st.MediaSuggestions))
	if st.FactChecks != nil {
		fmt.Printf("Claims Fact-Checked: %d\n", len(st.FactChecks.Checks))
	}

	if len(st.TrendingTopics) > 0 {
		fmt.Println("\nTOP TRENDING TOPICS:")
		for i, item := range capStrings(st.TrendingTopics, 5) {
			fmt.Printf("  %d. %s\n", i+1, item)
		}
	}

	if len(st.Scripts) > 0 {
		fmt.Println("\nSCRIPT VARIANTS:")
		for _, v := range st.Scripts {
			fmt.Printf("  - %s: %d words\n", v.Name, v.WordCount)
		}
	}

	if st.Deliverable != nil && len(st.Deliverable.Recommendations.UniqueAngles) > 0 {
		fmt.Println("\nUNIQUE ANGLES (not covered by competitors):")
		for _, angle := range capStrings(st.Deliverable.Recommendations.UniqueAngles, 3) {
			fmt.Printf("  - %s\n", angle)
		}
	}

	fmt.Println("\n" + line)
	fmt.Printf("COMPLETE. Outputs saved to: %s\n", st.OutputDir)
	fmt.Println(line)
}

func capStrings(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		if logger != nil {
			logger.Info("received shutdown signal")
		}
		cancel()
	}()
	return ctx, cancel
}
