package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"scriptforge/internal/config"
	"scriptforge/internal/llm"
	"scriptforge/internal/social"
)

// Persister writes the compiled deliverable to disk and returns the
// directory it wrote to.
type Persister interface {
	Persist(st *State) (string, error)
}

// Stage is one named transformation step.
type Stage struct {
	Name string
	Run  func(ctx context.Context, st State) State
}

// Pipeline wires the collaborators into the fixed stage sequence.
type Pipeline struct {
	search social.Client
	llm    llm.Client
	writer Persister
	log    *zap.Logger
	now    func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the pipeline's time source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithPersister sets the deliverable writer. Without one the persist stage
// is skipped.
func WithPersister(w Persister) Option {
	return func(p *Pipeline) { p.writer = w }
}

// New creates a pipeline over the given collaborators.
func New(search social.Client, completer llm.Client, logger *zap.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{
		search: search,
		llm:    completer,
		log:    logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stages returns the fixed stage sequence.
func (p *Pipeline) Stages() []Stage {
	return []Stage{
		{Name: "discover", Run: p.discover},
		{Name: "scrape", Run: p.scrape},
		{Name: "filter", Run: p.filter},
		{Name: "competitors", Run: p.competitors},
		{Name: "comments", Run: p.comments},
		{Name: "factcheck", Run: p.factCheck},
		{Name: "sentiment", Run: p.sentiment},
		{Name: "media", Run: p.media},
		{Name: "scripts", Run: p.scripts},
		{Name: "compile", Run: p.compile},
		{Name: "persist", Run: p.persist},
	}
}

// Run executes all stages in order for one topic. Every stage runs, but
// after the first fatal error each remaining stage is a passthrough; only
// the original error is surfaced.
func (p *Pipeline) Run(ctx context.Context, topic string, cfg config.TopicConfig) (State, error) {
	st := NewState(topic, cfg)
	p.log.Info("pipeline starting", zap.String("topic", topic))

	for _, stage := range p.Stages() {
		start := p.now()
		st = stage.Run(ctx, st)
		p.log.Debug("stage finished",
			zap.String("stage", stage.Name),
			zap.Duration("elapsed", p.now().Sub(start)),
			zap.Bool("errored", st.Err != ""))
	}

	if st.Err != "" {
		p.log.Error("pipeline failed", zap.String("topic", topic), zap.String("error", st.Err))
		return st, errors.New(st.Err)
	}

	p.log.Info("pipeline complete",
		zap.String("topic", topic),
		zap.Int("raw_posts", len(st.RawPosts)),
		zap.Int("quality_posts", len(st.FilteredPosts)),
		zap.Int("script_variants", len(st.Scripts)))
	return st, nil
}
