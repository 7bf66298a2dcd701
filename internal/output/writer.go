// Package output persists a finished pipeline run as an organized
// directory of scripts, analysis JSON and editor-facing reference files.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"scriptforge/internal/pipeline"
)

// Writer saves deliverables under a base directory, one timestamped
// subdirectory per run.
type Writer struct {
	baseDir string
	log     *zap.Logger
	now     func() time.Time
}

// NewWriter creates a Writer rooted at baseDir.
func NewWriter(baseDir string, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{baseDir: baseDir, log: logger, now: time.Now}
}

// WithClock overrides the timestamp source. Test hook.
func (w *Writer) WithClock(now func() time.Time) *Writer {
	w.now = now
	return w
}

// Persist writes every artifact of the run and returns the directory it
// created.
func (w *Writer) Persist(st *pipeline.State) (string, error) {
	stamp := w.now().Format("20060102_150405")
	dir := filepath.Join(w.baseDir, fmt.Sprintf("%s_%s", st.Topic, stamp))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	for i, variant := range st.Scripts {
		name := fmt.Sprintf("script_%d_%s.txt", i+1, slug(variant.Name))
		body := fmt.Sprintf("=== %s Variant ===\n%s\nWord Count: %d\n\n%s",
			variant.Name, variant.Description, variant.WordCount, variant.Script)
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			return "", fmt.Errorf("writing %s: %w", name, err)
		}
	}

	if err := w.writeJSON(filepath.Join(dir, "media_suggestions.json"), st.MediaSuggestions); err != nil {
		return "", err
	}
	if st.Deliverable != nil {
		if err := w.writeJSON(filepath.Join(dir, "analysis_summary.json"), st.Deliverable); err != nil {
			return "", err
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "top_tweets.txt"), []byte(topPostsReport(st)), 0o644); err != nil {
		return "", fmt.Errorf("writing top_tweets.txt: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "variant_comparison.txt"), []byte(comparisonReport(st.Scripts)), 0o644); err != nil {
		return "", fmt.Errorf("writing variant_comparison.txt: %w", err)
	}

	w.log.Info("run artifacts written",
		zap.String("dir", dir), zap.Int("scripts", len(st.Scripts)))
	return dir, nil
}

func (w *Writer) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// topPostsReport renders the reference list editors pull quotes from.
func topPostsReport(st *pipeline.State) string {
	var b strings.Builder
	b.WriteString("=== TOP 20 POSTS TO REFERENCE ===\n\n")

	posts := st.FilteredPosts
	if len(posts) > 20 {
		posts = posts[:20]
	}
	for i, post := range posts {
		fmt.Fprintf(&b, "%d. @%s (%d engagement)\n", i+1, post.AuthorUsername, post.TotalEngagement)
		fmt.Fprintf(&b, "   %s\n", post.Text)
		fmt.Fprintf(&b, "   %s\n", post.PostURL)
		if post.FactCheck != nil {
			fmt.Fprintf(&b, "   FACT-CHECK: %s\n", post.FactCheck.Recommendation)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func comparisonReport(variants []pipeline.ScriptVariant) string {
	var b strings.Builder
	b.WriteString("=== SCRIPT VARIANT COMPARISON ===\n\n")
	for _, v := range variants {
		fmt.Fprintf(&b, "## %s\n", v.Name)
		fmt.Fprintf(&b, "Description: %s\n", v.Description)
		fmt.Fprintf(&b, "Word Count: %d\n", v.WordCount)
		b.WriteString("Best For: General audience\n\n")
	}
	return b.String()
}

func slug(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
