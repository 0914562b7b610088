package digest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tesserahq/chrona"
	"github.com/tesserahq/chrona/entry"
	"github.com/tesserahq/chrona/id"
	"github.com/tesserahq/chrona/schedule"
)

// Materializer produces (or refreshes) exactly one digest covering the
// window mapped from an execution instant. The backfill engine treats any
// returned error as a per-instant failure.
type Materializer interface {
	Generate(ctx context.Context, configID id.ConfigID, executionTime time.Time) (*Digest, error)
}

// WindowMapper derives the coverage window for an execution instant.
// schedule.DateRangeMapper satisfies it.
type WindowMapper interface {
	Map(expression, timezone string, executionTime time.Time) (schedule.Window, error)
}

// Summarizer turns a window of entries into digest content. The production
// implementation calls an LLM; TextSummarizer is the dependency-free
// fallback used in tests and development.
type Summarizer interface {
	Summarize(ctx context.Context, cfg *ScheduleConfig, entries []*entry.Entry, win schedule.Window) (body string, err error)
}

// TextSummarizer renders a plain-text listing of entry titles grouped by
// kind. It never fails.
type TextSummarizer struct{}

// Summarize implements Summarizer.
func (TextSummarizer) Summarize(_ context.Context, _ *ScheduleConfig, entries []*entry.Entry, win schedule.Window) (string, error) {
	if len(entries) == 0 {
		return fmt.Sprintf("No activity between %s and %s.",
			win.From.Format(time.RFC3339), win.To.Format(time.RFC3339)), nil
	}

	byKind := make(map[entry.Kind][]*entry.Entry)
	for _, e := range entries {
		byKind[e.Kind] = append(byKind[e.Kind], e)
	}

	var b strings.Builder
	for _, kind := range []entry.Kind{entry.KindIssue, entry.KindPullRequest, entry.KindCommit} {
		group := byKind[kind]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s (%d):\n", kind, len(group))
		for _, e := range group {
			fmt.Fprintf(&b, "- %s\n", e.Title)
		}
	}
	return b.String(), nil
}

// Generator is the default Materializer: it resolves the config, maps the
// coverage window, selects matching entries, and persists a digest whose
// content comes from the Summarizer. The digest is created in "generating"
// status and promoted to "draft" once summarization completes; a failed
// summarization deletes the placeholder so a failed slot leaves nothing
// behind.
type Generator struct {
	configs    ConfigStore
	digests    Store
	entries    entry.Store
	summarizer Summarizer
	mapper     WindowMapper
}

// Ensure Generator satisfies Materializer at compile time.
var _ Materializer = (*Generator)(nil)

// NewGenerator creates a Generator. A nil summarizer defaults to
// TextSummarizer.
func NewGenerator(configs ConfigStore, digests Store, entries entry.Store, summarizer Summarizer, mapper WindowMapper) *Generator {
	if summarizer == nil {
		summarizer = TextSummarizer{}
	}
	return &Generator{
		configs:    configs,
		digests:    digests,
		entries:    entries,
		summarizer: summarizer,
		mapper:     mapper,
	}
}

// Generate implements Materializer.
func (g *Generator) Generate(ctx context.Context, configID id.ConfigID, executionTime time.Time) (*Digest, error) {
	cfg, err := g.configs.GetConfig(ctx, configID)
	if err != nil {
		return nil, err
	}

	win, err := g.mapper.Map(cfg.CronExpression, cfg.Timezone, executionTime)
	if err != nil {
		return nil, err
	}

	entries, err := g.entries.ListEntries(ctx, cfg.ProjectID, entry.ListOpts{
		From:  win.From,
		To:    win.To,
		Kinds: cfg.Kinds,
		Tags:  cfg.Tags,
	})
	if err != nil {
		return nil, fmt.Errorf("digest: list entries for config %s: %w", configID, err)
	}

	d := newDigestForWindow(cfg, win, len(entries))
	if err := g.digests.CreateDigest(ctx, d); err != nil {
		return nil, fmt.Errorf("digest: create digest for config %s: %w", configID, err)
	}

	body, err := g.summarizer.Summarize(ctx, cfg, entries, win)
	if err != nil {
		// Best-effort cleanup; the summarization error is the one worth
		// reporting either way.
		_ = g.digests.DeleteDigest(ctx, d.ID)
		return nil, fmt.Errorf("digest: summarize config %s: %w", configID, err)
	}

	d.Body = body
	d.Status = StatusDraft
	if err := g.digests.UpdateDigest(ctx, d); err != nil {
		return nil, fmt.Errorf("digest: finalize digest %s: %w", d.ID, err)
	}
	return d, nil
}

// newDigestForWindow builds the placeholder digest for one coverage window.
func newDigestForWindow(cfg *ScheduleConfig, win schedule.Window, entriesCount int) *Digest {
	from := win.From
	to := win.To
	return &Digest{
		Entity:       chrona.NewEntity(),
		ID:           id.NewDigestID(),
		ConfigID:     cfg.ID,
		ProjectID:    cfg.ProjectID,
		Title:        fmt.Sprintf("%s (%s)", cfg.Title, to.Format("2006-01-02")),
		FromDate:     &from,
		ToDate:       &to,
		Status:       StatusGenerating,
		EntriesCount: entriesCount,
		Tags:         cfg.Tags,
	}
}
