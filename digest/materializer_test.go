package digest_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tesserahq/chrona"
	"github.com/tesserahq/chrona/digest"
	"github.com/tesserahq/chrona/entry"
	"github.com/tesserahq/chrona/id"
	"github.com/tesserahq/chrona/schedule"
	"github.com/tesserahq/chrona/store/memory"
)

func seedConfig(t *testing.T, s *memory.Store, kinds []entry.Kind, tags []string) *digest.ScheduleConfig {
	t.Helper()
	cfg := &digest.ScheduleConfig{
		Entity:         chrona.NewEntity(),
		ID:             id.NewConfigID(),
		ProjectID:      id.NewProjectID(),
		Title:          "daily digest",
		CronExpression: "0 10 * * *",
		Timezone:       "UTC",
		Kinds:          kinds,
		Tags:           tags,
		Enabled:        true,
	}
	if err := s.CreateConfig(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func seedEntry(t *testing.T, s *memory.Store, projectID id.ProjectID, kind entry.Kind, title string, occurredAt time.Time, tags ...string) {
	t.Helper()
	e := &entry.Entry{
		Entity:     chrona.NewEntity(),
		ID:         id.NewEntryID(),
		ProjectID:  projectID,
		Kind:       kind,
		Title:      title,
		Tags:       tags,
		OccurredAt: occurredAt,
	}
	if err := s.CreateEntry(context.Background(), e); err != nil {
		t.Fatal(err)
	}
}

func TestGeneratorGenerate(t *testing.T) {
	t.Parallel()
	s := memory.New()
	ctx := context.Background()

	cfg := seedConfig(t, s, nil, nil)
	executionTime := time.Date(2023, 10, 10, 10, 0, 0, 0, time.UTC)
	windowStart := executionTime.AddDate(0, 0, -1)

	seedEntry(t, s, cfg.ProjectID, entry.KindIssue, "fix login flow", windowStart.Add(time.Hour))
	seedEntry(t, s, cfg.ProjectID, entry.KindCommit, "refactor session cache", windowStart.Add(2*time.Hour))
	// Outside the window: before the previous fire.
	seedEntry(t, s, cfg.ProjectID, entry.KindIssue, "stale issue", windowStart.Add(-time.Hour))

	g := digest.NewGenerator(s, s, s, nil, schedule.NewDateRangeMapper(nil))
	d, err := g.Generate(ctx, cfg.ID, executionTime)
	if err != nil {
		t.Fatal(err)
	}

	if d.Status != digest.StatusDraft {
		t.Fatalf("status = %q, want %q", d.Status, digest.StatusDraft)
	}
	if d.EntriesCount != 2 {
		t.Fatalf("entries count = %d, want 2", d.EntriesCount)
	}
	if d.FromDate == nil || !d.FromDate.Equal(windowStart) {
		t.Fatalf("FromDate = %v, want %v", d.FromDate, windowStart)
	}
	if d.ToDate == nil || !d.ToDate.Equal(executionTime) {
		t.Fatalf("ToDate = %v, want %v", d.ToDate, executionTime)
	}
	if !strings.Contains(d.Body, "fix login flow") || !strings.Contains(d.Body, "refactor session cache") {
		t.Fatalf("body missing entry titles: %q", d.Body)
	}
	if strings.Contains(d.Body, "stale issue") {
		t.Fatalf("body includes out-of-window entry: %q", d.Body)
	}

	// The digest is persisted, not just returned.
	stored, err := s.GetDigest(ctx, d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != digest.StatusDraft {
		t.Fatalf("stored status = %q, want %q", stored.Status, digest.StatusDraft)
	}
}

func TestGeneratorAppliesConfigFilters(t *testing.T) {
	t.Parallel()
	s := memory.New()
	ctx := context.Background()

	cfg := seedConfig(t, s, []entry.Kind{entry.KindPullRequest}, []string{"backend"})
	executionTime := time.Date(2023, 10, 10, 10, 0, 0, 0, time.UTC)
	inWindow := executionTime.Add(-time.Hour)

	seedEntry(t, s, cfg.ProjectID, entry.KindPullRequest, "matching pr", inWindow, "backend")
	seedEntry(t, s, cfg.ProjectID, entry.KindPullRequest, "untagged pr", inWindow)
	seedEntry(t, s, cfg.ProjectID, entry.KindIssue, "backend issue", inWindow, "backend")

	g := digest.NewGenerator(s, s, s, nil, schedule.NewDateRangeMapper(nil))
	d, err := g.Generate(ctx, cfg.ID, executionTime)
	if err != nil {
		t.Fatal(err)
	}

	if d.EntriesCount != 1 {
		t.Fatalf("entries count = %d, want 1", d.EntriesCount)
	}
	if !strings.Contains(d.Body, "matching pr") {
		t.Fatalf("body = %q", d.Body)
	}
}

type failingSummarizer struct{}

func (failingSummarizer) Summarize(context.Context, *digest.ScheduleConfig, []*entry.Entry, schedule.Window) (string, error) {
	return "", errors.New("model overloaded")
}

func TestGeneratorSummarizerFailure(t *testing.T) {
	t.Parallel()
	s := memory.New()
	ctx := context.Background()

	cfg := seedConfig(t, s, nil, nil)
	executionTime := time.Date(2023, 10, 10, 10, 0, 0, 0, time.UTC)

	g := digest.NewGenerator(s, s, s, failingSummarizer{}, schedule.NewDateRangeMapper(nil))
	_, err := g.Generate(ctx, cfg.ID, executionTime)
	if err == nil || !strings.Contains(err.Error(), "model overloaded") {
		t.Fatalf("expected summarizer error, got %v", err)
	}

	// The generating-status placeholder must not survive the failure.
	remaining, listErr := s.ListDigestsByConfig(ctx, cfg.ID)
	if listErr != nil {
		t.Fatal(listErr)
	}
	if len(remaining) != 0 {
		t.Fatalf("placeholder digest left behind: %d stored", len(remaining))
	}
}

func TestGeneratorConfigNotFound(t *testing.T) {
	t.Parallel()
	s := memory.New()

	g := digest.NewGenerator(s, s, s, nil, schedule.NewDateRangeMapper(nil))
	_, err := g.Generate(context.Background(), id.NewConfigID(), time.Now().UTC())
	if !errors.Is(err, chrona.ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestTextSummarizerEmptyWindow(t *testing.T) {
	t.Parallel()

	win := schedule.Window{
		From: time.Date(2023, 10, 9, 10, 0, 0, 0, time.UTC),
		To:   time.Date(2023, 10, 10, 10, 0, 0, 0, time.UTC),
	}
	body, err := digest.TextSummarizer{}.Summarize(context.Background(), nil, nil, win)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(body, "No activity") {
		t.Fatalf("body = %q", body)
	}
}

func TestCovers(t *testing.T) {
	t.Parallel()

	from := time.Date(2023, 10, 9, 10, 0, 0, 0, time.UTC)
	to := time.Date(2023, 10, 10, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		d    *digest.Digest
		from time.Time
		to   time.Time
		want bool
	}{
		{
			name: "identical window",
			d:    &digest.Digest{FromDate: &from, ToDate: &to},
			from: from, to: to,
			want: true,
		},
		{
			// Consecutive schedule windows share a boundary instant; that
			// alone is not overlap, or a backfill would skip them.
			name: "touching at upper bound",
			d:    &digest.Digest{FromDate: &from, ToDate: &to},
			from: to, to: to.Add(24 * time.Hour),
			want: false,
		},
		{
			name: "touching at lower bound",
			d:    &digest.Digest{FromDate: &from, ToDate: &to},
			from: from.Add(-24 * time.Hour), to: from,
			want: false,
		},
		{
			name: "partial overlap",
			d:    &digest.Digest{FromDate: &from, ToDate: &to},
			from: from.Add(12 * time.Hour), to: to.Add(12 * time.Hour),
			want: true,
		},
		{
			name: "contained window",
			d:    &digest.Digest{FromDate: &from, ToDate: &to},
			from: from.Add(time.Hour), to: to.Add(-time.Hour),
			want: true,
		},
		{
			name: "disjoint after",
			d:    &digest.Digest{FromDate: &from, ToDate: &to},
			from: to.Add(time.Minute), to: to.Add(24 * time.Hour),
			want: false,
		},
		{
			name: "disjoint before",
			d:    &digest.Digest{FromDate: &from, ToDate: &to},
			from: from.Add(-24 * time.Hour), to: from.Add(-time.Minute),
			want: false,
		},
		{
			name: "nil from never overlaps",
			d:    &digest.Digest{ToDate: &to},
			from: from, to: to,
			want: false,
		},
		{
			name: "nil to never overlaps",
			d:    &digest.Digest{FromDate: &from},
			from: from, to: to,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.Covers(tt.from, tt.to); got != tt.want {
				t.Fatalf("Covers(%v, %v) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
