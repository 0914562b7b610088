//go:build integration

package bunstore_test

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/tesserahq/chrona"
	"github.com/tesserahq/chrona/digest"
	"github.com/tesserahq/chrona/entry"
	"github.com/tesserahq/chrona/id"
	bunstore "github.com/tesserahq/chrona/store/bun"
)

// setupTestStore creates a Postgres container and returns a connected Bun Store.
func setupTestStore(t *testing.T) *bunstore.Store {
	t.Helper()

	ctx := context.Background()

	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("chrona_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if termErr := container.Terminate(ctx); termErr != nil {
			t.Logf("terminate container: %v", termErr)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	// Create Bun DB from pgdriver.
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
	db := bun.NewDB(sqldb, pgdialect.New())

	t.Cleanup(func() {
		_ = db.Close()
	})

	store := bunstore.New(db, bunstore.WithLogger(slog.Default()))

	if migErr := store.Migrate(ctx); migErr != nil {
		t.Fatalf("migrate: %v", migErr)
	}

	return store
}

func newTestConfig(projectID id.ProjectID) *digest.ScheduleConfig {
	return &digest.ScheduleConfig{
		Entity:         chrona.NewEntity(),
		ID:             id.NewConfigID(),
		ProjectID:      projectID,
		Title:          "Weekly Digest",
		CronExpression: "0 10 * * *",
		Timezone:       "UTC",
		Tags:           []string{"release"},
		Kinds:          []entry.Kind{entry.KindIssue, entry.KindCommit},
		Enabled:        true,
	}
}

// ──────────────────────────────────────────────────
// Lifecycle tests
// ──────────────────────────────────────────────────

func TestStore_Ping(t *testing.T) {
	s := setupTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestStore_MigrateIdempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	// Second migrate should be a no-op.
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
}

// ──────────────────────────────────────────────────
// Config Store tests
// ──────────────────────────────────────────────────

func TestConfigStore_CreateAndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	cfg := newTestConfig(id.NewProjectID())
	if err := s.CreateConfig(ctx, cfg); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetConfig(ctx, cfg.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CronExpression != "0 10 * * *" {
		t.Fatalf("expected cron expression preserved, got %s", got.CronExpression)
	}
	if len(got.Kinds) != 2 {
		t.Fatalf("expected 2 kinds, got %d", len(got.Kinds))
	}

	if _, missErr := s.GetConfig(ctx, id.NewConfigID()); !errors.Is(missErr, chrona.ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got: %v", missErr)
	}
}

func TestConfigStore_ListByProject(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	projectID := id.NewProjectID()
	for i := 0; i < 3; i++ {
		if err := s.CreateConfig(ctx, newTestConfig(projectID)); err != nil {
			t.Fatalf("create config %d: %v", i, err)
		}
	}
	// A config in another project must not leak into the listing.
	if err := s.CreateConfig(ctx, newTestConfig(id.NewProjectID())); err != nil {
		t.Fatalf("create other config: %v", err)
	}

	configs, err := s.ListConfigsByProject(ctx, projectID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(configs) != 3 {
		t.Fatalf("expected 3 configs, got %d", len(configs))
	}
}

// ──────────────────────────────────────────────────
// Digest Store tests
// ──────────────────────────────────────────────────

func TestDigestStore_DuplicateWindow(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	cfg := newTestConfig(id.NewProjectID())
	if err := s.CreateConfig(ctx, cfg); err != nil {
		t.Fatalf("create config: %v", err)
	}

	from := time.Date(2023, 10, 9, 10, 0, 0, 0, time.UTC)
	to := time.Date(2023, 10, 10, 10, 0, 0, 0, time.UTC)

	d := &digest.Digest{
		Entity:    chrona.NewEntity(),
		ID:        id.NewDigestID(),
		ConfigID:  cfg.ID,
		ProjectID: cfg.ProjectID,
		Title:     "Weekly Digest (2023-10-10)",
		FromDate:  &from,
		ToDate:    &to,
		Status:    digest.StatusDraft,
	}
	if err := s.CreateDigest(ctx, d); err != nil {
		t.Fatalf("create digest: %v", err)
	}

	dup := &digest.Digest{
		Entity:    chrona.NewEntity(),
		ID:        id.NewDigestID(),
		ConfigID:  cfg.ID,
		ProjectID: cfg.ProjectID,
		Title:     "Weekly Digest (2023-10-10)",
		FromDate:  &from,
		ToDate:    &to,
		Status:    digest.StatusDraft,
	}
	if err := s.CreateDigest(ctx, dup); !errors.Is(err, chrona.ErrDuplicateDigest) {
		t.Fatalf("expected ErrDuplicateDigest, got: %v", err)
	}
}

func TestDigestStore_UpdateAndDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	cfg := newTestConfig(id.NewProjectID())
	if err := s.CreateConfig(ctx, cfg); err != nil {
		t.Fatalf("create config: %v", err)
	}

	from := time.Date(2023, 10, 9, 10, 0, 0, 0, time.UTC)
	to := time.Date(2023, 10, 10, 10, 0, 0, 0, time.UTC)
	d := &digest.Digest{
		Entity:    chrona.NewEntity(),
		ID:        id.NewDigestID(),
		ConfigID:  cfg.ID,
		ProjectID: cfg.ProjectID,
		Title:     "Weekly Digest (2023-10-10)",
		FromDate:  &from,
		ToDate:    &to,
		Status:    digest.StatusGenerating,
	}
	if err := s.CreateDigest(ctx, d); err != nil {
		t.Fatalf("create digest: %v", err)
	}

	d.Status = digest.StatusDraft
	d.Body = "summary"
	if err := s.UpdateDigest(ctx, d); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := s.GetDigest(ctx, d.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != digest.StatusDraft || got.Body != "summary" {
		t.Fatalf("update not persisted: status=%s body=%q", got.Status, got.Body)
	}

	if err := s.DeleteDigest(ctx, d.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetDigest(ctx, d.ID); !errors.Is(err, chrona.ErrDigestNotFound) {
		t.Fatalf("expected ErrDigestNotFound after delete, got: %v", err)
	}
}

// ──────────────────────────────────────────────────
// Entry Store tests
// ──────────────────────────────────────────────────

func TestEntryStore_ListByWindow(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	projectID := id.NewProjectID()
	base := time.Date(2023, 10, 9, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		e := &entry.Entry{
			Entity:     chrona.NewEntity(),
			ID:         id.NewEntryID(),
			ProjectID:  projectID,
			Kind:       entry.KindIssue,
			Title:      "issue",
			Tags:       []string{"release"},
			OccurredAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.CreateEntry(ctx, e); err != nil {
			t.Fatalf("create entry %d: %v", i, err)
		}
	}

	// Window [base+1h, base+3h) — From inclusive, To exclusive.
	entries, err := s.ListEntries(ctx, projectID, entry.ListOpts{
		From: base.Add(time.Hour),
		To:   base.Add(3 * time.Hour),
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries in window, got %d", len(entries))
	}
	if !entries[0].OccurredAt.Before(entries[1].OccurredAt) {
		t.Fatal("expected entries ordered by occurred_at ascending")
	}

	// Tag filter excludes entries without the tag.
	tagged, err := s.ListEntries(ctx, projectID, entry.ListOpts{Tags: []string{"missing"}})
	if err != nil {
		t.Fatalf("list tagged: %v", err)
	}
	if len(tagged) != 0 {
		t.Fatalf("expected 0 tagged entries, got %d", len(tagged))
	}
}
