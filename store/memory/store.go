package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tesserahq/chrona"
	"github.com/tesserahq/chrona/digest"
	"github.com/tesserahq/chrona/entry"
	"github.com/tesserahq/chrona/id"
)

// Ensure Store implements store.Store at compile time.
// We can't import store here (import cycle), so we verify each subsystem.
var (
	_ digest.ConfigStore = (*Store)(nil)
	_ digest.Store       = (*Store)(nil)
	_ entry.Store        = (*Store)(nil)
)

// Store is a fully in-memory implementation of store.Store.
// Safe for concurrent access. Intended for unit testing and development.
type Store struct {
	mu sync.RWMutex

	configs map[string]*digest.ScheduleConfig
	digests map[string]*digest.Digest
	entries map[string]*entry.Entry
}

// New returns a new empty Store.
func New() *Store {
	return &Store{
		configs: make(map[string]*digest.ScheduleConfig),
		digests: make(map[string]*digest.Digest),
		entries: make(map[string]*entry.Entry),
	}
}

// ──────────────────────────────────────────────────
// Lifecycle — Migrate / Ping / Close
// ──────────────────────────────────────────────────

// Migrate is a no-op for the memory store.
func (m *Store) Migrate(_ context.Context) error { return nil }

// Ping always succeeds for the memory store.
func (m *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (m *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Config Store
// ──────────────────────────────────────────────────

// CreateConfig persists a new schedule config.
func (m *Store) CreateConfig(_ context.Context, cfg *digest.ScheduleConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *cfg
	m.configs[cfg.ID.String()] = &cp
	return nil
}

// GetConfig retrieves a schedule config by ID.
func (m *Store) GetConfig(_ context.Context, configID id.ConfigID) (*digest.ScheduleConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg, ok := m.configs[configID.String()]
	if !ok {
		return nil, chrona.ErrConfigNotFound
	}
	cp := *cfg
	return &cp, nil
}

// ListConfigsByProject returns all schedule configs for a project.
func (m *Store) ListConfigsByProject(_ context.Context, projectID id.ProjectID) ([]*digest.ScheduleConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*digest.ScheduleConfig, 0, len(m.configs))
	for _, cfg := range m.configs {
		if cfg.ProjectID != projectID {
			continue
		}
		cp := *cfg
		result = append(result, &cp)
	}

	// Sort by CreatedAt for deterministic output.
	sort.Slice(result, func(i, k int) bool {
		return result[i].CreatedAt.Before(result[k].CreatedAt)
	})

	return result, nil
}

// UpdateConfig persists changes to an existing schedule config.
func (m *Store) UpdateConfig(_ context.Context, cfg *digest.ScheduleConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := cfg.ID.String()
	if _, ok := m.configs[key]; !ok {
		return chrona.ErrConfigNotFound
	}
	cp := *cfg
	cp.UpdatedAt = time.Now().UTC()
	m.configs[key] = &cp
	return nil
}

// DeleteConfig removes a schedule config by ID.
func (m *Store) DeleteConfig(_ context.Context, configID id.ConfigID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := configID.String()
	if _, ok := m.configs[key]; !ok {
		return chrona.ErrConfigNotFound
	}
	delete(m.configs, key)
	return nil
}

// ──────────────────────────────────────────────────
// Digest Store
// ──────────────────────────────────────────────────

// CreateDigest persists a new digest. A digest with the same config and
// identical window bounds as an existing one is rejected, mirroring the
// unique (config_id, from_date, to_date) index of the SQL backends.
func (m *Store) CreateDigest(_ context.Context, d *digest.Digest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d.FromDate != nil && d.ToDate != nil {
		for _, existing := range m.digests {
			if existing.ConfigID != d.ConfigID {
				continue
			}
			if existing.FromDate == nil || existing.ToDate == nil {
				continue
			}
			if existing.FromDate.Equal(*d.FromDate) && existing.ToDate.Equal(*d.ToDate) {
				return chrona.ErrDuplicateDigest
			}
		}
	}

	cp := *d
	m.digests[d.ID.String()] = &cp
	return nil
}

// GetDigest retrieves a digest by ID.
func (m *Store) GetDigest(_ context.Context, digestID id.DigestID) (*digest.Digest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.digests[digestID.String()]
	if !ok {
		return nil, chrona.ErrDigestNotFound
	}
	cp := *d
	return &cp, nil
}

// ListDigestsByConfig returns all digests for a schedule config, ordered by
// creation time ascending.
func (m *Store) ListDigestsByConfig(_ context.Context, configID id.ConfigID) ([]*digest.Digest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*digest.Digest, 0, len(m.digests))
	for _, d := range m.digests {
		if d.ConfigID != configID {
			continue
		}
		cp := *d
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, k int) bool {
		return result[i].CreatedAt.Before(result[k].CreatedAt)
	})

	return result, nil
}

// UpdateDigest persists changes to an existing digest.
func (m *Store) UpdateDigest(_ context.Context, d *digest.Digest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := d.ID.String()
	if _, ok := m.digests[key]; !ok {
		return chrona.ErrDigestNotFound
	}
	cp := *d
	cp.UpdatedAt = time.Now().UTC()
	m.digests[key] = &cp
	return nil
}

// DeleteDigest removes a digest by ID.
func (m *Store) DeleteDigest(_ context.Context, digestID id.DigestID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := digestID.String()
	if _, ok := m.digests[key]; !ok {
		return chrona.ErrDigestNotFound
	}
	delete(m.digests, key)
	return nil
}

// ──────────────────────────────────────────────────
// Entry Store
// ──────────────────────────────────────────────────

// CreateEntry persists a new entry.
func (m *Store) CreateEntry(_ context.Context, e *entry.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *e
	m.entries[e.ID.String()] = &cp
	return nil
}

// GetEntry retrieves an entry by ID.
func (m *Store) GetEntry(_ context.Context, entryID id.EntryID) (*entry.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[entryID.String()]
	if !ok {
		return nil, chrona.ErrEntryNotFound
	}
	cp := *e
	return &cp, nil
}

// ListEntries returns a project's entries matching the given options,
// ordered by OccurredAt ascending.
func (m *Store) ListEntries(_ context.Context, projectID id.ProjectID, opts entry.ListOpts) ([]*entry.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	kindSet := make(map[entry.Kind]struct{}, len(opts.Kinds))
	for _, k := range opts.Kinds {
		kindSet[k] = struct{}{}
	}

	result := make([]*entry.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		if e.ProjectID != projectID {
			continue
		}
		if !opts.From.IsZero() && e.OccurredAt.Before(opts.From) {
			continue
		}
		if !opts.To.IsZero() && !e.OccurredAt.Before(opts.To) {
			continue
		}
		if len(kindSet) > 0 {
			if _, ok := kindSet[e.Kind]; !ok {
				continue
			}
		}
		if !e.MatchesTags(opts.Tags) {
			continue
		}
		cp := *e
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, k int) bool {
		return result[i].OccurredAt.Before(result[k].OccurredAt)
	})

	// Apply offset / limit.
	if opts.Offset > 0 {
		if opts.Offset >= len(result) {
			return nil, nil
		}
		result = result[opts.Offset:]
	}
	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}

	return result, nil
}

// DeleteEntry removes an entry by ID.
func (m *Store) DeleteEntry(_ context.Context, entryID id.EntryID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := entryID.String()
	if _, ok := m.entries[key]; !ok {
		return chrona.ErrEntryNotFound
	}
	delete(m.entries, key)
	return nil
}
