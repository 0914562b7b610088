package entry

import (
	"context"
	"time"

	"github.com/tesserahq/chrona/id"
)

// ListOpts filters entry listings. Zero-value fields are ignored.
type ListOpts struct {
	// From/To bound OccurredAt: From inclusive, To exclusive.
	From time.Time
	To   time.Time

	// Kinds restricts results to the given kinds (empty = all).
	Kinds []Kind

	// Tags requires every listed tag to be present on the entry.
	Tags []string

	Limit  int
	Offset int
}

// Store defines the persistence contract for entries.
type Store interface {
	// CreateEntry persists a new entry.
	CreateEntry(ctx context.Context, e *Entry) error

	// GetEntry retrieves an entry by ID.
	GetEntry(ctx context.Context, entryID id.EntryID) (*Entry, error)

	// ListEntries returns a project's entries matching the given options,
	// ordered by OccurredAt ascending.
	ListEntries(ctx context.Context, projectID id.ProjectID, opts ListOpts) ([]*Entry, error)

	// DeleteEntry removes an entry by ID.
	DeleteEntry(ctx context.Context, entryID id.EntryID) error
}
