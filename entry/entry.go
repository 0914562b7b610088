// Package entry defines ingested project activity records — issues, pull
// requests, and commits pulled from external sources — and their
// persistence contract. Digest generation selects entries by project,
// time window, and filter metadata.
package entry

import (
	"time"

	"github.com/tesserahq/chrona"
	"github.com/tesserahq/chrona/id"
)

// Kind identifies the external source type of an entry.
type Kind string

const (
	// KindIssue is an imported issue.
	KindIssue Kind = "issue"
	// KindPullRequest is an imported pull request.
	KindPullRequest Kind = "pull_request"
	// KindCommit is an imported commit.
	KindCommit Kind = "commit"
)

// Entry is one unit of ingested project activity.
type Entry struct {
	chrona.Entity

	ID         id.EntryID   `json:"id"`
	ProjectID  id.ProjectID `json:"project_id"`
	Kind       Kind         `json:"kind"`
	Source     string       `json:"source,omitempty"`
	ExternalID string       `json:"external_id,omitempty"`
	Title      string       `json:"title"`
	Body       string       `json:"body,omitempty"`
	Author     string       `json:"author,omitempty"`
	Tags       []string     `json:"tags,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// MatchesTags reports whether the entry carries every tag in want.
// An empty want matches everything.
func (e *Entry) MatchesTags(want []string) bool {
	if len(want) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(e.Tags))
	for _, t := range e.Tags {
		have[t] = struct{}{}
	}
	for _, t := range want {
		if _, ok := have[t]; !ok {
			return false
		}
	}
	return true
}
