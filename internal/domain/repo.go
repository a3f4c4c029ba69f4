// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"fmt"
	"strings"
)

// Window is a growth window measured in days (7, 30, 90, ...).
type Window int

// ColumnID is the stable identifier of the growth column for this window.
func (w Window) ColumnID() string { return fmt.Sprintf("Growth%d", int(w)) }

// String renders the window the way column headers show it, e.g. "30d".
func (w Window) String() string { return fmt.Sprintf("%dd", int(w)) }

// DefaultWindows are the windows the snapshot pipeline produces.
var DefaultWindows = []Window{7, 30, 90}

// GrowthValue is the star change of a repository within one window.
// Baseline is never negative, Added may be.
type GrowthValue struct {
	Baseline int64 `json:"baseline"`
	Added    int64 `json:"added"`
}

// Fields exposes the value as a uniform numeric object, used by grouped aggregation.
func (g GrowthValue) Fields() map[string]int64 {
	return map[string]int64{"baseline": g.Baseline, "added": g.Added}
}

// GrowthFromFields is the inverse of Fields.
func GrowthFromFields(m map[string]int64) GrowthValue {
	return GrowthValue{Baseline: m["baseline"], Added: m["added"]}
}

// Repo is a normalized repository record as the dashboard consumes it.
// Data holds one entry per window of the active column model; a nil entry is
// a null growth.
type Repo struct {
	Name        string                  `json:"name"`
	Stars       int64                   `json:"stars"`
	Language    string                  `json:"language"`
	Topics      string                  `json:"topics,omitempty"`
	Description string                  `json:"description"`
	Data        map[Window]*GrowthValue `json:"data"`
}

// SplitName splits "owner/repo". A name without a slash is returned as the repo part.
func SplitName(name string) (owner, repo string) {
	owner, repo, ok := strings.Cut(name, "/")
	if !ok {
		return "", name
	}
	return owner, repo
}

// RepoInfo holds the GitHub metadata of a repository.
type RepoInfo struct {
	Stars       int64    `json:"stars"`
	Language    string   `json:"language"`
	Topics      []string `json:"topics"`
	Description string   `json:"description"`
}

// RepoGrowth holds raw WatchEvent counts of one repository, keyed by window.
type RepoGrowth struct {
	Name     string
	Added    map[Window]int64
	Baseline map[Window]int64
}
