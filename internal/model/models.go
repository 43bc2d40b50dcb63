// internal/model/models.go
package model

import (
	"time"
)

// TrackedAccount is a GitHub account whose repositories are monitored within one domain
// (e.g. one chat server). Login is the canonical form returned by the provider.
type TrackedAccount struct {
	ID          int64
	DomainID    string
	Login       string
	AvatarURL   string
	ProfileURL  string
	DBCreatedAt time.Time
}

// RepoSnapshot is the last observed push timestamp for one repository of a tracked
// account. At most one snapshot exists per (account, repo name) pair.
type RepoSnapshot struct {
	AccountID    int64
	RepoName     string
	LastPushedAt time.Time
}

// RemoteRepo is the provider's current view of a repository. PushedAt is always UTC.
type RemoteRepo struct {
	Name          string
	PushedAt      time.Time
	HTMLURL       string
	Description   string
	Language      string
	Private       bool
	DefaultBranch string
}

// Commit is a single commit descriptor inside a summary.
type Commit struct {
	SHA        string
	Message    string
	AuthorDate time.Time
	HTMLURL    string
}

// FileStatus tags how a commit touched a file.
type FileStatus string

const (
	FileAdded    FileStatus = "added"
	FileModified FileStatus = "modified"
	FileRemoved  FileStatus = "removed"
)

// FileChange is one touched file with its last-seen status in the range.
type FileChange struct {
	Filename string
	Status   FileStatus
}

// CommitStats holds per-commit diff statistics.
type CommitStats struct {
	Additions int
	Deletions int
	Files     []FileChange
}

// CommitSummary aggregates all commits in an update's range. Commits are ordered by
// author date ascending; Files is deduplicated by filename. Totals cover the whole
// range, not just what a renderer chooses to display. BestEffort marks summaries
// where stats for one or more commits could not be fetched.
type CommitSummary struct {
	Commits       []Commit
	Additions     int
	Deletions     int
	Files         []FileChange
	DefaultBranch string
	BestEffort    bool
}

// NotificationKind discriminates the Notification variants.
type NotificationKind string

const (
	RepoCreated NotificationKind = "created"
	RepoUpdated NotificationKind = "updated"
	RepoDeleted NotificationKind = "deleted"
)

// Notification is an ephemeral change event handed to the sink exactly once.
// Repo and Summary are set for created/updated; a deleted event carries only RepoName.
type Notification struct {
	Kind             NotificationKind
	AccountLogin     string
	AccountAvatarURL string
	AccountURL       string
	RepoName         string
	Repo             *RemoteRepo
	Summary          *CommitSummary
	PreviousPushedAt time.Time
}
