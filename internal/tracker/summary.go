// internal/tracker/summary.go
package tracker

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github-repo-tracker/internal/model"
)

// summarizeRange aggregates the commits of one repository over (since, until].
//
// The provider's commit listing treats the lower bound as inclusive, so commits
// at exactly since are dropped here; they were already summarized in the cycle
// that set the snapshot. An empty summary means the push carried no new commits
// (force-push, tag-only push, or provider clock skew) and the caller suppresses
// the notification.
func summarizeRange(ctx context.Context, provider Provider, logger *slog.Logger, login string, repo model.RemoteRepo, since time.Time) (*model.CommitSummary, error) {
	commits, err := provider.ListCommitsSince(ctx, login, repo.Name, since)
	if err != nil {
		return nil, err
	}

	summary := &model.CommitSummary{DefaultBranch: repo.DefaultBranch}
	for _, commit := range commits {
		if !commit.AuthorDate.After(since) {
			continue
		}
		commit.Message = firstLine(commit.Message)
		summary.Commits = append(summary.Commits, commit)
	}
	// The listing arrives newest first; stats are accumulated oldest first so
	// the last-seen status of a file is the one the newest commit gave it.
	sort.Slice(summary.Commits, func(i, j int) bool {
		return summary.Commits[i].AuthorDate.Before(summary.Commits[j].AuthorDate)
	})

	fileStatus := make(map[string]model.FileStatus)
	for _, commit := range summary.Commits {
		stats, err := provider.GetCommitStats(ctx, login, repo.Name, commit.SHA)
		if err != nil {
			// One bad commit must not suppress the whole update; the
			// totals are best-effort over the commits that succeeded.
			logger.Warn("Failed to fetch commit stats", "repo", repo.Name, "sha", commit.SHA, "error", err)
			summary.BestEffort = true
			continue
		}

		summary.Additions += stats.Additions
		summary.Deletions += stats.Deletions
		for _, f := range stats.Files {
			fileStatus[f.Filename] = f.Status
		}
	}

	filenames := make([]string, 0, len(fileStatus))
	for name := range fileStatus {
		filenames = append(filenames, name)
	}
	sort.Strings(filenames)
	for _, name := range filenames {
		summary.Files = append(summary.Files, model.FileChange{Filename: name, Status: fileStatus[name]})
	}

	return summary, nil
}

func firstLine(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		return message[:i]
	}
	return message
}
