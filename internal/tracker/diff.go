// internal/tracker/diff.go
package tracker

import (
	"sort"
	"time"

	"github-repo-tracker/internal/model"
)

// repoUpdate pairs an updated repository with the baseline it moved from.
// The commit range to summarize is (PreviousPushedAt, Repo.PushedAt].
type repoUpdate struct {
	Repo             model.RemoteRepo
	PreviousPushedAt time.Time
}

// changes is the outcome of diffing the provider's current listing against the
// persisted snapshot set of one account. Each group is sorted by repository
// name so results never depend on map iteration order.
type changes struct {
	Deleted []string
	Created []model.RemoteRepo
	Updated []repoUpdate
}

// empty reports whether the diff produced no events at all.
func (c changes) empty() bool {
	return len(c.Deleted) == 0 && len(c.Created) == 0 && len(c.Updated) == 0
}

// upserts returns the snapshot rows to persist for this change set: new
// snapshots for created repos and advanced timestamps for updated ones.
func (c changes) upserts(accountID int64) []model.RepoSnapshot {
	var snaps []model.RepoSnapshot
	for _, repo := range c.Created {
		snaps = append(snaps, model.RepoSnapshot{
			AccountID:    accountID,
			RepoName:     repo.Name,
			LastPushedAt: repo.PushedAt,
		})
	}
	for _, upd := range c.Updated {
		snaps = append(snaps, model.RepoSnapshot{
			AccountID:    accountID,
			RepoName:     upd.Repo.Name,
			LastPushedAt: upd.Repo.PushedAt,
		})
	}
	return snaps
}

// diffRepos computes created/updated/deleted events for one account.
//
// A repository counts as updated only under strict timestamp advancement:
// equal timestamps must never re-notify across consecutive cycles. Both sides
// are compared in UTC.
func diffRepos(current []model.RemoteRepo, snapshots []model.RepoSnapshot) changes {
	currentByName := make(map[string]model.RemoteRepo, len(current))
	for _, repo := range current {
		currentByName[repo.Name] = repo
	}
	snapshotByName := make(map[string]model.RepoSnapshot, len(snapshots))
	for _, snap := range snapshots {
		snapshotByName[snap.RepoName] = snap
	}

	var ch changes

	for name := range snapshotByName {
		if _, ok := currentByName[name]; !ok {
			ch.Deleted = append(ch.Deleted, name)
		}
	}

	for name, repo := range currentByName {
		snap, ok := snapshotByName[name]
		if !ok {
			ch.Created = append(ch.Created, repo)
			continue
		}
		if repo.PushedAt.UTC().After(snap.LastPushedAt.UTC()) {
			ch.Updated = append(ch.Updated, repoUpdate{
				Repo:             repo,
				PreviousPushedAt: snap.LastPushedAt.UTC(),
			})
		}
	}

	sort.Strings(ch.Deleted)
	sort.Slice(ch.Created, func(i, j int) bool { return ch.Created[i].Name < ch.Created[j].Name })
	sort.Slice(ch.Updated, func(i, j int) bool { return ch.Updated[i].Repo.Name < ch.Updated[j].Repo.Name })

	return ch
}
