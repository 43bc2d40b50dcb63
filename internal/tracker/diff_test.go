// internal/tracker/diff_test.go
package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github-repo-tracker/internal/model"
)

var (
	t1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
)

func remoteRepo(name string, pushedAt time.Time) model.RemoteRepo {
	return model.RemoteRepo{Name: name, PushedAt: pushedAt, DefaultBranch: "main"}
}

func snapshot(name string, pushedAt time.Time) model.RepoSnapshot {
	return model.RepoSnapshot{AccountID: 1, RepoName: name, LastPushedAt: pushedAt}
}

func TestDiffRepos_NoChange(t *testing.T) {
	ch := diffRepos(
		[]model.RemoteRepo{remoteRepo("repoA", t1)},
		[]model.RepoSnapshot{snapshot("repoA", t1)},
	)

	assert.True(t, ch.empty(), "unchanged pushedAt must never produce an event")
}

func TestDiffRepos_EqualTimestampsNeverUpdate(t *testing.T) {
	// Same instant in a different zone must still compare equal.
	zone := time.FixedZone("UTC+3", 3*60*60)
	ch := diffRepos(
		[]model.RemoteRepo{remoteRepo("repoA", t1.In(zone))},
		[]model.RepoSnapshot{snapshot("repoA", t1)},
	)

	assert.Empty(t, ch.Updated)
	assert.True(t, ch.empty())
}

func TestDiffRepos_Created(t *testing.T) {
	ch := diffRepos(
		[]model.RemoteRepo{remoteRepo("repoX", t1)},
		nil,
	)

	require.Len(t, ch.Created, 1)
	assert.Equal(t, "repoX", ch.Created[0].Name)
	assert.Empty(t, ch.Updated)
	assert.Empty(t, ch.Deleted)

	upserts := ch.upserts(7)
	require.Len(t, upserts, 1)
	assert.Equal(t, int64(7), upserts[0].AccountID)
	assert.Equal(t, t1, upserts[0].LastPushedAt)

	// A second cycle with the snapshot now present must be silent.
	next := diffRepos(
		[]model.RemoteRepo{remoteRepo("repoX", t1)},
		[]model.RepoSnapshot{snapshot("repoX", t1)},
	)
	assert.True(t, next.empty(), "Created must fire exactly once")
}

func TestDiffRepos_Updated(t *testing.T) {
	ch := diffRepos(
		[]model.RemoteRepo{remoteRepo("repoA", t2)},
		[]model.RepoSnapshot{snapshot("repoA", t1)},
	)

	require.Len(t, ch.Updated, 1)
	assert.Equal(t, "repoA", ch.Updated[0].Repo.Name)
	assert.Equal(t, t1, ch.Updated[0].PreviousPushedAt)

	upserts := ch.upserts(1)
	require.Len(t, upserts, 1)
	assert.Equal(t, t2, upserts[0].LastPushedAt, "snapshot must advance to the new pushedAt")
}

func TestDiffRepos_BackwardTimestampIgnored(t *testing.T) {
	ch := diffRepos(
		[]model.RemoteRepo{remoteRepo("repoA", t1)},
		[]model.RepoSnapshot{snapshot("repoA", t2)},
	)

	assert.True(t, ch.empty(), "timestamps only advance, a rewind is not an update")
}

func TestDiffRepos_Deleted(t *testing.T) {
	ch := diffRepos(
		nil,
		[]model.RepoSnapshot{snapshot("repoA", t1)},
	)

	assert.Equal(t, []string{"repoA"}, ch.Deleted)
	assert.Empty(t, ch.Created)
	assert.Empty(t, ch.Updated)
}

func TestDiffRepos_DeleteThenReAdd(t *testing.T) {
	// Delete removes the snapshot...
	ch := diffRepos(nil, []model.RepoSnapshot{snapshot("repoA", t1)})
	assert.Equal(t, []string{"repoA"}, ch.Deleted)

	// ...so a later re-add is a fresh creation, with no stale state leaking.
	ch = diffRepos([]model.RemoteRepo{remoteRepo("repoA", t2)}, nil)
	require.Len(t, ch.Created, 1)
	assert.Equal(t, "repoA", ch.Created[0].Name)
}

func TestDiffRepos_MixedDeterministicOrder(t *testing.T) {
	current := []model.RemoteRepo{
		remoteRepo("zeta", t1),
		remoteRepo("alpha", t2),
		remoteRepo("mike", t2),
	}
	snapshots := []model.RepoSnapshot{
		snapshot("alpha", t1),
		snapshot("mike", t1),
		snapshot("old-b", t1),
		snapshot("old-a", t1),
	}

	ch := diffRepos(current, snapshots)

	assert.Equal(t, []string{"old-a", "old-b"}, ch.Deleted)
	require.Len(t, ch.Created, 1)
	assert.Equal(t, "zeta", ch.Created[0].Name)
	require.Len(t, ch.Updated, 2)
	assert.Equal(t, "alpha", ch.Updated[0].Repo.Name)
	assert.Equal(t, "mike", ch.Updated[1].Repo.Name)

	// Same inputs in a different slice order yield the same output.
	again := diffRepos(
		[]model.RemoteRepo{current[2], current[0], current[1]},
		[]model.RepoSnapshot{snapshots[3], snapshots[1], snapshots[0], snapshots[2]},
	)
	assert.Equal(t, ch, again)
}
