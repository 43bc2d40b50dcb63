// internal/tracker/lifecycle.go
package tracker

import (
	"context"

	trackererrors "github-repo-tracker/internal/errors"
	"github-repo-tracker/internal/model"
)

// StartTracking validates a login against the provider, stores its canonical
// form, and seeds the initial snapshot set at the current remote state. No
// notifications fire for the initial snapshots; only future changes do.
func (t *Tracker) StartTracking(ctx context.Context, domainID, login string) (*model.TrackedAccount, int, error) {
	if domainID == "" {
		return nil, 0, &trackererrors.ErrInvalidDomainID{DomainID: domainID}
	}

	resolved, err := t.provider.ResolveAccount(ctx, login)
	if err != nil {
		return nil, 0, err
	}

	repos, err := t.provider.ListRepositories(ctx, resolved.Login)
	if err != nil {
		return nil, 0, err
	}

	snapshots := make([]model.RepoSnapshot, 0, len(repos))
	for _, repo := range repos {
		snapshots = append(snapshots, model.RepoSnapshot{
			RepoName:     repo.Name,
			LastPushedAt: repo.PushedAt,
		})
	}

	account := &model.TrackedAccount{
		DomainID:   domainID,
		Login:      resolved.Login,
		AvatarURL:  resolved.AvatarURL,
		ProfileURL: resolved.ProfileURL,
	}
	created, err := t.store.CreateAccount(ctx, account, snapshots)
	if err != nil {
		return nil, 0, err
	}

	t.logger.Info("Started tracking account", "domain", domainID, "login", created.Login, "repos", len(snapshots))
	return created, len(snapshots), nil
}

// StopTracking removes an account and all of its snapshots.
func (t *Tracker) StopTracking(ctx context.Context, domainID, login string) error {
	account, err := t.store.GetAccount(ctx, domainID, login)
	if err != nil {
		return err
	}
	if err := t.store.DeleteAccount(ctx, domainID, login); err != nil {
		return err
	}
	t.clearFailure(account.ID)
	t.logger.Info("Stopped tracking account", "domain", domainID, "login", account.Login)
	return nil
}
