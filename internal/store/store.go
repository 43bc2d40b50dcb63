// internal/store/store.go
package store

import (
	"context"
	"errors"

	"github-repo-tracker/internal/model"
)

// ErrAccountExists is returned when a (domain, login) pair is already tracked.
var ErrAccountExists = errors.New("account is already tracked in this domain")

// ErrAccountNotTracked is returned when a lifecycle operation references an
// account that is not tracked in the given domain.
var ErrAccountNotTracked = errors.New("account is not tracked in this domain")

// Store is the persistence boundary of the tracking subsystem. Snapshot
// mutations for one account are always applied in a single transaction.
type Store interface {
	// CreateAccount persists a new tracked account together with its initial
	// snapshot set. No notifications ever fire for the initial snapshots.
	CreateAccount(ctx context.Context, account *model.TrackedAccount, snapshots []model.RepoSnapshot) (*model.TrackedAccount, error)

	// DeleteAccount removes an account and cascades deletion of its snapshots.
	DeleteAccount(ctx context.Context, domainID, login string) error

	GetAccount(ctx context.Context, domainID, login string) (*model.TrackedAccount, error)
	ListAccounts(ctx context.Context) ([]model.TrackedAccount, error)
	ListAccountsByDomain(ctx context.Context, domainID string) ([]model.TrackedAccount, error)

	ListSnapshots(ctx context.Context, accountID int64) ([]model.RepoSnapshot, error)

	// ApplyChanges commits one account's snapshot mutations atomically:
	// deletes first, then upserts. Callers must not deliver notifications
	// for a change set until this has returned without error.
	ApplyChanges(ctx context.Context, accountID int64, upserts []model.RepoSnapshot, deletes []string) error
}
