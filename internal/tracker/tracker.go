// internal/tracker/tracker.go
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	trackererrors "github-repo-tracker/internal/errors"
	"github-repo-tracker/internal/model"
	"github-repo-tracker/internal/store"
)

// Provider is the remote capability the tracker polls: enumerate repositories
// and commit history for an account.
type Provider interface {
	ResolveAccount(ctx context.Context, login string) (*model.TrackedAccount, error)
	ListRepositories(ctx context.Context, login string) ([]model.RemoteRepo, error)
	ListCommitsSince(ctx context.Context, login, repo string, since time.Time) ([]model.Commit, error)
	GetCommitStats(ctx context.Context, login, repo, sha string) (*model.CommitStats, error)
}

// Sink receives change notifications. Delivery is fire-and-forget from the
// tracker's perspective; a failed delivery is logged and never retried here.
type Sink interface {
	Deliver(ctx context.Context, domainID string, n model.Notification) error
}

// Tracker is the polling scheduler. Each cycle fans out one unit of work per
// tracked account; failures are isolated at the account boundary so one broken
// account never halts the cycle.
type Tracker struct {
	store         store.Store
	provider      Provider
	sink          Sink
	logger        *slog.Logger
	interval      time.Duration
	concurrency   int
	degradedAfter int

	mu        sync.Mutex
	failures  map[int64]int
	lastCycle time.Time
	cycles    int64
}

// NewTracker creates a new Tracker instance. degradedAfter is the number of
// consecutive provider outages after which an account is flagged as degraded.
func NewTracker(st store.Store, provider Provider, sink Sink, logger *slog.Logger, interval time.Duration, concurrency, degradedAfter int) *Tracker {
	return &Tracker{
		store:         st,
		provider:      provider,
		sink:          sink,
		logger:        logger,
		interval:      interval,
		concurrency:   concurrency,
		degradedAfter: degradedAfter,
		failures:      make(map[int64]int),
	}
}

// Start begins the continuous polling loop. It blocks until ctx is cancelled.
// The loop waits for each cycle to finish before the next tick is honored, so
// cycles for the same account never overlap.
func (t *Tracker) Start(ctx context.Context) {
	t.logger.Info("Starting tracker", "interval", t.interval.String(), "concurrency", t.concurrency)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.RunCycle(ctx) // Initial cycle

	for {
		select {
		case <-ticker.C:
			t.RunCycle(ctx)
		case <-ctx.Done():
			t.logger.Info("Tracker shutting down", "reason", ctx.Err())
			return
		}
	}
}

// RunCycle performs one polling pass over all tracked accounts concurrently.
func (t *Tracker) RunCycle(ctx context.Context) {
	accounts, err := t.store.ListAccounts(ctx)
	if err != nil {
		t.logger.Error("Failed to list tracked accounts", "error", err)
		return
	}

	t.logger.Info("Starting tracking cycle", "accounts", len(accounts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.concurrency)

	for _, account := range accounts {
		account := account
		g.Go(func() error {
			// Cooperative cancellation checkpoint at the account boundary;
			// an in-flight account runs to completion.
			if gctx.Err() != nil {
				return nil
			}
			t.syncAccount(gctx, account)
			return nil
		})
	}

	_ = g.Wait()

	t.mu.Lock()
	t.lastCycle = time.Now().UTC()
	t.cycles++
	t.mu.Unlock()
	t.logger.Info("Tracking cycle finished")
}

// syncAccount runs the full pipeline for one account: list, diff, summarize,
// persist, notify. Any failure sends the account back to idle for this cycle
// without touching other accounts.
func (t *Tracker) syncAccount(ctx context.Context, account model.TrackedAccount) {
	logger := t.logger.With("domain", account.DomainID, "login", account.Login)

	current, err := t.provider.ListRepositories(ctx, account.Login)
	if err != nil {
		t.recordFailure(account, err, logger)
		return
	}

	snapshots, err := t.store.ListSnapshots(ctx, account.ID)
	if err != nil {
		logger.Error("Failed to load snapshots", "error", err)
		return
	}

	ch := diffRepos(current, snapshots)
	if ch.empty() {
		t.clearFailure(account.ID)
		return
	}
	logger.Info("Detected repository changes",
		"created", len(ch.Created), "updated", len(ch.Updated), "deleted", len(ch.Deleted))

	summaries := make(map[string]*model.CommitSummary, len(ch.Updated))
	for _, upd := range ch.Updated {
		summary, err := summarizeRange(ctx, t.provider, logger, account.Login, upd.Repo, upd.PreviousPushedAt)
		if err != nil {
			// Abort before persisting: the snapshot stays put and the same
			// range is retried next cycle.
			t.recordFailure(account, err, logger)
			return
		}
		summaries[upd.Repo.Name] = summary
	}

	// Snapshot mutations commit before any delivery is attempted, so a failed
	// delivery is never re-detected as a change on the next cycle. A crash
	// between this commit and delivery can still drop or duplicate that
	// window's notifications; that narrow window is a known limitation.
	if err := t.store.ApplyChanges(ctx, account.ID, ch.upserts(account.ID), ch.Deleted); err != nil {
		logger.Error("Failed to persist snapshot changes, skipping notifications", "error", err)
		return
	}

	t.clearFailure(account.ID)
	t.notify(ctx, account, ch, summaries, logger)
}

// notify delivers one account's events in deterministic order: all deleted,
// then all created, then all updated, each group sorted by repository name.
func (t *Tracker) notify(ctx context.Context, account model.TrackedAccount, ch changes, summaries map[string]*model.CommitSummary, logger *slog.Logger) {
	base := model.Notification{
		AccountLogin:     account.Login,
		AccountAvatarURL: account.AvatarURL,
		AccountURL:       account.ProfileURL,
	}

	for _, name := range ch.Deleted {
		n := base
		n.Kind = model.RepoDeleted
		n.RepoName = name
		t.deliver(ctx, account.DomainID, n, logger)
	}

	for _, repo := range ch.Created {
		repo := repo
		n := base
		n.Kind = model.RepoCreated
		n.RepoName = repo.Name
		n.Repo = &repo
		t.deliver(ctx, account.DomainID, n, logger)
	}

	for _, upd := range ch.Updated {
		summary := summaries[upd.Repo.Name]
		if summary == nil || len(summary.Commits) == 0 {
			// A push with no commits in range is not user-actionable.
			logger.Debug("Suppressing update with empty commit summary", "repo", upd.Repo.Name)
			continue
		}
		upd := upd
		n := base
		n.Kind = model.RepoUpdated
		n.RepoName = upd.Repo.Name
		n.Repo = &upd.Repo
		n.Summary = summary
		n.PreviousPushedAt = upd.PreviousPushedAt
		t.deliver(ctx, account.DomainID, n, logger)
	}
}

func (t *Tracker) deliver(ctx context.Context, domainID string, n model.Notification, logger *slog.Logger) {
	if err := t.sink.Deliver(ctx, domainID, n); err != nil {
		logger.Error("Failed to deliver notification", "kind", n.Kind, "repo", n.RepoName, "error", err)
	}
}

// recordFailure classifies an account-level failure and updates the degraded
// marker bookkeeping. Tracking always continues: a vanished login is surfaced
// as a persistent warning rather than silently untracked.
func (t *Tracker) recordFailure(account model.TrackedAccount, err error, logger *slog.Logger) {
	if errors.Is(err, context.Canceled) {
		return
	}
	if errors.Is(err, trackererrors.ErrAccountNotFound) {
		logger.Warn("Tracked account no longer resolves on provider", "error", err)
		return
	}

	var unavailable *trackererrors.ProviderUnavailableError
	if errors.As(err, &unavailable) {
		t.mu.Lock()
		t.failures[account.ID]++
		count := t.failures[account.ID]
		t.mu.Unlock()

		if count >= t.degradedAfter {
			logger.Warn("Account degraded: provider unavailable for consecutive cycles", "cycles", count)
		} else {
			logger.Info("Provider unavailable, retrying next cycle", "error", err)
		}
		return
	}

	logger.Error("Failed to sync account", "error", err)
}

func (t *Tracker) clearFailure(accountID int64) {
	t.mu.Lock()
	delete(t.failures, accountID)
	t.mu.Unlock()
}

// AccountStatus describes the health of one tracked account as seen by the
// scheduler.
type AccountStatus struct {
	ConsecutiveFailures int  `json:"consecutive_failures"`
	Degraded            bool `json:"degraded"`
}

// Status reports scheduler-level health for the API surface.
type Status struct {
	LastCycleAt time.Time               `json:"last_cycle_at"`
	Cycles      int64                   `json:"cycles"`
	Accounts    map[int64]AccountStatus `json:"accounts,omitempty"`
}

// Status returns a point-in-time view of the scheduler's health.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := Status{
		LastCycleAt: t.lastCycle,
		Cycles:      t.cycles,
		Accounts:    make(map[int64]AccountStatus, len(t.failures)),
	}
	for id, count := range t.failures {
		st.Accounts[id] = AccountStatus{
			ConsecutiveFailures: count,
			Degraded:            count >= t.degradedAfter,
		}
	}
	return st
}
