// internal/tracker/mocks_test.go
package tracker

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github-repo-tracker/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// MockProvider is a mock of the Provider interface.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) ResolveAccount(ctx context.Context, login string) (*model.TrackedAccount, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TrackedAccount), args.Error(1)
}

func (m *MockProvider) ListRepositories(ctx context.Context, login string) ([]model.RemoteRepo, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RemoteRepo), args.Error(1)
}

func (m *MockProvider) ListCommitsSince(ctx context.Context, login, repo string, since time.Time) ([]model.Commit, error) {
	args := m.Called(ctx, login, repo, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Commit), args.Error(1)
}

func (m *MockProvider) GetCommitStats(ctx context.Context, login, repo, sha string) (*model.CommitStats, error) {
	args := m.Called(ctx, login, repo, sha)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CommitStats), args.Error(1)
}

// MockStore is a mock of the store.Store interface.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateAccount(ctx context.Context, account *model.TrackedAccount, snapshots []model.RepoSnapshot) (*model.TrackedAccount, error) {
	args := m.Called(ctx, account, snapshots)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TrackedAccount), args.Error(1)
}

func (m *MockStore) DeleteAccount(ctx context.Context, domainID, login string) error {
	args := m.Called(ctx, domainID, login)
	return args.Error(0)
}

func (m *MockStore) GetAccount(ctx context.Context, domainID, login string) (*model.TrackedAccount, error) {
	args := m.Called(ctx, domainID, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TrackedAccount), args.Error(1)
}

func (m *MockStore) ListAccounts(ctx context.Context) ([]model.TrackedAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TrackedAccount), args.Error(1)
}

func (m *MockStore) ListAccountsByDomain(ctx context.Context, domainID string) ([]model.TrackedAccount, error) {
	args := m.Called(ctx, domainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TrackedAccount), args.Error(1)
}

func (m *MockStore) ListSnapshots(ctx context.Context, accountID int64) ([]model.RepoSnapshot, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RepoSnapshot), args.Error(1)
}

func (m *MockStore) ApplyChanges(ctx context.Context, accountID int64, upserts []model.RepoSnapshot, deletes []string) error {
	args := m.Called(ctx, accountID, upserts, deletes)
	return args.Error(0)
}

// recordingSink captures delivered notifications in order.
type recordingSink struct {
	mu        sync.Mutex
	delivered []deliveredNotification
	err       error
}

type deliveredNotification struct {
	DomainID     string
	Notification model.Notification
}

func (s *recordingSink) Deliver(_ context.Context, domainID string, n model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivered = append(s.delivered, deliveredNotification{DomainID: domainID, Notification: n})
	return s.err
}

func (s *recordingSink) forLogin(login string) []deliveredNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []deliveredNotification
	for _, d := range s.delivered {
		if d.Notification.AccountLogin == login {
			out = append(out, d)
		}
	}
	return out
}
