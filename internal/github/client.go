// internal/github/client.go
package github

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	trackererrors "github-repo-tracker/internal/errors"
	"github-repo-tracker/internal/model"
)

// Client is a wrapper around the go-github client. All timestamps leaving this
// package are normalized to UTC; the GitHub API is inconsistent about zone info
// and comparisons downstream rely on a single zone.
type Client struct {
	gh     *github.Client
	logger *slog.Logger
}

// NewClient creates and configures a new Client instance.
// The provided token is used to create an authenticated http.Client.
func NewClient(token string, logger *slog.Logger) *Client {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &Client{
		gh:     github.NewClient(tc),
		logger: logger,
	}
}

// OverrideBaseURL points the client at a different API endpoint, for GitHub
// Enterprise deployments and integration tests.
func (c *Client) OverrideBaseURL(url string) error {
	gh, err := c.gh.WithEnterpriseURLs(url, url)
	if err != nil {
		return err
	}
	c.gh = gh
	return nil
}

// ResolveAccount looks up a login and returns its canonical form. A failed direct
// lookup falls back to user search so near-miss spellings still resolve, matching
// how users expect tracking commands to behave.
func (c *Client) ResolveAccount(ctx context.Context, login string) (*model.TrackedAccount, error) {
	user, _, err := c.gh.Users.Get(ctx, login)
	if err == nil {
		return toInternalAccount(user), nil
	}
	if !isNotFound(err) {
		return nil, classifyError(err)
	}

	c.logger.Debug("Direct user lookup failed, falling back to search", "login", login)
	result, _, err := c.gh.Search.Users(ctx, login, &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return nil, classifyError(err)
	}
	if len(result.Users) == 0 {
		return nil, trackererrors.ErrAccountNotFound
	}
	return toInternalAccount(result.Users[0]), nil
}

// ListRepositories fetches all repositories owned by a login.
// It handles API pagination transparently.
func (c *Client) ListRepositories(ctx context.Context, login string) ([]model.RemoteRepo, error) {
	var allRepos []model.RemoteRepo

	opts := &github.RepositoryListByUserOptions{
		ListOptions: github.ListOptions{
			PerPage: 100, // Max per page
		},
	}

	for {
		c.logger.Debug("Fetching repositories page", "login", login, "page", opts.Page)

		repos, resp, err := c.gh.Repositories.ListByUser(ctx, login, opts)
		if err != nil {
			if isNotFound(err) {
				return nil, trackererrors.ErrAccountNotFound
			}
			return nil, classifyError(err)
		}

		for _, repo := range repos {
			allRepos = append(allRepos, toInternalRepo(repo))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allRepos, nil
}

// ListCommitsSince fetches all commits for a repository authored after a given time.
// The API treats Since as inclusive, so callers filter the boundary themselves.
func (c *Client) ListCommitsSince(ctx context.Context, owner, name string, since time.Time) ([]model.Commit, error) {
	var allCommits []model.Commit

	opts := &github.CommitsListOptions{
		Since: since.UTC(),
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	for {
		c.logger.Debug("Fetching commits page", "owner", owner, "repo", name, "page", opts.Page)

		commits, resp, err := c.gh.Repositories.ListCommits(ctx, owner, name, opts)
		if err != nil {
			return nil, classifyError(err)
		}

		for _, commit := range commits {
			allCommits = append(allCommits, toInternalCommit(commit))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allCommits, nil
}

// GetCommitStats fetches the diff statistics of a single commit.
func (c *Client) GetCommitStats(ctx context.Context, owner, name, sha string) (*model.CommitStats, error) {
	commit, _, err := c.gh.Repositories.GetCommit(ctx, owner, name, sha, nil)
	if err != nil {
		if isNotFound(err) {
			// The commit was rewritten or force-pushed away after listing.
			return nil, trackererrors.ErrCommitNotFound
		}
		return nil, classifyError(err)
	}

	stats := &model.CommitStats{
		Additions: commit.GetStats().GetAdditions(),
		Deletions: commit.GetStats().GetDeletions(),
	}
	for _, f := range commit.Files {
		stats.Files = append(stats.Files, model.FileChange{
			Filename: f.GetFilename(),
			Status:   toFileStatus(f.GetStatus()),
		})
	}
	return stats, nil
}

// isNotFound reports whether err is a GitHub 404 response.
func isNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}

// classifyError maps transport and remote failures to the tracker error taxonomy.
func classifyError(err error) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
		return trackererrors.ErrAccountNotFound
	}
	return &trackererrors.ProviderUnavailableError{Err: err}
}

// toInternalAccount translates a github.User object to our internal model.TrackedAccount.
func toInternalAccount(u *github.User) *model.TrackedAccount {
	return &model.TrackedAccount{
		Login:      u.GetLogin(),
		AvatarURL:  u.GetAvatarURL(),
		ProfileURL: u.GetHTMLURL(),
	}
}

// toInternalRepo translates a github.Repository object to our internal model.RemoteRepo.
func toInternalRepo(r *github.Repository) model.RemoteRepo {
	return model.RemoteRepo{
		Name:          r.GetName(),
		PushedAt:      r.GetPushedAt().Time.UTC(),
		HTMLURL:       r.GetHTMLURL(),
		Description:   r.GetDescription(),
		Language:      r.GetLanguage(),
		Private:       r.GetPrivate(),
		DefaultBranch: r.GetDefaultBranch(),
	}
}

// toInternalCommit translates a github.RepositoryCommit object to our internal model.Commit.
func toInternalCommit(c *github.RepositoryCommit) model.Commit {
	return model.Commit{
		SHA:        c.GetSHA(),
		Message:    c.GetCommit().GetMessage(),
		AuthorDate: c.GetCommit().GetAuthor().GetDate().Time.UTC(),
		HTMLURL:    c.GetHTMLURL(),
	}
}

func toFileStatus(s string) model.FileStatus {
	switch s {
	case "added":
		return model.FileAdded
	case "removed":
		return model.FileRemoved
	default:
		return model.FileModified
	}
}
