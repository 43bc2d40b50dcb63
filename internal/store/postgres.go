// internal/store/postgres.go
package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github-repo-tracker/internal/model"
)

// uniqueViolation is the Postgres error code for a unique constraint violation.
const uniqueViolation = "23505"

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresStore creates a new PostgresStore instance.
func NewPostgresStore(pool *pgxpool.Pool, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, logger: logger}
}

func (s *PostgresStore) CreateAccount(ctx context.Context, account *model.TrackedAccount, snapshots []model.RepoSnapshot) (*model.TrackedAccount, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) // Rollback is a no-op if the transaction is already committed.

	created := *account
	err = tx.QueryRow(ctx,
		`INSERT INTO tracked_accounts (domain_id, login, avatar_url, profile_url)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		account.DomainID, account.Login, account.AvatarURL, account.ProfileURL,
	).Scan(&created.ID, &created.DBCreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrAccountExists
		}
		return nil, err
	}

	for _, snap := range snapshots {
		_, err := tx.Exec(ctx,
			`INSERT INTO repo_snapshots (account_id, repo_name, last_pushed_at)
			 VALUES ($1, $2, $3)`,
			created.ID, snap.RepoName, snap.LastPushedAt.UTC(),
		)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *PostgresStore) DeleteAccount(ctx context.Context, domainID, login string) error {
	// repo_snapshots rows go with the account via ON DELETE CASCADE.
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM tracked_accounts WHERE domain_id = $1 AND lower(login) = lower($2)`,
		domainID, login,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotTracked
	}
	return nil
}

func (s *PostgresStore) GetAccount(ctx context.Context, domainID, login string) (*model.TrackedAccount, error) {
	var a model.TrackedAccount
	err := s.pool.QueryRow(ctx,
		`SELECT id, domain_id, login, avatar_url, profile_url, created_at
		 FROM tracked_accounts
		 WHERE domain_id = $1 AND lower(login) = lower($2)`,
		domainID, login,
	).Scan(&a.ID, &a.DomainID, &a.Login, &a.AvatarURL, &a.ProfileURL, &a.DBCreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotTracked
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PostgresStore) ListAccounts(ctx context.Context) ([]model.TrackedAccount, error) {
	return s.listAccounts(ctx,
		`SELECT id, domain_id, login, avatar_url, profile_url, created_at
		 FROM tracked_accounts ORDER BY id`)
}

func (s *PostgresStore) ListAccountsByDomain(ctx context.Context, domainID string) ([]model.TrackedAccount, error) {
	return s.listAccounts(ctx,
		`SELECT id, domain_id, login, avatar_url, profile_url, created_at
		 FROM tracked_accounts WHERE domain_id = $1 ORDER BY id`, domainID)
}

func (s *PostgresStore) listAccounts(ctx context.Context, query string, args ...any) ([]model.TrackedAccount, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []model.TrackedAccount
	for rows.Next() {
		var a model.TrackedAccount
		if err := rows.Scan(&a.ID, &a.DomainID, &a.Login, &a.AvatarURL, &a.ProfileURL, &a.DBCreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (s *PostgresStore) ListSnapshots(ctx context.Context, accountID int64) ([]model.RepoSnapshot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT account_id, repo_name, last_pushed_at
		 FROM repo_snapshots WHERE account_id = $1`,
		accountID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []model.RepoSnapshot
	for rows.Next() {
		var snap model.RepoSnapshot
		if err := rows.Scan(&snap.AccountID, &snap.RepoName, &snap.LastPushedAt); err != nil {
			return nil, err
		}
		snap.LastPushedAt = snap.LastPushedAt.UTC()
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

func (s *PostgresStore) ApplyChanges(ctx context.Context, accountID int64, upserts []model.RepoSnapshot, deletes []string) error {
	if len(upserts) == 0 && len(deletes) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, name := range deletes {
		if _, err := tx.Exec(ctx,
			`DELETE FROM repo_snapshots WHERE account_id = $1 AND repo_name = $2`,
			accountID, name,
		); err != nil {
			return err
		}
	}

	for _, snap := range upserts {
		if _, err := tx.Exec(ctx,
			`INSERT INTO repo_snapshots (account_id, repo_name, last_pushed_at)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (account_id, repo_name)
			 DO UPDATE SET last_pushed_at = EXCLUDED.last_pushed_at`,
			accountID, snap.RepoName, snap.LastPushedAt.UTC(),
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
