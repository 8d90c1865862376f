package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/CoderDKai/workhorse/internal/clock"
	"github.com/CoderDKai/workhorse/internal/ctxutil"
	"github.com/CoderDKai/workhorse/internal/domain"
	whErrors "github.com/CoderDKai/workhorse/internal/errors"
)

// Registry is the SQLite-backed list of managed repositories.
type Registry struct {
	db    *sql.DB
	clock clock.Clock
}

// OpenRegistry opens (and creates if needed) the registry database at path
// and ensures the schema exists.
func OpenRegistry(ctx context.Context, path string) (*Registry, error) {
	if path == "" {
		return nil, fmt.Errorf("registry path is empty: %w", whErrors.ErrEmptyValue)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create registry directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry: %w: %w", whErrors.ErrStorage, err)
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(pctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w: %w", whErrors.ErrStorage, err)
	}
	if err := bootstrap(pctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Registry{db: db, clock: clock.RealClock{}}, nil
}

func bootstrap(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS repositories (
  id             TEXT PRIMARY KEY,
  name           TEXT NOT NULL,
  path           TEXT NOT NULL UNIQUE,
  default_branch TEXT,
  created_at     TEXT NOT NULL,
  updated_at     TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS repositories_created_at_idx ON repositories(created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to bootstrap registry: %w: %w", whErrors.ErrStorage, err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Add inserts rec. Fails with ErrRepositoryExists when the path is already
// registered. Timestamps are stamped when zero.
func (r *Registry) Add(ctx context.Context, rec *domain.RepositoryRecord) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if rec.ID == "" || rec.Path == "" {
		return fmt.Errorf("failed to add repository: id and path are required: %w", whErrors.ErrEmptyValue)
	}

	now := r.clock.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO repositories(id, name, path, default_branch, created_at, updated_at)
VALUES(?, ?, ?, ?, ?, ?)
ON CONFLICT(path) DO NOTHING;`,
		rec.ID, rec.Name, rec.Path, nullString(rec.DefaultBranch),
		rec.CreatedAt.Format(time.RFC3339Nano), rec.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to add repository '%s': %w: %w", rec.Path, whErrors.ErrStorage, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to add repository '%s': %w", rec.Path, whErrors.ErrRepositoryExists)
	}
	return nil
}

// Get returns the record with id.
func (r *Registry) Get(ctx context.Context, id string) (*domain.RepositoryRecord, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?;", id)
	rec, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository '%s': %w", id, err)
	}
	return rec, nil
}

// GetByPath returns the record registered for path.
func (r *Registry) GetByPath(ctx context.Context, path string) (*domain.RepositoryRecord, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, selectColumns+" WHERE path = ?;", path)
	rec, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository '%s': %w", path, err)
	}
	return rec, nil
}

// List returns every record, newest first.
func (r *Registry) List(ctx context.Context) ([]*domain.RepositoryRecord, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, selectColumns+" ORDER BY created_at DESC, name ASC;")
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w: %w", whErrors.ErrStorage, err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]*domain.RepositoryRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to list repositories: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w: %w", whErrors.ErrStorage, err)
	}
	return records, nil
}

// UpdateDefaultBranch sets the default branch of the record with id.
func (r *Registry) UpdateDefaultBranch(ctx context.Context, id, branch string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE repositories SET default_branch = ?, updated_at = ? WHERE id = ?;",
		nullString(branch), r.clock.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update repository '%s': %w: %w", id, whErrors.ErrStorage, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to update repository '%s': %w", id, whErrors.ErrRepositoryNotFound)
	}
	return nil
}

// Remove deletes the record with id.
func (r *Registry) Remove(ctx context.Context, id string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM repositories WHERE id = ?;", id)
	if err != nil {
		return fmt.Errorf("failed to remove repository '%s': %w: %w", id, whErrors.ErrStorage, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to remove repository '%s': %w", id, whErrors.ErrRepositoryNotFound)
	}
	return nil
}

const selectColumns = "SELECT id, name, path, default_branch, created_at, updated_at FROM repositories"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.RepositoryRecord, error) {
	var (
		rec                  domain.RepositoryRecord
		branch               sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Path, &branch, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, whErrors.ErrRepositoryNotFound
		}
		return nil, fmt.Errorf("%w: %w", whErrors.ErrStorage, err)
	}
	rec.DefaultBranch = branch.String

	var err error
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at for repository '%s': %w: %w", rec.ID, whErrors.ErrStorage, err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("bad updated_at for repository '%s': %w: %w", rec.ID, whErrors.ErrStorage, err)
	}
	return &rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
