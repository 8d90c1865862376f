// Package workspace provides workspace persistence and lifecycle management
// for workhorse. Records live inside the management folder of the repository
// that owns them, one JSON file per workspace, next to a derived index.
package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/CoderDKai/workhorse/internal/constants"
	"github.com/CoderDKai/workhorse/internal/ctxutil"
	"github.com/CoderDKai/workhorse/internal/domain"
	whErrors "github.com/CoderDKai/workhorse/internal/errors"
	"github.com/CoderDKai/workhorse/internal/flock"
	"github.com/CoderDKai/workhorse/internal/fsutil"
)

// validNameRegex matches valid workspace names and record ids
// (alphanumeric, dash, underscore).
var validNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// Store defines the interface for workspace persistence operations.
type Store interface {
	// Save creates or replaces the record of meta.RepositoryPath.
	Save(ctx context.Context, meta *domain.WorkspaceMetadata) error

	// Load retrieves a record by id. Returns ErrWorkspaceNotFound if not found
	// and ErrWorkspaceCorrupted if the file cannot be decoded.
	Load(ctx context.Context, repoPath, id string) (*domain.WorkspaceMetadata, error)

	// List returns all readable records in no particular order.
	// Corrupted records are skipped.
	List(ctx context.Context, repoPath string) ([]*domain.WorkspaceMetadata, error)

	// Update loads a record, applies fn and writes the result back while
	// holding the store lock. fn reports whether it changed the record; an
	// unchanged record is not rewritten. An error from fn aborts the update.
	Update(ctx context.Context, repoPath, id string, fn func(meta *domain.WorkspaceMetadata) (bool, error)) (*domain.WorkspaceMetadata, error)

	// Delete removes a record. Returns ErrWorkspaceNotFound if not found.
	Delete(ctx context.Context, repoPath, id string) error

	// WriteIndex replaces the summary index.
	WriteIndex(ctx context.Context, repoPath string, idx *domain.WorkspaceIndex) error

	// ReadIndex returns the summary index. Returns ErrWorkspaceNotFound when
	// no index was written yet.
	ReadIndex(ctx context.Context, repoPath string) (*domain.WorkspaceIndex, error)
}

// FileStore implements Store using the management folder of each repository.
type FileStore struct{}

// NewFileStore creates a new FileStore.
func NewFileStore() *FileStore {
	return &FileStore{}
}

var _ Store = (*FileStore)(nil)

// Save persists meta atomically.
func (s *FileStore) Save(ctx context.Context, meta *domain.WorkspaceMetadata) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if meta == nil {
		return fmt.Errorf("failed to save workspace: %w", whErrors.ErrEmptyValue)
	}
	if err := validateID(meta.ID); err != nil {
		return fmt.Errorf("failed to save workspace '%s': %w", meta.ID, err)
	}
	if meta.RepositoryPath == "" {
		return fmt.Errorf("failed to save workspace '%s': repository path: %w", meta.ID, whErrors.ErrEmptyValue)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to save workspace '%s': %w", meta.ID, err)
	}

	return s.withLock(ctx, meta.RepositoryPath, func() error {
		if err := atomicWrite(recordPath(meta.RepositoryPath, meta.ID), data); err != nil {
			return fmt.Errorf("failed to save workspace '%s': %w", meta.ID, err)
		}
		return nil
	})
}

// Load retrieves a record by id.
func (s *FileStore) Load(ctx context.Context, repoPath, id string) (*domain.WorkspaceMetadata, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, fmt.Errorf("failed to read workspace '%s': %w", id, err)
	}

	path := recordPath(repoPath, id)
	data, err := os.ReadFile(path) //#nosec G304 -- id is validated and the path is built from the management layout
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read workspace '%s': %w", id, whErrors.ErrWorkspaceNotFound)
		}
		return nil, fmt.Errorf("failed to read workspace '%s': %w: %w", id, whErrors.ErrStorage, err)
	}

	var meta domain.WorkspaceMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("workspace '%s' has a corrupted record: %w. Consider deleting %s", id, whErrors.ErrWorkspaceCorrupted, path)
	}
	return &meta, nil
}

// List returns every readable record of repoPath.
func (s *FileStore) List(ctx context.Context, repoPath string) ([]*domain.WorkspaceMetadata, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(recordsDir(repoPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*domain.WorkspaceMetadata{}, nil
		}
		return nil, fmt.Errorf("failed to list workspaces: %w: %w", whErrors.ErrStorage, err)
	}

	records := make([]*domain.WorkspaceMetadata, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != constants.WorkspaceRecordExt {
			continue
		}
		if err := ctxutil.Canceled(ctx); err != nil {
			return nil, err
		}

		meta, err := s.Load(ctx, repoPath, strings.TrimSuffix(name, constants.WorkspaceRecordExt))
		if err != nil {
			log.Warn().Err(err).Str("file", name).Msg("skipping unreadable workspace record")
			continue
		}
		records = append(records, meta)
	}

	return records, nil
}

// Update applies fn to the record of id under the store lock.
func (s *FileStore) Update(ctx context.Context, repoPath, id string, fn func(meta *domain.WorkspaceMetadata) (bool, error)) (*domain.WorkspaceMetadata, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, fmt.Errorf("failed to update workspace '%s': %w", id, err)
	}

	var meta *domain.WorkspaceMetadata
	err := s.withLock(ctx, repoPath, func() error {
		current, err := s.Load(ctx, repoPath, id)
		if err != nil {
			return err
		}
		changed, err := fn(current)
		if err != nil {
			return err
		}
		meta = current
		if !changed {
			return nil
		}

		data, err := json.MarshalIndent(current, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to update workspace '%s': %w", id, err)
		}
		if err := atomicWrite(recordPath(repoPath, id), data); err != nil {
			return fmt.Errorf("failed to update workspace '%s': %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// Delete removes a record.
func (s *FileStore) Delete(ctx context.Context, repoPath, id string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return fmt.Errorf("failed to delete workspace '%s': %w", id, err)
	}

	return s.withLock(ctx, repoPath, func() error {
		if err := os.Remove(recordPath(repoPath, id)); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to delete workspace '%s': %w", id, whErrors.ErrWorkspaceNotFound)
			}
			return fmt.Errorf("failed to delete workspace '%s': %w: %w", id, whErrors.ErrStorage, err)
		}
		return nil
	})
}

// WriteIndex replaces the summary index of repoPath.
func (s *FileStore) WriteIndex(ctx context.Context, repoPath string, idx *domain.WorkspaceIndex) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode workspace index: %w", err)
	}

	return s.withLock(ctx, repoPath, func() error {
		path := indexPath(repoPath)
		if err := os.MkdirAll(filepath.Dir(path), fsutil.DirPerm); err != nil {
			return fmt.Errorf("failed to create configs directory: %w: %w", whErrors.ErrStorage, err)
		}
		if err := atomicWrite(path, data); err != nil {
			return fmt.Errorf("failed to write workspace index: %w", err)
		}
		return nil
	})
}

// ReadIndex returns the summary index of repoPath.
func (s *FileStore) ReadIndex(ctx context.Context, repoPath string) (*domain.WorkspaceIndex, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(indexPath(repoPath)) //#nosec G304 -- path is built from the management layout
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read workspace index: %w", whErrors.ErrWorkspaceNotFound)
		}
		return nil, fmt.Errorf("failed to read workspace index: %w: %w", whErrors.ErrStorage, err)
	}

	var idx domain.WorkspaceIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to decode workspace index: %w", whErrors.ErrWorkspaceCorrupted)
	}
	return &idx, nil
}

// withLock runs fn while holding the store lock of repoPath.
func (s *FileStore) withLock(ctx context.Context, repoPath string, fn func() error) error {
	lock, err := flock.Acquire(ctx, lockPath(repoPath), constants.LockTimeout)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			log.Warn().Err(err).Str("repository", repoPath).Msg("failed to release workspace store lock")
		}
	}()
	return fn()
}

func recordsDir(repoPath string) string {
	return filepath.Join(repoPath, constants.ManagementDir, constants.WorkspacesDir)
}

func recordPath(repoPath, id string) string {
	return filepath.Join(recordsDir(repoPath), id+constants.WorkspaceRecordExt)
}

func indexPath(repoPath string) string {
	return filepath.Join(repoPath, constants.ManagementDir, constants.ConfigsDir, constants.WorkspaceIndexFileName)
}

func lockPath(repoPath string) string {
	return filepath.Join(recordsDir(repoPath), constants.StoreLockFileName)
}

// atomicWrite stores data with the permissions used for all records.
func atomicWrite(path string, data []byte) error {
	if err := fsutil.AtomicWrite(path, data, fsutil.FilePerm); err != nil {
		return fmt.Errorf("%w: %w", whErrors.ErrStorage, err)
	}
	return nil
}

// validateID checks that id is safe to use as a file name.
func validateID(id string) error {
	if id == "" {
		return fmt.Errorf("workspace id cannot be empty: %w", whErrors.ErrEmptyValue)
	}
	if len(id) > constants.MaxNameLength || !validNameRegex.MatchString(id) {
		return fmt.Errorf("workspace id contains invalid characters: %w", whErrors.ErrInvalidArgument)
	}
	return nil
}

// ValidateName checks if a workspace name is valid. Names become part of the
// worktree directory name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("workspace name cannot be empty: %w", whErrors.ErrEmptyValue)
	}
	if len(name) > constants.MaxNameLength {
		return fmt.Errorf("workspace name too long (max %d characters): %w", constants.MaxNameLength, whErrors.ErrValueOutOfRange)
	}
	if !validNameRegex.MatchString(name) {
		return fmt.Errorf("workspace name contains invalid characters (use alphanumeric, dash, underscore): %w", whErrors.ErrValueOutOfRange)
	}
	return nil
}
