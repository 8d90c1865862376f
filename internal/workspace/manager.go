package workspace

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/CoderDKai/workhorse/internal/clock"
	"github.com/CoderDKai/workhorse/internal/constants"
	"github.com/CoderDKai/workhorse/internal/ctxutil"
	"github.com/CoderDKai/workhorse/internal/domain"
	whErrors "github.com/CoderDKai/workhorse/internal/errors"
	"github.com/CoderDKai/workhorse/internal/fsutil"
	"github.com/CoderDKai/workhorse/internal/git"
)

// Manager orchestrates workspace lifecycle operations.
// It coordinates between the Store (record persistence) and the
// VersionControl backing (git worktrees). Every method takes the path of
// the managed repository that owns the records.
type Manager interface {
	// Create creates a new workspace backed by a fresh worktree.
	Create(ctx context.Context, repoPath string, req domain.CreateWorkspaceRequest) (*domain.WorkspaceMetadata, error)

	// Get retrieves a workspace by id.
	Get(ctx context.Context, repoPath, id string) (*domain.WorkspaceMetadata, error)

	// Info returns the record together with the live state of its worktree.
	Info(ctx context.Context, repoPath, id string) (*domain.WorkspaceInfo, error)

	// List returns all workspaces, newest first.
	List(ctx context.Context, repoPath string) ([]*domain.WorkspaceMetadata, error)

	// Archive marks a workspace archived, removing its files unless asked to keep them.
	Archive(ctx context.Context, repoPath string, req domain.ArchiveWorkspaceRequest) (*domain.WorkspaceMetadata, error)

	// Restore brings an archived workspace back, recreating its worktree if needed.
	Restore(ctx context.Context, repoPath, id string) (*domain.WorkspaceMetadata, error)

	// Delete removes the worktree, its directory and the record.
	Delete(ctx context.Context, repoPath, id string) error

	// ReconcileStatus recomputes active/broken from the filesystem. Archived is sticky.
	ReconcileStatus(ctx context.Context, repoPath, id string) (constants.WorkspaceStatus, error)

	// ReconcileAll reconciles every workspace of the repository. Workhorse
	// worktrees that no record claims are reported as broken under their
	// worktree name.
	ReconcileAll(ctx context.Context, repoPath string) (map[string]constants.WorkspaceStatus, error)

	// Access stamps the last-accessed time.
	Access(ctx context.Context, repoPath, id string) (*domain.WorkspaceMetadata, error)

	AddTag(ctx context.Context, repoPath, id, tag string) (*domain.WorkspaceMetadata, error)
	RemoveTag(ctx context.Context, repoPath, id, tag string) (*domain.WorkspaceMetadata, error)
	SetCustomField(ctx context.Context, repoPath, id, key, value string) (*domain.WorkspaceMetadata, error)
	RemoveCustomField(ctx context.Context, repoPath, id, key string) (*domain.WorkspaceMetadata, error)

	FindByTag(ctx context.Context, repoPath, tag string) ([]*domain.WorkspaceMetadata, error)
	FindByStatus(ctx context.Context, repoPath string, status constants.WorkspaceStatus) ([]*domain.WorkspaceMetadata, error)

	// CleanupBroken deletes every broken workspace and every workhorse
	// worktree no record claims. Returns the removed ids and worktree names.
	CleanupBroken(ctx context.Context, repoPath string) ([]string, error)

	Statistics(ctx context.Context, repoPath string) (*domain.WorkspaceStatistics, error)

	// RebuildIndex regenerates the summary index from the records.
	RebuildIndex(ctx context.Context, repoPath string) (*domain.WorkspaceIndex, error)
}

// RepositoryChecker reports whether a repository is under workhorse management.
type RepositoryChecker interface {
	IsManaged(ctx context.Context, repoPath string) bool
}

// DefaultManager implements Manager using Store and git.VersionControl.
type DefaultManager struct {
	store            Store
	vcs              git.VersionControl
	repos            RepositoryChecker
	clock            clock.Clock
	reconcileWorkers int
	basePath         string
}

// ManagerOption configures a DefaultManager.
type ManagerOption func(*DefaultManager)

// WithClock sets the clock used for timestamps.
func WithClock(c clock.Clock) ManagerOption {
	return func(m *DefaultManager) {
		m.clock = c
	}
}

// WithReconcileWorkers bounds the concurrent health probes of ReconcileAll.
func WithReconcileWorkers(n int) ManagerOption {
	return func(m *DefaultManager) {
		if n > 0 {
			m.reconcileWorkers = n
		}
	}
}

// WithBasePath sets where worktrees go when a create request names no base
// path. Empty keeps the parent directory of the repository.
func WithBasePath(dir string) ManagerOption {
	return func(m *DefaultManager) {
		m.basePath = dir
	}
}

// NewManager creates a new DefaultManager.
func NewManager(store Store, vcs git.VersionControl, repos RepositoryChecker, opts ...ManagerOption) *DefaultManager {
	m := &DefaultManager{
		store:            store,
		vcs:              vcs,
		repos:            repos,
		clock:            clock.RealClock{},
		reconcileWorkers: constants.DefaultReconcileWorkers,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var _ Manager = (*DefaultManager)(nil)

// Create creates a new workspace backed by a fresh worktree.
func (m *DefaultManager) Create(ctx context.Context, repoPath string, req domain.CreateWorkspaceRequest) (*domain.WorkspaceMetadata, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	if err := ValidateName(req.Name); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	repoPath, err := normalizeRepoPath(repoPath)
	if err != nil {
		return nil, err
	}
	if !m.repos.IsManaged(ctx, repoPath) {
		return nil, fmt.Errorf("failed to create workspace in '%s': %w", repoPath, whErrors.ErrRepositoryNotManaged)
	}
	if !m.vcs.IsRepository(ctx, repoPath) {
		return nil, fmt.Errorf("failed to create workspace in '%s': %w", repoPath, whErrors.ErrNotGitRepo)
	}

	target, err := TargetPath(repoPath, cmp.Or(req.BasePath, m.basePath), req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace '%s': %w", req.Name, err)
	}
	if fsutil.Exists(target) {
		return nil, fmt.Errorf("failed to create workspace '%s': '%s': %w", req.Name, target, whErrors.ErrWorkspacePathExists)
	}
	if err := m.ensurePathUnclaimed(ctx, repoPath, target); err != nil {
		return nil, fmt.Errorf("failed to create workspace '%s': %w", req.Name, err)
	}

	id := uuid.New().String()
	worktree := WorktreeName(id)

	if err := m.vcs.CreateWorktree(ctx, repoPath, worktree, target, req.Branch); err != nil {
		return nil, fmt.Errorf("failed to create worktree for '%s': %w", req.Name, err)
	}

	// Without an explicit branch git creates one named after the worktree.
	branch := req.Branch
	if branch == "" {
		branch = worktree
	}

	now := m.clock.Now()
	meta := &domain.WorkspaceMetadata{
		ID:             id,
		Name:           req.Name,
		RepositoryPath: repoPath,
		WorkspacePath:  target,
		Branch:         branch,
		Status:         constants.WorkspaceStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
		LastAccessedAt: &now,
		Description:    req.Description,
		Tags:           domain.NormalizeTags(req.Tags),
		CustomFields:   map[string]string{},
	}

	if err := m.store.Save(ctx, meta); err != nil {
		m.rollbackWorktree(ctx, repoPath, worktree, target)
		return nil, fmt.Errorf("failed to persist workspace '%s': %w", req.Name, err)
	}

	m.reindex(ctx, repoPath)

	log.Info().
		Str("workspace_id", id).
		Str("name", req.Name).
		Str("path", target).
		Str("branch", branch).
		Msg("workspace created")

	return meta, nil
}

// ensurePathUnclaimed fails when another record already owns target.
func (m *DefaultManager) ensurePathUnclaimed(ctx context.Context, repoPath, target string) error {
	records, err := m.store.List(ctx, repoPath)
	if err != nil {
		return err
	}
	for _, r := range records {
		if filepath.Clean(r.WorkspacePath) == target {
			return fmt.Errorf("'%s' belongs to workspace '%s': %w", target, r.ID, whErrors.ErrWorkspacePathExists)
		}
	}
	return nil
}

// rollbackWorktree undoes a worktree whose record could not be written.
// A failure leaves a tree without record, which ReconcileAll reports and
// CleanupBroken removes.
func (m *DefaultManager) rollbackWorktree(ctx context.Context, repoPath, worktree, target string) {
	ctx = ctxutil.Detached(ctx)

	if err := m.vcs.RemoveWorktree(ctx, repoPath, worktree); err != nil {
		log.Error().Err(err).Str("worktree", worktree).Str("path", target).Msg("failed to roll back worktree")
	}
	if err := os.RemoveAll(target); err != nil {
		log.Error().Err(err).Str("path", target).Msg("failed to remove rolled back worktree directory")
	}
}

// Get retrieves a workspace by id.
func (m *DefaultManager) Get(ctx context.Context, repoPath, id string) (*domain.WorkspaceMetadata, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	return m.store.Load(ctx, repoPath, id)
}

// Info returns the record together with the live state of its worktree.
func (m *DefaultManager) Info(ctx context.Context, repoPath, id string) (*domain.WorkspaceInfo, error) {
	meta, err := m.Get(ctx, repoPath, id)
	if err != nil {
		return nil, err
	}

	info := &domain.WorkspaceInfo{Metadata: meta}
	info.PathExists = fsutil.IsDir(meta.WorkspacePath)
	if info.PathExists {
		info.IsGitWorktree = m.vcs.IsRepository(ctx, meta.WorkspacePath)
	}
	if info.IsGitWorktree {
		status, err := m.vcs.Status(ctx, meta.WorkspacePath)
		if err != nil {
			log.Warn().Err(err).Str("workspace_id", id).Msg("failed to read worktree status")
		} else {
			info.GitStatus = &domain.GitStatus{
				Branch: status.Branch,
				Dirty:  status.Dirty,
				Ahead:  status.Ahead,
				Behind: status.Behind,
				Files:  len(status.Files),
			}
		}
	}
	return info, nil
}

// List returns all workspaces sorted by creation time, newest first.
func (m *DefaultManager) List(ctx context.Context, repoPath string) ([]*domain.WorkspaceMetadata, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	records, err := m.store.List(ctx, repoPath)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(records)
	return records, nil
}

// Archive marks a workspace archived.
func (m *DefaultManager) Archive(ctx context.Context, repoPath string, req domain.ArchiveWorkspaceRequest) (*domain.WorkspaceMetadata, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	meta, err := m.store.Load(ctx, repoPath, req.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to archive workspace: %w", err)
	}
	if meta.Status == constants.WorkspaceStatusArchived {
		return nil, fmt.Errorf("failed to archive workspace '%s': %w", meta.ID, whErrors.ErrWorkspaceAlreadyArchived)
	}

	if !req.KeepFiles {
		if err := m.vcs.RemoveWorktree(ctx, repoPath, WorktreeName(meta.ID)); err != nil {
			log.Warn().Err(err).Str("workspace_id", meta.ID).Msg("failed to remove worktree while archiving")
		}
		if err := os.RemoveAll(meta.WorkspacePath); err != nil {
			return nil, fmt.Errorf("failed to remove files of workspace '%s': %w", meta.ID, err)
		}
	}

	// The record may have changed while the worktree was removed.
	meta, err = m.store.Update(ctx, repoPath, meta.ID, func(cur *domain.WorkspaceMetadata) (bool, error) {
		if cur.Status == constants.WorkspaceStatusArchived {
			return false, whErrors.ErrWorkspaceAlreadyArchived
		}
		now := m.clock.Now()
		cur.Status = constants.WorkspaceStatusArchived
		cur.ArchivedAt = &now
		cur.UpdatedAt = now
		if req.ArchiveReason != "" {
			if cur.CustomFields == nil {
				cur.CustomFields = map[string]string{}
			}
			cur.CustomFields[constants.ArchiveReasonField] = req.ArchiveReason
		}
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to archive workspace '%s': %w", req.WorkspaceID, err)
	}
	m.reindex(ctx, repoPath)

	log.Info().Str("workspace_id", meta.ID).Bool("keep_files", req.KeepFiles).Msg("workspace archived")
	return meta, nil
}

// Restore brings an archived workspace back.
func (m *DefaultManager) Restore(ctx context.Context, repoPath, id string) (*domain.WorkspaceMetadata, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	meta, err := m.store.Load(ctx, repoPath, id)
	if err != nil {
		return nil, fmt.Errorf("failed to restore workspace: %w", err)
	}
	if meta.Status != constants.WorkspaceStatusArchived {
		return nil, fmt.Errorf("failed to restore workspace '%s': %w", id, whErrors.ErrWorkspaceNotArchived)
	}

	if !fsutil.Exists(meta.WorkspacePath) {
		worktree := WorktreeName(meta.ID)
		branch := meta.Branch
		if branch == "" {
			branch = worktree
		}
		if err := m.vcs.CreateWorktree(ctx, repoPath, worktree, meta.WorkspacePath, branch); err != nil {
			return nil, fmt.Errorf("failed to recreate worktree of workspace '%s': %w", id, err)
		}
	}

	meta, err = m.store.Update(ctx, repoPath, id, func(cur *domain.WorkspaceMetadata) (bool, error) {
		if cur.Status != constants.WorkspaceStatusArchived {
			return false, whErrors.ErrWorkspaceNotArchived
		}
		now := m.clock.Now()
		cur.Status = constants.WorkspaceStatusActive
		cur.ArchivedAt = nil
		cur.LastAccessedAt = &now
		cur.UpdatedAt = now
		delete(cur.CustomFields, constants.ArchiveReasonField)
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to restore workspace '%s': %w", id, err)
	}
	m.reindex(ctx, repoPath)

	log.Info().Str("workspace_id", id).Msg("workspace restored")
	return meta, nil
}

// Delete removes the worktree, its directory and the record. Cleanup
// failures are logged and do not stop the record from being deleted.
func (m *DefaultManager) Delete(ctx context.Context, repoPath, id string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	meta, err := m.store.Load(ctx, repoPath, id)
	if err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}

	var warnings []error

	if err := m.vcs.RemoveWorktree(ctx, repoPath, WorktreeName(meta.ID)); err != nil && !errors.Is(err, whErrors.ErrWorktreeNotFound) {
		warnings = append(warnings, fmt.Errorf("failed to remove worktree: %w", err))
	}
	if fsutil.Exists(meta.WorkspacePath) {
		if err := os.RemoveAll(meta.WorkspacePath); err != nil {
			warnings = append(warnings, fmt.Errorf("failed to remove directory '%s': %w", meta.WorkspacePath, err))
		}
	}
	if err := m.vcs.PruneWorktrees(ctx, repoPath); err != nil {
		warnings = append(warnings, fmt.Errorf("failed to prune worktrees: %w", err))
	}

	for _, warn := range warnings {
		log.Warn().Err(warn).Str("workspace_id", id).Msg("delete warning")
	}

	if err := m.store.Delete(ctx, repoPath, id); err != nil {
		return fmt.Errorf("failed to delete workspace '%s': %w", id, err)
	}
	m.reindex(ctx, repoPath)

	log.Info().Str("workspace_id", id).Msg("workspace deleted")
	return nil
}

// health computes the status a non-archived workspace should have.
func (m *DefaultManager) health(ctx context.Context, meta *domain.WorkspaceMetadata) constants.WorkspaceStatus {
	if meta.Status == constants.WorkspaceStatusArchived {
		return constants.WorkspaceStatusArchived
	}
	if !fsutil.IsDir(meta.WorkspacePath) || !m.vcs.IsRepository(ctx, meta.WorkspacePath) {
		return constants.WorkspaceStatusBroken
	}
	return constants.WorkspaceStatusActive
}

// reconcile applies health to meta, persisting only a changed status. The
// probe runs outside the store lock; the record is re-read before writing so
// a concurrent archive wins.
func (m *DefaultManager) reconcile(ctx context.Context, repoPath string, meta *domain.WorkspaceMetadata) (constants.WorkspaceStatus, bool, error) {
	status := m.health(ctx, meta)
	if status == meta.Status {
		return status, false, nil
	}

	changed := false
	updated, err := m.store.Update(ctx, repoPath, meta.ID, func(cur *domain.WorkspaceMetadata) (bool, error) {
		if cur.Status == status || cur.Status == constants.WorkspaceStatusArchived {
			return false, nil
		}
		log.Info().
			Str("workspace_id", cur.ID).
			Str("from", cur.Status.String()).
			Str("to", status.String()).
			Msg("workspace status changed")

		cur.Status = status
		cur.UpdatedAt = m.clock.Now()
		changed = true
		return true, nil
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to save status of workspace '%s': %w", meta.ID, err)
	}
	return updated.Status, changed, nil
}

// ReconcileStatus recomputes the status of one workspace.
func (m *DefaultManager) ReconcileStatus(ctx context.Context, repoPath, id string) (constants.WorkspaceStatus, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	meta, err := m.store.Load(ctx, repoPath, id)
	if err != nil {
		return "", fmt.Errorf("failed to reconcile workspace: %w", err)
	}

	status, changed, err := m.reconcile(ctx, repoPath, meta)
	if err != nil {
		return "", err
	}
	if changed {
		m.reindex(ctx, repoPath)
	}
	return status, nil
}

// ReconcileAll reconciles every workspace, probing at most
// reconcileWorkers worktrees at a time.
func (m *DefaultManager) ReconcileAll(ctx context.Context, repoPath string) (map[string]constants.WorkspaceStatus, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	records, err := m.store.List(ctx, repoPath)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		changed bool
		results = make(map[string]constants.WorkspaceStatus, len(records))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.reconcileWorkers)
	for _, meta := range records {
		g.Go(func() error {
			status, didChange, err := m.reconcile(gctx, repoPath, meta)
			if err != nil {
				return err
			}
			mu.Lock()
			results[meta.ID] = status
			changed = changed || didChange
			mu.Unlock()
			return nil
		})
	}

	err = g.Wait()
	if changed {
		m.reindex(ctx, repoPath)
	}
	if err != nil {
		return results, fmt.Errorf("failed to reconcile workspaces: %w", err)
	}

	for _, wt := range m.orphanedWorktrees(ctx, repoPath, records) {
		log.Warn().
			Str("worktree", wt.Name).
			Str("path", wt.Path).
			Msg("worktree has no workspace record")
		results[wt.Name] = constants.WorkspaceStatusBroken
	}
	return results, nil
}

// orphanedWorktrees returns the workhorse worktrees of repoPath that no
// record in records claims. A listing failure is logged and yields none.
func (m *DefaultManager) orphanedWorktrees(ctx context.Context, repoPath string, records []*domain.WorkspaceMetadata) []git.Worktree {
	worktrees, err := m.vcs.ListWorktrees(ctx, repoPath)
	if err != nil {
		log.Warn().Err(err).Str("repository", repoPath).Msg("failed to list worktrees")
		return nil
	}

	claimed := make(map[string]bool, len(records))
	for _, r := range records {
		claimed[WorktreeName(r.ID)] = true
	}

	var orphans []git.Worktree
	for _, wt := range worktrees {
		if strings.HasPrefix(wt.Name, constants.WorktreeNamePrefix) && !claimed[wt.Name] {
			orphans = append(orphans, wt)
		}
	}
	return orphans
}

// update applies fn to a record under the store lock and saves it when fn
// reports a change.
func (m *DefaultManager) update(ctx context.Context, repoPath, id string, fn func(meta *domain.WorkspaceMetadata) bool) (*domain.WorkspaceMetadata, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	changed := false
	meta, err := m.store.Update(ctx, repoPath, id, func(meta *domain.WorkspaceMetadata) (bool, error) {
		if !fn(meta) {
			return false, nil
		}
		meta.UpdatedAt = m.clock.Now()
		changed = true
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update workspace '%s': %w", id, err)
	}
	if changed {
		m.reindex(ctx, repoPath)
	}
	return meta, nil
}

// Access stamps the last-accessed time.
func (m *DefaultManager) Access(ctx context.Context, repoPath, id string) (*domain.WorkspaceMetadata, error) {
	return m.update(ctx, repoPath, id, func(meta *domain.WorkspaceMetadata) bool {
		now := m.clock.Now()
		meta.LastAccessedAt = &now
		return true
	})
}

// AddTag adds tag to the workspace. Adding a present tag is a no-op.
func (m *DefaultManager) AddTag(ctx context.Context, repoPath, id, tag string) (*domain.WorkspaceMetadata, error) {
	if tag == "" {
		return nil, fmt.Errorf("tag cannot be empty: %w", whErrors.ErrEmptyValue)
	}
	return m.update(ctx, repoPath, id, func(meta *domain.WorkspaceMetadata) bool {
		meta.Tags = domain.NormalizeTags(meta.Tags)
		return meta.AddTag(tag)
	})
}

// RemoveTag removes tag from the workspace. Removing an absent tag is a no-op.
func (m *DefaultManager) RemoveTag(ctx context.Context, repoPath, id, tag string) (*domain.WorkspaceMetadata, error) {
	if tag == "" {
		return nil, fmt.Errorf("tag cannot be empty: %w", whErrors.ErrEmptyValue)
	}
	return m.update(ctx, repoPath, id, func(meta *domain.WorkspaceMetadata) bool {
		meta.Tags = domain.NormalizeTags(meta.Tags)
		return meta.RemoveTag(tag)
	})
}

// SetCustomField sets key to value.
func (m *DefaultManager) SetCustomField(ctx context.Context, repoPath, id, key, value string) (*domain.WorkspaceMetadata, error) {
	if key == "" {
		return nil, fmt.Errorf("custom field key cannot be empty: %w", whErrors.ErrEmptyValue)
	}
	return m.update(ctx, repoPath, id, func(meta *domain.WorkspaceMetadata) bool {
		if old, ok := meta.CustomFields[key]; ok && old == value {
			return false
		}
		if meta.CustomFields == nil {
			meta.CustomFields = map[string]string{}
		}
		meta.CustomFields[key] = value
		return true
	})
}

// RemoveCustomField deletes key. Removing an absent key is a no-op.
func (m *DefaultManager) RemoveCustomField(ctx context.Context, repoPath, id, key string) (*domain.WorkspaceMetadata, error) {
	if key == "" {
		return nil, fmt.Errorf("custom field key cannot be empty: %w", whErrors.ErrEmptyValue)
	}
	return m.update(ctx, repoPath, id, func(meta *domain.WorkspaceMetadata) bool {
		if _, ok := meta.CustomFields[key]; !ok {
			return false
		}
		delete(meta.CustomFields, key)
		return true
	})
}

// FindByTag returns the workspaces carrying tag, newest first.
func (m *DefaultManager) FindByTag(ctx context.Context, repoPath, tag string) ([]*domain.WorkspaceMetadata, error) {
	return m.filter(ctx, repoPath, func(meta *domain.WorkspaceMetadata) bool {
		return slices.Contains(meta.Tags, tag)
	})
}

// FindByStatus returns the workspaces in status, newest first.
func (m *DefaultManager) FindByStatus(ctx context.Context, repoPath string, status constants.WorkspaceStatus) ([]*domain.WorkspaceMetadata, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown workspace status '%s': %w", status, whErrors.ErrInvalidArgument)
	}
	return m.filter(ctx, repoPath, func(meta *domain.WorkspaceMetadata) bool {
		return meta.Status == status
	})
}

func (m *DefaultManager) filter(ctx context.Context, repoPath string, keep func(*domain.WorkspaceMetadata) bool) ([]*domain.WorkspaceMetadata, error) {
	records, err := m.List(ctx, repoPath)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(records, func(meta *domain.WorkspaceMetadata) bool {
		return !keep(meta)
	}), nil
}

// CleanupBroken deletes every broken workspace.
func (m *DefaultManager) CleanupBroken(ctx context.Context, repoPath string) ([]string, error) {
	broken, err := m.FindByStatus(ctx, repoPath, constants.WorkspaceStatusBroken)
	if err != nil {
		return nil, err
	}

	removed := make([]string, 0, len(broken))
	for _, meta := range broken {
		if err := m.Delete(ctx, repoPath, meta.ID); err != nil {
			if ctx.Err() != nil {
				return removed, ctx.Err()
			}
			log.Warn().Err(err).Str("workspace_id", meta.ID).Msg("failed to clean up broken workspace")
			continue
		}
		removed = append(removed, meta.ID)
	}

	records, err := m.store.List(ctx, repoPath)
	if err != nil {
		return removed, err
	}
	for _, wt := range m.orphanedWorktrees(ctx, repoPath, records) {
		if err := m.vcs.RemoveWorktree(ctx, repoPath, wt.Name); err != nil && !errors.Is(err, whErrors.ErrWorktreeNotFound) {
			log.Warn().Err(err).Str("worktree", wt.Name).Msg("failed to remove orphaned worktree")
			continue
		}
		if err := os.RemoveAll(wt.Path); err != nil {
			log.Warn().Err(err).Str("path", wt.Path).Msg("failed to remove orphaned worktree directory")
		}
		log.Info().Str("worktree", wt.Name).Str("path", wt.Path).Msg("orphaned worktree removed")
		removed = append(removed, wt.Name)
	}
	return removed, nil
}

func sortNewestFirst(records []*domain.WorkspaceMetadata) {
	slices.SortFunc(records, func(a, b *domain.WorkspaceMetadata) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func normalizeRepoPath(repoPath string) (string, error) {
	if repoPath == "" {
		return "", fmt.Errorf("repository path: %w", whErrors.ErrEmptyValue)
	}
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve repository path '%s': %w", repoPath, err)
	}
	return abs, nil
}
