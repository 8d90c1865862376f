package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CoderDKai/workhorse/internal/clock"
	"github.com/CoderDKai/workhorse/internal/constants"
	"github.com/CoderDKai/workhorse/internal/domain"
	whErrors "github.com/CoderDKai/workhorse/internal/errors"
	"github.com/CoderDKai/workhorse/internal/git"
	"github.com/CoderDKai/workhorse/internal/testutil"
)

type fixture struct {
	repo  string
	store *mockStore
	vcs   *mockVCS
	clock *clock.Manual
	mgr   *DefaultManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := filepath.Join(t.TempDir(), "app")
	require.NoError(t, os.MkdirAll(repo, 0o750))

	f := &fixture{
		repo:  repo,
		store: newMockStore(),
		vcs:   newMockVCS(),
		clock: clock.NewManual(time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)),
	}
	f.mgr = NewManager(f.store, f.vcs, managedRepos(true), WithClock(f.clock))
	return f
}

func (f *fixture) create(t *testing.T, name string, tags ...string) *domain.WorkspaceMetadata {
	t.Helper()
	meta, err := f.mgr.Create(context.Background(), f.repo, domain.CreateWorkspaceRequest{Name: name, Tags: tags})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	return meta
}

func TestManager_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	meta, err := f.mgr.Create(ctx, f.repo, domain.CreateWorkspaceRequest{
		Name:        "auth",
		Branch:      "feat/auth",
		Description: "login flow",
		Tags:        []string{"b", "a", "b"},
	})
	require.NoError(t, err)

	assert.Equal(t, constants.WorkspaceStatusActive, meta.Status)
	assert.Equal(t, filepath.Join(filepath.Dir(f.repo), "app-auth"), meta.WorkspacePath)
	assert.Equal(t, "feat/auth", meta.Branch)
	assert.Equal(t, []string{"a", "b"}, meta.Tags)
	require.NotNil(t, meta.LastAccessedAt)
	assert.DirExists(t, meta.WorkspacePath)

	require.Len(t, f.vcs.createCalls, 1)
	assert.Equal(t, WorktreeName(meta.ID), f.vcs.createCalls[0].name)
	assert.Equal(t, "feat/auth", f.vcs.createCalls[0].branch)

	require.NotNil(t, f.store.get(meta.ID))
	require.NotNil(t, f.store.index)
	assert.Equal(t, 1, f.store.index.ActiveCount)
}

func TestManager_Create_DefaultBasePath(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	base := t.TempDir()
	mgr := NewManager(f.store, f.vcs, managedRepos(true), WithClock(f.clock), WithBasePath(base))

	meta, err := mgr.Create(ctx, f.repo, domain.CreateWorkspaceRequest{Name: "ui"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "app-ui"), meta.WorkspacePath)

	explicit := t.TempDir()
	meta, err = mgr.Create(ctx, f.repo, domain.CreateWorkspaceRequest{Name: "api", BasePath: explicit})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(explicit, "app-api"), meta.WorkspacePath)
}

func TestManager_Create_RecordsGeneratedBranch(t *testing.T) {
	f := newFixture(t)
	meta := f.create(t, "scratch")
	assert.Equal(t, WorktreeName(meta.ID), meta.Branch)
	assert.Empty(t, f.vcs.createCalls[0].branch)
}

func TestManager_Create_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid name", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.mgr.Create(ctx, f.repo, domain.CreateWorkspaceRequest{Name: "a/b"})
		require.ErrorIs(t, err, whErrors.ErrValueOutOfRange)
		assert.Empty(t, f.vcs.createCalls)
	})

	t.Run("unmanaged repository", func(t *testing.T) {
		f := newFixture(t)
		f.mgr.repos = managedRepos(false)
		_, err := f.mgr.Create(ctx, f.repo, domain.CreateWorkspaceRequest{Name: "x"})
		require.ErrorIs(t, err, whErrors.ErrRepositoryNotManaged)
		assert.Equal(t, whErrors.KindValidation, whErrors.KindOf(err))
	})

	t.Run("not a git repository", func(t *testing.T) {
		f := newFixture(t)
		f.vcs.notRepo[f.repo] = true
		_, err := f.mgr.Create(ctx, f.repo, domain.CreateWorkspaceRequest{Name: "x"})
		require.ErrorIs(t, err, whErrors.ErrNotGitRepo)
	})

	t.Run("target path exists", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, os.MkdirAll(filepath.Join(filepath.Dir(f.repo), "app-taken"), 0o750))
		_, err := f.mgr.Create(ctx, f.repo, domain.CreateWorkspaceRequest{Name: "taken"})
		require.ErrorIs(t, err, whErrors.ErrWorkspacePathExists)
		assert.Equal(t, whErrors.KindConflict, whErrors.KindOf(err))
		assert.Empty(t, f.vcs.createCalls)
	})

	t.Run("path claimed by an archived record", func(t *testing.T) {
		f := newFixture(t)
		meta := f.create(t, "twice")
		_, err := f.mgr.Archive(ctx, f.repo, domain.ArchiveWorkspaceRequest{WorkspaceID: meta.ID})
		require.NoError(t, err)

		_, err = f.mgr.Create(ctx, f.repo, domain.CreateWorkspaceRequest{Name: "twice"})
		require.ErrorIs(t, err, whErrors.ErrWorkspacePathExists)
	})

	t.Run("worktree failure", func(t *testing.T) {
		f := newFixture(t)
		f.vcs.createErr = whErrors.ErrGitOperation
		_, err := f.mgr.Create(ctx, f.repo, domain.CreateWorkspaceRequest{Name: "x"})
		require.ErrorIs(t, err, whErrors.ErrGitOperation)
		assert.Zero(t, f.store.saveCalls)
	})
}

func TestManager_Create_RollsBackWhenSaveFails(t *testing.T) {
	f := newFixture(t)
	f.store.saveErr = testutil.ErrMockDisk

	_, err := f.mgr.Create(context.Background(), f.repo, domain.CreateWorkspaceRequest{Name: "doomed"})
	require.ErrorIs(t, err, testutil.ErrMockDisk)

	require.Len(t, f.vcs.removeCalls, 1)
	assert.Equal(t, f.vcs.createCalls[0].name, f.vcs.removeCalls[0])
	assert.NoDirExists(t, f.vcs.createCalls[0].target)
}

func TestManager_OrphanedWorktreeAfterFailedRollback(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	kept := f.create(t, "kept")

	f.store.saveErr = testutil.ErrMockDisk
	f.vcs.removeErr = whErrors.ErrGitOperation
	_, err := f.mgr.Create(ctx, f.repo, domain.CreateWorkspaceRequest{Name: "doomed"})
	require.ErrorIs(t, err, testutil.ErrMockDisk)

	orphan := f.vcs.createCalls[len(f.vcs.createCalls)-1]
	f.store.saveErr = nil
	f.vcs.removeErr = nil
	f.vcs.worktrees = []git.Worktree{
		{Name: WorktreeName(kept.ID), Path: kept.WorkspacePath},
		{Name: orphan.name, Path: orphan.target},
		{Name: "hotfix", Path: filepath.Join(t.TempDir(), "hotfix")},
	}

	results, err := f.mgr.ReconcileAll(ctx, f.repo)
	require.NoError(t, err)
	assert.Equal(t, map[string]constants.WorkspaceStatus{
		kept.ID:     constants.WorkspaceStatusActive,
		orphan.name: constants.WorkspaceStatusBroken,
	}, results)

	removed, err := f.mgr.CleanupBroken(ctx, f.repo)
	require.NoError(t, err)
	assert.Equal(t, []string{orphan.name}, removed)
	assert.Contains(t, f.vcs.removeCalls, orphan.name)
	assert.NotContains(t, f.vcs.removeCalls, "hotfix", "worktrees created outside workhorse are left alone")
	assert.NotNil(t, f.store.get(kept.ID))

	results, err = f.mgr.ReconcileAll(ctx, f.repo)
	require.NoError(t, err)
	assert.NotContains(t, results, orphan.name)
}

func TestManager_ArchiveLosesToConcurrentArchive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	meta := f.create(t, "raced")

	// Another caller archives the record between the load and the commit.
	f.vcs.onRemove = func() {
		stored := f.store.get(meta.ID)
		stored.Status = constants.WorkspaceStatusArchived
	}

	_, err := f.mgr.Archive(ctx, f.repo, domain.ArchiveWorkspaceRequest{WorkspaceID: meta.ID, ArchiveReason: "late"})
	require.ErrorIs(t, err, whErrors.ErrWorkspaceAlreadyArchived)
	assert.NotContains(t, f.store.get(meta.ID).CustomFields, constants.ArchiveReasonField)
}

func TestManager_Create_IndexFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.store.indexErr = testutil.ErrMockDisk

	meta, err := f.mgr.Create(context.Background(), f.repo, domain.CreateWorkspaceRequest{Name: "ok"})
	require.NoError(t, err)
	assert.NotNil(t, f.store.get(meta.ID))
	assert.Equal(t, 1, f.store.indexCalls)
}

func TestManager_ArchiveRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("removes files and recreates them", func(t *testing.T) {
		f := newFixture(t)
		meta := f.create(t, "feature")

		archived, err := f.mgr.Archive(ctx, f.repo, domain.ArchiveWorkspaceRequest{
			WorkspaceID:   meta.ID,
			ArchiveReason: "merged",
		})
		require.NoError(t, err)
		assert.Equal(t, constants.WorkspaceStatusArchived, archived.Status)
		require.NotNil(t, archived.ArchivedAt)
		assert.Equal(t, "merged", archived.CustomFields[constants.ArchiveReasonField])
		assert.NoDirExists(t, meta.WorkspacePath)
		assert.Equal(t, []string{WorktreeName(meta.ID)}, f.vcs.removeCalls)

		_, err = f.mgr.Archive(ctx, f.repo, domain.ArchiveWorkspaceRequest{WorkspaceID: meta.ID})
		require.ErrorIs(t, err, whErrors.ErrWorkspaceAlreadyArchived)

		restored, err := f.mgr.Restore(ctx, f.repo, meta.ID)
		require.NoError(t, err)
		assert.Equal(t, constants.WorkspaceStatusActive, restored.Status)
		assert.Nil(t, restored.ArchivedAt)
		assert.NotContains(t, restored.CustomFields, constants.ArchiveReasonField)
		assert.DirExists(t, meta.WorkspacePath)

		require.Len(t, f.vcs.createCalls, 2)
		assert.Equal(t, meta.Branch, f.vcs.createCalls[1].branch)

		_, err = f.mgr.Restore(ctx, f.repo, meta.ID)
		require.ErrorIs(t, err, whErrors.ErrWorkspaceNotArchived)
	})

	t.Run("keep files", func(t *testing.T) {
		f := newFixture(t)
		meta := f.create(t, "keep")

		_, err := f.mgr.Archive(ctx, f.repo, domain.ArchiveWorkspaceRequest{WorkspaceID: meta.ID, KeepFiles: true})
		require.NoError(t, err)
		assert.DirExists(t, meta.WorkspacePath)
		assert.Empty(t, f.vcs.removeCalls)

		_, err = f.mgr.Restore(ctx, f.repo, meta.ID)
		require.NoError(t, err)
		assert.Len(t, f.vcs.createCalls, 1, "existing directory is reused")
	})

	t.Run("worktree removal failure is only a warning", func(t *testing.T) {
		f := newFixture(t)
		meta := f.create(t, "stuck")
		f.vcs.removeErr = whErrors.ErrGitOperation

		archived, err := f.mgr.Archive(ctx, f.repo, domain.ArchiveWorkspaceRequest{WorkspaceID: meta.ID})
		require.NoError(t, err)
		assert.Equal(t, constants.WorkspaceStatusArchived, archived.Status)
	})

	t.Run("unknown id", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.mgr.Archive(ctx, f.repo, domain.ArchiveWorkspaceRequest{WorkspaceID: "nope"})
		require.ErrorIs(t, err, whErrors.ErrWorkspaceNotFound)
	})
}

func TestManager_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	meta := f.create(t, "bye")
	f.vcs.pruneErr = whErrors.ErrGitOperation

	require.NoError(t, f.mgr.Delete(ctx, f.repo, meta.ID))
	assert.NoDirExists(t, meta.WorkspacePath)
	assert.Nil(t, f.store.get(meta.ID))
	assert.Equal(t, 1, f.vcs.pruneCalls)
	assert.Equal(t, 0, f.store.index.TotalCount)

	require.ErrorIs(t, f.mgr.Delete(ctx, f.repo, meta.ID), whErrors.ErrWorkspaceNotFound)
}

func TestManager_Reconcile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	meta := f.create(t, "health")

	status, err := f.mgr.ReconcileStatus(ctx, f.repo, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.WorkspaceStatusActive, status)
	saves := f.store.saveCalls

	status, err = f.mgr.ReconcileStatus(ctx, f.repo, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.WorkspaceStatusActive, status)
	assert.Equal(t, saves, f.store.saveCalls, "unchanged status is not persisted")

	t.Run("not a worktree", func(t *testing.T) {
		f.vcs.notRepo[meta.WorkspacePath] = true

		status, err := f.mgr.ReconcileStatus(ctx, f.repo, meta.ID)
		require.NoError(t, err)
		assert.Equal(t, constants.WorkspaceStatusBroken, status)

		delete(f.vcs.notRepo, meta.WorkspacePath)
		status, err = f.mgr.ReconcileStatus(ctx, f.repo, meta.ID)
		require.NoError(t, err)
		assert.Equal(t, constants.WorkspaceStatusActive, status, "broken recovers")
	})

	t.Run("archived is sticky", func(t *testing.T) {
		_, err := f.mgr.Archive(ctx, f.repo, domain.ArchiveWorkspaceRequest{WorkspaceID: meta.ID})
		require.NoError(t, err)

		status, err := f.mgr.ReconcileStatus(ctx, f.repo, meta.ID)
		require.NoError(t, err)
		assert.Equal(t, constants.WorkspaceStatusArchived, status)
	})
}

func TestManager_ReconcileAll(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mgr = NewManager(f.store, f.vcs, managedRepos(true), WithClock(f.clock), WithReconcileWorkers(2))

	healthy := f.create(t, "one")
	missing := f.create(t, "two")
	archived := f.create(t, "three")
	require.NoError(t, os.RemoveAll(missing.WorkspacePath))
	_, err := f.mgr.Archive(ctx, f.repo, domain.ArchiveWorkspaceRequest{WorkspaceID: archived.ID})
	require.NoError(t, err)

	results, err := f.mgr.ReconcileAll(ctx, f.repo)
	require.NoError(t, err)
	assert.Equal(t, map[string]constants.WorkspaceStatus{
		healthy.ID:  constants.WorkspaceStatusActive,
		missing.ID:  constants.WorkspaceStatusBroken,
		archived.ID: constants.WorkspaceStatusArchived,
	}, results)
	assert.Equal(t, 1, f.store.index.BrokenCount)
}

func TestManager_CleanupBroken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	keep := f.create(t, "keep")
	lost := f.create(t, "lost")
	require.NoError(t, os.RemoveAll(lost.WorkspacePath))

	_, err := f.mgr.ReconcileAll(ctx, f.repo)
	require.NoError(t, err)

	removed, err := f.mgr.CleanupBroken(ctx, f.repo)
	require.NoError(t, err)
	assert.Equal(t, []string{lost.ID}, removed)
	assert.NotNil(t, f.store.get(keep.ID))
	assert.Nil(t, f.store.get(lost.ID))
}

func TestManager_AccessTagsFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	meta := f.create(t, "meta", "initial")

	t.Run("access stamps times only", func(t *testing.T) {
		got, err := f.mgr.Access(ctx, f.repo, meta.ID)
		require.NoError(t, err)
		assert.True(t, got.LastAccessedAt.Equal(f.clock.Now()))
		assert.True(t, got.UpdatedAt.Equal(f.clock.Now()))
		assert.Equal(t, meta.Status, got.Status)
	})

	t.Run("tags", func(t *testing.T) {
		got, err := f.mgr.AddTag(ctx, f.repo, meta.ID, "feature")
		require.NoError(t, err)
		assert.Equal(t, []string{"feature", "initial"}, got.Tags)

		saves := f.store.saveCalls
		_, err = f.mgr.AddTag(ctx, f.repo, meta.ID, "feature")
		require.NoError(t, err)
		assert.Equal(t, saves, f.store.saveCalls, "adding a present tag is a no-op")

		got, err = f.mgr.RemoveTag(ctx, f.repo, meta.ID, "initial")
		require.NoError(t, err)
		assert.Equal(t, []string{"feature"}, got.Tags)

		_, err = f.mgr.RemoveTag(ctx, f.repo, meta.ID, "initial")
		require.NoError(t, err)

		_, err = f.mgr.AddTag(ctx, f.repo, meta.ID, "")
		require.ErrorIs(t, err, whErrors.ErrEmptyValue)
	})

	t.Run("custom fields", func(t *testing.T) {
		got, err := f.mgr.SetCustomField(ctx, f.repo, meta.ID, "ticket", "AUTH-12")
		require.NoError(t, err)
		assert.Equal(t, "AUTH-12", got.CustomFields["ticket"])

		got, err = f.mgr.RemoveCustomField(ctx, f.repo, meta.ID, "ticket")
		require.NoError(t, err)
		assert.NotContains(t, got.CustomFields, "ticket")

		_, err = f.mgr.RemoveCustomField(ctx, f.repo, meta.ID, "ticket")
		require.NoError(t, err)

		_, err = f.mgr.SetCustomField(ctx, f.repo, meta.ID, "", "x")
		require.ErrorIs(t, err, whErrors.ErrEmptyValue)
	})

	t.Run("unknown workspace", func(t *testing.T) {
		_, err := f.mgr.AddTag(ctx, f.repo, "nope", "x")
		require.ErrorIs(t, err, whErrors.ErrWorkspaceNotFound)
	})
}

func TestManager_ListFindStatistics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first := f.create(t, "first", "backend")
	second := f.create(t, "second", "backend", "urgent")
	third := f.create(t, "third")
	require.NoError(t, os.RemoveAll(third.WorkspacePath))
	_, err := f.mgr.ReconcileStatus(ctx, f.repo, third.ID)
	require.NoError(t, err)

	list, err := f.mgr.List(ctx, f.repo)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, []string{list[0].ID, list[1].ID, list[2].ID})

	tagged, err := f.mgr.FindByTag(ctx, f.repo, "backend")
	require.NoError(t, err)
	assert.Len(t, tagged, 2)

	broken, err := f.mgr.FindByStatus(ctx, f.repo, constants.WorkspaceStatusBroken)
	require.NoError(t, err)
	require.Len(t, broken, 1)
	assert.Equal(t, third.ID, broken[0].ID)

	_, err = f.mgr.FindByStatus(ctx, f.repo, "paused")
	require.ErrorIs(t, err, whErrors.ErrInvalidArgument)

	stats, err := f.mgr.Statistics(ctx, f.repo)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCount)
	assert.Equal(t, 2, stats.StatusCounts["active"])
	assert.Equal(t, 1, stats.StatusCounts["broken"])
	assert.Equal(t, 0, stats.StatusCounts["archived"])
	assert.Equal(t, 2, stats.TagCounts["backend"])
	assert.Equal(t, first.ID, stats.OldestWorkspace)
	assert.Equal(t, third.ID, stats.NewestWorkspace)

	idx, err := f.mgr.RebuildIndex(ctx, f.repo)
	require.NoError(t, err)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, idx.WorkspaceIDs)
	assert.Equal(t, 1, idx.BrokenCount)
}

func TestManager_Info(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	meta := f.create(t, "info")

	info, err := f.mgr.Info(ctx, f.repo, meta.ID)
	require.NoError(t, err)
	assert.True(t, info.PathExists)
	assert.True(t, info.IsGitWorktree)
	require.NotNil(t, info.GitStatus)
	assert.Equal(t, "main", info.GitStatus.Branch)

	require.NoError(t, os.RemoveAll(meta.WorkspacePath))
	info, err = f.mgr.Info(ctx, f.repo, meta.ID)
	require.NoError(t, err)
	assert.False(t, info.PathExists)
	assert.Nil(t, info.GitStatus)
}

func TestManager_CanceledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.mgr.Create(ctx, f.repo, domain.CreateWorkspaceRequest{Name: "x"})
	require.ErrorIs(t, err, context.Canceled)
	_, err = f.mgr.List(ctx, f.repo)
	require.ErrorIs(t, err, context.Canceled)
}

func TestManager_ConcurrentEditsKeepEveryWrite(t *testing.T) {
	ctx := context.Background()
	repo := filepath.Join(t.TempDir(), "app")
	require.NoError(t, os.MkdirAll(repo, 0o750))

	store := NewFileStore()
	mgr := NewManager(store, newMockVCS(), managedRepos(true))
	meta, err := mgr.Create(ctx, repo, domain.CreateWorkspaceRequest{Name: "busy"})
	require.NoError(t, err)

	const writers = 20
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.AddTag(ctx, repo, meta.ID, fmt.Sprintf("t%02d", i))
			assert.NoError(t, err)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := mgr.SetCustomField(ctx, repo, meta.ID, "ticket", "WH-1")
		assert.NoError(t, err)
	}()
	wg.Wait()

	got, err := store.Load(ctx, repo, meta.ID)
	require.NoError(t, err)
	assert.Len(t, got.Tags, writers)
	assert.Equal(t, "WH-1", got.CustomFields["ticket"])
	assert.Equal(t, constants.WorkspaceStatusActive, got.Status)
}

func TestManager_ConcurrentArchiveAndTag(t *testing.T) {
	ctx := context.Background()
	repo := filepath.Join(t.TempDir(), "app")
	require.NoError(t, os.MkdirAll(repo, 0o750))

	store := NewFileStore()
	mgr := NewManager(store, newMockVCS(), managedRepos(true))
	meta, err := mgr.Create(ctx, repo, domain.CreateWorkspaceRequest{Name: "shelved"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := mgr.Archive(ctx, repo, domain.ArchiveWorkspaceRequest{WorkspaceID: meta.ID})
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, err := mgr.AddTag(ctx, repo, meta.ID, "late")
		assert.NoError(t, err)
	}()
	wg.Wait()

	got, err := store.Load(ctx, repo, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.WorkspaceStatusArchived, got.Status)
	assert.Contains(t, got.Tags, "late")
	assert.NoDirExists(t, meta.WorkspacePath)
}

func TestManager_Create_EmptyRepositoryPath(t *testing.T) {
	f := newFixture(t)

	_, err := f.mgr.Create(context.Background(), "", domain.CreateWorkspaceRequest{Name: "x"})
	require.ErrorIs(t, err, whErrors.ErrEmptyValue)
	assert.Contains(t, err.Error(), "repository path: ")
}
