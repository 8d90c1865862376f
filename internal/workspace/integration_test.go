package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CoderDKai/workhorse/internal/constants"
	"github.com/CoderDKai/workhorse/internal/domain"
	"github.com/CoderDKai/workhorse/internal/git"
	"github.com/CoderDKai/workhorse/internal/repository"
	"github.com/CoderDKai/workhorse/internal/testutil"
)

type repoChecker struct{}

func (repoChecker) IsManaged(_ context.Context, repoPath string) bool {
	return repository.IsManaged(repoPath)
}

func newGitManager(t *testing.T) (*DefaultManager, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("runs git")
	}
	repo := testutil.GitRepo(t, "app")

	_, err := repository.Initialize(repo)
	require.NoError(t, err)
	require.NoError(t, repository.SaveConfig(repo, &domain.RepositoryConfig{Name: "app", DefaultBranch: "main"}))

	return NewManager(NewFileStore(), git.NewCLI(), repoChecker{}), repo
}

func TestIntegration_BrokenWorkspaceLifecycle(t *testing.T) {
	ctx := context.Background()
	mgr, repo := newGitManager(t)

	meta, err := mgr.Create(ctx, repo, domain.CreateWorkspaceRequest{Name: "w", Branch: "main"})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(meta.WorkspacePath, "README.md"))

	status, err := mgr.ReconcileStatus(ctx, repo, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.WorkspaceStatusActive, status)

	require.NoError(t, os.RemoveAll(meta.WorkspacePath))

	status, err = mgr.ReconcileStatus(ctx, repo, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.WorkspaceStatusBroken, status)

	removed, err := mgr.CleanupBroken(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, []string{meta.ID}, removed)

	list, err := mgr.List(ctx, repo)
	require.NoError(t, err)
	assert.Empty(t, list)

	idx, err := NewFileStore().ReadIndex(ctx, repo)
	require.NoError(t, err)
	assert.Zero(t, idx.TotalCount)
}

func TestIntegration_ArchiveRestore(t *testing.T) {
	ctx := context.Background()
	mgr, repo := newGitManager(t)

	meta, err := mgr.Create(ctx, repo, domain.CreateWorkspaceRequest{Name: "feature"})
	require.NoError(t, err)

	_, err = mgr.Archive(ctx, repo, domain.ArchiveWorkspaceRequest{WorkspaceID: meta.ID})
	require.NoError(t, err)
	assert.NoDirExists(t, meta.WorkspacePath)

	restored, err := mgr.Restore(ctx, repo, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.WorkspaceStatusActive, restored.Status)
	assert.FileExists(t, filepath.Join(meta.WorkspacePath, "README.md"))

	info, err := mgr.Info(ctx, repo, meta.ID)
	require.NoError(t, err)
	assert.True(t, info.IsGitWorktree)
	require.NotNil(t, info.GitStatus)
	assert.Equal(t, meta.Branch, info.GitStatus.Branch)

	require.NoError(t, mgr.Delete(ctx, repo, meta.ID))
	assert.NoDirExists(t, meta.WorkspacePath)

	worktrees, err := git.NewCLI().ListWorktrees(ctx, repo)
	require.NoError(t, err)
	assert.Empty(t, worktrees)
}
