package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CoderDKai/workhorse/internal/domain"
	whErrors "github.com/CoderDKai/workhorse/internal/errors"
	"github.com/CoderDKai/workhorse/internal/git"
	"github.com/CoderDKai/workhorse/internal/testutil"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(git.NewCLI(), openTestRegistry(t))
}

func TestManager_Validate(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	t.Run("missing path", func(t *testing.T) {
		res := m.Validate(ctx, filepath.Join(t.TempDir(), "missing"))
		require.ErrorIs(t, res.Err(), whErrors.ErrDirectoryNotFound)
	})

	t.Run("file", func(t *testing.T) {
		f := filepath.Join(t.TempDir(), "f")
		require.NoError(t, os.WriteFile(f, nil, 0o600))
		require.ErrorIs(t, m.Validate(ctx, f).Err(), whErrors.ErrNotADirectory)
	})

	t.Run("plain directory", func(t *testing.T) {
		testutil.RequireBinary(t, "git")
		require.ErrorIs(t, m.Validate(ctx, t.TempDir()).Err(), whErrors.ErrNotGitRepo)
	})
}

func TestManager_AddListRemove(t *testing.T) {
	ctx := context.Background()
	repo := testutil.GitRepo(t, "app")
	m := newTestManager(t)

	rec, err := m.Add(ctx, AddRequest{Path: repo, AutoPrune: true})
	require.NoError(t, err)
	assert.Equal(t, "app", rec.Name)
	assert.Equal(t, "main", rec.DefaultBranch)
	assert.NotEmpty(t, rec.ID)

	assert.True(t, m.IsManaged(ctx, repo))
	cfg, err := LoadConfig(repo)
	require.NoError(t, err)
	assert.Equal(t, "app", cfg.Name)
	assert.True(t, cfg.AutoPrune)

	t.Run("adding twice conflicts", func(t *testing.T) {
		_, err := m.Add(ctx, AddRequest{Path: repo})
		require.ErrorIs(t, err, whErrors.ErrRepositoryExists)
	})

	t.Run("resolve by id or path", func(t *testing.T) {
		got, err := m.Resolve(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.Path, got.Path)

		got, err = m.Resolve(ctx, repo)
		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)
	})

	list, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, m.Remove(ctx, rec.ID, true))
	assert.NoDirExists(t, ManagementPath(repo))
	assert.FileExists(t, filepath.Join(repo, "README.md"))

	_, err = m.Get(ctx, rec.ID)
	require.ErrorIs(t, err, whErrors.ErrRepositoryNotFound)
}

func TestManager_Add_KeepsExistingScripts(t *testing.T) {
	ctx := context.Background()
	repo := testutil.GitRepo(t, "svc")
	_, err := Initialize(repo)
	require.NoError(t, err)
	require.NoError(t, SaveConfig(repo, &domain.RepositoryConfig{
		Name:    "old",
		Scripts: []domain.ScriptDefinition{{Name: "lint", Command: "make lint"}},
	}))

	m := newTestManager(t)
	_, err = m.Add(ctx, AddRequest{Path: repo, Name: "service", DefaultBranch: "develop"})
	require.NoError(t, err)

	scripts, err := m.Scripts(ctx, repo)
	require.NoError(t, err)
	require.Len(t, scripts, 1)
	assert.Equal(t, "lint", scripts[0].Name)

	cfg, err := LoadConfig(repo)
	require.NoError(t, err)
	assert.Equal(t, "service", cfg.Name)
	assert.Equal(t, "develop", cfg.DefaultBranch)
}

func TestManager_Add_RejectsInvalid(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	_, err := m.Add(ctx, AddRequest{})
	require.ErrorIs(t, err, whErrors.ErrEmptyValue)

	_, err = m.Add(ctx, AddRequest{Path: filepath.Join(t.TempDir(), "missing")})
	require.ErrorIs(t, err, whErrors.ErrDirectoryNotFound)
}
