package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/CoderDKai/workhorse/internal/clock"
	"github.com/CoderDKai/workhorse/internal/ctxutil"
	"github.com/CoderDKai/workhorse/internal/domain"
	whErrors "github.com/CoderDKai/workhorse/internal/errors"
	"github.com/CoderDKai/workhorse/internal/git"
)

// AddRequest holds the parameters for putting a repository under management.
type AddRequest struct {
	Path          string `json:"path"`
	Name          string `json:"name,omitempty"`
	DefaultBranch string `json:"default_branch,omitempty"`
	AutoPrune     bool   `json:"auto_prune"`
}

// ValidationResult describes whether a path can be managed.
type ValidationResult struct {
	PathExists  bool     `json:"path_exists"`
	IsDirectory bool     `json:"is_directory"`
	IsGitRepo   bool     `json:"is_git_repo"`
	IsManaged   bool     `json:"is_managed"`
	Warnings    []string `json:"warnings,omitempty"`
}

// Err returns the validation failure, or nil when the path can be added.
func (v *ValidationResult) Err() error {
	switch {
	case !v.PathExists:
		return whErrors.ErrDirectoryNotFound
	case !v.IsDirectory:
		return whErrors.ErrNotADirectory
	case !v.IsGitRepo:
		return whErrors.ErrNotGitRepo
	}
	return nil
}

// Manager adds, lists and removes managed repositories.
type Manager struct {
	vcs      git.VersionControl
	registry *Registry
	clock    clock.Clock
}

// NewManager creates a Manager.
func NewManager(vcs git.VersionControl, registry *Registry) *Manager {
	return &Manager{vcs: vcs, registry: registry, clock: clock.RealClock{}}
}

// Validate inspects path without changing anything.
func (m *Manager) Validate(ctx context.Context, path string) *ValidationResult {
	res := &ValidationResult{}

	info, err := os.Stat(path)
	if err != nil {
		return res
	}
	res.PathExists = true
	if !info.IsDir() {
		return res
	}
	res.IsDirectory = true
	res.IsGitRepo = m.vcs.IsRepository(ctx, path)
	res.IsManaged = IsManaged(path)
	if res.IsManaged {
		res.Warnings = append(res.Warnings, "repository already has a management folder")
	}
	return res
}

// IsManaged reports whether repoPath is under management. It satisfies the
// repository check the workspace manager needs.
func (m *Manager) IsManaged(_ context.Context, repoPath string) bool {
	return IsManaged(repoPath)
}

// Add validates path, creates the management layout and configuration, and
// registers the repository. An existing configuration keeps its scripts.
func (m *Manager) Add(ctx context.Context, req AddRequest) (*domain.RepositoryRecord, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if req.Path == "" {
		return nil, fmt.Errorf("repository path is required: %w", whErrors.ErrEmptyValue)
	}

	path, err := filepath.Abs(req.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve '%s': %w", req.Path, err)
	}

	if err := m.Validate(ctx, path).Err(); err != nil {
		return nil, fmt.Errorf("failed to add repository '%s': %w", path, err)
	}

	if _, err := m.registry.GetByPath(ctx, path); err == nil {
		return nil, fmt.Errorf("failed to add repository '%s': %w", path, whErrors.ErrRepositoryExists)
	} else if !errors.Is(err, whErrors.ErrRepositoryNotFound) {
		return nil, err
	}

	if _, err := Initialize(path); err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = filepath.Base(path)
	}

	branch := req.DefaultBranch
	if branch == "" {
		if status, err := m.vcs.Status(ctx, path); err == nil {
			branch = status.Branch
		} else {
			log.Warn().Err(err).Str("repository", path).Msg("could not detect default branch")
		}
	}

	now := m.clock.Now().UTC()
	cfg, err := LoadConfig(path)
	if err != nil {
		cfg = &domain.RepositoryConfig{CreatedAt: now}
	}
	cfg.Name = name
	cfg.DefaultBranch = branch
	cfg.AutoPrune = req.AutoPrune
	cfg.UpdatedAt = now
	if err := SaveConfig(path, cfg); err != nil {
		return nil, err
	}

	rec := &domain.RepositoryRecord{
		ID:            uuid.New().String(),
		Name:          name,
		Path:          path,
		DefaultBranch: branch,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := m.registry.Add(ctx, rec); err != nil {
		return nil, err
	}

	log.Info().Str("repository", path).Str("id", rec.ID).Msg("repository added")
	return rec, nil
}

// List returns every registered repository, newest first.
func (m *Manager) List(ctx context.Context) ([]*domain.RepositoryRecord, error) {
	return m.registry.List(ctx)
}

// Get returns the repository registered under id.
func (m *Manager) Get(ctx context.Context, id string) (*domain.RepositoryRecord, error) {
	return m.registry.Get(ctx, id)
}

// Resolve returns the registered repository whose id or path matches ref.
func (m *Manager) Resolve(ctx context.Context, ref string) (*domain.RepositoryRecord, error) {
	if rec, err := m.registry.Get(ctx, ref); err == nil {
		return rec, nil
	} else if !errors.Is(err, whErrors.ErrRepositoryNotFound) {
		return nil, err
	}

	path, err := filepath.Abs(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve '%s': %w", ref, err)
	}
	return m.registry.GetByPath(ctx, path)
}

// Remove unregisters the repository. With purge the management folder,
// including all workspace records, is deleted as well. Worktrees are never
// touched.
func (m *Manager) Remove(ctx context.Context, id string, purge bool) error {
	rec, err := m.registry.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := m.registry.Remove(ctx, id); err != nil {
		return err
	}

	if purge {
		if err := Purge(rec.Path); err != nil {
			log.Warn().Err(err).Str("repository", rec.Path).Msg("failed to remove management folder")
		}
	}

	log.Info().Str("repository", rec.Path).Bool("purged", purge).Msg("repository removed")
	return nil
}

// Scripts returns the script definitions of a managed repository.
func (m *Manager) Scripts(_ context.Context, repoPath string) ([]domain.ScriptDefinition, error) {
	cfg, err := LoadConfig(repoPath)
	if err != nil {
		return nil, err
	}
	return cfg.Scripts, nil
}
