package workspace

import (
	"context"
	"os"
	"slices"
	"sync"

	"github.com/CoderDKai/workhorse/internal/domain"
	whErrors "github.com/CoderDKai/workhorse/internal/errors"
	"github.com/CoderDKai/workhorse/internal/git"
)

// mockStore implements Store in memory. Records are copied on the way in
// and out like the file store does.
type mockStore struct {
	mu         sync.Mutex
	records    map[string]*domain.WorkspaceMetadata
	index      *domain.WorkspaceIndex
	saveErr    error
	listErr    error
	deleteErr  error
	indexErr   error
	saveCalls  int
	indexCalls int
}

func newMockStore() *mockStore {
	return &mockStore{records: make(map[string]*domain.WorkspaceMetadata)}
}

func (m *mockStore) Save(_ context.Context, meta *domain.WorkspaceMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records[meta.ID] = meta.Clone()
	return nil
}

func (m *mockStore) Load(_ context.Context, _, id string) (*domain.WorkspaceMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	meta, ok := m.records[id]
	if !ok {
		return nil, whErrors.ErrWorkspaceNotFound
	}
	return meta.Clone(), nil
}

func (m *mockStore) List(_ context.Context, _ string) ([]*domain.WorkspaceMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*domain.WorkspaceMetadata, 0, len(m.records))
	for _, meta := range m.records {
		out = append(out, meta.Clone())
	}
	return out, nil
}

func (m *mockStore) Update(_ context.Context, _, id string, fn func(*domain.WorkspaceMetadata) (bool, error)) (*domain.WorkspaceMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.records[id]
	if !ok {
		return nil, whErrors.ErrWorkspaceNotFound
	}
	meta := stored.Clone()
	changed, err := fn(meta)
	if err != nil {
		return nil, err
	}
	if !changed {
		return meta, nil
	}
	m.saveCalls++
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	m.records[id] = meta.Clone()
	return meta, nil
}

func (m *mockStore) Delete(_ context.Context, _, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.records[id]; !ok {
		return whErrors.ErrWorkspaceNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *mockStore) WriteIndex(_ context.Context, _ string, idx *domain.WorkspaceIndex) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexCalls++
	if m.indexErr != nil {
		return m.indexErr
	}
	m.index = idx
	return nil
}

func (m *mockStore) ReadIndex(_ context.Context, _ string) (*domain.WorkspaceIndex, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index == nil {
		return nil, whErrors.ErrWorkspaceNotFound
	}
	return m.index, nil
}

func (m *mockStore) get(id string) *domain.WorkspaceMetadata {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[id]
}

// mockVCS implements git.VersionControl. CreateWorktree creates the target
// directory; IsRepository reports true for directories not listed in notRepo.
// ListWorktrees returns worktrees as seeded by the test.
type mockVCS struct {
	mu        sync.Mutex
	notRepo   map[string]bool
	status    *git.Status
	createErr error
	removeErr error
	pruneErr  error
	worktrees []git.Worktree
	onRemove  func()

	createCalls []createCall
	removeCalls []string
	pruneCalls  int
}

type createCall struct {
	name, target, branch string
}

func newMockVCS() *mockVCS {
	return &mockVCS{notRepo: map[string]bool{}, status: &git.Status{Branch: "main"}}
}

func (v *mockVCS) IsRepository(_ context.Context, path string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	info, err := os.Stat(path)
	return err == nil && info.IsDir() && !v.notRepo[path]
}

func (v *mockVCS) Open(_ context.Context, path string) (*git.Repository, error) {
	return &git.Repository{TopLevel: path}, nil
}

func (v *mockVCS) Status(_ context.Context, _ string) (*git.Status, error) {
	return v.status, nil
}

func (v *mockVCS) ListBranches(_ context.Context, _ string) ([]git.Branch, error) {
	return nil, nil
}

func (v *mockVCS) CreateWorktree(_ context.Context, _, name, target, branch string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.createCalls = append(v.createCalls, createCall{name: name, target: target, branch: branch})
	if v.createErr != nil {
		return v.createErr
	}
	return os.MkdirAll(target, 0o750)
}

func (v *mockVCS) ListWorktrees(_ context.Context, _ string) ([]git.Worktree, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.worktrees), nil
}

func (v *mockVCS) RemoveWorktree(_ context.Context, _, name string) error {
	v.mu.Lock()
	hook := v.onRemove
	v.mu.Unlock()
	if hook != nil {
		hook()
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.removeCalls = append(v.removeCalls, name)
	if v.removeErr != nil {
		return v.removeErr
	}
	v.worktrees = slices.DeleteFunc(v.worktrees, func(wt git.Worktree) bool { return wt.Name == name })
	return nil
}

func (v *mockVCS) PruneWorktrees(_ context.Context, _ string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pruneCalls++
	return v.pruneErr
}

func (v *mockVCS) CheckoutBranch(_ context.Context, _, _ string) error { return nil }

func (v *mockVCS) CreateBranch(_ context.Context, _, _, _ string) error { return nil }

func (v *mockVCS) Init(_ context.Context, _ string, _ bool) error { return nil }

func (v *mockVCS) Clone(_ context.Context, _, _ string) error { return nil }

// managedRepos implements RepositoryChecker.
type managedRepos bool

func (r managedRepos) IsManaged(_ context.Context, _ string) bool { return bool(r) }
