package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CoderDKai/workhorse/internal/config"
	"github.com/CoderDKai/workhorse/internal/constants"
	"github.com/CoderDKai/workhorse/internal/domain"
	whErrors "github.com/CoderDKai/workhorse/internal/errors"
	"github.com/CoderDKai/workhorse/internal/git"
	"github.com/CoderDKai/workhorse/internal/repository"
	"github.com/CoderDKai/workhorse/internal/script"
	"github.com/CoderDKai/workhorse/internal/terminal"
	"github.com/CoderDKai/workhorse/internal/testutil"
	"github.com/CoderDKai/workhorse/internal/workspace"
)

// fakeRepos implements RepositoryService with a single registered repository.
type fakeRepos struct {
	rec *domain.RepositoryRecord
}

func (f *fakeRepos) Add(_ context.Context, req repository.AddRequest) (*domain.RepositoryRecord, error) {
	if req.Path == "" {
		return nil, whErrors.ErrEmptyValue
	}
	if req.Path == f.rec.Path {
		return nil, whErrors.ErrRepositoryExists
	}
	return &domain.RepositoryRecord{ID: "new", Name: filepath.Base(req.Path), Path: req.Path}, nil
}

func (f *fakeRepos) List(_ context.Context) ([]*domain.RepositoryRecord, error) {
	return []*domain.RepositoryRecord{f.rec}, nil
}

func (f *fakeRepos) Resolve(_ context.Context, ref string) (*domain.RepositoryRecord, error) {
	if ref == f.rec.ID || ref == f.rec.Path {
		return f.rec, nil
	}
	return nil, whErrors.ErrRepositoryNotFound
}

func (f *fakeRepos) Remove(_ context.Context, id string, _ bool) error {
	if id != f.rec.ID {
		return whErrors.ErrRepositoryNotFound
	}
	return nil
}

// fakeVCS implements git.VersionControl on plain directories.
type fakeVCS struct{}

func (fakeVCS) IsRepository(_ context.Context, path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (fakeVCS) Open(_ context.Context, path string) (*git.Repository, error) {
	return &git.Repository{TopLevel: path}, nil
}

func (fakeVCS) Status(_ context.Context, _ string) (*git.Status, error) {
	return &git.Status{Branch: "main"}, nil
}

func (fakeVCS) ListBranches(_ context.Context, _ string) ([]git.Branch, error) { return nil, nil }

func (fakeVCS) CreateWorktree(_ context.Context, _, _, target, _ string) error {
	return os.MkdirAll(target, 0o750)
}

func (fakeVCS) ListWorktrees(_ context.Context, _ string) ([]git.Worktree, error) { return nil, nil }

func (fakeVCS) RemoveWorktree(_ context.Context, _, _ string) error { return nil }

func (fakeVCS) PruneWorktrees(_ context.Context, _ string) error { return nil }

func (fakeVCS) CheckoutBranch(_ context.Context, _, _ string) error { return nil }

func (fakeVCS) CreateBranch(_ context.Context, _, _, _ string) error { return nil }

func (fakeVCS) Init(_ context.Context, _ string, _ bool) error { return nil }

func (fakeVCS) Clone(_ context.Context, _, _ string) error { return nil }

type managed struct{}

func (managed) IsManaged(_ context.Context, _ string) bool { return true }

type testServer struct {
	handler http.Handler
	repo    string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	repo := filepath.Join(t.TempDir(), "app")
	require.NoError(t, os.MkdirAll(repo, 0o750))

	terminals := terminal.NewManager(config.TerminalConfig{MaxSessions: 2})
	t.Cleanup(func() { _ = terminals.Shutdown(context.Background()) })

	srv := New(config.ServerConfig{}, Services{
		Repositories: &fakeRepos{rec: &domain.RepositoryRecord{ID: "r1", Name: "app", Path: repo}},
		Workspaces:   workspace.NewManager(workspace.NewFileStore(), fakeVCS{}, managed{}),
		Scripts:      script.NewEngine(config.ScriptConfig{}),
		Terminals:    terminals,
	})
	return &testServer{handler: srv.Handler(), repo: repo}
}

type response struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   *whErrors.Failure `json:"error"`
}

func (ts *testServer) do(t *testing.T, method, path string, body any) (int, response) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func decodeData[T any](t *testing.T, resp response) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Data, &v))
	return v
}

func (ts *testServer) ws(path string) string {
	return "/api/v1/workspaces" + path + "?repo=" + ts.repo
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/healthz", "/api/v1/healthz"} {
		code, resp := ts.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, code)
		assert.True(t, resp.Success)
	}
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	code, resp := ts.do(t, http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, whErrors.KindNotFound, resp.Error.Kind)
}

func TestRepositories(t *testing.T) {
	ts := newTestServer(t)

	code, resp := ts.do(t, http.MethodGet, "/api/v1/repositories", nil)
	assert.Equal(t, http.StatusOK, code)
	list := decodeData[[]domain.RepositoryRecord](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "r1", list[0].ID)

	code, _ = ts.do(t, http.MethodPost, "/api/v1/repositories", repository.AddRequest{Path: "/srv/other"})
	assert.Equal(t, http.StatusCreated, code)

	code, resp = ts.do(t, http.MethodPost, "/api/v1/repositories", repository.AddRequest{Path: ts.repo})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, whErrors.KindConflict, resp.Error.Kind)

	code, _ = ts.do(t, http.MethodDelete, "/api/v1/repositories/r1?purge=true", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = ts.do(t, http.MethodDelete, "/api/v1/repositories/missing", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestWorkspaces_RequireRepo(t *testing.T) {
	ts := newTestServer(t)

	code, resp := ts.do(t, http.MethodGet, "/api/v1/workspaces", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, whErrors.KindValidation, resp.Error.Kind)

	code, resp = ts.do(t, http.MethodGet, "/api/v1/workspaces?repo=/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, whErrors.KindNotFound, resp.Error.Kind)
}

func TestWorkspaces_Lifecycle(t *testing.T) {
	ts := newTestServer(t)

	code, resp := ts.do(t, http.MethodPost, ts.ws(""), domain.CreateWorkspaceRequest{Name: "auth", Tags: []string{"backend"}})
	require.Equal(t, http.StatusCreated, code, resp.Error)
	meta := decodeData[domain.WorkspaceMetadata](t, resp)
	assert.Equal(t, constants.WorkspaceStatusActive, meta.Status)

	code, resp = ts.do(t, http.MethodPost, ts.ws(""), domain.CreateWorkspaceRequest{Name: "auth"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, whErrors.KindConflict, resp.Error.Kind)

	code, _ = ts.do(t, http.MethodGet, ts.ws("/"+meta.ID), nil)
	assert.Equal(t, http.StatusOK, code)

	code, resp = ts.do(t, http.MethodGet, ts.ws("/"+meta.ID)+"&info=true", nil)
	assert.Equal(t, http.StatusOK, code)
	info := decodeData[domain.WorkspaceInfo](t, resp)
	assert.True(t, info.PathExists)

	code, resp = ts.do(t, http.MethodGet, ts.ws("/missing"), nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, whErrors.KindNotFound, resp.Error.Kind)

	code, resp = ts.do(t, http.MethodPut, ts.ws("/"+meta.ID+"/tags/urgent"), nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"backend", "urgent"}, decodeData[domain.WorkspaceMetadata](t, resp).Tags)

	code, resp = ts.do(t, http.MethodPut, ts.ws("/"+meta.ID+"/fields/owner"), map[string]string{"value": "kai"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "kai", decodeData[domain.WorkspaceMetadata](t, resp).CustomFields["owner"])

	code, resp = ts.do(t, http.MethodGet, ts.ws("")+"&tag=urgent&status=active", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, decodeData[[]domain.WorkspaceMetadata](t, resp), 1)

	code, resp = ts.do(t, http.MethodGet, ts.ws("")+"&status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, whErrors.KindValidation, resp.Error.Kind)

	code, resp = ts.do(t, http.MethodPost, ts.ws("/"+meta.ID+"/archive"), map[string]any{"archive_reason": "done"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, constants.WorkspaceStatusArchived, decodeData[domain.WorkspaceMetadata](t, resp).Status)

	code, resp = ts.do(t, http.MethodPost, ts.ws("/"+meta.ID+"/archive"), nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, whErrors.KindConflict, resp.Error.Kind)

	code, resp = ts.do(t, http.MethodGet, ts.ws("/stats"), nil)
	assert.Equal(t, http.StatusOK, code)
	stats := decodeData[domain.WorkspaceStatistics](t, resp)
	assert.Equal(t, 1, stats.StatusCounts["archived"])

	code, _ = ts.do(t, http.MethodPost, ts.ws("/"+meta.ID+"/restore"), nil)
	assert.Equal(t, http.StatusOK, code)

	code, resp = ts.do(t, http.MethodPost, ts.ws("/"+meta.ID+"/reconcile"), nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "active", decodeData[map[string]string](t, resp)["status"])

	code, _ = ts.do(t, http.MethodDelete, ts.ws("/"+meta.ID+"/tags/urgent"), nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = ts.do(t, http.MethodDelete, ts.ws("/"+meta.ID+"/fields/owner"), nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = ts.do(t, http.MethodPost, ts.ws("/"+meta.ID+"/access"), nil)
	assert.Equal(t, http.StatusOK, code)

	code, resp = ts.do(t, http.MethodPost, ts.ws("/cleanup"), nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, decodeData[map[string][]string](t, resp)["removed"])

	code, _ = ts.do(t, http.MethodDelete, ts.ws("/"+meta.ID), nil)
	assert.Equal(t, http.StatusOK, code)

	code, resp = ts.do(t, http.MethodGet, ts.ws(""), nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, decodeData[[]domain.WorkspaceMetadata](t, resp))
}

func TestWorkspaces_BadBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, ts.ws(""), bytes.NewBufferString("{nope"))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"validation"`)
}

func TestScripts(t *testing.T) {
	testutil.RequireBinary(t, "sh")
	ts := newTestServer(t)
	dir := t.TempDir()

	code, resp := ts.do(t, http.MethodPost, "/api/v1/scripts", createExecutionRequest{ScriptContent: "echo hi", WorkingDirectory: dir})
	require.Equal(t, http.StatusCreated, code)
	rec := decodeData[domain.ScriptExecution](t, resp)
	assert.Equal(t, constants.ExecutionStatusPending, rec.Status)

	code, resp = ts.do(t, http.MethodPost, "/api/v1/scripts/"+rec.ID+"/execute", nil)
	require.Equal(t, http.StatusOK, code)
	result := decodeData[domain.ExecutionResult](t, resp)
	assert.True(t, result.Success)
	assert.Contains(t, result.Stdout, "hi")

	code, resp = ts.do(t, http.MethodPost, "/api/v1/scripts/"+rec.ID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, whErrors.KindConflict, resp.Error.Kind)

	code, resp = ts.do(t, http.MethodPost, "/api/v1/scripts", createExecutionRequest{ScriptContent: "rm -rf /", WorkingDirectory: dir})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, whErrors.KindValidation, resp.Error.Kind)

	code, _ = ts.do(t, http.MethodGet, "/api/v1/scripts/"+rec.ID, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = ts.do(t, http.MethodGet, "/api/v1/scripts/missing", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = ts.do(t, http.MethodPost, "/api/v1/scripts/cleanup", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = ts.do(t, http.MethodPost, "/api/v1/scripts/cleanup?keep=0", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, decodeData[map[string]int](t, resp)["removed"])

	code, resp = ts.do(t, http.MethodGet, "/api/v1/scripts", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, decodeData[[]domain.ScriptExecution](t, resp))
}

func TestTerminals(t *testing.T) {
	testutil.RequireBinary(t, "sh")
	ts := newTestServer(t)
	dir := t.TempDir()

	code, resp := ts.do(t, http.MethodPost, "/api/v1/terminals/exec", domain.CommandSpec{Command: "sh", Args: []string{"-c", "echo once"}, WorkingDirectory: dir})
	require.Equal(t, http.StatusOK, code)
	out := decodeData[domain.TerminalOutput](t, resp)
	assert.Equal(t, constants.OutputStdout, out.OutputType)
	assert.Equal(t, "once\n", out.Content)

	code, resp = ts.do(t, http.MethodPost, "/api/v1/terminals", createTerminalRequest{WorkingDirectory: filepath.Join(dir, "missing")})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, whErrors.KindValidation, resp.Error.Kind)

	code, resp = ts.do(t, http.MethodPost, "/api/v1/terminals", createTerminalRequest{Name: "main", WorkingDirectory: dir})
	require.Equal(t, http.StatusCreated, code)
	sess := decodeData[domain.TerminalSession](t, resp)

	code, _ = ts.do(t, http.MethodPost, "/api/v1/terminals/"+sess.ID+"/input", sendCommandRequest{Command: "echo x"})
	assert.Equal(t, http.StatusConflict, code, "input requires an active session")

	code, _ = ts.do(t, http.MethodPost, "/api/v1/terminals/"+sess.ID+"/start", nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = ts.do(t, http.MethodPost, "/api/v1/terminals/"+sess.ID+"/input", sendCommandRequest{Command: "echo ready"})
	assert.Equal(t, http.StatusAccepted, code)

	require.Eventually(t, func() bool {
		_, resp := ts.do(t, http.MethodGet, "/api/v1/terminals/"+sess.ID+"/output", nil)
		var records []domain.TerminalOutput
		if err := json.Unmarshal(resp.Data, &records); err != nil {
			return false
		}
		for _, r := range records {
			if r.OutputType == constants.OutputStdout && r.Content == "ready" {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)

	code, resp = ts.do(t, http.MethodGet, "/api/v1/terminals/"+sess.ID+"/history", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.GreaterOrEqual(t, len(decodeData[[]domain.TerminalOutput](t, resp)), 3)

	code, resp = ts.do(t, http.MethodPatch, "/api/v1/terminals/"+sess.ID, renameTerminalRequest{Name: "renamed"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "renamed", decodeData[domain.TerminalSession](t, resp).Name)

	_, _ = ts.do(t, http.MethodPost, "/api/v1/terminals", createTerminalRequest{WorkingDirectory: dir})
	code, resp = ts.do(t, http.MethodPost, "/api/v1/terminals", createTerminalRequest{WorkingDirectory: dir})
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, whErrors.KindResourceExhausted, resp.Error.Kind)

	for range 2 {
		code, resp = ts.do(t, http.MethodPost, "/api/v1/terminals/"+sess.ID+"/close", nil)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, constants.TerminalStatusClosed, decodeData[domain.TerminalSession](t, resp).Status)
	}

	code, resp = ts.do(t, http.MethodPost, "/api/v1/terminals/cleanup", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, decodeData[map[string]int](t, resp)["removed"])

	code, _ = ts.do(t, http.MethodGet, "/api/v1/terminals/"+sess.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, resp = ts.do(t, http.MethodGet, "/api/v1/terminals", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, decodeData[[]domain.TerminalSession](t, resp), 1)
}

func TestStatusForKind(t *testing.T) {
	tests := []struct {
		kind whErrors.Kind
		want int
	}{
		{whErrors.KindValidation, http.StatusBadRequest},
		{whErrors.KindNotFound, http.StatusNotFound},
		{whErrors.KindConflict, http.StatusConflict},
		{whErrors.KindResourceExhausted, http.StatusTooManyRequests},
		{whErrors.KindBackingStore, http.StatusInternalServerError},
		{whErrors.KindCanceled, http.StatusRequestTimeout},
		{whErrors.Kind("other"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(string(tc.kind), func(t *testing.T) {
			assert.Equal(t, tc.want, statusForKind(tc.kind))
		})
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(config.ServerConfig{}, Services{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz") //nolint:noctx // test probe
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
