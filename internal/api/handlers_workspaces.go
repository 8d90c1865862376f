package api

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/CoderDKai/workhorse/internal/constants"
	"github.com/CoderDKai/workhorse/internal/domain"
	"github.com/CoderDKai/workhorse/internal/repository"
)

// handleAddRepository handles POST /repositories.
func (s *Server) handleAddRepository(w http.ResponseWriter, r *http.Request) {
	var req repository.AddRequest
	if err := decodeBody(r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	rec, err := s.svc.Repositories.Add(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, rec)
}

// handleListRepositories handles GET /repositories.
func (s *Server) handleListRepositories(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Repositories.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, list)
}

// handleRemoveRepository handles DELETE /repositories/{repoID}[?purge=true].
func (s *Server) handleRemoveRepository(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "repoID")
	purge, _ := strconv.ParseBool(r.URL.Query().Get("purge"))
	if err := s.svc.Repositories.Remove(r.Context(), id, purge); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]string{"removed": id})
}

// handleCreateWorkspace handles POST /workspaces.
func (s *Server) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateWorkspaceRequest
	if err := decodeBody(r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	meta, err := s.svc.Workspaces.Create(r.Context(), repoPath(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, meta)
}

// handleListWorkspaces handles GET /workspaces[?tag=T][&status=S]. Both
// filters may be combined.
func (s *Server) handleListWorkspaces(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	repo := repoPath(r)
	tag := r.URL.Query().Get("tag")
	status := constants.WorkspaceStatus(r.URL.Query().Get("status"))

	var (
		list []*domain.WorkspaceMetadata
		err  error
	)
	switch {
	case tag != "":
		list, err = s.svc.Workspaces.FindByTag(ctx, repo, tag)
	case status != "":
		list, err = s.svc.Workspaces.FindByStatus(ctx, repo, status)
	default:
		list, err = s.svc.Workspaces.List(ctx, repo)
	}
	if err != nil {
		respondError(w, r, err)
		return
	}

	if tag != "" && status != "" {
		list = slices.DeleteFunc(list, func(m *domain.WorkspaceMetadata) bool { return m.Status != status })
	}
	respondOK(w, http.StatusOK, list)
}

// handleWorkspaceStats handles GET /workspaces/stats.
func (s *Server) handleWorkspaceStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Workspaces.Statistics(r.Context(), repoPath(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, stats)
}

// handleCleanupWorkspaces handles POST /workspaces/cleanup.
func (s *Server) handleCleanupWorkspaces(w http.ResponseWriter, r *http.Request) {
	removed, err := s.svc.Workspaces.CleanupBroken(r.Context(), repoPath(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string][]string{"removed": removed})
}

// handleReconcileAll handles POST /workspaces/reconcile.
func (s *Server) handleReconcileAll(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.svc.Workspaces.ReconcileAll(r.Context(), repoPath(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, statuses)
}

// handleRebuildIndex handles POST /workspaces/index.
func (s *Server) handleRebuildIndex(w http.ResponseWriter, r *http.Request) {
	idx, err := s.svc.Workspaces.RebuildIndex(r.Context(), repoPath(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, idx)
}

// handleGetWorkspace handles GET /workspaces/{id}[?info=true].
func (s *Server) handleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if info, _ := strconv.ParseBool(r.URL.Query().Get("info")); info {
		data, err := s.svc.Workspaces.Info(r.Context(), repoPath(r), id)
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondOK(w, http.StatusOK, data)
		return
	}

	meta, err := s.svc.Workspaces.Get(r.Context(), repoPath(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, meta)
}

// handleDeleteWorkspace handles DELETE /workspaces/{id}.
func (s *Server) handleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.svc.Workspaces.Delete(r.Context(), repoPath(r), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]string{"removed": id})
}

// handleArchiveWorkspace handles POST /workspaces/{id}/archive. The body is
// optional; the id always comes from the path.
func (s *Server) handleArchiveWorkspace(w http.ResponseWriter, r *http.Request) {
	var req domain.ArchiveWorkspaceRequest
	if err := decodeBody(r, &req, true); err != nil {
		respondError(w, r, err)
		return
	}
	req.WorkspaceID = chi.URLParam(r, "id")

	meta, err := s.svc.Workspaces.Archive(r.Context(), repoPath(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, meta)
}

// handleRestoreWorkspace handles POST /workspaces/{id}/restore.
func (s *Server) handleRestoreWorkspace(w http.ResponseWriter, r *http.Request) {
	meta, err := s.svc.Workspaces.Restore(r.Context(), repoPath(r), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, meta)
}

// handleReconcileWorkspace handles POST /workspaces/{id}/reconcile.
func (s *Server) handleReconcileWorkspace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status, err := s.svc.Workspaces.ReconcileStatus(r.Context(), repoPath(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]string{"id": id, "status": status.String()})
}

// handleAccessWorkspace handles POST /workspaces/{id}/access.
func (s *Server) handleAccessWorkspace(w http.ResponseWriter, r *http.Request) {
	meta, err := s.svc.Workspaces.Access(r.Context(), repoPath(r), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, meta)
}

// handleAddTag handles PUT /workspaces/{id}/tags/{tag}.
func (s *Server) handleAddTag(w http.ResponseWriter, r *http.Request) {
	meta, err := s.svc.Workspaces.AddTag(r.Context(), repoPath(r), chi.URLParam(r, "id"), chi.URLParam(r, "tag"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, meta)
}

// handleRemoveTag handles DELETE /workspaces/{id}/tags/{tag}.
func (s *Server) handleRemoveTag(w http.ResponseWriter, r *http.Request) {
	meta, err := s.svc.Workspaces.RemoveTag(r.Context(), repoPath(r), chi.URLParam(r, "id"), chi.URLParam(r, "tag"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, meta)
}

type setFieldRequest struct {
	Value string `json:"value"`
}

// handleSetField handles PUT /workspaces/{id}/fields/{key}.
func (s *Server) handleSetField(w http.ResponseWriter, r *http.Request) {
	var req setFieldRequest
	if err := decodeBody(r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	meta, err := s.svc.Workspaces.SetCustomField(r.Context(), repoPath(r), chi.URLParam(r, "id"), chi.URLParam(r, "key"), req.Value)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, meta)
}

// handleRemoveField handles DELETE /workspaces/{id}/fields/{key}.
func (s *Server) handleRemoveField(w http.ResponseWriter, r *http.Request) {
	meta, err := s.svc.Workspaces.RemoveCustomField(r.Context(), repoPath(r), chi.URLParam(r, "id"), chi.URLParam(r, "key"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, meta)
}
