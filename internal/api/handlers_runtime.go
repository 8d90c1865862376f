package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/CoderDKai/workhorse/internal/domain"
	whErrors "github.com/CoderDKai/workhorse/internal/errors"
)

type createExecutionRequest struct {
	ScriptContent    string            `json:"script_content"`
	WorkingDirectory string            `json:"working_directory"`
	Environment      map[string]string `json:"environment,omitempty"`
}

// handleCreateExecution handles POST /scripts.
func (s *Server) handleCreateExecution(w http.ResponseWriter, r *http.Request) {
	var req createExecutionRequest
	if err := decodeBody(r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	rec, err := s.svc.Scripts.CreateExecution(r.Context(), req.ScriptContent, req.WorkingDirectory, req.Environment)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, rec)
}

// handleListExecutions handles GET /scripts.
func (s *Server) handleListExecutions(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Scripts.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, list)
}

// handleCleanupExecutions handles POST /scripts/cleanup?keep=N.
func (s *Server) handleCleanupExecutions(w http.ResponseWriter, r *http.Request) {
	keep, err := strconv.Atoi(r.URL.Query().Get("keep"))
	if err != nil {
		respondError(w, r, fmt.Errorf("query parameter 'keep': %w", whErrors.ErrInvalidArgument))
		return
	}
	removed, err := s.svc.Scripts.CleanupCompleted(r.Context(), keep)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]int{"removed": removed})
}

// handleGetExecution handles GET /scripts/{id}.
func (s *Server) handleGetExecution(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.Scripts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, rec)
}

// handleExecute handles POST /scripts/{id}/execute. The request blocks
// until the script finished; a client disconnect cancels the script.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Scripts.Execute(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, res)
}

// handleCancelExecution handles POST /scripts/{id}/cancel.
func (s *Server) handleCancelExecution(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.Scripts.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, rec)
}

type createTerminalRequest struct {
	Name             string            `json:"name,omitempty"`
	WorkingDirectory string            `json:"working_directory"`
	Environment      map[string]string `json:"environment,omitempty"`
}

// handleCreateTerminal handles POST /terminals.
func (s *Server) handleCreateTerminal(w http.ResponseWriter, r *http.Request) {
	var req createTerminalRequest
	if err := decodeBody(r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	sess, err := s.svc.Terminals.Create(r.Context(), req.Name, req.WorkingDirectory, req.Environment)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, sess)
}

// handleListTerminals handles GET /terminals.
func (s *Server) handleListTerminals(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Terminals.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, list)
}

// handleExecuteCommand handles POST /terminals/exec.
func (s *Server) handleExecuteCommand(w http.ResponseWriter, r *http.Request) {
	var spec domain.CommandSpec
	if err := decodeBody(r, &spec, false); err != nil {
		respondError(w, r, err)
		return
	}
	out, err := s.svc.Terminals.ExecuteCommand(r.Context(), spec)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, out)
}

// handleCleanupTerminals handles POST /terminals/cleanup.
func (s *Server) handleCleanupTerminals(w http.ResponseWriter, r *http.Request) {
	removed, err := s.svc.Terminals.CleanupClosed(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]int{"removed": removed})
}

// handleGetTerminal handles GET /terminals/{id}.
func (s *Server) handleGetTerminal(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Terminals.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, sess)
}

type renameTerminalRequest struct {
	Name string `json:"name"`
}

// handleRenameTerminal handles PATCH /terminals/{id}.
func (s *Server) handleRenameTerminal(w http.ResponseWriter, r *http.Request) {
	var req renameTerminalRequest
	if err := decodeBody(r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	sess, err := s.svc.Terminals.Rename(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, sess)
}

// handleStartTerminal handles POST /terminals/{id}/start.
func (s *Server) handleStartTerminal(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Terminals.Start(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, sess)
}

// handleCloseTerminal handles POST /terminals/{id}/close.
func (s *Server) handleCloseTerminal(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Terminals.Close(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, sess)
}

type sendCommandRequest struct {
	Command string `json:"command"`
}

// handleSendCommand handles POST /terminals/{id}/input.
func (s *Server) handleSendCommand(w http.ResponseWriter, r *http.Request) {
	var req sendCommandRequest
	if err := decodeBody(r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.svc.Terminals.SendCommand(r.Context(), id, req.Command); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusAccepted, map[string]string{"id": id})
}

// handleTerminalOutput handles GET /terminals/{id}/output.
func (s *Server) handleTerminalOutput(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.Terminals.Output(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, out)
}

// handleTerminalHistory handles GET /terminals/{id}/history.
func (s *Server) handleTerminalHistory(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.Terminals.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, out)
}
