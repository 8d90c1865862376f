package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	whErrors "github.com/CoderDKai/workhorse/internal/errors"
)

// maxBodyBytes bounds request bodies. Script content is the largest payload.
const maxBodyBytes = 1 << 20

// envelope is the body of every response.
type envelope struct {
	Success bool              `json:"success"`
	Data    any               `json:"data"`
	Error   *whErrors.Failure `json:"error,omitempty"`
}

type repoKey struct{}

// statusForKind maps a failure kind to an HTTP status code.
func statusForKind(kind whErrors.Kind) int {
	switch kind {
	case whErrors.KindValidation:
		return http.StatusBadRequest
	case whErrors.KindNotFound:
		return http.StatusNotFound
	case whErrors.KindConflict:
		return http.StatusConflict
	case whErrors.KindResourceExhausted:
		return http.StatusTooManyRequests
	case whErrors.KindCanceled:
		return http.StatusRequestTimeout
	case whErrors.KindBackingStore:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

func respondJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func respondOK(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, envelope{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	failure := whErrors.NewFailure(err)
	status := statusForKind(failure.Kind)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		log.Debug().Err(err).Str("path", r.URL.Path).Str("kind", string(failure.Kind)).Msg("request rejected")
	}
	respondJSON(w, status, envelope{Error: failure})
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched
// when optional is set.
func decodeBody(r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid JSON body: %w: %w", whErrors.ErrInvalidArgument, err)
	}
	return nil
}

// requireRepo resolves the repo query parameter to a registered repository
// and stores its path in the request context.
func (s *Server) requireRepo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ref := r.URL.Query().Get("repo")
		if ref == "" {
			respondError(w, r, fmt.Errorf("query parameter 'repo': %w", whErrors.ErrEmptyValue))
			return
		}
		rec, err := s.svc.Repositories.Resolve(r.Context(), ref)
		if err != nil {
			respondError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), repoKey{}, rec.Path)))
	})
}

func repoPath(r *http.Request) string {
	path, _ := r.Context().Value(repoKey{}).(string)
	return path
}
