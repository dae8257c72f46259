// internal/httpserver/routes_results.go
//
// HTTP routes for the result archive:
//   - GET /results?limit=n → most recently finished games (default 20, max 100)
//   - GET /results/{id}    → the archived result of one session
//
// Answers 503 when the server runs without an archive.

package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/azul/internal/history"
)

const maxResults = 100

// mountResults registers the /results routes.
func (s *Server) mountResults(r chi.Router) {
	r.Get("/results", s.handleRecentResults)
	r.Get("/results/{id}", s.handleResult)
}

func (s *Server) archiveEnabled(w http.ResponseWriter) bool {
	if s.results == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "result archive disabled", Reason: "disabled"})
		return false
	}
	return true
}

// handleRecentResults lists archived games, newest first.
func (s *Server) handleRecentResults(w http.ResponseWriter, r *http.Request) {
	if !s.archiveEnabled(w) {
		return
	}
	limit := history.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "limit must be a positive integer", Reason: "bad_payload"})
			return
		}
		limit = min(n, maxResults)
	}

	rows, err := s.results.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": rows, "count": len(rows)})
}

// handleResult returns one archived game.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	if !s.archiveEnabled(w) {
		return
	}
	res, err := s.results.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
