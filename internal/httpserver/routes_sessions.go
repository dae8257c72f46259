// internal/httpserver/routes_sessions.go
//
// REST routes for game sessions:
//   - POST   /sessions              → create a game ({num_players, seed?})
//   - GET    /sessions              → metadata of every live session
//   - GET    /sessions/{id}         → current state
//   - GET    /sessions/{id}/actions → legal actions for the player to act
//   - POST   /sessions/{id}/actions → apply an action (ABORT_GAME aborts)
//   - DELETE /sessions/{id}         → abort and remove
//
// State changes also reach websocket clients through session events.

package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/azul/internal/game"
	"github.com/robalobadob/azul/internal/session"
	"github.com/robalobadob/azul/internal/wire"
)

const defaultPlayers = 2

func (s *Server) mountSessions(r chi.Router) {
	r.Post("/sessions", s.handleCreate)
	r.Get("/sessions", s.handleList)
	r.Get("/sessions/{id}", s.handleGet)
	r.Delete("/sessions/{id}", s.handleDelete)
	r.Get("/sessions/{id}/actions", s.handleActions)
	r.Post("/sessions/{id}/actions", s.handleApply)
}

type createReq struct {
	NumPlayers int    `json:"num_players"`
	Seed       *int64 `json:"seed"`
}

type createRes struct {
	SessionID string     `json:"session_id"`
	GameState game.State `json:"game_state"`
	Message   string     `json:"message"`
}

// handleCreate starts a game. An empty body means two players and a random seed.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_json", Reason: "bad_payload"})
		return
	}
	if req.NumPlayers == 0 {
		req.NumPlayers = defaultPlayers
	}

	meta, st, err := s.sessions.Create(r.Context(), req.NumPlayers, req.Seed)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, createRes{
		SessionID: meta.ID,
		GameState: st,
		Message:   fmt.Sprintf("Session created with %d players", meta.NumPlayers),
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	metas, err := s.sessions.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": metas, "count": len(metas)})
}

type stateRes struct {
	SessionID string         `json:"session_id"`
	Status    session.Status `json:"status"`
	GameState game.State     `json:"game_state"`
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	meta, st, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateRes{SessionID: meta.ID, Status: meta.Status, GameState: st})
}

type actionsRes struct {
	SessionID    string        `json:"session_id"`
	ValidActions []wire.Action `json:"valid_actions"`
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	actions, err := s.sessions.LegalActions(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, actionsRes{SessionID: id, ValidActions: wire.FromActions(actions)})
}

type applyRes struct {
	SessionID string     `json:"session_id"`
	Success   bool       `json:"success"`
	GameState game.State `json:"game_state"`
}

// handleApply runs one action. Illegal actions answer 400 with the reason
// and leave the game untouched.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var p wire.Action
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_json", Reason: "bad_payload"})
		return
	}

	var (
		st  game.State
		err error
	)
	if p.IsAbort() {
		st, err = s.sessions.Abort(r.Context(), id)
	} else {
		var a game.Action
		if a, err = p.ToGame(); err == nil {
			st, err = s.sessions.Apply(r.Context(), id, a)
		}
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, applyRes{SessionID: id, Success: true, GameState: st})
}

type deleteRes struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteRes{SessionID: id, Message: "Session aborted successfully"})
}
