package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"github.com/robalobadob/azul/internal/game"
	"github.com/robalobadob/azul/internal/history"
	"github.com/robalobadob/azul/internal/session"
	"github.com/robalobadob/azul/internal/store"
	"github.com/robalobadob/azul/internal/wire"
	"github.com/robalobadob/azul/internal/ws"
)

type fixture struct {
	srv     *Server
	m       *session.Manager
	results *history.Store
}

func newFixture(t *testing.T, withArchive bool) *fixture {
	t.Helper()
	m := session.NewManager(store.NewMemoryStore())
	hub := ws.NewHub(m, ws.Options{})
	m.Subscribe(hub)

	f := &fixture{m: m}
	var results Results
	if withArchive {
		db, err := history.Open(filepath.Join(t.TempDir(), "azul.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		f.results = history.NewStore(db)
		arch := history.NewArchiver(f.results, 8)
		m.Subscribe(arch)
		ctx, cancel := context.WithCancel(context.Background())
		t.Cleanup(cancel)
		go arch.Run(ctx)
		results = f.results
	}
	f.srv = New(m, hub, results, Options{AllowOrigins: []string{"*"}})
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	f.srv.Router().ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func (f *fixture) create(t *testing.T, players int) string {
	t.Helper()
	rec, body := f.do(t, http.MethodPost, "/sessions", map[string]any{"num_players": players, "seed": 99})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return body["session_id"].(string)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, false)
	rec, body := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"status": "healthy", "service": "azul-game-api"}, body)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	rec, body = f.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "azul-game-api", body["service"])
}

func TestNotFoundIsJSON(t *testing.T) {
	f := newFixture(t, false)
	rec, body := f.do(t, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["error"])
}

func TestCreateSession(t *testing.T) {
	f := newFixture(t, false)

	rec, body := f.do(t, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Session created with 2 players", body["message"])
	st := body["game_state"].(map[string]any)
	assert.Equal(t, "draft", st["phase"])
	assert.Len(t, st["factories"], 5)

	rec, body = f.do(t, http.MethodPost, "/sessions", map[string]any{"num_players": 4})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["game_state"].(map[string]any)["players"], 4)
}

func TestCreateSessionErrors(t *testing.T) {
	f := newFixture(t, false)

	rec, body := f.do(t, http.MethodPost, "/sessions", map[string]any{"num_players": 5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "configuration", body["reason"])

	rec, body = f.do(t, http.MethodPost, "/sessions", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_payload", body["reason"])
}

func TestGetSession(t *testing.T) {
	f := newFixture(t, false)
	id := f.create(t, 3)

	rec, body := f.do(t, http.MethodGet, "/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, body["session_id"])
	assert.Equal(t, "active", body["status"])

	rec, body = f.do(t, http.MethodGet, "/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Session not found", body["error"])
}

func TestListSessions(t *testing.T) {
	f := newFixture(t, false)
	f.create(t, 2)
	f.create(t, 3)

	rec, body := f.do(t, http.MethodGet, "/sessions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["count"])
	assert.Len(t, body["sessions"], 2)
}

func TestActionsFlow(t *testing.T) {
	f := newFixture(t, false)
	id := f.create(t, 2)

	rec, body := f.do(t, http.MethodGet, "/sessions/"+id+"/actions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	valid := body["valid_actions"].([]any)
	require.NotEmpty(t, valid)
	first := valid[0].(map[string]any)
	assert.Equal(t, "TAKE_FROM_FACTORY", first["type"])

	rec, body = f.do(t, http.MethodPost, "/sessions/"+id+"/actions", first)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 1, body["game_state"].(map[string]any)["current_player"])
}

func TestIllegalActionLeavesState(t *testing.T) {
	f := newFixture(t, false)
	id := f.create(t, 2)
	_, before, err := f.m.Get(context.Background(), id)
	require.NoError(t, err)

	rec, body := f.do(t, http.MethodPost, "/sessions/"+id+"/actions",
		map[string]any{"type": "TAKE_FROM_FACTORY", "factory_id": 12, "tile_type": "BLUE", "pattern_line": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(game.ReasonNoSuchFactory), body["reason"])

	rec, body = f.do(t, http.MethodPost, "/sessions/"+id+"/actions",
		map[string]any{"type": "TAKE_FROM_CENTER", "tile_type": "PURPLE", "pattern_line": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_payload", body["reason"])

	_, after, err := f.m.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAbortThroughActions(t *testing.T) {
	f := newFixture(t, false)
	id := f.create(t, 2)

	rec, body := f.do(t, http.MethodPost, "/sessions/"+id+"/actions", map[string]any{"type": "ABORT_GAME"})
	require.Equal(t, http.StatusOK, rec.Code)
	out := body["game_state"].(map[string]any)["outcome"].(map[string]any)
	assert.Equal(t, "ABORTED", out["status"])

	rec, body = f.do(t, http.MethodPost, "/sessions/"+id+"/actions", map[string]any{"type": "ABORT_GAME"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "finished", body["reason"])

	rec, body = f.do(t, http.MethodGet, "/sessions/"+id+"/actions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["valid_actions"])
}

func TestDeleteSession(t *testing.T) {
	f := newFixture(t, false)
	id := f.create(t, 2)

	rec, body := f.do(t, http.MethodDelete, "/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Session aborted successfully", body["message"])

	rec, _ = f.do(t, http.MethodGet, "/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = f.do(t, http.MethodDelete, "/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResultsDisabled(t *testing.T) {
	f := newFixture(t, false)
	rec, body := f.do(t, http.MethodGet, "/results", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "disabled", body["reason"])
}

func TestResults(t *testing.T) {
	f := newFixture(t, true)
	id := f.create(t, 3)
	rec, _ := f.do(t, http.MethodDelete, "/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Eventually(t, func() bool {
		_, err := f.results.Get(context.Background(), id)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	rec, body := f.do(t, http.MethodGet, "/results?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["count"])

	rec, body = f.do(t, http.MethodGet, "/results/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "aborted", body["status"])
	assert.EqualValues(t, 3, body["num_players"])

	rec, _ = f.do(t, http.MethodGet, "/results/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = f.do(t, http.MethodGet, "/results?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, false)
	req := httptest.NewRequest(http.MethodOptions, "/sessions", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	f.srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

func TestCORSAllowList(t *testing.T) {
	h := cors([]string{"http://a.test"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://a.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://a.test", rec.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWebSocketRoute(t *testing.T) {
	f := newFixture(t, false)
	id := f.create(t, 2)
	ts := httptest.NewServer(f.srv.Router())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/sessions/"+id+"/ws", nil)
	require.NoError(t, err)
	defer c.Close(websocket.StatusNormalClosure, "")

	_, data, err := c.Read(ctx)
	require.NoError(t, err)
	var msg wire.StateMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, wire.MsgStateUpdate, msg.Type)
	assert.Equal(t, id, msg.SessionID)

	// a REST action reaches the socket
	rec, _ := f.do(t, http.MethodPost, "/sessions/"+id+"/actions", map[string]any{"type": "ABORT_GAME"})
	require.Equal(t, http.StatusOK, rec.Code)
	_, data, err = c.Read(ctx)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, wire.MsgAborted, msg.Type)
}
