// internal/ws/hub.go
//
// Real-time layer: one websocket per client, grouped by session.
// Responsibilities:
//   - Upgrade, reject unknown sessions with close code 4004.
//   - Send the current state on connect, then every session event.
//   - Turn client messages (action, abort_game) into session calls; errors go
//     back to the requesting socket only.
//   - Optionally abort a session when its last socket goes away.
//
// Notes:
//   - Each client has a writer goroutine fed by a buffered channel; a full
//     channel drops the message so a slow reader never stalls a game.

package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"

	"github.com/robalobadob/azul/internal/game"
	"github.com/robalobadob/azul/internal/session"
	"github.com/robalobadob/azul/internal/wire"
)

// StatusSessionNotFound is the close code for an unknown session id.
const StatusSessionNotFound websocket.StatusCode = 4004

// Sessions is the part of *session.Manager the hub drives.
type Sessions interface {
	Get(ctx context.Context, id string) (session.Meta, game.State, error)
	Apply(ctx context.Context, id string, a game.Action) (game.State, error)
	Abort(ctx context.Context, id string) (game.State, error)
}

// Options tunes a Hub. Zero values get defaults.
type Options struct {
	AllowOrigins      []string // full origins; "*" or empty accepts any
	AbortOnDisconnect bool
	SendBuffer        int
	PingInterval      time.Duration
}

type client struct {
	id      string
	session string
	send    chan []byte
}

// Hub fans session events out to connected sockets.
type Hub struct {
	sessions Sessions
	accept   websocket.AcceptOptions
	opts     Options

	mu    sync.RWMutex
	rooms map[string]map[*client]struct{} // session id -> clients
}

func NewHub(s Sessions, opts Options) *Hub {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 64
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 15 * time.Second
	}
	return &Hub{
		sessions: s,
		accept:   acceptOptions(opts.AllowOrigins),
		opts:     opts,
		rooms:    map[string]map[*client]struct{}{},
	}
}

func acceptOptions(origins []string) websocket.AcceptOptions {
	var patterns []string
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" || o == "*" {
			return websocket.AcceptOptions{InsecureSkipVerify: true}
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		} else {
			patterns = append(patterns, o)
		}
	}
	if len(patterns) == 0 {
		return websocket.AcceptOptions{InsecureSkipVerify: true}
	}
	return websocket.AcceptOptions{OriginPatterns: patterns}
}

// OnEvent implements session.Listener.
func (h *Hub) OnEvent(ev session.Event) {
	b, err := json.Marshal(wire.EventMessage(ev))
	if err != nil {
		log.Error().Err(err).Str("session", ev.SessionID).Msg("marshal event")
		return
	}
	h.broadcast(ev.SessionID, b)
}

// Clients returns how many sockets follow a session.
func (h *Hub) Clients(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

func (h *Hub) broadcast(sessionID string, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[sessionID] {
		select {
		case c.send <- msg:
		default:
			log.Warn().Str("client", c.id).Str("session", sessionID).Msg("send buffer full, message dropped")
		}
	}
}

func (h *Hub) sendTo(c *client, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("marshal message")
		return
	}
	select {
	case c.send <- b:
	default:
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[c.session]
	if room == nil {
		room = map[*client]struct{}{}
		h.rooms[c.session] = room
	}
	room[c] = struct{}{}
}

// unregister removes c and reports whether it was the last client of its session.
func (h *Hub) unregister(c *client) (last bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[c.session]
	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(h.rooms, c.session)
		return true
	}
	return false
}

// ServeWS upgrades the request and follows session sessionID until the
// socket closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	opts := h.accept
	conn, err := websocket.Accept(w, r, &opts)
	if err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("websocket accept")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := &client{id: uuid.NewString(), session: sessionID, send: make(chan []byte, h.opts.SendBuffer)}
	h.register(c)

	_, st, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		h.unregister(c)
		if errors.Is(err, session.ErrNotFound) {
			_ = conn.Close(StatusSessionNotFound, "Session not found")
		} else {
			_ = conn.Close(websocket.StatusInternalError, "internal error")
		}
		return
	}
	log.Info().Str("client", c.id).Str("session", sessionID).Msg("client connected")
	h.sendTo(c, wire.StateMessage{Type: wire.MsgStateUpdate, SessionID: sessionID, GameState: st})

	writerDone := make(chan struct{})
	go h.writer(ctx, conn, c, writerDone)

	h.reader(ctx, conn, c)

	last := h.unregister(c)
	cancel()
	<-writerDone
	log.Info().Str("client", c.id).Str("session", sessionID).Msg("client disconnected")

	if last && h.opts.AbortOnDisconnect {
		if _, err := h.sessions.Abort(context.Background(), sessionID); err == nil {
			log.Info().Str("session", sessionID).Msg("aborted after last client left")
		}
	}
}

func (h *Hub) writer(ctx context.Context, conn *websocket.Conn, c *client, done chan<- struct{}) {
	ping := time.NewTicker(h.opts.PingInterval)
	defer func() {
		ping.Stop()
		_ = conn.Close(websocket.StatusNormalClosure, "bye")
		close(done)
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) reader(ctx context.Context, conn *websocket.Conn, c *client) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var m wire.ClientMessage
		if err := json.Unmarshal(data, &m); err != nil {
			h.sendTo(c, wire.NewError("Invalid JSON"))
			continue
		}

		switch m.Type {
		case wire.MsgAction:
			if m.Action == nil {
				h.sendTo(c, wire.NewError("missing action"))
				continue
			}
			if m.Action.IsAbort() {
				h.abort(ctx, c)
				continue
			}
			a, err := m.Action.ToGame()
			if err != nil {
				h.sendTo(c, wire.NewError(err.Error()))
				continue
			}
			if _, err := h.sessions.Apply(ctx, c.session, a); err != nil {
				h.sendTo(c, wire.NewError(err.Error()))
			}
		case wire.MsgAbortGame:
			h.abort(ctx, c)
		default:
			h.sendTo(c, wire.NewError("Unknown message type: "+string(m.Type)))
		}
	}
}

func (h *Hub) abort(ctx context.Context, c *client) {
	if _, err := h.sessions.Abort(ctx, c.session); err != nil {
		h.sendTo(c, wire.NewError(err.Error()))
	}
}
