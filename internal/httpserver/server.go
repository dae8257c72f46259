// internal/httpserver/server.go
//
// HTTP server wiring for the Azul backend.
// Responsibilities:
//   - Router + middleware (request IDs, real IP, panic recovery, timeouts,
//     JSON content type, CORS, access log).
//   - Public endpoints: "/", "/health".
//   - Session endpoints: mounted under /sessions (routes_sessions.go).
//   - Result archive endpoints: mounted under /results (routes_results.go).
//   - Mapping engine/session errors to JSON error bodies.
//
// Notes:
//   - The websocket route sits outside the timeout group; its lifetime is the
//     socket's, not a request's.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/azul/internal/game"
	"github.com/robalobadob/azul/internal/history"
	"github.com/robalobadob/azul/internal/session"
	"github.com/robalobadob/azul/internal/wire"
)

const serviceName = "azul-game-api"

var endpoints = []string{
	"/health",
	"GET|POST /sessions",
	"GET|DELETE /sessions/{id}",
	"GET|POST /sessions/{id}/actions",
	"/sessions/{id}/ws",
	"GET /results",
	"GET /results/{id}",
}

// Sessions is the session façade the routes drive.
type Sessions interface {
	Create(ctx context.Context, players int, seed *int64) (session.Meta, game.State, error)
	Get(ctx context.Context, id string) (session.Meta, game.State, error)
	LegalActions(ctx context.Context, id string) ([]game.Action, error)
	Apply(ctx context.Context, id string, a game.Action) (game.State, error)
	Abort(ctx context.Context, id string) (game.State, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]session.Meta, error)
	Count(ctx context.Context) int
}

// Results is the read side of the archive.
type Results interface {
	Recent(ctx context.Context, limit int) ([]history.Result, error)
	Get(ctx context.Context, id string) (history.Result, error)
}

// Sockets upgrades a request into a websocket following one session.
type Sockets interface {
	ServeWS(w http.ResponseWriter, r *http.Request, sessionID string)
}

// Options carries the server settings taken from config.
type Options struct {
	AllowOrigins   []string
	RequestTimeout time.Duration
}

// Server bundles the router and its dependencies.
type Server struct {
	r        *chi.Mux
	sessions Sessions
	sockets  Sockets
	results  Results // nil when the archive is disabled
	opts     Options
}

// New constructs a Server, installs middleware, and registers routes.
// sockets and results may be nil.
func New(sessions Sessions, sockets Sockets, results Results, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	s := &Server{r: chi.NewRouter(), sessions: sessions, sockets: sockets, results: results, opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)         // add X-Request-ID
	s.r.Use(chimw.RealIP)            // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)               // one zerolog line per request
	s.r.Use(chimw.Recoverer)         // recover from panics
	s.r.Use(cors(opts.AllowOrigins)) // origin-aware CORS

	if s.sockets != nil {
		s.r.Get("/sessions/{id}/ws", func(w http.ResponseWriter, r *http.Request) {
			s.sockets.ServeWS(w, r, chi.URLParam(r, "id"))
		})
	}

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(opts.RequestTimeout)) // bound handler time
		r.Use(jsonContentType)                    // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"service":   serviceName,
				"sessions":  s.sessions.Count(r.Context()),
				"endpoints": endpoints,
			})
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": serviceName})
		})

		s.mountSessions(r)
		s.mountResults(r)

		// JSON 404 for easier debugging
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Path: r.URL.Path})
		})
	})

	return s
}

// Router exposes the internal router (useful for tests and http.Server).
func (s *Server) Router() chi.Router { return s.r }

// Start listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors allows the configured origins. "*" (or no origins) allows any origin
// without credentials; otherwise matching origins are echoed back.
func cors(origins []string) func(http.Handler) http.Handler {
	allowAll := len(origins) == 0
	allowed := map[string]bool{}
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && allowed[origin]:
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// accessLog writes one structured line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			ev := log.Info()
			if ww.Status() >= http.StatusInternalServerError {
				ev = log.Warn()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("took", time.Since(start)).
				Str("request_id", chimw.GetReqID(r.Context())).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

// ------------------------------- responses ---------------------------------

type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
	Path   string `json:"path,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}

// writeError maps err onto a status code and a JSON error body.
func writeError(w http.ResponseWriter, err error) {
	var (
		ae  *game.ActionError
		ce  *game.ConfigError
		msg = err.Error()
	)
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Session not found", Reason: "not_found"})
	case errors.Is(err, history.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Result not found", Reason: "not_found"})
	case errors.As(err, &ae):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Reason: string(ae.Reason)})
	case errors.As(err, &ce):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Reason: "configuration"})
	case errors.Is(err, session.ErrFinished):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Reason: "finished"})
	case errors.Is(err, wire.ErrBadPayload):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Reason: "bad_payload"})
	default:
		log.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error", Reason: "internal"})
	}
}
