package history

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/azul/internal/session"
)

// Archiver is a session.Listener that records finished games. OnEvent only
// queues; Run does the writes so the session lock is never held across I/O.
type Archiver struct {
	store *Store
	queue chan Result
}

func NewArchiver(st *Store, buffer int) *Archiver {
	if buffer <= 0 {
		buffer = 64
	}
	return &Archiver{store: st, queue: make(chan Result, buffer)}
}

// OnEvent queues terminal events. A full queue drops the result.
func (a *Archiver) OnEvent(ev session.Event) {
	if !ev.Terminal() {
		return
	}
	select {
	case a.queue <- FromEvent(ev):
	default:
		log.Warn().Str("session", ev.SessionID).Msg("archive queue full, result dropped")
	}
}

// Run writes queued results until ctx is done, then flushes what is left.
func (a *Archiver) Run(ctx context.Context) {
	for {
		select {
		case r := <-a.queue:
			a.record(ctx, r)
		case <-ctx.Done():
			for {
				select {
				case r := <-a.queue:
					a.record(context.Background(), r)
				default:
					return
				}
			}
		}
	}
}

func (a *Archiver) record(ctx context.Context, r Result) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.store.Record(ctx, r); err != nil {
		log.Error().Err(err).Str("session", r.SessionID).Msg("archive result")
		return
	}
	log.Debug().Str("session", r.SessionID).Str("status", r.Status).Msg("result archived")
}
