package session

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Run calls Cleanup every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Cleanup(ctx, m.now()); n > 0 {
				log.Info().Int("evicted", n).Int("remaining", m.Count(ctx)).Msg("session cleanup")
			}
		}
	}
}

// Cleanup removes sessions idle longer than the max age, and finished
// sessions idle longer than the finished TTL. It returns how many went.
func (m *Manager) Cleanup(ctx context.Context, now time.Time) int {
	all, err := m.store.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("session cleanup: list")
		return 0
	}

	n := 0
	for _, s := range all {
		s.mu.Lock()
		idle := now.Sub(s.meta.LastActivity)
		expired := idle > m.maxAge || (s.meta.Finished() && idle > m.finishedTTL)
		if expired && !s.gone {
			if err := m.store.Delete(ctx, s.meta.ID); err != nil {
				log.Warn().Err(err).Str("session", s.meta.ID).Msg("evict session")
			} else {
				s.gone = true
				n++
				log.Debug().Str("session", s.meta.ID).Str("status", string(s.meta.Status)).
					Dur("idle", idle).Msg("session evicted")
			}
		}
		s.mu.Unlock()
	}
	return n
}

func sortByCreation(ms []Meta) {
	slices.SortFunc(ms, func(a, b Meta) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
