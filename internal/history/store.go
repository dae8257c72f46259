package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/azul/internal/game"
	"github.com/robalobadob/azul/internal/session"
)

// ErrNotFound is returned by Get for an unknown session.
var ErrNotFound = errors.New("result not found")

// DefaultLimit caps Recent when no limit is given.
const DefaultLimit = 20

// Result is one archived game.
type Result struct {
	SessionID  string    `json:"session_id"`
	NumPlayers int       `json:"num_players"`
	Rounds     int       `json:"rounds"`
	Status     string    `json:"status"`
	Winner     int       `json:"winner"`
	Draw       bool      `json:"draw"`
	Scores     []int     `json:"scores"`
	Seed       int64     `json:"seed"`
	CreatedAt  time.Time `json:"created_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// FromEvent builds the archive row for a terminal session event.
func FromEvent(ev session.Event) Result {
	out := ev.State.Outcome
	scores := out.FinalScores
	if scores == nil {
		scores = make([]int, 0, len(ev.State.Players))
		for _, p := range ev.State.Players {
			scores = append(scores, p.Score)
		}
	}
	winner := out.Winner
	if out.Status != game.Completed {
		winner = game.NoPlayer
	}
	return Result{
		SessionID:  ev.SessionID,
		NumPlayers: ev.Meta.NumPlayers,
		Rounds:     ev.State.Round,
		Status:     string(ev.Meta.Status),
		Winner:     winner,
		Draw:       out.Draw,
		Scores:     scores,
		Seed:       ev.Meta.Seed,
		CreatedAt:  ev.Meta.CreatedAt,
		FinishedAt: ev.Meta.LastActivity,
	}
}

// Store reads and writes the results table.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Record inserts r, replacing any earlier row for the same session.
func (s *Store) Record(ctx context.Context, r Result) error {
	scores, err := json.Marshal(r.Scores)
	if err != nil {
		return fmt.Errorf("encode scores: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO results
            (session_id, num_players, rounds, status, winner, draw, scores, seed, created_at, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(session_id) DO UPDATE SET
            rounds=excluded.rounds, status=excluded.status, winner=excluded.winner,
            draw=excluded.draw, scores=excluded.scores, finished_at=excluded.finished_at`,
		r.SessionID, r.NumPlayers, r.Rounds, r.Status, r.Winner, r.Draw, string(scores), r.Seed,
		r.CreatedAt.UTC().Format(time.RFC3339), r.FinishedAt.UTC().Format(time.RFC3339),
	)
	return err
}

const selectResult = `SELECT session_id, num_players, rounds, status, winner, draw, scores, seed, created_at, finished_at
        FROM results`

// Recent returns up to limit results, most recently finished first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx, selectResult+`
        ORDER BY finished_at DESC, rowid DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Result, 0, limit)
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get returns the archived result of one session.
func (s *Store) Get(ctx context.Context, id string) (Result, error) {
	r, err := scanResult(s.db.QueryRowContext(ctx, selectResult+` WHERE session_id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, ErrNotFound
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (Result, error) {
	var (
		r                 Result
		scores            string
		created, finished string
	)
	if err := row.Scan(&r.SessionID, &r.NumPlayers, &r.Rounds, &r.Status, &r.Winner, &r.Draw,
		&scores, &r.Seed, &created, &finished); err != nil {
		return Result{}, err
	}
	if err := json.Unmarshal([]byte(scores), &r.Scores); err != nil {
		return Result{}, fmt.Errorf("decode scores of %s: %w", r.SessionID, err)
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, created)
	r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
	return r, nil
}
