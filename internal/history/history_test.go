package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/azul/internal/game"
	"github.com/robalobadob/azul/internal/session"
	"github.com/robalobadob/azul/internal/store"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "azul.db")
	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db), path
}

func result(id string, finished time.Time) Result {
	return Result{
		SessionID:  id,
		NumPlayers: 2,
		Rounds:     5,
		Status:     string(session.StatusCompleted),
		Winner:     1,
		Scores:     []int{31, 44},
		Seed:       7,
		CreatedAt:  finished.Add(-20 * time.Minute),
		FinishedAt: finished,
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	_, path := openTemp(t)

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestRecordAndGet(t *testing.T) {
	ctx := context.Background()
	st, _ := openTemp(t)
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, st.Record(ctx, result("a", at)))
	got, err := st.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, result("a", at), got)

	_, err = st.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordUpserts(t *testing.T) {
	ctx := context.Background()
	st, _ := openTemp(t)
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	r := result("a", at)
	require.NoError(t, st.Record(ctx, r))
	r.Status, r.Winner, r.Draw, r.Scores = string(session.StatusAborted), game.NoPlayer, false, []int{3, 9}
	require.NoError(t, st.Record(ctx, r))

	got, err := st.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "aborted", got.Status)
	assert.Equal(t, []int{3, 9}, got.Scores)

	all, err := st.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRecentOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	st, _ := openTemp(t)
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, st.Record(ctx, result(id, base.Add(time.Duration(i)*time.Minute))))
	}

	got, err := st.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "d", got[0].SessionID)
	assert.Equal(t, "c", got[1].SessionID)
	assert.Equal(t, "b", got[2].SessionID)

	got, err = st.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestFromEventAborted(t *testing.T) {
	g, err := game.New(3, game.WithSeed(1))
	require.NoError(t, err)
	g.Abort()

	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	ev := session.Event{
		Kind:      session.EventAborted,
		SessionID: "x",
		Meta:      session.Meta{ID: "x", NumPlayers: 3, Seed: 1, Status: session.StatusAborted, CreatedAt: now, LastActivity: now},
		State:     g.Snapshot(),
	}
	r := FromEvent(ev)
	assert.Equal(t, "aborted", r.Status)
	assert.Equal(t, game.NoPlayer, r.Winner)
	assert.Equal(t, []int{0, 0, 0}, r.Scores)
	assert.Equal(t, 1, r.Rounds)
	assert.Equal(t, 3, r.NumPlayers)
}

func TestArchiverRecordsTerminalEvents(t *testing.T) {
	st, _ := openTemp(t)
	arch := NewArchiver(st, 8)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		arch.Run(ctx)
		close(done)
	}()

	m := session.NewManager(store.NewMemoryStore())
	m.Subscribe(arch)

	live, _, err := m.Create(ctx, 2, nil)
	require.NoError(t, err)
	gone, _, err := m.Create(ctx, 4, nil)
	require.NoError(t, err)
	_, err = m.Abort(ctx, gone.ID)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err := st.Get(context.Background(), gone.ID)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	r, err := st.Get(context.Background(), gone.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, r.NumPlayers)
	assert.Equal(t, "aborted", r.Status)

	cancel()
	<-done

	_, err = st.Get(context.Background(), live.ID)
	assert.ErrorIs(t, err, ErrNotFound, "running games are not archived")
}
