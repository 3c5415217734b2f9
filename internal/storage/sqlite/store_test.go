package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JavierTF/tictactoe-project/internal/board"
	"github.com/JavierTF/tictactoe-project/internal/game"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "games.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestCreateAndLoad(t *testing.T) {
	store, _ := openStore(t)

	g := game.New("alice", "bob")
	require.NoError(t, store.Create(context.Background(), g))

	loaded, err := store.Load(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, loaded.ID)
	assert.Equal(t, "alice", loaded.Player1)
	assert.Equal(t, "bob", loaded.Player2)
	assert.Equal(t, game.StatusInProgress, loaded.Status)
	assert.Equal(t, board.MarkX, loaded.CurrentTurn)
	assert.Equal(t, board.Board{}, loaded.Board)
	assert.True(t, loaded.FinishedAt.IsZero())
	assert.Equal(t, g.CreatedAt.UnixMilli(), loaded.CreatedAt.UnixMilli())

	_, err = store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, game.ErrNotFound)
}

func TestCommitPersistsGameAndMove(t *testing.T) {
	store, _ := openStore(t)

	g := game.New("alice", "bob")
	require.NoError(t, store.Create(context.Background(), g))

	move, err := g.ApplyMove("alice", 4)
	require.NoError(t, err)
	require.NoError(t, store.Commit(context.Background(), g, move))
	assert.Equal(t, int64(1), g.Version)

	loaded, err := store.Load(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, board.MarkX, loaded.Board[4])
	assert.Equal(t, board.MarkO, loaded.CurrentTurn)
	assert.Equal(t, int64(1), loaded.Version)

	moves, err := store.Moves(context.Background(), g.ID)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, move.ID, moves[0].ID)
	assert.Equal(t, 4, moves[0].Position)
	assert.Equal(t, board.MarkX, moves[0].Symbol)
}

func TestCommitStaleVersionConflicts(t *testing.T) {
	store, _ := openStore(t)

	g := game.New("alice", "bob")
	require.NoError(t, store.Create(context.Background(), g))

	stale, err := store.Load(context.Background(), g.ID)
	require.NoError(t, err)

	move, err := g.ApplyMove("alice", 4)
	require.NoError(t, err)
	require.NoError(t, store.Commit(context.Background(), g, move))

	staleMove, err := stale.ApplyMove("alice", 0)
	require.NoError(t, err)
	err = store.Commit(context.Background(), stale, staleMove)
	assert.ErrorIs(t, err, game.ErrConflict)

	// The losing commit's move was rolled back with it.
	moves, err := store.Moves(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Len(t, moves, 1)
}

func TestCommitUnknownGame(t *testing.T) {
	store, _ := openStore(t)
	g := game.New("alice", "bob")
	err := store.Commit(context.Background(), g, nil)
	assert.ErrorIs(t, err, game.ErrNotFound)
}

func TestCommitFinishedGame(t *testing.T) {
	store, _ := openStore(t)

	g := game.New("alice", "bob")
	require.NoError(t, store.Create(context.Background(), g))

	for _, m := range []struct {
		player string
		pos    int
	}{
		{"alice", 4}, {"bob", 0}, {"alice", 1}, {"bob", 3}, {"alice", 7},
	} {
		move, err := g.ApplyMove(m.player, m.pos)
		require.NoError(t, err)
		require.NoError(t, store.Commit(context.Background(), g, move))
	}

	loaded, err := store.Load(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, game.StatusFinished, loaded.Status)
	assert.Equal(t, "alice", loaded.Winner)
	assert.False(t, loaded.FinishedAt.IsZero())
	assert.Equal(t, int64(5), loaded.Version)
}

func TestListFilters(t *testing.T) {
	store, _ := openStore(t)

	waiting := game.New("alice", "")
	started := game.New("carol", "dave")
	require.NoError(t, store.Create(context.Background(), waiting))
	require.NoError(t, store.Create(context.Background(), started))

	byStatus, err := store.List(context.Background(), game.ListFilter{Status: game.StatusWaiting})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, waiting.ID, byStatus[0].ID)

	byPlayer, err := store.List(context.Background(), game.ListFilter{Player: "dave"})
	require.NoError(t, err)
	require.Len(t, byPlayer, 1)
	assert.Equal(t, started.ID, byPlayer[0].ID)

	both, err := store.List(context.Background(), game.ListFilter{Status: game.StatusInProgress, Player: "carol"})
	require.NoError(t, err)
	require.Len(t, both, 1)

	none, err := store.List(context.Background(), game.ListFilter{Player: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReopenKeepsState(t *testing.T) {
	store, path := openStore(t)

	g := game.New("alice", "bob")
	require.NoError(t, store.Create(context.Background(), g))
	move, err := g.ApplyMove("alice", 4)
	require.NoError(t, err)
	require.NoError(t, store.Commit(context.Background(), g, move))
	require.NoError(t, store.Close())

	// Reopening applies migrations idempotently and finds the data.
	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, board.MarkX, loaded.Board[4])

	moves, err := reopened.Moves(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Len(t, moves, 1)
}

func TestBoardCodec(t *testing.T) {
	var b board.Board
	b[0] = board.MarkX
	b[4] = board.MarkO
	b[8] = board.MarkX

	encoded := encodeBoard(b)
	assert.Equal(t, "X---O---X", encoded)

	decoded, err := decodeBoard(encoded)
	require.NoError(t, err)
	assert.Equal(t, b, decoded)

	_, err = decodeBoard("short")
	assert.Error(t, err)
	_, err = decodeBoard("Z--------")
	assert.Error(t, err)
}
