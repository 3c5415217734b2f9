// Package sqlite implements the game repository over a single SQLite
// file. Commits use a version column as an optimistic concurrency
// guard so a transition computed against stale state fails instead of
// silently overwriting.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/JavierTF/tictactoe-project/internal/board"
	"github.com/JavierTF/tictactoe-project/internal/game"
	"github.com/JavierTF/tictactoe-project/internal/storage/sqlite/migrations"
)

// Store is a SQLite-backed game repository.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies bundled
// migrations, keeping startup and schema evolution in one place.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies each embedded .sql file at most once, tracked in a
// schema_migrations table.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
);`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	entries, err := migrations.FS.ReadDir(".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		var applied int
		err := s.db.QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE name = ?`, name).Scan(&applied)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if applied > 0 {
			continue
		}

		content, err := migrations.FS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`,
			name, time.Now().UTC().UnixMilli()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}
	return nil
}

const gameColumns = `id, player1, player2, status, board, current_turn, winner, version, created_at, updated_at, finished_at`

// Load returns the game by id.
func (s *Store) Load(ctx context.Context, id string) (*game.Game, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, id)
	g, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, game.ErrNotFound
	}
	return g, err
}

// Create persists a new game.
func (s *Store) Create(ctx context.Context, g *game.Game) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO games (`+gameColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Player1, g.Player2, string(g.Status), encodeBoard(g.Board),
		string(g.CurrentTurn), g.Winner, g.Version,
		toMillis(g.CreatedAt), toMillis(g.UpdatedAt), nullableMillis(g.FinishedAt))
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

// Commit stores the transitioned game and appends the move in one
// transaction, guarded by the version the caller read.
func (s *Store) Commit(ctx context.Context, g *game.Game, move *game.Move) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE games
SET player2 = ?, status = ?, board = ?, current_turn = ?, winner = ?,
    version = version + 1, updated_at = ?, finished_at = ?
WHERE id = ? AND version = ?`,
		g.Player2, string(g.Status), encodeBoard(g.Board), string(g.CurrentTurn), g.Winner,
		toMillis(g.UpdatedAt), nullableMillis(g.FinishedAt),
		g.ID, g.Version)
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	if affected == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM games WHERE id = ?`, g.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check game: %w", err)
		}
		if exists == 0 {
			return game.ErrNotFound
		}
		return game.ErrConflict
	}

	if move != nil {
		if _, err := tx.ExecContext(ctx, `INSERT INTO moves (id, game_id, player, position, symbol, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
			move.ID, move.GameID, move.PlayerID, move.Position, string(move.Symbol), toMillis(move.CreatedAt)); err != nil {
			return fmt.Errorf("insert move: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	g.Version++
	return nil
}

// List returns games matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter game.ListFilter) ([]*game.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games`
	var clauses []string
	var args []any
	if filter.Status != "" {
		clauses = append(clauses, `status = ?`)
		args = append(args, string(filter.Status))
	}
	if filter.Player != "" {
		clauses = append(clauses, `(player1 = ? OR player2 = ?)`)
		args = append(args, filter.Player, filter.Player)
	}
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, ` AND `)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []*game.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// Moves returns the game's move log in append order.
func (s *Store) Moves(ctx context.Context, gameID string) ([]*game.Move, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, game_id, player, position, symbol, created_at
FROM moves WHERE game_id = ? ORDER BY created_at, rowid`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list moves: %w", err)
	}
	defer rows.Close()

	var moves []*game.Move
	for rows.Next() {
		var m game.Move
		var symbol string
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.GameID, &m.PlayerID, &m.Position, &symbol, &createdAt); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		m.Symbol = board.Mark(symbol)
		m.CreatedAt = fromMillis(createdAt)
		moves = append(moves, &m)
	}
	return moves, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*game.Game, error) {
	var g game.Game
	var status, boardStr, turn string
	var createdAt, updatedAt int64
	var finishedAt sql.NullInt64
	if err := row.Scan(&g.ID, &g.Player1, &g.Player2, &status, &boardStr, &turn,
		&g.Winner, &g.Version, &createdAt, &updatedAt, &finishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan game: %w", err)
	}

	b, err := decodeBoard(boardStr)
	if err != nil {
		return nil, err
	}
	g.Status = game.Status(status)
	g.Board = b
	g.CurrentTurn = board.Mark(turn)
	g.CreatedAt = fromMillis(createdAt)
	g.UpdatedAt = fromMillis(updatedAt)
	if finishedAt.Valid {
		g.FinishedAt = fromMillis(finishedAt.Int64)
	}
	return &g, nil
}

// encodeBoard flattens the grid to a 9-char string, '-' for empty.
func encodeBoard(b board.Board) string {
	out := make([]byte, 9)
	for i, cell := range b {
		switch cell {
		case board.MarkX:
			out[i] = 'X'
		case board.MarkO:
			out[i] = 'O'
		default:
			out[i] = '-'
		}
	}
	return string(out)
}

func decodeBoard(s string) (board.Board, error) {
	var b board.Board
	if len(s) != 9 {
		return b, fmt.Errorf("malformed board state %q", s)
	}
	for i := 0; i < 9; i++ {
		switch s[i] {
		case 'X':
			b[i] = board.MarkX
		case 'O':
			b[i] = board.MarkO
		case '-':
			b[i] = board.Empty
		default:
			return b, fmt.Errorf("malformed board state %q", s)
		}
	}
	return b, nil
}

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis restores millisecond precision and keeps UTC normalization.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func nullableMillis(value time.Time) sql.NullInt64 {
	if value.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(value), Valid: true}
}
