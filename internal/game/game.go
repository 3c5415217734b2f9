package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/JavierTF/tictactoe-project/internal/board"
)

// Status is the lifecycle state of a game.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "in_progress"
	StatusFinished   Status = "finished"
	StatusDraw       Status = "draw"
)

// Terminal reports whether no further transition can leave this status.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusDraw
}

// Game is the authoritative state of one match. Player1 always holds X
// and Player2, once joined, holds O. Version is the optimistic
// concurrency counter bumped by every committed transition.
type Game struct {
	ID          string
	Player1     string
	Player2     string
	Status      Status
	Board       board.Board
	CurrentTurn board.Mark
	Winner      string
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	FinishedAt  time.Time
}

// Move is one entry of a game's append-only move log.
type Move struct {
	ID        string
	GameID    string
	PlayerID  string
	Position  int
	Symbol    board.Mark
	CreatedAt time.Time
}

// New creates a game owned by player1 (X). With a second participant
// the game starts immediately, otherwise it waits for a join.
func New(player1, player2 string) *Game {
	status := StatusWaiting
	if player2 != "" {
		status = StatusInProgress
	}
	now := time.Now().UTC()
	return &Game{
		ID:          uuid.NewString(),
		Player1:     player1,
		Player2:     player2,
		Status:      status,
		CurrentTurn: board.MarkX,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// SymbolOf returns the mark the participant plays, or Empty for outsiders.
func (g *Game) SymbolOf(player string) board.Mark {
	switch player {
	case g.Player1:
		return board.MarkX
	case g.Player2:
		if g.Player2 != "" {
			return board.MarkO
		}
	}
	return board.Empty
}

// IsParticipant reports whether player is one of the two players.
func (g *Game) IsParticipant(player string) bool {
	return g.SymbolOf(player) != board.Empty
}

// IsPlayerTurn reports whether it is the given participant's turn.
func (g *Game) IsPlayerTurn(player string) bool {
	symbol := g.SymbolOf(player)
	return symbol != board.Empty && symbol == g.CurrentTurn
}

// Join adds player2 to a waiting game and starts it.
func (g *Game) Join(player2 string) error {
	if g.Status != StatusWaiting {
		return invalidTransition("this game is not available to join")
	}
	if g.Player2 != "" {
		return invalidTransition("this game already has two players")
	}
	if player2 == g.Player1 {
		return invalidTransition("you cannot play against yourself")
	}

	g.Player2 = player2
	g.Status = StatusInProgress
	g.UpdatedAt = time.Now().UTC()
	return nil
}

// ApplyMove places the participant's mark at position and advances the
// game: finished on a completed line, draw on a full board, otherwise
// the turn flips. The returned Move must be committed atomically with
// the game by the caller.
func (g *Game) ApplyMove(player string, position int) (*Move, error) {
	if g.Status != StatusInProgress {
		return nil, invalidTransition("game is not in progress")
	}
	if !g.IsParticipant(player) {
		return nil, ErrNotAParticipant
	}
	if !g.IsPlayerTurn(player) {
		return nil, ErrOutOfTurn
	}
	if position < 0 || position > 8 {
		return nil, ErrPositionOutOfRange
	}
	if !board.IsPositionAvailable(g.Board, position) {
		return nil, ErrPositionTaken
	}

	symbol := g.SymbolOf(player)
	g.Board[position] = symbol

	now := time.Now().UTC()
	move := &Move{
		ID:        uuid.NewString(),
		GameID:    g.ID,
		PlayerID:  player,
		Position:  position,
		Symbol:    symbol,
		CreatedAt: now,
	}

	switch {
	case board.Winner(g.Board) != board.Empty:
		g.Status = StatusFinished
		g.Winner = player
		g.FinishedAt = now
	case board.Full(g.Board):
		g.Status = StatusDraw
		g.FinishedAt = now
	default:
		g.CurrentTurn = g.CurrentTurn.Other()
	}
	g.UpdatedAt = now

	return move, nil
}

// Clone returns an independent copy of the game.
func (g *Game) Clone() *Game {
	clone := *g
	return &clone
}
