package game

import (
	"time"

	"github.com/JavierTF/tictactoe-project/internal/board"
)

// PlayerInfo pairs a participant id with the symbol they play.
type PlayerInfo struct {
	ID     string     `json:"id"`
	Symbol board.Mark `json:"symbol"`
}

// LastMove describes the move that produced a snapshot.
type LastMove struct {
	Player   string     `json:"player"`
	Position int        `json:"position"`
	Symbol   board.Mark `json:"symbol"`
}

// Snapshot is the read-only projection of a game sent to clients.
// Field names follow the wire protocol.
type Snapshot struct {
	GameID             string      `json:"game_id"`
	Status             Status      `json:"status"`
	Board              board.Board `json:"board"`
	CurrentTurn        board.Mark  `json:"current_turn"`
	Player1            PlayerInfo  `json:"player1"`
	Player2            *PlayerInfo `json:"player2"`
	Winner             string      `json:"winner,omitempty"`
	AvailablePositions []int       `json:"available_positions"`
	LastMove           *LastMove   `json:"last_move,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	FinishedAt         *time.Time  `json:"finished_at,omitempty"`
}

// NewSnapshot projects the game, optionally annotated with the move
// that triggered it.
func NewSnapshot(g *Game, last *Move) Snapshot {
	snap := Snapshot{
		GameID:             g.ID,
		Status:             g.Status,
		Board:              g.Board,
		CurrentTurn:        g.CurrentTurn,
		Player1:            PlayerInfo{ID: g.Player1, Symbol: board.MarkX},
		Winner:             g.Winner,
		AvailablePositions: board.AvailablePositions(g.Board),
		CreatedAt:          g.CreatedAt,
	}
	if g.Player2 != "" {
		snap.Player2 = &PlayerInfo{ID: g.Player2, Symbol: board.MarkO}
	}
	if last != nil {
		snap.LastMove = &LastMove{Player: last.PlayerID, Position: last.Position, Symbol: last.Symbol}
	}
	if !g.FinishedAt.IsZero() {
		finished := g.FinishedAt
		snap.FinishedAt = &finished
	}
	return snap
}
