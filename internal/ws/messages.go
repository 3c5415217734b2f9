package ws

import "github.com/JavierTF/tictactoe-project/internal/game"

// Inbound message kinds.
const (
	TypeMove     = "move"
	TypeGetState = "get_state"
)

// Outbound message kinds.
const (
	TypeGameState  = "game_state"  // snapshot pushed to one connection
	TypeGameUpdate = "game_update" // snapshot broadcast after a transition
	TypeError      = "error"
)

// Close codes distinguishing why a connection was rejected at open.
const (
	CloseUnauthenticated = 4001
	CloseNotAParticipant = 4003
	CloseGameNotFound    = 4004
)

// clientMessage is the envelope for all inbound messages.
type clientMessage struct {
	Type     string `json:"type"`
	Position *int   `json:"position,omitempty"`
}

// serverMessage is the envelope for all outbound messages.
type serverMessage struct {
	Type    string         `json:"type"`
	Data    *game.Snapshot `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
}

func stateMessage(kind string, snap game.Snapshot) serverMessage {
	return serverMessage{Type: kind, Data: &snap}
}

func errorMessage(msg string) serverMessage {
	return serverMessage{Type: TypeError, Message: msg}
}
