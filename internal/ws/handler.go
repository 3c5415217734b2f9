// Package ws is the realtime protocol endpoint. Each connection is
// bound to one game at connect time, authenticated, checked for
// membership, and subscribed to the broadcast hub.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/JavierTF/tictactoe-project/internal/auth"
	"github.com/JavierTF/tictactoe-project/internal/broadcast"
	"github.com/JavierTF/tictactoe-project/internal/game"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to the peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size; client messages are tiny.
	maxMessageSize = 1024

	// Outbound buffer per connection; a subscriber further behind than
	// this starts losing broadcasts rather than stalling the hub.
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades connections and speaks the game protocol.
type Handler struct {
	service  *game.Service
	hub      *broadcast.Hub
	auth     auth.Authenticator
	dispatch map[string]func(*connection, clientMessage)
}

// NewHandler creates a WebSocket handler.
func NewHandler(service *game.Service, hub *broadcast.Hub, authenticator auth.Authenticator) *Handler {
	h := &Handler{
		service: service,
		hub:     hub,
		auth:    authenticator,
	}
	h.dispatch = map[string]func(*connection, clientMessage){
		TypeMove:     h.handleMove,
		TypeGetState: h.handleGetState,
	}
	return h
}

// RegisterRoutes sets up the WebSocket routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/{gameID}", h.handleConnect)
}

// connection is one player's live link to one game.
type connection struct {
	conn   *websocket.Conn
	gameID string
	player string
	ctx    context.Context

	// send carries messages scoped to this connection only.
	send chan serverMessage

	// updates receives the hub's broadcasts for the game.
	updates chan game.Snapshot
}

func (h *Handler) handleConnect(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("gameID")
	player, authErr := h.auth.Authenticate(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// Rejections happen after the upgrade so the client receives a
	// close code it can distinguish.
	if authErr != nil {
		closeWith(conn, CloseUnauthenticated, "not authenticated")
		return
	}

	snap, err := h.service.State(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, game.ErrNotFound) {
			closeWith(conn, CloseGameNotFound, "game not found")
		} else {
			closeWith(conn, websocket.CloseInternalServerErr, "cannot load game")
		}
		return
	}
	if !isParticipant(snap, player) {
		closeWith(conn, CloseNotAParticipant, "not a participant of this game")
		return
	}

	c := &connection{
		conn:    conn,
		gameID:  gameID,
		player:  player,
		ctx:     r.Context(),
		send:    make(chan serverMessage, sendBuffer),
		updates: make(chan game.Snapshot, sendBuffer),
	}

	h.hub.Subscribe(gameID, c.updates)
	defer h.hub.Unsubscribe(gameID, c.updates)

	c.send <- stateMessage(TypeGameState, snap)

	go c.writeLoop()
	h.readLoop(c)

	// Closing send stops the write loop; the hub unsubscribe above is
	// idempotent and leaves other connections untouched.
	close(c.send)
}

// readLoop consumes inbound messages until the connection drops.
// Malformed or unknown messages produce a scoped error and the
// connection stays open.
func (h *Handler) readLoop(c *connection) {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("ws: game %s player %s: %v", c.gameID, c.player, err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.reply(errorMessage("invalid JSON"))
			continue
		}

		handler, ok := h.dispatch[msg.Type]
		if !ok {
			c.reply(errorMessage("unknown message type"))
			continue
		}
		handler(c, msg)
	}
}

// handleMove applies a move; the resulting snapshot reaches every
// subscriber through the hub, so only failures are answered directly.
func (h *Handler) handleMove(c *connection, msg clientMessage) {
	if msg.Position == nil {
		c.reply(errorMessage("position is required"))
		return
	}
	if _, err := h.service.Move(c.ctx, c.gameID, c.player, *msg.Position); err != nil {
		c.reply(errorMessage(err.Error()))
	}
}

// handleGetState pushes the current snapshot to the requester only.
func (h *Handler) handleGetState(c *connection, _ clientMessage) {
	snap, err := h.service.State(c.ctx, c.gameID)
	if err != nil {
		c.reply(errorMessage(err.Error()))
		return
	}
	c.reply(stateMessage(TypeGameState, snap))
}

// reply queues a sender-scoped message, dropping it if the connection
// is too far behind.
func (c *connection) reply(msg serverMessage) {
	select {
	case c.send <- msg:
	default:
	}
}

// writeLoop pumps scoped messages and hub broadcasts to the peer and
// keeps the connection alive with pings.
func (c *connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case snap := <-c.updates:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(stateMessage(TypeGameUpdate, snap)); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func isParticipant(snap game.Snapshot, player string) bool {
	if player == snap.Player1.ID {
		return true
	}
	return snap.Player2 != nil && player == snap.Player2.ID
}

func closeWith(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(writeWait)
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
}
