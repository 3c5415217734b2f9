// Package broadcast fans committed game snapshots out to connected
// subscribers. The hub holds no game logic.
package broadcast

import (
	"sync"

	"github.com/JavierTF/tictactoe-project/internal/game"
)

// Hub maintains, per game id, the set of subscribed snapshot channels.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan<- game.Snapshot]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[chan<- game.Snapshot]struct{}),
	}
}

// Subscribe registers ch for the game's updates. Idempotent. The
// channel stays owned by the caller; the hub never closes it.
func (h *Hub) Subscribe(gameID string, ch chan<- game.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[gameID] == nil {
		h.subs[gameID] = make(map[chan<- game.Snapshot]struct{})
	}
	h.subs[gameID][ch] = struct{}{}
}

// Unsubscribe removes ch from the game's subscriber set. Idempotent and
// safe for channels that were never subscribed.
func (h *Hub) Unsubscribe(gameID string, ch chan<- game.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[gameID], ch)
	if len(h.subs[gameID]) == 0 {
		delete(h.subs, gameID)
	}
}

// Publish delivers snap to every subscriber of the game. Delivery is
// best-effort per subscriber: a full channel is skipped rather than
// blocking, so one slow connection never holds up the others or the
// transition that published. Callers serialize Publish per game, and
// each subscriber channel is FIFO, so no subscriber ever observes
// snapshots of one game out of commit order.
func (h *Hub) Publish(gameID string, snap game.Snapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[gameID] {
		select {
		case ch <- snap:
		default:
		}
	}
}

// Subscribers reports the current subscriber count for a game.
func (h *Hub) Subscribers(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[gameID])
}
