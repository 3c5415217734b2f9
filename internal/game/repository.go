package game

import "context"

// ListFilter narrows a repository listing. Zero values match everything.
type ListFilter struct {
	Status Status
	Player string
}

// Repository is the durable store boundary. Implementations must return
// independent copies of their records and report ErrNotFound for
// unknown games and ErrConflict for stale-version commits.
type Repository interface {
	// Load returns the game by id.
	Load(ctx context.Context, id string) (*Game, error)

	// Create persists a new game.
	Create(ctx context.Context, g *Game) error

	// Commit atomically persists a transitioned game and, when move is
	// non-nil, appends it to the game's move log. The stored version
	// must still equal g.Version; on success both the stored record and
	// g advance to g.Version+1.
	Commit(ctx context.Context, g *Game, move *Move) error

	// List returns games matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]*Game, error)

	// Moves returns the game's move log in append order.
	Moves(ctx context.Context, gameID string) ([]*Move, error)
}
