// Package memory provides an in-memory game repository, used for
// development and as the reference implementation in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/JavierTF/tictactoe-project/internal/game"
)

// Store keeps games and move logs in process memory. All records are
// stored and returned as copies so callers never share mutable state.
type Store struct {
	mu    sync.RWMutex
	games map[string]*game.Game
	moves map[string][]*game.Move
}

// New creates an empty store.
func New() *Store {
	return &Store{
		games: make(map[string]*game.Game),
		moves: make(map[string][]*game.Move),
	}
}

// Load returns the game by id.
func (s *Store) Load(ctx context.Context, id string) (*game.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return nil, game.ErrNotFound
	}
	return g.Clone(), nil
}

// Create persists a new game.
func (s *Store) Create(ctx context.Context, g *game.Game) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = g.Clone()
	return nil
}

// Commit stores the transitioned game and appends the move, guarded by
// the version the caller read.
func (s *Store) Commit(ctx context.Context, g *game.Game, move *game.Move) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.games[g.ID]
	if !ok {
		return game.ErrNotFound
	}
	if stored.Version != g.Version {
		return game.ErrConflict
	}

	g.Version++
	s.games[g.ID] = g.Clone()
	if move != nil {
		m := *move
		s.moves[g.ID] = append(s.moves[g.ID], &m)
	}
	return nil
}

// List returns games matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter game.ListFilter) ([]*game.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var games []*game.Game
	for _, g := range s.games {
		if filter.Status != "" && g.Status != filter.Status {
			continue
		}
		if filter.Player != "" && g.Player1 != filter.Player && g.Player2 != filter.Player {
			continue
		}
		games = append(games, g.Clone())
	}
	sort.Slice(games, func(i, j int) bool {
		return games[i].CreatedAt.After(games[j].CreatedAt)
	})
	return games, nil
}

// Moves returns the game's move log in append order.
func (s *Store) Moves(ctx context.Context, gameID string) ([]*game.Move, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.moves[gameID]
	moves := make([]*game.Move, len(log))
	for i, m := range log {
		copied := *m
		moves[i] = &copied
	}
	return moves, nil
}
