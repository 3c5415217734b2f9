package game

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

const defaultRepoTimeout = 5 * time.Second

// Broadcaster receives the snapshot of every committed transition for
// fan-out to connected clients. Implementations must not block.
type Broadcaster interface {
	Publish(gameID string, snap Snapshot)
}

// EventPublisher mirrors committed transitions to an external bus.
// Delivery is best-effort and never affects the transition itself.
type EventPublisher interface {
	PublishUpdate(ctx context.Context, snap Snapshot) error
}

// Service orchestrates state-machine transitions against the
// repository. Transitions for one game are serialized by a per-game
// mutex held for the whole read-transition-commit span, so two
// concurrent moves can never both succeed against the same pre-move
// state. Different games proceed independently.
type Service struct {
	repo        Repository
	broadcaster Broadcaster
	events      EventPublisher
	timeout     time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a game service. broadcaster and events may be nil.
// A zero repoTimeout falls back to a 5s bound on every repository call.
func NewService(repo Repository, broadcaster Broadcaster, events EventPublisher, repoTimeout time.Duration) *Service {
	if repoTimeout <= 0 {
		repoTimeout = defaultRepoTimeout
	}
	return &Service{
		repo:        repo,
		broadcaster: broadcaster,
		events:      events,
		timeout:     repoTimeout,
		locks:       make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing transitions of one game.
func (s *Service) lockFor(gameID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[gameID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[gameID] = l
	}
	return l
}

// storeCtx bounds a repository call.
func (s *Service) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// storeErr maps a timed-out repository call to the retryable
// unavailable error; everything else passes through.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrUnavailable
	}
	return err
}

// Create starts a new game for player1, optionally against player2.
func (s *Service) Create(ctx context.Context, player1, player2 string) (Snapshot, error) {
	if player1 == "" {
		return Snapshot{}, validationError("player1 is required")
	}
	if player2 != "" && player2 == player1 {
		return Snapshot{}, invalidTransition("you cannot play against yourself")
	}

	g := New(player1, player2)

	cctx, cancel := s.storeCtx(ctx)
	defer cancel()
	if err := s.repo.Create(cctx, g); err != nil {
		return Snapshot{}, storeErr(err)
	}

	snap := NewSnapshot(g, nil)
	s.announce(g.ID, snap)
	return snap, nil
}

// Join adds player2 to a waiting game.
func (s *Service) Join(ctx context.Context, gameID, player2 string) (Snapshot, error) {
	if player2 == "" {
		return Snapshot{}, validationError("player is required")
	}

	lock := s.lockFor(gameID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := s.joinLocked(ctx, gameID, player2)
	if errors.Is(err, ErrConflict) {
		snap, err = s.joinLocked(ctx, gameID, player2)
	}
	return snap, err
}

func (s *Service) joinLocked(ctx context.Context, gameID, player2 string) (Snapshot, error) {
	cctx, cancel := s.storeCtx(ctx)
	defer cancel()

	g, err := s.repo.Load(cctx, gameID)
	if err != nil {
		return Snapshot{}, storeErr(err)
	}
	if err := g.Join(player2); err != nil {
		return Snapshot{}, err
	}
	if err := s.repo.Commit(cctx, g, nil); err != nil {
		return Snapshot{}, storeErr(err)
	}

	snap := NewSnapshot(g, nil)
	s.announce(g.ID, snap)
	return snap, nil
}

// Move applies one move for player. A store conflict is retried once
// against fresh state; with the per-game lock held it only fires when
// an external writer shares the database.
func (s *Service) Move(ctx context.Context, gameID, player string, position int) (Snapshot, error) {
	lock := s.lockFor(gameID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := s.moveLocked(ctx, gameID, player, position)
	if errors.Is(err, ErrConflict) {
		snap, err = s.moveLocked(ctx, gameID, player, position)
	}
	return snap, err
}

func (s *Service) moveLocked(ctx context.Context, gameID, player string, position int) (Snapshot, error) {
	cctx, cancel := s.storeCtx(ctx)
	defer cancel()

	g, err := s.repo.Load(cctx, gameID)
	if err != nil {
		return Snapshot{}, storeErr(err)
	}
	move, err := g.ApplyMove(player, position)
	if err != nil {
		return Snapshot{}, err
	}
	if err := s.repo.Commit(cctx, g, move); err != nil {
		return Snapshot{}, storeErr(err)
	}

	snap := NewSnapshot(g, move)
	s.announce(g.ID, snap)
	return snap, nil
}

// State returns the current snapshot of a game.
func (s *Service) State(ctx context.Context, gameID string) (Snapshot, error) {
	cctx, cancel := s.storeCtx(ctx)
	defer cancel()

	g, err := s.repo.Load(cctx, gameID)
	if err != nil {
		return Snapshot{}, storeErr(err)
	}
	return NewSnapshot(g, nil), nil
}

// Games lists games matching the filter, newest first.
func (s *Service) Games(ctx context.Context, filter ListFilter) ([]Snapshot, error) {
	cctx, cancel := s.storeCtx(ctx)
	defer cancel()

	games, err := s.repo.List(cctx, filter)
	if err != nil {
		return nil, storeErr(err)
	}
	snaps := make([]Snapshot, 0, len(games))
	for _, g := range games {
		snaps = append(snaps, NewSnapshot(g, nil))
	}
	return snaps, nil
}

// Moves returns a game's move log in append order.
func (s *Service) Moves(ctx context.Context, gameID string) ([]*Move, error) {
	cctx, cancel := s.storeCtx(ctx)
	defer cancel()

	if _, err := s.repo.Load(cctx, gameID); err != nil {
		return nil, storeErr(err)
	}
	moves, err := s.repo.Moves(cctx, gameID)
	if err != nil {
		return nil, storeErr(err)
	}
	return moves, nil
}

// announce fans a committed snapshot out to subscribers and the event
// bus. Called with the per-game lock held, which is what keeps
// broadcast order aligned with commit order for a single game.
func (s *Service) announce(gameID string, snap Snapshot) {
	if s.broadcaster != nil {
		s.broadcaster.Publish(gameID, snap)
	}
	if s.events != nil {
		ectx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.events.PublishUpdate(ectx, snap); err != nil {
			log.Printf("events: publish game %s: %v", gameID, err)
		}
	}
}
