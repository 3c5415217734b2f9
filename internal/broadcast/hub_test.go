package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JavierTF/tictactoe-project/internal/game"
)

func snapshot(gameID string, status game.Status) game.Snapshot {
	return game.Snapshot{GameID: gameID, Status: status}
}

func TestSubscribeAndPublish(t *testing.T) {
	hub := NewHub()
	ch := make(chan game.Snapshot, 4)
	hub.Subscribe("g1", ch)

	hub.Publish("g1", snapshot("g1", game.StatusInProgress))

	require.Len(t, ch, 1)
	got := <-ch
	assert.Equal(t, "g1", got.GameID)
}

func TestPublishOnlyReachesSameGame(t *testing.T) {
	hub := NewHub()
	ch1 := make(chan game.Snapshot, 4)
	ch2 := make(chan game.Snapshot, 4)
	hub.Subscribe("g1", ch1)
	hub.Subscribe("g2", ch2)

	hub.Publish("g1", snapshot("g1", game.StatusInProgress))

	assert.Len(t, ch1, 1)
	assert.Empty(t, ch2)
}

func TestSubscribeIdempotent(t *testing.T) {
	hub := NewHub()
	ch := make(chan game.Snapshot, 4)
	hub.Subscribe("g1", ch)
	hub.Subscribe("g1", ch)

	assert.Equal(t, 1, hub.Subscribers("g1"))

	hub.Publish("g1", snapshot("g1", game.StatusInProgress))
	assert.Len(t, ch, 1)
}

func TestUnsubscribe(t *testing.T) {
	hub := NewHub()
	ch := make(chan game.Snapshot, 4)
	hub.Subscribe("g1", ch)
	hub.Unsubscribe("g1", ch)

	assert.Zero(t, hub.Subscribers("g1"))

	hub.Publish("g1", snapshot("g1", game.StatusInProgress))
	assert.Empty(t, ch)

	// Repeated and never-subscribed unsubscribes are no-ops.
	hub.Unsubscribe("g1", ch)
	hub.Unsubscribe("other", ch)
}

func TestPublishPreservesOrder(t *testing.T) {
	hub := NewHub()
	ch := make(chan game.Snapshot, 4)
	hub.Subscribe("g1", ch)

	hub.Publish("g1", snapshot("g1", game.StatusWaiting))
	hub.Publish("g1", snapshot("g1", game.StatusInProgress))
	hub.Publish("g1", snapshot("g1", game.StatusFinished))

	assert.Equal(t, game.StatusWaiting, (<-ch).Status)
	assert.Equal(t, game.StatusInProgress, (<-ch).Status)
	assert.Equal(t, game.StatusFinished, (<-ch).Status)
}

func TestPublishSkipsFullSubscriber(t *testing.T) {
	hub := NewHub()
	full := make(chan game.Snapshot, 1)
	healthy := make(chan game.Snapshot, 4)
	hub.Subscribe("g1", full)
	hub.Subscribe("g1", healthy)

	full <- snapshot("g1", game.StatusWaiting)

	// Must not block even though one subscriber cannot accept.
	hub.Publish("g1", snapshot("g1", game.StatusInProgress))

	assert.Len(t, full, 1)
	require.Len(t, healthy, 1)
	assert.Equal(t, game.StatusInProgress, (<-healthy).Status)
}
