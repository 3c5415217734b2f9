// Package events mirrors committed game transitions onto a NATS bus so
// other processes (dashboards, additional server nodes) can observe
// them without a connection to this instance.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/JavierTF/tictactoe-project/internal/game"
)

// subjectPattern carries one game's updates; subscribers may use
// wildcards (games.*.updates) to follow every game.
const subjectPattern = "games.%s.updates"

// NATSPublisher publishes snapshots of committed transitions.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("tictactoe-server"))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

// PublishUpdate sends the snapshot to the game's update subject.
func (p *NATSPublisher) PublishUpdate(ctx context.Context, snap game.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := p.conn.Publish(fmt.Sprintf(subjectPattern, snap.GameID), data); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

// Close drains and closes the NATS connection.
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
