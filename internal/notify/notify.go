// Package notify carries the observational notification signal: a
// fire-and-forget broadcast for live dashboards plus a durable flag per
// event kind so a dashboard opened later still sees what is pending.
// Notification failures never fail the operation that triggered them.
package notify

import (
	"context"
	"log/slog"
	"time"
)

// Event names broadcast to dashboards.
const (
	EventNewProperty = "new-property"
	EventNewLead     = "new-lead"
)

// Message is the broadcast payload.
type Message struct {
	Event      string    `json:"event"`
	EntityID   string    `json:"entityId"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Broadcaster publishes events to any live listener.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg Message) error
}

// FlagStore persists one pending flag per event kind until acknowledged.
type FlagStore interface {
	Set(ctx context.Context, event string) error
	Pending(ctx context.Context) (Pending, error)
	Clear(ctx context.Context) error
}

// Pending reports which notification kinds await acknowledgement.
type Pending struct {
	NewProperty bool `json:"newProperty"`
	NewLead     bool `json:"newLead"`
}

// Notifier combines broadcast and durable flags.
type Notifier struct {
	broadcaster Broadcaster
	flags       FlagStore
}

// New constructs a notifier. Nil broadcaster or flag store fall back to
// no-op and in-memory implementations respectively.
func New(b Broadcaster, f FlagStore) *Notifier {
	if b == nil {
		b = NopBroadcaster{}
	}
	if f == nil {
		f = NewMemoryFlags()
	}
	return &Notifier{broadcaster: b, flags: f}
}

// Notify records the durable flag and broadcasts the event. Both legs
// are best-effort: failures are logged and swallowed.
func (n *Notifier) Notify(ctx context.Context, event, entityID string) {
	if err := n.flags.Set(ctx, event); err != nil {
		slog.Warn("notify: set flag failed", "event", event, "err", err)
	}
	msg := Message{Event: event, EntityID: entityID, OccurredAt: time.Now().UTC()}
	if err := n.broadcaster.Broadcast(ctx, msg); err != nil {
		slog.Warn("notify: broadcast failed", "event", event, "err", err)
	}
}

// Pending returns the flags awaiting acknowledgement.
func (n *Notifier) Pending(ctx context.Context) (Pending, error) {
	return n.flags.Pending(ctx)
}

// Ack clears all pending flags. Called when the management view is
// visited.
func (n *Notifier) Ack(ctx context.Context) error {
	return n.flags.Clear(ctx)
}

// NopBroadcaster drops every message. Used when no broker is configured.
type NopBroadcaster struct{}

func (NopBroadcaster) Broadcast(context.Context, Message) error { return nil }
