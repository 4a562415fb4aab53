package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type captureBroadcaster struct {
	mu       sync.Mutex
	messages []Message
	fail     bool
}

func (c *captureBroadcaster) Broadcast(_ context.Context, msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broker down")
	}
	c.messages = append(c.messages, msg)
	return nil
}

func TestNotifierSetsFlagAndBroadcasts(t *testing.T) {
	capture := &captureBroadcaster{}
	n := New(capture, NewMemoryFlags())
	ctx := context.Background()

	n.Notify(ctx, EventNewProperty, "prop-1")

	pending, err := n.Pending(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if !pending.NewProperty || pending.NewLead {
		t.Fatalf("unexpected pending state: %+v", pending)
	}
	if len(capture.messages) != 1 || capture.messages[0].Event != EventNewProperty || capture.messages[0].EntityID != "prop-1" {
		t.Fatalf("unexpected broadcast: %+v", capture.messages)
	}
}

func TestNotifierSurvivesBrokenBroadcaster(t *testing.T) {
	n := New(&captureBroadcaster{fail: true}, NewMemoryFlags())
	ctx := context.Background()

	// Must not panic or propagate; the durable flag still lands.
	n.Notify(ctx, EventNewLead, "lead-1")

	pending, err := n.Pending(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if !pending.NewLead {
		t.Fatal("expected durable flag despite broadcast failure")
	}
}

func TestAckClearsAllFlags(t *testing.T) {
	n := New(nil, nil)
	ctx := context.Background()

	n.Notify(ctx, EventNewProperty, "prop-1")
	n.Notify(ctx, EventNewLead, "lead-1")
	if err := n.Ack(ctx); err != nil {
		t.Fatalf("ack: %v", err)
	}

	pending, err := n.Pending(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if pending.NewProperty || pending.NewLead {
		t.Fatalf("expected all flags cleared, got %+v", pending)
	}
}
