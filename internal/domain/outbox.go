package domain

import (
	"context"
	"errors"
	"sync"
)

var ErrOutboxClosed = errors.New("outbox closed")

// Outbox is the send side of one live connection's event stream.
// The events channel is never closed; Close only marks the receiver as gone,
// so senders racing with Close get ErrOutboxClosed instead of a panic.
type Outbox struct {
	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

func NewOutbox(capacity int) *Outbox {
	if capacity < 0 {
		capacity = 0
	}

	return &Outbox{
		events: make(chan Event, capacity),
		done:   make(chan struct{}),
	}
}

// Send blocks until the event is buffered, the receiver is gone or ctx is done.
func (o *Outbox) Send(ctx context.Context, event Event) error {
	select {
	case <-o.done:
		return ErrOutboxClosed
	default:
	}

	select {
	case o.events <- event:
		return nil
	case <-o.done:
		return ErrOutboxClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Outbox) Events() <-chan Event {
	return o.events
}

func (o *Outbox) Done() <-chan struct{} {
	return o.done
}

func (o *Outbox) Close() {
	o.closeOnce.Do(func() {
		close(o.done)
	})
}

func (o *Outbox) Cap() int {
	return cap(o.events)
}
