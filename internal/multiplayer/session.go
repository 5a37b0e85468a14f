package multiplayer

import (
	"sync"
	"sync/atomic"
)

// SessionHandle is what a room knows about a connected player. Transports
// implement it so rooms never touch WebSocket or SSH types.
type SessionHandle interface {
	ID() SessionID

	// Send must not block: rooms call it from their tick loop.
	Send(evt SessionEvent)

	// Done closes when the player is gone. Rooms treat it as a leave.
	Done() <-chan struct{}
}

// ChannelSession queues events on a bounded channel for a reader goroutine
// (the SSH view or the WebSocket write pump). When the reader falls behind,
// the oldest queued event is discarded so the latest snapshot still arrives.
type ChannelSession struct {
	id      SessionID
	queue   chan SessionEvent
	dropped atomic.Uint64

	closed    chan struct{}
	closeOnce sync.Once
}

// NewChannelSession returns a session with room for size queued events.
func NewChannelSession(id SessionID, size int) *ChannelSession {
	if size < 1 {
		size = 64
	}
	return &ChannelSession{
		id:     id,
		queue:  make(chan SessionEvent, size),
		closed: make(chan struct{}),
	}
}

func (s *ChannelSession) ID() SessionID {
	return s.id
}

// Send enqueues evt, evicting the oldest event if the queue is full.
// Events sent after Close are ignored.
func (s *ChannelSession) Send(evt SessionEvent) {
	select {
	case <-s.closed:
		return
	default:
	}

	for attempt := 0; attempt < 2; attempt++ {
		select {
		case s.queue <- evt:
			return
		default:
		}
		select {
		case <-s.queue:
			s.dropped.Add(1)
		default:
		}
	}
	s.dropped.Add(1)
}

// Events is the receive side of the queue.
func (s *ChannelSession) Events() <-chan SessionEvent {
	return s.queue
}

// Dropped counts events discarded because the reader was too slow.
func (s *ChannelSession) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *ChannelSession) Done() <-chan struct{} {
	return s.closed
}

// Close marks the session finished. Safe to call more than once.
func (s *ChannelSession) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
}
