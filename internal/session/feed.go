package session

import (
	"sync"

	"github.com/vovakirdan/tile2048/internal/games/t2048"
)

// EventKind identifies what produced an Event.
type EventKind string

const (
	EventSnapshot EventKind = "snapshot" // initial state sent on subscribe
	EventMove     EventKind = "move"
	EventRestart  EventKind = "restart"
	EventClosed   EventKind = "closed" // game deleted or evicted
)

// Event is one immutable state update for a game.
type Event struct {
	Kind   EventKind        `json:"kind"`
	GameID string           `json:"game_id"`
	Result t2048.MoveResult `json:"result"`
}

// DefaultBufferSize is the per-subscriber event buffer.
const DefaultBufferSize = 64

// Subscription receives events for one game over a buffered channel.
// When the buffer is full the oldest event is dropped, so a slow reader
// never blocks a move.
type Subscription struct {
	gameID   string
	events   chan Event
	done     chan struct{}
	doneOnce sync.Once
}

func newSubscription(gameID string, bufferSize int) *Subscription {
	if bufferSize < 1 {
		bufferSize = DefaultBufferSize
	}
	return &Subscription{
		gameID: gameID,
		events: make(chan Event, bufferSize),
		done:   make(chan struct{}),
	}
}

// GameID returns the game this subscription follows.
func (s *Subscription) GameID() string {
	return s.gameID
}

// Send delivers an event without blocking.
// If the buffer is full, the oldest event is dropped.
func (s *Subscription) Send(evt Event) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.events <- evt:
	default:
		// Buffer full, drop oldest and retry
		select {
		case <-s.events:
		default:
		}
		select {
		case s.events <- evt:
		default:
		}
	}
}

// Events returns the channel to receive events from.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Done returns a channel closed when the subscription ends.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close ends the subscription. Safe to call multiple times.
func (s *Subscription) Close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

// Feed fans events out to the subscribers of each game.
// Safe for concurrent use.
type Feed struct {
	mu         sync.RWMutex
	subs       map[string]map[*Subscription]struct{}
	bufferSize int
}

// NewFeed creates a feed whose subscriptions buffer bufferSize events.
func NewFeed(bufferSize int) *Feed {
	return &Feed{
		subs:       make(map[string]map[*Subscription]struct{}),
		bufferSize: bufferSize,
	}
}

// Subscribe registers a new subscriber for gameID.
func (f *Feed) Subscribe(gameID string) *Subscription {
	sub := newSubscription(gameID, f.bufferSize)

	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.subs[gameID]
	if !ok {
		set = make(map[*Subscription]struct{})
		f.subs[gameID] = set
	}
	set[sub] = struct{}{}
	return sub
}

// Unsubscribe removes and closes a subscription.
func (f *Feed) Unsubscribe(sub *Subscription) {
	f.mu.Lock()
	if set, ok := f.subs[sub.gameID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(f.subs, sub.gameID)
		}
	}
	f.mu.Unlock()
	sub.Close()
}

// Publish delivers evt to every subscriber of its game.
func (f *Feed) Publish(evt Event) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for sub := range f.subs[evt.GameID] {
		sub.Send(evt)
	}
}

// CloseGame sends a final closed event and ends every subscription of gameID.
func (f *Feed) CloseGame(gameID string, last t2048.MoveResult) {
	f.mu.Lock()
	set := f.subs[gameID]
	delete(f.subs, gameID)
	f.mu.Unlock()

	for sub := range set {
		sub.Send(Event{Kind: EventClosed, GameID: gameID, Result: last})
		sub.Close()
	}
}

// Count returns the number of subscribers for gameID.
func (f *Feed) Count(gameID string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs[gameID])
}
