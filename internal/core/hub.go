package core

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dkeye/Gather/internal/domain"
)

// DefaultBacklog is the per-subscriber event buffer size.
const DefaultBacklog = 256

var (
	// ErrSlowConsumer marks a subscription failed because events were
	// published faster than the subscriber drained them.
	ErrSlowConsumer = errors.New("subscriber too far behind")
	// ErrHubClosed marks a subscription closed because its room is gone.
	ErrHubClosed = errors.New("hub closed")
)

// Event is a single hub delivery. Exactly one of Msg and Kick is set.
// A non-empty To restricts delivery to the subscription registered under
// that username.
type Event struct {
	Msg  any
	To   domain.Username
	Kick *Kick
}

// Kick is a targeted eviction. The carried Ack resolves once every holder
// of the event has released it; the evicted session releases last, after
// its disconnect cleanup has run.
type Kick struct {
	Token string
	Ack   *Ack
}

// Ack is a one-shot refcounted rendezvous. The publisher holds the base
// reference; every delivered copy adds one. Done is closed when the count
// reaches zero.
type Ack struct {
	refs atomic.Int32
	done chan struct{}
}

func newAck() *Ack {
	a := &Ack{done: make(chan struct{})}
	a.refs.Store(1)
	return a
}

func (a *Ack) add() { a.refs.Add(1) }

// Release drops one reference. The final release resolves Done.
func (a *Ack) Release() {
	if a.refs.Add(-1) == 0 {
		close(a.done)
	}
}

// Done resolves once every reference has been released.
func (a *Ack) Done() <-chan struct{} { return a.done }

// Hub is a bounded per-room pub/sub. Publishing never blocks: a subscriber
// whose buffer is full is failed with ErrSlowConsumer instead of queuing
// without bound or dropping events silently.
type Hub struct {
	mu      sync.Mutex
	backlog int
	subs    map[*Subscription]struct{}
	closed  bool
}

func NewHub(backlog int) *Hub {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	return &Hub{backlog: backlog, subs: make(map[*Subscription]struct{})}
}

// Subscription is one session's view of the room event stream. Events
// arrive in publication order.
type Subscription struct {
	hub      *Hub
	token    string
	username domain.Username
	ch       chan Event
	err      error
}

// C yields events until the subscription is closed or failed; after the
// channel closes, Err reports why.
func (s *Subscription) C() <-chan Event { return s.ch }

// Err is valid once C is closed. It is nil for a plain unsubscribe,
// ErrSlowConsumer for overflow, ErrHubClosed when the room went away.
func (s *Subscription) Err() error { return s.err }

// Close detaches the subscription, releasing any undrained eviction acks.
func (s *Subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	s.hub.detach(s, nil)
}

// Subscribe attaches a new subscriber identified by its member token and
// username (both used for targeted delivery).
func (h *Hub) Subscribe(token string, username domain.Username) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub := &Subscription{
		hub:      h,
		token:    token,
		username: username,
		ch:       make(chan Event, h.backlog),
	}
	if h.closed {
		sub.err = ErrHubClosed
		close(sub.ch)
		return sub
	}
	h.subs[sub] = struct{}{}
	return sub
}

// Publish fans the event out to every matching subscriber without blocking
// the caller. Subscribers that cannot accept it are disconnected.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		if !ev.wants(sub) {
			continue
		}
		select {
		case sub.ch <- ev:
			if ev.Kick != nil {
				ev.Kick.Ack.add()
			}
		default:
			h.detach(sub, ErrSlowConsumer)
		}
	}
	if ev.Kick != nil {
		// base reference: with zero deliveries the ack resolves at once
		ev.Kick.Ack.Release()
	}
}

// Close fails every subscriber with ErrHubClosed. Used when the room is
// deleted or swept.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		h.detach(sub, ErrHubClosed)
	}
}

func (ev Event) wants(sub *Subscription) bool {
	switch {
	case ev.Kick != nil:
		return sub.token == ev.Kick.Token
	case ev.To != "":
		return sub.username == ev.To
	default:
		return true
	}
}

// detach removes the subscription and drains its buffer so that eviction
// acks stuck behind an inattentive reader still resolve. Caller holds h.mu.
// The err write is published to the reader by the channel close.
func (h *Hub) detach(sub *Subscription, err error) {
	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	sub.err = err
	close(sub.ch)
	for ev := range sub.ch {
		if ev.Kick != nil {
			ev.Kick.Ack.Release()
		}
	}
}
