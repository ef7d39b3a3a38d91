// Package eventbus broadcasts Player events to an arbitrary number of
// subscribers (spec §4.7/§9 "Event coroutines"), each with its own
// unbounded queue so a slow subscriber never slows down the player.
package eventbus

import (
	"time"

	"github.com/DJ-Laser/homeslashmusic/internal/source"
)

// EventKind tags the six occurrences the Player reports (spec §3).
type EventKind int

const (
	PlaybackStateChanged EventKind = iota
	LoopModeChanged
	ShuffleChanged
	VolumeChanged
	Seeked
	CurrentTrackChanged
)

// Event is a tagged occurrence fanned out to every subscriber.
type Event struct {
	Kind          EventKind
	PlaybackState source.PlaybackState
	LoopMode      source.LoopMode
	Shuffle       bool
	Volume        float64
	Position      time.Duration
}

// Bus fans Events out to subscribers. The zero value is not usable; build
// one with New.
type Bus struct {
	subscribe   chan *subscriber
	unsubscribe chan *subscriber
	publish     chan Event
	done        chan struct{}
}

type subscriber struct {
	queue *unboundedQueue
}

// New starts the bus's dispatch goroutine and returns it ready to use.
func New() *Bus {
	b := &Bus{
		subscribe:   make(chan *subscriber),
		unsubscribe: make(chan *subscriber),
		publish:     make(chan Event),
		done:        make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Bus) run() {
	subs := make(map[*subscriber]struct{})
	for {
		select {
		case s := <-b.subscribe:
			subs[s] = struct{}{}
		case s := <-b.unsubscribe:
			delete(subs, s)
			s.queue.close()
		case ev := <-b.publish:
			for s := range subs {
				if !s.queue.push(ev) {
					// The subscriber's receiving side is gone; drop it
					// lazily rather than requiring an explicit unsubscribe.
					delete(subs, s)
				}
			}
		case <-b.done:
			for s := range subs {
				s.queue.close()
			}
			return
		}
	}
}

// Subscription is a live subscriber's receive handle.
type Subscription struct {
	bus *Bus
	sub *subscriber
}

// Subscribe registers a new subscriber and returns a Subscription whose
// Events channel receives every event published from this point on, in
// order, with no bound on how far the subscriber may lag.
func (b *Bus) Subscribe() *Subscription {
	s := &subscriber{queue: newUnboundedQueue()}
	b.subscribe <- s
	return &Subscription{bus: b, sub: s}
}

// Events returns the channel to receive published events from.
func (s *Subscription) Events() <-chan Event {
	return s.sub.queue.out
}

// Close unsubscribes and releases the subscription's queue goroutine.
func (s *Subscription) Close() {
	select {
	case s.bus.unsubscribe <- s.sub:
	case <-s.bus.done:
	}
}

// Publish fans ev out to every live subscriber.
func (b *Bus) Publish(ev Event) {
	select {
	case b.publish <- ev:
	case <-b.done:
	}
}

// Close stops the bus and every subscriber's queue goroutine.
func (b *Bus) Close() {
	close(b.done)
}
