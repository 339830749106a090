// Package broadcast implements the coarse mutation invalidation signal:
// a monotonically increasing counter with subscriber fan-out. Any
// successful order write raises it; collection views consume it as
// "discard cached state and refetch now". No payload is carried.
package broadcast

import "sync"

// Broadcaster fans a monotonic counter out to subscribers. Delivery is
// non-blocking and coalescing: a subscriber that has not drained its
// channel sees only the latest sequence number, so two quick raises
// cost at most the refetches needed to converge.
type Broadcaster struct {
	mu   sync.Mutex
	seq  uint64
	subs map[*Subscription]struct{}
}

// Subscription is one subscriber's handle on a Broadcaster.
type Subscription struct {
	once sync.Once
	b    *Broadcaster
	ch   chan uint64
}

// New creates an empty Broadcaster.
func New() *Broadcaster {
	return &Broadcaster{subs: make(map[*Subscription]struct{})}
}

// Raise increments the counter and notifies every subscriber. It never
// blocks on a slow subscriber.
func (b *Broadcaster) Raise() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	for sub := range b.subs {
		select {
		case sub.ch <- b.seq:
		default:
			// Channel still holds an undelivered sequence number.
			// Replace it with the newest one.
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- b.seq:
			default:
			}
		}
	}

	return b.seq
}

// Seq returns the current sequence number.
func (b *Broadcaster) Seq() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.seq
}

// Subscribe registers a new subscriber. The returned subscription must
// be closed when no longer consumed.
func (b *Broadcaster) Subscribe() *Subscription {
	sub := &Subscription{b: b, ch: make(chan uint64, 1)}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	return sub
}

// C returns the channel carrying sequence numbers. It is closed by
// Close.
func (s *Subscription) C() <-chan uint64 {
	return s.ch
}

// Close unregisters the subscription and closes its channel.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.b.mu.Lock()
		delete(s.b.subs, s)
		s.b.mu.Unlock()
		close(s.ch)
	})
}
