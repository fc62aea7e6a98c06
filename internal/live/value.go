// Package live provides the small reactive primitives used to push state from
// stores and controllers to their consumers:
//
//   - Value holds the latest value of some state and fans it out to
//     subscribers. Slow subscribers never block the writer; they simply
//     observe the most recent value when they get around to reading.
//   - Debouncer runs the last of a burst of triggers after a quiet period.
package live

import "sync"

// Value is a concurrency-safe holder for the latest value of type T.
//
// Subscribers receive the current value immediately on Subscribe and then
// every subsequent value, conflated: if a subscriber falls behind, stale
// values are dropped in favour of the newest one.
type Value[T any] struct {
	mu   sync.RWMutex
	v    T
	subs map[uint64]chan T
	next uint64
}

// NewValue returns a Value holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{v: initial, subs: make(map[uint64]chan T)}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.v
}

// Set stores x and notifies subscribers.
func (v *Value[T]) Set(x T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.v = x
	v.publishLocked(x)
}

// Update applies fn to the current value under the write lock, stores the
// result, notifies subscribers and returns it.
func (v *Value[T]) Update(fn func(T) T) T {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.v = fn(v.v)
	v.publishLocked(v.v)
	return v.v
}

// Subscribe returns a channel that yields the current value and every later
// one, and a cancel func that must be called to release the subscription.
// The channel is closed by cancel.
func (v *Value[T]) Subscribe() (<-chan T, func()) {
	ch := make(chan T, 1)

	v.mu.Lock()
	id := v.next
	v.next++
	v.subs[id] = ch
	ch <- v.v
	v.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.subs, id)
			close(ch)
			v.mu.Unlock()
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (v *Value[T]) Subscribers() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.subs)
}

// publishLocked must be called with v.mu held for writing. Every channel has
// a buffer of one and only publishLocked sends on it, so after draining the
// slot the send cannot block.
func (v *Value[T]) publishLocked(x T) {
	for _, ch := range v.subs {
		select {
		case <-ch:
		default:
		}
		ch <- x
	}
}
