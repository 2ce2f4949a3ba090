// Package store holds the live, in-process copies of catalog and cart
// documents that back the streaming endpoints.
//
// A Store is owned by a single goroutine. Every write carries the document's
// server-side update timestamp and is accepted only when it is not older than
// what the store already holds, so a late push can never roll back a newer
// write. Deletes leave a tombstone for the same reason.
package store

import "sync"

const defaultBufferSize = 16

type Event[V any] struct {
	Key       string
	Value     V
	Deleted   bool
	Timestamp int64
}

type entry[V any] struct {
	value     V
	timestamp int64
	deleted   bool
}

type Store[V any] struct {
	commands  chan func()
	done      chan struct{}
	closeOnce sync.Once

	entries map[string]entry[V]
	subs    map[*Subscription[V]]struct{}
}

type Subscription[V any] struct {
	key       string
	events    chan Event[V]
	store     *Store[V]
	closeOnce sync.Once
}

func CreateStore[V any]() *Store[V] {
	s := &Store[V]{
		commands: make(chan func()),
		done:     make(chan struct{}),
		entries:  make(map[string]entry[V]),
		subs:     make(map[*Subscription[V]]struct{}),
	}

	go s.run()

	return s
}

func (s *Store[V]) run() {
	for {
		select {
		case fn := <-s.commands:
			fn()
		case <-s.done:
			for sub := range s.subs {
				close(sub.events)
				delete(s.subs, sub)
			}
			return
		}
	}
}

// do runs fn on the owning goroutine and waits for it to finish. It reports
// false when the store has been closed.
func (s *Store[V]) do(fn func()) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	finished := make(chan struct{})
	select {
	case s.commands <- func() { fn(); close(finished) }:
		<-finished
		return true
	case <-s.done:
		return false
	}
}

// Apply stores value under key unless the store already holds a newer write.
// Equal timestamps are accepted.
func (s *Store[V]) Apply(key string, value V, timestamp int64) (accepted bool) {
	s.do(func() {
		if current, ok := s.entries[key]; ok && timestamp < current.timestamp {
			return
		}

		s.entries[key] = entry[V]{value: value, timestamp: timestamp}
		s.publish(Event[V]{Key: key, Value: value, Timestamp: timestamp})
		accepted = true
	})

	return accepted
}

// Delete replaces key with a tombstone stamped at timestamp.
func (s *Store[V]) Delete(key string, timestamp int64) (accepted bool) {
	s.do(func() {
		if current, ok := s.entries[key]; ok && timestamp < current.timestamp {
			return
		}

		s.entries[key] = entry[V]{timestamp: timestamp, deleted: true}
		s.publish(Event[V]{Key: key, Deleted: true, Timestamp: timestamp})
		accepted = true
	})

	return accepted
}

// Reconcile applies a full listing taken at asOf. Keys that are missing from
// the listing and have not been written since asOf are deleted.
func (s *Store[V]) Reconcile(values map[string]V, timestamps map[string]int64, asOf int64) {
	for key, value := range values {
		s.Apply(key, value, timestamps[key])
	}

	var stale []string
	s.do(func() {
		for key, e := range s.entries {
			if _, ok := values[key]; ok || e.deleted {
				continue
			}
			if e.timestamp < asOf {
				stale = append(stale, key)
			}
		}
	})

	for _, key := range stale {
		s.Delete(key, asOf)
	}
}

func (s *Store[V]) Get(key string) (value V, ok bool) {
	s.do(func() {
		e, found := s.entries[key]
		if found && !e.deleted {
			value, ok = e.value, true
		}
	})

	return value, ok
}

func (s *Store[V]) List() []V {
	var values []V
	s.do(func() {
		for _, e := range s.entries {
			if !e.deleted {
				values = append(values, e.value)
			}
		}
	})

	return values
}

// Subscribe returns a handle that receives every accepted change to key, or
// to all keys when key is empty. The handle must be closed by the caller.
func (s *Store[V]) Subscribe(key string) *Subscription[V] {
	sub := &Subscription[V]{
		key:    key,
		events: make(chan Event[V], defaultBufferSize),
		store:  s,
	}

	if !s.do(func() { s.subs[sub] = struct{}{} }) {
		close(sub.events)
	}

	return sub
}

// publish never blocks the owner. When a subscriber's buffer is full the oldest
// pending event is dropped so the newest one is always delivered.
func (s *Store[V]) publish(event Event[V]) {
	for sub := range s.subs {
		if sub.key != "" && sub.key != event.Key {
			continue
		}

		select {
		case sub.events <- event:
		default:
			select {
			case <-sub.events:
			default:
			}
			select {
			case sub.events <- event:
			default:
			}
		}
	}
}

func (s *Store[V]) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (sub *Subscription[V]) Events() <-chan Event[V] {
	return sub.events
}

// Close releases the subscription. It is safe to call more than once.
func (sub *Subscription[V]) Close() {
	sub.closeOnce.Do(func() {
		sub.store.do(func() {
			if _, ok := sub.store.subs[sub]; ok {
				delete(sub.store.subs, sub)
				close(sub.events)
			}
		})
	})
}
