// Package events carries navigation requests out of the canvas.
//
// The canvas publishes a [QuestSelected] when a node is left-clicked and a
// [JournalRequested] when it is right-clicked. Listeners such as the TUI
// or a journal integration subscribe per event type. Publishing never
// blocks the UI goroutine: a listener whose buffer is full misses the
// event.
package events

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// QuestSelected is published when the user picks a quest in the graph.
type QuestSelected struct {
	ID uint32
}

// JournalRequested asks the host to open the quest journal on a quest.
type JournalRequested struct {
	ID uint32
}

// DefaultBuffer is the channel capacity used by [Subscribe] when the
// requested buffer is not positive.
const DefaultBuffer = 8

// Bus fans events out to typed subscribers. The zero value is not usable;
// create one with [New].
type Bus struct {
	mu        sync.RWMutex
	listeners map[reflect.Type]map[any]func(any) bool
	dropped   atomic.Int64
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{listeners: make(map[reflect.Type]map[any]func(any) bool)}
}

// Subscribe registers a listener for events of type T and returns its
// channel together with a function that unsubscribes and closes it.
func Subscribe[T any](b *Bus, buffer int) (<-chan T, func()) {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	ch := make(chan T, buffer)
	typ := reflect.TypeFor[T]()

	b.mu.Lock()
	subs, ok := b.listeners[typ]
	if !ok {
		subs = make(map[any]func(any) bool)
		b.listeners[typ] = subs
	}
	subs[ch] = func(ev any) bool {
		select {
		case ch <- ev.(T):
			return true
		default:
			return false
		}
	}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners[typ], ch)
			if len(b.listeners[typ]) == 0 {
				delete(b.listeners, typ)
			}
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers ev to every subscriber of its type and returns how many
// received it. Having no subscribers is fine.
func Publish[T any](b *Bus, ev T) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for _, send := range b.listeners[reflect.TypeFor[T]()] {
		if send(ev) {
			delivered++
		} else {
			b.dropped.Add(1)
		}
	}
	return delivered
}

// Dropped returns the number of deliveries skipped because a subscriber's
// buffer was full.
func (b *Bus) Dropped() int64 { return b.dropped.Load() }
