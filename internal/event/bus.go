package event

import (
	"log/slog"
	"sync"
)

// maxFlushRounds bounds cascading dispatch (handlers publishing new events).
const maxFlushRounds = 16

type subscription struct {
	id      uint64
	typ     Type // 0 = all types
	source  uint32
	handler Handler
	active  bool
}

// Bus is the publish/subscribe hub for core notifications.
//
// Immediate bus dispatches inside Publish. Deferred bus queues events until
// Flush, which the session calls as the last step of every tick.
type Bus struct {
	mu       sync.Mutex
	subs     []*subscription
	nextID   uint64
	deferred bool
	queue    []Event
}

// NewBus creates a bus that dispatches synchronously in Publish.
func NewBus() *Bus {
	return &Bus{}
}

// NewDeferredBus creates a bus that queues events until Flush.
func NewDeferredBus() *Bus {
	return &Bus{deferred: true}
}

// Subscribe registers h for events of type t from source (AnySource = all).
func (b *Bus) Subscribe(t Type, source uint32, h Handler) func() {
	return b.add(t, source, h)
}

// SubscribeAll registers h for every event.
func (b *Bus) SubscribeAll(h Handler) func() {
	return b.add(0, AnySource, h)
}

func (b *Bus) add(t Type, source uint32, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &subscription{
		id:      b.nextID,
		typ:     t,
		source:  source,
		handler: h,
		active:  true,
	}
	b.subs = append(b.subs, sub)

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(sub.id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subs {
		if sub.id == id {
			sub.active = false
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish dispatches ev now (immediate bus) or enqueues it (deferred bus).
func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}

	b.mu.Lock()
	if b.deferred {
		b.queue = append(b.queue, ev)
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	b.dispatch(ev)
}

// Flush dispatches all queued events, including events published by
// handlers during the flush. Returns number of dispatched events.
func (b *Bus) Flush() int {
	total := 0
	for round := range maxFlushRounds {
		b.mu.Lock()
		batch := b.queue
		b.queue = nil
		b.mu.Unlock()

		if len(batch) == 0 {
			return total
		}
		for _, ev := range batch {
			b.dispatch(ev)
		}
		total += len(batch)

		if round == maxFlushRounds-1 {
			b.mu.Lock()
			left := len(b.queue)
			b.mu.Unlock()
			if left > 0 {
				slog.Warn("event flush round limit reached, carrying events to next tick",
					"pending", left)
			}
		}
	}
	return total
}

// Pending returns number of queued events (always 0 for immediate bus).
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// SubscriberCount returns number of live subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bus) dispatch(ev Event) {
	b.mu.Lock()
	snapshot := make([]*subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.typ != 0 && sub.typ != ev.Type {
			continue
		}
		if sub.source != AnySource && sub.source != ev.Source {
			continue
		}
		snapshot = append(snapshot, sub)
	}
	b.mu.Unlock()

	for _, sub := range snapshot {
		// Handler may have been removed by an earlier handler in this dispatch.
		b.mu.Lock()
		active := sub.active
		b.mu.Unlock()
		if active {
			sub.handler(ev)
		}
	}
}
