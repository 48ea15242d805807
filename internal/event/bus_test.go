package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_ImmediateDispatch(t *testing.T) {
	bus := NewBus()

	var got []Event
	bus.Subscribe(TypeHealthChanged, 7, func(ev Event) {
		got = append(got, ev)
	})

	bus.Publish(Event{Type: TypeHealthChanged, Source: 7, Current: 5, Max: 10})
	bus.Publish(Event{Type: TypeHealthChanged, Source: 8, Current: 1, Max: 10})
	bus.Publish(Event{Type: TypeDied, Source: 7})

	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].Current)
	assert.Equal(t, 10, got[0].Max)
}

func TestBus_AnySource(t *testing.T) {
	bus := NewBus()

	count := 0
	bus.Subscribe(TypeDied, AnySource, func(Event) { count++ })

	bus.Publish(Event{Type: TypeDied, Source: 1})
	bus.Publish(Event{Type: TypeDied, Source: 2})

	assert.Equal(t, 2, count)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	count := 0
	unsubscribe := bus.Subscribe(TypeDied, AnySource, func(Event) { count++ })
	assert.Equal(t, 1, bus.SubscriberCount())

	unsubscribe()
	unsubscribe() // повторный вызов безопасен

	bus.Publish(Event{Type: TypeDied, Source: 1})
	assert.Equal(t, 0, count)
	assert.Equal(t, 0, bus.SubscriberCount())
}

func TestBus_UnsubscribeDuringDispatch(t *testing.T) {
	bus := NewBus()

	secondCalled := false
	var unsubscribeSecond func()
	bus.Subscribe(TypeDied, AnySource, func(Event) { unsubscribeSecond() })
	unsubscribeSecond = bus.Subscribe(TypeDied, AnySource, func(Event) { secondCalled = true })

	bus.Publish(Event{Type: TypeDied, Source: 1})
	assert.False(t, secondCalled, "handler removed mid-dispatch must not run")
}

func TestBus_DeferredQueuesUntilFlush(t *testing.T) {
	bus := NewDeferredBus()

	var got []Type
	bus.SubscribeAll(func(ev Event) { got = append(got, ev.Type) })

	bus.Publish(Event{Type: TypeHealthChanged, Source: 1})
	bus.Publish(Event{Type: TypeDied, Source: 1})

	assert.Empty(t, got)
	assert.Equal(t, 2, bus.Pending())

	n := bus.Flush()
	assert.Equal(t, 2, n)
	assert.Equal(t, []Type{TypeHealthChanged, TypeDied}, got)
	assert.Equal(t, 0, bus.Pending())
}

func TestBus_FlushDispatchesCascade(t *testing.T) {
	bus := NewDeferredBus()

	var got []Type
	bus.Subscribe(TypeDied, AnySource, func(ev Event) {
		bus.Publish(Event{Type: TypeLivesChanged, Source: ev.Source, Value: 2})
	})
	bus.Subscribe(TypeLivesChanged, AnySource, func(ev Event) { got = append(got, ev.Type) })

	bus.Publish(Event{Type: TypeDied, Source: 1})
	bus.Flush()

	assert.Equal(t, []Type{TypeLivesChanged}, got)
}

func TestBus_NilPublishIsNoop(t *testing.T) {
	var bus *Bus
	assert.NotPanics(t, func() {
		bus.Publish(Event{Type: TypeDied})
	})
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "hit_moment", TypeHitMoment.String())
	assert.Equal(t, "lives_changed", TypeLivesChanged.String())
	assert.Equal(t, "unknown", Type(200).String())
}
