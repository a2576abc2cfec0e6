package eventbus

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startBus(t *testing.T, bus *EventBus) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go bus.Start(ctx)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within 1s")
}

func TestEventBus_DeliversToAllSubscribers(t *testing.T) {
	bus := New(8)
	startBus(t, bus)

	var a, b atomic.Int32
	bus.SubscribeRemindersRefreshed(func(RemindersRefreshedPayload) { a.Add(1) })
	bus.SubscribeRemindersRefreshed(func(RemindersRefreshedPayload) { b.Add(1) })

	bus.PublishRemindersRefreshed(RemindersRefreshedPayload{})

	waitFor(t, func() bool { return a.Load() == 1 && b.Load() == 1 })
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := New(8)
	startBus(t, bus)

	var n atomic.Int32
	unsub := bus.SubscribeInputFocus(func(InputFocusPayload) { n.Add(1) })

	bus.PublishInputFocus(InputFocusPayload{})
	waitFor(t, func() bool { return n.Load() == 1 })

	unsub()
	bus.PublishInputFocus(InputFocusPayload{})

	// Give the dispatcher a moment; the count must stay at 1.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), n.Load())
}

func TestEventBus_DropsWhenBufferFull(t *testing.T) {
	bus := New(1) // never started, so the buffer fills after one event

	var dropped atomic.Int32
	bus.OnDrop(func(Event, any) { dropped.Add(1) })

	bus.PublishRemindersRefreshed(RemindersRefreshedPayload{})
	bus.PublishRemindersRefreshed(RemindersRefreshedPayload{})

	assert.Equal(t, int32(1), dropped.Load())
}

func TestEventBus_RecoversSubscriberPanic(t *testing.T) {
	bus := New(8)
	startBus(t, bus)

	var panicked atomic.Int32
	var delivered atomic.Int32
	bus.OnPanic(func(Event, any, any) { panicked.Add(1) })

	bus.SubscribeNoticePublished(func(NoticePublishedPayload) { panic("boom") })
	bus.SubscribeNoticePublished(func(NoticePublishedPayload) { delivered.Add(1) })

	bus.PublishNoticePublished(NoticePublishedPayload{Message: "hi"})

	waitFor(t, func() bool { return panicked.Load() == 1 && delivered.Load() == 1 })
}

func TestFocusRelay_SuppressesOwnEcho(t *testing.T) {
	bus := New(8)
	startBus(t, bus)

	origin := NewFocusRelay(bus)
	other := NewFocusRelay(bus)

	var mu sync.Mutex
	var originGot, otherGot []*int64

	origin.Subscribe(func(p ReminderFocusedPayload) {
		mu.Lock()
		originGot = append(originGot, p.ID)
		mu.Unlock()
	})
	other.Subscribe(func(p ReminderFocusedPayload) {
		mu.Lock()
		otherGot = append(otherGot, p.ID)
		mu.Unlock()
	})

	id := int64(7)
	origin.Emit(&id)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(otherGot) == 1
	})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, otherGot, 1)
	assert.Equal(t, id, *otherGot[0])
	// The origin's own subscriber never sees the echo.
	assert.Empty(t, originGot)
}

func TestFocusRelay_ReceivesAfterEchoConsumed(t *testing.T) {
	bus := New(8)
	startBus(t, bus)

	relay := NewFocusRelay(bus)

	var n atomic.Int32
	relay.Subscribe(func(ReminderFocusedPayload) { n.Add(1) })

	relay.Emit(nil) // suppressed
	bus.PublishReminderFocused(ReminderFocusedPayload{})

	waitFor(t, func() bool { return n.Load() == 1 })
}
