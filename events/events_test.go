package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBus_EmitReachesSubscribers(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	var received []Event
	done := make(chan struct{})

	bus.Subscribe(EventTypeGameCompleted, func(ctx context.Context, e Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
		close(done)
	})

	bus.Emit(context.Background(), GameCompletedEvent{
		GameID: "g1",
		Winner: "0xaaa",
		Payout: 190000,
		Fee:    10000,
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, received, 1)
	completed := received[0].(GameCompletedEvent)
	assert.Equal(t, "g1", completed.GameID)
	assert.Equal(t, int64(190000), completed.Payout)
}

func TestBus_EmitSkipsOtherEventTypes(t *testing.T) {
	bus := NewBus()

	invoked := make(chan struct{}, 1)
	bus.Subscribe(EventTypeBonusClaimed, func(ctx context.Context, e Event) {
		invoked <- struct{}{}
	})

	bus.Emit(context.Background(), GameOpenedEvent{GameID: "g1"})

	select {
	case <-invoked:
		t.Fatal("handler invoked for wrong event type")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTransactionalBus_FlushAfterCommit(t *testing.T) {
	bus := NewBus()
	done := make(chan Event, 2)
	bus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, e Event) {
		done <- e
	})

	txBus := NewTransactionalBus(bus)
	txBus.Publish(BalanceChangeEvent{Address: "0xaaa", ChangeAmount: 500})

	// Nothing emitted until flush
	select {
	case <-done:
		t.Fatal("event emitted before flush")
	case <-time.After(50 * time.Millisecond):
	}

	txBus.Flush(context.Background())

	select {
	case e := <-done:
		assert.Equal(t, "0xaaa", e.(BalanceChangeEvent).Address)
	case <-time.After(time.Second):
		t.Fatal("event not emitted after flush")
	}
}

func TestTransactionalBus_DiscardDropsPending(t *testing.T) {
	bus := NewBus()
	done := make(chan Event, 1)
	bus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, e Event) {
		done <- e
	})

	txBus := NewTransactionalBus(bus)
	txBus.Publish(BalanceChangeEvent{Address: "0xaaa"})
	txBus.Discard()
	txBus.Flush(context.Background())

	select {
	case <-done:
		t.Fatal("discarded event was emitted")
	case <-time.After(50 * time.Millisecond):
	}
}
