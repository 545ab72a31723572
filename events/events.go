package events

import (
	"context"
	"sync"

	"stakehouse/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange  EventType = "balance_change"
	EventTypeGameOpened     EventType = "game_opened"
	EventTypeGameCompleted  EventType = "game_completed"
	EventTypeGameMutualQuit EventType = "game_mutual_quit"
	EventTypeBonusGranted   EventType = "bonus_granted"
	EventTypeBonusClaimed   EventType = "bonus_claimed"
	EventTypeTokenSwept     EventType = "token_swept"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a committed wallet balance change
type BalanceChangeEvent struct {
	Address      string           `json:"address"`
	OldBalance   int64            `json:"old_balance"`
	NewBalance   int64            `json:"new_balance"`
	ChangeAmount int64            `json:"change_amount"`
	EntryType    models.EntryType `json:"entry_type"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// GameOpenedEvent represents a game opened with both stakes locked
type GameOpenedEvent struct {
	GameID     string `json:"game_id"`
	Player1    string `json:"player1"`
	Player2    string `json:"player2"`
	Deposit    int64  `json:"deposit"`
	FeeRateBps int32  `json:"fee_rate_bps"`
}

func (e GameOpenedEvent) Type() EventType {
	return EventTypeGameOpened
}

// GameCompletedEvent represents a game resolved with a declared winner
type GameCompletedEvent struct {
	GameID string `json:"game_id"`
	Winner string `json:"winner"`
	Payout int64  `json:"payout"`
	Fee    int64  `json:"fee"`
}

func (e GameCompletedEvent) Type() EventType {
	return EventTypeGameCompleted
}

// GameMutualQuitEvent represents a game cancelled with both stakes returned
type GameMutualQuitEvent struct {
	GameID  string `json:"game_id"`
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
	Deposit int64  `json:"deposit"`
}

func (e GameMutualQuitEvent) Type() EventType {
	return EventTypeGameMutualQuit
}

// BonusGrantedEvent represents an owner bonus grant batch
type BonusGrantedEvent struct {
	Addresses []string `json:"addresses"`
	Amounts   []int64  `json:"amounts"`
}

func (e BonusGrantedEvent) Type() EventType {
	return EventTypeBonusGranted
}

// BonusClaimedEvent represents an accrued bonus converted to tokens
type BonusClaimedEvent struct {
	Address string `json:"address"`
	Amount  int64  `json:"amount"`
}

func (e BonusClaimedEvent) Type() EventType {
	return EventTypeBonusClaimed
}

// TokenSweptEvent represents an owner sweep of the custody token balance
type TokenSweptEvent struct {
	Owner  string `json:"owner"`
	Amount int64  `json:"amount"`
}

func (e TokenSweptEvent) Type() EventType {
	return EventTypeTokenSwept
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit publishes an event to all registered handlers. Handlers run
// asynchronously so a slow subscriber never blocks the committing operation.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}

// TransactionalBus holds pending events coupled to a unit of work. Events
// are flushed to the underlying bus only after the DB commit, and discarded
// on rollback, so subscribers never observe uncommitted state.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

// NewTransactionalBus creates a transactional wrapper over the given bus.
func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish stashes an event until Flush.
func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events; called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) {
	// Events outlive the transaction context.
	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops all pending events; called after rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
