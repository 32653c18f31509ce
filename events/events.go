package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeWalletChange   EventType = "wallet_change"
	EventTypeMemberCreated  EventType = "member_created"
	EventTypeWaifuPurchased EventType = "waifu_purchased"
	EventTypeWaifuSold      EventType = "waifu_sold"
	EventTypeWaifuTraded    EventType = "waifu_traded"
	EventTypeRewardClaimed  EventType = "reward_claimed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// WalletChangeEvent represents a wallet balance change that occurred
type WalletChangeEvent struct {
	MemberID     int64
	OldBalance   int64
	NewBalance   int64
	ChangeAmount int64
	Reason       string
}

func (e WalletChangeEvent) Type() EventType {
	return EventTypeWalletChange
}

// MemberCreatedEvent represents a new member profile creation
type MemberCreatedEvent struct {
	MemberID  int64
	DiscordID int64
}

func (e MemberCreatedEvent) Type() EventType {
	return EventTypeMemberCreated
}

// WaifuPurchasedEvent represents a completed waifu purchase
type WaifuPurchasedEvent struct {
	GuildID  int64
	MemberID int64
	WaifuID  int64
	Price    int64
}

func (e WaifuPurchasedEvent) Type() EventType {
	return EventTypeWaifuPurchased
}

// WaifuSoldEvent represents a completed waifu sale
type WaifuSoldEvent struct {
	GuildID  int64
	MemberID int64
	WaifuID  int64
	Refund   int64
}

func (e WaifuSoldEvent) Type() EventType {
	return EventTypeWaifuSold
}

// WaifuTradedEvent represents a completed trade between two members
type WaifuTradedEvent struct {
	GuildID    int64
	SenderID   int64
	ReceiverID int64
	WaifuIDs   []int64
	Price      int64
}

func (e WaifuTradedEvent) Type() EventType {
	return EventTypeWaifuTraded
}

// RewardClaimedEvent represents a claimed timed reward
type RewardClaimedEvent struct {
	MemberID int64
	Kind     string
	Amount   int64
}

func (e RewardClaimedEvent) Type() EventType {
	return EventTypeRewardClaimed
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

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds pending events coupled to a unit of work and
// flushes them to the underlying bus after the DB commit.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush is called after a successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events to main event bus")

	// Events outlive the transaction context that produced them.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard is called after a DB rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
