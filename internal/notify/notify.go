// Package notify publishes market lifecycle and trade events to interested
// observers. Emission is best-effort and never blocks or fails the operation
// that produced the event.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joefazee/marketcore/internal/logger"
)

// EventType identifies what happened to a market.
type EventType string

const (
	EventMarketCreated    EventType = "market.created"
	EventMarketApproved   EventType = "market.approved"
	EventMarketActivated  EventType = "market.activated"
	EventSharesBought     EventType = "market.shares_bought"
	EventSharesSold       EventType = "market.shares_sold"
	EventResolutionMoved  EventType = "market.resolution_proposed"
	EventDisputeOpened    EventType = "market.dispute_opened"
	EventMarketFinalized  EventType = "market.finalized"
	EventProtocolPaused   EventType = "protocol.paused"
	EventProtocolResumed  EventType = "protocol.resumed"
)

// Event is a snapshot of a state change. Quantity fields are raw fixed-point
// values; consumers that need human units convert at their own boundary.
type Event struct {
	Type      EventType
	MarketID  uuid.UUID
	Actor     uuid.UUID
	FromState string
	ToState   string
	Shares    uint64
	Amount    uint64
	Outcome   string
	At        time.Time
}

// Notifier receives events as they are produced.
type Notifier interface {
	Notify(event Event)
}

// LogNotifier writes every event to the structured log.
type LogNotifier struct {
	log logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(event Event) {
	fields := logger.Fields{
		"market_id": event.MarketID.String(),
		"at":        event.At,
	}
	if event.Actor != uuid.Nil {
		fields["actor"] = event.Actor.String()
	}
	if event.FromState != "" {
		fields["from_state"] = event.FromState
		fields["to_state"] = event.ToState
	}
	if event.Shares != 0 {
		fields["shares"] = event.Shares
	}
	if event.Amount != 0 {
		fields["amount"] = event.Amount
	}
	if event.Outcome != "" {
		fields["outcome"] = event.Outcome
	}
	n.log.Info(string(event.Type), fields)
}

// Recorder keeps emitted events in memory. Useful in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Multi fans an event out to several notifiers in order.
type Multi []Notifier

func (m Multi) Notify(event Event) {
	for _, n := range m {
		n.Notify(event)
	}
}
