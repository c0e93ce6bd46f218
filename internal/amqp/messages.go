package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// EventType names a store mutation.
type EventType string

const (
	TransactionCreated EventType = "transaction.created"
	TransactionDeleted EventType = "transaction.deleted"
	BudgetsUpdated     EventType = "budgets.updated"
)

// ErrInvalidEvent is returned for messages that can never be processed.
var ErrInvalidEvent = errors.New("invalid event")

// Event is published after every successful store mutation.
type Event struct {
	Type          EventType         `json:"type"`
	TransactionID string            `json:"transaction_id,omitempty"`
	Transaction   *core.Transaction `json:"transaction,omitempty"`
	Budget        core.Budget       `json:"budget,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

func NewTransactionCreatedEvent(t core.Transaction) *Event {
	return &Event{
		Type:          TransactionCreated,
		TransactionID: t.ID,
		Transaction:   &t,
		Timestamp:     time.Now().UTC(),
	}
}

func NewTransactionDeletedEvent(id string) *Event {
	return &Event{
		Type:          TransactionDeleted,
		TransactionID: id,
		Timestamp:     time.Now().UTC(),
	}
}

func NewBudgetsUpdatedEvent(b core.Budget) *Event {
	return &Event{
		Type:      BudgetsUpdated,
		Budget:    b.Clone(),
		Timestamp: time.Now().UTC(),
	}
}

// Validate checks that the payload matches the event type.
func (e *Event) Validate() error {
	switch e.Type {
	case TransactionCreated:
		if e.Transaction == nil {
			return fmt.Errorf("%w: %s without transaction", ErrInvalidEvent, e.Type)
		}
	case TransactionDeleted:
		if e.TransactionID == "" {
			return fmt.Errorf("%w: %s without transaction id", ErrInvalidEvent, e.Type)
		}
	case BudgetsUpdated:
		if e.Budget == nil {
			return fmt.Errorf("%w: %s without budget", ErrInvalidEvent, e.Type)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	}
	return nil
}

// ToJSON converts the event to JSON bytes
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes and validates an event.
func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
