package worker

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	applog "fintrack/internal/log"
	"fintrack/internal/sheets"
)

// ErrUnknownEvent is returned for event types the worker cannot mirror.
// It wraps amqp.ErrDiscard so the consumer drops the message.
var ErrUnknownEvent = fmt.Errorf("%w: unknown event type", amqp.ErrDiscard)

// LedgerWorker mirrors store events into an external ledger.
type LedgerWorker struct {
	ledger sheets.LedgerWriter
	logger *applog.Logger
}

func NewLedgerWorker(ledger sheets.LedgerWriter, logger *applog.Logger) *LedgerWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &LedgerWorker{
		ledger: ledger,
		logger: logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleEvent applies one event to the ledger. It matches amqp.Handler.
func (w *LedgerWorker) HandleEvent(ctx context.Context, e *amqp.Event) error {
	if e == nil {
		return fmt.Errorf("%w: nil event", amqp.ErrDiscard)
	}

	w.logger.InfoContext(ctx, "Processing event",
		applog.FieldEventType, e.Type,
		applog.FieldTransactionID, e.TransactionID)

	var err error
	switch e.Type {
	case amqp.TransactionCreated:
		if e.Transaction == nil {
			return fmt.Errorf("%w: %s without transaction", amqp.ErrDiscard, e.Type)
		}
		err = w.ledger.AppendTransaction(ctx, *e.Transaction)
	case amqp.TransactionDeleted:
		err = w.ledger.DeleteTransaction(ctx, e.TransactionID)
	case amqp.BudgetsUpdated:
		err = w.ledger.WriteBudget(ctx, e.Budget)
	default:
		return fmt.Errorf("%w %q", ErrUnknownEvent, e.Type)
	}
	if err != nil {
		return fmt.Errorf("mirror %s: %w", e.Type, err)
	}

	w.logger.DebugContext(ctx, "Event mirrored",
		applog.FieldEventType, e.Type,
		applog.FieldOperation, applog.OpMirror)
	return nil
}

// Run consumes events until ctx is cancelled.
func (w *LedgerWorker) Run(ctx context.Context, client *amqp.Client) error {
	w.logger.InfoContext(ctx, "Ledger worker started")
	err := client.Consume(ctx, w.HandleEvent)
	if errors.Is(err, context.Canceled) {
		w.logger.InfoContext(ctx, "Ledger worker stopped")
		return nil
	}
	return err
}
