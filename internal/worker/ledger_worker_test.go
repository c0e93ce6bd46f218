package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

type fakeLedger struct {
	appended []core.Transaction
	deleted  []string
	budgets  []core.Budget
	err      error
}

func (f *fakeLedger) AppendTransaction(_ context.Context, t core.Transaction) error {
	f.appended = append(f.appended, t)
	return f.err
}

func (f *fakeLedger) DeleteTransaction(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeLedger) WriteBudget(_ context.Context, b core.Budget) error {
	f.budgets = append(f.budgets, b)
	return f.err
}

func TestHandleEvent_Dispatch(t *testing.T) {
	ledger := &fakeLedger{}
	w := NewLedgerWorker(ledger, nil)
	ctx := context.Background()

	tx := core.Transaction{ID: "tx-1", Amount: core.MoneyFromInt(10), Description: "Tea", Type: core.Expense, Category: core.Food}
	require.NoError(t, w.HandleEvent(ctx, amqp.NewTransactionCreatedEvent(tx)))
	require.NoError(t, w.HandleEvent(ctx, amqp.NewTransactionDeletedEvent("tx-1")))
	require.NoError(t, w.HandleEvent(ctx, amqp.NewBudgetsUpdatedEvent(core.DefaultBudget())))

	require.Len(t, ledger.appended, 1)
	assert.Equal(t, "tx-1", ledger.appended[0].ID)
	assert.Equal(t, []string{"tx-1"}, ledger.deleted)
	require.Len(t, ledger.budgets, 1)
	assert.Len(t, ledger.budgets[0], 5)
}

func TestHandleEvent_UnknownTypeIsDiscarded(t *testing.T) {
	w := NewLedgerWorker(&fakeLedger{}, nil)

	err := w.HandleEvent(context.Background(), &amqp.Event{Type: "transaction.updated"})
	assert.ErrorIs(t, err, ErrUnknownEvent)
	assert.ErrorIs(t, err, amqp.ErrDiscard)

	err = w.HandleEvent(context.Background(), &amqp.Event{Type: amqp.TransactionCreated})
	assert.ErrorIs(t, err, amqp.ErrDiscard)
}

func TestHandleEvent_LedgerErrorIsRetryable(t *testing.T) {
	ledger := &fakeLedger{err: errors.New("quota exceeded")}
	w := NewLedgerWorker(ledger, nil)

	err := w.HandleEvent(context.Background(), amqp.NewTransactionDeletedEvent("tx-1"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, amqp.ErrDiscard)
	assert.Contains(t, err.Error(), "quota exceeded")
}
