package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/store"
)

// Publisher emits events after store mutations.
type Publisher interface {
	Publish(ctx context.Context, e *amqp.Event) error
}

// Options tunes a TransactionService. Zero values pick defaults.
type Options struct {
	Normalizer  *core.Normalizer
	RecentLimit int
	// Cleanup releases the backing stores on Close.
	Cleanup func() error
}

// TransactionService orchestrates transaction and budget operations across
// the stores and the optional event publisher.
type TransactionService struct {
	transactions store.TransactionStore
	budgets      store.BudgetStore
	publisher    Publisher
	normalizer   *core.Normalizer
	recentLimit  int
	cleanup      func() error
	logger       *applog.Logger
	structured   *applog.StructuredLogger
}

// NewTransactionService wires the stores. budgets may be nil to disable budget
// support and publisher may be nil to disable events.
func NewTransactionService(transactions store.TransactionStore, budgets store.BudgetStore, publisher Publisher, logger *applog.Logger, opts Options) *TransactionService {
	if logger == nil {
		logger = applog.Discard()
	}
	if opts.Normalizer == nil {
		opts.Normalizer = core.NewNormalizer()
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = core.DefaultRecentLimit
	}
	logger = logger.WithComponent(applog.ComponentTransactions)

	return &TransactionService{
		transactions: transactions,
		budgets:      budgets,
		publisher:    publisher,
		normalizer:   opts.Normalizer,
		recentLimit:  opts.RecentLimit,
		cleanup:      opts.Cleanup,
		logger:       logger,
		structured:   applog.NewStructuredLogger(logger),
	}
}

// BudgetsEnabled reports whether a budget store is configured.
func (s *TransactionService) BudgetsEnabled() bool {
	return s.budgets != nil
}

// CreateTransaction normalizes in, stores it and publishes a created event.
// Nothing is stored when validation fails.
func (s *TransactionService) CreateTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	t, err := s.normalizer.Normalize(in)
	if err != nil {
		return core.Transaction{}, err
	}

	if err := s.transactions.Append(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.structured.LogTransactionCreated(ctx, t.ID, t.Amount.StringFixed(), string(t.Type), string(t.Category))
	s.publish(ctx, amqp.NewTransactionCreatedEvent(t))
	return t, nil
}

// ListTransactions returns every transaction in insertion order.
func (s *TransactionService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.transactions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs, nil
}

// RecentTransactions returns the newest n transactions, or the configured
// Options.RecentLimit when n is not positive.
func (s *TransactionService) RecentTransactions(ctx context.Context, n int) ([]core.Transaction, error) {
	if n <= 0 {
		n = s.recentLimit
	}
	txs, err := s.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return core.Recent(txs, n), nil
}

// DeleteTransaction removes id, returning core.ErrNotFound when it does not exist.
func (s *TransactionService) DeleteTransaction(ctx context.Context, id string) error {
	removed, err := s.transactions.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if !removed {
		return fmt.Errorf("transaction %q: %w", id, core.ErrNotFound)
	}

	s.logger.InfoContext(ctx, "Transaction deleted",
		applog.FieldTransactionID, id,
		applog.FieldOperation, applog.OpDelete)
	s.publish(ctx, amqp.NewTransactionDeletedEvent(id))
	return nil
}

// Budgets returns the current limits.
func (s *TransactionService) Budgets(ctx context.Context) (core.Budget, error) {
	if s.budgets == nil {
		return nil, core.ErrBudgetsDisabled
	}
	b, err := s.budgets.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get budgets: %w", err)
	}
	return b, nil
}

// UpdateBudgets merges partial into the stored limits. An invalid partial
// leaves the store untouched.
func (s *TransactionService) UpdateBudgets(ctx context.Context, partial core.Budget) (core.Budget, error) {
	if s.budgets == nil {
		return nil, core.ErrBudgetsDisabled
	}
	if err := partial.Validate(); err != nil {
		return nil, err
	}

	b, err := s.budgets.Update(ctx, partial)
	if err != nil {
		return nil, fmt.Errorf("update budgets: %w", err)
	}

	s.logger.InfoContext(ctx, "Budgets updated",
		applog.FieldCount, len(partial),
		applog.FieldOperation, applog.OpUpdate)
	s.publish(ctx, amqp.NewBudgetsUpdatedEvent(b))
	return b, nil
}

// Summary totals income and expenses over every transaction.
func (s *TransactionService) Summary(ctx context.Context) (core.Summary, error) {
	txs, err := s.ListTransactions(ctx)
	if err != nil {
		return core.Summary{}, err
	}
	return core.Summarize(txs), nil
}

func (s *TransactionService) MonthlySeries(ctx context.Context) ([]core.MonthlyTotal, error) {
	txs, err := s.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return core.MonthlySeries(txs), nil
}

func (s *TransactionService) CategoryTotals(ctx context.Context) (map[core.Category]core.Money, error) {
	txs, err := s.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return core.CategoryTotals(txs), nil
}

// BudgetComparison pairs each budgeted category with its actual spending.
func (s *TransactionService) BudgetComparison(ctx context.Context) ([]core.BudgetComparison, error) {
	b, err := s.Budgets(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := s.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return core.CompareBudget(b, txs), nil
}

// ReadinessChecks reports the state of each dependency. A nil error means
// healthy. The event bus entry is present only when a publisher is set.
func (s *TransactionService) ReadinessChecks(ctx context.Context) map[string]error {
	checks := map[string]error{"storage": nil}
	if p, ok := s.transactions.(store.Pinger); ok {
		checks["storage"] = p.Ping(ctx)
	}
	if s.publisher != nil {
		checks["event_bus"] = nil
		if h, ok := s.publisher.(interface{ Healthy() bool }); ok && !h.Healthy() {
			checks["event_bus"] = errors.New("event bus unavailable")
		}
	}
	return checks
}

// publish never fails the caller; the store write already happened.
func (s *TransactionService) publish(ctx context.Context, e *amqp.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event",
			applog.FieldEventType, e.Type,
			applog.FieldTransactionID, e.TransactionID,
			applog.FieldOperation, applog.OpPublish,
			applog.FieldError, err)
	}
}

// Close releases the publisher and the stores.
func (s *TransactionService) Close() error {
	var errs []error

	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	if s.cleanup != nil {
		if err := s.cleanup(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %w", errors.Join(errs...))
	}
	return nil
}
