// Package store defines the persistence ports used by the service layer.
package store

import (
	"context"

	"fintrack/internal/core"
)

type (
	// TransactionStore holds transactions in insertion order.
	TransactionStore interface {
		List(ctx context.Context) ([]core.Transaction, error)
		Append(ctx context.Context, t core.Transaction) error
		// Remove reports whether a transaction with id existed.
		Remove(ctx context.Context, id string) (bool, error)
	}

	// BudgetStore holds one limit per category.
	BudgetStore interface {
		Get(ctx context.Context) (core.Budget, error)
		// Update merges partial into the stored budget and returns the result.
		Update(ctx context.Context, partial core.Budget) (core.Budget, error)
	}

	// Pinger is implemented by stores that can report reachability.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
