package sheets

import (
	"context"

	"fintrack/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerWriter mirrors store mutations into an external ledger.
	LedgerWriter interface {
		AppendTransaction(ctx context.Context, t core.Transaction) error
		// DeleteTransaction removes the row for id. A missing row is not an error.
		DeleteTransaction(ctx context.Context, id string) error
		WriteBudget(ctx context.Context, b core.Budget) error
	}
)
