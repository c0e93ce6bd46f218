package backend

import (
	"context"

	"fintrack/internal/store"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// BackendResult contains the stores and an optional cleanup function.
// Budgets is nil when budget support is disabled.
type BackendResult struct {
	Transactions store.TransactionStore
	Budgets      store.BudgetStore
	Cleanup      CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDSN string

	BudgetsEnabled bool
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
