package backend

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/store/memory"
	"fintrack/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(_ context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend",
		"dsn", config.SQLiteDSN,
		"budgets_enabled", config.BudgetsEnabled)

	result := &BackendResult{
		Transactions: repo,
		Cleanup:      repo.Close,
	}
	if config.BudgetsEnabled {
		result.Budgets = repo
	}
	return result, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	s := memory.New(core.DefaultBudget())

	f.logger.Info("Initialized memory backend", "budgets_enabled", config.BudgetsEnabled)

	result := &BackendResult{Transactions: s}
	if config.BudgetsEnabled {
		result.Budgets = s
	}
	return result, nil
}
