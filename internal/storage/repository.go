package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

// DefaultDSN names a shared in-memory database.
const DefaultDSN = "file:fintrack?mode=memory&cache=shared"

// ErrDurableDSN is returned for DSNs that would write to disk.
var ErrDurableDSN = errors.New("sqlite dsn must point at an in-memory database")

// IsMemoryDSN reports whether dsn opens a database that lives only in memory.
func IsMemoryDSN(dsn string) bool {
	return dsn == ":memory:" ||
		strings.HasPrefix(dsn, "file::memory:") ||
		(strings.HasPrefix(dsn, "file:") && strings.Contains(dsn, "mode=memory"))
}

// SQLiteRepository implements the transaction and budget stores on top of an
// in-memory SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dsn string) (*SQLiteRepository, error) {
	if !IsMemoryDSN(dsn) {
		return nil, ErrDurableDSN
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes
	// every statement.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// List implements store.TransactionStore
func (r *SQLiteRepository) List(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount, description, date, type, category FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t      core.Transaction
			amount string
		)
		if err := rows.Scan(&t.ID, &amount, &t.Description, &t.Date, &t.Type, &t.Category); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Amount, err = core.ParseMoney(amount); err != nil {
			return nil, fmt.Errorf("transaction %s has corrupt amount %q: %w", t.ID, amount, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// Append implements store.TransactionStore
func (r *SQLiteRepository) Append(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, amount, description, date, type, category) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Amount.String(), t.Description, t.Date, string(t.Type), string(t.Category))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"amount", t.Amount.String(),
		"type", t.Type,
		"category", t.Category)
	return nil
}

// Remove implements store.TransactionStore
func (r *SQLiteRepository) Remove(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Get implements store.BudgetStore
func (r *SQLiteRepository) Get(ctx context.Context) (core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT category, amount FROM budgets`)
	if err != nil {
		return nil, fmt.Errorf("get budgets: %w", err)
	}
	defer rows.Close()

	budget := make(core.Budget)
	for rows.Next() {
		var category, amount string
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		limit, err := core.ParseMoney(amount)
		if err != nil {
			return nil, fmt.Errorf("budget %s has corrupt amount %q: %w", category, amount, err)
		}
		budget[core.Category(category)] = limit
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return budget, nil
}

// Update implements store.BudgetStore. All keys are written in one
// transaction.
func (r *SQLiteRepository) Update(ctx context.Context, partial core.Budget) (core.Budget, error) {
	if err := partial.Validate(); err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin budget update: %w", err)
	}
	defer tx.Rollback()

	for category, limit := range partial {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO budgets (category, amount) VALUES (?, ?)
			 ON CONFLICT(category) DO UPDATE SET amount = excluded.amount`,
			string(category), limit.String())
		if err != nil {
			return nil, fmt.Errorf("upsert budget %s: %w", category, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit budget update: %w", err)
	}

	return r.Get(ctx)
}
