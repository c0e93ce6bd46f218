package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func newRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleTx(id, amount string) core.Transaction {
	m, err := core.ParseMoney(amount)
	if err != nil {
		panic(err)
	}
	return core.Transaction{
		ID:          id,
		Amount:      m,
		Description: "desc " + id,
		Date:        "2025-01-15",
		Type:        core.Expense,
		Category:    core.Food,
	}
}

func TestIsMemoryDSN(t *testing.T) {
	cases := map[string]bool{
		":memory:":                   true,
		"file::memory:?cache=shared": true,
		DefaultDSN:                   true,
		"./data/fintrack.db":         false,
		"file:fintrack.db":           false,
	}
	for dsn, want := range cases {
		assert.Equal(t, want, IsMemoryDSN(dsn), dsn)
	}
}

func TestNewSQLiteRepositoryRejectsDurableDSN(t *testing.T) {
	_, err := NewSQLiteRepository("./fintrack.db")
	assert.True(t, errors.Is(err, ErrDurableDSN))
}

func TestSQLiteTransactions(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, repo.Append(ctx, sampleTx("a", "100.50")))
	require.NoError(t, repo.Append(ctx, sampleTx("b", "20")))
	require.NoError(t, repo.Append(ctx, sampleTx("c", "0.01")))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, "100.5", list[0].Amount.String())
	assert.Equal(t, core.Expense, list[0].Type)
	assert.Equal(t, core.Food, list[0].Category)
	assert.Equal(t, "2025-01-15", list[0].Date)

	removed, err := repo.Remove(ctx, "b")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Remove(ctx, "b")
	require.NoError(t, err)
	assert.False(t, removed)

	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[1].ID)
}

func TestSQLiteAppendRejectsDuplicatesAndInvalid(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, repo.Append(ctx, sampleTx("a", "1")))
	assert.Error(t, repo.Append(ctx, sampleTx("a", "2")))

	bad := sampleTx("b", "1")
	bad.Description = ""
	assert.ErrorIs(t, repo.Append(ctx, bad), core.ErrMissingDescription)
}

func TestSQLiteBudgets(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	budget, err := repo.Get(ctx)
	require.NoError(t, err)
	require.Len(t, budget, 5)
	assert.Equal(t, "5000", budget[core.Food].String())
	assert.Equal(t, "10000", budget[core.Housing].String())

	updated, err := repo.Update(ctx, core.Budget{core.Food: core.MoneyFromInt(6000)})
	require.NoError(t, err)
	assert.Equal(t, "6000", updated[core.Food].String())
	assert.Equal(t, "3000", updated[core.Transport].String())

	_, err = repo.Update(ctx, core.Budget{core.Transport: core.MoneyFromInt(-5)})
	assert.ErrorIs(t, err, core.ErrMalformedRequest)

	budget, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "3000", budget[core.Transport].String())
}

func TestSQLitePing(t *testing.T) {
	assert.NoError(t, newRepo(t).Ping(context.Background()))
}
