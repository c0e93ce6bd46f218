package core

import (
	"testing"
)

func tx(id, amount, date string, typ TransactionType, cat Category) Transaction {
	m, err := ParseMoney(amount)
	if err != nil {
		panic(err)
	}
	return Transaction{ID: id, Amount: m, Description: id, Date: date, Type: typ, Category: cat}
}

func sample() []Transaction {
	return []Transaction{
		tx("a", "100", "2025-01-05", Expense, Food),
		tx("b", "200", "2025-01-10", Expense, Food),
		tx("c", "50", "2025-01-20", Expense, Food),
		tx("d", "1000", "2025-01-01", Income, Other),
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample())
	if s.Income.String() != "1000" || s.Expenses.String() != "350" || s.Balance.String() != "650" {
		t.Fatalf("unexpected summary %+v", s)
	}

	empty := Summarize(nil)
	if !empty.Income.IsZero() || !empty.Expenses.IsZero() || !empty.Balance.IsZero() {
		t.Fatalf("empty summary should be zero, got %+v", empty)
	}

	negative := Summarize([]Transaction{tx("x", "10", "2025-01-01", Expense, Food)})
	if negative.Balance.String() != "-10" {
		t.Fatalf("balance may be negative, got %s", negative.Balance)
	}
}

func TestCategoryTotals(t *testing.T) {
	totals := CategoryTotals(sample())
	if len(totals) != 1 {
		t.Fatalf("expected only food, got %v", totals)
	}
	if totals[Food].String() != "350" {
		t.Fatalf("food total: %s", totals[Food])
	}
	if _, ok := totals[Other]; ok {
		t.Fatalf("income must not be counted")
	}
}

func TestMonthlySeriesFirstSeenOrder(t *testing.T) {
	txs := []Transaction{
		tx("feb", "10", "2025-02-03", Expense, Food),
		tx("jan", "20", "2025-01-15", Income, Other),
		tx("feb2", "5", "2025-02-20T10:00:00.000Z", Income, Other),
	}
	series := MonthlySeries(txs)
	if len(series) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(series))
	}
	if series[0].Label != "Feb 2025" || series[1].Label != "Jan 2025" {
		t.Fatalf("groups should follow first occurrence, got %q, %q", series[0].Label, series[1].Label)
	}
	if series[0].Expenses.String() != "10" || series[0].Income.String() != "5" {
		t.Fatalf("feb totals: %+v", series[0])
	}
	if series[1].Year != 2025 || series[1].Month != 1 || series[1].Income.String() != "20" {
		t.Fatalf("jan totals: %+v", series[1])
	}
}

func TestMonthlySeriesInvalidDate(t *testing.T) {
	series := MonthlySeries([]Transaction{
		tx("x", "10", "yesterday", Expense, Food),
		tx("y", "5", "not a date", Expense, Food),
	})
	if len(series) != 1 || series[0].Label != InvalidDateLabel {
		t.Fatalf("expected a single invalid-date group, got %+v", series)
	}
	if series[0].Expenses.String() != "15" {
		t.Fatalf("invalid-date total: %s", series[0].Expenses)
	}
}

func TestCompareBudget(t *testing.T) {
	cmp := CompareBudget(DefaultBudget(), sample())
	if len(cmp) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(cmp))
	}
	for i, c := range Categories() {
		if cmp[i].Category != c {
			t.Fatalf("row %d: expected %s, got %s", i, c, cmp[i].Category)
		}
	}
	if cmp[0].Actual.String() != "350" || cmp[0].Remaining.String() != "4650" {
		t.Fatalf("food row: %+v", cmp[0])
	}
	if !cmp[1].Actual.IsZero() {
		t.Fatalf("transport should have no spending: %+v", cmp[1])
	}

	partial := CompareBudget(Budget{Housing: MoneyFromInt(1)}, sample())
	if len(partial) != 1 || partial[0].Category != Housing {
		t.Fatalf("only budgeted categories are listed, got %+v", partial)
	}
}

func TestRecent(t *testing.T) {
	txs := []Transaction{
		tx("1", "1", "2025-01-01", Expense, Food),
		tx("bad", "1", "garbage", Expense, Food),
		tx("2", "1", "2025-03-01", Expense, Food),
		tx("3", "1", "2025-02-01T12:00:00Z", Expense, Food),
		tx("4", "1", "2025-02-01T12:00:00Z", Expense, Food),
		tx("5", "1", "2024-12-31", Expense, Food),
		tx("6", "1", "2025-04-01", Expense, Food),
	}

	got := Recent(txs, 0)
	want := []string{"6", "2", "3", "4", "1"}
	if len(got) != len(want) {
		t.Fatalf("expected %d, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}

	all := Recent(txs, 10)
	if len(all) != len(txs) || all[len(all)-1].ID != "bad" {
		t.Fatalf("unparseable dates should sort last, got %+v", all)
	}

	if len(Recent(nil, 5)) != 0 {
		t.Fatalf("empty input should give empty output")
	}
	if txs[0].ID != "1" {
		t.Fatalf("input must not be reordered")
	}
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"2025-01-15", "2025-01-15T10:30", "2025-01-15T10:30:00", "2025-01-15 10:30:00", "2025-01-15T10:30:00.123Z", "2025-01-15T10:30:00+02:00"} {
		if _, ok := ParseDate(s); !ok {
			t.Fatalf("%q should parse", s)
		}
	}
	if _, ok := ParseDate("15/01/2025"); ok {
		t.Fatalf("unsupported layout should fail")
	}
}
