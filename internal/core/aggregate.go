package core

import (
	"sort"
	"time"
)

// DefaultRecentLimit is the size of the recent-activity list.
const DefaultRecentLimit = 5

// InvalidDateLabel groups transactions whose date cannot be parsed.
const InvalidDateLabel = "Invalid Date"

// Summary holds headline totals.
type Summary struct {
	Income   Money `json:"income"`
	Expenses Money `json:"expenses"`
	Balance  Money `json:"balance"`
}

// MonthlyTotal is one point of the monthly series. Year and Month are zero
// for the invalid-date group.
type MonthlyTotal struct {
	Label    string `json:"label"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Income   Money  `json:"income"`
	Expenses Money  `json:"expenses"`
}

// BudgetComparison pairs a category limit with actual spending.
type BudgetComparison struct {
	Category  Category `json:"category"`
	Budget    Money    `json:"budget"`
	Actual    Money    `json:"actual"`
	Remaining Money    `json:"remaining"`
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses the date formats clients are known to send.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Summarize totals income and expenses. Balance may be negative.
func Summarize(txs []Transaction) Summary {
	var s Summary
	for _, t := range txs {
		switch t.Type {
		case Income:
			s.Income = s.Income.Add(t.Amount)
		case Expense:
			s.Expenses = s.Expenses.Add(t.Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expenses)
	return s
}

// MonthlySeries groups transactions by calendar month. Groups appear in the
// order their first transaction appears in txs, not chronologically.
func MonthlySeries(txs []Transaction) []MonthlyTotal {
	index := make(map[string]int)
	series := []MonthlyTotal{}

	for _, t := range txs {
		var key string
		var year, month int
		if parsed, ok := ParseDate(t.Date); ok {
			parsed = parsed.UTC()
			key = parsed.Format("Jan 2006")
			year, month = parsed.Year(), int(parsed.Month())
		} else {
			key = InvalidDateLabel
		}

		i, ok := index[key]
		if !ok {
			i = len(series)
			index[key] = i
			series = append(series, MonthlyTotal{Label: key, Year: year, Month: month})
		}

		switch t.Type {
		case Income:
			series[i].Income = series[i].Income.Add(t.Amount)
		case Expense:
			series[i].Expenses = series[i].Expenses.Add(t.Amount)
		}
	}
	return series
}

// CategoryTotals sums expenses per category. Categories without expenses are
// absent from the result.
func CategoryTotals(txs []Transaction) map[Category]Money {
	totals := make(map[Category]Money)
	for _, t := range txs {
		if t.Type != Expense {
			continue
		}
		totals[t.Category] = totals[t.Category].Add(t.Amount)
	}
	return totals
}

// CompareBudget lists every budgeted category in canonical order with its
// actual expense total.
func CompareBudget(budget Budget, txs []Transaction) []BudgetComparison {
	totals := CategoryTotals(txs)
	out := make([]BudgetComparison, 0, len(budget))
	for _, c := range Categories() {
		limit, ok := budget[c]
		if !ok {
			continue
		}
		actual := totals[c]
		out = append(out, BudgetComparison{
			Category:  c,
			Budget:    limit,
			Actual:    actual,
			Remaining: limit.Sub(actual),
		})
	}
	return out
}

// Recent returns up to n transactions, newest first. Unparseable dates sort
// last and ties keep their input order. n <= 0 uses DefaultRecentLimit.
func Recent(txs []Transaction, n int) []Transaction {
	if n <= 0 {
		n = DefaultRecentLimit
	}

	type entry struct {
		tx    Transaction
		at    time.Time
		valid bool
	}
	entries := make([]entry, len(txs))
	for i, t := range txs {
		at, ok := ParseDate(t.Date)
		entries[i] = entry{tx: t, at: at, valid: ok}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.valid != b.valid {
			return a.valid
		}
		return a.at.After(b.at)
	})

	if len(entries) > n {
		entries = entries[:n]
	}
	out := make([]Transaction, len(entries))
	for i, e := range entries {
		out[i] = e.tx
	}
	return out
}
