package google

import (
	"fmt"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// transactionRow lays out a transaction as A:F
// (id, date, type, category, description, amount).
func transactionRow(t core.Transaction) []any {
	return []any{
		t.ID,
		t.Date,
		string(t.Type),
		string(t.Category),
		t.Description,
		t.Amount.Decimal().InexactFloat64(),
	}
}

// budgetRows returns a header row followed by every category in canonical
// order. Categories missing from b are written as 0.
func budgetRows(b core.Budget) [][]any {
	rows := [][]any{{"Category", "Budget"}}
	for _, c := range core.Categories() {
		rows = append(rows, []any{string(c), b[c].Decimal().InexactFloat64()})
	}
	return rows
}

// findRow returns the 1-based sheet row whose first cell equals id, or 0.
func findRow(values [][]any, id string) int {
	if id == "" {
		return 0
	}
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i + 1
		}
	}
	return 0
}

// rowFromRange extracts the first row number from an A1 range such as
// "Transactions!A7:F7" or "'My Sheet'!A7". Returns 0 if there is none.
func rowFromRange(a1 string) int {
	if i := strings.LastIndex(a1, "!"); i >= 0 {
		a1 = a1[i+1:]
	}
	if i := strings.Index(a1, ":"); i >= 0 {
		a1 = a1[:i]
	}
	digits := strings.TrimLeft(a1, "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz$")
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0
	}
	return n
}
