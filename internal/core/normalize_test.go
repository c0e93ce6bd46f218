package core

import (
	"errors"
	"testing"
	"time"
)

func str(s string) *string { return &s }

func fixedNormalizer() *Normalizer {
	return &Normalizer{
		Now:   func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC) },
		NewID: func() string { return "tx-1" },
	}
}

func TestNormalize(t *testing.T) {
	n := fixedNormalizer()

	got, err := n.Normalize(TransactionInput{
		Amount:      str("500"),
		Description: str("Groceries"),
		Date:        str("2025-01-15"),
		Type:        str("expense"),
		Category:    str("food"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Transaction{ID: "tx-1", Description: "Groceries", Date: "2025-01-15", Type: Expense, Category: Food}
	if got.ID != want.ID || got.Description != want.Description || got.Date != want.Date ||
		got.Type != want.Type || got.Category != want.Category || got.Amount.String() != "500" {
		t.Fatalf("got %+v", got)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	n := fixedNormalizer()

	got, err := n.Normalize(TransactionInput{
		Amount:      str("12.345"),
		Description: str("  Salary  "),
		Type:        str("income"),
		Category:    str("bogus"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Amount.String() != "12.35" {
		t.Fatalf("amount should round to 12.35, got %s", got.Amount)
	}
	if got.Description != "Salary" {
		t.Fatalf("description should be trimmed, got %q", got.Description)
	}
	if got.Date != "2025-03-14T09:26:53.589Z" {
		t.Fatalf("date should default to now, got %q", got.Date)
	}
	if got.Type != Income {
		t.Fatalf("type should be income, got %q", got.Type)
	}
	if got.Category != Other {
		t.Fatalf("unknown category should become other, got %q", got.Category)
	}
}

func TestNormalizeTypeCoercion(t *testing.T) {
	n := fixedNormalizer()
	for _, in := range []*string{nil, str(""), str("INCOME"), str("transfer"), str("expense")} {
		got, err := n.Normalize(TransactionInput{Amount: str("1"), Description: str("x"), Type: in})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Type != Expense {
			t.Fatalf("type %v should coerce to expense, got %q", in, got.Type)
		}
	}
}

func TestNormalizeErrors(t *testing.T) {
	n := fixedNormalizer()
	cases := []struct {
		name string
		in   TransactionInput
		want error
	}{
		{"missing amount", TransactionInput{Description: str("x")}, ErrInvalidAmount},
		{"empty amount", TransactionInput{Amount: str(""), Description: str("x")}, ErrInvalidAmount},
		{"zero amount", TransactionInput{Amount: str("0"), Description: str("x")}, ErrInvalidAmount},
		{"negative amount", TransactionInput{Amount: str("-5"), Description: str("x")}, ErrInvalidAmount},
		{"non numeric", TransactionInput{Amount: str("abc"), Description: str("x")}, ErrInvalidAmount},
		{"rounds to zero", TransactionInput{Amount: str("0.001"), Description: str("x")}, ErrInvalidAmount},
		{"huge exponent", TransactionInput{Amount: str("1e1000000"), Description: str("x")}, ErrInvalidAmount},
		{"above cap", TransactionInput{Amount: str("1000000000000000"), Description: str("x")}, ErrInvalidAmount},
		{"missing description", TransactionInput{Amount: str("5")}, ErrMissingDescription},
		{"blank description", TransactionInput{Amount: str("5"), Description: str("   ")}, ErrMissingDescription},
		{"amount checked first", TransactionInput{Amount: str("abc")}, ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := n.Normalize(tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestNewNormalizerAssignsUniqueIDs(t *testing.T) {
	n := NewNormalizer()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tx, err := n.Normalize(TransactionInput{Amount: str("1"), Description: str("x")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[tx.ID] {
			t.Fatalf("duplicate id %s", tx.ID)
		}
		seen[tx.ID] = true
	}
}
