package core

import (
	"errors"
	"testing"
)

func TestCategoryIsValid(t *testing.T) {
	for _, c := range Categories() {
		if !c.IsValid() {
			t.Fatalf("%q should be valid", c)
		}
	}
	for _, c := range []Category{"", "Food", "groceries"} {
		if c.IsValid() {
			t.Fatalf("%q should be invalid", c)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID:          "1",
		Amount:      MoneyFromInt(10),
		Description: "ok",
		Date:        "2025-01-01",
		Type:        Expense,
		Category:    Food,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	noAmount := good
	noAmount.Amount = Money{}
	if err := noAmount.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	blank := good
	blank.Description = "   "
	if err := blank.Validate(); !errors.Is(err, ErrMissingDescription) {
		t.Fatalf("expected ErrMissingDescription, got %v", err)
	}

	badType := good
	badType.Type = "transfer"
	if err := badType.Validate(); err == nil {
		t.Fatalf("expected error for bad type")
	}

	badCategory := good
	badCategory.Category = "misc"
	if err := badCategory.Validate(); err == nil {
		t.Fatalf("expected error for bad category")
	}
}

func TestValidationErrorUnwrap(t *testing.T) {
	err := error(&ValidationError{Field: "amount", Err: ErrInvalidAmount})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "amount" {
		t.Fatalf("expected ValidationError for amount, got %v", err)
	}
	if err.Error() != "amount: invalid amount" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestBudgetMerge(t *testing.T) {
	base := DefaultBudget()
	merged := base.Merge(Budget{Food: MoneyFromInt(6000)})

	if merged[Food].String() != "6000" {
		t.Fatalf("food not updated: %s", merged[Food])
	}
	if merged[Transport].String() != "3000" {
		t.Fatalf("transport should be untouched: %s", merged[Transport])
	}
	if base[Food].String() != "5000" {
		t.Fatalf("merge must not mutate the receiver")
	}
	if len(merged) != 5 {
		t.Fatalf("expected 5 categories, got %d", len(merged))
	}
}

func TestBudgetValidate(t *testing.T) {
	if err := DefaultBudget().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if err := (Budget{Food: MoneyFromInt(-1)}).Validate(); !errors.Is(err, ErrMalformedRequest) {
		t.Fatalf("negative limit should be malformed, got %v", err)
	}
	if err := (Budget{"misc": MoneyFromInt(1)}).Validate(); !errors.Is(err, ErrMalformedRequest) {
		t.Fatalf("unknown category should be malformed, got %v", err)
	}
}
