package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Food          Category = "food"
	Transport     Category = "transport"
	Housing       Category = "housing"
	Entertainment Category = "entertainment"
	Other         Category = "other"
)

type (
	TransactionType string

	Category string

	Transaction struct {
		ID          string          `json:"id"`
		Amount      Money           `json:"amount"`
		Description string          `json:"description"`
		Date        string          `json:"date"` // kept as received
		Type        TransactionType `json:"type"`
		Category    Category        `json:"category"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrMissingDescription = errors.New("description is required")
	ErrNotFound           = errors.New("not found")
	ErrMalformedRequest   = errors.New("malformed request")
	ErrBudgetsDisabled    = errors.New("budgets disabled")
)

// ValidationError reports which input field failed and why.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Categories returns every known category in canonical order.
func Categories() []Category {
	return []Category{Food, Transport, Housing, Entertainment, Other}
}

func (c Category) IsValid() bool {
	switch c {
	case Food, Transport, Housing, Entertainment, Other:
		return true
	}
	return false
}

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

// Validate checks the invariants every stored transaction must satisfy.
func (t Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	if strings.TrimSpace(t.Description) == "" {
		return &ValidationError{Field: "description", Err: ErrMissingDescription}
	}
	if !t.Type.IsValid() {
		return fmt.Errorf("invalid transaction type %q", t.Type)
	}
	if !t.Category.IsValid() {
		return fmt.Errorf("invalid category %q", t.Category)
	}
	return nil
}
