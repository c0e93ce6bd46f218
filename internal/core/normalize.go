package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the format used for server-assigned dates.
const DateLayout = "2006-01-02T15:04:05.000Z"

// TransactionInput is a raw submission; nil means the field was absent.
type TransactionInput struct {
	Amount      *string
	Description *string
	Date        *string
	Type        *string
	Category    *string
}

// Normalizer turns raw submissions into valid transactions.
// Now and NewID are injectable for tests.
type Normalizer struct {
	Now   func() time.Time
	NewID func() string
}

// NewNormalizer returns a normalizer using the wall clock and UUIDv7 ids.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		Now:   time.Now,
		NewID: newID,
	}
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Normalize validates in and fills defaults. Amount is checked before
// description, so an invalid amount wins when both are wrong.
func (n *Normalizer) Normalize(in TransactionInput) (Transaction, error) {
	if in.Amount == nil {
		return Transaction{}, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	amount, err := ParseMoney(*in.Amount)
	if err != nil || !amount.IsPositive() {
		return Transaction{}, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}

	description := strings.TrimSpace(deref(in.Description))
	if description == "" {
		return Transaction{}, &ValidationError{Field: "description", Err: ErrMissingDescription}
	}

	date := strings.TrimSpace(deref(in.Date))
	if date == "" {
		date = n.now().UTC().Format(DateLayout)
	}

	txType := Expense
	if deref(in.Type) == string(Income) {
		txType = Income
	}

	category := Category(deref(in.Category))
	if !category.IsValid() {
		category = Other
	}

	return Transaction{
		ID:          n.id(),
		Amount:      amount,
		Description: description,
		Date:        date,
		Type:        txType,
		Category:    category,
	}, nil
}

func (n *Normalizer) now() time.Time {
	if n.Now == nil {
		return time.Now()
	}
	return n.Now()
}

func (n *Normalizer) id() string {
	if n.NewID == nil {
		return newID()
	}
	return n.NewID()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
