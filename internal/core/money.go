// Package core provides money parsing and handling utilities.
//
// Amounts are decimal values rounded to two places, half away from zero.
// They serialize to JSON as plain numbers.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

// Amounts outside these bounds are rejected before rounding, which would
// otherwise expand an exponent like 1e1000000 into a million digits.
const (
	maxMoneyExponent = 15
	minMoneyExponent = -32
)

var maxMoneyAbs = decimal.New(1, maxMoneyExponent)

// Money is a decimal amount with at most two fractional digits.
type Money struct {
	amount decimal.Decimal
}

// NewMoney rounds d to two places.
func NewMoney(d decimal.Decimal) Money {
	return Money{amount: d.Round(moneyPlaces)}
}

// MoneyFromInt returns a whole-unit amount.
func MoneyFromInt(v int64) Money {
	return Money{amount: decimal.NewFromInt(v)}
}

// ParseMoney parses a decimal string and rounds it to two places.
//
// Examples:
//
//	ParseMoney("12.34")  -> 12.34
//	ParseMoney("12.345") -> 12.35
//	ParseMoney("1e3")    -> 1000
//	ParseMoney("abc")    -> ErrInvalidAmount
//	ParseMoney("1e16")   -> ErrInvalidAmount
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return boundedMoney(d)
}

// boundedMoney checks the exponent first so the magnitude comparison never
// rescales an oversized value.
func boundedMoney(d decimal.Decimal) (Money, error) {
	if exp := d.Exponent(); exp > maxMoneyExponent || exp < minMoneyExponent {
		return Money{}, ErrInvalidAmount
	}
	if d.Abs().GreaterThanOrEqual(maxMoneyAbs) {
		return Money{}, ErrInvalidAmount
	}
	return NewMoney(d), nil
}

func (m Money) Add(o Money) Money {
	return Money{amount: m.amount.Add(o.amount)}
}

func (m Money) Sub(o Money) Money {
	return Money{amount: m.amount.Sub(o.amount)}
}

func (m Money) IsPositive() bool { return m.amount.IsPositive() }

func (m Money) IsNegative() bool { return m.amount.IsNegative() }

func (m Money) IsZero() bool { return m.amount.IsZero() }

func (m Money) Equal(o Money) bool { return m.amount.Equal(o.amount) }

// Decimal exposes the underlying value.
func (m Money) Decimal() decimal.Decimal { return m.amount }

// String returns the shortest exact representation ("350", "12.5").
func (m Money) String() string { return m.amount.String() }

// StringFixed always renders two fractional digits.
func (m Money) StringFixed() string { return m.amount.StringFixed(moneyPlaces) }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.amount.String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return ErrInvalidAmount
	}
	v, err := boundedMoney(d)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
