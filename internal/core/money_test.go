package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"0.01", "0.01", true},
		{"1.005", "1.01", true}, // half away from zero
		{"12.345", "12.35", true},
		{" 2.50 ", "2.5", true},
		{"1e3", "1000", true},
		{"-1", "-1", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
		{"12abc", "", false},
		{"999999999999999.99", "999999999999999.99", true},
		{"1e15", "", false},
		{"-1e15", "", false},
		{"1e1000000", "", false},
		{"1e-1000000", "", false},
		{"0.000000000000000000000000000000001", "", false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a, _ := ParseMoney("100.10")
	b, _ := ParseMoney("0.25")
	if got := a.Add(b).String(); got != "100.35" {
		t.Fatalf("add: got %s", got)
	}
	if got := b.Sub(a); !got.IsNegative() || got.String() != "-99.85" {
		t.Fatalf("sub: got %s", got)
	}
	var zero Money
	if !zero.IsZero() || zero.IsPositive() {
		t.Fatalf("zero value should be zero")
	}
	if got := zero.Add(a).StringFixed(); got != "100.10" {
		t.Fatalf("zero add: got %s", got)
	}
}

func TestMoneyJSON(t *testing.T) {
	m, _ := ParseMoney("500")
	b, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{m})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"amount":500}` {
		t.Fatalf("unexpected json %s", b)
	}

	var out struct {
		Amount Money `json:"amount"`
	}
	if err := json.Unmarshal([]byte(`{"amount":"12.345"}`), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Amount.String() != "12.35" {
		t.Fatalf("expected rounding on decode, got %s", out.Amount)
	}

	if err := json.Unmarshal([]byte(`{"amount":1e1000000}`), &out); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for oversized amount, got %v", err)
	}
}
