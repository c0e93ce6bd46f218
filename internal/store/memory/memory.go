package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/core"
)

// Store keeps transactions and budgets in process memory. Contents are lost
// when the process exits.
type Store struct {
	mu     sync.Mutex
	items  []core.Transaction
	budget core.Budget
}

func New(budget core.Budget) *Store {
	if budget == nil {
		budget = core.DefaultBudget()
	}
	return &Store{budget: budget.Clone()}
}

// List returns a copy of every transaction in insertion order.
func (s *Store) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...), nil
}

// Append stores the transaction after re-checking its invariants.
func (s *Store) Append(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.ID == t.ID {
			return fmt.Errorf("duplicate transaction id %q", t.ID)
		}
	}
	s.items = append(s.items, t)
	return nil
}

func (s *Store) Remove(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	removed := false
	for _, t := range s.items {
		if t.ID == id {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	s.items = kept
	return removed, nil
}

func (s *Store) Get(_ context.Context) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budget.Clone(), nil
}

func (s *Store) Update(_ context.Context, partial core.Budget) (core.Budget, error) {
	if err := partial.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budget = s.budget.Merge(partial)
	return s.budget.Clone(), nil
}

func (s *Store) Ping(_ context.Context) error { return nil }

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
