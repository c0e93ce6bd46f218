package core

// Budget maps each category to its spending limit.
type Budget map[Category]Money

// DefaultBudget returns the limits a fresh store starts with.
func DefaultBudget() Budget {
	return Budget{
		Food:          MoneyFromInt(5000),
		Transport:     MoneyFromInt(3000),
		Housing:       MoneyFromInt(10000),
		Entertainment: MoneyFromInt(2000),
		Other:         MoneyFromInt(3000),
	}
}

// Clone returns an independent copy.
func (b Budget) Clone() Budget {
	out := make(Budget, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Merge returns b with every key of partial overwritten. Keys absent from
// partial keep their value.
func (b Budget) Merge(partial Budget) Budget {
	out := b.Clone()
	for k, v := range partial {
		out[k] = v
	}
	return out
}

// Validate rejects unknown categories and negative limits.
func (b Budget) Validate() error {
	for k, v := range b {
		if !k.IsValid() || v.IsNegative() {
			return ErrMalformedRequest
		}
	}
	return nil
}
