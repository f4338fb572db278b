// Package core holds the household settlement domain: money, months,
// payers, advance payments and the arithmetic that settles them.
package core

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Money is a non-negative amount of yen. The zero value is 0円.
type Money struct {
	Yen int64
}

// NewMoney returns Money for n yen. Negative amounts are rejected.
func NewMoney(n int64) (Money, error) {
	if n < 0 {
		return Money{}, fmt.Errorf("%w: amount cannot be negative: %d", ErrInvalidArgument, n)
	}
	return Money{Yen: n}, nil
}

// Divide splits the amount by divisor, rounding down.
//
// Floor is the policy: on odd totals the recipients are shorted by the
// remainder, never over-allocated.
//
//	Money{1001}.Divide(2) -> Money{500}
//	Money{91789}.Divide(2) -> Money{45894}
func (m Money) Divide(divisor int64) (Money, error) {
	if divisor == 0 {
		return Money{}, fmt.Errorf("%w: cannot divide by zero", ErrInvalidArgument)
	}
	if divisor < 0 {
		return Money{}, fmt.Errorf("%w: divisor must be positive: %d", ErrInvalidArgument, divisor)
	}
	return Money{Yen: m.Yen / divisor}, nil
}

// Add returns the sum of both amounts.
func (m Money) Add(other Money) Money {
	return Money{Yen: m.Yen + other.Yen}
}

// Equal reports whether both amounts are the same.
func (m Money) Equal(other Money) bool {
	return m.Yen == other.Yen
}

// Format renders the amount with thousands separators and the yen suffix,
// e.g. "45,894円".
func (m Money) Format() string {
	return humanize.Comma(m.Yen) + "円"
}

// Validate checks the non-negative invariant for Money built as a literal.
func (m Money) Validate() error {
	if m.Yen < 0 {
		return fmt.Errorf("%w: amount cannot be negative: %d", ErrInvalidArgument, m.Yen)
	}
	return nil
}
