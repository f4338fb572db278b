package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrEmptyMemo       = errors.New("empty memo")
)

// DateLayout is the calendar date format used by the ledger and the row store.
const DateLayout = "2006-01-02"

type (
	// YearMonth is a calendar month.
	YearMonth struct {
		Year  int
		Month int // 1-12
	}

	// AdvancePayment is one out-of-pocket expense paid by a single party.
	AdvancePayment struct {
		ID     string
		Date   time.Time
		Payer  Payer
		Amount Money
		Memo   string
	}
)

// NewYearMonth validates year and month.
func NewYearMonth(year, month int) (YearMonth, error) {
	if year < 0 {
		return YearMonth{}, fmt.Errorf("%w: year must be positive: %d", ErrInvalidArgument, year)
	}
	if month < 1 || month > 12 {
		return YearMonth{}, fmt.Errorf("%w: month must be between 1 and 12: %d", ErrInvalidArgument, month)
	}
	return YearMonth{Year: year, Month: month}, nil
}

// YearMonthOf returns the month containing t, in t's location.
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: int(t.Month())}
}

// Equal reports structural equality.
func (ym YearMonth) Equal(other YearMonth) bool {
	return ym.Year == other.Year && ym.Month == other.Month
}

// Format renders "2024年10月" with the month zero padded.
func (ym YearMonth) Format() string {
	return fmt.Sprintf("%d年%02d月", ym.Year, ym.Month)
}

// BillingCycle returns the statement window settled in payment month ym:
// the 26th two months earlier through the 25th of the previous month.
// A payment in October 2025 covers 2025-08-26 .. 2025-09-25.
func (ym YearMonth) BillingCycle(loc *time.Location) (start, end time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	start = time.Date(ym.Year, time.Month(ym.Month-2), 26, 0, 0, 0, 0, loc)
	end = time.Date(ym.Year, time.Month(ym.Month-1), 25, 0, 0, 0, 0, loc)
	return start, end
}

// FormattedDate renders the payment date as YYYY-MM-DD.
func (p AdvancePayment) FormattedDate() string {
	return p.Date.Format(DateLayout)
}

// InMonth reports whether the payment date falls in the given calendar month.
func (p AdvancePayment) InMonth(year, month int) bool {
	return p.Date.Year() == year && int(p.Date.Month()) == month
}

// InRange reports whether the payment's calendar date lies within
// [start, end], both ends inclusive. Times of day are ignored.
func (p AdvancePayment) InRange(start, end time.Time) bool {
	d := dayOf(p.Date)
	return !d.Before(dayOf(start)) && !d.After(dayOf(end))
}

func (p AdvancePayment) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidArgument)
	}
	if p.Date.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidArgument)
	}
	if !p.Payer.IsValid() {
		return fmt.Errorf("%w: invalid payer", ErrInvalidArgument)
	}
	if err := p.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(p.Memo) == "" {
		return ErrEmptyMemo
	}
	return nil
}

// dayOf maps t to a comparable calendar day, independent of location.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
