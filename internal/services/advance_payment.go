package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"warikan/internal/core"
	"warikan/internal/sheets"
)

// IDGenerator yields record identifiers.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues time-ordered UUIDv7 strings.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// AdvancePaymentService reads and writes advance payments through a row store.
type AdvancePaymentService struct {
	store sheets.RowStore
	ids   IDGenerator
	now   func() time.Time
	loc   *time.Location
}

type Option func(*AdvancePaymentService)

func WithIDGenerator(g IDGenerator) Option {
	return func(s *AdvancePaymentService) { s.ids = g }
}

func WithClock(now func() time.Time) Option {
	return func(s *AdvancePaymentService) { s.now = now }
}

// WithLocation sets the zone stored dates are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(s *AdvancePaymentService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func NewAdvancePaymentService(store sheets.RowStore, opts ...Option) *AdvancePaymentService {
	s := &AdvancePaymentService{
		store: store,
		ids:   UUIDGenerator{},
		now:   time.Now,
		loc:   time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location is the zone used for dates and "today".
func (s *AdvancePaymentService) Location() *time.Location {
	return s.loc
}

// Today is the current calendar date in the service location.
func (s *AdvancePaymentService) Today() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

func (s *AdvancePaymentService) FindAll(ctx context.Context) ([]core.AdvancePayment, error) {
	rows, err := s.store.ListRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}
	out := make([]core.AdvancePayment, 0, len(rows))
	for i, r := range rows {
		p, err := s.fromRow(r)
		if err != nil {
			return nil, fmt.Errorf("row %d (id %q): %w", i+2, r.ID, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *AdvancePaymentService) FindByYearMonth(ctx context.Context, year, month int) ([]core.AdvancePayment, error) {
	all, err := s.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.AdvancePayment
	for _, p := range all {
		if p.InMonth(year, month) {
			out = append(out, p)
		}
	}
	return out, nil
}

// FindByDateRange returns payments dated within [start, end], both inclusive.
func (s *AdvancePaymentService) FindByDateRange(ctx context.Context, start, end time.Time) ([]core.AdvancePayment, error) {
	all, err := s.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.AdvancePayment
	for _, p := range all {
		if p.InRange(start, end) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Add records a new payment and returns it with its generated id.
func (s *AdvancePaymentService) Add(ctx context.Context, date time.Time, payer core.Payer, amount int64, memo string) (core.AdvancePayment, error) {
	money, err := core.NewMoney(amount)
	if err != nil {
		return core.AdvancePayment{}, err
	}
	p := core.AdvancePayment{
		ID:     s.ids.NewID(),
		Date:   date,
		Payer:  payer,
		Amount: money,
		Memo:   strings.TrimSpace(memo),
	}
	if err := p.Validate(); err != nil {
		return core.AdvancePayment{}, err
	}

	row := sheets.Row{
		ID:        p.ID,
		Date:      p.FormattedDate(),
		Payer:     p.Payer.String(),
		Amount:    p.Amount.Yen,
		Memo:      p.Memo,
		CreatedAt: s.now().In(s.loc).Format(time.RFC3339),
	}
	if err := s.store.AppendRow(ctx, row); err != nil {
		return core.AdvancePayment{}, fmt.Errorf("append row: %w", err)
	}
	slog.InfoContext(ctx, "Advance payment recorded",
		"id", p.ID, "payer", row.Payer, "amount", row.Amount, "date", row.Date)
	return p, nil
}

// Delete removes the payment with id. Unknown ids are not an error.
func (s *AdvancePaymentService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: empty id", core.ErrInvalidArgument)
	}
	found, err := s.store.DeleteRowByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete row %s: %w", id, err)
	}
	if !found {
		slog.InfoContext(ctx, "Advance payment not found, nothing deleted", "id", id)
		return nil
	}
	slog.InfoContext(ctx, "Advance payment deleted", "id", id)
	return nil
}

// CalculateImbalance compares both parties over a calendar month.
func (s *AdvancePaymentService) CalculateImbalance(ctx context.Context, year, month int) (core.Imbalance, error) {
	payments, err := s.FindByYearMonth(ctx, year, month)
	if err != nil {
		return core.Imbalance{}, err
	}
	return core.CalculateImbalance(payments), nil
}

func (s *AdvancePaymentService) fromRow(r sheets.Row) (core.AdvancePayment, error) {
	date, err := parseRowDate(r.Date, s.loc)
	if err != nil {
		return core.AdvancePayment{}, err
	}
	payer, err := core.ParsePayer(strings.TrimSpace(r.Payer))
	if err != nil {
		return core.AdvancePayment{}, err
	}
	amount, err := core.NewMoney(r.Amount)
	if err != nil {
		return core.AdvancePayment{}, err
	}
	return core.AdvancePayment{ID: r.ID, Date: date, Payer: payer, Amount: amount, Memo: r.Memo}, nil
}

// parseRowDate accepts YYYY-MM-DD as written by this service and full
// RFC 3339 timestamps written by older clients.
func parseRowDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseInLocation(core.DateLayout, s, loc); err == nil {
		return d, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q", core.ErrInvalidArgument, s)
}
