package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"warikan/internal/core"
	"warikan/internal/sheets"
	"warikan/internal/sheets/memory"
)

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

var jst = time.FixedZone("JST", 9*60*60)

func newTestService(rows ...sheets.Row) (*AdvancePaymentService, *memory.Store) {
	store := memory.New(rows...)
	now := time.Date(2025, 10, 20, 23, 30, 0, 0, jst)
	svc := NewAdvancePaymentService(store,
		WithIDGenerator(&seqIDs{}),
		WithClock(func() time.Time { return now }),
		WithLocation(jst),
	)
	return svc, store
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, jst)
}

func TestAdvancePaymentService_AddWritesRow(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	p, err := svc.Add(ctx, day(2025, 10, 30), core.Wife, 2000, " 買い物 ")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if p.ID != "id-1" || p.Memo != "買い物" {
		t.Fatalf("unexpected payment: %+v", p)
	}

	rows, _ := store.ListRows(ctx)
	want := sheets.Row{ID: "id-1", Date: "2025-10-30", Payer: "妻", Amount: 2000, Memo: "買い物", CreatedAt: "2025-10-20T23:30:00+09:00"}
	if len(rows) != 1 || rows[0] != want {
		t.Fatalf("rows = %+v, want %+v", rows, want)
	}
}

func TestAdvancePaymentService_AddValidation(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	if _, err := svc.Add(ctx, day(2025, 10, 1), core.Husband, -1, "x"); !errors.Is(err, core.ErrInvalidArgument) {
		t.Fatalf("negative amount: got %v", err)
	}
	if _, err := svc.Add(ctx, day(2025, 10, 1), core.Husband, 100, "  "); !errors.Is(err, core.ErrEmptyMemo) {
		t.Fatalf("empty memo: got %v", err)
	}
	if _, err := svc.Add(ctx, day(2025, 10, 1), core.Payer(0), 100, "x"); !errors.Is(err, core.ErrInvalidArgument) {
		t.Fatalf("invalid payer: got %v", err)
	}
	if rows, _ := store.ListRows(ctx); len(rows) != 0 {
		t.Fatalf("invalid payments must not be stored: %+v", rows)
	}
}

func TestAdvancePaymentService_UUIDsByDefault(t *testing.T) {
	svc := NewAdvancePaymentService(memory.New())
	a, err := svc.Add(context.Background(), day(2025, 1, 1), core.Husband, 1, "a")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	b, _ := svc.Add(context.Background(), day(2025, 1, 1), core.Husband, 1, "b")
	if len(a.ID) != 36 || a.ID == b.ID {
		t.Fatalf("expected distinct UUIDs, got %q and %q", a.ID, b.ID)
	}
}

func seedRows() []sheets.Row {
	return []sheets.Row{
		{ID: "1", Date: "2025-08-25", Payer: "夫", Amount: 100, Memo: "before window"},
		{ID: "2", Date: "2025-08-26", Payer: "夫", Amount: 3000, Memo: "window start"},
		{ID: "3", Date: "2025-09-10", Payer: "妻", Amount: 1000, Memo: "mid"},
		{ID: "4", Date: "2025-09-25", Payer: "妻", Amount: 500, Memo: "window end"},
		{ID: "5", Date: "2025-09-26", Payer: "夫", Amount: 700, Memo: "after window"},
		{ID: "6", Date: "2025-09-30T15:00:00Z", Payer: "夫", Amount: 10, Memo: "legacy timestamp"},
	}
}

func TestAdvancePaymentService_FindByYearMonth(t *testing.T) {
	svc, _ := newTestService(seedRows()...)

	got, err := svc.FindByYearMonth(context.Background(), 2025, 9)
	if err != nil {
		t.Fatalf("FindByYearMonth: %v", err)
	}
	ids := idsOf(got)
	if ids != "3,4,5" {
		t.Fatalf("ids = %s, want 3,4,5", ids)
	}

	// 2025-09-30T15:00Z is 2025-10-01 in JST.
	oct, _ := svc.FindByYearMonth(context.Background(), 2025, 10)
	if idsOf(oct) != "6" {
		t.Fatalf("october ids = %s, want 6", idsOf(oct))
	}
}

func TestAdvancePaymentService_FindByDateRangeInclusive(t *testing.T) {
	svc, _ := newTestService(seedRows()...)
	start, end := core.YearMonth{Year: 2025, Month: 10}.BillingCycle(jst)

	got, err := svc.FindByDateRange(context.Background(), start, end)
	if err != nil {
		t.Fatalf("FindByDateRange: %v", err)
	}
	if idsOf(got) != "2,3,4" {
		t.Fatalf("ids = %s, want 2,3,4", idsOf(got))
	}
}

func TestAdvancePaymentService_DeleteIsIdempotent(t *testing.T) {
	svc, store := newTestService(seedRows()...)
	ctx := context.Background()

	if err := svc.Delete(ctx, "3"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, "3"); err != nil {
		t.Fatalf("second Delete must be a no-op, got %v", err)
	}
	if err := svc.Delete(ctx, " "); !errors.Is(err, core.ErrInvalidArgument) {
		t.Fatalf("empty id: got %v", err)
	}
	rows, _ := store.ListRows(ctx)
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
}

func TestAdvancePaymentService_CalculateImbalance(t *testing.T) {
	tests := []struct {
		name      string
		rows      []sheets.Row
		wantH     int64
		wantW     int64
		wantDiff  int64
		wantPayer *core.Payer
	}{
		{
			name: "husband paid more so wife owes",
			rows: []sheets.Row{
				{ID: "a", Date: "2025-10-01", Payer: "夫", Amount: 3000, Memo: "x"},
				{ID: "b", Date: "2025-10-02", Payer: "妻", Amount: 1000, Memo: "y"},
			},
			wantH: 3000, wantW: 1000, wantDiff: 2000, wantPayer: payerPtr(core.Wife),
		},
		{
			name: "wife paid more so husband owes",
			rows: []sheets.Row{
				{ID: "a", Date: "2025-10-01", Payer: "妻", Amount: 1500, Memo: "x"},
			},
			wantH: 0, wantW: 1500, wantDiff: 1500, wantPayer: payerPtr(core.Husband),
		},
		{
			name: "even",
			rows: []sheets.Row{
				{ID: "a", Date: "2025-10-01", Payer: "妻", Amount: 500, Memo: "x"},
				{ID: "b", Date: "2025-10-03", Payer: "夫", Amount: 500, Memo: "y"},
				{ID: "c", Date: "2025-11-03", Payer: "夫", Amount: 900, Memo: "other month"},
			},
			wantH: 500, wantW: 500, wantDiff: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(tt.rows...)
			got, err := svc.CalculateImbalance(context.Background(), 2025, 10)
			if err != nil {
				t.Fatalf("CalculateImbalance: %v", err)
			}
			if got.HusbandTotal.Yen != tt.wantH || got.WifeTotal.Yen != tt.wantW || got.Amount.Yen != tt.wantDiff {
				t.Fatalf("unexpected totals: %+v", got)
			}
			switch {
			case tt.wantPayer == nil && got.Payer != nil:
				t.Fatalf("expected no payer, got %v", *got.Payer)
			case tt.wantPayer != nil && (got.Payer == nil || *got.Payer != *tt.wantPayer):
				t.Fatalf("payer = %v, want %v", got.Payer, *tt.wantPayer)
			}
		})
	}
}

func TestAdvancePaymentService_MalformedRowsSurface(t *testing.T) {
	svc, _ := newTestService(sheets.Row{ID: "x", Date: "2025-10-01", Payer: "犬", Amount: 1, Memo: "m"})
	if _, err := svc.FindAll(context.Background()); !errors.Is(err, core.ErrInvalidArgument) {
		t.Fatalf("expected invalid payer error, got %v", err)
	}

	svc, _ = newTestService(sheets.Row{ID: "y", Date: "someday", Payer: "夫", Amount: 1, Memo: "m"})
	if _, err := svc.FindAll(context.Background()); !errors.Is(err, core.ErrInvalidArgument) {
		t.Fatalf("expected invalid date error, got %v", err)
	}
}

func TestAdvancePaymentService_Today(t *testing.T) {
	svc, _ := newTestService()
	if got := svc.Today(); !got.Equal(day(2025, 10, 20)) {
		t.Fatalf("Today = %v", got)
	}
}

func payerPtr(p core.Payer) *core.Payer { return &p }

func idsOf(ps []core.AdvancePayment) string {
	s := ""
	for i, p := range ps {
		if i > 0 {
			s += ","
		}
		s += p.ID
	}
	return s
}
