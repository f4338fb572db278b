package core

import "testing"

func TestSettlementCalculator(t *testing.T) {
	ym := YearMonth{2024, 10}
	cases := []struct {
		total, half int64
	}{
		{91788, 45894},
		{91789, 45894},
		{0, 0},
		{1, 0},
	}
	for _, tc := range cases {
		s := SettlementCalculator{}.Calculate(ym, Money{Yen: tc.total})
		if s.HusbandAmount.Yen != tc.half || s.WifeAmount.Yen != tc.half {
			t.Fatalf("total %d: got %d/%d, want %d", tc.total, s.HusbandAmount.Yen, s.WifeAmount.Yen, tc.half)
		}
		if s.CreditCardTotal.Yen != tc.total || !s.YearMonth.Equal(ym) {
			t.Fatalf("unexpected settlement: %+v", s)
		}
		if d := tc.total - s.HusbandAmount.Add(s.WifeAmount).Yen; d != 0 && d != 1 {
			t.Fatalf("remainder out of range for %d: %d", tc.total, d)
		}
	}
}

func TestMonthlySettlementFormatMessage(t *testing.T) {
	s := MonthlySettlement{
		YearMonth:       YearMonth{2024, 10},
		CreditCardTotal: Money{Yen: 91788},
		HusbandAmount:   Money{Yen: 45894},
		WifeAmount:      Money{Yen: 45894},
	}
	want := "💳 今月の支払い金額が確定しました\n\n" +
		"【2024年10月支払い分】\n\n" +
		"カード合計: 91,788円\n\n" +
		"👨 45,894円\n" +
		"👩 45,894円"
	if got := s.FormatMessage(); got != want {
		t.Fatalf("unexpected message:\n%s\nwant:\n%s", got, want)
	}

	s = MonthlySettlement{
		YearMonth:       YearMonth{2025, 1},
		CreditCardTotal: Money{Yen: 100001},
		HusbandAmount:   Money{Yen: 50000},
		WifeAmount:      Money{Yen: 50001},
	}
	want = "💳 今月の支払い金額が確定しました\n\n" +
		"【2025年01月支払い分】\n\n" +
		"カード合計: 100,001円\n\n" +
		"👨 50,000円\n" +
		"👩 50,001円"
	if got := s.FormatMessage(); got != want {
		t.Fatalf("unexpected message:\n%s\nwant:\n%s", got, want)
	}
}

func TestCalculateImbalance(t *testing.T) {
	pay := func(p Payer, yen int64) AdvancePayment {
		return AdvancePayment{Payer: p, Amount: Money{Yen: yen}}
	}
	cases := []struct {
		name     string
		payments []AdvancePayment
		h, w, d  int64
		owes     Payer // 0 means settled
	}{
		{"husband paid more", []AdvancePayment{pay(Husband, 3000), pay(Wife, 1000)}, 3000, 1000, 2000, Wife},
		{"wife paid more", []AdvancePayment{pay(Husband, 1000), pay(Wife, 5000)}, 1000, 5000, 4000, Husband},
		{"equal", []AdvancePayment{pay(Husband, 2000), pay(Wife, 2000)}, 2000, 2000, 0, 0},
		{"no payments", nil, 0, 0, 0, 0},
		{"many", []AdvancePayment{pay(Husband, 1000), pay(Husband, 2000), pay(Wife, 1500), pay(Wife, 500)}, 3000, 2000, 1000, Wife},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := CalculateImbalance(tc.payments)
			if res.HusbandTotal.Yen != tc.h || res.WifeTotal.Yen != tc.w || res.Amount.Yen != tc.d {
				t.Fatalf("unexpected totals: %+v", res)
			}
			if tc.owes == 0 {
				if !res.Settled() {
					t.Fatalf("expected settled, got payer %v", *res.Payer)
				}
				return
			}
			if res.Payer == nil || *res.Payer != tc.owes {
				t.Fatalf("expected %v to owe, got %v", tc.owes, res.Payer)
			}
		})
	}
}

func TestImbalanceHalfAmount(t *testing.T) {
	res := Imbalance{Amount: Money{Yen: 2001}}
	if res.HalfAmount().Yen != 1000 {
		t.Fatalf("unexpected half: %d", res.HalfAmount().Yen)
	}
}
