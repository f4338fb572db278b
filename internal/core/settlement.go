package core

import "strings"

// MonthlySettlement is the 50/50 split of one month's card total.
type MonthlySettlement struct {
	YearMonth       YearMonth
	CreditCardTotal Money
	HusbandAmount   Money
	WifeAmount      Money
}

// SettlementCalculator splits a card total evenly between both parties.
type SettlementCalculator struct{}

// Calculate assigns each party floor(total/2). On odd totals the 1円
// remainder is dropped and never carried into later months.
func (SettlementCalculator) Calculate(ym YearMonth, total Money) MonthlySettlement {
	half := Money{Yen: total.Yen / 2}
	return MonthlySettlement{
		YearMonth:       ym,
		CreditCardTotal: total,
		HusbandAmount:   half,
		WifeAmount:      half,
	}
}

// FormatMessage renders the chat reply for the settlement.
func (s MonthlySettlement) FormatMessage() string {
	var b strings.Builder
	b.WriteString("💳 今月の支払い金額が確定しました\n\n")
	b.WriteString("【" + s.YearMonth.Format() + "支払い分】\n\n")
	b.WriteString("カード合計: " + s.CreditCardTotal.Format() + "\n\n")
	b.WriteString(Husband.Icon() + " " + s.HusbandAmount.Format() + "\n")
	b.WriteString(Wife.Icon() + " " + s.WifeAmount.Format())
	return b.String()
}

// Imbalance compares what each party advanced over a period.
type Imbalance struct {
	HusbandTotal Money
	WifeTotal    Money
	// Amount is |HusbandTotal - WifeTotal|.
	Amount Money
	// Payer is the party that advanced less and owes; nil when even.
	Payer *Payer
}

// CalculateImbalance sums payments per party.
func CalculateImbalance(payments []AdvancePayment) Imbalance {
	var husband, wife int64
	for _, p := range payments {
		switch p.Payer {
		case Husband:
			husband += p.Amount.Yen
		case Wife:
			wife += p.Amount.Yen
		}
	}

	diff := husband - wife
	if diff < 0 {
		diff = -diff
	}

	res := Imbalance{
		HusbandTotal: Money{Yen: husband},
		WifeTotal:    Money{Yen: wife},
		Amount:       Money{Yen: diff},
	}
	switch {
	case husband > wife:
		owes := Wife
		res.Payer = &owes
	case wife > husband:
		owes := Husband
		res.Payer = &owes
	}
	return res
}

// Settled reports whether no transfer is needed.
func (i Imbalance) Settled() bool {
	return i.Payer == nil
}

// HalfAmount is the transfer that leaves both parties having contributed
// equally, rounded down.
func (i Imbalance) HalfAmount() Money {
	return Money{Yen: i.Amount.Yen / 2}
}
