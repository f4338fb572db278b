package services

import (
	"context"
	"fmt"
	"log/slog"

	"warikan/internal/core"
)

// MonthlyAmounter resolves a month's card total.
type MonthlyAmounter interface {
	MonthlyAmount(ctx context.Context, ym core.YearMonth) (core.Money, error)
}

// CardSettlementService turns a month's card total into a 50/50 settlement.
type CardSettlementService struct {
	resolver MonthlyAmounter
	calc     core.SettlementCalculator
}

func NewCardSettlementService(resolver MonthlyAmounter) *CardSettlementService {
	return &CardSettlementService{resolver: resolver}
}

func (s *CardSettlementService) Settle(ctx context.Context, ym core.YearMonth) (core.MonthlySettlement, error) {
	total, err := s.resolver.MonthlyAmount(ctx, ym)
	if err != nil {
		return core.MonthlySettlement{}, fmt.Errorf("resolve card amount for %s: %w", ym.Format(), err)
	}
	settlement := s.calc.Calculate(ym, total)
	slog.InfoContext(ctx, "Card settlement calculated",
		"year", ym.Year, "month", ym.Month, "total", total.Yen, "half", settlement.HusbandAmount.Yen)
	return settlement, nil
}
