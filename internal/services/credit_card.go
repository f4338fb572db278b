package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"warikan/internal/core"
	"warikan/internal/zaim"
)

// LedgerReader is the subset of the Zaim client the resolver needs.
type LedgerReader interface {
	ListAccounts(ctx context.Context) ([]zaim.Account, error)
	ListTransactions(ctx context.Context) ([]zaim.Transaction, error)
}

type cardNotFoundError struct{}

func (cardNotFoundError) Error() string { return "Active card not found" }
func (cardNotFoundError) Unwrap() error { return core.ErrNotFound }

// ErrCardNotFound matches core.ErrNotFound with errors.Is.
var ErrCardNotFound error = cardNotFoundError{}

// DefaultCardKeywords identify the shared card account by name.
var DefaultCardKeywords = []string{"楽天", "カード"}

// CreditCardResolver totals the shared card's ledger entries for a month.
type CreditCardResolver struct {
	ledger   LedgerReader
	keywords []string
}

func NewCreditCardResolver(ledger LedgerReader, keywords []string) *CreditCardResolver {
	if len(keywords) == 0 {
		keywords = DefaultCardKeywords
	}
	return &CreditCardResolver{ledger: ledger, keywords: keywords}
}

// MonthlyAmount sums every transaction touching the card whose date falls
// in ym. Transactions with unparseable dates are ignored.
func (r *CreditCardResolver) MonthlyAmount(ctx context.Context, ym core.YearMonth) (core.Money, error) {
	accounts, err := r.ledger.ListAccounts(ctx)
	if err != nil {
		return core.Money{}, err
	}
	card, ok := r.findCard(accounts)
	if !ok {
		return core.Money{}, ErrCardNotFound
	}

	txs, err := r.ledger.ListTransactions(ctx)
	if err != nil {
		return core.Money{}, err
	}

	var total int64
	matched := 0
	for _, tx := range txs {
		if tx.FromAccountID != card.ID && tx.ToAccountID != card.ID {
			continue
		}
		d, err := time.Parse(core.DateLayout, firstDate(tx.Date))
		if err != nil {
			slog.WarnContext(ctx, "Skipping ledger entry with invalid date", "id", tx.ID, "date", tx.Date)
			continue
		}
		if !core.YearMonthOf(d).Equal(ym) {
			continue
		}
		total += tx.Amount
		matched++
	}

	slog.DebugContext(ctx, "Resolved card total",
		"card", card.Name, "year", ym.Year, "month", ym.Month, "entries", matched, "total", total)

	m, err := core.NewMoney(total)
	if err != nil {
		return core.Money{}, fmt.Errorf("card total for %s: %w", ym.Format(), err)
	}
	return m, nil
}

func (r *CreditCardResolver) findCard(accounts []zaim.Account) (zaim.Account, bool) {
	for _, a := range accounts {
		if !a.Active || a.Name == "" {
			continue
		}
		if containsAll(a.Name, r.keywords) {
			return a, true
		}
	}
	return zaim.Account{}, false
}

func containsAll(s string, keywords []string) bool {
	for _, k := range keywords {
		if !strings.Contains(s, k) {
			return false
		}
	}
	return true
}

// firstDate trims a datetime down to its YYYY-MM-DD prefix.
func firstDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > len(core.DateLayout) {
		return s[:len(core.DateLayout)]
	}
	return s
}
