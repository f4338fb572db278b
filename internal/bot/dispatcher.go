// Package bot maps chat messages to household-finance intents and renders
// the replies.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"warikan/internal/core"
	"warikan/internal/metrics"
)

// Keywords in match priority order.
const (
	keywordUsage      = "使い方"
	keywordFormat     = "フォーマット"
	keywordDelete     = "削除"
	keywordAdd        = "建て替え追加"
	keywordSettlement = "カード支払い"
	keywordAdvance    = "建て替え"
	keywordGreeting   = "hello"
)

// Intent names, used as metric labels.
const (
	IntentUsage         = "usage"
	IntentFormat        = "format_help"
	IntentDelete        = "delete"
	IntentAdd           = "add"
	IntentSettlement    = "settlement"
	IntentAdvanceReport = "advance_report"
	IntentAdvanceApp    = "advance_app"
	IntentGreeting      = "greeting"
	IntentNone          = "none"
)

// ErrLedgerUnavailable is returned for card queries when no ledger is wired.
var ErrLedgerUnavailable = errors.New("card ledger is not configured")

type (
	// Settler produces a month's card settlement.
	Settler interface {
		Settle(ctx context.Context, ym core.YearMonth) (core.MonthlySettlement, error)
	}

	// AdvancePayments is the record store the bot edits and reports on.
	AdvancePayments interface {
		Add(ctx context.Context, date time.Time, payer core.Payer, amount int64, memo string) (core.AdvancePayment, error)
		Delete(ctx context.Context, id string) error
		FindByDateRange(ctx context.Context, start, end time.Time) ([]core.AdvancePayment, error)
	}
)

// Reply is the outcome of a dispatch. OK is false when the bot stays silent.
type Reply struct {
	Text string
	OK   bool
}

func say(text string) Reply {
	return Reply{Text: text, OK: true}
}

type Dispatcher struct {
	settler   Settler
	payments  AdvancePayments
	webAppURL string
	now       func() time.Time
	loc       *time.Location
}

type Option func(*Dispatcher)

// WithSettler enables card settlement queries.
func WithSettler(s Settler) Option {
	return func(d *Dispatcher) { d.settler = s }
}

func WithWebAppURL(url string) Option {
	return func(d *Dispatcher) { d.webAppURL = url }
}

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(d *Dispatcher) {
		if loc != nil {
			d.loc = loc
		}
	}
}

func NewDispatcher(payments AdvancePayments, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		payments: payments,
		now:      time.Now,
		loc:      time.UTC,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Classify returns the intent text maps to.
func Classify(text string) string {
	switch {
	case strings.Contains(text, keywordUsage):
		return IntentUsage
	case strings.Contains(text, keywordFormat):
		return IntentFormat
	case strings.Contains(text, keywordDelete):
		return IntentDelete
	case strings.Contains(text, keywordAdd):
		return IntentAdd
	case strings.Contains(text, keywordSettlement):
		return IntentSettlement
	case strings.Contains(text, keywordAdvance):
		if HasMonth(text) {
			return IntentAdvanceReport
		}
		return IntentAdvanceApp
	case strings.Contains(strings.ToLower(text), keywordGreeting):
		return IntentGreeting
	}
	return IntentNone
}

// Dispatch answers one chat message. Input problems become replies; an
// error means the request itself failed and should be relayed by the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, text string) (Reply, error) {
	intent := Classify(text)
	metrics.Intents.WithLabelValues(intent).Inc()
	slog.DebugContext(ctx, "Dispatching chat message", "intent", intent)

	switch intent {
	case IntentUsage:
		return say(usageHelp), nil
	case IntentFormat:
		return say(AddFormatHelp("")), nil
	case IntentDelete:
		return d.delete(ctx, text), nil
	case IntentAdd:
		return d.add(ctx, text), nil
	case IntentSettlement:
		return d.settle(ctx, text)
	case IntentAdvanceReport:
		return d.report(ctx, text)
	case IntentAdvanceApp:
		return say(webAppMessage(d.webAppURL)), nil
	case IntentGreeting:
		return say(greetingReply), nil
	}
	return Reply{}, nil
}

func (d *Dispatcher) today() time.Time {
	y, m, day := d.now().In(d.loc).Date()
	return time.Date(y, m, day, 0, 0, 0, 0, d.loc)
}

func (d *Dispatcher) delete(ctx context.Context, text string) Reply {
	id := ParseDeleteID(text)
	if id == "" {
		return say(deleteUsage)
	}
	if err := d.payments.Delete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to delete advance payment", "id", id, "error", err)
		return say(deleteFailedMessage(id, err))
	}
	slog.InfoContext(ctx, "Deleted advance payment", "id", id)
	return say(deletedMessage(id))
}

func (d *Dispatcher) add(ctx context.Context, text string) Reply {
	cmd, err := ParseAddCommand(text, d.today())
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return say(AddFormatHelp(pe.Reason))
		}
		return say(AddFormatHelp(reasonMalformed))
	}

	p, err := d.payments.Add(ctx, cmd.Date, cmd.Payer, cmd.Amount, cmd.Memo)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to add advance payment", "error", err)
		return say(addFailedMessage(err))
	}
	slog.InfoContext(ctx, "Added advance payment",
		"id", p.ID, "payer", p.Payer.String(), "amount_yen", p.Amount.Yen)
	return say(addedMessage(p))
}

func (d *Dispatcher) settle(ctx context.Context, text string) (Reply, error) {
	ym, err := ExtractYearMonth(text, d.now().In(d.loc))
	if err != nil {
		return Reply{}, err
	}
	if d.settler == nil {
		return Reply{}, ErrLedgerUnavailable
	}
	s, err := d.settler.Settle(ctx, ym)
	if err != nil {
		return Reply{}, err
	}
	return say(s.FormatMessage()), nil
}

func (d *Dispatcher) report(ctx context.Context, text string) (Reply, error) {
	ym, err := ExtractYearMonth(text, d.now().In(d.loc))
	if err != nil {
		return Reply{}, err
	}
	start, end := ym.BillingCycle(d.loc)
	payments, err := d.payments.FindByDateRange(ctx, start, end)
	if err != nil {
		return Reply{}, fmt.Errorf("load advance payments: %w", err)
	}
	return say(BillingCycleReport(ym, start, end, payments)), nil
}
