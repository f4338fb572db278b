package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"warikan/internal/core"
	applog "warikan/internal/log"
)

type (
	paymentView struct {
		ID     string `json:"id"`
		Date   string `json:"date"`
		Payer  string `json:"payer"`
		Amount int64  `json:"amount"`
		Memo   string `json:"memo"`
	}

	paymentListView struct {
		Year     int           `json:"year"`
		Month    int           `json:"month"`
		Payments []paymentView `json:"payments"`
	}

	cardView struct {
		Total   int64 `json:"total"`
		Husband int64 `json:"husband"`
		Wife    int64 `json:"wife"`
	}

	settlementView struct {
		Year         int    `json:"year"`
		Month        int    `json:"month"`
		HusbandTotal int64  `json:"husband_total"`
		WifeTotal    int64  `json:"wife_total"`
		Difference   int64  `json:"difference"`
		Transfer     int64  `json:"transfer"`
		From         string `json:"from,omitempty"`
		To           string `json:"to,omitempty"`
		// Card is the ledger split for the same payment month, when a
		// ledger is configured and reachable.
		Card      *cardView `json:"card,omitempty"`
		CardError string    `json:"card_error,omitempty"`
	}

	errorView struct {
		Error string `json:"error"`
	}
)

func toPaymentView(p core.AdvancePayment) paymentView {
	return paymentView{
		ID:     p.ID,
		Date:   p.FormattedDate(),
		Payer:  p.Payer.String(),
		Amount: p.Amount.Yen,
		Memo:   p.Memo,
	}
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	ym, err := parseMonthParams(r.URL.Query(), s.payments.Today())
	if err != nil {
		writeError(w, r, err)
		return
	}

	payments, err := s.payments.FindByYearMonth(r.Context(), ym.Year, ym.Month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := paymentListView{Year: ym.Year, Month: ym.Month, Payments: make([]paymentView, 0, len(payments))}
	for _, p := range payments {
		out.Payments = append(out.Payments, toPaymentView(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var in paymentInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	date, payer, memo, err := in.toPayment(s.payments.Today())
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := s.payments.Add(r.Context(), date, payer, in.Amount, memo)
	if err != nil {
		writeError(w, r, err)
		return
	}
	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogPaymentRecorded(r.Context(), p.ID, p.Payer.String(), p.Amount.Yen)
	writeJSON(w, http.StatusCreated, toPaymentView(p))
}

// handleDeletePayment is idempotent: unknown ids also answer 204.
func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if err := s.payments.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSettlement(w http.ResponseWriter, r *http.Request) {
	ym, err := parseMonthParams(r.URL.Query(), s.payments.Today())
	if err != nil {
		writeError(w, r, err)
		return
	}

	payments, err := s.payments.FindByYearMonth(r.Context(), ym.Year, ym.Month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	imb := core.CalculateImbalance(payments)

	out := settlementView{
		Year:         ym.Year,
		Month:        ym.Month,
		HusbandTotal: imb.HusbandTotal.Yen,
		WifeTotal:    imb.WifeTotal.Yen,
		Difference:   imb.Amount.Yen,
		Transfer:     imb.HalfAmount().Yen,
	}
	if !imb.Settled() {
		out.From = imb.Payer.String()
		out.To = imb.Payer.Other().String()
	}

	if s.settler != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
		defer cancel()
		card, err := s.settler.Settle(ctx, ym)
		if err != nil {
			slog.WarnContext(ctx, "Card settlement unavailable", applog.FieldYear, ym.Year, applog.FieldMonth, ym.Month, applog.FieldError, err)
			out.CardError = err.Error()
		} else {
			out.Card = &cardView{
				Total:   card.CreditCardTotal.Yen,
				Husband: card.HusbandAmount.Yen,
				Wife:    card.WifeAmount.Yen,
			}
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// writeError maps domain errors to status codes. Unexpected errors are
// logged and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidArgument), errors.Is(err, core.ErrEmptyMemo):
		writeJSON(w, http.StatusBadRequest, errorView{Error: err.Error()})
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorView{Error: err.Error()})
	default:
		slog.ErrorContext(r.Context(), "API request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorView{Error: "internal error"})
	}
}
