package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"warikan/internal/core"
)

const maxJSONBody = 64 << 10

// paymentInput is the body of POST /api/advance-payments. Date is
// optional and defaults to today.
type paymentInput struct {
	Date   string `json:"date"`
	Payer  string `json:"payer"`
	Amount int64  `json:"amount"`
	Memo   string `json:"memo"`
}

// parseMonthParams reads year and month from the query, defaulting each
// to the month containing now. Present but malformed values are errors.
func parseMonthParams(query url.Values, now time.Time) (core.YearMonth, error) {
	year, month := now.Year(), int(now.Month())

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return core.YearMonth{}, fmt.Errorf("%w: year must be a number: %q", core.ErrInvalidArgument, v)
		}
		year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return core.YearMonth{}, fmt.Errorf("%w: month must be a number: %q", core.ErrInvalidArgument, v)
		}
		month = m
	}
	return core.NewYearMonth(year, month)
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields
// and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", core.ErrInvalidArgument, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: body must contain a single JSON object", core.ErrInvalidArgument)
	}
	return nil
}

// toPayment validates the input; a missing date means today.
func (in paymentInput) toPayment(today time.Time) (time.Time, core.Payer, string, error) {
	date := today
	if v := strings.TrimSpace(in.Date); v != "" {
		d, err := time.ParseInLocation(core.DateLayout, v, today.Location())
		if err != nil {
			return time.Time{}, 0, "", fmt.Errorf("%w: date must be YYYY-MM-DD: %q", core.ErrInvalidArgument, v)
		}
		date = d
	}

	payer, err := core.ParsePayer(strings.TrimSpace(in.Payer))
	if err != nil {
		return time.Time{}, 0, "", err
	}
	if in.Amount <= 0 {
		return time.Time{}, 0, "", fmt.Errorf("%w: amount must be a positive integer", core.ErrInvalidArgument)
	}

	memo := sanitizeInput(in.Memo)
	if memo == "" {
		return time.Time{}, 0, "", core.ErrEmptyMemo
	}
	return date, payer, memo, nil
}

// sanitizeInput removes control characters other than tab and newlines
// and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
