package google

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	ports "warikan/internal/sheets"
)

// sheetsEpoch is day zero of spreadsheet serial dates.
var sheetsEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// parseRow converts one A:F value slice. Rows without an id are reported
// as not ok and skipped by the caller.
func parseRow(raw []any) (ports.Row, bool, error) {
	cells := make([]any, len(ports.Header))
	copy(cells, raw)

	id := cellString(cells[0])
	if id == "" {
		return ports.Row{}, false, nil
	}
	amount, err := cellInt(cells[3])
	if err != nil {
		return ports.Row{}, false, fmt.Errorf("id %s: amount: %w", id, err)
	}
	return ports.Row{
		ID:        id,
		Date:      cellDate(cells[1]),
		Payer:     cellString(cells[2]),
		Amount:    amount,
		Memo:      cellString(cells[4]),
		CreatedAt: cellString(cells[5]),
	}, true, nil
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// cellInt accepts unformatted numbers and formatted strings like "1,500".
func cellInt(v any) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(math.Round(t)), nil
	case string:
		s := strings.NewReplacer(",", "", "円", "", "¥", "", " ", "").Replace(strings.TrimSpace(t))
		if s == "" {
			return 0, fmt.Errorf("empty value")
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(s, 64)
			if ferr != nil {
				return 0, fmt.Errorf("invalid number %q", t)
			}
			return int64(math.Round(f)), nil
		}
		return n, nil
	case nil:
		return 0, fmt.Errorf("empty value")
	default:
		return 0, fmt.Errorf("unsupported value %v", t)
	}
}

// cellDate normalises serial numbers and slash dates to YYYY-MM-DD.
func cellDate(v any) string {
	if f, ok := v.(float64); ok {
		return sheetsEpoch.AddDate(0, 0, int(f)).Format("2006-01-02")
	}
	s := cellString(v)
	if t, err := time.Parse("2006/01/02", s); err == nil {
		return t.Format("2006-01-02")
	}
	if t, err := time.Parse("2006/1/2", s); err == nil {
		return t.Format("2006-01-02")
	}
	return s
}
