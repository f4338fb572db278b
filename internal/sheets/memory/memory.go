package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"warikan/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows []sheets.Row
}

func New(seed ...sheets.Row) *Store {
	return &Store{rows: append([]sheets.Row(nil), seed...)}
}

// NewFromFile seeds the store from a tab separated file with the six
// sheet columns per line. Missing files yield an empty store.
func NewFromFile(path string) (*Store, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	return New(rows...), nil
}

func (s *Store) ListRows(_ context.Context) ([]sheets.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.Row(nil), s.rows...), nil
}

func (s *Store) AppendRow(_ context.Context, r sheets.Row) error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("append row: empty id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, r)
	return nil
}

func (s *Store) DeleteRowByID(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rows {
		if r.ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func readRows(path string) ([]sheets.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []sheets.Row
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) != len(sheets.Header) {
			return nil, fmt.Errorf("%s:%d: expected %d columns, got %d", path, lineNo, len(sheets.Header), len(cols))
		}
		amount, err := strconv.ParseInt(strings.TrimSpace(cols[3]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid amount %q", path, lineNo, cols[3])
		}
		out = append(out, sheets.Row{
			ID:        cols[0],
			Date:      cols[1],
			Payer:     cols[2],
			Amount:    amount,
			Memo:      cols[4],
			CreatedAt: cols[5],
		})
	}
	return out, sc.Err()
}
