package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"warikan/internal/sheets"
)

func TestMemoryStoreAppendListDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, id := range []string{"a", "b", "c"} {
		if err := s.AppendRow(ctx, sheets.Row{ID: id, Date: "2025-10-01", Payer: "夫", Amount: 100, Memo: "m"}); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}

	found, err := s.DeleteRowByID(ctx, "b")
	if err != nil || !found {
		t.Fatalf("delete b: found=%v err=%v", found, err)
	}
	found, err = s.DeleteRowByID(ctx, "missing")
	if err != nil || found {
		t.Fatalf("delete missing: found=%v err=%v", found, err)
	}

	rows, _ := s.ListRows(ctx)
	if len(rows) != 2 || rows[0].ID != "a" || rows[1].ID != "c" {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	rows[0].ID = "mutated"
	again, _ := s.ListRows(ctx)
	if again[0].ID != "a" {
		t.Fatalf("ListRows must return a copy")
	}
}

func TestMemoryStoreRejectsEmptyID(t *testing.T) {
	if err := New().AppendRow(context.Background(), sheets.Row{}); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()

	s, err := NewFromFile(filepath.Join(dir, "missing.tsv"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if rows, _ := s.ListRows(context.Background()); len(rows) != 0 {
		t.Fatalf("expected empty store, got %d rows", len(rows))
	}

	path := filepath.Join(dir, "seed.tsv")
	content := "# ID\tDate\tPayer\tAmount\tMemo\tCreatedAt\n" +
		"1\t2025-10-01\t夫\t1500\tランチ\t2025-10-01T12:00:00+09:00\n\n" +
		"2\t2025-10-02\t妻\t2000\t買い物\t2025-10-02T12:00:00+09:00\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s, err = NewFromFile(path)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	rows, _ := s.ListRows(context.Background())
	if len(rows) != 2 || rows[1].Payer != "妻" || rows[1].Amount != 2000 {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	if err := os.WriteFile(path, []byte("1\t2025-10-01\t夫\tabc\tx\ty\n"), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if _, err := NewFromFile(path); err == nil {
		t.Fatal("expected error for invalid amount")
	}
}
