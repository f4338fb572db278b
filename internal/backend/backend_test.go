package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"warikan/internal/amqp"
	"warikan/internal/config"
	"warikan/internal/sheets"
	"warikan/internal/sheets/memory"
)

type recordingPublisher struct {
	events []*amqp.RowEvent
	err    error
}

func (p *recordingPublisher) PublishRowEvent(_ context.Context, e *amqp.RowEvent) error {
	p.events = append(p.events, e)
	return p.err
}

func TestPublishingStore_PublishesAfterWrites(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	store := NewPublishingStore(memory.New(), pub, nil)

	row := sheets.Row{ID: "a", Date: "2025-10-01", Payer: "夫", Amount: 1200, Memo: "ランチ"}
	if err := store.AppendRow(ctx, row); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	found, err := store.DeleteRowByID(ctx, "a")
	if err != nil || !found {
		t.Fatalf("DeleteRowByID = %v, %v", found, err)
	}

	if len(pub.events) != 2 {
		t.Fatalf("published %d events, want 2", len(pub.events))
	}
	if pub.events[0].Op != amqp.OpAppend || pub.events[0].Row != row {
		t.Fatalf("first event = %+v", pub.events[0])
	}
	if pub.events[1].Op != amqp.OpDelete || pub.events[1].Row.ID != "a" {
		t.Fatalf("second event = %+v", pub.events[1])
	}
}

func TestPublishingStore_SkipsMissingDelete(t *testing.T) {
	pub := &recordingPublisher{}
	store := NewPublishingStore(memory.New(), pub, nil)

	found, err := store.DeleteRowByID(context.Background(), "missing")
	if err != nil || found {
		t.Fatalf("DeleteRowByID = %v, %v", found, err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("published %d events, want 0", len(pub.events))
	}
}

func TestPublishingStore_PublishFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	inner := memory.New()
	store := NewPublishingStore(inner, &recordingPublisher{err: errors.New("broker down")}, nil)

	if err := store.AppendRow(ctx, sheets.Row{ID: "a", Memo: "x"}); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	rows, _ := inner.ListRows(ctx)
	if len(rows) != 1 {
		t.Fatalf("inner rows = %d, want 1", len(rows))
	}
}

func TestPublishingStore_FailedWriteIsNotPublished(t *testing.T) {
	pub := &recordingPublisher{}
	store := NewPublishingStore(memory.New(), pub, nil)

	if err := store.AppendRow(context.Background(), sheets.Row{}); err == nil {
		t.Fatal("expected error for empty id")
	}
	if len(pub.events) != 0 {
		t.Fatalf("published %d events, want 0", len(pub.events))
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "memory", cfg: Config{Type: MemoryBackend}},
		{name: "sqlite", cfg: Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}},
		{name: "sqlite without path", cfg: Config{Type: SQLiteBackend}, wantErr: "SQLite database path"},
		{name: "unknown", cfg: Config{Type: "postgres"}, wantErr: "invalid backend type"},
		{
			name:    "sheets without credentials",
			cfg:     Config{Type: SheetsBackend, GoogleSpreadsheetID: "sid", GoogleSheetName: "s"},
			wantErr: "GoogleServiceAccountJSON",
		},
		{
			name: "sheets with endpoint only",
			cfg:  Config{Type: SheetsBackend, GoogleSpreadsheetID: "sid", GoogleSheetName: "s", GoogleSheetsEndpoint: "http://localhost:1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "csv"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{DataBackend: "sheets", GoogleSpreadsheetID: "sid", GoogleSheetName: "Sheet"})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != SheetsBackend || cfg.GoogleSpreadsheetID != "sid" || cfg.DataDirectory != "data" {
		t.Fatalf("FromAppConfig = %+v", cfg)
	}
}

func TestFactory_CreateMemoryBackendFromSeed(t *testing.T) {
	dir := t.TempDir()
	seed := "a\t2025-10-01\t夫\t1200\tランチ\t2025-10-01T12:00:00+09:00\n"
	if err := os.WriteFile(filepath.Join(dir, SeedFileName), []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: dir})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	rows, err := res.Backend.ListRows(context.Background())
	if err != nil {
		t.Fatalf("ListRows: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "a" || rows[0].Amount != 1200 {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestFactory_CreateSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warikan.db")
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Cleanup()

	if _, ok := res.Backend.(*PublishingStore); ok {
		t.Fatal("expected plain repository without AMQP")
	}
	if err := res.Backend.AppendRow(context.Background(), sheets.Row{ID: "a", Date: "2025-10-01", Payer: "夫", Amount: 1, Memo: "x"}); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
}

func TestFactory_RejectsInvalidType(t *testing.T) {
	if _, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: "bogus"}); err == nil {
		t.Fatal("expected error")
	}
}
