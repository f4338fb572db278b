package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"warikan/internal/sheets"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteRepository is a sheets.RowStore backed by a local database file.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ sheets.RowStore = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := migrateSchema(dbPath)
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.Info("SQLite schema ready", "path", dbPath, "version", version)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

// migrateSchema brings the advance_payments schema up to date and returns
// its version. The migrator gets its own connection because closing it
// closes the underlying database.
func migrateSchema(dbPath string) (uint, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open migration connection: %w", err)
	}
	defer conn.Close()

	driver, err := migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("migration driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return 0, fmt.Errorf("migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrate advance_payments schema: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("advance_payments schema version %d is dirty", version)
	}
	return version, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) ListRows(ctx context.Context) ([]sheets.Row, error) {
	items, err := r.queries.ListAdvancePayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list advance payments: %w", err)
	}
	rows := make([]sheets.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, sheets.Row{
			ID:        it.ID,
			Date:      it.Date,
			Payer:     it.Payer,
			Amount:    it.Amount,
			Memo:      it.Memo,
			CreatedAt: it.CreatedAt,
		})
	}
	return rows, nil
}

func (r *SQLiteRepository) AppendRow(ctx context.Context, row sheets.Row) error {
	err := r.queries.CreateAdvancePayment(ctx, CreateAdvancePaymentParams{
		ID:        row.ID,
		Date:      row.Date,
		Payer:     row.Payer,
		Amount:    row.Amount,
		Memo:      row.Memo,
		CreatedAt: row.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("create advance payment: %w", err)
	}

	slog.InfoContext(ctx, "Advance payment saved to SQLite",
		"id", row.ID,
		"date", row.Date,
		"payer", row.Payer,
		"amount", row.Amount)
	return nil
}

func (r *SQLiteRepository) DeleteRowByID(ctx context.Context, id string) (bool, error) {
	n, err := r.queries.DeleteAdvancePayment(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete advance payment %s: %w", id, err)
	}
	return n > 0, nil
}
