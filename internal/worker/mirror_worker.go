// Package worker mirrors advance-payment rows from the primary store into
// the shared spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"warikan/internal/amqp"
	"warikan/internal/metrics"
	"warikan/internal/sheets"
)

// MirrorWorker applies row events to a mirror store.
type MirrorWorker struct {
	mirror sheets.RowStore
	logger *slog.Logger
}

func NewMirrorWorker(mirror sheets.RowStore, logger *slog.Logger) *MirrorWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &MirrorWorker{mirror: mirror, logger: logger}
}

// HandleRowEvent is an amqp.Handler. Appends are skipped when the id is
// already mirrored and deletes of unknown ids succeed, so redelivered
// events are harmless.
func (w *MirrorWorker) HandleRowEvent(ctx context.Context, e *amqp.RowEvent) (err error) {
	defer func() {
		metrics.MirroredEvents.WithLabelValues(string(e.Op), metrics.Outcome(err)).Inc()
	}()

	switch e.Op {
	case amqp.OpAppend:
		return w.apply(ctx, e.Row)
	case amqp.OpDelete:
		found, err := w.mirror.DeleteRowByID(ctx, e.Row.ID)
		if err != nil {
			return fmt.Errorf("delete mirrored row %s: %w", e.Row.ID, err)
		}
		if !found {
			w.logger.InfoContext(ctx, "Mirrored row already absent", "id", e.Row.ID)
			return nil
		}
		w.logger.InfoContext(ctx, "Deleted mirrored row", "id", e.Row.ID)
		return nil
	default:
		return fmt.Errorf("unknown row op %q", e.Op)
	}
}

func (w *MirrorWorker) apply(ctx context.Context, r sheets.Row) error {
	rows, err := w.mirror.ListRows(ctx)
	if err != nil {
		return fmt.Errorf("list mirrored rows: %w", err)
	}
	for _, existing := range rows {
		if existing.ID == r.ID {
			w.logger.InfoContext(ctx, "Row already mirrored", "id", r.ID)
			return nil
		}
	}
	if err := w.mirror.AppendRow(ctx, r); err != nil {
		return fmt.Errorf("append mirrored row %s: %w", r.ID, err)
	}
	w.logger.InfoContext(ctx, "Mirrored row", "id", r.ID, "date", r.Date, "payer", r.Payer, "amount_yen", r.Amount)
	return nil
}

// ReconcileResult counts the changes made by Reconcile.
type ReconcileResult struct {
	Appended int
	Deleted  int
}

// Reconcile brings the mirror in line with source after missed events:
// rows only in source are appended, rows only in the mirror are removed.
func (w *MirrorWorker) Reconcile(ctx context.Context, source sheets.RowLister) (ReconcileResult, error) {
	var res ReconcileResult

	want, err := source.ListRows(ctx)
	if err != nil {
		return res, fmt.Errorf("list source rows: %w", err)
	}
	have, err := w.mirror.ListRows(ctx)
	if err != nil {
		return res, fmt.Errorf("list mirrored rows: %w", err)
	}

	inSource := make(map[string]struct{}, len(want))
	for _, r := range want {
		inSource[r.ID] = struct{}{}
	}
	inMirror := make(map[string]struct{}, len(have))
	for _, r := range have {
		inMirror[r.ID] = struct{}{}
	}

	for _, r := range want {
		if _, ok := inMirror[r.ID]; ok {
			continue
		}
		if err := w.mirror.AppendRow(ctx, r); err != nil {
			return res, fmt.Errorf("append mirrored row %s: %w", r.ID, err)
		}
		res.Appended++
	}
	for _, r := range have {
		if _, ok := inSource[r.ID]; ok {
			continue
		}
		if _, err := w.mirror.DeleteRowByID(ctx, r.ID); err != nil {
			return res, fmt.Errorf("delete mirrored row %s: %w", r.ID, err)
		}
		res.Deleted++
	}

	w.logger.InfoContext(ctx, "Mirror reconciled",
		"source_rows", len(want),
		"appended", res.Appended,
		"deleted", res.Deleted)
	return res, nil
}
