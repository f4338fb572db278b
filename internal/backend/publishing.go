package backend

import (
	"context"
	"log/slog"

	"warikan/internal/amqp"
	"warikan/internal/sheets"
)

// Publisher sends row events to the mirror queue.
type Publisher interface {
	PublishRowEvent(ctx context.Context, e *amqp.RowEvent) error
}

// PublishingStore writes to the primary store and then announces the
// change. Publish failures are logged and never fail the write; the
// primary store stays authoritative.
type PublishingStore struct {
	sheets.RowStore
	publisher Publisher
	logger    *slog.Logger
}

func NewPublishingStore(store sheets.RowStore, publisher Publisher, logger *slog.Logger) *PublishingStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublishingStore{RowStore: store, publisher: publisher, logger: logger}
}

func (s *PublishingStore) AppendRow(ctx context.Context, r sheets.Row) error {
	if err := s.RowStore.AppendRow(ctx, r); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewAppendEvent(r))
	return nil
}

func (s *PublishingStore) DeleteRowByID(ctx context.Context, id string) (bool, error) {
	found, err := s.RowStore.DeleteRowByID(ctx, id)
	if err != nil || !found {
		return found, err
	}
	s.publish(ctx, amqp.NewDeleteEvent(id))
	return true, nil
}

func (s *PublishingStore) publish(ctx context.Context, e *amqp.RowEvent) {
	if err := s.publisher.PublishRowEvent(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish row event",
			"op", e.Op, "id", e.Row.ID, "error", err)
	}
}
