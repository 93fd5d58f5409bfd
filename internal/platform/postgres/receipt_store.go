package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Afrothundr/broccoli-scheduler/internal/domain"
	"github.com/Afrothundr/broccoli-scheduler/internal/store"
)

// ReceiptStore implements store.ReceiptStore using PostgreSQL.
type ReceiptStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.ReceiptStore = (*ReceiptStore)(nil)

// NewReceiptStore creates a PostgreSQL implementation of store.ReceiptStore.
// If logger is nil, the default logger is used.
func NewReceiptStore(db store.DBTX, logger *slog.Logger) *ReceiptStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReceiptStore{
		db:     db,
		logger: logger.With(slog.String("component", "receipt_store")),
	}
}

// UpdateStatus implements store.ReceiptStore.UpdateStatus.
func (s *ReceiptStore) UpdateStatus(ctx context.Context, id int64, status domain.ReceiptStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE receipts
		SET status = $1, updated_at = now()
		WHERE id = $2`,
		string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update receipt %d status: %w", id, err)
	}
	return requireReceiptRow(res, id)
}

// UpdateScrapedData implements store.ReceiptStore.UpdateScrapedData. Each
// scraped item gets a fresh import id so a later inventory import can
// deduplicate lines.
func (s *ReceiptStore) UpdateScrapedData(ctx context.Context, id int64, items []domain.ScrapedItem) error {
	stamped := make([]domain.ScrapedItem, len(items))
	for i, item := range items {
		item.ImportID = uuid.NewString()
		stamped[i] = item
	}

	data, err := json.Marshal(struct {
		Items []domain.ScrapedItem `json:"items"`
	}{Items: stamped})
	if err != nil {
		return fmt.Errorf("failed to marshal scraped data for receipt %d: %w", id, err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE receipts
		SET scraped_data = $1, updated_at = now()
		WHERE id = $2`,
		data, id)
	if err != nil {
		return fmt.Errorf("failed to update receipt %d scraped data: %w", id, err)
	}
	return requireReceiptRow(res, id)
}

func requireReceiptRow(res interface{ RowsAffected() (int64, error) }, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", store.ErrReceiptNotFound, id)
	}
	return nil
}
