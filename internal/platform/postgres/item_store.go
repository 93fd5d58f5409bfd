package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Afrothundr/broccoli-scheduler/internal/domain"
	"github.com/Afrothundr/broccoli-scheduler/internal/store"
)

// ItemStore implements store.ItemStore using PostgreSQL.
type ItemStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.ItemStore = (*ItemStore)(nil)

// NewItemStore creates a PostgreSQL implementation of store.ItemStore.
// If logger is nil, the default logger is used.
func NewItemStore(db store.DBTX, logger *slog.Logger) *ItemStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ItemStore{
		db:     db,
		logger: logger.With(slog.String("component", "item_store")),
	}
}

// UpdateStatuses implements store.ItemStore.UpdateStatuses. The WHERE
// clause excludes BAD and EATEN rows so the affected count reflects only
// eligible items.
func (s *ItemStore) UpdateStatuses(ctx context.Context, ids []int64, status domain.ItemStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE items
		SET status = $1, updated_at = now()
		WHERE id = ANY($2)
		  AND status NOT IN ('BAD', 'EATEN')`,
		string(status), ids)
	if err != nil {
		return 0, fmt.Errorf("failed to update item statuses: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}
