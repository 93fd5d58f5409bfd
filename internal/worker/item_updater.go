package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Afrothundr/broccoli-scheduler/internal/queue"
	"github.com/Afrothundr/broccoli-scheduler/internal/store"
)

// ItemUpdateHandler applies batch status updates to inventory items.
type ItemUpdateHandler struct {
	items  store.ItemStore
	logger *slog.Logger
}

var _ Handler = (*ItemUpdateHandler)(nil)

// NewItemUpdateHandler creates the handler for the item updater queue.
// If logger is nil, the default logger is used.
func NewItemUpdateHandler(items store.ItemStore, logger *slog.Logger) *ItemUpdateHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ItemUpdateHandler{
		items:  items,
		logger: logger.With(slog.String("component", "item_update_handler")),
	}
}

// Handle implements Handler. The store excludes items already BAD or EATEN,
// so the affected count reflects only eligible ids; a store failure is
// recoverable and retried.
func (h *ItemUpdateHandler) Handle(ctx context.Context, p queue.Payload) error {
	payload, ok := p.(*queue.ItemUpdatePayload)
	if !ok {
		return Permanent(fmt.Errorf("unexpected payload type %T on %s queue", p, queue.TypeItemUpdater))
	}

	h.logger.Info("updating items", "ids", payload.IDs, "status", payload.Status)

	affected, err := h.items.UpdateStatuses(ctx, payload.IDs, payload.Status)
	if err != nil {
		return fmt.Errorf("failed to update items %v: %w", payload.IDs, err)
	}

	h.logger.Info("items updated",
		"ids", payload.IDs,
		"status", payload.Status,
		"affected", affected)
	return nil
}
