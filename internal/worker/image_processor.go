package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Afrothundr/broccoli-scheduler/internal/domain"
	"github.com/Afrothundr/broccoli-scheduler/internal/queue"
	"github.com/Afrothundr/broccoli-scheduler/internal/store"
)

// ReceiptScraper is the OCR collaborator contract: it turns a receipt image
// URL into structured line items.
type ReceiptScraper interface {
	Scrape(ctx context.Context, url string, receiptID int64) ([]domain.ScrapedItem, error)
}

// ImageProcessHandler runs a receipt image through the OCR collaborator and
// persists the result.
type ImageProcessHandler struct {
	scraper  ReceiptScraper
	receipts store.ReceiptStore
	logger   *slog.Logger
}

var _ Handler = (*ImageProcessHandler)(nil)

// NewImageProcessHandler creates the handler for the image processor queue.
// If logger is nil, the default logger is used.
func NewImageProcessHandler(scraper ReceiptScraper, receipts store.ReceiptStore, logger *slog.Logger) *ImageProcessHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageProcessHandler{
		scraper:  scraper,
		receipts: receipts,
		logger:   logger.With(slog.String("component", "image_process_handler")),
	}
}

// Handle implements Handler. Any failure (OCR call, scraped-data persist,
// or the final status flip) marks the receipt ERROR exactly once and ends
// the job permanently: a receipt in a terminal state must not be reprocessed
// by a retry.
func (h *ImageProcessHandler) Handle(ctx context.Context, p queue.Payload) error {
	payload, ok := p.(*queue.ImageProcessPayload)
	if !ok {
		return Permanent(fmt.Errorf("unexpected payload type %T on %s queue", p, queue.TypeImageProcessor))
	}

	logger := h.logger.With(
		slog.Int64("receipt_id", payload.ReceiptID),
		slog.String("url", payload.URL))
	logger.Info("processing receipt image")

	items, err := h.scraper.Scrape(ctx, payload.URL, payload.ReceiptID)
	if err != nil {
		return h.failReceipt(ctx, payload.ReceiptID, fmt.Errorf("failed to scrape receipt image: %w", err), logger)
	}

	if err := h.receipts.UpdateScrapedData(ctx, payload.ReceiptID, items); err != nil {
		return h.failReceipt(ctx, payload.ReceiptID, fmt.Errorf("failed to store scraped data: %w", err), logger)
	}

	if err := h.receipts.UpdateStatus(ctx, payload.ReceiptID, domain.ReceiptStatusImported); err != nil {
		return h.failReceipt(ctx, payload.ReceiptID, fmt.Errorf("failed to mark receipt imported: %w", err), logger)
	}

	logger.Info("receipt imported", "item_count", len(items))
	return nil
}

// failReceipt marks the receipt ERROR and converts the cause into a
// permanent failure. The ERROR write happens on exactly one code path per
// invocation; if the write itself fails there is nothing more to do than
// log it.
func (h *ImageProcessHandler) failReceipt(ctx context.Context, receiptID int64, cause error, logger *slog.Logger) error {
	logger.Error("receipt processing failed", "error", cause)
	if err := h.receipts.UpdateStatus(ctx, receiptID, domain.ReceiptStatusError); err != nil {
		logger.Error("failed to mark receipt ERROR", "error", err)
	}
	return Permanent(cause)
}
