package store

import (
	"context"

	"github.com/Afrothundr/broccoli-scheduler/internal/domain"
)

// ReceiptStore mutates receipts on behalf of the image-processing job.
type ReceiptStore interface {
	// UpdateStatus moves a receipt to the given status. Returns
	// ErrReceiptNotFound if the receipt does not exist.
	UpdateStatus(ctx context.Context, id int64, status domain.ReceiptStatus) error

	// UpdateScrapedData stores the OCR result on the receipt. Each item is
	// assigned a fresh import id before persisting. Returns
	// ErrReceiptNotFound if the receipt does not exist.
	UpdateScrapedData(ctx context.Context, id int64, items []domain.ScrapedItem) error
}
