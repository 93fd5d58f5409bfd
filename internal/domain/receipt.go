package domain

import "encoding/json"

// ReceiptStatus represents the import state of a scanned receipt.
type ReceiptStatus string

// Possible receipt status values. IMPORTED and ERROR are terminal.
const (
	ReceiptStatusPending  ReceiptStatus = "PENDING"
	ReceiptStatusImported ReceiptStatus = "IMPORTED"
	ReceiptStatusError    ReceiptStatus = "ERROR"
)

// Receipt is a scanned receipt image awaiting OCR import.
type Receipt struct {
	ID          int64           `json:"id"`
	Status      ReceiptStatus   `json:"status"`
	ScrapedData json.RawMessage `json:"scraped_data,omitempty"`
}

// ScrapedItemType is the item-type hint the OCR service attaches to a line.
type ScrapedItemType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ScrapedItem is one line item extracted from a receipt by the OCR service.
// ImportID is assigned on our side before the data is persisted so that a
// later inventory import can deduplicate lines.
type ScrapedItem struct {
	ImportID  string            `json:"importId,omitempty"`
	Name      string            `json:"name,omitempty"`
	Price     float64           `json:"price,omitempty"`
	Quantity  float64           `json:"quantity,omitempty"`
	Unit      string            `json:"unit,omitempty"`
	ItemTypes []ScrapedItemType `json:"itemTypes,omitempty"`
}
