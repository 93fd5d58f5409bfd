package queue

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Afrothundr/broccoli-scheduler/internal/domain"
)

// Type identifies one of the independent job queues. Queues never
// interleave payload kinds.
type Type string

// The closed set of queue types.
const (
	TypeItemUpdater    Type = "item_updater"
	TypeImageProcessor Type = "image_processor"
	TypeDailyReporter  Type = "daily_reporter"
)

// Types returns all queue types, in routing-registration order.
func Types() []Type {
	return []Type{TypeItemUpdater, TypeImageProcessor, TypeDailyReporter}
}

// Payload is one variant of the closed set of job payloads. Each variant
// knows the single queue it belongs on.
type Payload interface {
	Queue() Type
}

// ItemUpdatePayload asks the item updater to move a batch of items to a new
// status. Items already BAD or EATEN are excluded from the update.
type ItemUpdatePayload struct {
	IDs    []int64           `json:"ids"    validate:"required,min=1,dive,gt=0"`
	Status domain.ItemStatus `json:"status" validate:"required,oneof=FRESH OLD BAD EATEN"`
}

// Queue implements Payload.
func (ItemUpdatePayload) Queue() Type { return TypeItemUpdater }

// ImageProcessPayload asks the image processor to scrape a receipt image
// through the OCR collaborator.
type ImageProcessPayload struct {
	ReceiptID int64  `json:"receiptId" validate:"required,gt=0"`
	URL       string `json:"url"       validate:"required,url"`
}

// Queue implements Payload.
func (ImageProcessPayload) Queue() Type { return TypeImageProcessor }

// DailyReportPayload asks the daily reporter to compile and send one user's
// pantry report.
type DailyReportPayload struct {
	UserID int64 `json:"id" validate:"required,gt=0"`
}

// Queue implements Payload.
func (DailyReportPayload) Queue() Type { return TypeDailyReporter }

// EncodePayload serializes a payload for storage in an envelope.
func EncodePayload(p Payload) (json.RawMessage, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return data, nil
}

// DecodePayload deserializes raw payload bytes into the variant belonging
// to the given queue type. Decoding is strict: unknown fields fail rather
// than being silently dropped, which catches malformed payloads at decode
// time instead of at use time.
func DecodePayload(t Type, raw json.RawMessage) (Payload, error) {
	var p Payload
	switch t {
	case TypeItemUpdater:
		p = &ItemUpdatePayload{}
	case TypeImageProcessor:
		p = &ImageProcessPayload{}
	case TypeDailyReporter:
		p = &DailyReportPayload{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownQueue, t)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("%w: decoding %s payload: %v", ErrPayloadMismatch, t, err)
	}
	return p, nil
}
