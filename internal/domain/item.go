package domain

import "time"

// ItemStatus represents the freshness state of an inventory item.
type ItemStatus string

// Possible item status values. BAD and EATEN are terminal from the point of
// view of batch status updates: an update job never resurrects either.
const (
	ItemStatusFresh ItemStatus = "FRESH"
	ItemStatusOld   ItemStatus = "OLD"
	ItemStatusBad   ItemStatus = "BAD"
	ItemStatusEaten ItemStatus = "EATEN"
)

// ParseItemStatus converts a string into an ItemStatus.
// Returns ErrUnknownItemStatus for anything outside the enum.
func ParseItemStatus(s string) (ItemStatus, error) {
	switch ItemStatus(s) {
	case ItemStatusFresh, ItemStatusOld, ItemStatusBad, ItemStatusEaten:
		return ItemStatus(s), nil
	default:
		return "", ErrUnknownItemStatus
	}
}

// ItemType carries the shelf-life metadata an item's expiration is computed
// from, plus the storage advice shown in reports.
type ItemType struct {
	ID                       int64     `json:"id"`
	Name                     string    `json:"name"`
	CreatedAt                time.Time `json:"created_at"`
	SuggestedLifeSpanSeconds int64     `json:"suggested_life_span_seconds"`
	StorageAdvice            string    `json:"storage_advice"`
}

// ExpiresAt returns the instant the item type's suggested life span runs out.
func (t ItemType) ExpiresAt() time.Time {
	return t.CreatedAt.Add(time.Duration(t.SuggestedLifeSpanSeconds) * time.Second)
}

// Item is a single tracked inventory item. PercentConsumed is in [0,100].
// An item may carry several item types; the first one is authoritative for
// expiration.
type Item struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Status          ItemStatus `json:"status"`
	PercentConsumed float64    `json:"percent_consumed"`
	Price           float64    `json:"price"`
	ItemTypes       []ItemType `json:"item_types"`
}

// PercentRemaining returns how much of the item is left, for display.
func (i Item) PercentRemaining() float64 {
	return 100 - i.PercentConsumed
}
