package domain

import "time"

// GroceryTrip is one historical shopping trip and the items bought on it.
// Trips are append-only as far as analytics are concerned.
type GroceryTrip struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Items     []Item    `json:"items"`
}
