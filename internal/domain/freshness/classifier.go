package freshness

import (
	"fmt"
	"sort"
	"time"

	"github.com/Afrothundr/broccoli-scheduler/internal/domain"
)

// Classification is the three derived views of a user's inventory used by
// the daily report.
type Classification struct {
	// AtRisk holds every item that has not gone bad yet, in input order.
	AtRisk []domain.Item

	// Remove holds the items that have gone bad, in input order.
	Remove []domain.Item

	// EatFirst is AtRisk sorted ascending by expiration instant. The sort is
	// stable: items expiring at the same instant keep their relative input
	// order.
	EatFirst []domain.Item
}

// Classify partitions items into at-risk and to-remove sets and ranks the
// at-risk items by how soon they expire. AtRisk and Remove together are
// exactly the input and never overlap.
//
// Every item must carry at least one item type; the first one determines the
// expiration instant (item type creation time plus suggested life span).
// An item without one fails with domain.ErrMissingItemType.
func Classify(items []domain.Item) (Classification, error) {
	for _, item := range items {
		if len(item.ItemTypes) == 0 {
			return Classification{}, fmt.Errorf("item %d: %w", item.ID, domain.ErrMissingItemType)
		}
	}

	var c Classification
	for _, item := range items {
		if item.Status == domain.ItemStatusBad {
			c.Remove = append(c.Remove, item)
		} else {
			c.AtRisk = append(c.AtRisk, item)
		}
	}

	c.EatFirst = make([]domain.Item, len(c.AtRisk))
	copy(c.EatFirst, c.AtRisk)
	sort.SliceStable(c.EatFirst, func(i, j int) bool {
		return expiresAt(c.EatFirst[i]).Before(expiresAt(c.EatFirst[j]))
	})

	return c, nil
}

// expiresAt computes the expiration instant from the item's first item type.
// Presence of at least one type is checked up front in Classify.
func expiresAt(item domain.Item) time.Time {
	return item.ItemTypes[0].ExpiresAt()
}
