package store

import (
	"context"

	"github.com/Afrothundr/broccoli-scheduler/internal/domain"
)

// ItemStore mutates inventory items on behalf of update jobs.
type ItemStore interface {
	// UpdateStatuses moves the given items to a new status and returns how
	// many rows changed. Items already BAD or EATEN are excluded from the
	// update: a batch job must never resurrect a consumed or spoiled item,
	// so the affected count reflects only eligible ids.
	UpdateStatuses(ctx context.Context, ids []int64, status domain.ItemStatus) (int64, error)
}
