package store

import (
	"context"

	"github.com/Afrothundr/broccoli-scheduler/internal/domain"
)

// UserStore reads users and their inventory for reporting.
type UserStore interface {
	// GetWithItemsAndTrips loads a user with the freshness-relevant slice
	// of their inventory (statuses FRESH, OLD and BAD; exempt categories
	// such as frozen or non-perishable goods excluded) and their full
	// grocery trip history with items. Returns ErrUserNotFound if the user
	// does not exist.
	GetWithItemsAndTrips(ctx context.Context, id int64) (*domain.User, error)

	// List returns all users with their preferences, in store order. Items
	// and trips are not populated.
	List(ctx context.Context) ([]domain.User, error)
}
