package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Afrothundr/broccoli-scheduler/internal/domain"
	"github.com/Afrothundr/broccoli-scheduler/internal/store"
)

// Item-type categories that never spoil and are therefore excluded from
// freshness reporting.
var exemptItemTypeNames = []string{"Frozen food", "Non-perishable"}

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.UserStore = (*UserStore)(nil)

// NewUserStore creates a PostgreSQL implementation of store.UserStore.
// If logger is nil, the default logger is used.
func NewUserStore(db store.DBTX, logger *slog.Logger) *UserStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// GetWithItemsAndTrips implements store.UserStore.GetWithItemsAndTrips.
func (s *UserStore) GetWithItemsAndTrips(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Items, err = s.freshnessItems(ctx, id); err != nil {
		return nil, err
	}
	if user.GroceryTrips, err = s.tripsWithItems(ctx, id); err != nil {
		return nil, err
	}
	return user, nil
}

// List implements store.UserStore.List.
func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.email,
		       COALESCE(p.notifications_enabled, false),
		       COALESCE(p.email_frequency, 'daily')
		FROM users u
		LEFT JOIN user_preferences p ON p.user_id = u.id
		ORDER BY u.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		var freq string
		if err := rows.Scan(&u.ID, &u.Email, &u.Preferences.NotificationsEnabled, &freq); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		u.Preferences.EmailFrequency = domain.EmailFrequency(freq)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}
	return users, nil
}

func (s *UserStore) getUser(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	var freq string
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.email,
		       COALESCE(p.notifications_enabled, false),
		       COALESCE(p.email_frequency, 'daily')
		FROM users u
		LEFT JOIN user_preferences p ON p.user_id = u.id
		WHERE u.id = $1`, id).
		Scan(&u.ID, &u.Email, &u.Preferences.NotificationsEnabled, &freq)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", store.ErrUserNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", id, err)
	}
	u.Preferences.EmailFrequency = domain.EmailFrequency(freq)
	return &u, nil
}

// freshnessItems loads the user's items that matter for the daily report:
// statuses FRESH, OLD and BAD, excluding items carrying an exempt item
// type. Item types are loaded per item, ordered so the first one is the
// authoritative source for expiration.
func (s *UserStore) freshnessItems(ctx context.Context, userID int64) ([]domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.name, i.status, i.percent_consumed, i.price
		FROM items i
		WHERE i.user_id = $1
		  AND i.status IN ('FRESH', 'OLD', 'BAD')
		  AND NOT EXISTS (
			SELECT 1
			FROM items_item_types iit
			JOIN item_types t ON t.id = iit.item_type_id
			WHERE iit.item_id = i.id AND t.name = ANY($2)
		  )
		ORDER BY i.id`, userID, exemptItemTypeNames)
	if err != nil {
		return nil, fmt.Errorf("failed to load items for user %d: %w", userID, err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ItemTypes, err = s.itemTypes(ctx, items[i].ID); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (s *UserStore) itemTypes(ctx context.Context, itemID int64) ([]domain.ItemType, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.created_at, t.suggested_life_span_seconds, t.storage_advice
		FROM item_types t
		JOIN items_item_types iit ON iit.item_type_id = t.id
		WHERE iit.item_id = $1
		ORDER BY iit.position, t.id`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item types for item %d: %w", itemID, err)
	}
	defer rows.Close()

	var types []domain.ItemType
	for rows.Next() {
		var t domain.ItemType
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.SuggestedLifeSpanSeconds, &t.StorageAdvice); err != nil {
			return nil, fmt.Errorf("failed to scan item type row: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate item type rows: %w", err)
	}
	return types, nil
}

func (s *UserStore) tripsWithItems(ctx context.Context, userID int64) ([]domain.GroceryTrip, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at
		FROM grocery_trips
		WHERE user_id = $1
		ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trips for user %d: %w", userID, err)
	}
	defer rows.Close()

	var trips []domain.GroceryTrip
	for rows.Next() {
		var trip domain.GroceryTrip
		if err := rows.Scan(&trip.ID, &trip.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trip row: %w", err)
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trip rows: %w", err)
	}

	for i := range trips {
		itemRows, err := s.db.QueryContext(ctx, `
			SELECT id, name, status, percent_consumed, price
			FROM items
			WHERE grocery_trip_id = $1
			ORDER BY id`, trips[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load items for trip %d: %w", trips[i].ID, err)
		}
		trips[i].Items, err = scanItems(itemRows)
		itemRows.Close()
		if err != nil {
			return nil, err
		}
	}
	return trips, nil
}

func scanItems(rows *sql.Rows) ([]domain.Item, error) {
	var items []domain.Item
	for rows.Next() {
		var item domain.Item
		var status string
		if err := rows.Scan(&item.ID, &item.Name, &status, &item.PercentConsumed, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		item.Status = domain.ItemStatus(status)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate item rows: %w", err)
	}
	return items, nil
}
