package domain

// EmailFrequency controls how often a user receives pantry reports.
type EmailFrequency string

// Possible email frequency values. Daily is the default when a preference
// record is missing or empty.
const (
	EmailFrequencyDaily   EmailFrequency = "daily"
	EmailFrequencyWeekly  EmailFrequency = "weekly"
	EmailFrequencyMonthly EmailFrequency = "monthly"
)

// UserPreferences holds the notification settings consumed by the report
// scheduler.
type UserPreferences struct {
	NotificationsEnabled bool           `json:"notifications_enabled"`
	EmailFrequency       EmailFrequency `json:"email_frequency"`
}

// User is an account with its inventory and trip history. Items and
// GroceryTrips are only populated by store methods that say so.
type User struct {
	ID           int64           `json:"id"`
	Email        string          `json:"email"`
	Preferences  UserPreferences `json:"preferences"`
	Items        []Item          `json:"items,omitempty"`
	GroceryTrips []GroceryTrip   `json:"grocery_trips,omitempty"`
}
