package report

import (
	"fmt"
	"time"

	"github.com/Afrothundr/broccoli-scheduler/internal/domain"
)

// maxCards caps how many items each report section shows.
const maxCards = 3

// RecipeSuggestion is the optional recipe block of the report.
type RecipeSuggestion struct {
	Title           string
	UsedIngredients []string
	SourceURL       string
}

// Data is everything the daily report template needs. UsageRate is a
// display value: when the underlying statistic is undefined it is simply 0,
// matching how the report has always rendered the empty-history case.
type Data struct {
	EatFirst  []domain.Item
	Remove    []domain.Item
	UsageRate int
	Savings   float64
	Recipe    *RecipeSuggestion
}

// NewData builds report data from the classifier output and the analytics
// results, capping each card section.
func NewData(eatFirst, remove []domain.Item, usageRate int, savings float64, recipe *RecipeSuggestion) Data {
	return Data{
		EatFirst:  capItems(eatFirst),
		Remove:    capItems(remove),
		UsageRate: usageRate,
		Savings:   savings,
		Recipe:    recipe,
	}
}

// Subject returns the email subject line for the given report date.
func Subject(date time.Time) string {
	return fmt.Sprintf("Pantry Report for %s", date.Format("January 2, 2006"))
}

// Empty reports whether there is nothing worth emailing: no items to eat
// soon and nothing to throw out.
func (d Data) Empty() bool {
	return len(d.EatFirst) == 0 && len(d.Remove) == 0
}

func capItems(items []domain.Item) []domain.Item {
	if len(items) > maxCards {
		return items[:maxCards]
	}
	return items
}
