package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Afrothundr/broccoli-scheduler/internal/domain"
)

func trip(items ...domain.Item) domain.GroceryTrip {
	return domain.GroceryTrip{Items: items}
}

func TestUsageRate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		trips    []domain.GroceryTrip
		expected int
		ok       bool
	}{
		{
			name:  "no trips means no rate",
			trips: nil,
			ok:    false,
		},
		{
			name:  "only empty trips means no rate",
			trips: []domain.GroceryTrip{trip(), trip()},
			ok:    false,
		},
		{
			name: "eaten item and untouched item average to fifty percent",
			trips: []domain.GroceryTrip{trip(
				domain.Item{Status: domain.ItemStatusEaten},
				domain.Item{Status: domain.ItemStatusFresh, PercentConsumed: 0},
			)},
			expected: 50,
			ok:       true,
		},
		{
			name: "eaten status overrides recorded consumption",
			trips: []domain.GroceryTrip{trip(
				domain.Item{Status: domain.ItemStatusEaten, PercentConsumed: 10},
			)},
			expected: 100,
			ok:       true,
		},
		{
			name: "partial consumption averages across trips",
			trips: []domain.GroceryTrip{
				trip(domain.Item{Status: domain.ItemStatusFresh, PercentConsumed: 80}),
				trip(domain.Item{Status: domain.ItemStatusOld, PercentConsumed: 20}),
			},
			expected: 50,
			ok:       true,
		},
		{
			name: "empty trips do not dilute the mean",
			trips: []domain.GroceryTrip{
				trip(),
				trip(domain.Item{Status: domain.ItemStatusFresh, PercentConsumed: 75}),
			},
			expected: 75,
			ok:       true,
		},
		{
			name: "result is rounded to the nearest integer",
			trips: []domain.GroceryTrip{trip(
				domain.Item{Status: domain.ItemStatusFresh, PercentConsumed: 33},
				domain.Item{Status: domain.ItemStatusFresh, PercentConsumed: 34},
			)},
			expected: 34, // mean 33.5 rounds up
			ok:       true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rate, ok := UsageRate(tc.trips)

			assert.Equal(t, tc.ok, ok, "ok flag should match")
			assert.Equal(t, tc.expected, rate, "usage rate should match")
			if ok {
				assert.GreaterOrEqual(t, rate, 0, "usage rate should never be negative")
				assert.LessOrEqual(t, rate, 100, "usage rate should never exceed 100")
			}
		})
	}
}

func TestTotalSavings(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		trips    []domain.GroceryTrip
		expected float64
	}{
		{
			name:     "no trips means zero savings",
			trips:    nil,
			expected: 0,
		},
		{
			name:     "only empty trips means zero savings",
			trips:    []domain.GroceryTrip{trip()},
			expected: 0,
		},
		{
			name: "half consumed on a hundred dollar trip",
			trips: []domain.GroceryTrip{trip(
				domain.Item{Status: domain.ItemStatusEaten, Price: 50},
				domain.Item{Status: domain.ItemStatusFresh, PercentConsumed: 0, Price: 50},
			)},
			expected: 16.67, // (0.5 - 1/3) * 100, rounded to cents
		},
		{
			name: "consumption below the baseline floors at zero",
			trips: []domain.GroceryTrip{trip(
				domain.Item{Status: domain.ItemStatusFresh, PercentConsumed: 10, Price: 40},
			)},
			expected: 0,
		},
		{
			name: "everything eaten saves the full margin over the baseline",
			trips: []domain.GroceryTrip{trip(
				domain.Item{Status: domain.ItemStatusEaten, Price: 30},
			)},
			expected: 20, // (1 - 1/3) * 30
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			savings := TotalSavings(tc.trips)

			assert.InDelta(t, tc.expected, savings, 0.001, "savings should match")
			assert.GreaterOrEqual(t, savings, 0.0, "savings should never be negative")
		})
	}
}
