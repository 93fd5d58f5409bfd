package analytics

import (
	"math"

	"github.com/Afrothundr/broccoli-scheduler/internal/domain"
)

// UsageRate reports how much of their purchased food a user actually
// consumes, as an integer percentage in [0,100].
//
// Each item contributes a consumption fraction: 1.0 when eaten, otherwise
// its consumed percentage scaled to [0,1]. A trip's consumption is the mean
// of its item fractions. The usage rate is the mean of the qualifying trips'
// consumption, scaled to a percentage and rounded.
//
// Trips with no items are excluded entirely. When no trips qualify the rate
// is undefined and ok is false; callers choose how to display the absence.
func UsageRate(trips []domain.GroceryTrip) (rate int, ok bool) {
	var sum float64
	var qualifying int
	for _, trip := range trips {
		if len(trip.Items) == 0 {
			continue
		}
		sum += tripConsumption(trip)
		qualifying++
	}
	if qualifying == 0 {
		return 0, false
	}
	return int(math.Round(sum / float64(qualifying) * 100)), true
}

// tripConsumption returns the mean consumption fraction for one trip.
func tripConsumption(trip domain.GroceryTrip) float64 {
	var consumed float64
	for _, item := range trip.Items {
		consumed += itemFraction(item)
	}
	divisor := float64(len(trip.Items))
	if divisor == 0 {
		divisor = 1
	}
	return consumed / divisor
}

// itemFraction is the consumption fraction of a single item.
func itemFraction(item domain.Item) float64 {
	if item.Status == domain.ItemStatusEaten {
		return 1
	}
	return item.PercentConsumed / 100
}
