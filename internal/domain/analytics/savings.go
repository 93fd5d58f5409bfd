package analytics

import (
	"math"

	"github.com/Afrothundr/broccoli-scheduler/internal/domain"
)

// baselineLoss is the assumed fraction of purchased food a household wastes
// without tracking. Savings are measured against it.
const baselineLoss = 1.0 / 3.0

// TotalSavings estimates the money a user saved by consuming more of their
// food than the assumed baseline waste.
//
// The mean trip consumption (same per-item fractions as UsageRate) is
// reduced by the baseline loss to get a savings percentage, which is applied
// to the total cost of all qualifying trips and averaged per trip. The
// result is floored at 0 and rounded to 2 decimal places.
//
// With zero qualifying trips the result is exactly 0. This deliberately
// differs from UsageRate's undefined result: savings is a display-safe
// dollar figure, not a statistic.
func TotalSavings(trips []domain.GroceryTrip) float64 {
	var consumption, totalCost float64
	var qualifying int
	for _, trip := range trips {
		if len(trip.Items) == 0 {
			continue
		}
		consumption += tripConsumption(trip)
		for _, item := range trip.Items {
			totalCost += item.Price
		}
		qualifying++
	}

	averageConsumed := consumption / float64(qualifying)
	savingsPercentage := averageConsumed - baselineLoss
	averageSaved := totalCost * savingsPercentage / float64(qualifying)

	if math.IsNaN(averageSaved) || averageSaved < 0 {
		return 0
	}
	return math.Round(averageSaved*100) / 100
}
