package rating

import (
	"math"

	"nestly/models"
)

// Fold adds one rating to agg. The running total is kept exactly, so the
// stored average never accumulates rounding drift. Profiles written before
// the total was tracked get it derived once from the rounded average.
func Fold(agg models.RatingAggregate, value int) models.RatingAggregate {
	total := agg.RatingTotal
	if total == 0 && agg.ReviewCount > 0 {
		total = LegacyTotal(agg.Rating, agg.ReviewCount)
	}
	count := agg.ReviewCount + 1
	total += value
	return models.RatingAggregate{
		Rating:      RoundedMean(total, count),
		ReviewCount: count,
		RatingTotal: total,
	}
}

// RoundedMean returns total/count rounded half up to two decimals, computed
// in integers. It returns 0 when count is 0.
func RoundedMean(total, count int) float64 {
	if count <= 0 {
		return 0
	}
	hundredths := (total*200 + count) / (2 * count)
	return float64(hundredths) / 100
}

// LegacyTotal recovers a ratings sum from a stored average and count.
func LegacyTotal(avg float64, count int) int {
	return int(math.Round(avg * float64(count)))
}
