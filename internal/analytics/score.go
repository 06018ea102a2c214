package analytics

import (
	"time"

	"github.com/lacarte-io/lacarte/internal/domain"
)

// Score weights. Orders and revenue are stronger popularity signals than
// raw views; the weighted sum stays monotonic in all three counters.
const (
	WeightView    = 1.0
	WeightOrder   = 10.0
	WeightRevenue = 0.1

	// Trend decay: 10% per full day since the last recomputation,
	// floored so stale products never collapse to zero.
	DecayPerDay = 0.1
	DecayFloor  = 0.1
)

// PopularityScore computes the weighted linear score from raw counters.
func PopularityScore(viewCount, orderCount int64, totalRevenue float64) float64 {
	return float64(viewCount)*WeightView + float64(orderCount)*WeightOrder + totalRevenue*WeightRevenue
}

// DecayFactor returns the linear time-decay factor for a row last
// recomputed at lastUpdated, evaluated at now. Whole days only.
func DecayFactor(lastUpdated, now time.Time) float64 {
	if lastUpdated.IsZero() || !now.After(lastUpdated) {
		return 1.0
	}
	days := int64(now.Sub(lastUpdated).Hours() / 24)
	factor := 1.0 - float64(days)*DecayPerDay
	if factor < DecayFloor {
		factor = DecayFloor
	}
	return factor
}

// ApplyView folds one new view event into a popularity row and refreshes
// both derived scores. The decay anchor is the previous LastUpdated; the
// returned row is stamped at now.
func ApplyView(pop domain.ProductPopularity, now time.Time) domain.ProductPopularity {
	pop.ViewCount++
	pop.PopularityScore = PopularityScore(pop.ViewCount, pop.OrderCount, pop.TotalRevenue)
	pop.TrendScore = pop.PopularityScore * DecayFactor(pop.LastUpdated, now)
	pop.LastUpdated = now
	return pop
}

// ApplyOrder folds one order event (with its revenue) into a popularity
// row, same contract as ApplyView.
func ApplyOrder(pop domain.ProductPopularity, amount float64, now time.Time) domain.ProductPopularity {
	pop.OrderCount++
	if amount > 0 {
		pop.TotalRevenue += amount
	}
	pop.PopularityScore = PopularityScore(pop.ViewCount, pop.OrderCount, pop.TotalRevenue)
	pop.TrendScore = pop.PopularityScore * DecayFactor(pop.LastUpdated, now)
	pop.LastUpdated = now
	return pop
}

// RefreshTrend re-evaluates only the decayed trend score without touching
// the counters or the decay anchor, so products keep decaying between
// events.
func RefreshTrend(pop domain.ProductPopularity, now time.Time) domain.ProductPopularity {
	pop.PopularityScore = PopularityScore(pop.ViewCount, pop.OrderCount, pop.TotalRevenue)
	pop.TrendScore = pop.PopularityScore * DecayFactor(pop.LastUpdated, now)
	return pop
}
