package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lacarte-io/lacarte/internal/domain"
)

func TestPopularityScoreWeights(t *testing.T) {
	assert.Equal(t, 0.0, PopularityScore(0, 0, 0))
	assert.Equal(t, 1.0, PopularityScore(1, 0, 0))
	assert.Equal(t, 10.0, PopularityScore(0, 1, 0))
	assert.Equal(t, 1.0, PopularityScore(0, 0, 10))
	assert.Equal(t, 121.0, PopularityScore(10, 10, 110))
}

func TestApplyViewSameDay(t *testing.T) {
	now := time.Now()
	pop := domain.ProductPopularity{
		ProductID:    1,
		ViewCount:    0,
		OrderCount:   5,
		TotalRevenue: 100,
		LastUpdated:  now.Add(-time.Hour),
	}

	next := ApplyView(pop, now)

	require.EqualValues(t, 1, next.ViewCount)
	assert.InDelta(t, 61.0, next.PopularityScore, 1e-9)
	assert.InDelta(t, 61.0, next.TrendScore, 1e-9)
	assert.Equal(t, now, next.LastUpdated)
}

func TestApplyViewMonotonicSameDay(t *testing.T) {
	now := time.Now()
	pop := domain.ProductPopularity{ProductID: 1, LastUpdated: now}

	prev := pop.PopularityScore
	for i := 0; i < 10; i++ {
		pop = ApplyView(pop, now)
		assert.Greater(t, pop.PopularityScore, prev)
		prev = pop.PopularityScore
	}
	assert.EqualValues(t, 10, pop.ViewCount)
}

func TestApplyOrderAccumulatesRevenue(t *testing.T) {
	now := time.Now()
	pop := domain.ProductPopularity{ProductID: 1, LastUpdated: now}

	pop = ApplyOrder(pop, 25.50, now)
	pop = ApplyOrder(pop, 0, now)
	pop = ApplyOrder(pop, -3, now)

	assert.EqualValues(t, 3, pop.OrderCount)
	assert.InDelta(t, 25.50, pop.TotalRevenue, 1e-9)
	assert.InDelta(t, 3*10+25.50*0.1, pop.PopularityScore, 1e-9)
}

func TestDecayFactor(t *testing.T) {
	now := time.Now()

	assert.Equal(t, 1.0, DecayFactor(time.Time{}, now))
	assert.Equal(t, 1.0, DecayFactor(now, now))
	assert.Equal(t, 1.0, DecayFactor(now.Add(time.Hour), now))

	// partial days do not decay
	assert.Equal(t, 1.0, DecayFactor(now.Add(-23*time.Hour), now))

	assert.InDelta(t, 0.9, DecayFactor(now.AddDate(0, 0, -1), now), 1e-9)
	assert.InDelta(t, 0.5, DecayFactor(now.AddDate(0, 0, -5), now), 1e-9)
}

func TestDecayFactorFloor(t *testing.T) {
	now := time.Now()
	for _, days := range []int{9, 10, 30, 365} {
		factor := DecayFactor(now.AddDate(0, 0, -days), now)
		assert.InDelta(t, DecayFloor, factor, 1e-9, "days=%d", days)
	}
}

func TestRefreshTrendKeepsCountersAndAnchor(t *testing.T) {
	anchor := time.Now().AddDate(0, 0, -2)
	pop := domain.ProductPopularity{
		ProductID:    7,
		ViewCount:    10,
		OrderCount:   2,
		TotalRevenue: 50,
		LastUpdated:  anchor,
	}
	now := time.Now()

	next := RefreshTrend(pop, now)

	assert.EqualValues(t, 10, next.ViewCount)
	assert.EqualValues(t, 2, next.OrderCount)
	assert.Equal(t, anchor, next.LastUpdated)
	assert.InDelta(t, 35.0, next.PopularityScore, 1e-9)
	assert.InDelta(t, 35.0*0.8, next.TrendScore, 1e-9)
}
