package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardOrdering(t *testing.T) {
	board := NewLeaderboard(10)
	board.Update(1, 5)
	board.Update(2, 50)
	board.Update(3, 20)

	top := board.TopN(3)
	require.Len(t, top, 3)
	assert.EqualValues(t, 2, top[0].ProductID)
	assert.EqualValues(t, 3, top[1].ProductID)
	assert.EqualValues(t, 1, top[2].ProductID)
}

func TestLeaderboardUpdateReplaces(t *testing.T) {
	board := NewLeaderboard(10)
	board.Update(1, 5)
	board.Update(1, 99)

	assert.Equal(t, 1, board.Len())
	top := board.TopN(1)
	require.Len(t, top, 1)
	assert.InDelta(t, 99.0, top[0].TrendScore, 1e-9)
}

func TestLeaderboardCapacityTrimsLowest(t *testing.T) {
	board := NewLeaderboard(3)
	for id := int64(1); id <= 5; id++ {
		board.Update(id, float64(id))
	}

	assert.Equal(t, 3, board.Len())
	top := board.TopN(10)
	require.Len(t, top, 3)
	assert.EqualValues(t, 5, top[0].ProductID)
	assert.EqualValues(t, 3, top[2].ProductID)
}

func TestLeaderboardRemove(t *testing.T) {
	board := NewLeaderboard(10)
	board.Update(1, 10)
	board.Update(2, 20)

	board.Remove(2)
	board.Remove(404)

	assert.Equal(t, 1, board.Len())
	top := board.TopN(10)
	require.Len(t, top, 1)
	assert.EqualValues(t, 1, top[0].ProductID)
}

func TestLeaderboardTopNOnEmpty(t *testing.T) {
	board := NewLeaderboard(10)
	assert.Empty(t, board.TopN(5))
}
