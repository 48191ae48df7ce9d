package trends

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignals_SeedsAndBoosts(t *testing.T) {
	t.Parallel()

	src := NewHeuristicSource(
		map[string]float64{"Samantha": 60, "anasuya": 40},
		map[string]float64{"samantha": 15, "rashmika": 30},
	)

	signals, err := src.Signals(context.Background(), []string{"samantha", "Anasuya", "rashmika"})
	require.NoError(t, err)
	require.Len(t, signals, 3)

	// Sorted by keyword.
	assert.Equal(t, "anasuya", signals[0].Keyword)
	assert.Equal(t, "rashmika", signals[1].Keyword)
	assert.Equal(t, "samantha", signals[2].Keyword)

	assert.Equal(t, 40.0, signals[0].TrendScore)
	assert.Equal(t, defaultSeedScore+30, signals[1].TrendScore) // uncurated seed + boost
	assert.Equal(t, 75.0, signals[2].TrendScore)
}

func TestSignals_ClampAndDedup(t *testing.T) {
	t.Parallel()

	src := NewHeuristicSource(
		map[string]float64{"hot": 95, "cold": 5},
		map[string]float64{"hot": 50, "cold": -40},
	)

	signals, err := src.Signals(context.Background(), []string{"hot", "HOT ", "cold", ""})
	require.NoError(t, err)
	require.Len(t, signals, 2)
	assert.Equal(t, 0.0, signals[0].TrendScore)   // cold floored at 0
	assert.Equal(t, 100.0, signals[1].TrendScore) // hot capped at 100
}

func TestSignals_Deterministic(t *testing.T) {
	t.Parallel()

	src := NewHeuristicSource(map[string]float64{"a": 10, "b": 20}, nil)
	first, err := src.Signals(context.Background(), []string{"b", "a"})
	require.NoError(t, err)
	second, err := src.Signals(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
