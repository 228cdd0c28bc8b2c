package spot

import (
	"testing"
	"time"

	"github.com/sahkovertailu/sahkovertailu/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourPrice(start time.Time, cents float64) types.SpotPrice {
	return types.SpotPrice{
		TSStart:     start,
		TSEnd:       start.Add(time.Hour),
		CentsPerKWH: cents,
	}
}

func TestNightWindow(t *testing.T) {
	night := NightWindow()
	tests := []struct {
		t     time.Time
		night bool
	}{
		// Helsinki is UTC+2 in January and UTC+3 in July
		{time.Date(2024, 1, 15, 19, 0, 0, 0, time.UTC), false},
		{time.Date(2024, 1, 15, 20, 0, 0, 0, time.UTC), true},
		{time.Date(2024, 1, 15, 23, 0, 0, 0, time.UTC), true},
		{time.Date(2024, 1, 16, 4, 0, 0, 0, time.UTC), true},
		{time.Date(2024, 1, 16, 5, 0, 0, 0, time.UTC), false},
		{time.Date(2024, 7, 15, 19, 0, 0, 0, time.UTC), true},
		{time.Date(2024, 7, 16, 4, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		got, err := night.Contains(tt.t)
		require.NoError(t, err)
		assert.Equal(t, tt.night, got, tt.t.String())
	}
}

func TestAverages(t *testing.T) {
	base := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	prices := []types.SpotPrice{
		hourPrice(base.Add(10*time.Hour), 10),
		hourPrice(base.Add(20*time.Hour), 2),
		hourPrice(base.Add(28*time.Hour), 4),
		hourPrice(base.Add(29*time.Hour), 20),
	}

	avg, err := Averages(types.SpotAreaFinland, prices, NightWindow())
	require.NoError(t, err)
	require.NotNil(t, avg.Day)
	require.NotNil(t, avg.Night)
	assert.InDelta(t, 15.0, *avg.Day, 1e-9)
	assert.InDelta(t, 3.0, *avg.Night, 1e-9)
	assert.Equal(t, 4, avg.SampleCount)
	assert.Equal(t, base.Add(10*time.Hour), avg.Start)
	assert.Equal(t, base.Add(30*time.Hour), avg.End)
	assert.Equal(t, types.SpotAreaFinland, avg.Area)

	t.Run("empty", func(t *testing.T) {
		avg, err := Averages(types.SpotAreaFinland, nil, NightWindow())
		require.NoError(t, err)
		assert.Nil(t, avg.Day)
		assert.Nil(t, avg.Night)
		assert.Zero(t, avg.SampleCount)
	})

	t.Run("only day", func(t *testing.T) {
		avg, err := Averages(types.SpotAreaFinland, prices[:1], NightWindow())
		require.NoError(t, err)
		assert.NotNil(t, avg.Day)
		assert.Nil(t, avg.Night)
	})

	t.Run("bad location", func(t *testing.T) {
		_, err := Averages(types.SpotAreaFinland, prices, types.TimeWindow{HourStart: 22, HourEnd: 7, Location: "Nowhere/Special"})
		assert.Error(t, err)
	})
}
