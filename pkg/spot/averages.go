package spot

import (
	"github.com/sahkovertailu/sahkovertailu/pkg/types"
)

// Averages splits the prices into the night window and the rest of the day
// and averages each. A side without samples is left nil so the pricing treats
// it as unknown.
func Averages(area string, prices []types.SpotPrice, night types.TimeWindow) (types.SpotAverages, error) {
	avg := types.SpotAverages{Area: area}

	var daySum, nightSum float64
	var dayCount, nightCount int
	for _, p := range prices {
		isNight, err := night.Contains(p.TSStart)
		if err != nil {
			return types.SpotAverages{}, err
		}
		if isNight {
			nightSum += p.CentsPerKWH
			nightCount++
		} else {
			daySum += p.CentsPerKWH
			dayCount++
		}

		if avg.Start.IsZero() || p.TSStart.Before(avg.Start) {
			avg.Start = p.TSStart
		}
		if p.TSEnd.After(avg.End) {
			avg.End = p.TSEnd
		}
	}

	if dayCount > 0 {
		v := daySum / float64(dayCount)
		avg.Day = &v
	}
	if nightCount > 0 {
		v := nightSum / float64(nightCount)
		avg.Night = &v
	}
	avg.SampleCount = dayCount + nightCount
	return avg, nil
}
