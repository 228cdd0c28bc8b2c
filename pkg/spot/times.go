package spot

import (
	"fmt"
	"sort"
	"time"
	_ "time/tzdata"

	"github.com/sahkovertailu/sahkovertailu/pkg/types"
)

// Finnish prices and tariffs use local time.
var helsinkiLocation = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Helsinki")
	if err != nil {
		panic(fmt.Errorf("failed to load helsinki location: %w", err))
	}
	return loc
}()

// Location is the Europe/Helsinki time zone.
func Location() *time.Location {
	return helsinkiLocation
}

// NightWindow is the night period of Finnish time-of-use tariffs, 22-07.
func NightWindow() types.TimeWindow {
	return types.TimeWindow{
		HourStart:   22,
		HourEnd:     7,
		Location:    helsinkiLocation.String(),
		LocationPtr: helsinkiLocation,
	}
}

type hourBucket struct {
	start time.Time
	sum   float64
	count int
}

// hourly averages sub-hourly prices into hourly prices. Prices are expected to
// already be converted to c/kWh.
func hourly(provider, area string, prices []types.SpotPrice) []types.SpotPrice {
	hours := make(map[int64]*hourBucket)
	for _, p := range prices {
		start := p.TSStart.Truncate(time.Hour)
		h, ok := hours[start.Unix()]
		if !ok {
			h = &hourBucket{start: start}
			hours[start.Unix()] = h
		}
		h.sum += p.CentsPerKWH
		h.count++
	}

	out := make([]types.SpotPrice, 0, len(hours))
	for _, h := range hours {
		out = append(out, types.SpotPrice{
			Provider:    provider,
			Area:        area,
			TSStart:     h.start.UTC(),
			TSEnd:       h.start.Add(time.Hour).UTC(),
			CentsPerKWH: h.sum / float64(h.count),
			SampleCount: h.count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TSStart.Before(out[j].TSStart)
	})
	return out
}

// inRange keeps the prices starting in [start, end).
func inRange(prices []types.SpotPrice, start, end time.Time) []types.SpotPrice {
	out := prices[:0]
	for _, p := range prices {
		if p.TSStart.Before(start) || !p.TSStart.Before(end) {
			continue
		}
		out = append(out, p)
	}
	return out
}
