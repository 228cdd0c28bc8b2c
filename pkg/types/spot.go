package types

import (
	"fmt"
	"time"
)

const (
	CurrentSpotPriceVersion = 1

	// SpotAreaFinland is the Nord Pool bidding zone for Finland.
	SpotAreaFinland = "FI"
)

// SpotPrice is the day-ahead market price of electricity in a time interval.
type SpotPrice struct {
	Provider string    `json:"provider"`
	Area     string    `json:"area"`
	TSStart  time.Time `json:"tsStart"`
	TSEnd    time.Time `json:"tsEnd"`

	// CentsPerKWH is the consumer price including VAT.
	CentsPerKWH float64 `json:"centsPerKWH"`

	// SampleCount is how many market intervals were averaged into this price.
	SampleCount int `json:"sampleCount,omitempty"`
}

// SpotAverages are the average spot prices of the day and night windows over
// some period. Day or Night is nil if there were no samples in that window.
type SpotAverages struct {
	Area        string    `json:"area"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Day         *float64  `json:"day"`
	Night       *float64  `json:"night"`
	SampleCount int       `json:"sampleCount"`
}

// TimeWindow is a daily window of hours in a location. HourStart is inclusive
// and HourEnd exclusive. A window with HourStart > HourEnd wraps past
// midnight, e.g. 22-7.
type TimeWindow struct {
	HourStart   int            `json:"hourStart"`
	HourEnd     int            `json:"hourEnd"`
	Location    string         `json:"location"`
	LocationPtr *time.Location `json:"-"`
}

// Contains checks if a time is within the window.
func (w *TimeWindow) Contains(t time.Time) (bool, error) {
	if w.LocationPtr != nil {
		t = t.In(w.LocationPtr)
	} else if w.Location != "" {
		loc, err := time.LoadLocation(w.Location)
		if err != nil {
			return false, fmt.Errorf("failed to load location %s: %w", w.Location, err)
		}
		t = t.In(loc)
	}
	h := t.Hour()
	if w.HourStart <= w.HourEnd {
		return h >= w.HourStart && h < w.HourEnd, nil
	}
	return h >= w.HourStart || h < w.HourEnd, nil
}
