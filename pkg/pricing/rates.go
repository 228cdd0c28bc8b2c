package pricing

import "github.com/sahkovertailu/sahkovertailu/pkg/types"

// Rates are the scalar prices of a tariff, one per component type. Energy
// rates are in cents per kWh and Monthly is in euros per month.
type Rates struct {
	Monthly           float64 `json:"monthly"`
	General           float64 `json:"general"`
	DayTime           float64 `json:"dayTime"`
	NightTime         float64 `json:"nightTime"`
	SeasonalWinterDay float64 `json:"seasonalWinterDay"`
	SeasonalOther     float64 `json:"seasonalOther"`
}

// hasEnergyRate returns true if any per-kWh rate is set.
func (r Rates) hasEnergyRate() bool {
	return r.General != 0 ||
		r.SeasonalOther != 0 ||
		r.SeasonalWinterDay != 0 ||
		r.NightTime != 0 ||
		r.DayTime != 0
}

// ExtractRates maps price components onto named rates. When a type appears
// more than once the last one wins, so callers must order components by
// recency. Unknown component types are ignored.
func ExtractRates(components []types.PriceComponent) Rates {
	var r Rates
	for _, c := range components {
		price := c.Price.InexactFloat64()
		switch c.ComponentType {
		case types.ComponentTypeMonthly:
			r.Monthly = price
		case types.ComponentTypeGeneral:
			r.General = price
		case types.ComponentTypeDayTime:
			r.DayTime = price
		case types.ComponentTypeNightTime:
			r.NightTime = price
		case types.ComponentTypeSeasonalWinterDay:
			r.SeasonalWinterDay = price
		case types.ComponentTypeSeasonalOther:
			r.SeasonalOther = price
		}
	}
	return r
}
