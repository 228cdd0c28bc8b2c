package pricing

import (
	"time"

	"github.com/sahkovertailu/sahkovertailu/pkg/types"
)

// spotMarginThreshold is the General rate (c/kWh) below which the rate can
// only be a margin on top of the spot price.
const spotMarginThreshold = 0.8

const (
	// winterConsumptionMultiplier is how much more is consumed in a winter
	// month than in a summer month.
	winterConsumptionMultiplier = 1.3

	// summerFactor and winterFactor scale the even monthly consumption so that
	// 7 summer and 5 winter months still add up to the annual usage.
	summerFactor = 12 / (7 + 5*winterConsumptionMultiplier)
	winterFactor = summerFactor * winterConsumptionMultiplier
)

// defaultNightShare applies to categories without their own entry.
const defaultNightShare = 0.15

var nightShares = map[types.UsageCategory]float64{
	types.UsageCategorySauna:              0,
	types.UsageCategoryElectricityVehicle: 0.9,
	types.UsageCategoryWater:              0.9,
	types.UsageCategoryRoomHeating:        0.33,
	types.UsageCategoryCooling:            0,
}

var winterMonths = map[time.Month]bool{
	time.January:  true,
	time.February: true,
	time.March:    true,
	time.November: true,
	time.December: true,
}

var coolingMonths = map[time.Month]bool{
	time.June:   true,
	time.July:   true,
	time.August: true,
}

// evenlySpreadCategories are split evenly over the year, in the order they are
// summed. Cooling and room heating have their own rules.
var evenlySpreadCategories = []types.UsageCategory{
	types.UsageCategoryBasicLiving,
	types.UsageCategoryBathroomUnderfloorHeating,
	types.UsageCategoryWater,
	types.UsageCategorySauna,
	types.UsageCategoryElectricityVehicle,
}

// NightShare returns the fraction of a category's energy that is assumed to be
// used during the night window.
func NightShare(c types.UsageCategory) float64 {
	if share, ok := nightShares[c]; ok {
		return share
	}
	return defaultNightShare
}

// IsWinterMonth returns true for January, February, March, November and
// December.
func IsWinterMonth(m time.Month) bool {
	return winterMonths[m]
}
