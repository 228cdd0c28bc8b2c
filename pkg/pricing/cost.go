package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/sahkovertailu/sahkovertailu/pkg/types"
)

// ErrInvalidHeatingProfile is returned when a monthly heating profile does not
// have exactly 12 values.
var ErrInvalidHeatingProfile = errors.New("heating profile must have 12 monthly values")

// Monthly holds one value per calendar month, January first.
type Monthly [12]float64

func broadcast(v float64) Monthly {
	var m Monthly
	for i := range m {
		m[i] = v
	}
	return m
}

func (m *Monthly) add(o Monthly) {
	for i := range m {
		m[i] += o[i]
	}
}

func monthOf(i int) time.Month {
	return time.Month(i + 1)
}

// consumptionFactor scales the even monthly consumption of a month. Only
// seasonal metering weights winter over summer.
func (c Classification) consumptionFactor(m time.Month) float64 {
	if c.Metering != types.MeteringTypeSeason {
		return 1
	}
	if IsWinterMonth(m) {
		return winterFactor
	}
	return summerFactor
}

// monthCost is the cost in cents of using kwh in the given month with the given
// night share.
func (c Classification) monthCost(kwh, share float64, m time.Month) float64 {
	switch c.Metering {
	case types.MeteringTypeTime:
		return kwh*(1-share)*c.Regular + kwh*share*c.Discount
	case types.MeteringTypeSeason:
		if IsWinterMonth(m) {
			return kwh*(1-share)*c.Regular + kwh*share*c.Discount
		}
		// summer is always billed at the other-season rate
		return kwh * c.Discount
	default:
		return kwh * c.Regular
	}
}

// categoryCost spreads the annual usage of a category over the year.
func (c Classification) categoryCost(category types.UsageCategory, annual float64) Monthly {
	share := NightShare(category)
	monthly := annual / 12
	var out Monthly
	for i := range out {
		m := monthOf(i)
		out[i] = c.monthCost(monthly*c.consumptionFactor(m), share, m)
	}
	return out
}

// coolingCost puts a third of the annual cooling into each of June, July and
// August.
func (c Classification) coolingCost(annual float64) Monthly {
	rate := c.coolingRate()
	var out Monthly
	for i := range out {
		if coolingMonths[monthOf(i)] {
			out[i] = annual / 3 * rate
		}
	}
	return out
}

// heatingCost uses the monthly heating profile when there is one and otherwise
// spreads the annual room heating like any other category.
func (c Classification) heatingCost(usage types.EnergyUsage) (Monthly, error) {
	profile := usage.HeatingElectricityUseByMonth
	if len(profile) == 0 {
		return c.categoryCost(types.UsageCategoryRoomHeating, usage.RoomHeating), nil
	}
	if len(profile) != 12 {
		return Monthly{}, fmt.Errorf("%w: got %d", ErrInvalidHeatingProfile, len(profile))
	}
	share := NightShare(types.UsageCategoryRoomHeating)
	var out Monthly
	for i, kwh := range profile {
		out[i] = c.monthCost(kwh, share, monthOf(i))
	}
	return out, nil
}
