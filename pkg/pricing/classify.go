package pricing

import "github.com/sahkovertailu/sahkovertailu/pkg/types"

// Classification is the metering decision for a tariff along with the two
// working rates used by the cost formulas.
type Classification struct {
	Metering types.MeteringType
	// Regular is the general, day or winter-day rate in cents per kWh.
	Regular float64
	// Discount is the night or other-season rate in cents per kWh.
	Discount float64
	// Rates are the extracted rates after any spot adjustment.
	Rates Rates

	// FlatFee is set when the tariff has no per-kWh rate and is not spot, so
	// only the monthly fee is charged.
	FlatFee bool
	// Matched is false when rates were set but no metering rule applied.
	Matched bool

	Spot      bool
	Margin    float64
	SpotDay   *float64
	SpotNight *float64
}

// meteringRule derives a metering type and its working rates. Rules are
// evaluated in order and the first match wins.
type meteringRule struct {
	metering types.MeteringType
	match    func(Rates) bool
	rates    func(Rates) (regular, discount float64)
}

var meteringRules = []meteringRule{
	{
		metering: types.MeteringTypeGeneral,
		match:    func(r Rates) bool { return r.General > 0 },
		rates:    func(r Rates) (float64, float64) { return r.General, 0 },
	},
	{
		metering: types.MeteringTypeTime,
		match:    func(r Rates) bool { return r.NightTime > 0 },
		rates:    func(r Rates) (float64, float64) { return r.DayTime, r.NightTime },
	},
	{
		metering: types.MeteringTypeSeason,
		match:    func(r Rates) bool { return r.SeasonalWinterDay > 0 },
		rates:    func(r Rates) (float64, float64) { return r.SeasonalWinterDay, r.SeasonalOther },
	},
}

// IsSpot returns true if the contract is priced as a margin on top of the spot
// price, either explicitly or because its general rate is implausibly low.
func IsSpot(r Rates, meta types.ContractMeta) bool {
	if meta.PricingModel == types.PricingModelSpot {
		return true
	}
	return r.General > 0 && r.General < spotMarginThreshold
}

// Classify decides how the tariff is metered. Spot contracts are always
// re-metered as Time with the spot prices plus margin as the working rates,
// even when the General rule matched first. Missing spot prices count as 0.
func Classify(r Rates, components []types.PriceComponent, meta types.ContractMeta, spotDay, spotNight *float64) Classification {
	c := Classification{
		Metering: types.MeteringTypeGeneral,
		Rates:    r,
		Spot:     IsSpot(r, meta),
	}
	if !r.hasEnergyRate() && !c.Spot {
		c.FlatFee = true
		return c
	}

	for _, rule := range meteringRules {
		if rule.match(r) {
			c.Metering = rule.metering
			c.Regular, c.Discount = rule.rates(r)
			c.Matched = true
			break
		}
	}

	if c.Spot {
		c.Margin = spotMargin(components)
		c.Metering = types.MeteringTypeTime
		c.Regular = valueOrZero(spotDay) + c.Margin
		c.Discount = valueOrZero(spotNight) + c.Margin
		c.Rates.General = 0
		c.SpotDay = spotDay
		c.SpotNight = spotNight
		c.Matched = true
	}
	return c
}

// spotMargin is the price of the first energy component in input order.
func spotMargin(components []types.PriceComponent) float64 {
	for _, c := range components {
		if c.ComponentType == types.ComponentTypeMonthly || !c.ComponentType.Known() {
			continue
		}
		return c.Price.InexactFloat64()
	}
	return 0
}

// coolingRate is the rate cooling is billed at. Cooling only happens in the
// summer daytime so it never uses a night or winter rate.
func (c Classification) coolingRate() float64 {
	switch c.Metering {
	case types.MeteringTypeSeason:
		return c.Rates.SeasonalOther
	case types.MeteringTypeTime:
		return c.Regular
	default:
		return c.Rates.General
	}
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
