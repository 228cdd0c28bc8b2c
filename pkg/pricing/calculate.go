// Package pricing calculates what an electricity contract costs a household
// over a year, month by month.
//
// The calculation is a pure function of its inputs and is safe to call
// concurrently.
package pricing

import "github.com/sahkovertailu/sahkovertailu/pkg/types"

// Calculate returns the annual and monthly cost of a contract for the given
// usage. spotDay and spotNight are the average day and night spot prices in
// cents per kWh and may be nil. The only error is a heating profile that does
// not have 12 values; any other input yields a result.
func Calculate(
	components []types.PriceComponent,
	meta types.ContractMeta,
	usage types.EnergyUsage,
	spotDay, spotNight *float64,
) (types.ContractPricingResult, error) {
	rates := ExtractRates(components)
	c := Classify(rates, components, meta, spotDay, spotNight)
	if c.FlatFee {
		return flatFeeResult(rates.Monthly), nil
	}

	heating, err := c.heatingCost(usage)
	if err != nil {
		return types.ContractPricingResult{}, err
	}

	var cents Monthly
	for _, category := range evenlySpreadCategories {
		cents.add(c.categoryCost(category, usage.Category(category)))
	}
	cents.add(c.coolingCost(usage.Cooling))
	cents.add(heating)

	return c.result(cents, rates.Monthly), nil
}

func flatFeeResult(fee float64) types.ContractPricingResult {
	res := types.ContractPricingResult{
		MonthlyFixedFee: fee,
		MonthlyCosts:    broadcast(fee),
	}
	for _, v := range res.MonthlyCosts {
		res.TotalCost += v
	}
	res.AvgMonthlyCost = res.TotalCost / 12
	return res
}

// result converts the monthly energy cost in cents to euros, adds the monthly
// fee and records which rates were used.
func (c Classification) result(cents Monthly, fee float64) types.ContractPricingResult {
	res := types.ContractPricingResult{
		MonthlyFixedFee: fee,
		MeteringType:    c.Metering,
		IsSpotContract:  c.Spot,
	}
	for i, v := range cents {
		res.MonthlyCosts[i] = v/100 + fee
		res.TotalCost += res.MonthlyCosts[i]
	}
	res.AvgMonthlyCost = res.TotalCost / 12

	if c.Matched {
		switch c.Metering {
		case types.MeteringTypeGeneral:
			res.GeneralKwhPrice = ptr(c.Regular)
		case types.MeteringTypeTime:
			res.DaytimeKwhPrice = ptr(c.Regular)
			res.NighttimeKwhPrice = ptr(c.Discount)
		case types.MeteringTypeSeason:
			res.SeasonalWinterDayKwhPrice = ptr(c.Regular)
			res.SeasonalOtherKwhPrice = ptr(c.Discount)
		}
	}

	if c.Spot {
		if c.Margin > 0 {
			res.SpotPriceMargin = ptr(c.Margin)
		}
		if c.SpotDay != nil {
			res.SpotPriceDayAvg = ptr(*c.SpotDay)
		}
		if c.SpotNight != nil {
			res.SpotPriceNightAvg = ptr(*c.SpotNight)
		}
	}
	return res
}

func ptr(v float64) *float64 {
	return &v
}
