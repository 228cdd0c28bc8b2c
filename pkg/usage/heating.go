package usage

// heatingWeights is the share of annual space heating per month, January
// first, for a house in southern Finland. Sums to 1.
var heatingWeights = [12]float64{
	0.16, 0.14, 0.12, 0.08, 0.04, 0.01,
	0.01, 0.01, 0.04, 0.08, 0.13, 0.18,
}

// HeatingByMonth spreads annual heating kWh over the months by heating demand.
func HeatingByMonth(annual float64) []float64 {
	out := make([]float64, len(heatingWeights))
	for i, w := range heatingWeights {
		out[i] = annual * w
	}
	return out
}
