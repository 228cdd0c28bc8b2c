package compare

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sahkovertailu/sahkovertailu/pkg/pricing"
	"github.com/sahkovertailu/sahkovertailu/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func component(t types.ComponentType, price string, pricedAt time.Time) types.PriceComponent {
	return types.PriceComponent{
		ComponentType: t,
		Price:         decimal.RequireFromString(price),
		PricedAt:      pricedAt,
	}
}

func TestLatestComponents(t *testing.T) {
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := old.AddDate(0, 3, 0)

	got := LatestComponents([]types.PriceComponent{
		component(types.ComponentTypeGeneral, "9.5", recent),
		component(types.ComponentTypeMonthly, "4.90", old),
		component(types.ComponentTypeGeneral, "7.1", old),
		component("Transfer", "3", recent),
		component(types.ComponentTypeNightTime, "0", recent),
		component(types.ComponentTypeMonthly, "5.90", old),
	})

	require.Len(t, got, 2)
	assert.Equal(t, types.ComponentTypeMonthly, got[0].ComponentType)
	assert.Equal(t, "5.9", got[0].Price.String())
	assert.Equal(t, types.ComponentTypeGeneral, got[1].ComponentType)
	assert.Equal(t, "9.5", got[1].Price.String())

	assert.Empty(t, LatestComponents(nil))
}

func TestLatestComponentsFixesOrder(t *testing.T) {
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	components := []types.PriceComponent{
		component(types.ComponentTypeGeneral, "6", old.AddDate(0, 1, 0)),
		component(types.ComponentTypeGeneral, "5", old),
	}

	// the engine alone takes the last row
	raw, err := pricing.Calculate(components, types.ContractMeta{}, types.EnergyUsage{BasicLiving: 1000}, nil, nil)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, raw.TotalCost, 1e-9)

	res, err := pricing.Calculate(LatestComponents(components), types.ContractMeta{}, types.EnergyUsage{BasicLiving: 1000}, nil, nil)
	require.NoError(t, err)
	assert.InDelta(t, 60.0, res.TotalCost, 1e-9)
}

func TestCompare(t *testing.T) {
	contracts := []types.Contract{
		{
			ID:   "expensive",
			Name: "Expensive",
			PriceComponents: []types.PriceComponent{
				component(types.ComponentTypeGeneral, "15", time.Time{}),
			},
		},
		{
			ID:           "spot",
			Name:         "Spot",
			PricingModel: types.PricingModelSpot,
			PriceComponents: []types.PriceComponent{
				component(types.ComponentTypeMonthly, "3", time.Time{}),
				component(types.ComponentTypeGeneral, "0.5", time.Time{}),
			},
		},
		{
			ID:              "empty",
			Name:            "Empty",
			PriceComponents: nil,
		},
		{
			ID:   "b-cheap",
			Name: "B cheap",
			PriceComponents: []types.PriceComponent{
				component(types.ComponentTypeGeneral, "5", time.Time{}),
			},
		},
		{
			ID:   "a-cheap",
			Name: "A cheap",
			PriceComponents: []types.PriceComponent{
				component(types.ComponentTypeGeneral, "5", time.Time{}),
			},
		},
	}
	day, night := 10.0, 4.0
	averages := types.SpotAverages{Day: &day, Night: &night}
	usage := types.EnergyUsage{Sauna: 1200}

	got, err := (&Comparer{Concurrency: 2}).Compare(context.Background(), contracts, usage, averages)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, "a-cheap", got[0].Contract.ID)
	assert.Equal(t, "b-cheap", got[1].Contract.ID)
	assert.InDelta(t, 60.0, got[0].Result.TotalCost, 1e-9)

	assert.Equal(t, "spot", got[2].Contract.ID)
	assert.True(t, got[2].Result.IsSpotContract)
	// sauna is all daytime: 1200 kWh * 10.5 c + 12 * 3 EUR
	assert.InDelta(t, 162.0, got[2].Result.TotalCost, 1e-9)

	assert.Equal(t, "expensive", got[3].Contract.ID)
	for i, c := range got {
		assert.Equal(t, i+1, c.Rank)
	}
}

func TestCompareInvalidUsage(t *testing.T) {
	contracts := []types.Contract{{
		ID:              "a",
		Name:            "A",
		PriceComponents: []types.PriceComponent{component(types.ComponentTypeGeneral, "5", time.Time{})},
	}}
	usage := types.EnergyUsage{HeatingElectricityUseByMonth: []float64{1, 2, 3}}

	_, err := (&Comparer{}).Compare(context.Background(), contracts, usage, types.SpotAverages{})
	assert.ErrorIs(t, err, pricing.ErrInvalidHeatingProfile)
}

func TestCompareMany(t *testing.T) {
	var contracts []types.Contract
	for i := 100; i > 0; i-- {
		contracts = append(contracts, types.Contract{
			ID:   fmt.Sprintf("c%03d", i),
			Name: fmt.Sprintf("Contract %03d", i),
			PriceComponents: []types.PriceComponent{
				component(types.ComponentTypeGeneral, fmt.Sprintf("%d", i), time.Time{}),
			},
		})
	}

	got, err := (&Comparer{Concurrency: 4}).Compare(context.Background(), contracts, types.EnergyUsage{BasicLiving: 100}, types.SpotAverages{})
	require.NoError(t, err)
	require.Len(t, got, 100)
	assert.Equal(t, "c001", got[0].Contract.ID)
	assert.Equal(t, "c100", got[99].Contract.ID)
}

func TestCompareCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	contracts := []types.Contract{{
		ID:              "a",
		Name:            "A",
		PriceComponents: []types.PriceComponent{component(types.ComponentTypeGeneral, "5", time.Time{})},
	}}
	_, err := (&Comparer{}).Compare(ctx, contracts, types.EnergyUsage{}, types.SpotAverages{})
	assert.ErrorIs(t, err, context.Canceled)
}
