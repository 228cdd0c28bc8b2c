package main

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/levenlabs/go-lflag"
	"github.com/sahkovertailu/sahkovertailu/pkg/log"
	"github.com/sahkovertailu/sahkovertailu/pkg/spot"
	"github.com/sahkovertailu/sahkovertailu/pkg/storage"
	"github.com/sahkovertailu/sahkovertailu/pkg/types"
	"github.com/shopspring/decimal"
)

const seedDays = 7

func component(t types.ComponentType, price string) types.PriceComponent {
	return types.PriceComponent{
		ComponentType: t,
		Price:         decimal.RequireFromString(price),
	}
}

func seedContracts(now time.Time) []types.Contract {
	return []types.Contract{
		{
			ID:           "perus-yleis",
			Name:         "Perus Yleissähkö",
			Company:      "Esimerkkienergia Oy",
			PricingModel: types.PricingModelFixed,
			Metering:     "General",
			PriceComponents: []types.PriceComponent{
				component(types.ComponentTypeGeneral, "8.99"),
				component(types.ComponentTypeMonthly, "3.90"),
			},
		},
		{
			ID:           "yo-aika",
			Name:         "Yösähkö",
			Company:      "Esimerkkienergia Oy",
			PricingModel: types.PricingModelFixed,
			Metering:     "Time",
			PriceComponents: []types.PriceComponent{
				component(types.ComponentTypeDayTime, "10.49"),
				component(types.ComponentTypeNightTime, "7.29"),
				component(types.ComponentTypeMonthly, "4.90"),
			},
		},
		{
			ID:           "kausi",
			Name:         "Kausisähkö",
			Company:      "Pohjoinen Voima Oy",
			PricingModel: types.PricingModelFixed,
			Metering:     "Season",
			PriceComponents: []types.PriceComponent{
				component(types.ComponentTypeSeasonalWinterDay, "12.90"),
				component(types.ComponentTypeSeasonalOther, "7.90"),
				component(types.ComponentTypeMonthly, "4.50"),
			},
		},
		{
			ID:           "porssi",
			Name:         "Pörssisähkö",
			Company:      "Pohjoinen Voima Oy",
			PricingModel: types.PricingModelSpot,
			Metering:     "General",
			PriceComponents: []types.PriceComponent{
				component(types.ComponentTypeGeneral, "0.49"),
				component(types.ComponentTypeMonthly, "2.99"),
				// a price change that supersedes the first margin
				{
					ComponentType: types.ComponentTypeGeneral,
					Price:         decimal.RequireFromString("0.39"),
					PricedAt:      now.AddDate(0, 0, -1),
				},
			},
		},
		{
			ID:           "kiintea",
			Name:         "Kiinteä kuukausimaksu",
			Company:      "Tasaenergia Oy",
			PricingModel: types.PricingModelFixed,
			PriceComponents: []types.PriceComponent{
				component(types.ComponentTypeMonthly, "59.00"),
			},
		},
	}
}

// seedSpotPrices generates hourly prices that peak in the morning and evening
// and are cheapest at night.
func seedSpotPrices(rng *rand.Rand, start, end time.Time) []types.SpotPrice {
	var prices []types.SpotPrice
	for t := start; t.Before(end); t = t.Add(time.Hour) {
		hour := t.In(spot.Location()).Hour()
		base := 6.0 + 4.0*math.Exp(-math.Pow(float64(hour)-8, 2)/4) + 5.0*math.Exp(-math.Pow(float64(hour)-18, 2)/6)
		if hour >= 22 || hour < 7 {
			base -= 3
		}
		cents := math.Round((base+rng.Float64()-0.5)*10000) / 10000
		prices = append(prices, types.SpotPrice{
			Provider:    "seed",
			Area:        types.SpotAreaFinland,
			TSStart:     t.UTC(),
			TSEnd:       t.Add(time.Hour).UTC(),
			CentsPerKWH: cents,
			SampleCount: 1,
		})
	}
	return prices
}

func main() {
	os.Setenv("FIRESTORE_EMULATOR_HOST", "127.0.0.1:8087")
	s := storage.Configured()
	lflag.Configure()

	ctx := context.Background()
	defer s.Close()

	log.Ctx(ctx).InfoContext(ctx, "seeding mock data")

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now().UTC()

	for _, c := range seedContracts(now) {
		c.UpdatedAt = now
		if err := s.UpsertContract(ctx, c); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to seed contract", slog.String("contractID", c.ID), slog.Any("error", err))
			os.Exit(1)
		}
		log.Ctx(ctx).InfoContext(ctx, "seeded contract", slog.String("contractID", c.ID))
	}

	end := now.Truncate(time.Hour)
	start := end.AddDate(0, 0, -seedDays)
	prices := seedSpotPrices(rng, start, end)
	if err := s.UpsertSpotPrices(ctx, types.SpotAreaFinland, prices, types.CurrentSpotPriceVersion); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to seed spot prices", slog.Any("error", err))
		os.Exit(1)
	}

	log.Ctx(ctx).InfoContext(ctx, "seeded mock data successfully", slog.Int("spotPrices", len(prices)))
}
