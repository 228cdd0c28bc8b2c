// Package compare prices many contracts for one household and ranks them.
package compare

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/levenlabs/go-lflag"
	"github.com/sahkovertailu/sahkovertailu/pkg/log"
	"github.com/sahkovertailu/sahkovertailu/pkg/pricing"
	"github.com/sahkovertailu/sahkovertailu/pkg/types"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 8

// Comparison is the pricing of one contract within a ranking.
type Comparison struct {
	Rank     int                         `json:"rank"`
	Contract types.Contract              `json:"contract"`
	Result   types.ContractPricingResult `json:"result"`
}

// Comparer prices contracts in parallel.
type Comparer struct {
	// Concurrency limits how many contracts are priced at once. Values below 1
	// use the default.
	Concurrency int
}

// Configured registers the compare flags.
func Configured() *Comparer {
	c := &Comparer{Concurrency: defaultConcurrency}
	lflag.JSON(&c.Concurrency, "compare-concurrency", defaultConcurrency, "Number of contracts priced in parallel")
	return c
}

// Compare prices every contract for the usage and returns them cheapest first,
// ties broken by name. Spot contracts use the day and night averages. Contracts
// without any price components are skipped. An invalid usage fails the whole
// comparison since it would fail for every contract.
func (c *Comparer) Compare(
	ctx context.Context,
	contracts []types.Contract,
	usage types.EnergyUsage,
	averages types.SpotAverages,
) ([]Comparison, error) {
	limit := c.Concurrency
	if limit < 1 {
		limit = defaultConcurrency
	}

	results := make([]*Comparison, len(contracts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, contract := range contracts {
		components := LatestComponents(contract.PriceComponents)
		if len(components) == 0 {
			log.Ctx(ctx).WarnContext(ctx, "skipping contract without prices", slog.String("contractID", contract.ID))
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := pricing.Calculate(components, contract.Meta(), usage, averages.Day, averages.Night)
			if err != nil {
				return fmt.Errorf("failed to price contract %s: %w", contract.ID, err)
			}
			results[i] = &Comparison{
				Contract: contract,
				Result:   res,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Comparison, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Result.TotalCost != out[j].Result.TotalCost {
			return out[i].Result.TotalCost < out[j].Result.TotalCost
		}
		return out[i].Contract.Name < out[j].Contract.Name
	})
	for i := range out {
		out[i].Rank = i + 1
	}

	log.Ctx(ctx).DebugContext(
		ctx,
		"compared contracts",
		slog.Int("contracts", len(contracts)),
		slog.Int("priced", len(out)),
	)
	return out, nil
}
