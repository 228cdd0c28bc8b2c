package spot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/levenlabs/go-lflag"
	"github.com/sahkovertailu/sahkovertailu/pkg/common"
	"github.com/sahkovertailu/sahkovertailu/pkg/log"
	"github.com/sahkovertailu/sahkovertailu/pkg/types"
)

// Porssisahko fetches prices from porssisahko.net. It only publishes the
// latest two days but its prices already include VAT and are always Finnish.
type Porssisahko struct {
	apiURL string
	area   string
	client *http.Client
}

func configuredPorssisahko() *Porssisahko {
	p := &Porssisahko{
		area:   types.SpotAreaFinland,
		client: common.HTTPClient(15 * time.Second),
	}
	apiURL := lflag.String("porssisahko-api-url", "https://api.porssisahko.net/v2/latest-prices.json", "URL for the porssisahko.net latest prices API")
	lflag.Do(func() {
		p.apiURL = *apiURL
	})
	return p
}

type porssisahkoResponse struct {
	Prices []struct {
		Price     float64   `json:"price"`
		StartDate time.Time `json:"startDate"`
		EndDate   time.Time `json:"endDate"`
	} `json:"prices"`
}

// GetConfirmedPrices implements Provider.
func (p *Porssisahko) GetConfirmedPrices(ctx context.Context, start, end time.Time) ([]types.SpotPrice, error) {
	if p.area != types.SpotAreaFinland {
		return nil, fmt.Errorf("porssisahko only has prices for %s, not %s", types.SpotAreaFinland, p.area)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch porssisahko prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("porssisahko api returned status: %d", resp.StatusCode)
	}

	var data porssisahkoResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode porssisahko response: %w", err)
	}

	raw := make([]types.SpotPrice, 0, len(data.Prices))
	for _, e := range data.Prices {
		raw = append(raw, types.SpotPrice{
			TSStart:     e.StartDate,
			TSEnd:       e.EndDate,
			CentsPerKWH: e.Price,
		})
	}

	prices := inRange(hourly(ProviderPorssisahko, p.area, raw), start, end)
	log.Ctx(ctx).DebugContext(
		ctx,
		"got porssisahko prices",
		slog.Int("count", len(prices)),
		slog.Time("start", start),
		slog.Time("end", end),
	)
	return prices, nil
}
