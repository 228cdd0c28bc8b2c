package spot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/levenlabs/go-lflag"
	"github.com/sahkovertailu/sahkovertailu/pkg/common"
	"github.com/sahkovertailu/sahkovertailu/pkg/log"
	"github.com/sahkovertailu/sahkovertailu/pkg/types"
	"github.com/shopspring/decimal"
)

// Nord Pool delivery days are in CET.
var cetLocation = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Oslo")
	if err != nil {
		panic(fmt.Errorf("failed to load cet location: %w", err))
	}
	return loc
}()

// NordPool fetches day-ahead prices from the Nord Pool data portal. Prices are
// EUR/MWh without VAT.
type NordPool struct {
	apiURL     string
	area       string
	vatPercent decimal.Decimal
	client     *http.Client
}

func configuredNordPool() *NordPool {
	n := &NordPool{
		area:       types.SpotAreaFinland,
		vatPercent: decimal.Zero,
		client:     common.HTTPClient(15 * time.Second),
	}
	apiURL := lflag.String("nordpool-api-url", "https://dataportal-api.nordpoolgroup.com/api/DayAheadPrices", "URL for the Nord Pool day-ahead prices API")
	lflag.Do(func() {
		n.apiURL = *apiURL
	})
	return n
}

type nordPoolResponse struct {
	DeliveryDateCET  string          `json:"deliveryDateCET"`
	MultiAreaEntries []nordPoolEntry `json:"multiAreaEntries"`
}

type nordPoolEntry struct {
	DeliveryStart time.Time          `json:"deliveryStart"`
	DeliveryEnd   time.Time          `json:"deliveryEnd"`
	EntryPerArea  map[string]float64 `json:"entryPerArea"`
}

// GetConfirmedPrices implements Provider. Every delivery day touching the range
// is fetched and sub-hourly intervals are averaged into hours.
func (n *NordPool) GetConfirmedPrices(ctx context.Context, start, end time.Time) ([]types.SpotPrice, error) {
	log.Ctx(ctx).DebugContext(
		ctx,
		"getting nordpool prices",
		slog.Time("start", start),
		slog.Time("end", end),
	)

	var raw []types.SpotPrice
	day := dayStart(start.In(cetLocation))
	for day.Before(end) {
		prices, err := n.fetchDay(ctx, day)
		if err != nil {
			return nil, err
		}
		raw = append(raw, prices...)
		day = day.AddDate(0, 0, 1)
	}

	prices := inRange(hourly(ProviderNordPool, n.area, raw), start, end)
	log.Ctx(ctx).DebugContext(ctx, "got nordpool prices", slog.Int("count", len(prices)))
	return prices, nil
}

func (n *NordPool) fetchDay(ctx context.Context, day time.Time) ([]types.SpotPrice, error) {
	u, err := url.Parse(n.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid nordpool url (%s): %w", n.apiURL, err)
	}
	q := u.Query()
	q.Set("date", day.Format(time.DateOnly))
	q.Set("market", "DayAhead")
	q.Set("deliveryArea", n.area)
	q.Set("currency", "EUR")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch nordpool prices: %w", err)
	}
	defer resp.Body.Close()

	// not published yet
	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nordpool api returned status: %d", resp.StatusCode)
	}

	var data nordPoolResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode nordpool response: %w", err)
	}

	prices := make([]types.SpotPrice, 0, len(data.MultiAreaEntries))
	for _, e := range data.MultiAreaEntries {
		eurPerMWH, ok := e.EntryPerArea[n.area]
		if !ok {
			continue
		}
		prices = append(prices, types.SpotPrice{
			TSStart:     e.DeliveryStart,
			TSEnd:       e.DeliveryEnd,
			CentsPerKWH: n.consumerCents(eurPerMWH),
		})
	}
	return prices, nil
}

// consumerCents converts EUR/MWh without VAT to c/kWh with VAT.
func (n *NordPool) consumerCents(eurPerMWH float64) float64 {
	vat := decimal.NewFromInt(1).Add(n.vatPercent.Shift(-2))
	return decimal.NewFromFloat(eurPerMWH).
		Mul(vat).
		Shift(-1).
		Round(4).
		InexactFloat64()
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
