// Package spot fetches Finnish day-ahead electricity prices and averages them
// into day and night prices.
package spot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/levenlabs/go-lflag"
	"github.com/sahkovertailu/sahkovertailu/pkg/log"
	"github.com/sahkovertailu/sahkovertailu/pkg/types"
	"github.com/shopspring/decimal"
)

const (
	ProviderNordPool    = "nordpool"
	ProviderPorssisahko = "porssisahko"
)

// Provider fetches spot prices.
type Provider interface {
	// GetConfirmedPrices returns the published hourly prices that start in
	// [start, end), ordered by start time.
	GetConfirmedPrices(ctx context.Context, start, end time.Time) ([]types.SpotPrice, error)
}

// Configured registers the spot flags and returns a Map with every provider.
func Configured() *Map {
	m := NewMap()
	area := lflag.String("spot-area", types.SpotAreaFinland, "Nord Pool bidding zone to fetch prices for")
	vat := lflag.String("spot-vat-percent", "25.5", "VAT percent added to market prices that exclude it")
	order := lflag.String("spot-providers", ProviderNordPool+","+ProviderPorssisahko, "Comma-separated spot providers in the order they are tried")

	np := configuredNordPool()
	ps := configuredPorssisahko()
	m.SetProvider(ProviderNordPool, np)
	m.SetProvider(ProviderPorssisahko, ps)

	lflag.Do(func() {
		vatPercent, err := decimal.NewFromString(*vat)
		if err != nil {
			panic(fmt.Errorf("invalid spot-vat-percent %q: %w", *vat, err))
		}
		m.SetArea(*area)
		np.area = *area
		np.vatPercent = vatPercent
		ps.area = *area

		var names []string
		for _, name := range strings.Split(*order, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, err := m.Provider(name); err != nil {
				panic(err)
			}
			names = append(names, name)
		}
		if len(names) == 0 {
			panic(errors.New("spot-providers must name at least one provider"))
		}
		m.SetOrder(names...)
	})
	return m
}

// Map manages the spot providers and the order they are tried in.
type Map struct {
	mu        sync.Mutex
	area      string
	providers map[string]Provider
	order     []string
}

// NewMap creates an empty Map for Finland.
func NewMap() *Map {
	return &Map{
		area:      types.SpotAreaFinland,
		providers: make(map[string]Provider),
	}
}

// Area is the bidding zone the providers fetch prices for.
func (m *Map) Area() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.area
}

// SetArea sets the bidding zone.
func (m *Map) SetArea(area string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.area = area
}

// Provider returns the provider for the given name.
func (m *Map) Provider(name string) (Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.providers[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("unknown spot provider: %s", name)
}

// SetProvider sets the provider for the given name. Providers that are not in
// the order yet are appended to it.
func (m *Map) SetProvider(name string, p Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.providers[name]; !ok {
		m.order = append(m.order, name)
	}
	m.providers[name] = p
}

// SetOrder sets which providers Fallback tries and in which order.
func (m *Map) SetOrder(names ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = append([]string(nil), names...)
}

// Fallback returns the prices of the first provider in order that returns a
// non-empty result. Errors are only returned if no provider had prices and at
// least one failed.
func (m *Map) Fallback(ctx context.Context, start, end time.Time) ([]types.SpotPrice, error) {
	m.mu.Lock()
	order := append([]string(nil), m.order...)
	m.mu.Unlock()

	var errs []error
	for _, name := range order {
		p, err := m.Provider(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		prices, err := p.GetConfirmedPrices(ctx, start, end)
		if err != nil {
			log.Ctx(ctx).WarnContext(
				ctx,
				"spot provider failed, trying next",
				slog.String("provider", name),
				slog.Any("error", err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		if len(prices) == 0 {
			log.Ctx(ctx).DebugContext(ctx, "spot provider returned no prices", slog.String("provider", name))
			continue
		}
		return prices, nil
	}
	return nil, errors.Join(errs...)
}
