// Package storage persists contracts and spot price history.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/levenlabs/go-lflag"
	"github.com/sahkovertailu/sahkovertailu/pkg/types"
)

var (
	ErrContractNotFound = errors.New("contract not found")
	ErrInvalidContract  = errors.New("invalid contract")
)

// Database persists contracts and spot prices.
type Database interface {
	// Contracts
	GetContract(ctx context.Context, id string) (types.Contract, error)
	ListContracts(ctx context.Context) ([]types.Contract, error)
	UpsertContract(ctx context.Context, contract types.Contract) error

	// Spot prices
	UpsertSpotPrices(ctx context.Context, area string, prices []types.SpotPrice, version int) error
	GetSpotPriceHistory(ctx context.Context, area string, start, end time.Time) ([]types.SpotPrice, error)
	// GetLatestSpotPriceTime returns the start of the newest stored price and
	// the version it was stored with. It returns the zero time if there are
	// none.
	GetLatestSpotPriceTime(ctx context.Context, area string) (time.Time, int, error)

	// Lifecycle
	Close() error
}

// Configured sets up the Database based on flags.
func Configured() Database {
	provider := lflag.String("storage-provider", "firestore", "Storage provider to use (available: firestore)")

	var p struct{ Database }

	fs := configuredFirestore()

	lflag.Do(func() {
		switch *provider {
		case "firestore":
			if err := fs.Validate(); err != nil {
				panic(fmt.Sprintf("firestore validation failed: %v", err))
			}
			if err := fs.Init(context.Background()); err != nil {
				panic(fmt.Sprintf("firestore init failed: %v", err))
			}
			p.Database = fs
		default:
			panic(fmt.Sprintf("unknown storage provider: %s", *provider))
		}
	})

	return &p
}

// ValidateContract checks that a contract can be stored.
func ValidateContract(c types.Contract) error {
	if c.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidContract)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: %s missing name", ErrInvalidContract, c.ID)
	}
	for i, pc := range c.PriceComponents {
		if pc.ComponentType == "" {
			return fmt.Errorf("%w: %s component %d missing type", ErrInvalidContract, c.ID, i)
		}
	}
	return nil
}
