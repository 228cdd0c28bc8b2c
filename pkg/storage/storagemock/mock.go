// Package storagemock has a testify mock of storage.Database.
package storagemock

import (
	"context"
	"time"

	"github.com/sahkovertailu/sahkovertailu/pkg/storage"
	"github.com/sahkovertailu/sahkovertailu/pkg/types"
	"github.com/stretchr/testify/mock"
)

type MockDatabase struct {
	mock.Mock
}

var _ storage.Database = (*MockDatabase)(nil)

func (m *MockDatabase) GetContract(ctx context.Context, id string) (types.Contract, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(types.Contract)
	return c, args.Error(1)
}

func (m *MockDatabase) ListContracts(ctx context.Context) ([]types.Contract, error) {
	args := m.Called(ctx)
	contracts, _ := args.Get(0).([]types.Contract)
	return contracts, args.Error(1)
}

func (m *MockDatabase) UpsertContract(ctx context.Context, contract types.Contract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

func (m *MockDatabase) UpsertSpotPrices(ctx context.Context, area string, prices []types.SpotPrice, version int) error {
	args := m.Called(ctx, area, prices, version)
	return args.Error(0)
}

func (m *MockDatabase) GetSpotPriceHistory(ctx context.Context, area string, start, end time.Time) ([]types.SpotPrice, error) {
	args := m.Called(ctx, area, start, end)
	prices, _ := args.Get(0).([]types.SpotPrice)
	return prices, args.Error(1)
}

func (m *MockDatabase) GetLatestSpotPriceTime(ctx context.Context, area string) (time.Time, int, error) {
	args := m.Called(ctx, area)
	ts, _ := args.Get(0).(time.Time)
	return ts, args.Int(1), args.Error(2)
}

func (m *MockDatabase) Close() error {
	args := m.Called()
	return args.Error(0)
}
