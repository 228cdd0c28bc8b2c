package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sahkovertailu/sahkovertailu/pkg/compare"
	"github.com/sahkovertailu/sahkovertailu/pkg/spot"
	"github.com/sahkovertailu/sahkovertailu/pkg/storage/storagemock"
	"github.com/sahkovertailu/sahkovertailu/pkg/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// 14:00 in Helsinki
var testNow = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

type mockSpotProvider struct {
	mock.Mock
}

func (m *mockSpotProvider) GetConfirmedPrices(ctx context.Context, start, end time.Time) ([]types.SpotPrice, error) {
	args := m.Called(ctx, start, end)
	prices, _ := args.Get(0).([]types.SpotPrice)
	return prices, args.Error(1)
}

func newTestServer() (*Server, *storagemock.MockDatabase, *mockSpotProvider) {
	db := new(storagemock.MockDatabase)
	provider := new(mockSpotProvider)
	m := spot.NewMap()
	m.SetProvider("test", provider)

	srv := &Server{
		spot:              m,
		storage:           db,
		comparer:          &compare.Comparer{Concurrency: 2},
		serverName:        "test",
		spotAverageWindow: 30 * 24 * time.Hour,
		now:               func() time.Time { return testNow },
	}
	return srv, db, provider
}

func doRequest(srv *Server, method, target string, body any, header http.Header) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, target, &buf)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	srv.setupHandler().ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// spotHistory has a 12:00 day price of 8 and a 00:00 night price of 5,
// Helsinki time.
func spotHistory() []types.SpotPrice {
	day := time.Date(2024, 1, 14, 10, 0, 0, 0, time.UTC)
	night := time.Date(2024, 1, 14, 22, 0, 0, 0, time.UTC)
	return []types.SpotPrice{
		{Provider: "test", Area: types.SpotAreaFinland, TSStart: day, TSEnd: day.Add(time.Hour), CentsPerKWH: 8},
		{Provider: "test", Area: types.SpotAreaFinland, TSStart: night, TSEnd: night.Add(time.Hour), CentsPerKWH: 5},
	}
}

func expectSpotHistory(db *storagemock.MockDatabase, prices []types.SpotPrice) {
	db.On("GetSpotPriceHistory", mock.Anything, types.SpotAreaFinland, testNow.Add(-30*24*time.Hour), testNow).Return(prices, nil)
}
